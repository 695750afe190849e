package vendors

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"cateringhub/internal/domain/shared/failure"
)

type VendorID string

var ErrNotFound = failure.NotFound("vendor")

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusSuspended Status = "suspended"
)

// BusinessCatering is the only service domain bookings are accepted for.
const BusinessCatering = "catering"

type Vendor struct {
	ID            VendorID
	OwnerUserID   string
	BusinessName  string
	BusinessType  string
	Status        Status
	RatingAvg     decimal.Decimal
	RatingCount   int
	TotalBookings int
	BlockedDates  []time.Time
	UpdatedAt     time.Time
	Version       int64
}

func (v *Vendor) Approved() bool {
	return v.Status == StatusApproved
}

func (v *Vendor) ServesCatering() bool {
	return v.BusinessType == BusinessCatering
}

// BlockedOn reports whether the vendor has blocked the calendar day of t.
func (v *Vendor) BlockedOn(t time.Time) bool {
	if t.IsZero() {
		return false
	}
	y, m, d := t.UTC().Date()
	for _, blocked := range v.BlockedDates {
		by, bm, bd := blocked.UTC().Date()
		if by == y && bm == m && bd == d {
			return true
		}
	}
	return false
}

// RecordBooking bumps the running booking counter.
func (v *Vendor) RecordBooking(now time.Time) {
	v.TotalBookings++
	v.UpdatedAt = now.UTC()
}

// UpdateRating stores an aggregate computed from the vendor's full review set.
func (v *Vendor) UpdateRating(avg decimal.Decimal, count int, now time.Time) {
	v.RatingAvg = avg
	v.RatingCount = count
	v.UpdatedAt = now.UTC()
}

type Repository interface {
	ByID(ctx context.Context, id VendorID) (*Vendor, error)
	Save(ctx context.Context, vendor *Vendor) error
}
