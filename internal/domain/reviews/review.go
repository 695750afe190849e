package reviews

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"cateringhub/internal/domain/booking"
	"cateringhub/internal/domain/shared/failure"
	"cateringhub/internal/domain/vendors"
)

var (
	ErrInvalidRating   = failure.Validation("rating must be an integer between 1 and 5", map[string]string{"ratingOverall": "must be between 1 and 5"})
	ErrAlreadyReviewed = failure.New(failure.KindInvalidState, "this booking has already been reviewed")
	ErrNotFound        = failure.NotFound("review")
)

type ReviewID string

// Subratings are optional per-aspect scores, each 1-5 when present.
type Subratings struct {
	Food         *int `json:"food,omitempty"`
	Service      *int `json:"service,omitempty"`
	Value        *int `json:"value,omitempty"`
	Presentation *int `json:"presentation,omitempty"`
}

func (s Subratings) validate() error {
	details := map[string]string{}
	check := func(name string, v *int) {
		if v != nil && !validRating(*v) {
			details[name] = "must be between 1 and 5"
		}
	}
	check("food", s.Food)
	check("service", s.Service)
	check("value", s.Value)
	check("presentation", s.Presentation)
	if len(details) > 0 {
		return failure.Validation("sub-ratings must be between 1 and 5", details)
	}
	return nil
}

type Review struct {
	ID            ReviewID
	BookingID     booking.BookingID
	VendorID      vendors.VendorID
	UserID        string
	RatingOverall int
	Text          string
	Subratings    Subratings
	CreatedAt     time.Time
}

type Repository interface {
	ByBooking(ctx context.Context, bookingID booking.BookingID) (*Review, error)
	// Insert fails with ErrAlreadyReviewed when the booking already has a review.
	Insert(ctx context.Context, review *Review) error
	ListByVendor(ctx context.Context, vendorID vendors.VendorID) ([]*Review, error)
}

type SubmitParams struct {
	ID            ReviewID
	BookingID     booking.BookingID
	VendorID      vendors.VendorID
	UserID        string
	RatingOverall int
	Text          string
	Subratings    Subratings
	CreatedAt     time.Time
}

func Submit(params SubmitParams) (*Review, error) {
	if !validRating(params.RatingOverall) {
		return nil, ErrInvalidRating
	}
	if err := params.Subratings.validate(); err != nil {
		return nil, err
	}
	return &Review{
		ID:            params.ID,
		BookingID:     params.BookingID,
		VendorID:      params.VendorID,
		UserID:        params.UserID,
		RatingOverall: params.RatingOverall,
		Text:          strings.TrimSpace(params.Text),
		Subratings:    params.Subratings,
		CreatedAt:     params.CreatedAt.UTC(),
	}, nil
}

// Aggregate computes the mean overall rating (2 decimals) and count of a full review set.
func Aggregate(all []*Review) (decimal.Decimal, int) {
	if len(all) == 0 {
		return decimal.Zero, 0
	}
	var sum int64
	for _, r := range all {
		sum += int64(r.RatingOverall)
	}
	avg := decimal.NewFromInt(sum).Div(decimal.NewFromInt(int64(len(all)))).Round(2)
	return avg, len(all)
}

func validRating(v int) bool {
	return v >= 1 && v <= 5
}
