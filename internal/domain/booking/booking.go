package booking

import (
	"context"
	"strings"
	"time"

	domainevents "cateringhub/internal/domain/events"
	"cateringhub/internal/domain/pricing"
	"cateringhub/internal/domain/shared/events"
	"cateringhub/internal/domain/shared/failure"
	"cateringhub/internal/domain/vendors"
)

// VendorDeclinedReason is stored on every booking the vendor cancels.
const VendorDeclinedReason = "Declined by vendor"

var (
	ErrNotFound       = failure.NotFound("booking")
	ErrNotPayable     = failure.New(failure.KindInvalidState, "only confirmed bookings can be paid")
	ErrAlreadyPaid    = failure.New(failure.KindInvalidState, "booking has already been paid")
	ErrNotReviewable  = failure.New(failure.KindInvalidState, "only delivered or completed bookings can be reviewed")
	ErrReferenceTaken = failure.New(failure.KindReferenceExhausted, "booking reference already in use")
	// ErrConcurrentUpdate is returned when another request changed the booking first.
	ErrConcurrentUpdate = failure.New(failure.KindInvalidState, "booking was changed by another request, reload and try again")
)

type BookingID string

type Booking struct {
	ID                  BookingID
	Reference           string
	ConsumerID          string
	VendorID            vendors.VendorID
	EventID             domainevents.EventID
	PackageID           vendors.PackageID
	GuestCount          int
	Price               pricing.Breakdown
	SpecialRequirements string
	Status              Status
	PaymentStatus       PaymentStatus
	PaymentMethod       string
	PaidAt              time.Time
	CancellationReason  string
	CreatedAt           time.Time
	UpdatedAt           time.Time
	Version             int64
	events.Recorder
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	// Insert stores a new booking; it fails with ErrReferenceTaken when the
	// reference is already used by another booking.
	Insert(ctx context.Context, booking *Booking) error
	Save(ctx context.Context, booking *Booking) error
	ReferenceExists(ctx context.Context, reference string) (bool, error)
	ListByConsumer(ctx context.Context, consumerID string, statuses []Status) ([]*Booking, error)
	ListByVendor(ctx context.Context, vendorID vendors.VendorID, statuses []Status) ([]*Booking, error)
}

type CreateParams struct {
	ID                  BookingID
	Reference           string
	ConsumerID          string
	VendorID            vendors.VendorID
	EventID             domainevents.EventID
	PackageID           vendors.PackageID
	GuestCount          int
	Price               pricing.Breakdown
	SpecialRequirements string
	CreatedAt           time.Time
}

// New builds a pending, unpaid booking around an already computed price.
func New(params CreateParams) (*Booking, error) {
	if params.GuestCount <= 0 {
		return nil, pricing.ErrInvalidGuests
	}
	if params.ConsumerID == "" {
		return nil, failure.Validation("consumer id is required", nil)
	}
	if params.Reference == "" {
		return nil, failure.Validation("booking reference is required", nil)
	}
	now := params.CreatedAt.UTC()
	b := &Booking{
		ID:                  params.ID,
		Reference:           params.Reference,
		ConsumerID:          params.ConsumerID,
		VendorID:            params.VendorID,
		EventID:             params.EventID,
		PackageID:           params.PackageID,
		GuestCount:          params.GuestCount,
		Price:               params.Price,
		SpecialRequirements: strings.TrimSpace(params.SpecialRequirements),
		Status:              StatusPending,
		PaymentStatus:       PaymentUnpaid,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	b.Record(Created{BookingID: b.ID, Reference: b.Reference, VendorID: b.VendorID, ConsumerID: b.ConsumerID, Total: b.Price.Total.String(), At: now})
	return b, nil
}

// TransitionTo moves the booking along the status graph.
func (b *Booking) TransitionTo(target Status, now time.Time) error {
	if !b.Status.CanTransitionTo(target) {
		return failure.Newf(failure.KindInvalidTransition, "cannot change booking status from %s to %s", b.Status, target)
	}
	from := b.Status
	b.Status = target
	if target == StatusCancelled {
		b.CancellationReason = VendorDeclinedReason
	}
	b.UpdatedAt = now.UTC()
	b.Record(StatusChanged{BookingID: b.ID, From: from, To: target, At: b.UpdatedAt})
	return nil
}

// MarkPaid flips the payment status; there is no way back.
func (b *Booking) MarkPaid(methodLabel string, now time.Time) error {
	if b.Status != StatusConfirmed {
		return ErrNotPayable
	}
	if b.PaymentStatus == PaymentPaid {
		return ErrAlreadyPaid
	}
	b.PaymentStatus = PaymentPaid
	b.PaymentMethod = methodLabel
	b.PaidAt = now.UTC()
	b.UpdatedAt = b.PaidAt
	b.Record(Paid{BookingID: b.ID, Method: methodLabel, Total: b.Price.Total.String(), At: b.PaidAt})
	return nil
}

// EnsureReviewable checks the status precondition for leaving a review.
func (b *Booking) EnsureReviewable() error {
	if !b.Status.Reviewable() {
		return ErrNotReviewable
	}
	return nil
}

func (b *Booking) OwnedBy(consumerID string) bool {
	return consumerID != "" && b.ConsumerID == consumerID
}
