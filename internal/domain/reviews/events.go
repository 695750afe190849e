package reviews

import (
	"time"

	"cateringhub/internal/domain/booking"
	"cateringhub/internal/domain/vendors"
)

type Submitted struct {
	ReviewID  ReviewID          `json:"review_id"`
	BookingID booking.BookingID `json:"booking_id"`
	VendorID  vendors.VendorID  `json:"vendor_id"`
	Rating    int               `json:"rating"`
	At        time.Time         `json:"at"`
}

func (e Submitted) EventName() string     { return "review.submitted" }
func (e Submitted) AggregateID() string   { return string(e.ReviewID) }
func (e Submitted) OccurredAt() time.Time { return e.At }

// SubmittedEvent describes r for the outbox.
func SubmittedEvent(r *Review) Submitted {
	return Submitted{ReviewID: r.ID, BookingID: r.BookingID, VendorID: r.VendorID, Rating: r.RatingOverall, At: r.CreatedAt}
}
