package dto

import (
	"time"

	domainreviews "cateringhub/internal/domain/reviews"
)

type Review struct {
	ID            string                   `json:"id"`
	BookingID     string                   `json:"bookingId"`
	VendorID      string                   `json:"vendorId"`
	UserID        string                   `json:"userId"`
	RatingOverall int                      `json:"ratingOverall"`
	ReviewText    string                   `json:"reviewText,omitempty"`
	Subratings    domainreviews.Subratings `json:"subratings"`
	CreatedAt     time.Time                `json:"createdAt"`
}

func MapReview(r *domainreviews.Review) Review {
	return Review{
		ID:            string(r.ID),
		BookingID:     string(r.BookingID),
		VendorID:      string(r.VendorID),
		UserID:        r.UserID,
		RatingOverall: r.RatingOverall,
		ReviewText:    r.Text,
		Subratings:    r.Subratings,
		CreatedAt:     r.CreatedAt,
	}
}
