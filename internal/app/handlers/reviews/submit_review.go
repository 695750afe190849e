package reviews

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"cateringhub/internal/app/commands"
	"cateringhub/internal/app/dto"
	handlersupport "cateringhub/internal/app/handlers/support"
	"cateringhub/internal/app/outbox"
	domainbooking "cateringhub/internal/domain/booking"
	domainreviews "cateringhub/internal/domain/reviews"
	"cateringhub/internal/domain/shared/events"
)

const submitReviewKey = "reviews.submit"

// SubmitReviewCommand reviews a delivered or completed booking.
type SubmitReviewCommand struct {
	ConsumerID         string `json:"-" validate:"required"`
	BookingID          string `json:"-" validate:"required"`
	RatingOverall      int    `json:"ratingOverall" validate:"required,min=1,max=5"`
	ReviewText         string `json:"reviewText" validate:"max=5000"`
	FoodRating         *int   `json:"foodRating" validate:"omitempty,min=1,max=5"`
	ServiceRating      *int   `json:"serviceRating" validate:"omitempty,min=1,max=5"`
	ValueRating        *int   `json:"valueRating" validate:"omitempty,min=1,max=5"`
	PresentationRating *int   `json:"presentationRating" validate:"omitempty,min=1,max=5"`
}

func (c SubmitReviewCommand) Key() string { return submitReviewKey }

// SubmitReviewHandler stores the review and recomputes the vendor rating from
// the vendor's full review set inside the same unit of work.
type SubmitReviewHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Now     func() time.Time
	Logger  *slog.Logger
}

func (h *SubmitReviewHandler) Handle(ctx context.Context, cmd SubmitReviewCommand) (dto.Review, error) {
	unit, err := handlersupport.RequireUnit(ctx)
	if err != nil {
		return dto.Review{}, err
	}
	now := handlersupport.Clock(h.Now)

	booking, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(cmd.BookingID))
	if err != nil {
		return dto.Review{}, err
	}
	if !booking.OwnedBy(cmd.ConsumerID) {
		return dto.Review{}, domainbooking.ErrNotFound
	}
	if err := booking.EnsureReviewable(); err != nil {
		return dto.Review{}, err
	}
	existing, err := handlersupport.Optional(unit.Reviews().ByBooking(ctx, booking.ID))
	if err != nil {
		return dto.Review{}, err
	}
	if existing != nil {
		return dto.Review{}, domainreviews.ErrAlreadyReviewed
	}

	review, err := domainreviews.Submit(domainreviews.SubmitParams{
		ID:            domainreviews.ReviewID(uuid.NewString()),
		BookingID:     booking.ID,
		VendorID:      booking.VendorID,
		UserID:        cmd.ConsumerID,
		RatingOverall: cmd.RatingOverall,
		Text:          cmd.ReviewText,
		Subratings: domainreviews.Subratings{
			Food:         cmd.FoodRating,
			Service:      cmd.ServiceRating,
			Value:        cmd.ValueRating,
			Presentation: cmd.PresentationRating,
		},
		CreatedAt: now,
	})
	if err != nil {
		return dto.Review{}, err
	}
	if err := unit.Reviews().Insert(ctx, review); err != nil {
		return dto.Review{}, err
	}

	all, err := unit.Reviews().ListByVendor(ctx, booking.VendorID)
	if err != nil {
		return dto.Review{}, err
	}
	avg, count := domainreviews.Aggregate(all)
	vendor, err := unit.Vendors().ByID(ctx, booking.VendorID)
	if err != nil {
		return dto.Review{}, err
	}
	vendor.UpdateRating(avg, count, now)
	if err := unit.Vendors().Save(ctx, vendor); err != nil {
		return dto.Review{}, err
	}

	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, []events.DomainEvent{domainreviews.SubmittedEvent(review)}); err != nil {
		return dto.Review{}, err
	}

	if h.Logger != nil {
		h.Logger.Info("review submitted", "booking_id", booking.ID, "vendor_id", vendor.ID, "rating", review.RatingOverall, "rating_avg", avg.StringFixed(2), "rating_count", count)
	}
	return dto.MapReview(review), nil
}

var _ commands.Handler[SubmitReviewCommand, dto.Review] = (*SubmitReviewHandler)(nil)
