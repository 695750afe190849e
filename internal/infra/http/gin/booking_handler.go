package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"cateringhub/internal/app/commands"
	"cateringhub/internal/app/dto"
	bookingapp "cateringhub/internal/app/handlers/bookings"
	reviewapp "cateringhub/internal/app/handlers/reviews"
	"cateringhub/internal/app/queries"
	"cateringhub/internal/infra/security"
)

// BookingHandler serves the consumer side of the booking lifecycle.
type BookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type createBookingRequest struct {
	EventID             string `json:"eventId"`
	VendorID            string `json:"vendorId"`
	PackageID           string `json:"packageId"`
	GuestCount          int    `json:"guestCount"`
	SpecialRequirements string `json:"specialRequirements"`
}

func (h BookingHandler) Create(c *gin.Context) {
	user, ok := requireRole(c, security.RoleConsumer)
	if !ok {
		return
	}
	var req createBookingRequest
	if err := bindJSON(c, &req, false); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	cmd := bookingapp.CreateBookingCommand{
		ConsumerID:          user.UserID,
		EventID:             req.EventID,
		VendorID:            req.VendorID,
		PackageID:           req.PackageID,
		GuestCount:          req.GuestCount,
		SpecialRequirements: req.SpecialRequirements,
		IdempotencyKeyV:     c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[bookingapp.CreateBookingCommand, dto.Booking](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h BookingHandler) List(c *gin.Context) {
	user, ok := requireRole(c, security.RoleConsumer)
	if !ok {
		return
	}
	result, err := queries.Ask[bookingapp.ListConsumerBookingsQuery, dto.BookingCollection](c.Request.Context(), h.Queries, bookingapp.ListConsumerBookingsQuery{
		ConsumerID: user.UserID,
		Status:     statusFilter(c),
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(result.Items))
}

func (h BookingHandler) Get(c *gin.Context) {
	user, ok := requireRole(c, security.RoleConsumer)
	if !ok {
		return
	}
	result, err := queries.Ask[bookingapp.GetBookingQuery, dto.Booking](c.Request.Context(), h.Queries, bookingapp.GetBookingQuery{
		ConsumerID: user.UserID,
		BookingID:  c.Param("id"),
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type payBookingRequest struct {
	PaymentMethodID string `json:"paymentMethodId"`
}

func (h BookingHandler) Pay(c *gin.Context) {
	user, ok := requireRole(c, security.RoleConsumer)
	if !ok {
		return
	}
	var req payBookingRequest
	if err := bindJSON(c, &req, true); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	result, err := commands.Dispatch[bookingapp.PayBookingCommand, dto.Booking](c.Request.Context(), h.Commands, bookingapp.PayBookingCommand{
		ConsumerID:      user.UserID,
		BookingID:       c.Param("id"),
		PaymentMethodID: req.PaymentMethodID,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type submitReviewRequest struct {
	RatingOverall      int    `json:"ratingOverall"`
	ReviewText         string `json:"reviewText"`
	FoodRating         *int   `json:"foodRating"`
	ServiceRating      *int   `json:"serviceRating"`
	ValueRating        *int   `json:"valueRating"`
	PresentationRating *int   `json:"presentationRating"`
}

func (h BookingHandler) Review(c *gin.Context) {
	user, ok := requireRole(c, security.RoleConsumer)
	if !ok {
		return
	}
	var req submitReviewRequest
	if err := bindJSON(c, &req, false); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	result, err := commands.Dispatch[reviewapp.SubmitReviewCommand, dto.Review](c.Request.Context(), h.Commands, reviewapp.SubmitReviewCommand{
		ConsumerID:         user.UserID,
		BookingID:          c.Param("id"),
		RatingOverall:      req.RatingOverall,
		ReviewText:         req.ReviewText,
		FoodRating:         req.FoodRating,
		ServiceRating:      req.ServiceRating,
		ValueRating:        req.ValueRating,
		PresentationRating: req.PresentationRating,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

var _ BookingHTTP = BookingHandler{}
