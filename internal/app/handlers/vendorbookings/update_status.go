package vendorbookings

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cateringhub/internal/app/commands"
	"cateringhub/internal/app/dto"
	handlersupport "cateringhub/internal/app/handlers/support"
	"cateringhub/internal/app/outbox"
	"cateringhub/internal/app/policies"
	domainbooking "cateringhub/internal/domain/booking"
	"cateringhub/internal/domain/notifications"
	"cateringhub/internal/domain/shared/failure"
	"cateringhub/internal/domain/vendors"
)

const updateStatusKey = "vendor.bookings.update_status"

type UpdateStatusCommand struct {
	VendorID  string `json:"-" validate:"required"`
	BookingID string `json:"-" validate:"required"`
	Status    string `json:"status" validate:"required"`
}

func (c UpdateStatusCommand) Key() string { return updateStatusKey }

// UpdateStatusHandler moves a booking along the status graph on behalf of its
// vendor and tells the consumer about it.
type UpdateStatusHandler struct {
	Notifier policies.NotificationDispatcher
	Outbox   outbox.Outbox
	Encoder  outbox.EventEncoder
	Now      func() time.Time
	Logger   *slog.Logger
}

func (h *UpdateStatusHandler) Handle(ctx context.Context, cmd UpdateStatusCommand) (dto.Booking, error) {
	target, err := domainbooking.ParseStatus(cmd.Status)
	if err != nil {
		return dto.Booking{}, err
	}
	unit, err := handlersupport.RequireUnit(ctx)
	if err != nil {
		return dto.Booking{}, err
	}
	now := handlersupport.Clock(h.Now)

	booking, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(cmd.BookingID))
	if err != nil {
		return dto.Booking{}, err
	}
	if booking.VendorID != vendors.VendorID(cmd.VendorID) {
		return dto.Booking{}, domainbooking.ErrNotFound
	}
	from := booking.Status
	if err := booking.TransitionTo(target, now); err != nil {
		return dto.Booking{}, err
	}

	content, ok := notifications.ForStatus(target, booking.Reference)
	if !ok {
		return dto.Booking{}, failure.Internal(fmt.Errorf("no consumer notice for status %s", target))
	}
	if err := unit.Bookings().Save(ctx, booking); err != nil {
		return dto.Booking{}, err
	}
	if err := handlersupport.Notify(ctx, h.Notifier, notifications.Notification{
		UserID:  booking.ConsumerID,
		Type:    content.Type,
		Title:   content.Title,
		Message: content.Message,
		Link:    notifications.ConsumerLink(booking.ID),
		Metadata: notifications.Metadata{
			BookingID:        string(booking.ID),
			BookingReference: booking.Reference,
			Status:           string(target),
		},
		CreatedAt: now,
	}); err != nil {
		return dto.Booking{}, err
	}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, booking.Drain()); err != nil {
		return dto.Booking{}, err
	}

	if h.Logger != nil {
		h.Logger.Info("booking status changed", "booking_id", booking.ID, "vendor_id", booking.VendorID, "from", from, "status", target)
	}
	return dto.MapBooking(booking), nil
}

var _ commands.Handler[UpdateStatusCommand, dto.Booking] = (*UpdateStatusHandler)(nil)
