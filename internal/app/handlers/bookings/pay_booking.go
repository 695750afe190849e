package bookings

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"cateringhub/internal/app/commands"
	"cateringhub/internal/app/dto"
	handlersupport "cateringhub/internal/app/handlers/support"
	"cateringhub/internal/app/outbox"
	"cateringhub/internal/app/policies"
	domainbooking "cateringhub/internal/domain/booking"
	"cateringhub/internal/domain/notifications"
	"cateringhub/internal/domain/payments"
)

const payBookingKey = "bookings.pay"

type PayBookingCommand struct {
	ConsumerID      string `json:"-" validate:"required"`
	BookingID       string `json:"-" validate:"required"`
	PaymentMethodID string `json:"paymentMethodId"`
	IdempotencyKeyV string `json:"-"`
}

func (c PayBookingCommand) Key() string { return payBookingKey }

// IdempotencyKey lets a client retry a payment and receive the original
// result instead of an already-paid rejection.
func (c PayBookingCommand) IdempotencyKey() string {
	key := strings.TrimSpace(c.IdempotencyKeyV)
	if key == "" {
		return ""
	}
	return payBookingKey + ":" + c.ConsumerID + ":" + c.BookingID + ":" + key
}

func (c PayBookingCommand) ResultPrototype() any { return &dto.Booking{} }

type PayBookingHandler struct {
	Notifier policies.NotificationDispatcher
	Outbox   outbox.Outbox
	Encoder  outbox.EventEncoder
	Now      func() time.Time
	Logger   *slog.Logger
}

func (h *PayBookingHandler) Handle(ctx context.Context, cmd PayBookingCommand) (dto.Booking, error) {
	unit, err := handlersupport.RequireUnit(ctx)
	if err != nil {
		return dto.Booking{}, err
	}
	now := handlersupport.Clock(h.Now)

	booking, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(cmd.BookingID))
	if err != nil {
		return dto.Booking{}, err
	}
	if !booking.OwnedBy(cmd.ConsumerID) {
		return dto.Booking{}, domainbooking.ErrNotFound
	}
	label, err := payments.ResolveLabel(ctx, unit.PaymentMethods(), cmd.ConsumerID, payments.MethodID(cmd.PaymentMethodID))
	if err != nil {
		return dto.Booking{}, err
	}
	if err := booking.MarkPaid(label, now); err != nil {
		return dto.Booking{}, err
	}
	if err := unit.Bookings().Save(ctx, booking); err != nil {
		return dto.Booking{}, err
	}

	vendor, err := unit.Vendors().ByID(ctx, booking.VendorID)
	if err != nil {
		return dto.Booking{}, err
	}
	content := notifications.PaymentReceived(booking.Reference, booking.Price.Total.String())
	if err := handlersupport.Notify(ctx, h.Notifier, notifications.Notification{
		UserID:  vendor.OwnerUserID,
		Type:    content.Type,
		Title:   content.Title,
		Message: content.Message,
		Link:    notifications.VendorLink(booking.ID),
		Metadata: notifications.Metadata{
			BookingID:        string(booking.ID),
			BookingReference: booking.Reference,
			Status:           string(booking.Status),
			PaymentMethod:    label,
		},
		CreatedAt: now,
	}); err != nil {
		return dto.Booking{}, err
	}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, booking.Drain()); err != nil {
		return dto.Booking{}, err
	}

	if h.Logger != nil {
		h.Logger.Info("booking paid", "booking_id", booking.ID, "vendor_id", booking.VendorID, "method", label)
	}
	return dto.MapBooking(booking).WithRelations(nil, vendor, nil), nil
}

var _ commands.Handler[PayBookingCommand, dto.Booking] = (*PayBookingHandler)(nil)
