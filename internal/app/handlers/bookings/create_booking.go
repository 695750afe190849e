package bookings

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"cateringhub/internal/app/commands"
	"cateringhub/internal/app/dto"
	handlersupport "cateringhub/internal/app/handlers/support"
	"cateringhub/internal/app/middleware"
	"cateringhub/internal/app/outbox"
	"cateringhub/internal/app/policies"
	domainbooking "cateringhub/internal/domain/booking"
	domainevents "cateringhub/internal/domain/events"
	"cateringhub/internal/domain/notifications"
	"cateringhub/internal/domain/pricing"
	"cateringhub/internal/domain/shared/failure"
	"cateringhub/internal/domain/vendors"
)

const createBookingKey = "bookings.create"

var (
	ErrVendorNotCatering = failure.Validation("vendor does not offer catering services", nil)
	ErrVendorUnavailable = failure.Validation("vendor is unavailable on the event date", nil)
)

type CreateBookingCommand struct {
	ConsumerID          string `json:"-" validate:"required"`
	EventID             string `json:"eventId" validate:"required"`
	VendorID            string `json:"vendorId" validate:"required"`
	PackageID           string `json:"packageId" validate:"required"`
	GuestCount          int    `json:"guestCount" validate:"required,gt=0"`
	SpecialRequirements string `json:"specialRequirements" validate:"max=2000"`
	IdempotencyKeyV     string `json:"-"`
}

func (c CreateBookingCommand) Key() string { return createBookingKey }

// IdempotencyKey scopes the client key to the consumer so keys cannot collide across users.
func (c CreateBookingCommand) IdempotencyKey() string {
	key := strings.TrimSpace(c.IdempotencyKeyV)
	if key == "" {
		return ""
	}
	return createBookingKey + ":" + c.ConsumerID + ":" + key
}

func (c CreateBookingCommand) ResultPrototype() any { return &dto.Booking{} }

type CreateBookingHandler struct {
	References domainbooking.ReferenceGenerator
	Notifier   policies.NotificationDispatcher
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
	Logger     *slog.Logger
}

// Handle checks every precondition before the first write, so a rejected
// request leaves nothing behind.
func (h *CreateBookingHandler) Handle(ctx context.Context, cmd CreateBookingCommand) (dto.Booking, error) {
	unit, err := handlersupport.RequireUnit(ctx)
	if err != nil {
		return dto.Booking{}, err
	}
	now := handlersupport.Clock(h.Now)

	event, err := unit.Events().ByID(ctx, domainevents.EventID(cmd.EventID))
	if err != nil {
		return dto.Booking{}, err
	}
	if !event.OwnedBy(cmd.ConsumerID) {
		return dto.Booking{}, domainevents.ErrNotFound
	}

	vendor, err := unit.Vendors().ByID(ctx, vendors.VendorID(cmd.VendorID))
	if err != nil {
		return dto.Booking{}, err
	}
	if !vendor.Approved() {
		return dto.Booking{}, vendors.ErrNotFound
	}

	pkg, err := unit.Packages().ByID(ctx, vendors.PackageID(cmd.PackageID))
	if err != nil {
		return dto.Booking{}, err
	}
	if pkg.VendorID != vendor.ID || !pkg.IsActive {
		return dto.Booking{}, vendors.ErrPackageNotFound
	}

	if !vendor.ServesCatering() {
		return dto.Booking{}, ErrVendorNotCatering
	}
	if vendor.BlockedOn(event.EventDate) {
		return dto.Booking{}, ErrVendorUnavailable
	}
	if err := pkg.CheckGuests(cmd.GuestCount); err != nil {
		return dto.Booking{}, err
	}

	price, err := pricing.Quote(pkg.QuoteInput(cmd.GuestCount))
	if err != nil {
		return dto.Booking{}, err
	}
	reference, err := h.References.Generate(ctx, unit.Bookings())
	if err != nil {
		return dto.Booking{}, err
	}

	booking, err := domainbooking.New(domainbooking.CreateParams{
		ID:                  domainbooking.BookingID(uuid.NewString()),
		Reference:           reference,
		ConsumerID:          cmd.ConsumerID,
		VendorID:            vendor.ID,
		EventID:             event.ID,
		PackageID:           pkg.ID,
		GuestCount:          cmd.GuestCount,
		Price:               price,
		SpecialRequirements: cmd.SpecialRequirements,
		CreatedAt:           now,
	})
	if err != nil {
		return dto.Booking{}, err
	}
	if err := unit.Bookings().Insert(ctx, booking); err != nil {
		return dto.Booking{}, err
	}

	vendor.RecordBooking(now)
	if err := unit.Vendors().Save(ctx, vendor); err != nil {
		return dto.Booking{}, err
	}

	content := notifications.NewBooking(event.Name, pkg.Name, booking.GuestCount)
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
			EventName:        event.Name,
			PackageName:      pkg.Name,
		},
		CreatedAt: now,
	}); err != nil {
		return dto.Booking{}, err
	}

	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, booking.Drain()); err != nil {
		return dto.Booking{}, err
	}

	if h.Logger != nil {
		h.Logger.Info("booking created", "booking_id", booking.ID, "reference", booking.Reference, "vendor_id", vendor.ID, "total", booking.Price.Total.String())
	}

	return dto.MapBooking(booking).WithRelations(event, vendor, pkg), nil
}

var _ commands.Handler[CreateBookingCommand, dto.Booking] = (*CreateBookingHandler)(nil)
var _ middleware.IdempotentCommand = CreateBookingCommand{}
