package bookings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cateringhub/internal/app/apptest"
	"cateringhub/internal/app/dto"
	"cateringhub/internal/app/outbox"
	domainbooking "cateringhub/internal/domain/booking"
	"cateringhub/internal/domain/notifications"
	"cateringhub/internal/domain/shared/failure"
	"cateringhub/internal/infra/storage/memory"
)

func newCreateHandler(store *memory.Store) *CreateBookingHandler {
	return &CreateBookingHandler{
		References: domainbooking.ReferenceGenerator{Now: func() time.Time { return apptest.Now }},
		Notifier:   apptest.Dispatcher(store),
		Outbox:     store.Outbox(),
		Encoder:    outbox.JSONEventEncoder{},
		Now:        func() time.Time { return apptest.Now },
	}
}

func createCmd(guests int) CreateBookingCommand {
	return CreateBookingCommand{
		ConsumerID: apptest.ConsumerID,
		EventID:    string(apptest.WeddingEventID),
		VendorID:   string(apptest.VendorID),
		PackageID:  string(apptest.BuffetPackageID),
		GuestCount: guests,
	}
}

func create(store *memory.Store, cmd CreateBookingCommand) (dto.Booking, error) {
	h := newCreateHandler(store)
	return apptest.InUnit(store, func(ctx context.Context) (dto.Booking, error) {
		return h.Handle(ctx, cmd)
	})
}

func TestCreateBookingPricesAndNotifiesVendor(t *testing.T) {
	store := apptest.NewStore(t)
	cmd := createCmd(80)
	cmd.SpecialRequirements = "  two vegan plates  "

	got, err := create(store, cmd)
	require.NoError(t, err)

	assert.Equal(t, "1000.00", got.Subtotal.String())
	assert.Equal(t, "0.00", got.ServiceCharges.String())
	assert.Equal(t, "50.00", got.SetupFee.String())
	assert.Equal(t, "1050.00", got.TotalAmount.String())
	assert.Equal(t, string(domainbooking.StatusPending), got.Status)
	assert.Equal(t, string(domainbooking.PaymentUnpaid), got.PaymentStatus)
	assert.Equal(t, "two vegan plates", got.SpecialRequirements)
	assert.Regexp(t, `^BK-2026-[A-Z0-9]{6}$`, got.BookingReference)
	require.NotNil(t, got.Event)
	require.NotNil(t, got.Package)
	require.NotNil(t, got.Vendor)
	assert.Equal(t, "Gold Buffet", got.Package.Name)

	sent := apptest.Notifications(t, store, apptest.VendorOwnerID)
	require.Len(t, sent, 1)
	assert.Equal(t, notifications.TypeNewBooking, sent[0].Type)
	assert.Contains(t, sent[0].Message, "Ana & Luis Wedding")
	assert.Contains(t, sent[0].Message, "Gold Buffet")
	assert.Equal(t, "/vendor/bookings/"+got.ID, sent[0].Link)
	assert.Equal(t, got.BookingReference, sent[0].Metadata.BookingReference)

	names := []string{}
	for _, rec := range store.Outbox().Records() {
		names = append(names, rec.Name)
	}
	assert.ElementsMatch(t, []string{"notification.created", "booking.created"}, names)
}

func TestCreateBookingIncrementsVendorCounter(t *testing.T) {
	store := apptest.NewStore(t)
	for i := 0; i < 2; i++ {
		_, err := create(store, createCmd(40))
		require.NoError(t, err)
	}
	v, err := apptest.InUnit(store, func(ctx context.Context) (int, error) {
		unit, err := handlersupportUnit(ctx)
		if err != nil {
			return 0, err
		}
		vendor, err := unit.Vendors().ByID(ctx, apptest.VendorID)
		if err != nil {
			return 0, err
		}
		return vendor.TotalBookings, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestCreateBookingGuestBounds(t *testing.T) {
	cases := []struct {
		guests int
		ok     bool
		msg    string
	}{
		{guests: 29, msg: "guest count must be at least 30 for this package"},
		{guests: 30, ok: true},
		{guests: 300, ok: true},
		{guests: 301, msg: "guest count must be at most 300 for this package"},
	}
	for _, tc := range cases {
		store := apptest.NewStore(t)
		_, err := create(store, createCmd(tc.guests))
		if tc.ok {
			assert.NoError(t, err, tc.guests)
			continue
		}
		require.Error(t, err, tc.guests)
		assert.ErrorIs(t, err, failure.ErrValidation)
		assert.EqualError(t, err, tc.msg)
	}
}

func TestCreateBookingPreconditions(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*CreateBookingCommand)
		want   error
	}{
		{"missing event", func(c *CreateBookingCommand) { c.EventID = "nope" }, failure.NotFound("event")},
		{"foreign event", func(c *CreateBookingCommand) { c.EventID = string(apptest.OtherEventID) }, failure.NotFound("event")},
		{"missing vendor", func(c *CreateBookingCommand) { c.VendorID = "nope" }, failure.NotFound("vendor")},
		{"unapproved vendor", func(c *CreateBookingCommand) {
			c.VendorID = string(apptest.PendingVendorID)
			c.PackageID = string(apptest.PendingPackageID)
		}, failure.NotFound("vendor")},
		{"inactive package", func(c *CreateBookingCommand) { c.PackageID = string(apptest.InactivePackageID) }, failure.NotFound("package")},
		{"package of another vendor", func(c *CreateBookingCommand) { c.PackageID = string(apptest.MusicPackageID) }, failure.NotFound("package")},
		{"not a caterer", func(c *CreateBookingCommand) {
			c.VendorID = string(apptest.MusicVendorID)
			c.PackageID = string(apptest.MusicPackageID)
		}, ErrVendorNotCatering},
		{"blocked date", func(c *CreateBookingCommand) { c.EventID = string(apptest.BlockedEventID) }, ErrVendorUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := apptest.NewStore(t)
			cmd := createCmd(80)
			tc.mutate(&cmd)

			_, err := create(store, cmd)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)

			assert.Empty(t, apptest.Notifications(t, store, apptest.VendorOwnerID))
			assert.Empty(t, store.Outbox().Records())
		})
	}
}

func TestCreateBookingFixedPriceWithServiceCharge(t *testing.T) {
	store := apptest.NewStore(t)
	cmd := createCmd(12)
	cmd.PackageID = string(apptest.FixedPackageID)

	got, err := create(store, cmd)
	require.NoError(t, err)
	assert.Equal(t, "800.00", got.Subtotal.String())
	assert.Equal(t, "100.00", got.ServiceCharges.String())
	assert.Equal(t, "900.00", got.TotalAmount.String())
}

func TestCreateBookingIdempotencyKeyIsScopedPerConsumer(t *testing.T) {
	a := CreateBookingCommand{ConsumerID: "u-1", IdempotencyKeyV: "k"}
	b := CreateBookingCommand{ConsumerID: "u-2", IdempotencyKeyV: "k"}
	assert.NotEqual(t, a.IdempotencyKey(), b.IdempotencyKey())
	assert.Empty(t, CreateBookingCommand{ConsumerID: "u-1"}.IdempotencyKey())
	_, ok := a.ResultPrototype().(*dto.Booking)
	assert.True(t, ok)
}
