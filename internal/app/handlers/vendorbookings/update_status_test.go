package vendorbookings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cateringhub/internal/app/apptest"
	"cateringhub/internal/app/dto"
	handlersupport "cateringhub/internal/app/handlers/support"
	domainbooking "cateringhub/internal/domain/booking"
	"cateringhub/internal/domain/notifications"
	"cateringhub/internal/domain/pricing"
	"cateringhub/internal/domain/shared/failure"
	"cateringhub/internal/domain/shared/money"
	"cateringhub/internal/infra/storage/memory"
)

var expectedNotice = map[[2]domainbooking.Status]notifications.Type{
	{domainbooking.StatusPending, domainbooking.StatusConfirmed}:       notifications.TypeBookingConfirmed,
	{domainbooking.StatusPending, domainbooking.StatusCancelled}:       notifications.TypeBookingDeclined,
	{domainbooking.StatusConfirmed, domainbooking.StatusInPreparation}: notifications.TypeBookingInPreparation,
	{domainbooking.StatusConfirmed, domainbooking.StatusCancelled}:     notifications.TypeBookingDeclined,
	{domainbooking.StatusInPreparation, domainbooking.StatusDelivered}: notifications.TypeBookingDelivered,
	{domainbooking.StatusDelivered, domainbooking.StatusCompleted}:     notifications.TypeBookingCompleted,
}

// seedBooking stores a booking for the test vendor directly in status.
func seedBooking(t *testing.T, store *memory.Store, id string, status domainbooking.Status) {
	t.Helper()
	_, err := apptest.InUnit(store, func(ctx context.Context) (struct{}, error) {
		unit, err := handlersupport.RequireUnit(ctx)
		if err != nil {
			return struct{}{}, err
		}
		b, err := domainbooking.New(domainbooking.CreateParams{
			ID:         domainbooking.BookingID(id),
			Reference:  "BK-2026-" + id,
			ConsumerID: apptest.ConsumerID,
			VendorID:   apptest.VendorID,
			EventID:    apptest.WeddingEventID,
			PackageID:  apptest.BuffetPackageID,
			GuestCount: 80,
			Price:      pricing.Breakdown{Subtotal: money.Must("1000"), ServiceCharges: money.Zero(), SetupFee: money.Must("50"), Total: money.Must("1050")},
			CreatedAt:  apptest.Now,
		})
		if err != nil {
			return struct{}{}, err
		}
		b.Status = status
		b.Drain()
		return struct{}{}, unit.Bookings().Insert(ctx, b)
	})
	require.NoError(t, err)
}

func updateStatus(store *memory.Store, cmd UpdateStatusCommand) (dto.Booking, error) {
	h := &UpdateStatusHandler{
		Notifier: apptest.Dispatcher(store),
		Outbox:   store.Outbox(),
		Now:      func() time.Time { return apptest.Now },
	}
	return apptest.InUnit(store, func(ctx context.Context) (dto.Booking, error) {
		return h.Handle(ctx, cmd)
	})
}

func TestEveryStatusPair(t *testing.T) {
	for _, from := range domainbooking.AllStatuses {
		for _, to := range domainbooking.AllStatuses {
			from, to := from, to
			t.Run(string(from)+"->"+string(to), func(t *testing.T) {
				store := apptest.NewStore(t)
				seedBooking(t, store, "B1", from)

				got, err := updateStatus(store, UpdateStatusCommand{VendorID: string(apptest.VendorID), BookingID: "B1", Status: string(to)})
				sent := apptest.Notifications(t, store, apptest.ConsumerID)

				wantType, legal := expectedNotice[[2]domainbooking.Status{from, to}]
				if !legal {
					require.Error(t, err)
					assert.ErrorIs(t, err, failure.ErrInvalidTransition)
					assert.Contains(t, err.Error(), string(from))
					assert.Contains(t, err.Error(), string(to))
					assert.Empty(t, sent)
					return
				}
				require.NoError(t, err)
				assert.Equal(t, string(to), got.Status)
				require.Len(t, sent, 1)
				assert.Equal(t, wantType, sent[0].Type)
				assert.Equal(t, "/bookings/B1", sent[0].Link)
				assert.Contains(t, sent[0].Message, "BK-2026-B1")
			})
		}
	}
}

func TestCancelStoresDeclineReason(t *testing.T) {
	store := apptest.NewStore(t)
	seedBooking(t, store, "B1", domainbooking.StatusPending)

	got, err := updateStatus(store, UpdateStatusCommand{VendorID: string(apptest.VendorID), BookingID: "B1", Status: "cancelled"})
	require.NoError(t, err)
	assert.Equal(t, domainbooking.VendorDeclinedReason, got.CancellationReason)
}

func TestUpdateStatusRequiresOwningVendor(t *testing.T) {
	store := apptest.NewStore(t)
	seedBooking(t, store, "B1", domainbooking.StatusPending)

	_, err := updateStatus(store, UpdateStatusCommand{VendorID: string(apptest.MusicVendorID), BookingID: "B1", Status: "confirmed"})
	assert.ErrorIs(t, err, domainbooking.ErrNotFound)

	_, err = updateStatus(store, UpdateStatusCommand{VendorID: string(apptest.VendorID), BookingID: "B1", Status: "teleported"})
	assert.ErrorIs(t, err, failure.ErrValidation)
}

func TestListVendorBookings(t *testing.T) {
	store := apptest.NewStore(t)
	seedBooking(t, store, "B1", domainbooking.StatusPending)
	seedBooking(t, store, "B2", domainbooking.StatusDelivered)

	h := &ListHandler{UoWFactory: store}
	all, err := h.Handle(context.Background(), ListQuery{VendorID: string(apptest.VendorID)})
	require.NoError(t, err)
	assert.Len(t, all.Items, 2)
	require.NotNil(t, all.Items[0].Event)

	delivered, err := h.Handle(context.Background(), ListQuery{VendorID: string(apptest.VendorID), Status: "delivered"})
	require.NoError(t, err)
	require.Len(t, delivered.Items, 1)
	assert.Equal(t, "B2", delivered.Items[0].ID)

	other, err := h.Handle(context.Background(), ListQuery{VendorID: string(apptest.MusicVendorID)})
	require.NoError(t, err)
	assert.Empty(t, other.Items)
}
