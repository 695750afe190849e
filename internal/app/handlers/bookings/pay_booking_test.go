package bookings

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cateringhub/internal/app/apptest"
	"cateringhub/internal/app/dto"
	domainbooking "cateringhub/internal/domain/booking"
	"cateringhub/internal/domain/notifications"
	"cateringhub/internal/domain/payments"
	"cateringhub/internal/infra/storage/memory"
)

func pay(store *memory.Store, cmd PayBookingCommand) (dto.Booking, error) {
	h := &PayBookingHandler{
		Notifier: apptest.Dispatcher(store),
		Outbox:   store.Outbox(),
		Now:      func() time.Time { return apptest.Now },
	}
	return apptest.InUnit(store, func(ctx context.Context) (dto.Booking, error) {
		return h.Handle(ctx, cmd)
	})
}

func TestPayConfirmedBooking(t *testing.T) {
	store := apptest.NewStore(t)
	booking := mustCreate(t, store)
	setStatus(t, store, booking.ID, domainbooking.StatusConfirmed)

	got, err := pay(store, PayBookingCommand{ConsumerID: apptest.ConsumerID, BookingID: booking.ID, PaymentMethodID: string(apptest.VisaMethodID)})
	require.NoError(t, err)
	assert.Equal(t, string(domainbooking.PaymentPaid), got.PaymentStatus)
	assert.Equal(t, "Visa •••• 4242", got.PaymentMethod)
	require.NotNil(t, got.PaidAt)
	assert.Equal(t, "1050.00", got.TotalAmount.String())

	sent := apptest.Notifications(t, store, apptest.VendorOwnerID)
	require.Len(t, sent, 2)
	var receipt *notifications.Notification
	for _, n := range sent {
		if n.Type == notifications.TypePaymentReceived {
			receipt = n
		}
	}
	require.NotNil(t, receipt)
	assert.Contains(t, receipt.Message, "1050.00")
	assert.Equal(t, "Visa •••• 4242", receipt.Metadata.PaymentMethod)
}

func TestPayFallsBackToGenericLabel(t *testing.T) {
	for _, methodID := range []string{"", "pm-missing", string(apptest.ForeignMethodID)} {
		store := apptest.NewStore(t)
		booking := mustCreate(t, store)
		setStatus(t, store, booking.ID, domainbooking.StatusConfirmed)

		got, err := pay(store, PayBookingCommand{ConsumerID: apptest.ConsumerID, BookingID: booking.ID, PaymentMethodID: methodID})
		require.NoError(t, err, methodID)
		assert.Equal(t, payments.DefaultLabel, got.PaymentMethod, methodID)
	}
}

func TestPayRejections(t *testing.T) {
	store := apptest.NewStore(t)
	booking := mustCreate(t, store)

	_, err := pay(store, PayBookingCommand{ConsumerID: apptest.ConsumerID, BookingID: booking.ID})
	assert.ErrorIs(t, err, domainbooking.ErrNotPayable)

	_, err = pay(store, PayBookingCommand{ConsumerID: apptest.OtherConsumerID, BookingID: booking.ID})
	assert.ErrorIs(t, err, domainbooking.ErrNotFound)

	_, err = pay(store, PayBookingCommand{ConsumerID: apptest.ConsumerID, BookingID: "missing"})
	assert.ErrorIs(t, err, domainbooking.ErrNotFound)

	assert.Len(t, apptest.Notifications(t, store, apptest.VendorOwnerID), 1)
}

func TestConcurrentPayExactlyOneWins(t *testing.T) {
	store := apptest.NewStore(t)
	booking := mustCreate(t, store)
	setStatus(t, store, booking.ID, domainbooking.StatusConfirmed)

	const attempts = 16
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = pay(store, PayBookingCommand{ConsumerID: apptest.ConsumerID, BookingID: booking.ID})
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, domainbooking.ErrAlreadyPaid)
	}
	assert.Equal(t, 1, wins)

	paid := 0
	for _, n := range apptest.Notifications(t, store, apptest.VendorOwnerID) {
		if n.Type == notifications.TypePaymentReceived {
			paid++
		}
	}
	assert.Equal(t, 1, paid)
}

func TestPaidBookingCanStillBeCancelled(t *testing.T) {
	store := apptest.NewStore(t)
	booking := mustCreate(t, store)
	setStatus(t, store, booking.ID, domainbooking.StatusConfirmed)
	_, err := pay(store, PayBookingCommand{ConsumerID: apptest.ConsumerID, BookingID: booking.ID})
	require.NoError(t, err)

	setStatus(t, store, booking.ID, domainbooking.StatusCancelled)
	got, err := get(store, GetBookingQuery{ConsumerID: apptest.ConsumerID, BookingID: booking.ID})
	require.NoError(t, err)
	assert.Equal(t, string(domainbooking.StatusCancelled), got.Status)
	assert.Equal(t, string(domainbooking.PaymentPaid), got.PaymentStatus)
}
