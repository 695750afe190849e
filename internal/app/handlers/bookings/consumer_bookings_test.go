package bookings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cateringhub/internal/app/apptest"
	"cateringhub/internal/app/dto"
	domainbooking "cateringhub/internal/domain/booking"
	"cateringhub/internal/domain/shared/failure"
	"cateringhub/internal/infra/storage/memory"
)

func get(store *memory.Store, q GetBookingQuery) (dto.Booking, error) {
	h := &GetBookingHandler{UoWFactory: store}
	return h.Handle(context.Background(), q)
}

func list(store *memory.Store, q ListConsumerBookingsQuery) (dto.BookingCollection, error) {
	h := &ListConsumerBookingsHandler{UoWFactory: store}
	return h.Handle(context.Background(), q)
}

func TestGetBookingWithRelations(t *testing.T) {
	store := apptest.NewStore(t)
	created := mustCreate(t, store)

	got, err := get(store, GetBookingQuery{ConsumerID: apptest.ConsumerID, BookingID: created.ID})
	require.NoError(t, err)
	assert.Equal(t, created.BookingReference, got.BookingReference)
	require.NotNil(t, got.Event)
	assert.Equal(t, "Ana & Luis Wedding", got.Event.Name)
	require.NotNil(t, got.Vendor)
	assert.Equal(t, "Golden Fork", got.Vendor.BusinessName)
	require.NotNil(t, got.Package)
	assert.Nil(t, got.Review)
}

func TestGetBookingHidesOtherConsumers(t *testing.T) {
	store := apptest.NewStore(t)
	created := mustCreate(t, store)

	_, err := get(store, GetBookingQuery{ConsumerID: apptest.OtherConsumerID, BookingID: created.ID})
	assert.ErrorIs(t, err, domainbooking.ErrNotFound)
}

func TestListConsumerBookingsFiltersByStatus(t *testing.T) {
	store := apptest.NewStore(t)
	first := mustCreate(t, store)
	second := mustCreate(t, store)
	setStatus(t, store, second.ID, domainbooking.StatusConfirmed)

	all, err := list(store, ListConsumerBookingsQuery{ConsumerID: apptest.ConsumerID})
	require.NoError(t, err)
	assert.Len(t, all.Items, 2)

	pending, err := list(store, ListConsumerBookingsQuery{ConsumerID: apptest.ConsumerID, Status: "pending"})
	require.NoError(t, err)
	require.Len(t, pending.Items, 1)
	assert.Equal(t, first.ID, pending.Items[0].ID)

	both, err := list(store, ListConsumerBookingsQuery{ConsumerID: apptest.ConsumerID, Status: "pending, confirmed"})
	require.NoError(t, err)
	assert.Len(t, both.Items, 2)

	none, err := list(store, ListConsumerBookingsQuery{ConsumerID: apptest.OtherConsumerID})
	require.NoError(t, err)
	assert.Empty(t, none.Items)

	_, err = list(store, ListConsumerBookingsQuery{ConsumerID: apptest.ConsumerID, Status: "shipped"})
	assert.ErrorIs(t, err, failure.ErrValidation)
}
