package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cateringhub/internal/app/middleware"
	appoutbox "cateringhub/internal/app/outbox"
	"cateringhub/internal/app/uow"
	domainbooking "cateringhub/internal/domain/booking"
	"cateringhub/internal/domain/notifications"
	"cateringhub/internal/domain/pricing"
	"cateringhub/internal/domain/shared/failure"
	"cateringhub/internal/domain/shared/money"
	"cateringhub/internal/domain/vendors"
	"cateringhub/internal/infra/fixtures"
)

func newBooking(t *testing.T, id, reference string) *domainbooking.Booking {
	t.Helper()
	b, err := domainbooking.New(domainbooking.CreateParams{
		ID:         domainbooking.BookingID(id),
		Reference:  reference,
		ConsumerID: "consumer-1",
		VendorID:   "vendor-1",
		GuestCount: 10,
		Price:      pricing.Breakdown{Subtotal: money.Must("10"), ServiceCharges: money.Zero(), SetupFee: money.Zero(), Total: money.Must("10")},
		CreatedAt:  time.Now(),
	})
	require.NoError(t, err)
	return b
}

func TestConcurrentReferencesAreUnique(t *testing.T) {
	store := NewStore()
	gen := domainbooking.ReferenceGenerator{}
	const total = 10000

	var wg sync.WaitGroup
	refs := make([]string, total)
	errs := make([]error, total)
	for i := 0; i < total; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = uow.Run(context.Background(), store, func(ctx context.Context, unit uow.UnitOfWork) error {
				ref, err := gen.Generate(ctx, unit.Bookings())
				if err != nil {
					return err
				}
				refs[i] = ref
				return unit.Bookings().Insert(ctx, newBooking(t, ref, ref))
			})
		}(i)
	}
	wg.Wait()

	seen := make(map[string]struct{}, total)
	for i := range refs {
		require.NoError(t, errs[i])
		_, dup := seen[refs[i]]
		require.False(t, dup, "duplicate reference %s", refs[i])
		seen[refs[i]] = struct{}{}
	}
	assert.Len(t, store.bookings, total)
	assert.Len(t, store.references, total)
}

func TestInsertRejectsTakenReference(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	require.NoError(t, uow.Run(ctx, store, func(ctx context.Context, unit uow.UnitOfWork) error {
		return unit.Bookings().Insert(ctx, newBooking(t, "b-1", "BK-2026-AAAAAA"))
	}))

	err := uow.Run(ctx, store, func(ctx context.Context, unit uow.UnitOfWork) error {
		return unit.Bookings().Insert(ctx, newBooking(t, "b-2", "BK-2026-AAAAAA"))
	})
	assert.ErrorIs(t, err, domainbooking.ErrReferenceTaken)
}

func TestRollbackDiscardsStagedWrites(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	unit, err := store.Begin(ctx, uow.TxOptions{})
	require.NoError(t, err)
	execCtx := uow.Attach(ctx, unit)
	require.NoError(t, unit.Bookings().Insert(execCtx, newBooking(t, "b-1", "BK-2026-BBBBBB")))
	require.NoError(t, unit.Notifications().Insert(execCtx, &notifications.Notification{ID: "n-1", UserID: "u-1"}))
	require.NoError(t, store.Outbox().Add(execCtx, appoutbox.EventRecord{ID: "e-1", Name: "booking.created"}))

	// staged writes are visible inside the unit
	_, err = unit.Bookings().ByID(execCtx, "b-1")
	require.NoError(t, err)
	require.NoError(t, unit.Rollback(execCtx))

	assert.Empty(t, store.bookings)
	assert.Empty(t, store.notifications)
	assert.Empty(t, store.Outbox().Records())
	assert.ErrorIs(t, unit.Commit(execCtx), ErrUnitClosed)
}

func TestCommitPublishesOutboxAndVersionsSaves(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	require.NoError(t, uow.Run(ctx, store, func(ctx context.Context, unit uow.UnitOfWork) error {
		if err := unit.Bookings().Insert(ctx, newBooking(t, "b-1", "BK-2026-CCCCCC")); err != nil {
			return err
		}
		return store.Outbox().Add(ctx, appoutbox.EventRecord{ID: "e-1", Name: "booking.created", Payload: []byte(`{}`)})
	}))
	require.Len(t, store.Outbox().Records(), 1)

	var stale *domainbooking.Booking
	require.NoError(t, uow.Run(ctx, store, func(ctx context.Context, unit uow.UnitOfWork) error {
		b, err := unit.Bookings().ByID(ctx, "b-1")
		if err != nil {
			return err
		}
		stale = cloneBooking(b)
		require.NoError(t, b.TransitionTo(domainbooking.StatusConfirmed, time.Now()))
		return unit.Bookings().Save(ctx, b)
	}))

	err := uow.Run(ctx, store, func(ctx context.Context, unit uow.UnitOfWork) error {
		return unit.Bookings().Save(ctx, stale)
	})
	assert.ErrorIs(t, err, domainbooking.ErrConcurrentUpdate)

	msg, err := store.Outbox().Claim(ctx, "w-1")
	require.NoError(t, err)
	require.NotNil(t, msg)
	require.NoError(t, store.Outbox().MarkSent(ctx, msg.ID))
	next, err := store.Outbox().Claim(ctx, "w-1")
	require.NoError(t, err)
	assert.Nil(t, next)
}

func TestStaleVendorSaveIsRetryableConflict(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	require.NoError(t, store.SeedCatalog(ctx, fixtures.Catalog{
		Vendors: []*vendors.Vendor{{ID: "v-1", Status: vendors.StatusApproved}},
	}))

	var stale *vendors.Vendor
	require.NoError(t, uow.Run(ctx, store, func(ctx context.Context, unit uow.UnitOfWork) error {
		v, err := unit.Vendors().ByID(ctx, "v-1")
		if err != nil {
			return err
		}
		copied := *v
		stale = &copied
		v.RecordBooking(time.Now())
		return unit.Vendors().Save(ctx, v)
	}))

	err := uow.Run(ctx, store, func(ctx context.Context, unit uow.UnitOfWork) error {
		return unit.Vendors().Save(ctx, stale)
	})
	assert.ErrorIs(t, err, uow.ErrVendorChanged)
	assert.ErrorIs(t, err, uow.ErrConflict)
	assert.Equal(t, failure.KindInvalidState, failure.KindOf(err))
}

func TestReadOnlyUnitRejectsWrites(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	unit, err := store.Begin(ctx, uow.TxOptions{ReadOnly: true})
	require.NoError(t, err)
	defer unit.Rollback(ctx)

	err = unit.Bookings().Insert(ctx, newBooking(t, "b-1", "BK-2026-DDDDDD"))
	assert.ErrorIs(t, err, errReadOnly)
}

func TestSeedCatalogAndLookups(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	require.NoError(t, store.SeedCatalog(ctx, fixtures.Catalog{
		Vendors:  []*vendors.Vendor{{ID: "v-1", Status: vendors.StatusApproved}},
		Packages: []*vendors.Package{{ID: "p-1", VendorID: "v-1", PriceType: pricing.Fixed, BasePrice: money.Must("5")}},
	}))

	unit, err := store.Begin(ctx, uow.TxOptions{ReadOnly: true})
	require.NoError(t, err)
	defer unit.Rollback(ctx)

	v, err := unit.Vendors().ByID(ctx, "v-1")
	require.NoError(t, err)
	assert.True(t, v.Approved())
	_, err = unit.Packages().ByID(ctx, "missing")
	assert.ErrorIs(t, err, vendors.ErrPackageNotFound)
	_, err = unit.Events().ByID(ctx, "missing")
	assert.Error(t, err)
}

func TestIdempotencyStoreReservesOncePerKey(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	store := NewIdempotencyStore(time.Hour)
	store.Now = func() time.Time { return now }

	ok, err := store.Reserve(ctx, "k", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = store.Reserve(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	rec, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, rec.Pending)

	require.NoError(t, store.Save(ctx, middleware.IdempotencyRecord{Key: "k", Payload: []byte(`1`), OccurredAt: now}))
	require.NoError(t, store.Release(ctx, "k"))
	rec, found, _ = store.Get(ctx, "k")
	require.True(t, found)
	assert.False(t, rec.Pending)
	assert.Equal(t, []byte(`1`), rec.Payload)

	ok, _ = store.Reserve(ctx, "k", time.Minute)
	assert.False(t, ok)

	now = now.Add(2 * time.Hour)
	_, found, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
	ok, _ = store.Reserve(ctx, "k", time.Minute)
	assert.True(t, ok)
}

func TestIdempotencyStoreReleaseAndStaleLease(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	store := NewIdempotencyStore(time.Hour)
	store.Now = func() time.Time { return now }

	ok, _ := store.Reserve(ctx, "k", time.Minute)
	require.True(t, ok)
	require.NoError(t, store.Release(ctx, "k"))
	_, found, _ := store.Get(ctx, "k")
	assert.False(t, found)

	ok, _ = store.Reserve(ctx, "k", time.Minute)
	require.True(t, ok)
	now = now.Add(2 * time.Minute)
	ok, _ = store.Reserve(ctx, "k", time.Minute)
	assert.True(t, ok)
}
