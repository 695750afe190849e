package bookings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"cateringhub/internal/app/apptest"
	"cateringhub/internal/app/dto"
	handlersupport "cateringhub/internal/app/handlers/support"
	"cateringhub/internal/app/uow"
	domainbooking "cateringhub/internal/domain/booking"
	"cateringhub/internal/infra/storage/memory"
)

func handlersupportUnit(ctx context.Context) (uow.UnitOfWork, error) {
	return handlersupport.RequireUnit(ctx)
}

// setStatus forces a booking into status, bypassing the vendor flow.
func setStatus(t *testing.T, store *memory.Store, id string, status domainbooking.Status) {
	t.Helper()
	_, err := apptest.InUnit(store, func(ctx context.Context) (struct{}, error) {
		unit, err := handlersupport.RequireUnit(ctx)
		if err != nil {
			return struct{}{}, err
		}
		b, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(id))
		if err != nil {
			return struct{}{}, err
		}
		b.Status = status
		b.UpdatedAt = time.Now()
		return struct{}{}, unit.Bookings().Save(ctx, b)
	})
	require.NoError(t, err)
}

func mustCreate(t *testing.T, store *memory.Store) dto.Booking {
	t.Helper()
	got, err := create(store, createCmd(80))
	require.NoError(t, err)
	return got
}
