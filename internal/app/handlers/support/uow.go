package support

import (
	"context"
	"time"

	"cateringhub/internal/app/uow"
)

// BeginReadOnlyUnit reuses the unit in ctx or opens a read-only one; the
// returned release func is nil when nothing was opened.
func BeginReadOnlyUnit(ctx context.Context, factory uow.UoWFactory) (uow.UnitOfWork, context.Context, func(), error) {
	if unit, ok := uow.FromContext(ctx); ok {
		return unit, ctx, nil, nil
	}
	if factory == nil {
		return nil, ctx, nil, uow.ErrUnitOfWorkMissing
	}
	unit, err := factory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, ctx, nil, err
	}
	execCtx := uow.Attach(ctx, unit)
	release := func() {
		_ = unit.Rollback(execCtx)
	}
	return unit, execCtx, release, nil
}

// RequireUnit returns the unit of work opened by the transaction middleware.
func RequireUnit(ctx context.Context) (uow.UnitOfWork, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}
	return unit, nil
}

// Clock returns now in UTC, or time.Now when now is nil.
func Clock(now func() time.Time) time.Time {
	if now != nil {
		return now().UTC()
	}
	return time.Now().UTC()
}
