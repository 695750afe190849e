package uow

import (
	"context"
	"errors"
	"fmt"

	"cateringhub/internal/domain/shared/failure"
)

var ErrUnitOfWorkMissing = errors.New("uow: unit of work missing from context")

// ErrConflict marks a unit that lost a write race against another unit.
// Nothing it wrote is visible; the command may be run again from scratch.
var ErrConflict = errors.New("uow: write conflict")

// ErrVendorChanged is returned by vendor saves that lost a version check.
// It is a conflict, so the command is retried before the client sees it.
var ErrVendorChanged = fmt.Errorf("%w: %w",
	failure.New(failure.KindInvalidState, "vendor was changed by another request, reload and try again"),
	ErrConflict)

type ctxKey struct{}

func ContextWithUnitOfWork(ctx context.Context, unit UnitOfWork) context.Context {
	return context.WithValue(ctx, ctxKey{}, unit)
}

func FromContext(ctx context.Context) (UnitOfWork, bool) {
	unit, ok := ctx.Value(ctxKey{}).(UnitOfWork)
	return unit, ok && unit != nil
}

// ContextInjector is implemented by units that carry driver state (e.g. a Mongo session) in ctx.
type ContextInjector interface {
	InjectContext(ctx context.Context) context.Context
}

// Attach returns ctx prepared for running against unit.
func Attach(ctx context.Context, unit UnitOfWork) context.Context {
	if injector, ok := unit.(ContextInjector); ok {
		ctx = injector.InjectContext(ctx)
	}
	return ContextWithUnitOfWork(ctx, unit)
}

// Run executes fn inside the unit found in ctx, or inside a fresh unit that is
// committed on success and rolled back otherwise.
func Run(ctx context.Context, factory UoWFactory, fn func(ctx context.Context, unit UnitOfWork) error) error {
	if unit, ok := FromContext(ctx); ok {
		return fn(ctx, unit)
	}
	if factory == nil {
		return ErrUnitOfWorkMissing
	}
	unit, err := factory.Begin(ctx, TxOptions{})
	if err != nil {
		return err
	}
	execCtx := Attach(ctx, unit)
	if err := fn(execCtx, unit); err != nil {
		_ = unit.Rollback(execCtx)
		return err
	}
	return unit.Commit(execCtx)
}
