package middleware

import (
	"context"
	"errors"

	"cateringhub/internal/app/commands"
	"cateringhub/internal/app/uow"
)

type TxOptionsProvider func(cmd commands.Command) uow.TxOptions

// DefaultConflictRetries bounds how often a command is re-run after losing a write race.
const DefaultConflictRetries = 3

// Transaction runs each command inside one unit of work, committing only when
// the handler succeeds. A unit that fails with uow.ErrConflict is discarded
// and the command runs again against fresh state.
func Transaction(factory uow.UoWFactory, optsProvider TxOptionsProvider) CommandMiddleware {
	if factory == nil {
		panic("middleware: uow factory required")
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			opts := uow.TxOptions{}
			if optsProvider != nil {
				opts = optsProvider(cmd)
			}
			var (
				res any
				err error
			)
			for attempt := 0; attempt <= DefaultConflictRetries; attempt++ {
				res, err = runInUnit(ctx, factory, opts, next, cmd)
				if !errors.Is(err, uow.ErrConflict) {
					return res, err
				}
				if ctx.Err() != nil {
					return nil, err
				}
			}
			return nil, err
		})
	}
}

func runInUnit(ctx context.Context, factory uow.UoWFactory, opts uow.TxOptions, next commands.Bus, cmd commands.Command) (any, error) {
	unit, err := factory.Begin(ctx, opts)
	if err != nil {
		return nil, err
	}
	execCtx := uow.Attach(ctx, unit)
	committed := false
	defer func() {
		if !committed {
			_ = unit.Rollback(execCtx)
		}
	}()

	res, err := next.Dispatch(execCtx, cmd)
	if err != nil {
		return nil, err
	}
	if err := unit.Commit(execCtx); err != nil {
		return nil, err
	}
	committed = true
	return res, nil
}
