package middleware

import (
	"context"
	"fmt"

	"cateringhub/internal/app/commands"
	"cateringhub/internal/app/outbox"
	"cateringhub/internal/app/queries"
)

type Validator interface {
	Validate(ctx context.Context, message any) error
}

// Validation rejects malformed commands before a unit of work is opened.
func Validation(v Validator) CommandMiddleware {
	mustValidator(v)
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			return validated(ctx, v, cmd, func() (any, error) { return next.Dispatch(ctx, cmd) })
		})
	}
}

func QueryValidation(v Validator) QueryMiddleware {
	mustValidator(v)
	return func(next queries.Bus) queries.Bus {
		return queryFunc(func(ctx context.Context, q queries.Query) (any, error) {
			return validated(ctx, v, q, func() (any, error) { return next.Ask(ctx, q) })
		})
	}
}

func validated(ctx context.Context, v Validator, msg any, run func() (any, error)) (any, error) {
	if err := v.Validate(ctx, msg); err != nil {
		return nil, err
	}
	return run()
}

func mustValidator(v Validator) {
	if v == nil {
		panic("middleware: validator required")
	}
}

// OutboxFlush flushes records staged by the handler while the unit of work
// is still open, so a flush failure rolls the command back.
func OutboxFlush(box outbox.Outbox) CommandMiddleware {
	if box == nil {
		panic("middleware: outbox required")
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			res, err := next.Dispatch(ctx, cmd)
			if err != nil {
				return nil, err
			}
			if err := box.Flush(ctx); err != nil {
				return nil, fmt.Errorf("flush outbox for %s: %w", cmd.Key(), err)
			}
			return res, nil
		})
	}
}
