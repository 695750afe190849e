package middleware

import (
	"context"
	"log/slog"

	"cateringhub/internal/app/commands"
	"cateringhub/internal/domain/shared/failure"
)

// ErrorLogging logs failures that are not user-facing business rejections.
func ErrorLogging(logger *slog.Logger) CommandMiddleware {
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			res, err := next.Dispatch(ctx, cmd)
			if err != nil && logger != nil && !failure.UserFacing(err) {
				logger.ErrorContext(ctx, "command failed", "command", cmd.Key(), "kind", failure.KindOf(err), "error", err)
			}
			return res, err
		})
	}
}
