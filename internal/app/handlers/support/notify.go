package support

import (
	"context"
	"errors"

	"cateringhub/internal/app/policies"
	"cateringhub/internal/domain/notifications"
	"cateringhub/internal/domain/shared/failure"
)

var ErrDispatcherMissing = errors.New("handlers: notification dispatcher not configured")

// Notify hands n to the dispatcher; a missing dispatcher is an error so no
// notification is ever skipped silently.
func Notify(ctx context.Context, dispatcher policies.NotificationDispatcher, n notifications.Notification) error {
	if dispatcher == nil {
		return failure.Internal(ErrDispatcherMissing)
	}
	return dispatcher.Notify(ctx, n)
}

// Optional turns a not-found error into a nil result.
func Optional[T any](value *T, err error) (*T, error) {
	if err != nil {
		if errors.Is(err, failure.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return value, nil
}
