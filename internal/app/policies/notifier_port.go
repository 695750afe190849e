package policies

import (
	"context"

	"cateringhub/internal/domain/notifications"
)

// NotificationDispatcher persists and hands off a notification. Implementations
// must write within the caller's unit of work so the notice commits or rolls
// back together with the state change that produced it.
type NotificationDispatcher interface {
	Notify(ctx context.Context, n notifications.Notification) error
}

// NotificationDispatcherFunc adapts a function to NotificationDispatcher.
type NotificationDispatcherFunc func(ctx context.Context, n notifications.Notification) error

func (f NotificationDispatcherFunc) Notify(ctx context.Context, n notifications.Notification) error {
	return f(ctx, n)
}
