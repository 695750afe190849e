package notify

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"cateringhub/internal/app/outbox"
	"cateringhub/internal/app/policies"
	"cateringhub/internal/app/uow"
	"cateringhub/internal/domain/notifications"
	"cateringhub/internal/domain/shared/events"
)

var ErrRecipientRequired = errors.New("notify: recipient user id required")

// UnitDispatcher stores notifications through the unit of work in ctx and
// queues a notification.created event for delivery.
type UnitDispatcher struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Now     func() time.Time
}

func (d UnitDispatcher) Notify(ctx context.Context, n notifications.Notification) error {
	if n.UserID == "" {
		return ErrRecipientRequired
	}
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return uow.ErrUnitOfWorkMissing
	}
	if n.ID == "" {
		n.ID = notifications.NotificationID(uuid.NewString())
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = d.now()
	}
	if err := unit.Notifications().Insert(ctx, &n); err != nil {
		return err
	}
	return outbox.RecordDomainEvents(ctx, d.Outbox, d.Encoder, []events.DomainEvent{notifications.CreatedEvent(&n)})
}

func (d UnitDispatcher) now() time.Time {
	if d.Now != nil {
		return d.Now().UTC()
	}
	return time.Now().UTC()
}

var _ policies.NotificationDispatcher = UnitDispatcher{}
