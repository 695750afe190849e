package notifications

import (
	"context"

	"cateringhub/internal/app/dto"
	handlersupport "cateringhub/internal/app/handlers/support"
	"cateringhub/internal/app/queries"
	"cateringhub/internal/app/uow"
)

const (
	listNotificationsKey = "notifications.list"
	defaultListLimit     = 50
	maxListLimit         = 200
)

type ListQuery struct {
	UserID string `validate:"required"`
	Limit  int    `validate:"gte=0"`
}

func (q ListQuery) Key() string { return listNotificationsKey }

// ListHandler returns the caller's notifications, newest first.
type ListHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListHandler) Handle(ctx context.Context, q ListQuery) (dto.NotificationCollection, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	unit, execCtx, release, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.NotificationCollection{}, err
	}
	if release != nil {
		defer release()
	}
	found, err := unit.Notifications().ListByUser(execCtx, q.UserID, limit)
	if err != nil {
		return dto.NotificationCollection{}, err
	}
	items := make([]dto.Notification, 0, len(found))
	for _, n := range found {
		items = append(items, dto.MapNotification(n))
	}
	return dto.NotificationCollection{Items: items}, nil
}

var _ queries.Handler[ListQuery, dto.NotificationCollection] = (*ListHandler)(nil)
