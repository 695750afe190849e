package dto

import (
	"time"

	"cateringhub/internal/domain/notifications"
)

type Notification struct {
	ID          string                 `json:"id"`
	Type        string                 `json:"type"`
	Title       string                 `json:"title"`
	Message     string                 `json:"message"`
	Link        string                 `json:"link,omitempty"`
	Metadata    notifications.Metadata `json:"metadata"`
	CreatedAt   time.Time              `json:"createdAt"`
	DeliveredAt *time.Time             `json:"deliveredAt,omitempty"`
}

type NotificationCollection struct {
	Items []Notification `json:"items"`
}

func MapNotification(n *notifications.Notification) Notification {
	out := Notification{
		ID:        string(n.ID),
		Type:      string(n.Type),
		Title:     n.Title,
		Message:   n.Message,
		Link:      n.Link,
		Metadata:  n.Metadata,
		CreatedAt: n.CreatedAt,
	}
	if !n.DeliveredAt.IsZero() {
		at := n.DeliveredAt
		out.DeliveredAt = &at
	}
	return out
}
