// Package delivery consumes relayed notification events and marks the stored
// notifications as delivered.
package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/IBM/sarama"

	"cateringhub/internal/app/uow"
	"cateringhub/internal/domain/notifications"
	"cateringhub/internal/infra/inbox"
)

const createdEventType = notifications.CreatedEventName + ".v1"

// Inbox deduplicates events by id. Seen only reads; Record runs after the
// delivery succeeded and fails with inbox.ErrAlreadyRecorded on a lost race.
type Inbox interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Record(ctx context.Context, eventID string) error
}

// forgetter is implemented by inboxes that are not rolled back with the unit.
type forgetter interface {
	Forget(ctx context.Context, eventID string)
}

// Sender hands a notification to the user-facing channel.
type Sender interface {
	Send(ctx context.Context, n notifications.Created) error
}

// LogSender stands in for a push or e-mail gateway.
type LogSender struct {
	Logger *slog.Logger
}

func (s LogSender) Send(ctx context.Context, n notifications.Created) error {
	if s.Logger != nil {
		s.Logger.InfoContext(ctx, "notification delivered",
			"notification_id", n.NotificationID,
			"user_id", n.UserID,
			"type", n.Type,
			"title", n.Title,
		)
	}
	return nil
}

type envelope struct {
	ID   string          `json:"id"`
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type Handler struct {
	UoW    uow.UoWFactory
	Inbox  Inbox
	Sender Sender
	Now    func() time.Time
	Logger *slog.Logger
}

func (h Handler) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	return h.HandlePayload(ctx, msg.Value)
}

// HandlePayload processes one CloudEvents JSON document. Events of other
// types are acknowledged without work.
func (h Handler) HandlePayload(ctx context.Context, payload []byte) error {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		if h.Logger != nil {
			h.Logger.Warn("skipping undecodable event", "error", err)
		}
		return nil
	}
	if !strings.EqualFold(env.Type, createdEventType) {
		return nil
	}
	var created notifications.Created
	if err := json.Unmarshal(env.Data, &created); err != nil || created.NotificationID == "" {
		if h.Logger != nil {
			h.Logger.Warn("skipping malformed notification event", "event_id", env.ID, "error", err)
		}
		return nil
	}

	err := uow.Run(ctx, h.UoW, func(ctx context.Context, unit uow.UnitOfWork) error {
		if h.Inbox != nil {
			seen, err := h.Inbox.Seen(ctx, env.ID)
			if err != nil {
				return fmt.Errorf("inbox: %w", err)
			}
			if seen {
				if h.Logger != nil {
					h.Logger.Debug("duplicate notification event", "event_id", env.ID)
				}
				return nil
			}
		}
		if h.Sender != nil {
			if err := h.Sender.Send(ctx, created); err != nil {
				return fmt.Errorf("send: %w", err)
			}
		}
		if err := unit.Notifications().MarkDelivered(ctx, created.NotificationID, h.now()); err != nil {
			return err
		}
		if h.Inbox != nil {
			if err := h.Inbox.Record(ctx, env.ID); err != nil {
				return fmt.Errorf("inbox: %w", err)
			}
		}
		return nil
	})
	if errors.Is(err, inbox.ErrAlreadyRecorded) {
		if h.Logger != nil {
			h.Logger.Debug("notification event delivered concurrently", "event_id", env.ID)
		}
		return nil
	}
	if err != nil {
		if f, ok := h.Inbox.(forgetter); ok {
			f.Forget(ctx, env.ID)
		}
		return err
	}
	return nil
}

func (h Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}
