package memory

import (
	"context"
	"sync"
	"time"

	appoutbox "cateringhub/internal/app/outbox"
	"cateringhub/internal/app/uow"
	infraoutbox "cateringhub/internal/infra/outbox"
)

// Outbox is an in-process event log. Records added inside a memory unit of
// work are staged on the unit and land here only when it commits; the relay
// worker can drain it like the Mongo collection.
type Outbox struct {
	mu       sync.Mutex
	messages []*infraoutbox.Message
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	if unit, ok := uow.FromContext(ctx); ok {
		if staged, ok := unit.(*Unit); ok {
			return staged.stageEvent(record)
		}
	}
	o.append(record)
	return nil
}

func (o *Outbox) Flush(context.Context) error {
	return nil
}

func (o *Outbox) append(records ...appoutbox.EventRecord) {
	if len(records) == 0 {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	now := time.Now().UTC()
	for _, rec := range records {
		o.messages = append(o.messages, &infraoutbox.Message{
			ID:          rec.ID,
			Name:        rec.Name,
			Payload:     rec.Payload,
			OccurredAt:  rec.OccurredAt,
			Aggregate:   rec.Aggregate,
			Headers:     rec.Headers,
			State:       infraoutbox.StateNew,
			NextAttempt: now,
		})
	}
}

// Records returns a snapshot of every committed message, oldest first.
func (o *Outbox) Records() []infraoutbox.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]infraoutbox.Message, 0, len(o.messages))
	for _, m := range o.messages {
		out = append(out, *m)
	}
	return out
}

func (o *Outbox) Claim(ctx context.Context, workerID string) (*infraoutbox.Message, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := time.Now().UTC()
	for _, m := range o.messages {
		if (m.State == infraoutbox.StateNew || m.State == infraoutbox.StateFailed) && !m.NextAttempt.After(now) {
			m.State = infraoutbox.StateClaimed
			m.ClaimedBy = workerID
			m.ClaimedAt = now
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (o *Outbox) MarkSent(ctx context.Context, id string) error {
	return o.update(id, func(m *infraoutbox.Message) {
		m.State = infraoutbox.StateSent
		m.SentAt = time.Now().UTC()
	})
}

func (o *Outbox) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	return o.update(id, func(m *infraoutbox.Message) {
		m.State = infraoutbox.StateFailed
		m.NextAttempt = next
		m.LastError = errMsg
		m.Attempts++
	})
}

func (o *Outbox) update(id string, fn func(*infraoutbox.Message)) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, m := range o.messages {
		if m.ID == id {
			fn(m)
			return nil
		}
	}
	return nil
}

var (
	_ appoutbox.Outbox  = (*Outbox)(nil)
	_ infraoutbox.Store = (*Outbox)(nil)
)
