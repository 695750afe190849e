package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"time"

	"github.com/google/uuid"

	"cateringhub/internal/domain/shared/events"
)

// CorrelationHeader carries the id of the request that produced an event.
const CorrelationHeader = "correlation-id"

// EventRecord is a serialized event waiting to be relayed to the broker.
type EventRecord struct {
	ID         string
	Name       string
	Payload    []byte
	OccurredAt time.Time
	Aggregate  string
	Headers    map[string]string
}

// Outbox buffers records for the current unit of work. Flush runs after
// commit.
type Outbox interface {
	Add(ctx context.Context, record EventRecord) error
	Flush(ctx context.Context) error
}

type EventEncoder interface {
	Encode(ev events.DomainEvent) (EventRecord, error)
}

// JSONEventEncoder stores the event struct itself as the payload.
type JSONEventEncoder struct {
	IDGenerator func() string
}

func (e JSONEventEncoder) Encode(ev events.DomainEvent) (EventRecord, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return EventRecord{}, fmt.Errorf("encode %s: %w", ev.EventName(), err)
	}
	newID := uuid.NewString
	if e.IDGenerator != nil {
		newID = e.IDGenerator
	}
	return EventRecord{
		ID:         newID(),
		Name:       ev.EventName(),
		Payload:    payload,
		OccurredAt: ev.OccurredAt().UTC(),
		Aggregate:  ev.AggregateID(),
		Headers:    map[string]string{},
	}, nil
}

type correlationKey struct{}

// WithCorrelationID tags events recorded under ctx with id.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, correlationKey{}, id)
}

func CorrelationIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}

// RecordDomainEvents encodes evs and appends them to box, stamping the
// correlation id found in ctx.
func RecordDomainEvents(ctx context.Context, box Outbox, encoder EventEncoder, evs []events.DomainEvent) error {
	if box == nil || len(evs) == 0 {
		return nil
	}
	if encoder == nil {
		encoder = JSONEventEncoder{}
	}
	correlationID := CorrelationIDFromContext(ctx)
	for _, ev := range evs {
		rec, err := encoder.Encode(ev)
		if err != nil {
			return err
		}
		if correlationID != "" {
			headers := maps.Clone(rec.Headers)
			if headers == nil {
				headers = map[string]string{}
			}
			headers[CorrelationHeader] = correlationID
			rec.Headers = headers
		}
		if err := box.Add(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}
