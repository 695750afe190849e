package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"time"

	"cateringhub/internal/app/commands"
	"cateringhub/internal/domain/shared/failure"
)

// IdempotentCommand is implemented by commands that may be replayed safely by key.
type IdempotentCommand interface {
	commands.Command
	IdempotencyKey() string
	// ResultPrototype returns a pointer to a zero value of the handler's result type.
	ResultPrototype() any
}

type IdempotencyRecord struct {
	Key        string       `json:"key"`
	Payload    []byte       `json:"payload,omitempty"`
	ErrorKind  failure.Kind `json:"error_kind,omitempty"`
	Error      string       `json:"error,omitempty"`
	Pending    bool         `json:"pending,omitempty"`
	OccurredAt time.Time    `json:"occurred_at"`
}

// IdempotencyStore persists command outcomes by key. Reserve writes a pending
// marker only when no record exists for key; a pending marker older than
// lease no longer blocks it. Save overwrites the marker with the outcome and
// Release drops a pending marker.
type IdempotencyStore interface {
	Get(ctx context.Context, key string) (IdempotencyRecord, bool, error)
	Reserve(ctx context.Context, key string, lease time.Duration) (bool, error)
	Save(ctx context.Context, rec IdempotencyRecord) error
	Release(ctx context.Context, key string) error
}

type ResultCodec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, out any) error
}

type JSONResultCodec struct{}

func (JSONResultCodec) Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONResultCodec) Decode(data []byte, out any) error {
	return json.Unmarshal(data, out)
}

var errMissingPrototype = errors.New("middleware: idempotent command requires result prototype")

// ErrIdempotencyInProgress is returned when another request holding the same
// key did not finish within the wait window.
var ErrIdempotencyInProgress = failure.New(failure.KindInvalidState, "a request with this idempotency key is still being processed")

type IdempotencyOptions struct {
	Codec ResultCodec
	// Lease bounds how long a pending marker blocks other requests.
	Lease time.Duration
	// Wait bounds how long a duplicate waits for the first request's outcome.
	Wait time.Duration
	Poll time.Duration
}

func (o IdempotencyOptions) withDefaults() IdempotencyOptions {
	if o.Codec == nil {
		o.Codec = JSONResultCodec{}
	}
	if o.Lease <= 0 {
		o.Lease = 30 * time.Second
	}
	if o.Wait <= 0 {
		o.Wait = 10 * time.Second
	}
	if o.Poll <= 0 {
		o.Poll = 20 * time.Millisecond
	}
	return o
}

// Idempotency replays the stored outcome of a command seen before under the same key.
// Only successes and user-facing rejections are stored; unexpected failures may be retried.
func Idempotency(store IdempotencyStore, codec ResultCodec) CommandMiddleware {
	return IdempotencyWithOptions(store, IdempotencyOptions{Codec: codec})
}

// IdempotencyWithOptions reserves the key before dispatching, so overlapping
// requests with one key run the command once and the others replay its outcome.
func IdempotencyWithOptions(store IdempotencyStore, opts IdempotencyOptions) CommandMiddleware {
	if store == nil {
		panic("middleware: idempotency store required")
	}
	opts = opts.withDefaults()
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			idCmd, ok := cmd.(IdempotentCommand)
			if !ok || idCmd.IdempotencyKey() == "" {
				return next.Dispatch(ctx, cmd)
			}
			key := idCmd.IdempotencyKey()
			deadline := time.Now().Add(opts.Wait)
			for {
				rec, found, err := store.Get(ctx, key)
				if err != nil {
					return nil, err
				}
				if found && rec.Pending && time.Since(rec.OccurredAt) > opts.Lease {
					found = false
				}
				if found && !rec.Pending {
					return replay(rec, idCmd, opts.Codec)
				}
				if !found {
					reserved, err := store.Reserve(ctx, key, opts.Lease)
					if err != nil {
						return nil, err
					}
					if reserved {
						return runReserved(ctx, store, next, cmd, key, opts.Codec)
					}
					continue
				}
				if !time.Now().Before(deadline) {
					return nil, ErrIdempotencyInProgress
				}
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(opts.Poll):
				}
			}
		})
	}
}

func runReserved(ctx context.Context, store IdempotencyStore, next commands.Bus, cmd commands.Command, key string, codec ResultCodec) (any, error) {
	release := func(cause error) error {
		if err := store.Release(context.WithoutCancel(ctx), key); err != nil {
			return errors.Join(cause, err)
		}
		return cause
	}
	result, err := next.Dispatch(ctx, cmd)
	record := IdempotencyRecord{Key: key, OccurredAt: time.Now().UTC()}
	if err != nil {
		if !failure.UserFacing(err) {
			return nil, release(err)
		}
		record.ErrorKind = failure.KindOf(err)
		record.Error = err.Error()
		if saveErr := store.Save(ctx, record); saveErr != nil {
			return nil, release(errors.Join(err, saveErr))
		}
		return nil, err
	}
	if result != nil {
		payload, encErr := codec.Encode(result)
		if encErr != nil {
			return nil, release(encErr)
		}
		record.Payload = payload
	}
	if saveErr := store.Save(ctx, record); saveErr != nil {
		return nil, saveErr
	}
	return result, nil
}

func replay(rec IdempotencyRecord, cmd IdempotentCommand, codec ResultCodec) (any, error) {
	if rec.Error != "" {
		return nil, failure.New(rec.ErrorKind, rec.Error)
	}
	proto := cmd.ResultPrototype()
	if proto == nil {
		return nil, errMissingPrototype
	}
	if err := codec.Decode(rec.Payload, proto); err != nil {
		return nil, err
	}
	return derefPrototype(proto), nil
}

// derefPrototype turns the decoded *T back into the T the handler returns.
func derefPrototype(proto any) any {
	rv := reflect.ValueOf(proto)
	if rv.Kind() == reflect.Ptr && !rv.IsNil() {
		return rv.Elem().Interface()
	}
	return proto
}
