package middleware

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cateringhub/internal/app/commands"
	"cateringhub/internal/domain/shared/failure"
)

type keyedCommand struct{ key string }

func (keyedCommand) Key() string              { return "test.keyed" }
func (c keyedCommand) IdempotencyKey() string { return c.key }
func (keyedCommand) ResultPrototype() any     { return new(keyedResult) }

type keyedResult struct {
	ID string `json:"id"`
}

type mapIdempotencyStore struct {
	mu       sync.Mutex
	records  map[string]IdempotencyRecord
	releases int
}

func newMapIdempotencyStore() *mapIdempotencyStore {
	return &mapIdempotencyStore{records: map[string]IdempotencyRecord{}}
}

func (s *mapIdempotencyStore) Get(_ context.Context, key string) (IdempotencyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[key]
	return rec, ok, nil
}

func (s *mapIdempotencyStore) Reserve(_ context.Context, key string, lease time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.records[key]; ok && !(rec.Pending && time.Since(rec.OccurredAt) > lease) {
		return false, nil
	}
	s.records[key] = IdempotencyRecord{Key: key, Pending: true, OccurredAt: time.Now().UTC()}
	return true, nil
}

func (s *mapIdempotencyStore) Save(_ context.Context, rec IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.Key] = rec
	return nil
}

func (s *mapIdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.records[key]; ok && rec.Pending {
		delete(s.records, key)
		s.releases++
	}
	return nil
}

func TestIdempotencyReplaysStoredOutcome(t *testing.T) {
	store := newMapIdempotencyStore()
	var calls atomic.Int32
	bus := Idempotency(store, nil)(commandFunc(func(context.Context, commands.Command) (any, error) {
		calls.Add(1)
		return keyedResult{ID: "b-1"}, nil
	}))

	for i := 0; i < 3; i++ {
		got, err := commands.Dispatch[keyedCommand, keyedResult](context.Background(), bus, keyedCommand{key: "k"})
		require.NoError(t, err)
		assert.Equal(t, "b-1", got.ID)
	}
	assert.EqualValues(t, 1, calls.Load())
}

func TestIdempotencyReleasesKeyOnUnexpectedFailure(t *testing.T) {
	store := newMapIdempotencyStore()
	var calls atomic.Int32
	bus := Idempotency(store, nil)(commandFunc(func(context.Context, commands.Command) (any, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("mongo: connection reset")
		}
		return keyedResult{ID: "b-2"}, nil
	}))

	_, err := commands.Dispatch[keyedCommand, keyedResult](context.Background(), bus, keyedCommand{key: "k"})
	require.Error(t, err)
	assert.Equal(t, 1, store.releases)

	got, err := commands.Dispatch[keyedCommand, keyedResult](context.Background(), bus, keyedCommand{key: "k"})
	require.NoError(t, err)
	assert.Equal(t, "b-2", got.ID)
	assert.EqualValues(t, 2, calls.Load())
}

func TestIdempotencyStoresUserFacingRejection(t *testing.T) {
	store := newMapIdempotencyStore()
	var calls atomic.Int32
	bus := Idempotency(store, nil)(commandFunc(func(context.Context, commands.Command) (any, error) {
		calls.Add(1)
		return nil, failure.New(failure.KindInvalidTransition, "cannot change booking status")
	}))

	for i := 0; i < 2; i++ {
		_, err := commands.Dispatch[keyedCommand, keyedResult](context.Background(), bus, keyedCommand{key: "k"})
		assert.ErrorIs(t, err, failure.ErrInvalidTransition)
	}
	assert.EqualValues(t, 1, calls.Load())
	assert.Zero(t, store.releases)
}

func TestIdempotencyWaitersReplayHolderOutcome(t *testing.T) {
	store := newMapIdempotencyStore()
	var calls atomic.Int32
	started := make(chan struct{})
	var once sync.Once
	unblock := make(chan struct{})
	bus := IdempotencyWithOptions(store, IdempotencyOptions{Poll: time.Millisecond})(commandFunc(func(context.Context, commands.Command) (any, error) {
		calls.Add(1)
		once.Do(func() { close(started) })
		<-unblock
		return keyedResult{ID: "b-3"}, nil
	}))

	const workers = 6
	results := make([]keyedResult, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], errs[0] = commands.Dispatch[keyedCommand, keyedResult](context.Background(), bus, keyedCommand{key: "k"})
	}()
	<-started
	for i := 1; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = commands.Dispatch[keyedCommand, keyedResult](context.Background(), bus, keyedCommand{key: "k"})
		}(i)
	}
	time.Sleep(10 * time.Millisecond)
	close(unblock)
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "b-3", results[i].ID)
	}
	assert.EqualValues(t, 1, calls.Load())
}

func TestIdempotencyGivesUpWhileKeyIsHeld(t *testing.T) {
	store := newMapIdempotencyStore()
	require.NoError(t, store.Save(context.Background(), IdempotencyRecord{Key: "k", Pending: true, OccurredAt: time.Now().UTC()}))
	called := false
	bus := IdempotencyWithOptions(store, IdempotencyOptions{Wait: 20 * time.Millisecond, Poll: time.Millisecond})(commandFunc(func(context.Context, commands.Command) (any, error) {
		called = true
		return keyedResult{}, nil
	}))

	_, err := commands.Dispatch[keyedCommand, keyedResult](context.Background(), bus, keyedCommand{key: "k"})
	assert.ErrorIs(t, err, ErrIdempotencyInProgress)
	assert.False(t, called)
}

func TestIdempotencyTakesOverStaleLease(t *testing.T) {
	store := newMapIdempotencyStore()
	require.NoError(t, store.Save(context.Background(), IdempotencyRecord{Key: "k", Pending: true, OccurredAt: time.Now().Add(-time.Hour).UTC()}))
	bus := IdempotencyWithOptions(store, IdempotencyOptions{Lease: time.Minute})(commandFunc(func(context.Context, commands.Command) (any, error) {
		return keyedResult{ID: "b-4"}, nil
	}))

	got, err := commands.Dispatch[keyedCommand, keyedResult](context.Background(), bus, keyedCommand{key: "k"})
	require.NoError(t, err)
	assert.Equal(t, "b-4", got.ID)
}
