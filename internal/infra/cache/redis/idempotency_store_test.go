package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cateringhub/internal/app/middleware"
	"cateringhub/internal/domain/shared/failure"
)

// fakeRedis implements the commands the store uses on top of a map.
type fakeRedis struct {
	goredis.Cmdable
	data map[string]string
	ttls map[string]time.Duration
	err  error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *goredis.StringCmd {
	if f.err != nil {
		return goredis.NewStringResult("", f.err)
	}
	v, ok := f.data[key]
	if !ok {
		return goredis.NewStringResult("", goredis.Nil)
	}
	return goredis.NewStringResult(v, nil)
}

func (f *fakeRedis) SetNX(ctx context.Context, key string, value any, ttl time.Duration) *goredis.BoolCmd {
	if f.err != nil {
		return goredis.NewBoolResult(false, f.err)
	}
	if _, ok := f.data[key]; ok {
		return goredis.NewBoolResult(false, nil)
	}
	f.data[key] = string(value.([]byte))
	f.ttls[key] = ttl
	return goredis.NewBoolResult(true, nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value any, ttl time.Duration) *goredis.StatusCmd {
	if f.err != nil {
		return goredis.NewStatusResult("", f.err)
	}
	f.data[key] = string(value.([]byte))
	f.ttls[key] = ttl
	return goredis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *goredis.IntCmd {
	if f.err != nil {
		return goredis.NewIntResult(0, f.err)
	}
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return goredis.NewIntResult(n, nil)
}

func TestIdempotencyStoreRoundTrip(t *testing.T) {
	fake := newFakeRedis()
	store := NewIdempotencyStore(fake, time.Hour)
	ctx := context.Background()

	_, found, err := store.Get(ctx, "bookings.create:user-1:k1")
	require.NoError(t, err)
	assert.False(t, found)

	at := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save(ctx, middleware.IdempotencyRecord{Key: "bookings.create:user-1:k1", Payload: []byte(`{"id":"b-1"}`), OccurredAt: at}))
	assert.Equal(t, time.Hour, fake.ttls["cateringhub:idempotency:bookings.create:user-1:k1"])

	rec, found, err := store.Get(ctx, "bookings.create:user-1:k1")
	require.NoError(t, err)
	require.True(t, found)
	assert.JSONEq(t, `{"id":"b-1"}`, string(rec.Payload))
	assert.Equal(t, at, rec.OccurredAt)
}

func TestIdempotencyStoreReserveSaveRelease(t *testing.T) {
	fake := newFakeRedis()
	store := NewIdempotencyStore(fake, time.Hour)
	ctx := context.Background()

	ok, err := store.Reserve(ctx, "k", 30*time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 30*time.Second, fake.ttls["cateringhub:idempotency:k"])
	ok, err = store.Reserve(ctx, "k", 30*time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	rec, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, rec.Pending)

	require.NoError(t, store.Save(ctx, middleware.IdempotencyRecord{Key: "k", ErrorKind: failure.KindValidation, Error: "guest count must be at least 30 for this package"}))
	rec, _, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, rec.Pending)
	assert.Equal(t, failure.KindValidation, rec.ErrorKind)
	assert.Equal(t, time.Hour, fake.ttls["cateringhub:idempotency:k"])

	require.NoError(t, store.Release(ctx, "k"))
	_, found, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestIdempotencyStoreSurfacesBackendErrors(t *testing.T) {
	fake := newFakeRedis()
	fake.err = errors.New("connection refused")
	store := NewIdempotencyStore(fake, time.Hour)

	_, _, err := store.Get(context.Background(), "k")
	assert.ErrorContains(t, err, "connection refused")
	assert.Error(t, store.Save(context.Background(), middleware.IdempotencyRecord{Key: "k"}))
	_, err = store.Reserve(context.Background(), "k", time.Second)
	assert.Error(t, err)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	fake := newFakeRedis()
	fake.data["cateringhub:idempotency:k"] = "not json"
	_, _, err := NewIdempotencyStore(fake, 0).Get(context.Background(), "k")
	assert.Error(t, err)
}
