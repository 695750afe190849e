package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"cateringhub/internal/app/middleware"
)

const defaultKeyPrefix = "cateringhub:idempotency:"

// IdempotencyStore keeps replayable command outcomes in Redis with a TTL.
type IdempotencyStore struct {
	Client goredis.Cmdable
	TTL    time.Duration
	Prefix string
}

func NewIdempotencyStore(client goredis.Cmdable, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{Client: client, TTL: ttl, Prefix: defaultKeyPrefix}
}

func (s *IdempotencyStore) Get(ctx context.Context, key string) (middleware.IdempotencyRecord, bool, error) {
	raw, err := s.Client.Get(ctx, s.keyFor(key)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return middleware.IdempotencyRecord{}, false, nil
		}
		return middleware.IdempotencyRecord{}, false, fmt.Errorf("idempotency get: %w", err)
	}
	rec, err := decodeRecord(raw)
	if err != nil {
		return middleware.IdempotencyRecord{}, false, err
	}
	return rec, true, nil
}

// Reserve claims key with a pending marker that expires after lease, so a
// crashed holder cannot block the key for the full TTL.
func (s *IdempotencyStore) Reserve(ctx context.Context, key string, lease time.Duration) (bool, error) {
	raw, err := encodeRecord(middleware.IdempotencyRecord{Key: key, Pending: true, OccurredAt: time.Now().UTC()})
	if err != nil {
		return false, err
	}
	ok, err := s.Client.SetNX(ctx, s.keyFor(key), raw, lease).Result()
	if err != nil {
		return false, fmt.Errorf("idempotency reserve: %w", err)
	}
	return ok, nil
}

func (s *IdempotencyStore) Save(ctx context.Context, rec middleware.IdempotencyRecord) error {
	raw, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	if err := s.Client.Set(ctx, s.keyFor(rec.Key), raw, s.TTL).Err(); err != nil {
		return fmt.Errorf("idempotency save: %w", err)
	}
	return nil
}

func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.Client.Del(ctx, s.keyFor(key)).Err(); err != nil {
		return fmt.Errorf("idempotency release: %w", err)
	}
	return nil
}

func (s *IdempotencyStore) keyFor(key string) string {
	prefix := s.Prefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return prefix + key
}

func encodeRecord(rec middleware.IdempotencyRecord) ([]byte, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("idempotency encode: %w", err)
	}
	return raw, nil
}

func decodeRecord(raw []byte) (middleware.IdempotencyRecord, error) {
	var rec middleware.IdempotencyRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return middleware.IdempotencyRecord{}, fmt.Errorf("idempotency decode: %w", err)
	}
	return rec, nil
}

var _ middleware.IdempotencyStore = (*IdempotencyStore)(nil)
