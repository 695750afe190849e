package memory

import (
	"context"
	"sync"
	"time"

	"cateringhub/internal/app/middleware"
)

// IdempotencyStore keeps recorded command outcomes for a TTL. Expired keys
// are dropped on the next write.
type IdempotencyStore struct {
	TTL time.Duration
	Now func() time.Time

	mu      sync.Mutex
	records map[string]middleware.IdempotencyRecord
}

// NewIdempotencyStore builds a store; ttl <= 0 keeps records forever.
func NewIdempotencyStore(ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{TTL: ttl, records: map[string]middleware.IdempotencyRecord{}}
}

func (s *IdempotencyStore) Get(_ context.Context, key string) (middleware.IdempotencyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[key]
	if !ok || (!rec.Pending && s.expired(rec)) {
		return middleware.IdempotencyRecord{}, false, nil
	}
	return rec, true, nil
}

// Reserve stores a pending marker unless a live record holds key.
func (s *IdempotencyStore) Reserve(_ context.Context, key string, lease time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purge()
	now := s.now()
	if existing, taken := s.records[key]; taken {
		if !existing.Pending || now.Sub(existing.OccurredAt) <= lease {
			return false, nil
		}
	}
	s.records[key] = middleware.IdempotencyRecord{Key: key, Pending: true, OccurredAt: now}
	return true, nil
}

func (s *IdempotencyStore) Save(_ context.Context, rec middleware.IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purge()
	s.records[rec.Key] = rec
	return nil
}

func (s *IdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.records[key]; ok && rec.Pending {
		delete(s.records, key)
	}
	return nil
}

func (s *IdempotencyStore) purge() {
	if s.records == nil {
		s.records = map[string]middleware.IdempotencyRecord{}
	}
	for key, existing := range s.records {
		if !existing.Pending && s.expired(existing) {
			delete(s.records, key)
		}
	}
}

func (s *IdempotencyStore) expired(rec middleware.IdempotencyRecord) bool {
	return s.TTL > 0 && s.now().Sub(rec.OccurredAt) > s.TTL
}

func (s *IdempotencyStore) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

var _ middleware.IdempotencyStore = (*IdempotencyStore)(nil)
