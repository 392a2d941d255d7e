package memory

import (
	"context"
	"sync"
	"time"
)

type idempotencyEntry struct {
	value     string
	expiresAt time.Time
}

// IdempotencyStore is the in-process counterpart of the Redis idempotency store.
type IdempotencyStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	locks map[string]time.Time
	vals  map[string]idempotencyEntry
	now   func() time.Time
}

func NewIdempotencyStore(ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{
		ttl:   ttl,
		locks: make(map[string]time.Time),
		vals:  make(map[string]idempotencyEntry),
		now:   time.Now,
	}
}

func (s *IdempotencyStore) TryLock(_ context.Context, scope, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := scope + ":" + key
	now := s.now()
	if exp, ok := s.locks[k]; ok && now.Before(exp) {
		return false, nil
	}
	s.locks[k] = now.Add(s.ttl)

	return true, nil
}

func (s *IdempotencyStore) Unlock(_ context.Context, scope, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.locks, scope+":"+key)

	return nil
}

func (s *IdempotencyStore) Remember(_ context.Context, scope, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.vals[scope+":"+key] = idempotencyEntry{value: value, expiresAt: s.now().Add(s.ttl)}

	return nil
}

func (s *IdempotencyStore) Recall(_ context.Context, scope, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.vals[scope+":"+key]
	if !ok || !s.now().Before(e.expiresAt) {
		return "", false, nil
	}

	return e.value, true, nil
}
