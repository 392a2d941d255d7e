package memory

import (
	"context"
	"slices"
	"time"

	"github.com/yashraj9595/zyntherraa/order/internal/service/models/outbox"
)

// OutboxRepository keeps outbox messages in a Store.
type OutboxRepository struct {
	store *Store
	now   func() time.Time
}

func NewOutboxRepository(store *Store) *OutboxRepository {
	return &OutboxRepository{store: store, now: time.Now}
}

func (s *Store) insertOutbox(msg outbox.OutboxMessage) {
	s.seq++
	msg.ID = s.seq
	s.outbox = append(s.outbox, msg)
}

func (r *OutboxRepository) Insert(_ context.Context, msg outbox.OutboxMessage) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.insertOutbox(msg)

	return nil
}

func (r *OutboxRepository) GetPendingMessages(_ context.Context, limit int) ([]outbox.OutboxMessage, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	// s.outbox is kept in insertion order.
	pending := []outbox.OutboxMessage{}
	for _, msg := range r.store.outbox {
		if msg.RetryCount >= msg.MaxRetries {
			continue
		}
		pending = append(pending, msg)
		if limit > 0 && len(pending) == limit {
			break
		}
	}

	return pending, nil
}

func (r *OutboxRepository) Delete(_ context.Context, id int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.outbox = slices.DeleteFunc(r.store.outbox, func(msg outbox.OutboxMessage) bool {
		return msg.ID == id
	})

	return nil
}

func (r *OutboxRepository) UpdateRetry(
	_ context.Context,
	id int64,
	retryCount int,
	lastError string,
	nextRetryAt time.Time,
) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for i := range r.store.outbox {
		if r.store.outbox[i].ID != id {
			continue
		}
		r.store.outbox[i].RetryCount = retryCount
		r.store.outbox[i].LastError = lastError
		r.store.outbox[i].NextRetryAt = nextRetryAt
		r.store.outbox[i].UpdatedAt = r.now()
	}

	return nil
}

// Messages returns a copy of every stored outbox message, delivered or not.
func (s *Store) Messages() []outbox.OutboxMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.outbox)
}
