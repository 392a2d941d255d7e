package outbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/streadway/amqp"
	"github.com/yashraj9595/zyntherraa/order/internal/dal/memory"
	"github.com/yashraj9595/zyntherraa/order/internal/service/models/outbox"
)

type fakeOutboxRepo struct {
	pending []outbox.OutboxMessage
	deleted []int64
	retries map[int64]int
}

func (f *fakeOutboxRepo) Insert(context.Context, outbox.OutboxMessage) error { return nil }

func (f *fakeOutboxRepo) GetPendingMessages(context.Context, int) ([]outbox.OutboxMessage, error) {
	return f.pending, nil
}

func (f *fakeOutboxRepo) Delete(_ context.Context, id int64) error {
	f.deleted = append(f.deleted, id)

	return nil
}

func (f *fakeOutboxRepo) UpdateRetry(_ context.Context, id int64, retryCount int, _ string, nextRetryAt time.Time) error {
	if f.retries == nil {
		f.retries = map[int64]int{}
	}
	f.retries[id] = retryCount

	return nil
}

type fakePublisher struct {
	failOn    string
	failFirst int
	calls     int
	published []amqp.Publishing
}

func (p *fakePublisher) Publish(_, _ string, msg amqp.Publishing) error {
	p.calls++
	if msg.MessageId == p.failOn || p.calls <= p.failFirst {
		return errors.New("channel closed")
	}
	p.published = append(p.published, msg)

	return nil
}

func TestProcessMessagesPublishesAndDeletes(t *testing.T) {
	repo := &fakeOutboxRepo{pending: []outbox.OutboxMessage{
		{ID: 1, MessageID: "e-1", RoutingKey: "q", Payload: []byte(`{}`), ContentType: "application/json"},
		{ID: 2, MessageID: "e-2", RoutingKey: "q", Payload: []byte(`{}`), ContentType: "application/json"},
	}}
	pub := &fakePublisher{}

	NewWorker(repo, pub).ProcessMessages(context.Background())

	if len(pub.published) != 2 || pub.published[0].MessageId != "e-1" || pub.published[1].MessageId != "e-2" {
		t.Fatalf("published = %+v", pub.published)
	}
	if len(repo.deleted) != 2 {
		t.Errorf("deleted = %v, want both messages", repo.deleted)
	}
}

func TestProcessMessagesStopsAtFirstFailure(t *testing.T) {
	repo := &fakeOutboxRepo{pending: []outbox.OutboxMessage{
		{ID: 1, MessageID: "e-1"},
		{ID: 2, MessageID: "e-2", RetryCount: 2},
		{ID: 3, MessageID: "e-3"},
	}}
	pub := &fakePublisher{failOn: "e-2"}

	NewWorker(repo, pub).ProcessMessages(context.Background())

	if len(pub.published) != 1 {
		t.Errorf("published %d messages, want only the one before the failure", len(pub.published))
	}
	if len(repo.deleted) != 1 || repo.deleted[0] != 1 {
		t.Errorf("deleted = %v, want [1]", repo.deleted)
	}
	if repo.retries[2] != 3 {
		t.Errorf("retry count of failed message = %d, want 3", repo.retries[2])
	}
	if _, ok := repo.retries[3]; ok {
		t.Error("message after the failure was attempted")
	}
}

func TestProcessMessagesHoldsEventsBehindBackingOffHead(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := start

	store := memory.NewStore()
	repo := memory.NewOutboxRepository(store)
	for _, id := range []string{"order.created", "order.paid"} {
		_ = repo.Insert(ctx, outbox.OutboxMessage{MessageID: id, RoutingKey: "q", MaxRetries: 5, NextRetryAt: start})
	}

	pub := &fakePublisher{failFirst: 1}
	w := NewWorker(repo, pub)
	w.now = func() time.Time { return now }

	w.ProcessMessages(ctx)
	now = start.Add(10 * time.Second)
	w.ProcessMessages(ctx)

	if len(pub.published) != 0 {
		t.Fatalf("published %v while order.created is backing off", publishedIDs(pub))
	}

	now = start.Add(2 * time.Minute)
	w.ProcessMessages(ctx)

	if got := publishedIDs(pub); len(got) != 2 || got[0] != "order.created" || got[1] != "order.paid" {
		t.Fatalf("published = %v, want [order.created order.paid]", got)
	}
	if left := store.Messages(); len(left) != 0 {
		t.Errorf("outbox still holds %+v", left)
	}
}

func TestProcessMessagesSkipsExhaustedHead(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	repo := memory.NewOutboxRepository(store)
	_ = repo.Insert(ctx, outbox.OutboxMessage{MessageID: "dead", MaxRetries: 2, RetryCount: 2})
	_ = repo.Insert(ctx, outbox.OutboxMessage{MessageID: "next", MaxRetries: 2})

	pub := &fakePublisher{}
	NewWorker(repo, pub).ProcessMessages(ctx)

	if got := publishedIDs(pub); len(got) != 1 || got[0] != "next" {
		t.Errorf("published = %v, want [next]", got)
	}
}

func publishedIDs(p *fakePublisher) []string {
	ids := make([]string, 0, len(p.published))
	for _, msg := range p.published {
		ids = append(ids, msg.MessageId)
	}

	return ids
}

func TestStartStops(t *testing.T) {
	w := NewWorker(&fakeOutboxRepo{}, &fakePublisher{})
	done := make(chan struct{})
	go func() {
		w.Start(context.Background())
		close(done)
	}()

	w.Stop()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
