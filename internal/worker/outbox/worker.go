package outbox

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"github.com/yashraj9595/zyntherraa/order/internal/dal/interfaces/ioutboxrepo"
	"github.com/yashraj9595/zyntherraa/order/pkg/backoff"
)

var (
	publishedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "order_outbox_published_total",
		Help: "Order events published from the outbox.",
	})
	failedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "order_outbox_publish_failures_total",
		Help: "Failed attempts to publish order events from the outbox.",
	})
)

// publisher sends one message to the broker.
type publisher interface {
	Publish(exchange, routingKey string, msg amqp.Publishing) error
}

// Worker processes messages from the outbox table.
type Worker struct {
	outboxRepo   ioutboxrepo.IOutboxRepository
	publisher    publisher
	pollInterval time.Duration
	batchSize    int
	stopCh       chan struct{}
	now          func() time.Time
}

// NewWorker creates a new outbox worker.
func NewWorker(
	outboxRepo ioutboxrepo.IOutboxRepository,
	publisher publisher,
) *Worker {
	pollIntervalSeconds := viper.GetInt("rabbitmq.outbox.poll_interval_seconds")
	if pollIntervalSeconds == 0 {
		pollIntervalSeconds = 10
	}

	batchSize := viper.GetInt("rabbitmq.outbox.batch_size")
	if batchSize == 0 {
		batchSize = 100
	}

	return &Worker{
		outboxRepo:   outboxRepo,
		publisher:    publisher,
		pollInterval: time.Duration(pollIntervalSeconds) * time.Second,
		batchSize:    batchSize,
		stopCh:       make(chan struct{}),
		now:          time.Now,
	}
}

// Start begins processing messages from the outbox.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	slog.Info("Outbox worker started", "poll_interval", w.pollInterval, "batch_size", w.batchSize)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Outbox worker shutting down")

			return
		case <-w.stopCh:
			slog.Info("Outbox worker stopped")

			return
		case <-ticker.C:
			w.ProcessMessages(ctx)
		}
	}
}

// Stop stops the worker.
func (w *Worker) Stop() {
	close(w.stopCh)
}

// ProcessMessages publishes one batch of pending messages in outbox order.
// The pass ends at the first message that fails or is still backing off,
// so nothing is published ahead of an earlier event.
func (w *Worker) ProcessMessages(ctx context.Context) {
	messages, err := w.outboxRepo.GetPendingMessages(ctx, w.batchSize)
	if err != nil {
		slog.Error("Failed to get pending messages from outbox", "error", err)

		return
	}

	if len(messages) == 0 {
		return
	}

	slog.Info("Processing outbox messages", "count", len(messages))

	for _, msg := range messages {
		if msg.NextRetryAt.After(w.now()) {
			slog.Debug("Outbox head is backing off",
				"outbox_id", msg.ID,
				"next_retry", msg.NextRetryAt,
			)

			return
		}

		err := w.publisher.Publish(
			msg.ExchangeName,
			msg.RoutingKey,
			amqp.Publishing{
				MessageId:   msg.MessageID,
				ContentType: msg.ContentType,
				Timestamp:   msg.CreatedAt,
				Body:        msg.Payload,
			},
		)

		if err != nil {
			failedTotal.Inc()
			newRetryCount := msg.RetryCount + 1
			nextRetryAt := w.now().Add(backoff.Exponential(newRetryCount))

			slog.Warn("Failed to publish message from outbox, will retry",
				"outbox_id", msg.ID,
				"retry_count", newRetryCount,
				"next_retry", nextRetryAt,
				"error", err,
			)

			if err := w.outboxRepo.UpdateRetry(ctx, msg.ID, newRetryCount, err.Error(), nextRetryAt); err != nil {
				slog.Error("Failed to update retry information", "outbox_id", msg.ID, "error", err)
			}

			return
		}

		publishedTotal.Inc()
		if err := w.outboxRepo.Delete(ctx, msg.ID); err != nil {
			slog.Error("Failed to delete message from outbox after successful publish",
				"outbox_id", msg.ID,
				"error", err,
			)
		} else {
			slog.Info("Message successfully published and removed from outbox",
				"outbox_id", msg.ID,
				"message_id", msg.MessageID,
			)
		}
	}
}
