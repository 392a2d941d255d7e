package inbox

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/spf13/viper"
	"github.com/yashraj9595/zyntherraa/order/internal/dal/interfaces/iinboxrepo"
	"github.com/yashraj9595/zyntherraa/order/internal/service/errs"
	"github.com/yashraj9595/zyntherraa/order/pkg/backoff"
)

// service represents the service layer interface.
type service interface {
	ProcessEvent(ctx context.Context, payload []byte) error
}

// Worker retries order events parked in the inbox table.
type Worker struct {
	inboxRepo    iinboxrepo.IInboxRepository
	service      service
	pollInterval time.Duration
	batchSize    int
	stopCh       chan struct{}
}

// NewWorker creates a new inbox worker.
func NewWorker(
	inboxRepo iinboxrepo.IInboxRepository,
	service service,
) *Worker {
	pollIntervalSeconds := viper.GetInt("rabbitmq.inbox.poll_interval_seconds")
	if pollIntervalSeconds == 0 {
		pollIntervalSeconds = 10
	}

	batchSize := viper.GetInt("rabbitmq.inbox.batch_size")
	if batchSize == 0 {
		batchSize = 100
	}

	return &Worker{
		inboxRepo:    inboxRepo,
		service:      service,
		pollInterval: time.Duration(pollIntervalSeconds) * time.Second,
		batchSize:    batchSize,
		stopCh:       make(chan struct{}),
	}
}

// Start begins processing messages from the inbox.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	slog.Info("Inbox worker started", "poll_interval", w.pollInterval, "batch_size", w.batchSize)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Inbox worker shutting down")

			return
		case <-w.stopCh:
			slog.Info("Inbox worker stopped")

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

// ProcessMessages retries one batch of pending messages from the inbox.
func (w *Worker) ProcessMessages(ctx context.Context) {
	messages, err := w.inboxRepo.GetPendingMessages(ctx, w.batchSize)
	if err != nil {
		slog.Error("Failed to get pending messages from inbox", "error", err)

		return
	}

	if len(messages) == 0 {
		return
	}

	slog.Info("Processing inbox messages", "count", len(messages))

	for _, msg := range messages {
		err := w.service.ProcessEvent(ctx, msg.Payload)
		if err == nil {
			if err := w.inboxRepo.Delete(ctx, msg.ID); err != nil {
				slog.Error("Failed to delete message from inbox after successful processing",
					"inbox_id", msg.ID,
					"error", err,
				)
			} else {
				slog.Info("Message successfully processed and removed from inbox",
					"inbox_id", msg.ID,
					"message_id", msg.MessageID,
				)
			}

			continue
		}

		newRetryCount := msg.RetryCount + 1
		if errors.Is(err, errs.ErrValidation) || newRetryCount >= msg.MaxRetries {
			slog.Warn("Giving up on inbox message, deleting",
				"inbox_id", msg.ID,
				"message_id", msg.MessageID,
				"retry_count", newRetryCount,
				"error", err,
			)
			if err := w.inboxRepo.Delete(ctx, msg.ID); err != nil {
				slog.Error("Failed to delete message from inbox", "inbox_id", msg.ID, "error", err)
			}

			continue
		}

		nextRetryAt := time.Now().Add(backoff.Exponential(newRetryCount))
		slog.Warn("Failed to process message from inbox, will retry",
			"inbox_id", msg.ID,
			"retry_count", newRetryCount,
			"next_retry", nextRetryAt,
			"error", err,
		)

		if err := w.inboxRepo.UpdateRetry(ctx, msg.ID, newRetryCount, err.Error(), nextRetryAt); err != nil {
			slog.Error("Failed to update retry information", "inbox_id", msg.ID, "error", err)
		}
	}
}
