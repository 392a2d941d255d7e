package iinboxrepo

import (
	"context"
	"time"

	"github.com/yashraj9595/zyntherraa/order/internal/service/models/inbox"
)

// IInboxRepository defines the interface for audit inbox operations.
type IInboxRepository interface {
	// Insert parks a message that could not be processed
	Insert(ctx context.Context, msg inbox.InboxMessage) error

	// GetPendingMessages retrieves messages that are due for another attempt
	GetPendingMessages(ctx context.Context, limit int) ([]inbox.InboxMessage, error)

	// Delete removes a message once it was processed or given up on
	Delete(ctx context.Context, id int64) error

	// UpdateRetry records a failed attempt and schedules the next one
	UpdateRetry(
		ctx context.Context,
		id int64,
		retryCount int,
		lastError string,
		nextRetryAt time.Time,
	) error
}
