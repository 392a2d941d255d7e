package inbox

import (
	"time"
)

// InboxMessage is an order event the audit consumer failed to store.
// It is kept until a retry succeeds or MaxRetries is reached.
type InboxMessage struct {
	ID          int64
	MessageID   string
	QueueName   string
	Payload     []byte
	ContentType string
	RetryCount  int
	MaxRetries  int
	LastError   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	NextRetryAt time.Time
}
