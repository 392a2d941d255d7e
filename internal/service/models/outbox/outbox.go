package outbox

import (
	"time"
)

// OutboxMessage represents an order event waiting to be published to RabbitMQ.
type OutboxMessage struct {
	ID           int64
	MessageID    string
	QueueName    string
	ExchangeName string
	RoutingKey   string
	Payload      []byte
	ContentType  string
	RetryCount   int
	MaxRetries   int
	LastError    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	NextRetryAt  time.Time
}
