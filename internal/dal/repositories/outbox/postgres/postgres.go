package postgres

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yashraj9595/zyntherraa/order/internal/dal/postgres"
	"github.com/yashraj9595/zyntherraa/order/internal/service/models/outbox"
)

const outboxTable = "outbox"

var outboxColumns = []string{
	"id",
	"message_id",
	"queue_name",
	"exchange_name",
	"routing_key",
	"payload",
	"content_type",
	"retry_count",
	"max_retries",
	"last_error",
	"created_at",
	"updated_at",
	"next_retry_at",
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// OutboxRepository stores order events until the outbox worker publishes them.
// Inside a unit of work it shares the transaction of the order write.
type OutboxRepository struct {
	conn postgres.Querier
}

// NewOutboxRepository creates a new outbox repository.
func NewOutboxRepository(conn postgres.Querier) *OutboxRepository {
	return &OutboxRepository{
		conn: conn,
	}
}

// Insert enqueues an event. The BIGSERIAL id fixes its publish position.
func (r *OutboxRepository) Insert(ctx context.Context, msg outbox.OutboxMessage) error {
	query, args, err := psql.Insert(outboxTable).
		Columns(outboxColumns[1:]...).
		Values(
			msg.MessageID,
			msg.QueueName,
			msg.ExchangeName,
			msg.RoutingKey,
			msg.Payload,
			msg.ContentType,
			msg.RetryCount,
			msg.MaxRetries,
			msg.LastError,
			msg.CreatedAt,
			msg.UpdatedAt,
			msg.NextRetryAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build outbox insert: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to enqueue event %s: %w", msg.MessageID, err)
	}

	return nil
}

// GetPendingMessages returns the head of the outbox in publish order.
// Rows still waiting for their next retry are included so the worker can
// hold everything queued behind them.
func (r *OutboxRepository) GetPendingMessages(
	ctx context.Context,
	limit int,
) ([]outbox.OutboxMessage, error) {
	query, args, err := pendingQuery(limit)
	if err != nil {
		return nil, fmt.Errorf("failed to build outbox select: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query outbox head: %w", err)
	}

	messages, err := pgx.CollectRows(rows, scanOutboxMessage)
	if err != nil {
		return nil, fmt.Errorf("failed to read outbox head: %w", err)
	}

	return messages, nil
}

func pendingQuery(limit int) (string, []any, error) {
	return psql.Select(outboxColumns...).
		From(outboxTable).
		Where(sq.Expr("retry_count < max_retries")).
		OrderBy("id ASC").
		Limit(uint64(limit)).
		ToSql()
}

func scanOutboxMessage(row pgx.CollectableRow) (outbox.OutboxMessage, error) {
	var msg outbox.OutboxMessage
	err := row.Scan(
		&msg.ID,
		&msg.MessageID,
		&msg.QueueName,
		&msg.ExchangeName,
		&msg.RoutingKey,
		&msg.Payload,
		&msg.ContentType,
		&msg.RetryCount,
		&msg.MaxRetries,
		&msg.LastError,
		&msg.CreatedAt,
		&msg.UpdatedAt,
		&msg.NextRetryAt,
	)

	return msg, err
}

// Delete drops a published event.
func (r *OutboxRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := psql.Delete(outboxTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build outbox delete: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete outbox row %d: %w", id, err)
	}

	return nil
}

// UpdateRetry records a failed publish and when to try again.
func (r *OutboxRepository) UpdateRetry(
	ctx context.Context,
	id int64,
	retryCount int,
	lastError string,
	nextRetryAt time.Time,
) error {
	query, args, err := psql.Update(outboxTable).
		SetMap(map[string]any{
			"retry_count":   retryCount,
			"last_error":    lastError,
			"next_retry_at": nextRetryAt,
			"updated_at":    sq.Expr("NOW()"),
		}).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build outbox update: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to reschedule outbox row %d: %w", id, err)
	}

	return nil
}
