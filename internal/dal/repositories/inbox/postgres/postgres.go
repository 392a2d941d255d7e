package postgres

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yashraj9595/zyntherraa/order/internal/dal/postgres"
	"github.com/yashraj9595/zyntherraa/order/internal/service/models/inbox"
)

const inboxTable = "inbox"

var inboxColumns = []string{
	"id",
	"message_id",
	"queue_name",
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

// InboxRepository parks order events the audit consumer could not store.
type InboxRepository struct {
	conn postgres.Querier
}

// NewInboxRepository creates a new inbox repository.
func NewInboxRepository(conn postgres.Querier) *InboxRepository {
	return &InboxRepository{
		conn: conn,
	}
}

// Insert parks a message. A redelivery of an already parked event is ignored.
func (r *InboxRepository) Insert(ctx context.Context, msg inbox.InboxMessage) error {
	query, args, err := insertQuery(msg)
	if err != nil {
		return fmt.Errorf("failed to build inbox insert: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to park event %s: %w", msg.MessageID, err)
	}

	return nil
}

func insertQuery(msg inbox.InboxMessage) (string, []any, error) {
	return psql.Insert(inboxTable).
		Columns(inboxColumns[1:]...).
		Values(
			msg.MessageID,
			msg.QueueName,
			msg.Payload,
			msg.ContentType,
			msg.RetryCount,
			msg.MaxRetries,
			msg.LastError,
			msg.CreatedAt,
			msg.UpdatedAt,
			msg.NextRetryAt,
		).
		Suffix("ON CONFLICT (message_id) WHERE message_id <> '' DO NOTHING").
		ToSql()
}

// GetPendingMessages returns parked events whose next attempt is due.
func (r *InboxRepository) GetPendingMessages(
	ctx context.Context,
	limit int,
) ([]inbox.InboxMessage, error) {
	query, args, err := pendingQuery(time.Now(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to build inbox select: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query due inbox events: %w", err)
	}

	messages, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (inbox.InboxMessage, error) {
		var msg inbox.InboxMessage
		err := row.Scan(
			&msg.ID,
			&msg.MessageID,
			&msg.QueueName,
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
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read due inbox events: %w", err)
	}

	return messages, nil
}

func pendingQuery(now time.Time, limit int) (string, []any, error) {
	return psql.Select(inboxColumns...).
		From(inboxTable).
		Where(sq.LtOrEq{"next_retry_at": now}).
		Where(sq.Expr("retry_count < max_retries")).
		OrderBy("next_retry_at ASC", "id ASC").
		Limit(uint64(limit)).
		ToSql()
}

// Delete removes a message once it was stored or given up on.
func (r *InboxRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := psql.Delete(inboxTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build inbox delete: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete inbox row %d: %w", id, err)
	}

	return nil
}

// UpdateRetry records a failed attempt and when to try again.
func (r *InboxRepository) UpdateRetry(
	ctx context.Context,
	id int64,
	retryCount int,
	lastError string,
	nextRetryAt time.Time,
) error {
	query, args, err := psql.Update(inboxTable).
		SetMap(map[string]any{
			"retry_count":   retryCount,
			"last_error":    lastError,
			"next_retry_at": nextRetryAt,
			"updated_at":    sq.Expr("NOW()"),
		}).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build inbox update: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to reschedule inbox row %d: %w", id, err)
	}

	return nil
}
