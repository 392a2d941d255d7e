package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/yashraj9595/zyntherraa/order/internal/dal/postgres"
	"github.com/yashraj9595/zyntherraa/order/internal/service/models/auditlog"
)

// AuditRepository implements the audit repository for PostgreSQL.
type AuditRepository struct {
	conn postgres.Querier
}

// NewAuditRepository creates a new audit repository.
func NewAuditRepository(conn postgres.Querier) *AuditRepository {
	return &AuditRepository{
		conn: conn,
	}
}

// SaveAuditLogs saves audit log entries using a squirrel bulk insert.
// Entries whose event id is already stored are skipped, so redelivered events are harmless.
func (r *AuditRepository) SaveAuditLogs(
	ctx context.Context,
	auditLogs []auditlog.AuditLogOrder,
) error {
	if len(auditLogs) == 0 {
		return nil
	}

	builder := sq.Insert("order_audit_log").
		Columns(
			"event_id",
			"event_type",
			"order_id",
			"user_ref",
			"actor_id",
			"order_status",
			"order_version",
			"data",
			"occurred_at",
			"created_at",
		).
		Suffix("ON CONFLICT (event_id) DO NOTHING").
		PlaceholderFormat(sq.Dollar)

	for _, auditLog := range auditLogs {
		data := auditLog.Data
		if len(data) == 0 {
			data = json.RawMessage("null")
		}
		builder = builder.Values(
			auditLog.EventID,
			auditLog.EventType,
			auditLog.OrderID,
			auditLog.UserRef,
			auditLog.ActorID,
			auditLog.OrderStatus,
			auditLog.OrderVersion,
			data,
			auditLog.OccurredAt,
			auditLog.CreatedAt,
		)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build audit logs insert query: %w", err)
	}

	_, err = r.conn.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to bulk insert audit logs: %w", err)
	}

	return nil
}

// ListByOrder returns the audit trail of one order in the order events happened.
func (r *AuditRepository) ListByOrder(ctx context.Context, orderID string) ([]auditlog.AuditLogOrder, error) {
	query, args, err := sq.Select(
		"id",
		"event_id",
		"event_type",
		"order_id",
		"user_ref",
		"actor_id",
		"order_status",
		"order_version",
		"data",
		"occurred_at",
		"created_at",
	).
		From("order_audit_log").
		Where(sq.Eq{"order_id": orderID}).
		OrderBy("order_version ASC", "occurred_at ASC", "id ASC").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit logs: %w", err)
	}
	defer rows.Close()

	logs := []auditlog.AuditLogOrder{}
	for rows.Next() {
		var l auditlog.AuditLogOrder
		if err := rows.Scan(
			&l.ID,
			&l.EventID,
			&l.EventType,
			&l.OrderID,
			&l.UserRef,
			&l.ActorID,
			&l.OrderStatus,
			&l.OrderVersion,
			&l.Data,
			&l.OccurredAt,
			&l.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit log: %w", err)
		}
		logs = append(logs, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit logs: %w", err)
	}

	return logs, nil
}
