package iauditrepo

import (
	"context"

	"github.com/yashraj9595/zyntherraa/order/internal/service/models/auditlog"
)

// IAuditRepository is interface for the order audit log repository.
type IAuditRepository interface {
	SaveAuditLogs(ctx context.Context, auditLogs []auditlog.AuditLogOrder) error
	ListByOrder(ctx context.Context, orderID string) ([]auditlog.AuditLogOrder, error)
}
