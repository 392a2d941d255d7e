package auditsvc

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/yashraj9595/zyntherraa/order/internal/dal/interfaces/iauditrepo"
	"github.com/yashraj9595/zyntherraa/order/internal/service/errs"
	"github.com/yashraj9595/zyntherraa/order/internal/service/models/auditlog"
	"github.com/yashraj9595/zyntherraa/order/internal/service/models/orderevent"
	"github.com/yashraj9595/zyntherraa/order/pkg/clock"
	"go.opentelemetry.io/otel"
)

// AuditService turns published order events into audit log rows.
type AuditService struct {
	auditRepo iauditrepo.IAuditRepository
	clock     clock.Clock
}

// option is a function that configures the AuditService.
type option func(*AuditService)

// MustNewAuditService creates a new AuditService.
func MustNewAuditService(opts ...option) *AuditService {
	s := &AuditService{clock: clock.System{}}
	for _, opt := range opts {
		opt(s)
	}
	if s.auditRepo == nil {
		panic("auditsvc: audit repository is required")
	}

	return s
}

// WithAuditRepository sets the audit repository for the AuditService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithAuditRepository(auditRepo iauditrepo.IAuditRepository) option {
	return func(s *AuditService) {
		s.auditRepo = auditRepo
	}
}

// WithClock sets the time source used for created_at.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithClock(c clock.Clock) option {
	return func(s *AuditService) {
		s.clock = c
	}
}

// ProcessEvent decodes an order event and stores it as an audit log entry.
// Malformed payloads fail with errs.ErrValidation and should not be retried.
func (s *AuditService) ProcessEvent(ctx context.Context, payload []byte) error {
	ctx, span := otel.Tracer("service").Start(ctx, "Service.ProcessEvent")
	defer span.End()

	var ev orderevent.Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return errs.Validationf("malformed order event: %v", err)
	}
	if ev.ID == "" || ev.OrderID == "" || ev.Type == "" {
		return errs.Validationf("order event is missing id, order id or type")
	}

	slog.Info("Processing order event",
		"event_id", ev.ID,
		"event_type", ev.Type,
		"order_id", ev.OrderID,
		"order_version", ev.OrderVersion)

	entry := auditlog.AuditLogOrder{
		EventID:      ev.ID,
		EventType:    string(ev.Type),
		OrderID:      ev.OrderID,
		UserRef:      ev.UserRef,
		ActorID:      ev.ActorID,
		OrderStatus:  ev.Status.String(),
		OrderVersion: ev.OrderVersion,
		Data:         ev.Data,
		OccurredAt:   ev.OccurredAt,
		CreatedAt:    s.clock.Now(),
	}

	if err := s.auditRepo.SaveAuditLogs(ctx, []auditlog.AuditLogOrder{entry}); err != nil {
		slog.Error("Failed to save audit log", "event_id", ev.ID, "error", err)

		return err
	}

	slog.Info("Audit log processed successfully", "order_id", ev.OrderID, "event_id", ev.ID)

	return nil
}

// History returns the audit trail of an order.
func (s *AuditService) History(ctx context.Context, orderID string) ([]auditlog.AuditLogOrder, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "Service.History")
	defer span.End()

	if orderID == "" {
		return nil, errs.Validationf("order id is required")
	}

	return s.auditRepo.ListByOrder(ctx, orderID)
}
