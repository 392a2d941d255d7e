package ordersvc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/shopspring/decimal"
	"github.com/yashraj9595/zyntherraa/order/internal/service/errs"
	"github.com/yashraj9595/zyntherraa/order/internal/service/models/caller"
	"github.com/yashraj9595/zyntherraa/order/internal/service/models/order"
	"github.com/yashraj9595/zyntherraa/order/internal/service/models/orderevent"
	"github.com/yashraj9595/zyntherraa/order/internal/service/models/payment"
	"go.opentelemetry.io/otel"
)

const trackingRetryDelay = 5 * time.Millisecond

type statusChange struct {
	From           order.Status `json:"from"`
	To             order.Status `json:"to"`
	TrackingNumber string       `json:"trackingNumber,omitempty"`
}

type trackingAssignment struct {
	TrackingNumber    string     `json:"trackingNumber"`
	Carrier           string     `json:"carrier,omitempty"`
	EstimatedDelivery *time.Time `json:"estimatedDelivery,omitempty"`
}

// ConfirmPayment records a payment confirmation on behalf of the owner or an admin.
func (s *OrderService) ConfirmPayment(
	ctx context.Context,
	c caller.Caller,
	id string,
	expectedVersion int64,
	result payment.Result,
) (*order.Order, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "Service.ConfirmPayment")
	defer span.End()

	o, err := s.mutate(ctx, c, id, expectedVersion, ownerOrAdmin,
		func(o *order.Order, now time.Time) (orderevent.Type, any, error) {
			return orderevent.TypePaid, result, o.ConfirmPayment(result, now)
		})
	if err != nil {
		return nil, err
	}

	slog.Info("Order paid", "order_id", o.ID, "attempts", o.PaymentAttempts)

	return o, nil
}

// ConfirmDelivery marks an order as delivered.
func (s *OrderService) ConfirmDelivery(
	ctx context.Context,
	c caller.Caller,
	id string,
	expectedVersion int64,
) (*order.Order, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "Service.ConfirmDelivery")
	defer span.End()

	return s.mutate(ctx, c, id, expectedVersion, adminOnly,
		func(o *order.Order, now time.Time) (orderevent.Type, any, error) {
			return orderevent.TypeDelivered, nil, o.ConfirmDelivery(now)
		})
}

// SetStatus moves an order along the transition table.
// Entering Shipped without a tracking number assigns one.
func (s *OrderService) SetStatus(
	ctx context.Context,
	c caller.Caller,
	id string,
	expectedVersion int64,
	target order.Status,
) (*order.Order, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "Service.SetStatus")
	defer span.End()

	var updated *order.Order
	err := s.retryTrackingCollision(ctx, func(ctx context.Context) error {
		o, err := s.mutate(ctx, c, id, expectedVersion, adminOnly,
			func(o *order.Order, now time.Time) (orderevent.Type, any, error) {
				change := statusChange{From: o.Status, To: target}
				if err := o.TransitionTo(target, now); err != nil {
					return "", nil, err
				}
				if target == order.StatusShipped && o.TrackingNumber == "" {
					if err := o.AssignTracking(s.generateTrackingNumber(now), "", nil, now); err != nil {
						return "", nil, err
					}
					change.TrackingNumber = o.TrackingNumber
				}

				return orderevent.TypeStatusChanged, change, nil
			})
		updated = o

		return err
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Order status changed", "order_id", updated.ID, "status", updated.Status)

	return updated, nil
}

// AssignTrackingNumber generates and stores a tracking number for the order.
// Collisions with another order's number are retried with a fresh number.
func (s *OrderService) AssignTrackingNumber(
	ctx context.Context,
	c caller.Caller,
	id string,
	expectedVersion int64,
	carrier string,
	estimatedDelivery *time.Time,
) (*order.Order, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "Service.AssignTrackingNumber")
	defer span.End()

	var updated *order.Order
	err := s.retryTrackingCollision(ctx, func(ctx context.Context) error {
		o, err := s.mutate(ctx, c, id, expectedVersion, adminOnly,
			func(o *order.Order, now time.Time) (orderevent.Type, any, error) {
				number := s.generateTrackingNumber(now)
				if err := o.AssignTracking(number, carrier, estimatedDelivery, now); err != nil {
					return "", nil, err
				}

				return orderevent.TypeTrackingAssigned, trackingAssignment{
					TrackingNumber:    o.TrackingNumber,
					Carrier:           o.Carrier,
					EstimatedDelivery: o.EstimatedDelivery,
				}, nil
			})
		updated = o

		return err
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Tracking number assigned", "order_id", updated.ID, "tracking_number", updated.TrackingNumber)

	return updated, nil
}

// AddTrackingEvent appends a shipment event to the order's tracking history.
func (s *OrderService) AddTrackingEvent(
	ctx context.Context,
	c caller.Caller,
	id string,
	expectedVersion int64,
	status, location, description string,
) (*order.Order, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "Service.AddTrackingEvent")
	defer span.End()

	return s.mutate(ctx, c, id, expectedVersion, adminOnly,
		func(o *order.Order, now time.Time) (orderevent.Type, any, error) {
			ev, err := o.AddTrackingEvent(status, location, description, now)
			if err != nil {
				return "", nil, err
			}

			return orderevent.TypeTrackingAdded, ev, nil
		})
}

// RecordRefund replaces the order's refund record.
func (s *OrderService) RecordRefund(
	ctx context.Context,
	c caller.Caller,
	id string,
	expectedVersion int64,
	amount decimal.Decimal,
	externalID, status, notes string,
) (*order.Order, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "Service.RecordRefund")
	defer span.End()

	o, err := s.mutate(ctx, c, id, expectedVersion, adminOnly,
		func(o *order.Order, now time.Time) (orderevent.Type, any, error) {
			if err := o.RecordRefund(amount, externalID, status, notes, now); err != nil {
				return "", nil, err
			}

			return orderevent.TypeRefundRecorded, o.Refund, nil
		})
	if err != nil {
		return nil, err
	}

	slog.Info("Refund recorded", "order_id", o.ID, "amount", o.Refund.Amount)

	return o, nil
}

// MarkRefundProcessed stamps the order's refund as processed.
func (s *OrderService) MarkRefundProcessed(
	ctx context.Context,
	c caller.Caller,
	id string,
	expectedVersion int64,
) (*order.Order, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "Service.MarkRefundProcessed")
	defer span.End()

	return s.mutate(ctx, c, id, expectedVersion, adminOnly,
		func(o *order.Order, now time.Time) (orderevent.Type, any, error) {
			if err := o.MarkRefundProcessed(now); err != nil {
				return "", nil, err
			}

			return orderevent.TypeRefundProcessed, o.Refund, nil
		})
}

// DeleteOrder removes an order.
func (s *OrderService) DeleteOrder(ctx context.Context, c caller.Caller, id string) error {
	ctx, span := otel.Tracer("service").Start(ctx, "Service.DeleteOrder")
	defer span.End()

	if err := adminOnly(c, nil); err != nil {
		return err
	}

	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return err
	}
	defer func() { _ = work.Rollback(ctx) }()

	o, err := work.OrderRepository().Get(ctx, id)
	if err != nil {
		return err
	}
	if err := work.OrderRepository().Delete(ctx, id); err != nil {
		return err
	}
	if err := s.enqueue(ctx, work, orderevent.TypeDeleted, o, c.ID, nil, s.clock.Now()); err != nil {
		return err
	}
	if err := work.Commit(ctx); err != nil {
		return err
	}

	slog.Info("Order deleted", "order_id", id)

	return nil
}

// GenerateTrackingNumber returns a new tracking number without checking storage.
func (s *OrderService) GenerateTrackingNumber() string {
	return s.generateTrackingNumber(s.clock.Now())
}

func (s *OrderService) generateTrackingNumber(now time.Time) string {
	return order.GenerateTrackingNumber(now, s.random)
}

// retryTrackingCollision runs fn again while it fails with errs.ErrDuplicateKey,
// up to the configured number of attempts.
func (s *OrderService) retryTrackingCollision(ctx context.Context, fn func(ctx context.Context) error) error {
	attempt := 0
	backoff := retry.WithMaxRetries(uint64(s.trackingAttempts-1), retry.NewConstant(trackingRetryDelay))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := fn(ctx)
		if errors.Is(err, errs.ErrDuplicateKey) {
			slog.Warn("Tracking number collision", "attempt", attempt, "error", err)

			return retry.RetryableError(err)
		}

		return err
	})
	if err != nil && errors.Is(err, errs.ErrDuplicateKey) {
		return fmt.Errorf("tracking number still taken after %d attempts: %w", attempt, err)
	}

	return err
}
