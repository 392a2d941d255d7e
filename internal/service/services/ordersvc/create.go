package ordersvc

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"github.com/yashraj9595/zyntherraa/order/internal/service/errs"
	"github.com/yashraj9595/zyntherraa/order/internal/service/models/caller"
	"github.com/yashraj9595/zyntherraa/order/internal/service/models/order"
	"github.com/yashraj9595/zyntherraa/order/internal/service/models/orderevent"
	"github.com/yashraj9595/zyntherraa/order/internal/service/models/orderitem"
	"go.opentelemetry.io/otel"
)

const (
	rememberRetries    = 2
	rememberRetryDelay = 10 * time.Millisecond
)

// CreateOrderInput are the caller-supplied fields of a new order.
type CreateOrderInput struct {
	Items           []orderitem.OrderItem
	ShippingAddress order.ShippingAddress
	PaymentMethod   string
	Prices          order.PriceBreakdown
	// IdempotencyKey, when set, makes a repeated request return the first order.
	IdempotencyKey string
}

// CreateOrder places a Pending order owned by the caller.
func (s *OrderService) CreateOrder(
	ctx context.Context,
	c caller.Caller,
	in CreateOrderInput,
) (*order.Order, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "Service.CreateOrder")
	defer span.End()

	if err := requireAuthenticated(c); err != nil {
		return nil, err
	}

	if in.IdempotencyKey == "" || s.idem == nil {
		return s.createOrder(ctx, c, in)
	}

	if id, ok, err := s.idem.Recall(ctx, c.ID, in.IdempotencyKey); err != nil {
		slog.Warn("Failed to recall idempotency key", "key", in.IdempotencyKey, "error", err)
	} else if ok {
		slog.Info("Replaying idempotent order creation", "order_id", id, "key", in.IdempotencyKey)

		return s.FindByID(ctx, c, id)
	}

	locked, err := s.idem.TryLock(ctx, c.ID, in.IdempotencyKey)
	if err != nil {
		return nil, fmt.Errorf("failed to lock idempotency key: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: a request with idempotency key %q is in progress",
			errs.ErrDuplicateKey, in.IdempotencyKey)
	}

	o, err := s.createOrder(ctx, c, in)
	if err != nil {
		if uerr := s.idem.Unlock(ctx, c.ID, in.IdempotencyKey); uerr != nil {
			slog.Warn("Failed to release idempotency key", "key", in.IdempotencyKey, "error", uerr)
		}

		return nil, err
	}
	if err := s.remember(ctx, c.ID, in.IdempotencyKey, o.ID); err != nil {
		// The order is committed. Release the key so a retry is not stuck behind it.
		slog.Error("Failed to remember idempotency key, releasing it",
			"key", in.IdempotencyKey,
			"order_id", o.ID,
			"error", err)
		if uerr := s.idem.Unlock(ctx, c.ID, in.IdempotencyKey); uerr != nil {
			slog.Warn("Failed to release idempotency key", "key", in.IdempotencyKey, "error", uerr)
		}
	}

	return o, nil
}

func (s *OrderService) remember(ctx context.Context, scope, key, orderID string) error {
	backoff := retry.WithMaxRetries(rememberRetries, retry.NewConstant(rememberRetryDelay))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := s.idem.Remember(ctx, scope, key, orderID); err != nil {
			return retry.RetryableError(err)
		}

		return nil
	})
}

func (s *OrderService) createOrder(
	ctx context.Context,
	c caller.Caller,
	in CreateOrderInput,
) (*order.Order, error) {
	now := s.clock.Now()
	o, err := order.New(order.NewOrderParams{
		ID:              uuid.NewString(),
		UserRef:         c.ID,
		Items:           in.Items,
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   in.PaymentMethod,
		Prices:          in.Prices,
		Now:             now,
	})
	if err != nil {
		return nil, err
	}

	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() { _ = work.Rollback(ctx) }()

	if err := work.OrderRepository().Insert(ctx, o); err != nil {
		return nil, err
	}
	if err := s.enqueue(ctx, work, orderevent.TypeCreated, o, c.ID, nil, now); err != nil {
		return nil, err
	}
	if err := work.Commit(ctx); err != nil {
		return nil, err
	}

	slog.Info("Order created", "order_id", o.ID, "user_ref", o.UserRef, "total", o.TotalPrice)

	return o, nil
}
