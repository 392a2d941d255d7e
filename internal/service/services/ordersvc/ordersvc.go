package ordersvc

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/yashraj9595/zyntherraa/order/internal/dal/interfaces/iorderrepo"
	"github.com/yashraj9595/zyntherraa/order/internal/dal/interfaces/ioutboxrepo"
	"github.com/yashraj9595/zyntherraa/order/internal/dal/memory"
	"github.com/yashraj9595/zyntherraa/order/internal/dal/postgres"
	"github.com/yashraj9595/zyntherraa/order/internal/dal/uow"
	"github.com/yashraj9595/zyntherraa/order/internal/service/errs"
	"github.com/yashraj9595/zyntherraa/order/internal/service/models/caller"
	"github.com/yashraj9595/zyntherraa/order/internal/service/models/order"
	"github.com/yashraj9595/zyntherraa/order/internal/service/models/orderevent"
	"github.com/yashraj9595/zyntherraa/order/internal/service/models/outbox"
	"github.com/yashraj9595/zyntherraa/order/pkg/clock"
)

const (
	defaultTrackingAttempts = 3
	defaultOutboxRetries    = 5
	defaultQueue            = "zyntherraa.order.events"
)

// OrderService is a service for managing orders.
type OrderService struct {
	newUOW           func() unitOfWork
	idem             idempotencyStore
	clock            clock.Clock
	random           order.RandomSource
	trackingAttempts int
	queue            string
	outboxRetries    int
}

type unitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	OrderRepository() iorderrepo.IOrderRepository
	OutboxRepository() ioutboxrepo.IOutboxRepository
}

type idempotencyStore interface {
	TryLock(ctx context.Context, scope, key string) (bool, error)
	Unlock(ctx context.Context, scope, key string) error
	Remember(ctx context.Context, scope, key, value string) error
	Recall(ctx context.Context, scope, key string) (string, bool, error)
}

// Option configures the OrderService.
type Option func(*OrderService)

// MustNewOrderService creates a new OrderService.
func MustNewOrderService(opts ...Option) *OrderService {
	s := &OrderService{
		clock:            clock.System{},
		random:           clock.Random{},
		trackingAttempts: defaultTrackingAttempts,
		queue:            defaultQueue,
		outboxRetries:    defaultOutboxRetries,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.newUOW == nil {
		panic("ordersvc: no storage configured")
	}

	return s
}

// WithPostgresClient stores orders in Postgres.
func WithPostgresClient(pgClient *postgres.Client) Option {
	return func(s *OrderService) {
		s.newUOW = func() unitOfWork {
			return uow.NewUnitOfWork(pgClient)
		}
	}
}

// WithMemoryStore stores orders in process memory.
func WithMemoryStore(store *memory.Store) Option {
	return func(s *OrderService) {
		s.newUOW = func() unitOfWork {
			return memory.NewUnitOfWork(store)
		}
	}
}

// WithIdempotencyStore enables Idempotency-Key handling on order creation.
func WithIdempotencyStore(store idempotencyStore) Option {
	return func(s *OrderService) {
		s.idem = store
	}
}

// WithClock sets the time source.
func WithClock(c clock.Clock) Option {
	return func(s *OrderService) {
		s.clock = c
	}
}

// WithRandomSource sets the random source for tracking numbers.
func WithRandomSource(r order.RandomSource) Option {
	return func(s *OrderService) {
		s.random = r
	}
}

// WithTrackingAttempts bounds tracking number generation retries on collisions.
func WithTrackingAttempts(n int) Option {
	return func(s *OrderService) {
		if n > 0 {
			s.trackingAttempts = n
		}
	}
}

// WithEventQueue sets the queue order events are published to and their retry budget.
func WithEventQueue(queue string, maxRetries int) Option {
	return func(s *OrderService) {
		if queue != "" {
			s.queue = queue
		}
		if maxRetries > 0 {
			s.outboxRetries = maxRetries
		}
	}
}

// mutation changes a loaded order and describes the change as an event.
type mutation func(o *order.Order, now time.Time) (orderevent.Type, any, error)

// mutate runs one read-modify-write of an order in a unit of work.
// The write is a compare-and-swap on the loaded version; when expectedVersion
// is not zero the loaded order must also be at that version.
func (s *OrderService) mutate(
	ctx context.Context,
	c caller.Caller,
	id string,
	expectedVersion int64,
	authorize func(c caller.Caller, o *order.Order) error,
	change mutation,
) (*order.Order, error) {
	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() { _ = work.Rollback(ctx) }()

	o, err := work.OrderRepository().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(c, o); err != nil {
		return nil, err
	}
	if expectedVersion != 0 && o.Version != expectedVersion {
		return nil, fmt.Errorf("%w: order %s is at version %d, not %d",
			errs.ErrConcurrentModification, o.ID, o.Version, expectedVersion)
	}

	now := s.clock.Now()
	loaded := o.Version
	typ, data, err := change(o, now)
	if err != nil {
		return nil, err
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	o.Version = loaded + 1

	if err := work.OrderRepository().Update(ctx, o, loaded); err != nil {
		return nil, err
	}
	if err := s.enqueue(ctx, work, typ, o, c.ID, data, now); err != nil {
		return nil, err
	}
	if err := work.Commit(ctx); err != nil {
		return nil, err
	}

	return o, nil
}

// enqueue writes the event for o into the outbox of the current unit of work.
func (s *OrderService) enqueue(
	ctx context.Context,
	work unitOfWork,
	typ orderevent.Type,
	o *order.Order,
	actorID string,
	data any,
	now time.Time,
) error {
	ev, err := orderevent.New(typ, o, actorID, data, now)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	return work.OutboxRepository().Insert(ctx, outbox.OutboxMessage{
		MessageID:    ev.ID,
		QueueName:    s.queue,
		ExchangeName: "",
		RoutingKey:   s.queue,
		Payload:      payload,
		ContentType:  orderevent.ContentTypeJSON,
		MaxRetries:   s.outboxRetries,
		CreatedAt:    now,
		UpdatedAt:    now,
		NextRetryAt:  now,
	})
}

func requireAuthenticated(c caller.Caller) error {
	if !c.Authenticated() {
		return errs.Authorizationf("authentication required")
	}

	return nil
}

func ownerOrAdmin(c caller.Caller, o *order.Order) error {
	if err := requireAuthenticated(c); err != nil {
		return err
	}
	if !c.IsAdmin() && !o.OwnedBy(c.ID) {
		return errs.Authorizationf("order %s does not belong to the caller", o.ID)
	}

	return nil
}

func adminOnly(c caller.Caller, _ *order.Order) error {
	if err := requireAuthenticated(c); err != nil {
		return err
	}
	if !c.IsAdmin() {
		return errs.Authorizationf("admin role required")
	}

	return nil
}
