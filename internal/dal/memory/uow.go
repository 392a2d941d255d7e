package memory

import (
	"context"

	"github.com/yashraj9595/zyntherraa/order/internal/dal/interfaces/iorderrepo"
	"github.com/yashraj9595/zyntherraa/order/internal/dal/interfaces/ioutboxrepo"
	"github.com/yashraj9595/zyntherraa/order/internal/service/models/order"
	"github.com/yashraj9595/zyntherraa/order/internal/service/models/outbox"
)

// UnitOfWork stages writes and applies them under one lock on Commit.
// If any staged write fails the store is restored, so an order change
// and its outbox message land together or not at all.
type UnitOfWork struct {
	store  *Store
	active bool
	staged []func(*Store) error
}

func NewUnitOfWork(store *Store) *UnitOfWork {
	return &UnitOfWork{store: store}
}

func (u *UnitOfWork) Begin(context.Context) error {
	u.active = true
	u.staged = nil

	return nil
}

func (u *UnitOfWork) Commit(context.Context) error {
	if !u.active {
		return nil
	}
	u.active = false
	staged := u.staged
	u.staged = nil

	u.store.mu.Lock()
	defer u.store.mu.Unlock()

	snap := u.store.snapshot()
	for _, apply := range staged {
		if err := apply(u.store); err != nil {
			u.store.restore(snap)

			return err
		}
	}

	return nil
}

func (u *UnitOfWork) Rollback(context.Context) error {
	u.active = false
	u.staged = nil

	return nil
}

func (u *UnitOfWork) OrderRepository() iorderrepo.IOrderRepository {
	if !u.active {
		return NewOrderRepository(u.store)
	}

	return txOrderRepository{uow: u}
}

func (u *UnitOfWork) OutboxRepository() ioutboxrepo.IOutboxRepository {
	if !u.active {
		return NewOutboxRepository(u.store)
	}

	return txOutboxRepository{OutboxRepository: NewOutboxRepository(u.store), uow: u}
}

// txOrderRepository reads committed state and stages writes.
// Version and uniqueness checks run both when staging and on Commit.
type txOrderRepository struct {
	uow *UnitOfWork
}

func (r txOrderRepository) Insert(ctx context.Context, o *order.Order) error {
	o = o.Clone()
	r.uow.staged = append(r.uow.staged, func(s *Store) error { return s.insert(o) })

	return nil
}

func (r txOrderRepository) Get(ctx context.Context, id string) (*order.Order, error) {
	return NewOrderRepository(r.uow.store).Get(ctx, id)
}

func (r txOrderRepository) Update(ctx context.Context, o *order.Order, expectedVersion int64) error {
	r.uow.store.mu.RLock()
	err := r.uow.store.checkVersion(o.ID, expectedVersion)
	r.uow.store.mu.RUnlock()
	if err != nil {
		return err
	}

	o = o.Clone()
	r.uow.staged = append(r.uow.staged, func(s *Store) error { return s.update(o, expectedVersion) })

	return nil
}

func (r txOrderRepository) Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error) {
	return NewOrderRepository(r.uow.store).Query(ctx, filter)
}

func (r txOrderRepository) Delete(ctx context.Context, id string) error {
	r.uow.staged = append(r.uow.staged, func(s *Store) error { return s.delete(id) })

	return nil
}

type txOutboxRepository struct {
	*OutboxRepository
	uow *UnitOfWork
}

func (r txOutboxRepository) Insert(_ context.Context, msg outbox.OutboxMessage) error {
	r.uow.staged = append(r.uow.staged, func(s *Store) error {
		s.insertOutbox(msg)

		return nil
	})

	return nil
}
