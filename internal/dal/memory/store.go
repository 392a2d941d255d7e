package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/yashraj9595/zyntherraa/order/internal/service/errs"
	"github.com/yashraj9595/zyntherraa/order/internal/service/models/order"
	"github.com/yashraj9595/zyntherraa/order/internal/service/models/outbox"
)

// Store keeps orders and outbox messages in process memory.
// Orders are stored and returned as deep copies.
type Store struct {
	mu       sync.RWMutex
	orders   map[string]*order.Order
	tracking map[string]string // tracking number -> order id
	outbox   []outbox.OutboxMessage
	seq      int64
}

func NewStore() *Store {
	return &Store{
		orders:   make(map[string]*order.Order),
		tracking: make(map[string]string),
	}
}

// snapshot is the state a failed commit is restored to.
type snapshot struct {
	orders   map[string]*order.Order
	tracking map[string]string
	outbox   []outbox.OutboxMessage
	seq      int64
}

func (s *Store) snapshot() snapshot {
	orders := make(map[string]*order.Order, len(s.orders))
	for k, v := range s.orders {
		orders[k] = v
	}
	tracking := make(map[string]string, len(s.tracking))
	for k, v := range s.tracking {
		tracking[k] = v
	}

	return snapshot{
		orders:   orders,
		tracking: tracking,
		outbox:   slices.Clone(s.outbox),
		seq:      s.seq,
	}
}

func (s *Store) restore(snap snapshot) {
	s.orders = snap.orders
	s.tracking = snap.tracking
	s.outbox = snap.outbox
	s.seq = snap.seq
}

func (s *Store) get(id string) (*order.Order, error) {
	o, ok := s.orders[id]
	if !ok {
		return nil, errs.NotFoundf("order %s not found", id)
	}

	return o.Clone(), nil
}

func (s *Store) insert(o *order.Order) error {
	if _, ok := s.orders[o.ID]; ok {
		return fmt.Errorf("%w: order %s already exists", errs.ErrDuplicateKey, o.ID)
	}
	if o.TrackingNumber != "" {
		if _, ok := s.tracking[o.TrackingNumber]; ok {
			return fmt.Errorf("%w: tracking number %s", errs.ErrDuplicateKey, o.TrackingNumber)
		}
		s.tracking[o.TrackingNumber] = o.ID
	}
	s.orders[o.ID] = o.Clone()

	return nil
}

func (s *Store) checkVersion(id string, expectedVersion int64) error {
	current, ok := s.orders[id]
	if !ok {
		return errs.NotFoundf("order %s not found", id)
	}
	if current.Version != expectedVersion {
		return fmt.Errorf("%w: order %s is no longer at version %d", errs.ErrConcurrentModification, id, expectedVersion)
	}

	return nil
}

func (s *Store) update(o *order.Order, expectedVersion int64) error {
	if err := s.checkVersion(o.ID, expectedVersion); err != nil {
		return err
	}
	current := s.orders[o.ID]
	if o.TrackingNumber != current.TrackingNumber {
		if owner, ok := s.tracking[o.TrackingNumber]; ok && o.TrackingNumber != "" && owner != o.ID {
			return fmt.Errorf("%w: tracking number %s", errs.ErrDuplicateKey, o.TrackingNumber)
		}
		delete(s.tracking, current.TrackingNumber)
		if o.TrackingNumber != "" {
			s.tracking[o.TrackingNumber] = o.ID
		}
	}
	s.orders[o.ID] = o.Clone()

	return nil
}

func (s *Store) delete(id string) error {
	current, ok := s.orders[id]
	if !ok {
		return errs.NotFoundf("order %s not found", id)
	}
	delete(s.tracking, current.TrackingNumber)
	delete(s.orders, id)

	return nil
}

func (s *Store) query(filter *order.QueryOrdersModel) []order.Order {
	result := []order.Order{}
	for _, o := range s.orders {
		if filter != nil && !matches(o, filter) {
			continue
		}
		result = append(result, *o.Clone())
	}
	slices.SortFunc(result, func(a, b order.Order) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}

		return 0
	})

	if filter == nil {
		return result
	}
	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return []order.Order{}
		}
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}

	return result
}

func matches(o *order.Order, f *order.QueryOrdersModel) bool {
	if len(f.Ids) > 0 && !slices.Contains(f.Ids, o.ID) {
		return false
	}
	if len(f.UserRefs) > 0 && !slices.Contains(f.UserRefs, o.UserRef) {
		return false
	}
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, o.Status) {
		return false
	}
	if f.IsPaid != nil && *f.IsPaid != o.IsPaid {
		return false
	}
	if f.IsDelivered != nil && *f.IsDelivered != o.IsDelivered {
		return false
	}

	return true
}

// OrderRepository is a locking order repository over a Store.
type OrderRepository struct {
	store *Store
}

func NewOrderRepository(store *Store) *OrderRepository {
	return &OrderRepository{store: store}
}

func (r *OrderRepository) Insert(_ context.Context, o *order.Order) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	return r.store.insert(o)
}

func (r *OrderRepository) Get(_ context.Context, id string) (*order.Order, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return r.store.get(id)
}

func (r *OrderRepository) Update(_ context.Context, o *order.Order, expectedVersion int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	return r.store.update(o, expectedVersion)
}

func (r *OrderRepository) Query(_ context.Context, filter *order.QueryOrdersModel) ([]order.Order, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return r.store.query(filter), nil
}

func (r *OrderRepository) Delete(_ context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	return r.store.delete(id)
}
