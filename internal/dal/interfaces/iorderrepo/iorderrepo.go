package iorderrepo

import (
	"context"

	"github.com/yashraj9595/zyntherraa/order/internal/service/models/order"
)

// IOrderRepository is an interface for order repositories.
// Every implementation enforces tracking number uniqueness and version checks itself.
type IOrderRepository interface {
	Insert(ctx context.Context, o *order.Order) error
	Get(ctx context.Context, id string) (*order.Order, error)
	// Update writes o only if the stored version still equals expectedVersion.
	Update(ctx context.Context, o *order.Order, expectedVersion int64) error
	Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error)
	Delete(ctx context.Context, id string) error
}
