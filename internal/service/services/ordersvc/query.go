package ordersvc

import (
	"context"

	"github.com/yashraj9595/zyntherraa/order/internal/service/errs"
	"github.com/yashraj9595/zyntherraa/order/internal/service/models/caller"
	"github.com/yashraj9595/zyntherraa/order/internal/service/models/order"
	"go.opentelemetry.io/otel"
)

// FindByID returns an order visible to the caller.
func (s *OrderService) FindByID(ctx context.Context, c caller.Caller, id string) (*order.Order, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "Service.FindByID")
	defer span.End()

	if err := requireAuthenticated(c); err != nil {
		return nil, err
	}

	o, err := s.newUOW().OrderRepository().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ownerOrAdmin(c, o); err != nil {
		return nil, err
	}

	return o, nil
}

// FindByUser lists the orders placed by userRef. Only the user themselves or an admin may ask.
func (s *OrderService) FindByUser(
	ctx context.Context,
	c caller.Caller,
	userRef string,
	page order.Page,
) ([]order.Order, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "Service.FindByUser")
	defer span.End()

	if err := requireAuthenticated(c); err != nil {
		return nil, err
	}
	if userRef == "" {
		return nil, errs.Validationf("user reference is required")
	}
	if !c.IsAdmin() && c.ID != userRef {
		return nil, errs.Authorizationf("cannot list orders of another user")
	}

	filter := &order.QueryOrdersModel{UserRefs: []string{userRef}}
	filter.Limit, filter.Offset = page.Bounds()

	return s.newUOW().OrderRepository().Query(ctx, filter)
}

// FindAll lists orders matching filter. Admin only.
func (s *OrderService) FindAll(
	ctx context.Context,
	c caller.Caller,
	filter order.QueryOrdersModel,
) ([]order.Order, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "Service.FindAll")
	defer span.End()

	if err := adminOnly(c, nil); err != nil {
		return nil, err
	}
	for _, st := range filter.Statuses {
		if !st.Valid() {
			return nil, errs.Validationf("unknown order status %q", st)
		}
	}
	if filter.Limit < 0 || filter.Offset < 0 {
		return nil, errs.Validationf("limit and offset must not be negative")
	}
	if filter.Limit > order.MaxPageSize {
		filter.Limit = order.MaxPageSize
	}

	return s.newUOW().OrderRepository().Query(ctx, &filter)
}
