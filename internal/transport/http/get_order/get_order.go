package getorder

import (
	"context"
	"net/http"

	"github.com/yashraj9595/zyntherraa/order/internal/service/models/caller"
	"github.com/yashraj9595/zyntherraa/order/internal/service/models/order"
	"github.com/yashraj9595/zyntherraa/order/internal/transport/http/request"
	"github.com/yashraj9595/zyntherraa/order/internal/transport/http/respond"
)

type service interface {
	FindByID(ctx context.Context, c caller.Caller, id string) (*order.Order, error)
}

// GetOrder handles GET /api/orders/{id}.
func GetOrder(w http.ResponseWriter, r *http.Request, service service) {
	o, err := service.FindByID(r.Context(), request.Caller(r), request.OrderID(r))
	if err != nil {
		respond.Error(w, r, err)

		return
	}

	respond.Order(w, r, http.StatusOK, o)
}
