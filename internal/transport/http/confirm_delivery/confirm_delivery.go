package confirmdelivery

import (
	"context"
	"net/http"

	"github.com/yashraj9595/zyntherraa/order/internal/service/models/caller"
	"github.com/yashraj9595/zyntherraa/order/internal/service/models/order"
	"github.com/yashraj9595/zyntherraa/order/internal/transport/http/request"
	"github.com/yashraj9595/zyntherraa/order/internal/transport/http/respond"
)

type service interface {
	ConfirmDelivery(ctx context.Context, c caller.Caller, id string, expectedVersion int64) (*order.Order, error)
}

// ConfirmDelivery handles PUT /api/orders/{id}/deliver.
func ConfirmDelivery(w http.ResponseWriter, r *http.Request, service service) {
	version, err := request.ExpectedVersion(r)
	if err != nil {
		respond.BadRequest(w, r, err)

		return
	}

	o, err := service.ConfirmDelivery(r.Context(), request.Caller(r), request.OrderID(r), version)
	if err != nil {
		respond.Error(w, r, err)

		return
	}

	respond.Order(w, r, http.StatusOK, o)
}
