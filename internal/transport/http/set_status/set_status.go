package setstatus

import (
	"context"
	"net/http"

	"github.com/yashraj9595/zyntherraa/order/internal/service/models/caller"
	"github.com/yashraj9595/zyntherraa/order/internal/service/models/order"
	"github.com/yashraj9595/zyntherraa/order/internal/transport/http/request"
	"github.com/yashraj9595/zyntherraa/order/internal/transport/http/respond"
)

type service interface {
	SetStatus(
		ctx context.Context,
		c caller.Caller,
		id string,
		expectedVersion int64,
		target order.Status,
	) (*order.Order, error)
}

type setStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// SetStatus handles PUT /api/orders/{id}/status.
func SetStatus(w http.ResponseWriter, r *http.Request, service service) {
	version, err := request.ExpectedVersion(r)
	if err != nil {
		respond.BadRequest(w, r, err)

		return
	}

	req := setStatusRequest{}
	if err := request.Decode(w, r, &req); err != nil {
		respond.BadRequest(w, r, err)

		return
	}
	target, err := order.ParseStatus(req.Status)
	if err != nil {
		respond.Error(w, r, err)

		return
	}

	o, err := service.SetStatus(r.Context(), request.Caller(r), request.OrderID(r), version, target)
	if err != nil {
		respond.Error(w, r, err)

		return
	}

	respond.Order(w, r, http.StatusOK, o)
}
