package assigntrackingnumber

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/yashraj9595/zyntherraa/order/internal/service/models/caller"
	"github.com/yashraj9595/zyntherraa/order/internal/service/models/order"
	"github.com/yashraj9595/zyntherraa/order/internal/transport/http/request"
	"github.com/yashraj9595/zyntherraa/order/internal/transport/http/respond"
)

type service interface {
	AssignTrackingNumber(
		ctx context.Context,
		c caller.Caller,
		id string,
		expectedVersion int64,
		carrier string,
		estimatedDelivery *time.Time,
	) (*order.Order, error)
}

// assignTrackingNumberRequest is optional; an empty body assigns a number only.
type assignTrackingNumberRequest struct {
	Carrier           string     `json:"carrier"`
	EstimatedDelivery *time.Time `json:"estimatedDelivery"`
}

// AssignTrackingNumber handles POST /api/orders/{id}/tracking-number.
func AssignTrackingNumber(w http.ResponseWriter, r *http.Request, service service) {
	version, err := request.ExpectedVersion(r)
	if err != nil {
		respond.BadRequest(w, r, err)

		return
	}

	req := assignTrackingNumberRequest{}
	if err := request.Decode(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		respond.BadRequest(w, r, err)

		return
	}

	o, err := service.AssignTrackingNumber(
		r.Context(),
		request.Caller(r),
		request.OrderID(r),
		version,
		req.Carrier,
		req.EstimatedDelivery,
	)
	if err != nil {
		respond.Error(w, r, err)

		return
	}

	respond.Order(w, r, http.StatusOK, o)
}
