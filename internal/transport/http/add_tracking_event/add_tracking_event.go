package addtrackingevent

import (
	"context"
	"net/http"

	"github.com/yashraj9595/zyntherraa/order/internal/service/models/caller"
	"github.com/yashraj9595/zyntherraa/order/internal/service/models/order"
	"github.com/yashraj9595/zyntherraa/order/internal/transport/http/request"
	"github.com/yashraj9595/zyntherraa/order/internal/transport/http/respond"
)

type service interface {
	AddTrackingEvent(
		ctx context.Context,
		c caller.Caller,
		id string,
		expectedVersion int64,
		status, location, description string,
	) (*order.Order, error)
}

// addTrackingEventRequest has no timestamp: the server stamps every event.
type addTrackingEventRequest struct {
	Status      string `json:"status"      validate:"required"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

// AddTrackingEvent handles POST /api/orders/{id}/tracking.
func AddTrackingEvent(w http.ResponseWriter, r *http.Request, service service) {
	version, err := request.ExpectedVersion(r)
	if err != nil {
		respond.BadRequest(w, r, err)

		return
	}

	req := addTrackingEventRequest{}
	if err := request.Decode(w, r, &req); err != nil {
		respond.BadRequest(w, r, err)

		return
	}

	o, err := service.AddTrackingEvent(
		r.Context(),
		request.Caller(r),
		request.OrderID(r),
		version,
		req.Status,
		req.Location,
		req.Description,
	)
	if err != nil {
		respond.Error(w, r, err)

		return
	}

	respond.Order(w, r, http.StatusOK, o)
}
