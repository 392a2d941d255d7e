package deleteorder

import (
	"context"
	"net/http"

	"github.com/yashraj9595/zyntherraa/order/internal/service/models/caller"
	"github.com/yashraj9595/zyntherraa/order/internal/transport/http/request"
	"github.com/yashraj9595/zyntherraa/order/internal/transport/http/respond"
)

type service interface {
	DeleteOrder(ctx context.Context, c caller.Caller, id string) error
}

// DeleteOrder handles DELETE /api/orders/{id}.
func DeleteOrder(w http.ResponseWriter, r *http.Request, service service) {
	id := request.OrderID(r)
	if err := service.DeleteOrder(r.Context(), request.Caller(r), id); err != nil {
		respond.Error(w, r, err)

		return
	}

	respond.JSON(w, r, http.StatusOK, map[string]string{"message": "Order removed", "id": id})
}
