package audithistory

import (
	"context"
	"net/http"

	"github.com/yashraj9595/zyntherraa/order/internal/service/errs"
	"github.com/yashraj9595/zyntherraa/order/internal/service/models/auditlog"
	"github.com/yashraj9595/zyntherraa/order/internal/transport/http/request"
	"github.com/yashraj9595/zyntherraa/order/internal/transport/http/respond"
)

type service interface {
	History(ctx context.Context, orderID string) ([]auditlog.AuditLogOrder, error)
}

// AuditHistory handles GET /api/orders/{id}/audit. Admin only.
func AuditHistory(w http.ResponseWriter, r *http.Request, service service) {
	if c := request.Caller(r); !c.IsAdmin() {
		respond.Error(w, r, errs.Authorizationf("admin role required"))

		return
	}

	logs, err := service.History(r.Context(), request.OrderID(r))
	if err != nil {
		respond.Error(w, r, err)

		return
	}

	respond.JSON(w, r, http.StatusOK, logs)
}
