package recordrefund

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/yashraj9595/zyntherraa/order/internal/service/models/caller"
	"github.com/yashraj9595/zyntherraa/order/internal/service/models/order"
	"github.com/yashraj9595/zyntherraa/order/internal/transport/http/request"
	"github.com/yashraj9595/zyntherraa/order/internal/transport/http/respond"
)

type service interface {
	RecordRefund(
		ctx context.Context,
		c caller.Caller,
		id string,
		expectedVersion int64,
		amount decimal.Decimal,
		externalID, status, notes string,
	) (*order.Order, error)
}

type recordRefundRequest struct {
	Amount     decimal.Decimal `json:"amount"`
	ExternalID string          `json:"refundId"`
	Status     string          `json:"status"`
	Notes      string          `json:"notes"`
}

// RecordRefund handles POST /api/orders/{id}/refund.
func RecordRefund(w http.ResponseWriter, r *http.Request, service service) {
	version, err := request.ExpectedVersion(r)
	if err != nil {
		respond.BadRequest(w, r, err)

		return
	}

	req := recordRefundRequest{}
	if err := request.Decode(w, r, &req); err != nil {
		respond.BadRequest(w, r, err)

		return
	}

	o, err := service.RecordRefund(
		r.Context(),
		request.Caller(r),
		request.OrderID(r),
		version,
		req.Amount,
		req.ExternalID,
		req.Status,
		req.Notes,
	)
	if err != nil {
		respond.Error(w, r, err)

		return
	}

	respond.Order(w, r, http.StatusOK, o)
}
