package confirmpayment

import (
	"context"
	"net/http"

	"github.com/yashraj9595/zyntherraa/order/internal/service/models/caller"
	"github.com/yashraj9595/zyntherraa/order/internal/service/models/order"
	"github.com/yashraj9595/zyntherraa/order/internal/service/models/payment"
	"github.com/yashraj9595/zyntherraa/order/internal/transport/http/request"
	"github.com/yashraj9595/zyntherraa/order/internal/transport/http/respond"
)

type service interface {
	ConfirmPayment(
		ctx context.Context,
		c caller.Caller,
		id string,
		expectedVersion int64,
		result payment.Result,
	) (*order.Order, error)
}

// confirmPaymentRequest carries the payment provider's confirmation.
type confirmPaymentRequest struct {
	ID         string `json:"id"         validate:"required"`
	Status     string `json:"status"`
	UpdateTime string `json:"updateTime"`
	PayerEmail string `json:"payerEmail" validate:"omitempty,email"`
}

// ConfirmPayment handles PUT /api/orders/{id}/pay.
func ConfirmPayment(w http.ResponseWriter, r *http.Request, service service) {
	version, err := request.ExpectedVersion(r)
	if err != nil {
		respond.BadRequest(w, r, err)

		return
	}

	req := confirmPaymentRequest{}
	if err := request.Decode(w, r, &req); err != nil {
		respond.BadRequest(w, r, err)

		return
	}

	o, err := service.ConfirmPayment(r.Context(), request.Caller(r), request.OrderID(r), version, payment.Result{
		ExternalID: req.ID,
		Status:     req.Status,
		UpdateTime: req.UpdateTime,
		PayerEmail: req.PayerEmail,
	})
	if err != nil {
		respond.Error(w, r, err)

		return
	}

	respond.Order(w, r, http.StatusOK, o)
}
