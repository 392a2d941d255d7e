package listorders

import (
	"context"
	"net/http"

	"github.com/gorilla/schema"
	"github.com/yashraj9595/zyntherraa/order/internal/service/models/caller"
	"github.com/yashraj9595/zyntherraa/order/internal/service/models/order"
	"github.com/yashraj9595/zyntherraa/order/internal/transport/http/request"
	"github.com/yashraj9595/zyntherraa/order/internal/transport/http/respond"
)

// service is an interface for the service layer.
type service interface {
	FindByUser(ctx context.Context, c caller.Caller, userRef string, page order.Page) ([]order.Order, error)
	FindAll(ctx context.Context, c caller.Caller, filter order.QueryOrdersModel) ([]order.Order, error)
}

var decoder = newDecoder()

func newDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)

	return d
}

// listOrdersQuery is the query string of GET /api/orders.
type listOrdersQuery struct {
	Ids         []string `schema:"id"`
	UserRefs    []string `schema:"user"`
	Statuses    []string `schema:"status"`
	IsPaid      *bool    `schema:"is_paid"`
	IsDelivered *bool    `schema:"is_delivered"`
	Page        int      `schema:"page"`
	PageSize    int      `schema:"page_size"`
}

func (q *listOrdersQuery) toModel() (order.QueryOrdersModel, error) {
	filter := order.QueryOrdersModel{
		Ids:         q.Ids,
		UserRefs:    q.UserRefs,
		IsPaid:      q.IsPaid,
		IsDelivered: q.IsDelivered,
	}
	for _, raw := range q.Statuses {
		st, err := order.ParseStatus(raw)
		if err != nil {
			return order.QueryOrdersModel{}, err
		}
		filter.Statuses = append(filter.Statuses, st)
	}
	filter.Limit, filter.Offset = order.Page{Page: q.Page, PageSize: q.PageSize}.Bounds()

	return filter, nil
}

// ListMine handles GET /api/orders/mine.
func ListMine(w http.ResponseWriter, r *http.Request, service service) {
	page := order.Page{}
	if err := decoder.Decode(&page, r.URL.Query()); err != nil {
		respond.BadRequest(w, r, err)

		return
	}

	c := request.Caller(r)
	orders, err := service.FindByUser(r.Context(), c, c.ID, page)
	if err != nil {
		respond.Error(w, r, err)

		return
	}

	respond.JSON(w, r, http.StatusOK, orders)
}

// ListAll handles GET /api/orders.
func ListAll(w http.ResponseWriter, r *http.Request, service service) {
	q := listOrdersQuery{}
	if err := decoder.Decode(&q, r.URL.Query()); err != nil {
		respond.BadRequest(w, r, err)

		return
	}
	filter, err := q.toModel()
	if err != nil {
		respond.Error(w, r, err)

		return
	}

	orders, err := service.FindAll(r.Context(), request.Caller(r), filter)
	if err != nil {
		respond.Error(w, r, err)

		return
	}

	respond.JSON(w, r, http.StatusOK, orders)
}
