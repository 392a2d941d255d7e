package createorder

import (
	"context"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/yashraj9595/zyntherraa/order/internal/service/models/caller"
	"github.com/yashraj9595/zyntherraa/order/internal/service/models/order"
	"github.com/yashraj9595/zyntherraa/order/internal/service/models/orderitem"
	"github.com/yashraj9595/zyntherraa/order/internal/service/services/ordersvc"
	"github.com/yashraj9595/zyntherraa/order/internal/transport/http/request"
	"github.com/yashraj9595/zyntherraa/order/internal/transport/http/respond"
)

// service is an interface for the service layer.
type service interface {
	CreateOrder(ctx context.Context, c caller.Caller, in ordersvc.CreateOrderInput) (*order.Order, error)
}

// itemInCreateOrderRequest represents an item in a create order request.
type itemInCreateOrderRequest struct {
	ProductRef string          `json:"productRef" validate:"required"`
	VariantID  string          `json:"variantId"`
	Quantity   int             `json:"quantity"   validate:"gte=1"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	Size       string          `json:"size"`
	Color      string          `json:"color"`
}

// toModel converts itemInCreateOrderRequest to orderitem.OrderItem.
func (r *itemInCreateOrderRequest) toModel() orderitem.OrderItem {
	return orderitem.OrderItem{
		ProductRef: strings.TrimSpace(r.ProductRef),
		VariantID:  r.VariantID,
		Quantity:   r.Quantity,
		UnitPrice:  r.UnitPrice,
		Size:       r.Size,
		Color:      r.Color,
	}
}

type shippingAddressRequest struct {
	FullName   string `json:"fullName"`
	Address    string `json:"address"    validate:"required"`
	City       string `json:"city"       validate:"required"`
	PostalCode string `json:"postalCode" validate:"required"`
	Country    string `json:"country"    validate:"required"`
	Phone      string `json:"phone"`
}

// createOrderRequest represents a create order request.
// Items are not required here so that an empty list reaches the domain validation.
type createOrderRequest struct {
	Items           []itemInCreateOrderRequest `json:"items"           validate:"dive"`
	ShippingAddress shippingAddressRequest     `json:"shippingAddress"`
	PaymentMethod   string                     `json:"paymentMethod"   validate:"required"`
	ItemsPrice      decimal.Decimal            `json:"itemsPrice"`
	TaxPrice        decimal.Decimal            `json:"taxPrice"`
	ShippingPrice   decimal.Decimal            `json:"shippingPrice"`
	TotalPrice      decimal.Decimal            `json:"totalPrice"`
}

func (r *createOrderRequest) toInput(idempotencyKey string) ordersvc.CreateOrderInput {
	items := make([]orderitem.OrderItem, len(r.Items))
	for i := range r.Items {
		items[i] = r.Items[i].toModel()
	}

	return ordersvc.CreateOrderInput{
		Items: items,
		ShippingAddress: order.ShippingAddress{
			FullName:   r.ShippingAddress.FullName,
			Address:    r.ShippingAddress.Address,
			City:       r.ShippingAddress.City,
			PostalCode: r.ShippingAddress.PostalCode,
			Country:    r.ShippingAddress.Country,
			Phone:      r.ShippingAddress.Phone,
		},
		PaymentMethod: r.PaymentMethod,
		Prices: order.PriceBreakdown{
			ItemsPrice:    r.ItemsPrice,
			TaxPrice:      r.TaxPrice,
			ShippingPrice: r.ShippingPrice,
			TotalPrice:    r.TotalPrice,
		},
		IdempotencyKey: strings.TrimSpace(idempotencyKey),
	}
}

// CreateOrder handles POST /api/orders.
func CreateOrder(w http.ResponseWriter, r *http.Request, service service) {
	req := createOrderRequest{}
	if err := request.Decode(w, r, &req); err != nil {
		respond.BadRequest(w, r, err)

		return
	}

	o, err := service.CreateOrder(r.Context(), request.Caller(r), req.toInput(r.Header.Get("Idempotency-Key")))
	if err != nil {
		respond.Error(w, r, err)

		return
	}

	respond.Order(w, r, http.StatusCreated, o)
}
