package order

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yashraj9595/zyntherraa/order/internal/service/errs"
	"github.com/yashraj9595/zyntherraa/order/internal/service/models/orderitem"
	"github.com/yashraj9595/zyntherraa/order/internal/service/models/payment"
	"github.com/yashraj9595/zyntherraa/order/internal/service/models/tracking"
)

// ShippingAddress is copied into the order at creation time.
type ShippingAddress struct {
	FullName   string `json:"fullName"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
}

// PriceBreakdown holds the caller-supplied totals of an order.
type PriceBreakdown struct {
	ItemsPrice    decimal.Decimal `json:"itemsPrice"`
	TaxPrice      decimal.Decimal `json:"taxPrice"`
	ShippingPrice decimal.Decimal `json:"shippingPrice"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
}

// Order represents an order aggregate: the unit of persistence and of concurrency.
type Order struct {
	ID              string                `json:"id"`
	UserRef         string                `json:"userRef"`
	Items           []orderitem.OrderItem `json:"items"`
	ShippingAddress ShippingAddress       `json:"shippingAddress"`
	PaymentMethod   string                `json:"paymentMethod"`
	PaymentResult   *payment.Result       `json:"paymentResult,omitempty"`
	Refund          *payment.Refund       `json:"refund,omitempty"`
	PaymentAttempts int                   `json:"paymentAttempts"`
	PriceBreakdown
	IsPaid            bool            `json:"isPaid"`
	PaidAt            *time.Time      `json:"paidAt,omitempty"`
	IsDelivered       bool            `json:"isDelivered"`
	DeliveredAt       *time.Time      `json:"deliveredAt,omitempty"`
	Status            Status          `json:"status"`
	TrackingNumber    string          `json:"trackingNumber,omitempty"`
	TrackingHistory   tracking.Ledger `json:"trackingHistory"`
	Carrier           string          `json:"carrier,omitempty"`
	EstimatedDelivery *time.Time      `json:"estimatedDelivery,omitempty"`
	Version           int64           `json:"version"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// NewOrderParams are the inputs of New.
type NewOrderParams struct {
	ID              string
	UserRef         string
	Items           []orderitem.OrderItem
	ShippingAddress ShippingAddress
	PaymentMethod   string
	Prices          PriceBreakdown
	Now             time.Time
}

// New creates a Pending, unpaid, undelivered order and validates it.
func New(p NewOrderParams) (*Order, error) {
	items := make([]orderitem.OrderItem, len(p.Items))
	copy(items, p.Items)

	o := &Order{
		ID:              p.ID,
		UserRef:         p.UserRef,
		Items:           items,
		ShippingAddress: p.ShippingAddress,
		PaymentMethod:   strings.TrimSpace(p.PaymentMethod),
		PriceBreakdown:  p.Prices,
		Status:          StatusPending,
		TrackingHistory: tracking.NewLedger(),
		Version:         1,
		CreatedAt:       p.Now,
		UpdatedAt:       p.Now,
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}

	return o, nil
}

// OwnedBy reports whether userRef placed the order.
func (o *Order) OwnedBy(userRef string) bool {
	return userRef != "" && o.UserRef == userRef
}

// ConfirmPayment records a payment confirmation.
// Every call counts as an attempt and overwrites the previous result.
func (o *Order) ConfirmPayment(result payment.Result, now time.Time) error {
	if o.Status == StatusCancelled || o.Status == StatusRefunded {
		return errs.Validationf("cannot confirm payment of a %s order", o.Status)
	}
	if strings.TrimSpace(result.ExternalID) == "" {
		return errs.Validationf("payment result id is required")
	}

	o.PaymentAttempts++
	o.PaymentResult = &result
	o.IsPaid = true
	o.PaidAt = &now
	o.UpdatedAt = now

	return nil
}

// ConfirmDelivery marks the order as delivered. Payment is not required first.
func (o *Order) ConfirmDelivery(now time.Time) error {
	if o.Status == StatusCancelled || o.Status == StatusRefunded {
		return errs.Validationf("cannot deliver a %s order", o.Status)
	}

	o.IsDelivered = true
	o.DeliveredAt = &now
	o.UpdatedAt = now

	return nil
}

// TransitionTo moves the order to target if the transition table allows it.
// Entering Delivered also sets the delivery flag when it is not set yet.
func (o *Order) TransitionTo(target Status, now time.Time) error {
	if !target.Valid() {
		return errs.Validationf("unknown order status %q", target)
	}
	if !o.Status.CanTransitionTo(target) {
		return errs.Validationf("cannot change status from %s to %s", o.Status, target)
	}

	o.Status = target
	if target == StatusDelivered && !o.IsDelivered {
		o.IsDelivered = true
		o.DeliveredAt = &now
	}
	o.UpdatedAt = now

	return nil
}

// AssignTracking sets the tracking number and shipment details.
func (o *Order) AssignTracking(number, carrier string, estimatedDelivery *time.Time, now time.Time) error {
	if o.TrackingNumber != "" {
		return errs.Validationf("tracking number already assigned")
	}
	number = strings.TrimSpace(number)
	if number == "" {
		return errs.Validationf("tracking number is required")
	}

	o.TrackingNumber = number
	if carrier = strings.TrimSpace(carrier); carrier != "" {
		o.Carrier = carrier
	}
	if estimatedDelivery != nil {
		eta := *estimatedDelivery
		o.EstimatedDelivery = &eta
	}
	o.UpdatedAt = now

	return nil
}

// AddTrackingEvent appends a shipment event regardless of the current status.
func (o *Order) AddTrackingEvent(status, location, description string, now time.Time) (tracking.Event, error) {
	ev, err := o.TrackingHistory.Append(status, location, description, now)
	if err != nil {
		return tracking.Event{}, err
	}
	o.UpdatedAt = now

	return ev, nil
}

// RecordRefund replaces the active refund.
func (o *Order) RecordRefund(amount decimal.Decimal, externalID, status, notes string, now time.Time) error {
	if amount.IsNegative() {
		return errs.Validationf("refund amount must not be negative")
	}
	if amount.GreaterThan(o.TotalPrice) {
		return errs.Validationf("refund amount %s exceeds order total %s", amount, o.TotalPrice)
	}
	if status = strings.TrimSpace(status); status == "" {
		status = "Pending"
	}

	o.Refund = &payment.Refund{
		ExternalID: strings.TrimSpace(externalID),
		Amount:     amount,
		Status:     status,
		CreatedAt:  now,
		Notes:      strings.TrimSpace(notes),
	}
	o.UpdatedAt = now

	return nil
}

// MarkRefundProcessed stamps the active refund as processed.
func (o *Order) MarkRefundProcessed(now time.Time) error {
	if o.Refund == nil {
		return errs.Validationf("order has no refund")
	}

	o.Refund.ProcessedAt = &now
	o.UpdatedAt = now

	return nil
}

// Clone returns a deep copy of the order.
func (o *Order) Clone() *Order {
	cp := *o
	cp.Items = make([]orderitem.OrderItem, len(o.Items))
	copy(cp.Items, o.Items)
	cp.TrackingHistory = tracking.NewLedger(o.TrackingHistory.Events()...)
	if o.PaymentResult != nil {
		r := *o.PaymentResult
		cp.PaymentResult = &r
	}
	if o.Refund != nil {
		r := *o.Refund
		if o.Refund.ProcessedAt != nil {
			t := *o.Refund.ProcessedAt
			r.ProcessedAt = &t
		}
		cp.Refund = &r
	}
	cp.PaidAt = cloneTime(o.PaidAt)
	cp.DeliveredAt = cloneTime(o.DeliveredAt)
	cp.EstimatedDelivery = cloneTime(o.EstimatedDelivery)

	return &cp
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t

	return &v
}
