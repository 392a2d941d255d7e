package order

import (
	"strings"

	"github.com/yashraj9595/zyntherraa/order/internal/service/errs"
)

// Validate checks the cross-field invariants of the aggregate.
// It runs before every write, whatever the storage driver.
func (o *Order) Validate() error {
	if strings.TrimSpace(o.UserRef) == "" {
		return errs.Validationf("user reference is required")
	}
	if len(o.Items) == 0 {
		return errs.Validationf("order must contain at least one item")
	}
	for i, item := range o.Items {
		if strings.TrimSpace(item.ProductRef) == "" {
			return errs.Validationf("item %d: product reference is required", i)
		}
		if item.Quantity < 1 {
			return errs.Validationf("item %d: quantity must be at least 1", i)
		}
		if item.UnitPrice.IsNegative() {
			return errs.Validationf("item %d: unit price must not be negative", i)
		}
	}
	if err := o.ShippingAddress.validate(); err != nil {
		return err
	}
	if o.PaymentMethod == "" {
		return errs.Validationf("payment method is required")
	}
	if err := o.PriceBreakdown.validate(); err != nil {
		return err
	}
	if !o.Status.Valid() {
		return errs.Validationf("unknown order status %q", o.Status)
	}
	if o.PaymentAttempts < 0 {
		return errs.Validationf("payment attempts must not be negative")
	}
	if o.IsPaid && (o.PaidAt == nil || o.PaymentResult == nil) {
		return errs.Validationf("paid order must carry paidAt and a payment result")
	}
	if o.IsDelivered && o.DeliveredAt == nil {
		return errs.Validationf("delivered order must carry deliveredAt")
	}
	if o.Refund != nil {
		if o.Refund.Amount.IsNegative() || o.Refund.Amount.GreaterThan(o.TotalPrice) {
			return errs.Validationf("refund amount must be between 0 and the order total")
		}
	}

	return nil
}

func (a ShippingAddress) validate() error {
	switch {
	case strings.TrimSpace(a.Address) == "":
		return errs.Validationf("shipping address is required")
	case strings.TrimSpace(a.City) == "":
		return errs.Validationf("shipping city is required")
	case strings.TrimSpace(a.PostalCode) == "":
		return errs.Validationf("shipping postal code is required")
	case strings.TrimSpace(a.Country) == "":
		return errs.Validationf("shipping country is required")
	}

	return nil
}

// validate enforces non-negative parts and total == items + tax + shipping, with no tolerance.
func (p PriceBreakdown) validate() error {
	if p.ItemsPrice.IsNegative() || p.TaxPrice.IsNegative() ||
		p.ShippingPrice.IsNegative() || p.TotalPrice.IsNegative() {
		return errs.Validationf("prices must not be negative")
	}
	sum := p.ItemsPrice.Add(p.TaxPrice).Add(p.ShippingPrice)
	if !sum.Equal(p.TotalPrice) {
		return errs.Validationf("total price %s does not match items + tax + shipping = %s", p.TotalPrice, sum)
	}

	return nil
}
