package payment

import (
	"time"

	"github.com/shopspring/decimal"
)

// Result is the payment confirmation snapshot reported by the payment provider.
type Result struct {
	ExternalID string `json:"externalId"`
	Status     string `json:"status"`
	UpdateTime string `json:"updateTime,omitempty"`
	PayerEmail string `json:"payerEmail,omitempty"`
}

// Refund is the single active refund of an order.
type Refund struct {
	ExternalID  string          `json:"externalId"`
	Amount      decimal.Decimal `json:"amount"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
	ProcessedAt *time.Time      `json:"processedAt,omitempty"`
	Notes       string          `json:"notes,omitempty"`
}

// Processed reports whether the refund was marked as processed.
func (r Refund) Processed() bool {
	return r.ProcessedAt != nil
}
