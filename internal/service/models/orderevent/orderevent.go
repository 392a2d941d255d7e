package orderevent

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/yashraj9595/zyntherraa/order/internal/service/models/order"
)

// Type names an order lifecycle event.
type Type string

const (
	TypeCreated          Type = "order.created"
	TypePaid             Type = "order.paid"
	TypeDelivered        Type = "order.delivered"
	TypeStatusChanged    Type = "order.status_changed"
	TypeTrackingAssigned Type = "order.tracking_assigned"
	TypeTrackingAdded    Type = "order.tracking_added"
	TypeRefundRecorded   Type = "order.refund_recorded"
	TypeRefundProcessed  Type = "order.refund_processed"
	TypeDeleted          Type = "order.deleted"
)

// ContentTypeJSON is the content type of published events.
const ContentTypeJSON = "application/json"

// Event is published for every committed change of an order.
type Event struct {
	ID           string          `json:"id"`
	Type         Type            `json:"type"`
	OrderID      string          `json:"orderId"`
	UserRef      string          `json:"userRef"`
	ActorID      string          `json:"actorId"`
	Status       order.Status    `json:"status"`
	OrderVersion int64           `json:"orderVersion"`
	Data         json.RawMessage `json:"data,omitempty"`
	OccurredAt   time.Time       `json:"occurredAt"`
}

// New builds an event describing o after a change made by actorID.
// data carries the change details and may be nil.
func New(typ Type, o *order.Order, actorID string, data any, now time.Time) (Event, error) {
	ev := Event{
		ID:           uuid.NewString(),
		Type:         typ,
		OrderID:      o.ID,
		UserRef:      o.UserRef,
		ActorID:      actorID,
		Status:       o.Status,
		OrderVersion: o.Version,
		OccurredAt:   now,
	}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return Event{}, fmt.Errorf("failed to marshal %s event data: %w", typ, err)
		}
		ev.Data = raw
	}

	return ev, nil
}
