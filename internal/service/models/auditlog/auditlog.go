package auditlog

import (
	"encoding/json"
	"time"
)

// AuditLogOrder represents an audit log entry for one order lifecycle event.
type AuditLogOrder struct {
	ID           int64           `json:"id"`
	EventID      string          `json:"eventId"`
	EventType    string          `json:"eventType"`
	OrderID      string          `json:"orderId"`
	UserRef      string          `json:"userRef"`
	ActorID      string          `json:"actorId"`
	OrderStatus  string          `json:"orderStatus"`
	OrderVersion int64           `json:"orderVersion"`
	Data         json.RawMessage `json:"data,omitempty"`
	OccurredAt   time.Time       `json:"occurredAt"`
	CreatedAt    time.Time       `json:"createdAt"`
}
