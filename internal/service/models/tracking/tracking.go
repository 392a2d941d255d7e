package tracking

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/yashraj9595/zyntherraa/order/internal/service/errs"
)

// Event is a single shipment status entry.
type Event struct {
	Status      string    `json:"status"`
	Location    string    `json:"location,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	Description string    `json:"description,omitempty"`
}

// Ledger is the append-only shipment history of an order.
// Entries keep insertion order and are never changed or removed once appended.
type Ledger struct {
	events []Event
}

// NewLedger restores a ledger from previously persisted events.
func NewLedger(events ...Event) Ledger {
	l := Ledger{events: make([]Event, len(events))}
	copy(l.events, events)

	return l
}

// Append records a new event stamped at now.
// A now earlier than the last entry is clamped to it, so timestamps never go backwards.
func (l *Ledger) Append(status, location, description string, now time.Time) (Event, error) {
	status = strings.TrimSpace(status)
	if status == "" {
		return Event{}, errs.Validationf("tracking status is required")
	}

	if last, ok := l.Last(); ok && now.Before(last.Timestamp) {
		now = last.Timestamp
	}

	ev := Event{
		Status:      status,
		Location:    strings.TrimSpace(location),
		Timestamp:   now,
		Description: strings.TrimSpace(description),
	}
	l.events = append(l.events, ev)

	return ev, nil
}

// Events returns a copy of the entries in insertion order.
func (l Ledger) Events() []Event {
	out := make([]Event, len(l.events))
	copy(out, l.events)

	return out
}

// Len returns the number of entries.
func (l Ledger) Len() int {
	return len(l.events)
}

// Last returns the most recent entry.
func (l Ledger) Last() (Event, bool) {
	if len(l.events) == 0 {
		return Event{}, false
	}

	return l.events[len(l.events)-1], true
}

// MarshalJSON encodes the ledger as a plain array.
func (l Ledger) MarshalJSON() ([]byte, error) {
	if l.events == nil {
		return []byte("[]"), nil
	}

	return json.Marshal(l.events)
}

// UnmarshalJSON decodes a plain array into the ledger.
func (l *Ledger) UnmarshalJSON(data []byte) error {
	var events []Event
	if err := json.Unmarshal(data, &events); err != nil {
		return err
	}
	*l = NewLedger(events...)

	return nil
}
