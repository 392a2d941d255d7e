package order

import (
	"github.com/yashraj9595/zyntherraa/order/internal/service/errs"
)

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusProcessing Status = "Processing"
	StatusShipped    Status = "Shipped"
	StatusDelivered  Status = "Delivered"
	StatusCompleted  Status = "Completed"
	StatusCancelled  Status = "Cancelled"
	StatusRefunded   Status = "Refunded"
)

// transitions lists the statuses reachable from each status.
// Terminal statuses map to an empty set.
var transitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled, StatusRefunded},
	StatusProcessing: {StatusShipped, StatusCancelled, StatusRefunded},
	StatusShipped:    {StatusDelivered, StatusCancelled, StatusRefunded},
	StatusDelivered:  {StatusCompleted, StatusCancelled, StatusRefunded},
	StatusCompleted:  {},
	StatusCancelled:  {},
	StatusRefunded:   {},
}

func (s Status) String() string {
	return string(s)
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := transitions[s]

	return ok
}

// Terminal reports whether no further transition is allowed from s.
func (s Status) Terminal() bool {
	next, ok := transitions[s]

	return ok && len(next) == 0
}

// CanTransitionTo reports whether the table allows s -> target.
func (s Status) CanTransitionTo(target Status) bool {
	for _, next := range transitions[s] {
		if next == target {
			return true
		}
	}

	return false
}

// ParseStatus converts s to a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", errs.Validationf("unknown order status %q", s)
	}

	return st, nil
}
