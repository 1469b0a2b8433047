package order

import (
	"fmt"
	"strings"

	"ordermgmt/internal/pkg/errs"
)

// Status is the position of an order in its lifecycle.
type Status int

const (
	// Unknown is the zero value and never a valid status.
	Unknown Status = iota

	// Pending is the initial status of every new order.
	Pending

	// Processing means the order is being prepared for shipping.
	Processing

	// Shipped means the order is in transit.
	Shipped

	// Delivered means the customer received the order. It can still be returned.
	Delivered

	// Cancelled is terminal.
	Cancelled

	// Returned is terminal.
	Returned
)

// legacyNew is the label some older clients send instead of pending.
const legacyNew = "new"

var statusNames = map[Status]string{
	Pending:    "pending",
	Processing: "processing",
	Shipped:    "shipped",
	Delivered:  "delivered",
	Cancelled:  "cancelled",
	Returned:   "returned",
}

var statusDescriptions = map[Status]string{
	Pending:    "Order has been confirmed and is awaiting processing.",
	Processing: "Order is being prepared for shipping.",
	Shipped:    "Order has been shipped and is in transit.",
	Delivered:  "Order has been delivered to the customer.",
	Cancelled:  "Order has been cancelled.",
	Returned:   "Order has been returned by the customer.",
}

// ParseStatus maps the lowercase wire name to a Status. Surrounding spaces
// and case are ignored.
//
// The legacy "new" label is rejected with an explicit cause rather than being
// folded into pending, so callers still sending it get a clear validation error.
//
// Returns:
//   - Status: the parsed status
//   - error: ValueIsInvalidError naming the "status" field
//
// Example:
//
//	s, err := order.ParseStatus(" Shipped ")
//	// s == order.Shipped, err == nil
//
//	_, err = order.ParseStatus("new")
//	// errors.Is(err, errs.ErrValueIsInvalid)
func ParseStatus(s string) (Status, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == legacyNew {
		return Unknown, errs.NewValueIsInvalidErrorWithCause(
			"status",
			fmt.Errorf("%q is a legacy label, use %q", legacyNew, Pending),
		)
	}
	for status, n := range statusNames {
		if n == name {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a known status", s))
}

// Validate reports whether s is a node of the status graph.
func (s Status) Validate() error {
	if _, ok := statusNames[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the lowercase wire name, "unknown" for anything off the graph.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// Description is the customer facing explanation of the status. Empty for Unknown.
func (s Status) Description() string {
	return statusDescriptions[s]
}

// IsTerminal reports whether the status has no outbound edges.
func (s Status) IsTerminal() bool {
	return IsTerminal(s)
}

// CanTransitionTo reports whether s -> target is an edge of the graph.
func (s Status) CanTransitionTo(target Status) bool {
	return IsValidTransition(s, target)
}
