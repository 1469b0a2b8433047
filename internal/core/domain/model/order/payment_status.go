package order

import (
	"fmt"
	"strings"

	"ordermgmt/internal/pkg/errs"
)

// PaymentStatus tracks the money side of an order. The lifecycle only touches it
// on cancellation, where a paid order becomes refunded; everything else is set
// by the payment integration and carried through unchanged.
type PaymentStatus int

const (
	// PaymentUnknown is the zero value and never valid.
	PaymentUnknown PaymentStatus = iota
	// PaymentPending is the status of every new order.
	PaymentPending
	// PaymentPaid means the money was captured.
	PaymentPaid
	// PaymentRefunded is set by Order.Cancel on a paid order.
	PaymentRefunded
	// PaymentFailed means the capture was declined.
	PaymentFailed
)

var paymentStatusNames = map[PaymentStatus]string{
	PaymentPending:  "pending",
	PaymentPaid:     "paid",
	PaymentRefunded: "refunded",
	PaymentFailed:   "failed",
}

// ParsePaymentStatus maps the lowercase wire name to a PaymentStatus. Leading
// and trailing spaces and letter case are ignored.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for status, n := range paymentStatusNames {
		if n == name {
			return status, nil
		}
	}
	return PaymentUnknown, errs.NewValueIsInvalidErrorWithCause("paymentStatus", fmt.Errorf("%q is not a known payment status", s))
}

// Validate rejects PaymentUnknown and values outside the enumeration.
func (p PaymentStatus) Validate() error {
	if _, ok := paymentStatusNames[p]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("paymentStatus", fmt.Errorf("%d is not a valid payment status", p))
	}
	return nil
}

// String returns the wire name, "unknown" for invalid values.
func (p PaymentStatus) String() string {
	if name, ok := paymentStatusNames[p]; ok {
		return name
	}
	return "unknown"
}
