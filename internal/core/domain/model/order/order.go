package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"ordermgmt/internal/core/domain/model/kernel"
	"ordermgmt/internal/pkg/errs"
	"ordermgmt/internal/pkg/guard"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order was not built by NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")

	// ErrTotalMismatch is returned when a stored total disagrees with the items.
	ErrTotalMismatch = errors.New("order total does not match items")
)

// MaxNotesLength bounds the free-text notes, cancellation stamps included.
const MaxNotesLength = 4000

// Order is the aggregate root of the lifecycle. It is the current projection of
// an order: the history log is the source of truth for what happened, the status
// held here is a cache the lifecycle service keeps in step with it.
//
// Order follows these invariants:
//   - total equals the sum of item total prices, in the order currency
//   - status is a node of the status graph
//   - version grows by one with every mutation and is used for optimistic locking
//   - a terminal order never changes status again
//   - can only be created through NewOrder or RestoreOrder
//
// The struct keeps its fields private. Mutations go through TransitionTo and
// Cancel, which enforce the status graph and bump the version; persistence goes
// through Snapshot and RestoreOrder.
type Order struct {
	// id uniquely identifies the order
	id kernel.UUID
	// customerID is the customer who placed the order
	customerID kernel.UUID
	// status is the current node of the status graph
	status Status
	// items are the order lines, fixed at creation
	items []Item
	// total is the sum of the item total prices
	total kernel.Money

	// shippingAddress and billingAddress are nil for legacy orders stored without them
	shippingAddress *kernel.Address
	billingAddress  *kernel.Address

	// notes is free text; Cancel appends the cancellation reason here
	notes string
	// paymentStatus tracks the payment independently of the status graph
	paymentStatus PaymentStatus
	// createdAt and updatedAt are UTC instants; updatedAt never moves backwards
	createdAt time.Time
	updatedAt time.Time

	// version is the in-memory version, persistedVersion the one last read from or
	// written to storage. They differ while a mutation is not yet saved.
	version          int64
	persistedVersion int64

	// guard ensures the order was built by a constructor
	guard guard.ConstructorGuard
}

// Snapshot is the flat state of an order, used by persistence adapters.
//
// It carries no behaviour and is not validated on its own. RestoreOrder turns it
// back into an Order and applies every invariant; Order.Snapshot produces one.
type Snapshot struct {
	ID              kernel.UUID
	CustomerID      kernel.UUID
	Status          Status
	Items           []Item
	Currency        string
	ShippingAddress *kernel.Address
	BillingAddress  *kernel.Address
	Notes           string
	PaymentStatus   PaymentStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Version         int64
}

// NewOrder creates a pending order and computes its total from the items.
// This is the only way to create a new valid Order.
//
// Parameters:
//   - id: unique identifier of the order
//   - customerID: the customer placing the order
//   - items: at least one line, each priced in currency
//   - currency: ISO 4217 code the total is expressed in
//   - shippingAddress, billingAddress: validated when present; the create command requires both
//   - notes: free text, at most MaxNotesLength characters
//   - createdAt: creation instant, stored in UTC
//
// Returns:
//   - *Order: a pending order with payment pending and version 1
//   - error: every validation failure joined with errors.Join
//
// Example:
//
//	price, _ := kernel.NewMoney(decimal.RequireFromString("10"), "SEK")
//	item, _ := order.NewItem(productID, "Mug", "MUG-01", 2, price)
//	o, err := order.NewOrder(kernel.NewUUID(), customerID, []order.Item{item}, "SEK",
//	    &shipping, &billing, "", clock.Now())
//	if err != nil {
//	    // Handle validation error
//	}
func NewOrder(
	id kernel.UUID,
	customerID kernel.UUID,
	items []Item,
	currency string,
	shippingAddress *kernel.Address,
	billingAddress *kernel.Address,
	notes string,
	createdAt time.Time,
) (*Order, error) {
	o := &Order{
		status:        Pending,
		paymentStatus: PaymentPending,
		createdAt:     createdAt.UTC(),
		updatedAt:     createdAt.UTC(),
		version:       1,
	}

	if err := errors.Join(
		o.setID(id),
		o.setCustomerID(customerID),
		o.setItems(items, currency),
		o.setAddresses(shippingAddress, billingAddress),
		o.setNotes(notes),
		o.setCreatedAt(createdAt),
	); err != nil {
		return nil, err
	}

	o.guard = guard.NewConstructorGuard()
	return o, nil
}

// RestoreOrder rebuilds an order from storage. The total is recomputed from the
// items so a corrupted row cannot break the total invariant.
//
// Unlike NewOrder it accepts any status of the graph and missing addresses,
// since legacy rows were stored without them. The restored order counts as
// persisted at s.Version.
//
// Example:
//
//	o, err := order.RestoreOrder(order.Snapshot{
//	    ID:            id,
//	    CustomerID:    customerID,
//	    Status:        order.Shipped,
//	    Items:         items,
//	    Currency:      "SEK",
//	    PaymentStatus: order.PaymentPaid,
//	    CreatedAt:     createdAt,
//	    UpdatedAt:     updatedAt,
//	    Version:       4,
//	})
func RestoreOrder(s Snapshot) (*Order, error) {
	o := &Order{
		notes:            s.Notes,
		createdAt:        s.CreatedAt.UTC(),
		updatedAt:        s.UpdatedAt.UTC(),
		version:          s.Version,
		persistedVersion: s.Version,
	}

	var versionErr error
	if s.Version < 1 {
		versionErr = errs.NewVersionIsInvalidErrorWithCause("version", fmt.Errorf("%d is not positive", s.Version))
	}

	if err := errors.Join(
		o.setID(s.ID),
		o.setCustomerID(s.CustomerID),
		o.setStatus(s.Status),
		o.setPaymentStatus(s.PaymentStatus),
		o.setItems(s.Items, s.Currency),
		o.setAddresses(s.ShippingAddress, s.BillingAddress),
		o.setCreatedAt(s.CreatedAt),
		versionErr,
	); err != nil {
		return nil, err
	}

	o.guard = guard.NewConstructorGuard()
	return o, nil
}

// Validate ensures the order was built by one of its constructors.
//
// Returns:
//   - nil if the order is valid
//   - ErrOrderIsNotConstructed for a nil or zero value Order
//
// Repositories call it before every write.
func (o *Order) Validate() error {
	if o == nil {
		return ErrOrderIsNotConstructed
	}
	return o.guard.Validate(ErrOrderIsNotConstructed)
}

// Snapshot copies the order state for persistence. Items are copied, so the
// caller may keep the snapshot after further mutations.
func (o *Order) Snapshot() Snapshot {
	return Snapshot{
		ID:              o.id,
		CustomerID:      o.customerID,
		Status:          o.status,
		Items:           o.Items(),
		Currency:        o.total.Currency(),
		ShippingAddress: o.shippingAddress,
		BillingAddress:  o.billingAddress,
		Notes:           o.notes,
		PaymentStatus:   o.paymentStatus,
		CreatedAt:       o.createdAt,
		UpdatedAt:       o.updatedAt,
		Version:         o.version,
	}
}

// IsEqual compares two orders by their identifiers. A nil other is never equal.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID {
	return o.id
}

// CustomerID returns the customer who placed the order.
func (o *Order) CustomerID() kernel.UUID {
	return o.customerID
}

// Status returns the current lifecycle status.
func (o *Order) Status() Status {
	return o.status
}

// Items returns a copy of the order lines.
func (o *Order) Items() []Item {
	out := make([]Item, len(o.items))
	copy(out, o.items)
	return out
}

// Total returns the sum of the item total prices. It is derived from the items
// and never stored independently.
func (o *Order) Total() kernel.Money {
	return o.total
}

// Currency returns the ISO 4217 code of the total.
func (o *Order) Currency() string {
	return o.total.Currency()
}

// ShippingAddress returns nil when the order has none.
func (o *Order) ShippingAddress() *kernel.Address {
	return o.shippingAddress
}

// BillingAddress returns nil when the order has none.
func (o *Order) BillingAddress() *kernel.Address {
	return o.billingAddress
}

// Notes returns the free-text notes, including the "Cancellation reason:" lines
// appended by Cancel.
func (o *Order) Notes() string {
	return o.notes
}

// PaymentStatus returns the payment state. Cancel turns paid into refunded.
func (o *Order) PaymentStatus() PaymentStatus {
	return o.paymentStatus
}

// CreatedAt returns the creation instant in UTC.
func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

// UpdatedAt returns the instant of the last mutation in UTC. It never moves
// backwards, even when a caller passes an older clock reading.
func (o *Order) UpdatedAt() time.Time {
	return o.updatedAt
}

// Version returns the in-memory version. It starts at 1 and grows by one with
// every mutation, saved or not.
func (o *Order) Version() int64 {
	return o.version
}

// PersistedVersion is the version the store holds. Repositories compare against it.
func (o *Order) PersistedVersion() int64 {
	return o.persistedVersion
}

// MarkPersisted is called by repositories once the current version is stored.
func (o *Order) MarkPersisted() {
	o.persistedVersion = o.version
}

// NextStates lists the statuses the order may move to from where it is now.
func (o *Order) NextStates() []Status {
	return NextStates(o.status)
}

// TransitionTo moves the order to target and returns the status it left.
//
// A terminal current status yields AlreadyTerminalError, any other missing edge
// InvalidTransitionError. On error the order is left untouched. On success the
// version grows by one and updatedAt moves to at.
//
// Example:
//
//	from, err := o.TransitionTo(order.Shipped, clock.Now())
//	if errors.Is(err, order.ErrInvalidTransition) {
//	    // report the allowed targets from o.NextStates()
//	}
func (o *Order) TransitionTo(target Status, at time.Time) (Status, error) {
	from := o.status
	if IsTerminal(from) {
		return from, NewAlreadyTerminalError(o.id, from, target)
	}
	if !IsValidTransition(from, target) {
		return from, NewInvalidTransitionError(o.id, from, target)
	}

	o.status = target
	o.touch(at)
	return from, nil
}

// Cancel moves the order to cancelled, stamps the reason into the notes and
// refunds a captured payment.
//
// An empty reason leaves the notes as they are. A reason that would push the
// notes past MaxNotesLength is a validation error and nothing changes. A
// terminal order yields AlreadyTerminalError, an order whose status has no
// edge to cancelled (shipped, for example) InvalidTransitionError.
func (o *Order) Cancel(reason string, at time.Time) (Status, error) {
	if IsTerminal(o.status) {
		return o.status, NewAlreadyTerminalError(o.id, o.status, Cancelled)
	}

	reason = strings.TrimSpace(reason)
	stamped := o.notes
	if reason != "" {
		line := "Cancellation reason: " + reason
		if stamped != "" {
			stamped += "\n"
		}
		stamped += line
	}
	if len(stamped) > MaxNotesLength {
		return o.status, errs.NewValueIsOutOfRangeError("reason", len(reason), 1, MaxNotesLength-len(o.notes))
	}

	from, err := o.TransitionTo(Cancelled, at)
	if err != nil {
		return from, err
	}

	o.notes = stamped
	if o.paymentStatus == PaymentPaid {
		o.paymentStatus = PaymentRefunded
	}
	return from, nil
}

// touch records a mutation at the given instant and bumps the version.
func (o *Order) touch(at time.Time) {
	at = at.UTC()
	if at.After(o.updatedAt) {
		o.updatedAt = at
	}
	o.version++
}

// setID sets the order identifier with validation.
// This is an internal setter used during construction and restoration.
func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("id", err)
	}
	o.id = id
	return nil
}

// setCustomerID sets the owning customer with validation.
func (o *Order) setCustomerID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("customerId", err)
	}
	o.customerID = id
	return nil
}

// setStatus accepts any node of the graph. Only RestoreOrder uses it; live
// orders change status through TransitionTo.
func (o *Order) setStatus(status Status) error {
	if err := status.Validate(); err != nil {
		return err
	}
	o.status = status
	return nil
}

// setPaymentStatus sets the payment state with validation.
func (o *Order) setPaymentStatus(status PaymentStatus) error {
	if err := status.Validate(); err != nil {
		return err
	}
	o.paymentStatus = status
	return nil
}

// setItems copies the lines and recomputes the total.
//
// Business rules:
//   - at least one item is required
//   - every unit price must be in the order currency
//   - the total is the exact decimal sum of quantity times unit price
func (o *Order) setItems(items []Item, currency string) error {
	if len(items) == 0 {
		return errs.NewValueIsRequiredError("items")
	}

	total, err := kernel.ZeroMoney(currency)
	if err != nil {
		return err
	}

	for i, item := range items {
		if err = item.Validate(); err != nil {
			return fmt.Errorf("items[%d]: %w", i, err)
		}
		if item.UnitPrice().Currency() != total.Currency() {
			return errs.NewValueIsInvalidErrorWithCause(
				fmt.Sprintf("items[%d].unitPrice", i),
				fmt.Errorf("%w: %s and %s", kernel.ErrCurrencyMismatch, item.UnitPrice().Currency(), total.Currency()),
			)
		}
		if total, err = total.Add(item.TotalPrice()); err != nil {
			return err
		}
	}

	o.items = make([]Item, len(items))
	copy(o.items, items)
	o.total = total
	return nil
}

// setAddresses validates whichever addresses are present. Both may be nil
// for restored legacy orders; NewOrder callers supply both.
func (o *Order) setAddresses(shipping, billing *kernel.Address) error {
	var shippingErr, billingErr error
	if shipping != nil {
		shippingErr = shipping.Validate()
	}
	if billing != nil {
		billingErr = billing.Validate()
	}
	if err := errors.Join(shippingErr, billingErr); err != nil {
		return err
	}

	o.shippingAddress = shipping
	o.billingAddress = billing
	return nil
}

// setNotes trims the notes and bounds them by MaxNotesLength.
func (o *Order) setNotes(notes string) error {
	notes = strings.TrimSpace(notes)
	if len(notes) > MaxNotesLength {
		return errs.NewValueIsOutOfRangeError("notes", len(notes), 0, MaxNotesLength)
	}
	o.notes = notes
	return nil
}

// setCreatedAt only validates; the constructors store the UTC instant themselves.
func (o *Order) setCreatedAt(at time.Time) error {
	if at.IsZero() {
		return errs.NewValueIsRequiredError("createdAt")
	}
	return nil
}
