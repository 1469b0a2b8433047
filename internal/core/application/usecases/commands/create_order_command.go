package commands

import (
	"errors"
	"strings"

	"ordermgmt/internal/core/domain/model/kernel"
	"ordermgmt/internal/core/domain/model/order"
	"ordermgmt/internal/core/ports"
	"ordermgmt/internal/pkg/errs"
	"ordermgmt/internal/pkg/guard"
)

// ErrCreateOrderCommandIsNotConstructed is returned by Handle for a zero value command.
var ErrCreateOrderCommandIsNotConstructed = errors.New(
	"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
)

// CreateOrderCommand is a request to place a new order. The order id is
// generated here so a retried attempt inserts the same row.
//
// Example:
//
//	shipping, _ := kernel.NewNamedAddress("shippingAddress", "Storgatan 1", "Stockholm", "AB", "11122", "SE")
//	billing := shipping
//	cmd, err := NewCreateOrderCommand(actor, customerID, items, "", &shipping, &billing, "")
//	if err != nil {
//	    return fmt.Errorf("invalid order: %w", err)
//	}
//	created, err := handler.Handle(ctx, cmd)
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID         kernel.UUID
	customerID      kernel.UUID
	items           []order.Item
	currency        string
	shippingAddress *kernel.Address
	billingAddress  *kernel.Address
	notes           string
	actor           ports.Actor

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand validates the request before any storage call. An
// empty currency falls back to kernel.DefaultCurrency.
//
// Validation covers the actor, the customer, at least one item, the currency,
// both addresses and the notes length. All failures are joined, so a client
// sees every problem of the request at once.
//
// Example:
//
//	price, _ := kernel.NewMoney(decimal.RequireFromString("7.50"), "SEK")
//	item, _ := order.NewItem(productID, "Mug", "MUG-01", 2, price)
//	cmd, err := NewCreateOrderCommand(actor, customerID, []order.Item{item}, "SEK", &shipping, &billing, "Gift wrap")
//	if err != nil {
//	    // errs.IsValidation(err) is true
//	}
func NewCreateOrderCommand(
	actor ports.Actor,
	customerID kernel.UUID,
	items []order.Item,
	currency string,
	shippingAddress *kernel.Address,
	billingAddress *kernel.Address,
	notes string,
) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		orderID: kernel.NewUUID(),
		guard:   guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setActor(actor),
		cmd.setCustomerID(customerID),
		cmd.setItems(items),
		cmd.setCurrency(currency),
		cmd.setAddress("shippingAddress", shippingAddress, &cmd.shippingAddress),
		cmd.setAddress("billingAddress", billingAddress, &cmd.billingAddress),
		cmd.setNotes(notes),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrCreateOrderCommandIsNotConstructed if validation fails.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

// OrderID returns the identifier generated for the new order.
func (c CreateOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// CustomerID returns the customer placing the order.
func (c CreateOrderCommand) CustomerID() kernel.UUID {
	return c.customerID
}

// Currency returns the normalized ISO 4217 code of the order.
func (c CreateOrderCommand) Currency() string {
	return c.currency
}

// Notes returns the trimmed order notes, possibly empty.
func (c CreateOrderCommand) Notes() string {
	return c.notes
}

// Actor returns who placed the order.
func (c CreateOrderCommand) Actor() ports.Actor {
	return c.actor
}

// Items returns a copy of the order lines.
func (c CreateOrderCommand) Items() []order.Item {
	out := make([]order.Item, len(c.items))
	copy(out, c.items)
	return out
}

// ShippingAddress returns the validated shipping address, never nil.
func (c CreateOrderCommand) ShippingAddress() *kernel.Address {
	return c.shippingAddress
}

// BillingAddress returns the validated billing address, never nil.
func (c CreateOrderCommand) BillingAddress() *kernel.Address {
	return c.billingAddress
}

func (c *CreateOrderCommand) setActor(actor ports.Actor) error {
	a, err := validActor(actor)
	if err != nil {
		return err
	}
	c.actor = a
	return nil
}

func (c *CreateOrderCommand) setCustomerID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("customerId", err)
	}
	c.customerID = id
	return nil
}

func (c *CreateOrderCommand) setItems(items []order.Item) error {
	if len(items) == 0 {
		return errs.NewValueIsRequiredError("items")
	}
	c.items = make([]order.Item, len(items))
	copy(c.items, items)
	return nil
}

func (c *CreateOrderCommand) setCurrency(currency string) error {
	if strings.TrimSpace(currency) == "" {
		currency = kernel.DefaultCurrency
	}
	normalized, err := kernel.NormalizeCurrency(currency)
	if err != nil {
		return err
	}
	c.currency = normalized
	return nil
}

func (c *CreateOrderCommand) setAddress(name string, address *kernel.Address, dst **kernel.Address) error {
	if address == nil {
		return errs.NewValueIsRequiredError(name)
	}
	if err := address.Validate(); err != nil {
		return errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	a := *address
	*dst = &a
	return nil
}

func (c *CreateOrderCommand) setNotes(notes string) error {
	notes = strings.TrimSpace(notes)
	if len(notes) > order.MaxNotesLength {
		return errs.NewValueIsOutOfRangeError("notes", len(notes), 0, order.MaxNotesLength)
	}
	c.notes = notes
	return nil
}
