package order

import (
	"errors"
	"strings"

	"ordermgmt/internal/core/domain/model/kernel"
	"ordermgmt/internal/pkg/errs"
	"ordermgmt/internal/pkg/guard"
)

// ErrItemIsNotConstructed is returned by Item.Validate for a zero value Item.
var ErrItemIsNotConstructed = errors.New("Item must be created via NewItem constructor")

// MaxItemQuantity caps a single line.
const MaxItemQuantity = 10_000

// Item is an order line. Product name and SKU are copied from the catalogue when
// the order is placed and never change afterwards, so later product edits do not
// rewrite order history.
type Item struct {
	productID   kernel.UUID
	productName string
	sku         string
	quantity    int
	unitPrice   kernel.Money

	guard guard.ConstructorGuard
}

// NewItem validates a line. SKU is optional, everything else is required.
//
// Parameters:
//   - productID: catalogue identifier of the product
//   - productName: name at the time of ordering, trimmed, non-empty
//   - sku: optional stock keeping unit
//   - quantity: between 1 and MaxItemQuantity
//   - unitPrice: a valid, non-negative Money
//
// Example:
//
//	price, _ := kernel.NewMoney(decimal.RequireFromString("12.50"), "SEK")
//	mug, err := order.NewItem(productID, "Mug", "MUG-01", 2, price)
//	if err != nil {
//	    // every invalid field is reported at once
//	}
func NewItem(productID kernel.UUID, productName, sku string, quantity int, unitPrice kernel.Money) (Item, error) {
	item := Item{
		productName: strings.TrimSpace(productName),
		sku:         strings.TrimSpace(sku),
	}

	var priceErr error
	if err := unitPrice.Validate(); err != nil {
		priceErr = errs.NewValueIsRequiredErrorWithCause("unitPrice", err)
	}

	if err := errors.Join(
		productID.Validate(),
		item.setProductName(item.productName),
		item.setQuantity(quantity),
		priceErr,
	); err != nil {
		return Item{}, err
	}

	item.productID = productID
	item.unitPrice = unitPrice
	item.guard = guard.NewConstructorGuard()
	return item, nil
}

func (i *Item) setProductName(name string) error {
	if name == "" {
		return errs.NewValueIsRequiredError("productName")
	}
	i.productName = name
	return nil
}

func (i *Item) setQuantity(quantity int) error {
	if quantity < 1 || quantity > MaxItemQuantity {
		return errs.NewValueIsOutOfRangeError("quantity", quantity, 1, MaxItemQuantity)
	}
	i.quantity = quantity
	return nil
}

// Validate ensures the item was built by NewItem.
func (i Item) Validate() error {
	return i.guard.Validate(ErrItemIsNotConstructed)
}

// ProductID returns the catalogue identifier.
func (i Item) ProductID() kernel.UUID {
	return i.productID
}

// ProductName returns the name copied when the order was placed.
func (i Item) ProductName() string {
	return i.productName
}

// SKU may be empty.
func (i Item) SKU() string {
	return i.sku
}

// Quantity returns the number of units, always at least one.
func (i Item) Quantity() int {
	return i.quantity
}

// UnitPrice returns the price of one unit in the order currency.
func (i Item) UnitPrice() kernel.Money {
	return i.unitPrice
}

// TotalPrice is unit price times quantity.
func (i Item) TotalPrice() kernel.Money {
	// quantity is positive by construction, Times cannot fail
	total, _ := i.unitPrice.Times(i.quantity)
	return total
}
