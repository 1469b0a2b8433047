package kernel

import (
	"errors"
	"fmt"
	"strings"

	"ordermgmt/internal/pkg/errs"
	"ordermgmt/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var (
	// ErrMoneyIsNotConstructed is returned by Money.Validate for a zero value Money.
	ErrMoneyIsNotConstructed = errors.New("Money must be created via NewMoney constructor")
	// ErrCurrencyMismatch is returned when amounts of two currencies are combined.
	ErrCurrencyMismatch      = errors.New("currency mismatch")
)

// DefaultCurrency is used when a request does not name a currency.
const DefaultCurrency = "SEK"

// Money is a non-negative fixed-point amount in a single ISO 4217 currency.
//
// Amounts are shopspring decimals, so sums of prices never pick up binary
// floating point error. Money is a value type; every operation returns a new
// value.
type Money struct {
	amount   decimal.Decimal
	currency string

	guard guard.ConstructorGuard
}

// NewMoney validates the amount and normalizes the currency code to upper case.
//
// Example:
//
//	price, err := kernel.NewMoney(decimal.RequireFromString("12.50"), "sek")
//	// price.String() == "12.50 SEK"
func NewMoney(amount decimal.Decimal, currency string) (Money, error) {
	code, err := NormalizeCurrency(currency)
	if err != nil {
		return Money{}, err
	}
	if amount.IsNegative() {
		return Money{}, errs.NewValueIsOutOfRangeError("amount", amount.String(), 0, "unbounded")
	}

	return Money{
		amount:   amount,
		currency: code,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

// ZeroMoney returns an empty amount in currency.
func ZeroMoney(currency string) (Money, error) {
	return NewMoney(decimal.Zero, currency)
}

// NormalizeCurrency checks for a three letter code.
func NormalizeCurrency(currency string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if code == "" {
		return "", errs.NewValueIsRequiredError("currency")
	}
	if len(code) != 3 || strings.IndexFunc(code, func(r rune) bool { return r < 'A' || r > 'Z' }) >= 0 {
		return "", errs.NewValueIsInvalidErrorWithCause("currency", fmt.Errorf("%q is not an ISO 4217 code", currency))
	}
	return code, nil
}

// Validate ensures the value was built by NewMoney.
func (m Money) Validate() error {
	return m.guard.Validate(ErrMoneyIsNotConstructed)
}

// Amount returns the decimal amount, never negative.
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Currency returns the upper case ISO 4217 code.
func (m Money) Currency() string {
	return m.currency
}

// Add sums two amounts of the same currency.
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("%w: %s and %s", ErrCurrencyMismatch, m.currency, other.currency)
	}
	return NewMoney(m.amount.Add(other.amount), m.currency)
}

// Times multiplies the amount by a non-negative quantity.
func (m Money) Times(quantity int) (Money, error) {
	if quantity < 0 {
		return Money{}, errs.NewValueIsOutOfRangeError("quantity", quantity, 0, "unbounded")
	}
	return NewMoney(m.amount.Mul(decimal.NewFromInt(int64(quantity))), m.currency)
}

// Equal compares amounts numerically, so 25 equals 25.00.
func (m Money) Equal(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// String formats the amount with two decimals followed by the currency code.
func (m Money) String() string {
	return m.amount.StringFixed(2) + " " + m.currency
}
