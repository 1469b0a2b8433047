package kernel

import (
	"errors"
	"strings"

	"ordermgmt/internal/pkg/errs"
	"ordermgmt/internal/pkg/guard"
)

// ErrAddressIsNotConstructed is returned by Address.Validate for a zero value Address.
var ErrAddressIsNotConstructed = errors.New("Address must be created via NewAddress constructor")

// Address is a postal address. All five parts are mandatory: an address is
// either complete or absent.
type Address struct {
	street     string
	city       string
	state      string
	postalCode string
	country    string

	guard guard.ConstructorGuard
}

// NewAddress builds an address whose validation errors are reported as
// "address.<field>". Every part is trimmed and must be non-empty.
//
// Example:
//
//	addr, err := kernel.NewAddress("Storgatan 1", "Uppsala", "Uppsala län", "753 20", "SE")
//	if err != nil {
//	    // errs.IsValidation(err) is true, one error per missing part
//	}
func NewAddress(street, city, state, postalCode, country string) (Address, error) {
	return NewNamedAddress("address", street, city, state, postalCode, country)
}

// NewNamedAddress is NewAddress with the error prefix set to name, for example
// "shippingAddress" so a missing city is reported as "shippingAddress.city".
//
// Example:
//
//	_, err := kernel.NewNamedAddress("billingAddress", "Storgatan 1", "", "", "11122", "SE")
//	// err names "billingAddress.city"
func NewNamedAddress(name, street, city, state, postalCode, country string) (Address, error) {
	a := Address{
		street:     strings.TrimSpace(street),
		city:       strings.TrimSpace(city),
		state:      strings.TrimSpace(state),
		postalCode: strings.TrimSpace(postalCode),
		country:    strings.TrimSpace(country),
	}

	if err := errors.Join(
		required(name, "street", a.street),
		required(name, "city", a.city),
		required(name, "state", a.state),
		required(name, "postalCode", a.postalCode),
		required(name, "country", a.country),
	); err != nil {
		return Address{}, err
	}

	a.guard = guard.NewConstructorGuard()
	return a, nil
}

func required(prefix, field, value string) error {
	if value == "" {
		return errs.NewValueIsRequiredError(prefix + "." + field)
	}
	return nil
}

// Validate ensures the address was built by one of its constructors.
func (a Address) Validate() error {
	return a.guard.Validate(ErrAddressIsNotConstructed)
}

// Street returns the street line, trimmed.
func (a Address) Street() string { return a.street }

// City returns the city.
func (a Address) City() string { return a.city }

// State returns the state, region or province.
func (a Address) State() string { return a.state }

// PostalCode returns the postal code as entered; its format is not checked.
func (a Address) PostalCode() string { return a.postalCode }

// Country returns the country as entered.
func (a Address) Country() string { return a.country }

// IsEqual compares all five parts.
func (a Address) IsEqual(other Address) bool {
	return a.street == other.street &&
		a.city == other.city &&
		a.state == other.state &&
		a.postalCode == other.postalCode &&
		a.country == other.country
}
