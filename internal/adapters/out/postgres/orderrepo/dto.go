// Package orderrepo persists order aggregates with gorm.
package orderrepo

import (
	"fmt"
	"time"

	"ordermgmt/internal/core/domain/model/kernel"
	"ordermgmt/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderDTO is a row of orders with its items preloaded.
type OrderDTO struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CustomerID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Status        string          `gorm:"type:varchar(20);not null"`
	PaymentStatus string          `gorm:"type:varchar(20);not null"`
	Currency      string          `gorm:"type:char(3);not null"`
	TotalAmount   decimal.Decimal `gorm:"type:numeric(19,4);not null"`
	Shipping      AddressDTO      `gorm:"embedded;embeddedPrefix:shipping_"`
	Billing       AddressDTO      `gorm:"embedded;embeddedPrefix:billing_"`
	Notes         string          `gorm:"type:text;not null"`
	Version       int64           `gorm:"not null"`
	CreatedAt     time.Time       `gorm:"autoCreateTime:false"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime:false"`
	Items         []ItemDTO       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName implements gorm's tabler.
func (OrderDTO) TableName() string {
	return "orders"
}

// AddressDTO columns are all NULL for an order without that address.
type AddressDTO struct {
	Street     *string `gorm:"type:varchar(255)"`
	City       *string `gorm:"type:varchar(100)"`
	State      *string `gorm:"type:varchar(100)"`
	PostalCode *string `gorm:"type:varchar(20)"`
	Country    *string `gorm:"type:varchar(100)"`
}

// ItemDTO is a row of order_items, keyed by order and line number.
type ItemDTO struct {
	OrderID     uuid.UUID       `gorm:"type:uuid;primaryKey"`
	LineNo      int             `gorm:"primaryKey"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName string          `gorm:"type:varchar(255);not null"`
	SKU         string          `gorm:"column:sku;type:varchar(100);not null"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(19,4);not null"`
}

// TableName implements gorm's tabler.
func (ItemDTO) TableName() string {
	return "order_items"
}

func fromDomain(o *order.Order) OrderDTO {
	id := o.ID().Bytes()

	items := make([]ItemDTO, 0, len(o.Items()))
	for i, item := range o.Items() {
		items = append(items, ItemDTO{
			OrderID:     id,
			LineNo:      i + 1,
			ProductID:   item.ProductID().Bytes(),
			ProductName: item.ProductName(),
			SKU:         item.SKU(),
			Quantity:    item.Quantity(),
			UnitPrice:   item.UnitPrice().Amount(),
		})
	}

	return OrderDTO{
		ID:            id,
		CustomerID:    o.CustomerID().Bytes(),
		Status:        o.Status().String(),
		PaymentStatus: o.PaymentStatus().String(),
		Currency:      o.Currency(),
		TotalAmount:   o.Total().Amount(),
		Shipping:      addressFromDomain(o.ShippingAddress()),
		Billing:       addressFromDomain(o.BillingAddress()),
		Notes:         o.Notes(),
		Version:       o.Version(),
		CreatedAt:     o.CreatedAt(),
		UpdatedAt:     o.UpdatedAt(),
		Items:         items,
	}
}

func addressFromDomain(a *kernel.Address) AddressDTO {
	if a == nil {
		return AddressDTO{}
	}
	return AddressDTO{
		Street:     ptr(a.Street()),
		City:       ptr(a.City()),
		State:      ptr(a.State()),
		PostalCode: ptr(a.PostalCode()),
		Country:    ptr(a.Country()),
	}
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	customerID, err := kernel.UUIDFromBytes(dto.CustomerID[:])
	if err != nil {
		return nil, err
	}
	status, err := order.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}
	paymentStatus, err := order.ParsePaymentStatus(dto.PaymentStatus)
	if err != nil {
		return nil, err
	}
	shipping, err := addressToDomain("shippingAddress", dto.Shipping)
	if err != nil {
		return nil, err
	}
	billing, err := addressToDomain("billingAddress", dto.Billing)
	if err != nil {
		return nil, err
	}

	items := make([]order.Item, 0, len(dto.Items))
	for _, itemDTO := range dto.Items {
		item, itemErr := itemToDomain(itemDTO, dto.Currency)
		if itemErr != nil {
			return nil, itemErr
		}
		items = append(items, item)
	}

	o, err := order.RestoreOrder(order.Snapshot{
		ID:              id,
		CustomerID:      customerID,
		Status:          status,
		Items:           items,
		Currency:        dto.Currency,
		ShippingAddress: shipping,
		BillingAddress:  billing,
		Notes:           dto.Notes,
		PaymentStatus:   paymentStatus,
		CreatedAt:       dto.CreatedAt,
		UpdatedAt:       dto.UpdatedAt,
		Version:         dto.Version,
	})
	if err != nil {
		return nil, err
	}

	if !o.Total().Amount().Equal(dto.TotalAmount) {
		return nil, fmt.Errorf("%w: order %s stores %s, items sum to %s",
			order.ErrTotalMismatch, id, dto.TotalAmount, o.Total().Amount())
	}
	return o, nil
}

func itemToDomain(dto ItemDTO, currency string) (order.Item, error) {
	productID, err := kernel.UUIDFromBytes(dto.ProductID[:])
	if err != nil {
		return order.Item{}, err
	}
	price, err := kernel.NewMoney(dto.UnitPrice, currency)
	if err != nil {
		return order.Item{}, err
	}
	return order.NewItem(productID, dto.ProductName, dto.SKU, dto.Quantity, price)
}

func addressToDomain(name string, dto AddressDTO) (*kernel.Address, error) {
	if dto.Street == nil && dto.City == nil && dto.State == nil && dto.PostalCode == nil && dto.Country == nil {
		return nil, nil
	}
	a, err := kernel.NewNamedAddress(name,
		deref(dto.Street), deref(dto.City), deref(dto.State), deref(dto.PostalCode), deref(dto.Country))
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func ptr(s string) *string {
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
