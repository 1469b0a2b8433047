package http

import (
	"fmt"
	"time"

	"ordermgmt/internal/core/application/usecases/queries"
	"ordermgmt/internal/core/domain/model/history"
	"ordermgmt/internal/core/domain/model/kernel"
	"ordermgmt/internal/core/domain/model/order"

	"github.com/shopspring/decimal"
)

// AddressBody is a postal address in requests and responses.
type AddressBody struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// NewItemBody is one line of a new order. UnitPrice is a decimal string, for
// example "19.99", so no precision is lost in JSON.
type NewItemBody struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	SKU         string `json:"sku"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unitPrice"`
}

// NewOrderBody is the payload of POST /api/v1/orders.
//
// Example:
//
//	{
//	  "customerId": "5f0c...",
//	  "currency": "USD",
//	  "items": [{"productId": "9a1e...", "productName": "Mug", "quantity": 2, "unitPrice": "7.50"}]
//	}
type NewOrderBody struct {
	CustomerID      string        `json:"customerId"`
	Currency        string        `json:"currency"`
	Items           []NewItemBody `json:"items"`
	ShippingAddress *AddressBody  `json:"shippingAddress,omitempty"`
	BillingAddress  *AddressBody  `json:"billingAddress,omitempty"`
	Notes           string        `json:"notes"`
}

// TransitionBody is the payload of POST /api/v1/orders/{id}/transitions.
type TransitionBody struct {
	Status  string `json:"status"`
	Comment string `json:"comment"`
}

// CancelBody is the payload of POST /api/v1/orders/{id}/cancel.
type CancelBody struct {
	Reason string `json:"reason"`
}

// NoteBody is the payload of POST /api/v1/orders/{id}/notes.
type NoteBody struct {
	Content    string `json:"content"`
	IsInternal bool   `json:"isInternal"`
}

// ItemResponse renders an order line. Prices are decimal strings.
type ItemResponse struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	SKU         string `json:"sku,omitempty"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unitPrice"`
	TotalPrice  string `json:"totalPrice"`
}

// OrderResponse is the full view of an order, including the statuses it can
// move to next.
type OrderResponse struct {
	ID                string         `json:"id"`
	CustomerID        string         `json:"customerId"`
	Status            string         `json:"status"`
	StatusDescription string         `json:"statusDescription"`
	PaymentStatus     string         `json:"paymentStatus"`
	Total             string         `json:"total"`
	Currency          string         `json:"currency"`
	Items             []ItemResponse `json:"items"`
	ShippingAddress   *AddressBody   `json:"shippingAddress,omitempty"`
	BillingAddress    *AddressBody   `json:"billingAddress,omitempty"`
	Notes             string         `json:"notes,omitempty"`
	Version           int64          `json:"version"`
	NextStatuses      []string       `json:"nextStatuses"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
}

// OrderSummaryResponse is one row of the order listing.
type OrderSummaryResponse struct {
	ID            string    `json:"id"`
	CustomerID    string    `json:"customerId"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"paymentStatus"`
	Total         string    `json:"total"`
	Currency      string    `json:"currency"`
	ItemCount     int       `json:"itemCount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// EventResponse is one timeline entry. Status fields are set on status
// changes, Content and IsInternal on notes.
type EventResponse struct {
	ID         string    `json:"id"`
	OrderID    string    `json:"orderId"`
	Kind       string    `json:"kind"`
	Sequence   int64     `json:"sequence"`
	OccurredAt time.Time `json:"occurredAt"`
	Actor      string    `json:"actor"`
	FromStatus *string   `json:"fromStatus,omitempty"`
	ToStatus   string    `json:"toStatus,omitempty"`
	Comment    string    `json:"comment,omitempty"`
	Content    string    `json:"content,omitempty"`
	IsInternal bool      `json:"isInternal"`
}

// StatusInfoResponse describes one status of the catalogue.
type StatusInfoResponse struct {
	Status       string   `json:"status"`
	Description  string   `json:"description"`
	Terminal     bool     `json:"terminal"`
	NextStatuses []string `json:"nextStatuses"`
}

func (b NewItemBody) toItem(index int, currency string) (order.Item, error) {
	param := fmt.Sprintf("items[%d]", index)

	productID, err := kernel.UUIDFromString(b.ProductID)
	if err != nil {
		return order.Item{}, badRequest(param+".productId", err)
	}
	amount, err := decimal.NewFromString(b.UnitPrice)
	if err != nil {
		return order.Item{}, badRequest(param+".unitPrice", err)
	}
	price, err := kernel.NewMoney(amount, currency)
	if err != nil {
		return order.Item{}, err
	}
	return order.NewItem(productID, b.ProductName, b.SKU, b.Quantity, price)
}

// toAddress leaves a missing address to the command, which reports it as required.
func (b *AddressBody) toAddress(name string) (*kernel.Address, error) {
	if b == nil {
		return nil, nil //nolint:nilnil // absence is validated by the command
	}
	a, err := kernel.NewNamedAddress(name, b.Street, b.City, b.State, b.PostalCode, b.Country)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func addressBody(a *kernel.Address) *AddressBody {
	if a == nil {
		return nil
	}
	return &AddressBody{
		Street:     a.Street(),
		City:       a.City(),
		State:      a.State(),
		PostalCode: a.PostalCode(),
		Country:    a.Country(),
	}
}

func statusNames(statuses []order.Status) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, s.String())
	}
	return out
}

func orderResponse(o *order.Order) OrderResponse {
	items := o.Items()
	out := make([]ItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, ItemResponse{
			ProductID:   it.ProductID().String(),
			ProductName: it.ProductName(),
			SKU:         it.SKU(),
			Quantity:    it.Quantity(),
			UnitPrice:   it.UnitPrice().Amount().StringFixed(2),
			TotalPrice:  it.TotalPrice().Amount().StringFixed(2),
		})
	}

	return OrderResponse{
		ID:                o.ID().String(),
		CustomerID:        o.CustomerID().String(),
		Status:            o.Status().String(),
		StatusDescription: o.Status().Description(),
		PaymentStatus:     o.PaymentStatus().String(),
		Total:             o.Total().Amount().StringFixed(2),
		Currency:          o.Currency(),
		Items:             out,
		ShippingAddress:   addressBody(o.ShippingAddress()),
		BillingAddress:    addressBody(o.BillingAddress()),
		Notes:             o.Notes(),
		Version:           o.Version(),
		NextStatuses:      statusNames(o.NextStates()),
		CreatedAt:         o.CreatedAt(),
		UpdatedAt:         o.UpdatedAt(),
	}
}

func eventResponse(e *history.Event) EventResponse {
	resp := EventResponse{
		ID:         e.ID().String(),
		OrderID:    e.OrderID().String(),
		Kind:       e.Kind().String(),
		Sequence:   e.Sequence(),
		OccurredAt: e.OccurredAt(),
		Actor:      e.Actor(),
		IsInternal: e.IsInternal(),
	}
	switch e.Kind() {
	case history.KindStatusChange:
		if from := e.FromStatus(); from != nil {
			name := from.String()
			resp.FromStatus = &name
		}
		resp.ToStatus = e.ToStatus().String()
		resp.Comment = e.Comment()
	case history.KindNote:
		resp.Content = e.Content()
	}
	return resp
}

func summaryResponse(r queries.ListOrdersQueryResponse) OrderSummaryResponse {
	return OrderSummaryResponse{
		ID:            r.ID.String(),
		CustomerID:    r.CustomerID.String(),
		Status:        r.Status.String(),
		PaymentStatus: r.PaymentStatus.String(),
		Total:         r.Total.StringFixed(2),
		Currency:      r.Currency,
		ItemCount:     r.ItemCount,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}
