package order

import (
	"time"

	"buyit-client/internal/state"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

type PaymentMethod string

const (
	PaymentCreditCard     PaymentMethod = "creditCard"
	PaymentPaypal         PaymentMethod = "paypal"
	PaymentCashOnDelivery PaymentMethod = "cashOnDelivery"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCreditCard, PaymentPaypal, PaymentCashOnDelivery:
		return true
	}
	return false
}

type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
}

// Line is a snapshot of product, price and quantity at purchase time,
// decoupled from the live catalog so historical orders keep showing
// the price actually paid.
type Line struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

type Order struct {
	ID              string        `json:"_id"`
	Items           []Line        `json:"items"`
	TotalAmount     float64       `json:"totalAmount"`
	Status          Status        `json:"status"`
	ShippingAddress Address       `json:"shippingAddress"`
	PaymentMethod   PaymentMethod `json:"paymentMethod"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// Snapshot is a copy of the orders state safe to hand to the UI.
// LastOrder is set transiently right after placement, for the
// confirmation view.
type Snapshot struct {
	Items     []Order
	LastOrder *Order
	Status    state.Status
	Error     string
}
