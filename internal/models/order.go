package models

import (
	"time"
)

type OrderType string

const (
	OrderTypeDineIn   OrderType = "dine_in"
	OrderTypeTakeaway OrderType = "takeaway"
	OrderTypeDelivery OrderType = "delivery"
)

// OrderStatus is owned by the backend state machine and relayed as-is.
type OrderStatus string

type Order struct {
	ID        string      `json:"id"`
	Number    int         `json:"number,omitempty"`
	Type      OrderType   `json:"type"`
	Status    OrderStatus `json:"status"`
	TableID   string      `json:"tableId,omitempty"`
	Items     []OrderItem `json:"items"`
	Total     int64       `json:"total"`
	Note      string      `json:"note,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
}

type OrderItem struct {
	ProductID    string `json:"productId"`
	ProductName  string `json:"productName"`
	VariantID    string `json:"variantId"`
	VariantValue string `json:"variantValue"`
	Quantity     int    `json:"quantity"`
	UnitPrice    int64  `json:"unitPrice"`
}

// NewOrder is what the POS submits for an employee-composed order.
type NewOrder struct {
	Type    OrderType      `json:"type" validate:"required,oneof=dine_in takeaway delivery"`
	TableID string         `json:"tableId,omitempty" validate:"required_if=Type dine_in,max=64"`
	Note    string         `json:"note,omitempty" validate:"max=500"`
	Items   []NewOrderItem `json:"items" validate:"required,min=1,dive"`
}

type NewOrderItem struct {
	VariantID string `json:"variantId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"min=1"`
}

// CheckoutRequest turns the customer's cart into an order.
type CheckoutRequest struct {
	Type    OrderType `json:"type" validate:"required,oneof=dine_in takeaway delivery"`
	TableID string    `json:"tableId,omitempty" validate:"required_if=Type dine_in,max=64"`
	Address string    `json:"address,omitempty" validate:"required_if=Type delivery,max=300"`
	Phone   string    `json:"phone,omitempty" validate:"required_if=Type delivery,max=32"`
	Note    string    `json:"note,omitempty" validate:"max=500"`
}

type StatusUpdate struct {
	Status string `json:"status" validate:"required,max=32"`
}

type Cart struct {
	Items    []CartItem `json:"items"`
	Subtotal int64      `json:"subtotal"`
}

type CartItem struct {
	ProductID    string `json:"productId"`
	ProductName  string `json:"productName"`
	VariantID    string `json:"variantId"`
	VariantValue string `json:"variantValue"`
	Quantity     int    `json:"quantity"`
	UnitPrice    int64  `json:"unitPrice"`
	LineTotal    int64  `json:"lineTotal"`
}

// Count returns the number of units in the cart.
func (c *Cart) Count() int {
	if c == nil {
		return 0
	}
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

type Table struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Seats  int    `json:"seats"`
	Status string `json:"status"`
}

type Reservation struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name" validate:"required,max=100"`
	Phone     string    `json:"phone" validate:"required,max=32"`
	PartySize int       `json:"partySize" validate:"min=1,max=50"`
	At        time.Time `json:"at" validate:"required"`
	Note      string    `json:"note,omitempty" validate:"max=500"`
	Status    string    `json:"status,omitempty"`
}

type Recommendation struct {
	ProductID string  `json:"productId"`
	Score     float64 `json:"score"`
}
