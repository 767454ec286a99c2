package model

import (
	"time"

	"github.com/google/uuid"
)

// CartItem is a candidate purchase held before checkout. One row exists per
// (buyer, product) pair; the unit price is a snapshot taken at add time.
// Expired rows are invisible to reads and purged lazily.
type CartItem struct {
	ID        uuid.UUID `json:"id" db:"id"`
	BuyerID   uuid.UUID `json:"buyerId" db:"buyer_id"`
	ProductID uuid.UUID `json:"productId" db:"product_id"`
	Quantity  float64   `json:"quantity" db:"quantity"`
	UnitPrice float64   `json:"unitPrice" db:"unit_price"`
	ExpiresAt time.Time `json:"expiresAt" db:"expires_at"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Subtotal returns quantity times the snapshotted unit price.
func (c *CartItem) Subtotal() float64 {
	return c.Quantity * c.UnitPrice
}

// AddCartItemRequest is the payload for adding a product to the cart.
type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  float64   `json:"quantity"`
}

// CartSummary is the response payload for viewing the cart.
type CartSummary struct {
	Items     []CartItem `json:"items"`
	ItemCount int        `json:"itemCount"`
	Subtotal  float64    `json:"subtotal"`
}
