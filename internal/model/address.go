package model

import (
	"time"

	"github.com/google/uuid"
)

// DeliveryAddress is a saved address belonging to a buyer. Orders copy the
// fields they need at creation time rather than referencing the row.
type DeliveryAddress struct {
	ID           uuid.UUID `json:"id" db:"id"`
	BuyerID      uuid.UUID `json:"buyerId" db:"buyer_id"`
	ContactName  string    `json:"contactName" db:"contact_name"`
	ContactPhone string    `json:"contactPhone" db:"contact_phone"`
	AddressLine  string    `json:"addressLine" db:"address_line"`
	City         string    `json:"city" db:"city"`
	State        string    `json:"state" db:"state"`
	Pincode      string    `json:"pincode" db:"pincode"`
	Landmark     string    `json:"landmark,omitempty" db:"landmark"`
	IsActive     bool      `json:"isActive" db:"is_active"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}
