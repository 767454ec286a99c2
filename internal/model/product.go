package model

import (
	"time"

	"github.com/google/uuid"
)

// ListingStatus is the lifecycle stage of a product offering, independent of
// any single order.
type ListingStatus string

const (
	ListingDraft     ListingStatus = "draft"
	ListingActive    ListingStatus = "active"
	ListingInactive  ListingStatus = "inactive"
	ListingSoldOut   ListingStatus = "soldout"
	ListingExpired   ListingStatus = "expired"
	ListingSuspended ListingStatus = "suspended"
)

// Unit is the unit of measure a product is sold in.
type Unit string

const (
	UnitKg      Unit = "kg"
	UnitGram    Unit = "gram"
	UnitQuintal Unit = "quintal"
	UnitTon     Unit = "ton"
	UnitPiece   Unit = "piece"
	UnitDozen   Unit = "dozen"
	UnitBag25Kg Unit = "bag_25kg"
	UnitBag50Kg Unit = "bag_50kg"
	UnitLitre   Unit = "litre"
)

// ValidUnit reports whether u is a known unit of measure.
func ValidUnit(u Unit) bool {
	switch u {
	case UnitKg, UnitGram, UnitQuintal, UnitTon, UnitPiece, UnitDozen,
		UnitBag25Kg, UnitBag50Kg, UnitLitre:
		return true
	}
	return false
}

// Product represents a crop listing in the catalogue.
type Product struct {
	ID                uuid.UUID     `json:"id" db:"id"`
	SellerID          uuid.UUID     `json:"sellerId" db:"seller_id"`
	Name              string        `json:"name" db:"name"`
	Unit              Unit          `json:"unit" db:"unit"`
	PricePerUnit      float64       `json:"pricePerUnit" db:"price_per_unit"`
	QuantityAvailable float64       `json:"quantityAvailable" db:"quantity_available"`
	MinOrderQuantity  float64       `json:"minOrderQuantity" db:"min_order_quantity"`
	MaxOrderQuantity  *float64      `json:"maxOrderQuantity,omitempty" db:"max_order_quantity"`
	ListingStatus     ListingStatus `json:"listingStatus" db:"listing_status"`
	IsDeleted         bool          `json:"-" db:"is_deleted"`
	CreatedAt         time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time     `json:"updatedAt" db:"updated_at"`
}

// Purchasable reports whether orders may be placed against the listing.
func (p *Product) Purchasable() bool {
	return !p.IsDeleted && (p.ListingStatus == ListingActive || p.ListingStatus == ListingSoldOut)
}

// CreateProductRequest is the payload for listing a new product.
type CreateProductRequest struct {
	Name              string   `json:"name"`
	Unit              Unit     `json:"unit"`
	PricePerUnit      float64  `json:"pricePerUnit"`
	QuantityAvailable float64  `json:"quantityAvailable"`
	MinOrderQuantity  float64  `json:"minOrderQuantity"`
	MaxOrderQuantity  *float64 `json:"maxOrderQuantity,omitempty"`
}

// RestockRequest is the payload for seller restocking.
type RestockRequest struct {
	Quantity float64 `json:"quantity"`
}
