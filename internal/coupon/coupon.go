package coupon

import (
	"context"
	"time"
)

// DiscountType determines how a coupon's value is applied.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed_amount"
)

// Coupon is one promotional code definition from the coupon catalogue.
type Coupon struct {
	Code              string       `json:"code"`
	DiscountType      DiscountType `json:"discountType"`
	DiscountValue     float64      `json:"discountValue"`
	MaxDiscountAmount *float64     `json:"maxDiscountAmount,omitempty"`
	MinOrderValue     *float64     `json:"minOrderValue,omitempty"`
	ValidFrom         time.Time    `json:"validFrom"`
	ValidUntil        time.Time    `json:"validUntil"`
	Active            bool         `json:"active"`
}

// Validator defines the interface for coupon validation.
type Validator interface {
	// Validate checks a coupon code against an order value and returns the
	// discount amount to subtract. A valid coupon must be active, inside its
	// validity window, and the order value must meet its minimum.
	Validate(ctx context.Context, code string, orderValue float64) (float64, error)

	// Close releases resources held by the validator.
	Close() error
}

// Store holds loaded coupon definitions for fast lookup.
type Store interface {
	// Get looks up a coupon definition by code.
	Get(code string) (*Coupon, bool)

	// Size returns the number of coupons in the store.
	Size() int
}

// Loader defines the interface for loading coupon catalogue files.
type Loader interface {
	// Load reads a coupon file (JSON lines, optionally gzipped) into a Store.
	Load(ctx context.Context, filePath string) (Store, error)
}
