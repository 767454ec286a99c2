package coupon

import (
	"context"
	"fmt"
	"math"
	"time"

	"agri-mandi/internal/model"

	"github.com/rs/zerolog"
)

// validator implements Validator over a catalogue loaded at initialisation.
type validator struct {
	store  Store
	now    func() time.Time
	logger zerolog.Logger
	// Store is read-only after initialisation, no locking needed.
}

// ValidatorConfig holds configuration for the coupon validator.
type ValidatorConfig struct {
	// FilePath is the coupon catalogue file to load.
	FilePath string
}

// DefaultValidatorConfig returns the default validator configuration.
func DefaultValidatorConfig() *ValidatorConfig {
	return &ValidatorConfig{
		FilePath: "data/coupons/coupons.jsonl",
	}
}

// NewValidator creates a new coupon validator. The catalogue is loaded once
// at initialisation time.
func NewValidator(ctx context.Context, config *ValidatorConfig, loader Loader, logger zerolog.Logger) (Validator, error) {
	if config == nil {
		config = DefaultValidatorConfig()
	}

	logger = logger.With().Str("component", "coupon-validator").Logger()

	store, err := loader.Load(ctx, config.FilePath)
	if err != nil {
		logger.Error().
			Err(err).
			Str("file", config.FilePath).
			Msg("failed to load coupon catalogue")
		return nil, fmt.Errorf("failed to load coupon catalogue %s: %w", config.FilePath, err)
	}

	logger.Info().
		Str("file", config.FilePath).
		Int("coupons", store.Size()).
		Msg("coupon validator initialised")

	return &validator{
		store:  store,
		now:    time.Now,
		logger: logger,
	}, nil
}

// NewValidatorWithStore creates a validator over an already-populated store.
func NewValidatorWithStore(store Store, logger zerolog.Logger) Validator {
	return &validator{
		store:  store,
		now:    time.Now,
		logger: logger.With().Str("component", "coupon-validator").Logger(),
	}
}

// Validate checks a coupon code against an order value and returns the
// discount to apply.
func (v *validator) Validate(ctx context.Context, code string, orderValue float64) (float64, error) {
	c, ok := v.store.Get(code)
	if !ok {
		v.logger.Debug().Str("coupon_code", code).Msg("coupon code not found")
		return 0, model.ErrInvalidCoupon
	}

	if !c.Active {
		v.logger.Debug().Str("coupon_code", code).Msg("coupon is inactive")
		return 0, model.ErrInvalidCoupon
	}

	now := v.now()
	if now.Before(c.ValidFrom) || now.After(c.ValidUntil) {
		v.logger.Debug().
			Str("coupon_code", code).
			Time("valid_from", c.ValidFrom).
			Time("valid_until", c.ValidUntil).
			Msg("coupon is outside its validity window")
		return 0, model.ErrInvalidCoupon
	}

	if c.MinOrderValue != nil && orderValue < *c.MinOrderValue {
		v.logger.Debug().
			Str("coupon_code", code).
			Float64("order_value", orderValue).
			Float64("min_order_value", *c.MinOrderValue).
			Msg("order value below coupon minimum")
		return 0, model.ErrInvalidCoupon
	}

	discount := c.Discount(orderValue)

	v.logger.Debug().
		Str("coupon_code", code).
		Float64("discount", discount).
		Msg("coupon validated successfully")

	return discount, nil
}

// Close releases resources held by the validator.
func (v *validator) Close() error {
	v.store = nil
	v.logger.Info().Msg("coupon validator closed")
	return nil
}

// Discount computes the discount amount for a given order value. Percentage
// discounts are capped by MaxDiscountAmount when set, and no discount ever
// exceeds the order value itself.
func (c *Coupon) Discount(orderValue float64) float64 {
	var discount float64
	switch c.DiscountType {
	case DiscountPercentage:
		discount = orderValue * c.DiscountValue / 100
		if c.MaxDiscountAmount != nil && discount > *c.MaxDiscountAmount {
			discount = *c.MaxDiscountAmount
		}
	case DiscountFixed:
		discount = c.DiscountValue
	}

	if discount > orderValue {
		discount = orderValue
	}

	return math.Round(discount*100) / 100
}
