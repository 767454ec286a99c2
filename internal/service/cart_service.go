package service

import (
	"context"
	"fmt"
	"time"

	"agri-mandi/internal/model"
	"agri-mandi/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// cartExpiry is how long a cart entry stays valid after its last update.
const cartExpiry = 7 * 24 * time.Hour

// cartService implements CartService.
type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository, logger zerolog.Logger) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		logger:      logger.With().Str("service", "cart").Logger(),
	}
}

// AddItem adds or replaces a product entry in the buyer's cart. The quantity
// is validated against the listing's bounds and current stock, and the unit
// price is snapshotted so later catalogue edits do not change the cart.
func (s *cartService) AddItem(ctx context.Context, buyerID uuid.UUID, req *model.AddCartItemRequest) (*model.CartItem, error) {
	if req.Quantity <= 0 {
		return nil, model.ErrInvalidQuantity
	}

	product, err := s.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", req.ProductID.String()).Msg("failed to load product for cart")
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}
	if product == nil || !product.Purchasable() {
		return nil, model.ErrProductNotFound
	}

	if err := validateQuantityBounds(product, req.Quantity); err != nil {
		return nil, err
	}
	if req.Quantity > product.QuantityAvailable {
		return nil, model.ErrOutOfStock
	}

	now := time.Now()
	item := &model.CartItem{
		ID:        uuid.New(),
		BuyerID:   buyerID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		UnitPrice: product.PricePerUnit,
		ExpiresAt: now.Add(cartExpiry),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.cartRepo.Upsert(ctx, item); err != nil {
		s.logger.Error().
			Err(err).
			Str("buyer_id", buyerID.String()).
			Str("product_id", req.ProductID.String()).
			Msg("failed to upsert cart item")
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}

	s.logger.Debug().
		Str("buyer_id", buyerID.String()).
		Str("product_id", req.ProductID.String()).
		Float64("quantity", req.Quantity).
		Msg("cart item added")

	return item, nil
}

// RemoveItem removes a product entry from the buyer's cart.
func (s *cartService) RemoveItem(ctx context.Context, buyerID, productID uuid.UUID) error {
	if err := s.cartRepo.Delete(ctx, buyerID, productID); err != nil {
		s.logger.Error().
			Err(err).
			Str("buyer_id", buyerID.String()).
			Str("product_id", productID.String()).
			Msg("failed to remove cart item")
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	return nil
}

// Summary returns the buyer's active cart contents. Expired rows are purged
// lazily on read.
func (s *cartService) Summary(ctx context.Context, buyerID uuid.UUID) (*model.CartSummary, error) {
	if err := s.cartRepo.PurgeExpired(ctx, buyerID); err != nil {
		// A failed purge only delays cleanup; expired rows stay invisible.
		s.logger.Warn().Err(err).Str("buyer_id", buyerID.String()).Msg("failed to purge expired cart items")
	}

	items, err := s.cartRepo.ListActive(ctx, buyerID)
	if err != nil {
		s.logger.Error().Err(err).Str("buyer_id", buyerID.String()).Msg("failed to list cart items")
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	summary := &model.CartSummary{
		Items:     items,
		ItemCount: len(items),
	}
	for i := range items {
		summary.Subtotal += items[i].Subtotal()
	}
	summary.Subtotal = round2(summary.Subtotal)

	return summary, nil
}

// Clear empties the buyer's cart.
func (s *cartService) Clear(ctx context.Context, buyerID uuid.UUID) error {
	if err := s.cartRepo.Clear(ctx, buyerID); err != nil {
		s.logger.Error().Err(err).Str("buyer_id", buyerID.String()).Msg("failed to clear cart")
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// validateQuantityBounds checks a requested quantity against the listing's
// minimum and maximum order quantities.
func validateQuantityBounds(product *model.Product, quantity float64) error {
	if quantity < product.MinOrderQuantity {
		return model.ErrBelowMinimum
	}
	if product.MaxOrderQuantity != nil && quantity > *product.MaxOrderQuantity {
		return model.ErrAboveMaximum
	}
	return nil
}
