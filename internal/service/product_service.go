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

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// productService implements ProductService.
type productService struct {
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewProductService creates a new product service.
func NewProductService(productRepo repository.ProductRepository, logger zerolog.Logger) ProductService {
	return &productService{
		productRepo: productRepo,
		logger:      logger.With().Str("service", "product").Logger(),
	}
}

// List retrieves purchasable products with pagination.
func (s *productService) List(ctx context.Context, limit, offset int) ([]model.Product, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	products, err := s.productRepo.GetAll(ctx, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list products")
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	return products, nil
}

// Get retrieves a single product by ID.
func (s *productService) Get(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to get product")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, model.ErrProductNotFound
	}

	return product, nil
}

// Create lists a new product for the given seller.
func (s *productService) Create(ctx context.Context, sellerID uuid.UUID, req *model.CreateProductRequest) (*model.Product, error) {
	if err := validateProductRequest(req); err != nil {
		return nil, err
	}

	now := time.Now()
	product := &model.Product{
		ID:                uuid.New(),
		SellerID:          sellerID,
		Name:              req.Name,
		Unit:              req.Unit,
		PricePerUnit:      req.PricePerUnit,
		QuantityAvailable: req.QuantityAvailable,
		MinOrderQuantity:  req.MinOrderQuantity,
		MaxOrderQuantity:  req.MaxOrderQuantity,
		ListingStatus:     model.ListingActive,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if product.QuantityAvailable <= 0 {
		product.ListingStatus = model.ListingSoldOut
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		s.logger.Error().Err(err).Str("product_name", req.Name).Msg("failed to create product")
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info().
		Str("product_id", product.ID.String()).
		Str("seller_id", sellerID.String()).
		Str("name", product.Name).
		Msg("product created")

	return product, nil
}

// Restock adds stock to a listing owned by the given seller.
func (s *productService) Restock(ctx context.Context, sellerID, productID uuid.UUID, req *model.RestockRequest) error {
	if req.Quantity <= 0 {
		return model.ErrInvalidQuantity
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", productID.String()).Msg("failed to load product for restock")
		return fmt.Errorf("failed to restock product: %w", err)
	}
	if product == nil {
		return model.ErrProductNotFound
	}
	if product.SellerID != sellerID {
		s.logger.Warn().
			Str("product_id", productID.String()).
			Str("seller_id", sellerID.String()).
			Msg("restock attempted by non-owner")
		return model.ErrPermissionDenied
	}

	if err := s.productRepo.Restock(ctx, productID, req.Quantity); err != nil {
		s.logger.Error().Err(err).Str("product_id", productID.String()).Msg("failed to restock product")
		return err
	}

	s.logger.Info().
		Str("product_id", productID.String()).
		Float64("quantity", req.Quantity).
		Msg("product restocked")

	return nil
}

// validateProductRequest validates a product creation request.
func validateProductRequest(req *model.CreateProductRequest) error {
	if req.Name == "" {
		return model.NewDomainError(model.ErrCodeMissingField, "Product name is required")
	}
	if !model.ValidUnit(req.Unit) {
		return model.NewDomainError(model.ErrCodeMissingField, fmt.Sprintf("Unknown unit of measure: %s", req.Unit))
	}
	if req.PricePerUnit <= 0 {
		return model.NewDomainError(model.ErrCodeInvalidQuantity, "Price per unit must be greater than zero")
	}
	if req.QuantityAvailable < 0 {
		return model.NewDomainError(model.ErrCodeInvalidQuantity, "Quantity available cannot be negative")
	}
	if req.MinOrderQuantity <= 0 {
		return model.NewDomainError(model.ErrCodeInvalidQuantity, "Minimum order quantity must be greater than zero")
	}
	if req.MaxOrderQuantity != nil && *req.MaxOrderQuantity < req.MinOrderQuantity {
		return model.NewDomainError(model.ErrCodeInvalidQuantity, "Maximum order quantity cannot be below the minimum")
	}
	return nil
}
