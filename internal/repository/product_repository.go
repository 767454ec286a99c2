package repository

import (
	"context"
	"fmt"

	"agri-mandi/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const productColumns = `id, seller_id, name, unit, price_per_unit, quantity_available,
	min_order_quantity, max_order_quantity, listing_status, is_deleted, created_at, updated_at`

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

func scanProduct(row pgx.Row, p *model.Product) error {
	return row.Scan(
		&p.ID,
		&p.SellerID,
		&p.Name,
		&p.Unit,
		&p.PricePerUnit,
		&p.QuantityAvailable,
		&p.MinOrderQuantity,
		&p.MaxOrderQuantity,
		&p.ListingStatus,
		&p.IsDeleted,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
}

// GetAll retrieves purchasable products with pagination support.
func (r *productRepository) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE NOT is_deleted AND listing_status IN ('active', 'soldout')
		ORDER BY name
		LIMIT $1 OFFSET $2
	`, productColumns)

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		var p model.Product
		if err := scanProduct(rows, &p); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// GetByID retrieves a single product by its ID.
func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE id = $1 AND NOT is_deleted
	`, productColumns)

	var p model.Product
	err := scanProduct(r.pool.QueryRow(ctx, query, id), &p)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("product_id", id.String()).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return &p, nil
}

// Create inserts a new product listing.
func (r *productRepository) Create(ctx context.Context, p *model.Product) error {
	query := `
		INSERT INTO products (id, seller_id, name, unit, price_per_unit, quantity_available,
			min_order_quantity, max_order_quantity, listing_status, is_deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.pool.Exec(ctx, query,
		p.ID, p.SellerID, p.Name, p.Unit, p.PricePerUnit, p.QuantityAvailable,
		p.MinOrderQuantity, p.MaxOrderQuantity, p.ListingStatus, p.IsDeleted,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("product_id", p.ID.String()).
			Msg("failed to create product")
		return fmt.Errorf("failed to create product: %w", err)
	}

	r.logger.Debug().
		Str("product_id", p.ID.String()).
		Msg("product created successfully")

	return nil
}

// Reserve atomically decrements quantity_available. The availability check and
// the decrement are a single conditional UPDATE so that concurrent orders for
// the same product cannot both succeed past the remaining stock.
func (r *productRepository) Reserve(ctx context.Context, tx pgx.Tx, id uuid.UUID, quantity float64) error {
	query := `
		UPDATE products
		SET quantity_available = quantity_available - $2,
			listing_status = CASE WHEN quantity_available - $2 <= 0 THEN 'soldout' ELSE listing_status END,
			updated_at = NOW()
		WHERE id = $1 AND NOT is_deleted AND quantity_available >= $2
	`

	ct, err := tx.Exec(ctx, query, id, quantity)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("product_id", id.String()).
			Float64("quantity", quantity).
			Msg("failed to reserve stock")
		return fmt.Errorf("failed to reserve stock: %w", err)
	}

	if ct.RowsAffected() == 0 {
		r.logger.Warn().
			Str("product_id", id.String()).
			Float64("quantity", quantity).
			Msg("stock reservation rejected")
		return model.ErrStockConflict
	}

	return nil
}

// Release atomically restores quantity_available after a cancellation.
func (r *productRepository) Release(ctx context.Context, tx pgx.Tx, id uuid.UUID, quantity float64) error {
	query := `
		UPDATE products
		SET quantity_available = quantity_available + $2,
			listing_status = CASE WHEN listing_status = 'soldout' THEN 'active' ELSE listing_status END,
			updated_at = NOW()
		WHERE id = $1
	`

	if _, err := tx.Exec(ctx, query, id, quantity); err != nil {
		r.logger.Error().
			Err(err).
			Str("product_id", id.String()).
			Float64("quantity", quantity).
			Msg("failed to release stock")
		return fmt.Errorf("failed to release stock: %w", err)
	}

	return nil
}

// Restock adds quantity to a listing on behalf of its seller.
func (r *productRepository) Restock(ctx context.Context, id uuid.UUID, quantity float64) error {
	query := `
		UPDATE products
		SET quantity_available = quantity_available + $2,
			listing_status = CASE WHEN listing_status = 'soldout' THEN 'active' ELSE listing_status END,
			updated_at = NOW()
		WHERE id = $1 AND NOT is_deleted
	`

	ct, err := r.pool.Exec(ctx, query, id, quantity)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("product_id", id.String()).
			Float64("quantity", quantity).
			Msg("failed to restock product")
		return fmt.Errorf("failed to restock product: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}

	return nil
}
