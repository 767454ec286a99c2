package repository

import (
	"context"
	"fmt"

	"agri-mandi/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// cartRepository implements the CartRepository interface using PostgreSQL.
type cartRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(pool *pgxpool.Pool, logger zerolog.Logger) CartRepository {
	return &cartRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "cart").Logger(),
	}
}

// Upsert inserts or replaces the (buyer, product) cart entry. Adding a product
// already in the cart replaces quantity, price snapshot, and expiry.
func (r *cartRepository) Upsert(ctx context.Context, item *model.CartItem) error {
	query := `
		INSERT INTO cart_items (id, buyer_id, product_id, quantity, unit_price, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (buyer_id, product_id) DO UPDATE
		SET quantity = EXCLUDED.quantity,
			unit_price = EXCLUDED.unit_price,
			expires_at = EXCLUDED.expires_at,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.pool.Exec(ctx, query,
		item.ID, item.BuyerID, item.ProductID, item.Quantity, item.UnitPrice,
		item.ExpiresAt, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("buyer_id", item.BuyerID.String()).
			Str("product_id", item.ProductID.String()).
			Msg("failed to upsert cart item")
		return fmt.Errorf("failed to upsert cart item: %w", err)
	}

	return nil
}

// Delete removes the (buyer, product) entry; absent entries are not an error.
func (r *cartRepository) Delete(ctx context.Context, buyerID, productID uuid.UUID) error {
	query := `DELETE FROM cart_items WHERE buyer_id = $1 AND product_id = $2`

	if _, err := r.pool.Exec(ctx, query, buyerID, productID); err != nil {
		r.logger.Error().
			Err(err).
			Str("buyer_id", buyerID.String()).
			Str("product_id", productID.String()).
			Msg("failed to delete cart item")
		return fmt.Errorf("failed to delete cart item: %w", err)
	}

	return nil
}

// ListActive returns the buyer's non-expired entries.
func (r *cartRepository) ListActive(ctx context.Context, buyerID uuid.UUID) ([]model.CartItem, error) {
	query := `
		SELECT id, buyer_id, product_id, quantity, unit_price, expires_at, created_at, updated_at
		FROM cart_items
		WHERE buyer_id = $1 AND expires_at > NOW()
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query, buyerID)
	if err != nil {
		r.logger.Error().Err(err).Str("buyer_id", buyerID.String()).Msg("failed to query cart items")
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}
	defer rows.Close()

	var items []model.CartItem
	for rows.Next() {
		var item model.CartItem
		err := rows.Scan(
			&item.ID, &item.BuyerID, &item.ProductID, &item.Quantity,
			&item.UnitPrice, &item.ExpiresAt, &item.CreatedAt, &item.UpdatedAt,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan cart item row")
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating cart item rows")
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	return items, nil
}

// PurgeExpired deletes the buyer's expired entries.
func (r *cartRepository) PurgeExpired(ctx context.Context, buyerID uuid.UUID) error {
	query := `DELETE FROM cart_items WHERE buyer_id = $1 AND expires_at <= NOW()`

	ct, err := r.pool.Exec(ctx, query, buyerID)
	if err != nil {
		r.logger.Error().Err(err).Str("buyer_id", buyerID.String()).Msg("failed to purge expired cart items")
		return fmt.Errorf("failed to purge expired cart items: %w", err)
	}

	if n := ct.RowsAffected(); n > 0 {
		r.logger.Debug().
			Str("buyer_id", buyerID.String()).
			Int64("purged", n).
			Msg("expired cart items purged")
	}

	return nil
}

// Clear deletes all entries for the buyer.
func (r *cartRepository) Clear(ctx context.Context, buyerID uuid.UUID) error {
	query := `DELETE FROM cart_items WHERE buyer_id = $1`

	if _, err := r.pool.Exec(ctx, query, buyerID); err != nil {
		r.logger.Error().Err(err).Str("buyer_id", buyerID.String()).Msg("failed to clear cart")
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	return nil
}
