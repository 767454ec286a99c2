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

// addressRepository implements the AddressRepository interface using PostgreSQL.
type addressRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewAddressRepository creates a new PostgreSQL-backed address repository.
func NewAddressRepository(pool *pgxpool.Pool, logger zerolog.Logger) AddressRepository {
	return &addressRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "address").Logger(),
	}
}

// GetByID retrieves an active address owned by the given buyer.
func (r *addressRepository) GetByID(ctx context.Context, id, buyerID uuid.UUID) (*model.DeliveryAddress, error) {
	query := `
		SELECT id, buyer_id, contact_name, contact_phone, address_line, city, state, pincode, landmark, is_active, created_at
		FROM delivery_addresses
		WHERE id = $1 AND buyer_id = $2 AND is_active
	`

	var a model.DeliveryAddress
	err := r.pool.QueryRow(ctx, query, id, buyerID).Scan(
		&a.ID, &a.BuyerID, &a.ContactName, &a.ContactPhone, &a.AddressLine,
		&a.City, &a.State, &a.Pincode, &a.Landmark, &a.IsActive, &a.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().
				Str("address_id", id.String()).
				Str("buyer_id", buyerID.String()).
				Msg("address not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("address_id", id.String()).Msg("failed to query address")
		return nil, fmt.Errorf("failed to query address: %w", err)
	}

	return &a, nil
}
