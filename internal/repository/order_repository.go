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

const orderColumns = `id, order_number, buyer_id, seller_id, product_id,
	quantity_ordered, unit, unit_price,
	subtotal, discount_amount, tax_rate, tax_amount, delivery_charges, packaging_charges, total_amount, coupon_code,
	order_status, payment_status, payment_method, payment_ref, payment_date, gateway_response,
	delivery_name, delivery_phone, delivery_address, delivery_city, delivery_state, delivery_pincode,
	cancellation_reason, cancelled_by, cancelled_at,
	placed_at, confirmed_at, shipped_at, delivered_at, created_at, updated_at`

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

func scanOrder(row pgx.Row, o *model.Order) error {
	return row.Scan(
		&o.ID, &o.OrderNumber, &o.BuyerID, &o.SellerID, &o.ProductID,
		&o.QuantityOrdered, &o.Unit, &o.UnitPrice,
		&o.Subtotal, &o.DiscountAmount, &o.TaxRate, &o.TaxAmount,
		&o.DeliveryCharges, &o.PackagingCharges, &o.TotalAmount, &o.CouponCode,
		&o.OrderStatus, &o.PaymentStatus, &o.PaymentMethod, &o.PaymentRef, &o.PaymentDate, &o.GatewayResponse,
		&o.DeliveryName, &o.DeliveryPhone, &o.DeliveryAddress, &o.DeliveryCity, &o.DeliveryState, &o.DeliveryPincode,
		&o.CancellationReason, &o.CancelledBy, &o.CancelledAt,
		&o.PlacedAt, &o.ConfirmedAt, &o.ShippedAt, &o.DeliveredAt, &o.CreatedAt, &o.UpdatedAt,
	)
}

// Create inserts a new order within the provided transaction.
func (r *orderRepository) Create(ctx context.Context, tx pgx.Tx, o *model.Order) error {
	query := fmt.Sprintf(`
		INSERT INTO orders (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18,
			$19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31, $32, $33, $34, $35, $36, $37)
	`, orderColumns)

	_, err := tx.Exec(ctx, query,
		o.ID, o.OrderNumber, o.BuyerID, o.SellerID, o.ProductID,
		o.QuantityOrdered, o.Unit, o.UnitPrice,
		o.Subtotal, o.DiscountAmount, o.TaxRate, o.TaxAmount,
		o.DeliveryCharges, o.PackagingCharges, o.TotalAmount, o.CouponCode,
		o.OrderStatus, o.PaymentStatus, o.PaymentMethod, o.PaymentRef, o.PaymentDate, o.GatewayResponse,
		o.DeliveryName, o.DeliveryPhone, o.DeliveryAddress, o.DeliveryCity, o.DeliveryState, o.DeliveryPincode,
		o.CancellationReason, o.CancelledBy, o.CancelledAt,
		o.PlacedAt, o.ConfirmedAt, o.ShippedAt, o.DeliveredAt, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", o.ID.String()).
			Str("order_number", o.OrderNumber).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", o.ID.String()).
		Str("order_number", o.OrderNumber).
		Msg("order created successfully")

	return nil
}

// GetByID retrieves an order by its ID.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE id = $1`, orderColumns)

	var o model.Order
	if err := scanOrder(r.pool.QueryRow(ctx, query, id), &o); err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	return &o, nil
}

// GetByIDForUpdate retrieves an order holding a row lock so that concurrent
// transitions on the same order serialise.
func (r *orderRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE id = $1 FOR UPDATE`, orderColumns)

	var o model.Order
	if err := scanOrder(tx.QueryRow(ctx, query, id), &o); err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order for update")
		return nil, fmt.Errorf("failed to query order for update: %w", err)
	}

	return &o, nil
}

// UpdateStatus persists order_status, timestamps, and cancellation metadata.
// Callers must only reach this through the workflow's transition path.
func (r *orderRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, o *model.Order) error {
	query := `
		UPDATE orders
		SET order_status = $2,
			payment_status = $3,
			cancellation_reason = $4,
			cancelled_by = $5,
			cancelled_at = $6,
			confirmed_at = $7,
			shipped_at = $8,
			delivered_at = $9,
			updated_at = $10
		WHERE id = $1
	`

	_, err := tx.Exec(ctx, query,
		o.ID, o.OrderStatus, o.PaymentStatus,
		o.CancellationReason, o.CancelledBy, o.CancelledAt,
		o.ConfirmedAt, o.ShippedAt, o.DeliveredAt, o.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", o.ID.String()).
			Str("to_status", string(o.OrderStatus)).
			Msg("failed to update order status")
		return fmt.Errorf("failed to update order status: %w", err)
	}

	return nil
}

// UpdatePayment persists payment fields within the provided transaction.
// Callers hold the order's row lock so concurrent refund transitions cannot
// be overwritten.
func (r *orderRepository) UpdatePayment(ctx context.Context, tx pgx.Tx, o *model.Order) error {
	query := `
		UPDATE orders
		SET payment_status = $2,
			payment_ref = $3,
			payment_date = $4,
			gateway_response = $5,
			updated_at = $6
		WHERE id = $1
	`

	_, err := tx.Exec(ctx, query,
		o.ID, o.PaymentStatus, o.PaymentRef, o.PaymentDate, o.GatewayResponse, o.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", o.ID.String()).
			Str("payment_status", string(o.PaymentStatus)).
			Msg("failed to update payment")
		return fmt.Errorf("failed to update payment: %w", err)
	}

	return nil
}

// ListByParty retrieves orders where the given user is buyer or seller.
func (r *orderRepository) ListByParty(ctx context.Context, party uuid.UUID, limit, offset int) ([]model.Order, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM orders
		WHERE buyer_id = $1 OR seller_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, orderColumns)

	rows, err := r.pool.Query(ctx, query, party, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).Str("party", party.String()).Msg("failed to query orders")
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		var o model.Order
		if err := scanOrder(rows, &o); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

// AppendHistory appends a ledger row within the provided transaction.
func (r *orderRepository) AppendHistory(ctx context.Context, tx pgx.Tx, e *model.OrderStatusHistory) error {
	query := `
		INSERT INTO order_status_history (id, order_id, from_status, to_status, changed_by, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := tx.Exec(ctx, query,
		e.ID, e.OrderID, e.FromStatus, e.ToStatus, e.ChangedBy, e.Reason, e.CreatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", e.OrderID.String()).
			Str("to_status", string(e.ToStatus)).
			Msg("failed to append status history")
		return fmt.Errorf("failed to append status history: %w", err)
	}

	return nil
}

// History retrieves the order's ledger rows ordered by timestamp ascending.
func (r *orderRepository) History(ctx context.Context, orderID uuid.UUID) ([]model.OrderStatusHistory, error) {
	query := `
		SELECT id, order_id, from_status, to_status, changed_by, reason, created_at
		FROM order_status_history
		WHERE order_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to query status history")
		return nil, fmt.Errorf("failed to query status history: %w", err)
	}
	defer rows.Close()

	var entries []model.OrderStatusHistory
	for rows.Next() {
		var e model.OrderStatusHistory
		err := rows.Scan(&e.ID, &e.OrderID, &e.FromStatus, &e.ToStatus, &e.ChangedBy, &e.Reason, &e.CreatedAt)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan status history row")
			return nil, fmt.Errorf("failed to scan status history: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating status history rows")
		return nil, fmt.Errorf("error iterating status history: %w", err)
	}

	return entries, nil
}
