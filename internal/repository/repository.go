package repository

import (
	"context"

	"agri-mandi/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProductRepository defines the interface for catalogue data access. Reserve
// and Release are the inventory adjuster: the only writers of
// quantity_available apart from seller restocking.
type ProductRepository interface {
	// GetAll retrieves purchasable products with pagination support.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by its ID. Returns nil when the
	// product does not exist or is soft-deleted.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// Create inserts a new product listing.
	Create(ctx context.Context, product *model.Product) error

	// Reserve atomically decrements quantity_available within the given
	// transaction. Fails with ErrStockConflict when the remaining stock is
	// insufficient at commit time.
	Reserve(ctx context.Context, tx pgx.Tx, id uuid.UUID, quantity float64) error

	// Release atomically restores quantity_available within the given
	// transaction.
	Release(ctx context.Context, tx pgx.Tx, id uuid.UUID, quantity float64) error

	// Restock adds quantity to a listing outside of any order flow.
	Restock(ctx context.Context, id uuid.UUID, quantity float64) error
}

// CartRepository defines the interface for cart data access.
type CartRepository interface {
	// Upsert inserts or replaces the (buyer, product) cart entry.
	Upsert(ctx context.Context, item *model.CartItem) error

	// Delete removes the (buyer, product) entry. Removing an absent entry is
	// not an error.
	Delete(ctx context.Context, buyerID, productID uuid.UUID) error

	// ListActive returns the buyer's non-expired entries.
	ListActive(ctx context.Context, buyerID uuid.UUID) ([]model.CartItem, error)

	// PurgeExpired deletes the buyer's expired entries.
	PurgeExpired(ctx context.Context, buyerID uuid.UUID) error

	// Clear deletes all entries for the buyer.
	Clear(ctx context.Context, buyerID uuid.UUID) error
}

// AddressRepository defines the interface for delivery-address lookups. The
// address book itself is owned by an external profile service.
type AddressRepository interface {
	// GetByID retrieves an active address owned by the given buyer. Returns
	// nil when no such address exists.
	GetByID(ctx context.Context, id, buyerID uuid.UUID) (*model.DeliveryAddress, error)
}

// OrderRepository defines the interface for order and ledger data access.
// The ledger is append-only: no update or delete operation exists.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// Create inserts a new order within the provided transaction.
	Create(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// GetByID retrieves an order by its ID. Returns nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// GetByIDForUpdate retrieves an order with a row lock held for the
	// duration of the transaction.
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error)

	// UpdateStatus persists order_status, the stamped timestamps, and
	// cancellation metadata within the provided transaction.
	UpdateStatus(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// UpdatePayment persists payment fields within the provided transaction.
	UpdatePayment(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// ListByParty retrieves orders where the given user is buyer or seller.
	ListByParty(ctx context.Context, party uuid.UUID, limit, offset int) ([]model.Order, error)

	// AppendHistory appends a ledger row within the provided transaction.
	AppendHistory(ctx context.Context, tx pgx.Tx, entry *model.OrderStatusHistory) error

	// History retrieves the order's ledger rows ordered by timestamp ascending.
	History(ctx context.Context, orderID uuid.UUID) ([]model.OrderStatusHistory, error)
}
