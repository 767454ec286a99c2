package service

import (
	"context"

	"agri-mandi/internal/model"

	"github.com/google/uuid"
)

// ProductService defines catalogue business logic.
type ProductService interface {
	// List retrieves purchasable products with pagination.
	List(ctx context.Context, limit, offset int) ([]model.Product, error)

	// Get retrieves a single product by ID.
	Get(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// Create lists a new product for the given seller.
	Create(ctx context.Context, sellerID uuid.UUID, req *model.CreateProductRequest) (*model.Product, error)

	// Restock adds stock to a listing owned by the given seller.
	Restock(ctx context.Context, sellerID, productID uuid.UUID, req *model.RestockRequest) error
}

// CartService defines pre-checkout cart business logic.
type CartService interface {
	// AddItem adds or replaces a product entry in the buyer's cart.
	AddItem(ctx context.Context, buyerID uuid.UUID, req *model.AddCartItemRequest) (*model.CartItem, error)

	// RemoveItem removes a product entry from the buyer's cart. Removing an
	// absent entry succeeds.
	RemoveItem(ctx context.Context, buyerID, productID uuid.UUID) error

	// Summary returns the buyer's active cart contents.
	Summary(ctx context.Context, buyerID uuid.UUID) (*model.CartSummary, error)

	// Clear empties the buyer's cart.
	Clear(ctx context.Context, buyerID uuid.UUID) error
}

// OrderService defines the order workflow.
type OrderService interface {
	// Create places an order for the given buyer, reserving stock atomically.
	Create(ctx context.Context, buyerID uuid.UUID, req *model.CreateOrderRequest) (*model.Order, error)

	// Get retrieves an order visible to the given actor.
	Get(ctx context.Context, actor, orderID uuid.UUID) (*model.Order, error)

	// List retrieves orders the given actor is a party to.
	List(ctx context.Context, actor uuid.UUID, limit, offset int) ([]model.Order, error)

	// Transition moves an order to a new status on behalf of the actor.
	Transition(ctx context.Context, actor, orderID uuid.UUID, req *model.TransitionRequest) (*model.Order, error)

	// Cancel cancels an order, releasing its reserved stock.
	Cancel(ctx context.Context, actor, orderID uuid.UUID, req *model.CancelRequest) (*model.Order, error)

	// RecordPayment records a payment-gateway outcome against the order.
	RecordPayment(ctx context.Context, actor, orderID uuid.UUID, req *model.PaymentResultRequest) (*model.Order, error)

	// History retrieves the order's status ledger.
	History(ctx context.Context, actor, orderID uuid.UUID) ([]model.OrderStatusHistory, error)

	// Status returns the order's current status, served from cache when warm.
	Status(ctx context.Context, actor, orderID uuid.UUID) (*model.OrderStatusResponse, error)
}
