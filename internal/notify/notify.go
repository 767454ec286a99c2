package notify

import (
	"context"
	"time"

	"agri-mandi/internal/model"

	"github.com/google/uuid"
)

// Event types published on order activity.
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

// Envelope wraps every published event.
type Envelope struct {
	EventID     uuid.UUID `json:"eventId"`
	EventType   string    `json:"eventType"`
	OccurredAt  time.Time `json:"occurredAt"`
	OrderID     uuid.UUID `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	Payload     any       `json:"payload"`
}

// OrderCreatedPayload is the payload of an order.created event.
type OrderCreatedPayload struct {
	BuyerID     uuid.UUID `json:"buyerId"`
	SellerID    uuid.UUID `json:"sellerId"`
	ProductID   uuid.UUID `json:"productId"`
	Quantity    float64   `json:"quantity"`
	TotalAmount float64   `json:"totalAmount"`
}

// StatusChangedPayload is the payload of an order.status_changed event.
type StatusChangedPayload struct {
	FromStatus model.OrderStatus `json:"fromStatus"`
	ToStatus   model.OrderStatus `json:"toStatus"`
	Actor      *uuid.UUID        `json:"actor,omitempty"`
	Reason     string            `json:"reason,omitempty"`
}

// Dispatcher publishes order events to interested collaborators. Dispatch is
// fire-and-forget: failures are logged by implementations and never surface
// to the caller, so a notification outage cannot roll back an order.
type Dispatcher interface {
	// Dispatch publishes one event.
	Dispatch(ctx context.Context, event Envelope)

	// Close flushes buffered events and releases resources.
	Close() error
}

// NewEnvelope builds an envelope for an order event.
func NewEnvelope(eventType string, order *model.Order, payload any) Envelope {
	return Envelope{
		EventID:     uuid.New(),
		EventType:   eventType,
		OccurredAt:  time.Now(),
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Payload:     payload,
	}
}

// nopDispatcher discards all events.
type nopDispatcher struct{}

// NewNopDispatcher creates a dispatcher that discards all events. Used when
// event publishing is disabled.
func NewNopDispatcher() Dispatcher {
	return nopDispatcher{}
}

func (nopDispatcher) Dispatch(ctx context.Context, event Envelope) {}

func (nopDispatcher) Close() error { return nil }
