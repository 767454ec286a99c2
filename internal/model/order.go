package model

import (
	"time"

	"github.com/google/uuid"
)

// Order represents a single purchase transaction. Pricing and delivery
// address fields are snapshots taken at creation; order_status is only ever
// written through the order workflow, which appends a ledger row per change.
type Order struct {
	ID          uuid.UUID `json:"id" db:"id"`
	OrderNumber string    `json:"orderNumber" db:"order_number"`

	BuyerID   uuid.UUID `json:"buyerId" db:"buyer_id"`
	SellerID  uuid.UUID `json:"sellerId" db:"seller_id"`
	ProductID uuid.UUID `json:"productId" db:"product_id"`

	QuantityOrdered float64 `json:"quantityOrdered" db:"quantity_ordered"`
	Unit            Unit    `json:"unit" db:"unit"`
	UnitPrice       float64 `json:"unitPrice" db:"unit_price"`

	Subtotal         float64 `json:"subtotal" db:"subtotal"`
	DiscountAmount   float64 `json:"discountAmount" db:"discount_amount"`
	TaxRate          float64 `json:"taxRate" db:"tax_rate"`
	TaxAmount        float64 `json:"taxAmount" db:"tax_amount"`
	DeliveryCharges  float64 `json:"deliveryCharges" db:"delivery_charges"`
	PackagingCharges float64 `json:"packagingCharges" db:"packaging_charges"`
	TotalAmount      float64 `json:"totalAmount" db:"total_amount"`
	CouponCode       string  `json:"couponCode,omitempty" db:"coupon_code"`

	OrderStatus   OrderStatus   `json:"orderStatus" db:"order_status"`
	PaymentStatus PaymentStatus `json:"paymentStatus" db:"payment_status"`
	PaymentMethod string        `json:"paymentMethod" db:"payment_method"`
	PaymentRef    string        `json:"paymentRef,omitempty" db:"payment_ref"`
	PaymentDate   *time.Time    `json:"paymentDate,omitempty" db:"payment_date"`
	// GatewayResponse is collaborator-defined payload, kept opaque.
	GatewayResponse map[string]any `json:"gatewayResponse,omitempty" db:"gateway_response"`

	DeliveryName    string `json:"deliveryName" db:"delivery_name"`
	DeliveryPhone   string `json:"deliveryPhone" db:"delivery_phone"`
	DeliveryAddress string `json:"deliveryAddress" db:"delivery_address"`
	DeliveryCity    string `json:"deliveryCity" db:"delivery_city"`
	DeliveryState   string `json:"deliveryState" db:"delivery_state"`
	DeliveryPincode string `json:"deliveryPincode" db:"delivery_pincode"`

	CancellationReason string     `json:"cancellationReason,omitempty" db:"cancellation_reason"`
	CancelledBy        *uuid.UUID `json:"cancelledBy,omitempty" db:"cancelled_by"`
	CancelledAt        *time.Time `json:"cancelledAt,omitempty" db:"cancelled_at"`

	PlacedAt    time.Time  `json:"placedAt" db:"placed_at"`
	ConfirmedAt *time.Time `json:"confirmedAt,omitempty" db:"confirmed_at"`
	ShippedAt   *time.Time `json:"shippedAt,omitempty" db:"shipped_at"`
	DeliveredAt *time.Time `json:"deliveredAt,omitempty" db:"delivered_at"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// InvolvesActor reports whether the given user is a party to the order.
func (o *Order) InvolvesActor(actor uuid.UUID) bool {
	return o.BuyerID == actor || o.SellerID == actor
}

// OrderStatusHistory is one row of the append-only audit ledger. Rows are
// never updated or deleted.
type OrderStatusHistory struct {
	ID         uuid.UUID   `json:"id" db:"id"`
	OrderID    uuid.UUID   `json:"orderId" db:"order_id"`
	FromStatus OrderStatus `json:"fromStatus,omitempty" db:"from_status"`
	ToStatus   OrderStatus `json:"toStatus" db:"to_status"`
	ChangedBy  *uuid.UUID  `json:"changedBy,omitempty" db:"changed_by"`
	Reason     string      `json:"reason,omitempty" db:"reason"`
	CreatedAt  time.Time   `json:"createdAt" db:"created_at"`
}

// CreateOrderRequest is the payload for placing an order.
type CreateOrderRequest struct {
	ProductID         uuid.UUID `json:"productId"`
	Quantity          float64   `json:"quantity"`
	DeliveryAddressID uuid.UUID `json:"deliveryAddressId"`
	PaymentMethod     string    `json:"paymentMethod"`
	CouponCode        string    `json:"couponCode,omitempty"`
}

// TransitionRequest is the payload for moving an order to a new status.
type TransitionRequest struct {
	ToStatus OrderStatus `json:"toStatus"`
	Reason   string      `json:"reason,omitempty"`
}

// CancelRequest is the payload for cancelling an order.
type CancelRequest struct {
	Reason string `json:"reason,omitempty"`
}

// PaymentResultRequest records a payment-gateway outcome against an order.
type PaymentResultRequest struct {
	Status          PaymentStatus  `json:"status"`
	PaymentRef      string         `json:"paymentRef,omitempty"`
	GatewayResponse map[string]any `json:"gatewayResponse,omitempty"`
}

// OrderStatusResponse is the payload of the fast status read.
type OrderStatusResponse struct {
	OrderID uuid.UUID   `json:"orderId"`
	Status  OrderStatus `json:"status"`
}
