package model

// OrderStatus is the lifecycle stage of an order.
type OrderStatus string

const (
	StatusPending        OrderStatus = "pending"
	StatusConfirmed      OrderStatus = "confirmed"
	StatusProcessing     OrderStatus = "processing"
	StatusPacked         OrderStatus = "packed"
	StatusShipped        OrderStatus = "shipped"
	StatusInTransit      OrderStatus = "in_transit"
	StatusOutForDelivery OrderStatus = "out_for_delivery"
	StatusDelivered      OrderStatus = "delivered"
	StatusCancelled      OrderStatus = "cancelled"
	StatusReturned       OrderStatus = "returned"
	StatusRefunded       OrderStatus = "refunded"
)

// PaymentStatus is the settlement stage of an order's payment.
type PaymentStatus string

const (
	PaymentUnpaid        PaymentStatus = "unpaid"
	PaymentPending       PaymentStatus = "pending"
	PaymentProcessing    PaymentStatus = "processing"
	PaymentPaid          PaymentStatus = "paid"
	PaymentPartiallyPaid PaymentStatus = "partially_paid"
	PaymentFailed        PaymentStatus = "failed"
	PaymentRefunded      PaymentStatus = "refunded"
)

// validNext is the order state machine. A status absent from the map is
// terminal.
var validNext = map[OrderStatus][]OrderStatus{
	StatusPending:        {StatusConfirmed, StatusCancelled},
	StatusConfirmed:      {StatusProcessing, StatusCancelled},
	StatusProcessing:     {StatusPacked},
	StatusPacked:         {StatusShipped},
	StatusShipped:        {StatusInTransit},
	StatusInTransit:      {StatusOutForDelivery},
	StatusOutForDelivery: {StatusDelivered},
	StatusDelivered:      {StatusReturned},
	StatusCancelled:      {StatusRefunded},
	StatusReturned:       {StatusRefunded},
}

// CanTransition reports whether the order state machine allows moving from
// one status to another.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range validNext[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible from the
// given status.
func (s OrderStatus) IsTerminal() bool {
	return len(validNext[s]) == 0
}

// ValidOrderStatus reports whether s is a known order status.
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusPacked,
		StatusShipped, StatusInTransit, StatusOutForDelivery, StatusDelivered,
		StatusCancelled, StatusReturned, StatusRefunded:
		return true
	}
	return false
}

// ValidPaymentStatus reports whether s is a known payment status.
func ValidPaymentStatus(s PaymentStatus) bool {
	switch s {
	case PaymentUnpaid, PaymentPending, PaymentProcessing, PaymentPaid,
		PaymentPartiallyPaid, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}
