package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Standard error codes for API responses
const (
	ErrCodeOutOfStock        = "OUT_OF_STOCK"
	ErrCodeBelowMinimum      = "BELOW_MINIMUM_QUANTITY"
	ErrCodeAboveMaximum      = "ABOVE_MAXIMUM_QUANTITY"
	ErrCodeInvalidQuantity   = "INVALID_QUANTITY"
	ErrCodeAddressNotFound   = "ADDRESS_NOT_FOUND"
	ErrCodeInvalidCoupon     = "INVALID_COUPON"
	ErrCodeStockConflict     = "CONCURRENT_STOCK_CONFLICT"
	ErrCodeInvalidTransition = "INVALID_TRANSITION"
	ErrCodeOrderNotFound     = "ORDER_NOT_FOUND"
	ErrCodeProductNotFound   = "PRODUCT_NOT_FOUND"
	ErrCodePermissionDenied  = "PERMISSION_DENIED"
	ErrCodeInvalidJSON       = "INVALID_JSON"
	ErrCodeMissingField      = "MISSING_FIELD"
	ErrCodeUnauthorised      = "UNAUTHORIZED"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)

// DomainError is a named business-rule failure surfaced to the caller verbatim.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrOutOfStock        = NewDomainError(ErrCodeOutOfStock, "Requested quantity exceeds available stock")
	ErrBelowMinimum      = NewDomainError(ErrCodeBelowMinimum, "Quantity is below the minimum order quantity")
	ErrAboveMaximum      = NewDomainError(ErrCodeAboveMaximum, "Quantity is above the maximum order quantity")
	ErrInvalidQuantity   = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrAddressNotFound   = NewDomainError(ErrCodeAddressNotFound, "Delivery address not found for buyer")
	ErrInvalidCoupon     = NewDomainError(ErrCodeInvalidCoupon, "Coupon code is inactive, expired, or below its minimum order value")
	ErrStockConflict     = NewDomainError(ErrCodeStockConflict, "Stock changed concurrently, please retry")
	ErrInvalidTransition = NewDomainError(ErrCodeInvalidTransition, "Order status transition is not allowed")
	ErrOrderNotFound     = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrProductNotFound   = NewDomainError(ErrCodeProductNotFound, "Product not found")
	ErrPermissionDenied  = NewDomainError(ErrCodePermissionDenied, "Actor does not own this resource")
)
