package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound              = errors.New("not found")
	ErrForbidden             = errors.New("forbidden")
	ErrEmptyCart             = errors.New("cart is empty")
	ErrAlreadyPaid           = errors.New("order has already been paid")
	ErrOrderCancelled        = errors.New("order is cancelled")
	ErrInvalidTransition     = errors.New("invalid status transition")
	ErrShippingStateRequired = errors.New("shipping state is required")
	ErrDuplicate             = errors.New("already exists")
	ErrSignatureInvalid      = errors.New("invalid signature")
	ErrCouponExhausted       = errors.New("coupon usage limit reached")
	ErrOutOfStock            = errors.New("not enough stock")
	ErrUnknownProvider       = errors.New("unknown payment provider")
	ErrConcurrentUpdate      = errors.New("record was changed by another request")
)

// ValidationError carries a message that is safe to show to the customer.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError.
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// UnserviceableError is returned when delivery is unavailable for a state.
type UnserviceableError struct {
	State string
}

func (e *UnserviceableError) Error() string {
	return fmt.Sprintf("delivery is currently unavailable in %s", e.State)
}

// IsUnserviceable reports whether err is an UnserviceableError.
func IsUnserviceable(err error) bool {
	var target *UnserviceableError
	return errors.As(err, &target)
}
