package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrEmailTaken           = errors.New("email already registered")
	ErrUserNotFound         = errors.New("user not found")
	ErrCartEmpty            = errors.New("cart is empty")
	ErrCartItemNotFound     = errors.New("cart item not found")
	ErrProductNotFound      = errors.New("product not found")
	ErrProductUnavailable   = errors.New("product is no longer available")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrCategoryNotFound     = errors.New("category not found")
	ErrAddressNotFound      = errors.New("delivery address not found")
	ErrAddressInUse         = errors.New("address is referenced by an order")
	ErrOrderNotFound        = errors.New("order not found")
	ErrInvalidStatus        = errors.New("invalid order status")
	ErrInvalidPaymentProof  = errors.New("invalid payment proof")
	ErrInvalidPaymentMethod = errors.New("unsupported payment method")
	ErrDuplicateSlug        = errors.New("slug or sku already in use")
)

// ValidationError 带可读原因的 400 错误
type ValidationError struct {
	Reason string
	Err    error
}

func (e *ValidationError) Error() string { return e.Reason }

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(err error, format string, args ...interface{}) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...), Err: err}
}

// notFound 把 gorm 的未找到映射为业务哨兵错误
func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}
