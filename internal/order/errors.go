package order

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Sentinel errors surfaced by the order core. Handlers match these with
// errors.Is to pick an HTTP status; the messages are returned to callers
// verbatim.
var (
	ErrEmptyOrder         = errors.New("Order must contain at least one item")
	ErrMissingProductID   = errors.New("Product ID is required in order detail")
	ErrInvalidQuantity    = errors.New("Quantity must be a positive number in order detail")
	ErrNoteTooLong        = errors.New("Order detail message must not exceed 255 characters")
	ErrProductNotFound    = errors.New("Product not found")
	ErrProductUnavailable = errors.New("Product is not available")
	ErrOrderNotFound      = errors.New("Order not found")
	ErrInsufficientStock  = errors.New("Insufficient stock")
	ErrTotalMismatch      = errors.New("Total amount mismatch")
	ErrOrderDetailNotFound = errors.New("OrderDetail not found")
)

// InsufficientStockError reports a failed stock reservation with the
// requested vs. available quantities. It matches ErrInsufficientStock.
type InsufficientStockError struct {
	ProductID int64
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Insufficient stock for product id: %d. Available: %d, Requested: %d",
		e.ProductID, e.Available, e.Requested)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// TotalMismatchError reports a caller-supplied total that does not equal the
// computed one. It matches ErrTotalMismatch.
type TotalMismatchError struct {
	Provided decimal.Decimal
	Computed decimal.Decimal
}

func (e *TotalMismatchError) Error() string {
	return fmt.Sprintf("Provided total amount %s does not match calculated total %s",
		e.Provided.String(), e.Computed.String())
}

func (e *TotalMismatchError) Is(target error) bool {
	return target == ErrTotalMismatch
}

// IsValidation reports whether err is a caller input or business-rule fault
// rather than a storage fault.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrEmptyOrder, ErrMissingProductID, ErrInvalidQuantity, ErrNoteTooLong,
		ErrProductUnavailable, ErrInsufficientStock, ErrTotalMismatch,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsNotFound reports whether err refers to a missing entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrOrderDetailNotFound)
}
