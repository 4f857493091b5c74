package order

import (
	"github.com/shopspring/decimal"

	"github.com/talkincode/cafeorder/internal/domain"
)

// LineSubtotal returns unitPrice * qty in exact decimal arithmetic.
func LineSubtotal(unitPrice decimal.Decimal, qty int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(qty)))
}

// OrderTotal sums the subtotals of details, zero for an empty set.
func OrderTotal(details []domain.OrderDetail) decimal.Decimal {
	total := decimal.Zero
	for _, d := range details {
		total = total.Add(d.SubTotal)
	}
	return total
}

// Reconcile checks a caller-supplied total against the computed one. A
// mismatch is a validation error, never a silent overwrite.
func Reconcile(provided, computed decimal.Decimal) error {
	if !provided.Equal(computed) {
		return &TotalMismatchError{Provided: provided, Computed: computed}
	}
	return nil
}
