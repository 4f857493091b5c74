package order

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/talkincode/cafeorder/internal/domain"
)

// Reservation is the result of an atomic stock decrement: the unit-price
// snapshot for the line and the product's post-decrement count.
type Reservation struct {
	Product   *domain.Product
	UnitPrice decimal.Decimal
	NewStock  int
}

// StockKeeper performs atomic check-and-decrement reservations against the
// product table. It never commits independently: callers run it inside the
// enclosing order transaction.
type StockKeeper struct {
	store Store
}

func NewStockKeeper(store Store) *StockKeeper {
	return &StockKeeper{store: store}
}

// Reserve decrements qty units of productID and returns the product's
// current price as the immutable unit-price snapshot for the line. The
// price is never re-read for this line after a successful reservation.
//
// requireAvailable applies the availability gate used by the order-creation
// path; the update path is more permissive and passes false.
func (k *StockKeeper) Reserve(ctx context.Context, productID int64, qty int, requireAvailable bool) (*Reservation, error) {
	product, err := k.store.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	if requireAvailable && !product.Available {
		return nil, fmt.Errorf("%w: id %d", ErrProductUnavailable, productID)
	}

	updated, err := k.store.DecrementStock(ctx, productID, qty)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, &InsufficientStockError{
			ProductID: productID,
			Available: product.StockValue(),
			Requested: qty,
		}
	}

	return &Reservation{
		Product:   product,
		UnitPrice: product.Price,
		NewStock:  product.StockValue() - qty,
	}, nil
}
