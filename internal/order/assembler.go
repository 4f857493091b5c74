package order

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/talkincode/cafeorder/internal/domain"
	"github.com/talkincode/cafeorder/pkg/common"
)

// MaxMessageLen bounds the free-text note on an order line.
const MaxMessageLen = 255

// LineRequest is one requested order line. ProductID and Qty are pointers so
// an absent field can be told apart from a zero.
type LineRequest struct {
	ProductID *int64 `json:"product_id"`
	Qty       *int   `json:"qty"`
	Message   string `json:"message"`
}

// Assembler turns requested lines into materialized order details, reserving
// stock and snapshotting prices line by line. One invocation is
// all-or-nothing: the first failing line aborts the whole batch, and since
// it runs inside the caller's transaction no earlier reservation survives.
type Assembler struct {
	stock *StockKeeper
}

func NewAssembler(stock *StockKeeper) *Assembler {
	return &Assembler{stock: stock}
}

// Assemble validates and materializes lines in input order, returning the
// detail drafts and the running total.
func (a *Assembler) Assemble(ctx context.Context, lines []LineRequest, requireAvailable bool) ([]domain.OrderDetail, decimal.Decimal, error) {
	if len(lines) == 0 {
		return nil, decimal.Zero, ErrEmptyOrder
	}

	details := make([]domain.OrderDetail, 0, len(lines))
	total := decimal.Zero
	for _, line := range lines {
		detail, err := a.assembleLine(ctx, line, requireAvailable)
		if err != nil {
			return nil, decimal.Zero, err
		}
		details = append(details, *detail)
		total = total.Add(detail.SubTotal)
	}
	return details, total, nil
}

func (a *Assembler) assembleLine(ctx context.Context, line LineRequest, requireAvailable bool) (*domain.OrderDetail, error) {
	if line.ProductID == nil || *line.ProductID == 0 {
		return nil, ErrMissingProductID
	}
	if line.Qty == nil || *line.Qty <= 0 {
		return nil, ErrInvalidQuantity
	}
	if len(line.Message) > MaxMessageLen {
		return nil, ErrNoteTooLong
	}

	reservation, err := a.stock.Reserve(ctx, *line.ProductID, *line.Qty, requireAvailable)
	if err != nil {
		return nil, err
	}

	return &domain.OrderDetail{
		ID:        common.UUIDint64(),
		ProductID: *line.ProductID,
		Product:   reservation.Product,
		Qty:       *line.Qty,
		UnitPrice: reservation.UnitPrice,
		SubTotal:  LineSubtotal(reservation.UnitPrice, *line.Qty),
		Message:   line.Message,
	}, nil
}
