package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/talkincode/cafeorder/internal/domain"
	"github.com/talkincode/cafeorder/pkg/common"
)

// Event bus topics published after a committed order mutation.
const (
	TopicOrderCreated = "order.created"
	TopicOrderUpdated = "order.updated"
	TopicOrderDeleted = "order.deleted"
)

// Publisher is the slice of the event bus the service needs.
type Publisher interface {
	Publish(topic string, args ...interface{})
}

// CreateRequest carries caller-supplied order metadata plus raw line
// requests. Optional fields are pointers so defaults apply only when absent.
type CreateRequest struct {
	OrderDateTime *time.Time       `json:"order_date_time"`
	TotalAmount   *decimal.Decimal `json:"total_amount"`
	Status        *bool            `json:"status"`
	Details       []LineRequest    `json:"order_details"`
}

// UpdateRequest replaces an order's entire detail set.
type UpdateRequest struct {
	OrderDateTime *time.Time    `json:"order_date_time"`
	Status        *bool         `json:"status"`
	Details       []LineRequest `json:"order_details"`
}

// Service orchestrates create/update/delete of an order as one all-or-nothing
// unit spanning detail assembly and stock mutation.
type Service struct {
	store TxStore
	bus   Publisher
}

func NewService(store TxStore, bus Publisher) *Service {
	return &Service{store: store, bus: bus}
}

// Create validates and persists a new order with its details and the
// decremented stock rows in a single transaction. Any failure rolls the
// whole unit back; no partial order, detail or stock mutation survives.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*domain.Order, error) {
	var created *domain.Order
	err := s.store.InTransaction(ctx, func(tx Store) error {
		assembler := NewAssembler(NewStockKeeper(tx))
		details, total, err := assembler.Assemble(ctx, req.Details, true)
		if err != nil {
			return err
		}
		if req.TotalAmount != nil {
			if err := Reconcile(*req.TotalAmount, total); err != nil {
				return err
			}
		}

		now := time.Now()
		ord := &domain.Order{
			ID:            common.UUIDint64(),
			OrderDateTime: now,
			TotalAmount:   total,
			Status:        true,
			CreatedAt:     now,
		}
		if req.OrderDateTime != nil {
			ord.OrderDateTime = *req.OrderDateTime
		}
		if req.Status != nil {
			ord.Status = *req.Status
		}
		for i := range details {
			details[i].OrderID = ord.ID
		}

		if err := tx.CreateOrder(ctx, ord); err != nil {
			return err
		}
		if err := tx.CreateDetails(ctx, details); err != nil {
			return err
		}
		ord.Details = details
		created = ord
		return nil
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("order created",
		zap.Int64("order_id", created.ID),
		zap.Int("lines", len(created.Details)),
		zap.String("total", created.TotalAmount.String()))
	s.publish(TopicOrderCreated, created.ID)
	return created, nil
}

// Update discards all existing details of the order and rebuilds them from
// the requested lines through the same reservation pipeline, then recomputes
// the total. Replacement lines reserve their full quantity against current
// stock; no delta against the previous reservation is computed.
func (s *Service) Update(ctx context.Context, id int64, req UpdateRequest) (*domain.Order, error) {
	var updated *domain.Order
	err := s.store.InTransaction(ctx, func(tx Store) error {
		ord, err := tx.GetOrder(ctx, id)
		if err != nil {
			return err
		}
		if len(req.Details) == 0 {
			return ErrEmptyOrder
		}

		if err := tx.DeleteDetailsByOrder(ctx, ord.ID); err != nil {
			return err
		}

		assembler := NewAssembler(NewStockKeeper(tx))
		details, total, err := assembler.Assemble(ctx, req.Details, false)
		if err != nil {
			return err
		}
		for i := range details {
			details[i].OrderID = ord.ID
		}
		if err := tx.CreateDetails(ctx, details); err != nil {
			return err
		}

		if req.OrderDateTime != nil {
			ord.OrderDateTime = *req.OrderDateTime
		}
		if req.Status != nil && *req.Status {
			ord.Status = true
		}
		ord.TotalAmount = total
		ord.Details = nil
		if err := tx.SaveOrder(ctx, ord); err != nil {
			return err
		}
		ord.Details = details
		updated = ord
		return nil
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("order updated",
		zap.Int64("order_id", updated.ID),
		zap.Int("lines", len(updated.Details)),
		zap.String("total", updated.TotalAmount.String()))
	s.publish(TopicOrderUpdated, updated.ID)
	return updated, nil
}

// Delete removes the order; its details go with it (cascade). Decremented
// product stock is NOT restored, deletion is not a compensating event.
func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.store.InTransaction(ctx, func(tx Store) error {
		ord, err := tx.GetOrder(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.DeleteDetailsByOrder(ctx, ord.ID); err != nil {
			return err
		}
		return tx.DeleteOrder(ctx, ord)
	})
	if err != nil {
		return err
	}

	zap.L().Info("order deleted", zap.Int64("order_id", id))
	s.publish(TopicOrderDeleted, id)
	return nil
}

// Get loads one order, recomputing the total from the live detail set. The
// stored total is treated as a cache that a read always masks over.
func (s *Service) Get(ctx context.Context, id int64) (*domain.Order, error) {
	ord, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	ord.TotalAmount = ord.ComputedTotal()
	return ord, nil
}

// List returns all orders newest first, each with its total recomputed from
// its live details.
func (s *Service) List(ctx context.Context) ([]domain.Order, error) {
	orders, err := s.store.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].TotalAmount = orders[i].ComputedTotal()
	}
	return orders, nil
}

// AppendDetail adds a single line to an existing order through the same
// reservation pipeline and refreshes the order total.
func (s *Service) AppendDetail(ctx context.Context, orderID int64, line LineRequest) (*domain.OrderDetail, error) {
	var appended *domain.OrderDetail
	err := s.store.InTransaction(ctx, func(tx Store) error {
		ord, err := tx.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}

		assembler := NewAssembler(NewStockKeeper(tx))
		detail, err := assembler.assembleLine(ctx, line, false)
		if err != nil {
			return err
		}
		detail.OrderID = ord.ID
		if err := tx.CreateDetails(ctx, []domain.OrderDetail{*detail}); err != nil {
			return err
		}

		details, err := tx.DetailsByOrder(ctx, ord.ID)
		if err != nil {
			return err
		}
		ord.TotalAmount = OrderTotal(details)
		ord.Details = nil
		if err := tx.SaveOrder(ctx, ord); err != nil {
			return err
		}
		appended = detail
		return nil
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("order detail appended",
		zap.Int64("order_id", orderID),
		zap.Int64("detail_id", appended.ID))
	s.publish(TopicOrderUpdated, orderID)
	return appended, nil
}

// GetDetail loads a single order line.
func (s *Service) GetDetail(ctx context.Context, id int64) (*domain.OrderDetail, error) {
	return s.store.GetDetail(ctx, id)
}

// ListDetails returns every order line.
func (s *Service) ListDetails(ctx context.Context) ([]domain.OrderDetail, error) {
	return s.store.ListDetails(ctx)
}

func (s *Service) publish(topic string, orderID int64) {
	if s.bus != nil {
		s.bus.Publish(topic, orderID)
	}
}
