package order

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/talkincode/cafeorder/internal/domain"
)

// memState is an in-memory Store used by the core tests. memStore wraps it
// with a mutex and snapshot-rollback transactions, which gives the same
// exclusive-lock semantics the production store gets from the database.
type memState struct {
	products map[int64]*domain.Product
	orders   map[int64]*domain.Order
	details  map[int64]*domain.OrderDetail

	failCreateDetails bool
	failSaveOrder     bool
}

func newMemState() *memState {
	return &memState{
		products: map[int64]*domain.Product{},
		orders:   map[int64]*domain.Order{},
		details:  map[int64]*domain.OrderDetail{},
	}
}

func (s *memState) clone() *memState {
	c := newMemState()
	c.failCreateDetails = s.failCreateDetails
	c.failSaveOrder = s.failSaveOrder
	for id, p := range s.products {
		cp := *p
		if p.Stock != nil {
			stock := *p.Stock
			cp.Stock = &stock
		}
		c.products[id] = &cp
	}
	for id, o := range s.orders {
		co := *o
		co.Details = nil
		c.orders[id] = &co
	}
	for id, d := range s.details {
		cd := *d
		c.details[id] = &cd
	}
	return c
}

func (s *memState) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	cp := *p
	if p.Stock != nil {
		stock := *p.Stock
		cp.Stock = &stock
	}
	return &cp, nil
}

func (s *memState) DecrementStock(ctx context.Context, id int64, qty int) (bool, error) {
	p, ok := s.products[id]
	if !ok || p.Stock == nil || *p.Stock < qty {
		return false, nil
	}
	*p.Stock -= qty
	return true, nil
}

func (s *memState) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	o, ok := s.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	co := *o
	co.Details = s.detailsOf(id)
	return &co, nil
}

func (s *memState) ListOrders(ctx context.Context) ([]domain.Order, error) {
	var orders []domain.Order
	for id, o := range s.orders {
		co := *o
		co.Details = s.detailsOf(id)
		orders = append(orders, co)
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].OrderDateTime.After(orders[j].OrderDateTime)
	})
	return orders, nil
}

func (s *memState) CreateOrder(ctx context.Context, ord *domain.Order) error {
	co := *ord
	co.Details = nil
	s.orders[ord.ID] = &co
	return nil
}

func (s *memState) SaveOrder(ctx context.Context, ord *domain.Order) error {
	if s.failSaveOrder {
		return errors.New("save order: connection reset")
	}
	return s.CreateOrder(ctx, ord)
}

func (s *memState) DeleteOrder(ctx context.Context, ord *domain.Order) error {
	delete(s.orders, ord.ID)
	return nil
}

func (s *memState) CreateDetails(ctx context.Context, details []domain.OrderDetail) error {
	if s.failCreateDetails {
		return errors.New("create order details: connection reset")
	}
	for _, d := range details {
		cd := d
		cd.Product = nil
		s.details[d.ID] = &cd
	}
	return nil
}

func (s *memState) DeleteDetailsByOrder(ctx context.Context, orderID int64) error {
	for id, d := range s.details {
		if d.OrderID == orderID {
			delete(s.details, id)
		}
	}
	return nil
}

func (s *memState) DetailsByOrder(ctx context.Context, orderID int64) ([]domain.OrderDetail, error) {
	return s.detailsOf(orderID), nil
}

func (s *memState) GetDetail(ctx context.Context, id int64) (*domain.OrderDetail, error) {
	d, ok := s.details[id]
	if !ok {
		return nil, ErrOrderDetailNotFound
	}
	cd := *d
	return &cd, nil
}

func (s *memState) ListDetails(ctx context.Context) ([]domain.OrderDetail, error) {
	var details []domain.OrderDetail
	for _, d := range s.details {
		details = append(details, *d)
	}
	sort.Slice(details, func(i, j int) bool { return details[i].ID < details[j].ID })
	return details, nil
}

func (s *memState) detailsOf(orderID int64) []domain.OrderDetail {
	var details []domain.OrderDetail
	for _, d := range s.details {
		if d.OrderID == orderID {
			details = append(details, *d)
		}
	}
	sort.Slice(details, func(i, j int) bool { return details[i].ID < details[j].ID })
	return details
}

type memStore struct {
	mu sync.Mutex
	*memState
}

func newMemStore() *memStore {
	return &memStore{memState: newMemState()}
}

func (m *memStore) InTransaction(ctx context.Context, fn func(tx Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := m.memState.clone()
	if err := fn(snap); err != nil {
		return err
	}
	m.memState = snap
	return nil
}

func (m *memStore) addProduct(id int64, price string, stock int, available bool) *domain.Product {
	p := &domain.Product{
		ID:        id,
		Name:      "product",
		Price:     decimal.RequireFromString(price),
		Stock:     &stock,
		Available: available,
	}
	m.mu.Lock()
	m.products[id] = p
	m.mu.Unlock()
	return p
}

func (m *memStore) stockOf(id int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products[id].StockValue()
}

// recordingBus captures published topics for assertions.
type recordingBus struct {
	mu     sync.Mutex
	topics []string
}

func (b *recordingBus) Publish(topic string, args ...interface{}) {
	b.mu.Lock()
	b.topics = append(b.topics, topic)
	b.mu.Unlock()
}

func int64p(v int64) *int64 { return &v }
func intp(v int) *int       { return &v }
func boolp(v bool) *bool    { return &v }
