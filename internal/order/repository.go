package order

import (
	"context"
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/talkincode/cafeorder/internal/domain"
)

// Store is the persistence surface the order core operates on. Inside
// InTransaction every call runs against the same database transaction, so a
// returned error rolls back everything the closure did.
type Store interface {
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)

	// DecrementStock applies `stock = stock - qty` only when `stock >= qty`,
	// atomically with respect to concurrent writers. It returns false when
	// the row was not updated (missing or insufficient stock, null counts
	// as zero).
	DecrementStock(ctx context.Context, id int64, qty int) (bool, error)

	GetOrder(ctx context.Context, id int64) (*domain.Order, error)
	ListOrders(ctx context.Context) ([]domain.Order, error)
	CreateOrder(ctx context.Context, ord *domain.Order) error
	SaveOrder(ctx context.Context, ord *domain.Order) error
	DeleteOrder(ctx context.Context, ord *domain.Order) error

	CreateDetails(ctx context.Context, details []domain.OrderDetail) error
	DeleteDetailsByOrder(ctx context.Context, orderID int64) error
	DetailsByOrder(ctx context.Context, orderID int64) ([]domain.OrderDetail, error)
	GetDetail(ctx context.Context, id int64) (*domain.OrderDetail, error)
	ListDetails(ctx context.Context) ([]domain.OrderDetail, error)
}

// TxStore runs a unit of work in a single all-or-nothing transaction.
type TxStore interface {
	Store
	InTransaction(ctx context.Context, fn func(tx Store) error) error
}

// GormStore is the GORM implementation of TxStore.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) InTransaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

func (s *GormStore) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	err := s.db.WithContext(ctx).Preload("Category").Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: id %d", ErrProductNotFound, id)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, "query product")
	}
	return &p, nil
}

func (s *GormStore) DecrementStock(ctx context.Context, id int64, qty int) (bool, error) {
	// Conditional compare-and-decrement: the WHERE clause makes the check
	// and the write one atomic statement. A NULL stock never satisfies
	// `stock >= qty`, so it counts as zero available.
	res := s.db.WithContext(ctx).Model(&domain.Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return false, pkgerrors.Wrap(res.Error, "decrement stock")
	}
	return res.RowsAffected == 1, nil
}

func (s *GormStore) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	var ord domain.Order
	err := s.db.WithContext(ctx).
		Preload("Details").
		Preload("Details.Product").
		Where("id = ?", id).First(&ord).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: id %d", ErrOrderNotFound, id)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, "query order")
	}
	return &ord, nil
}

func (s *GormStore) ListOrders(ctx context.Context) ([]domain.Order, error) {
	var orders []domain.Order
	err := s.db.WithContext(ctx).
		Preload("Details").
		Preload("Details.Product").
		Order("order_date_time DESC").
		Find(&orders).Error
	if err != nil {
		return nil, pkgerrors.Wrap(err, "query orders")
	}
	return orders, nil
}

func (s *GormStore) CreateOrder(ctx context.Context, ord *domain.Order) error {
	// Details are persisted separately by the service after the order row
	// exists; skip gorm's association writes here.
	err := s.db.WithContext(ctx).Omit("Details").Create(ord).Error
	return pkgerrors.Wrap(err, "create order")
}

func (s *GormStore) SaveOrder(ctx context.Context, ord *domain.Order) error {
	err := s.db.WithContext(ctx).Omit("Details").Save(ord).Error
	return pkgerrors.Wrap(err, "save order")
}

func (s *GormStore) DeleteOrder(ctx context.Context, ord *domain.Order) error {
	err := s.db.WithContext(ctx).Delete(&domain.Order{}, ord.ID).Error
	return pkgerrors.Wrap(err, "delete order")
}

func (s *GormStore) CreateDetails(ctx context.Context, details []domain.OrderDetail) error {
	if len(details) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Omit("Product").Create(&details).Error
	return pkgerrors.Wrap(err, "create order details")
}

func (s *GormStore) DeleteDetailsByOrder(ctx context.Context, orderID int64) error {
	err := s.db.WithContext(ctx).Where("order_id = ?", orderID).Delete(&domain.OrderDetail{}).Error
	return pkgerrors.Wrap(err, "delete order details")
}

func (s *GormStore) DetailsByOrder(ctx context.Context, orderID int64) ([]domain.OrderDetail, error) {
	var details []domain.OrderDetail
	err := s.db.WithContext(ctx).Preload("Product").
		Where("order_id = ?", orderID).Find(&details).Error
	if err != nil {
		return nil, pkgerrors.Wrap(err, "query order details")
	}
	return details, nil
}

func (s *GormStore) GetDetail(ctx context.Context, id int64) (*domain.OrderDetail, error) {
	var d domain.OrderDetail
	err := s.db.WithContext(ctx).Preload("Product").Where("id = ?", id).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: id %d", ErrOrderDetailNotFound, id)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, "query order detail")
	}
	return &d, nil
}

func (s *GormStore) ListDetails(ctx context.Context) ([]domain.OrderDetail, error) {
	var details []domain.OrderDetail
	err := s.db.WithContext(ctx).Preload("Product").Find(&details).Error
	if err != nil {
		return nil, pkgerrors.Wrap(err, "query order details")
	}
	return details, nil
}
