package order

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decp(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestCreateOrderComputesTotal(t *testing.T) {
	store := newMemStore()
	store.addProduct(1, "5.00", 10, true)
	store.addProduct(2, "3.50", 4, true)
	bus := &recordingBus{}
	svc := NewService(store, bus)

	ord, err := svc.Create(context.Background(), CreateRequest{
		Details: []LineRequest{
			{ProductID: int64p(1), Qty: intp(2)},
			{ProductID: int64p(2), Qty: intp(1)},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, ord)

	assert.True(t, ord.TotalAmount.Equal(decimal.RequireFromString("13.50")), "got %s", ord.TotalAmount)
	assert.True(t, ord.Status)
	assert.False(t, ord.OrderDateTime.IsZero())
	require.Len(t, ord.Details, 2)
	assert.Equal(t, ord.ID, ord.Details[0].OrderID)

	assert.Equal(t, 8, store.stockOf(1))
	assert.Equal(t, 3, store.stockOf(2))

	got, err := svc.Get(context.Background(), ord.ID)
	require.NoError(t, err)
	assert.True(t, got.TotalAmount.Equal(decimal.RequireFromString("13.50")))
	assert.Len(t, got.Details, 2)

	assert.Equal(t, []string{TopicOrderCreated}, bus.topics)
}

func TestCreateOrderHonorsProvidedFields(t *testing.T) {
	store := newMemStore()
	store.addProduct(1, "5.00", 10, true)
	svc := NewService(store, nil)

	when := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	ord, err := svc.Create(context.Background(), CreateRequest{
		OrderDateTime: &when,
		TotalAmount:   decp("10.00"),
		Status:        boolp(false),
		Details:       []LineRequest{{ProductID: int64p(1), Qty: intp(2)}},
	})
	require.NoError(t, err)
	assert.True(t, when.Equal(ord.OrderDateTime))
	assert.False(t, ord.Status)
}

func TestCreateOrderEmpty(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, nil)

	_, err := svc.Create(context.Background(), CreateRequest{})
	assert.ErrorIs(t, err, ErrEmptyOrder)
	orders, _ := store.ListOrders(context.Background())
	assert.Empty(t, orders)
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	store := newMemStore()
	store.addProduct(1, "5.00", 3, true)
	svc := NewService(store, nil)

	_, err := svc.Create(context.Background(), CreateRequest{
		Details: []LineRequest{{ProductID: int64p(1), Qty: intp(10)}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, "Insufficient stock for product id: 1. Available: 3, Requested: 10", err.Error())
	assert.Equal(t, 3, store.stockOf(1))
}

func TestCreateOrderUnavailableProduct(t *testing.T) {
	store := newMemStore()
	store.addProduct(1, "5.00", 10, false)
	svc := NewService(store, nil)

	_, err := svc.Create(context.Background(), CreateRequest{
		Details: []LineRequest{{ProductID: int64p(1), Qty: intp(1)}},
	})
	assert.ErrorIs(t, err, ErrProductUnavailable)
	assert.Equal(t, 10, store.stockOf(1))
}

func TestCreateOrderTotalMismatch(t *testing.T) {
	store := newMemStore()
	store.addProduct(1, "5.00", 10, true)
	store.addProduct(2, "3.50", 4, true)
	svc := NewService(store, nil)

	_, err := svc.Create(context.Background(), CreateRequest{
		TotalAmount: decp("10.00"),
		Details: []LineRequest{
			{ProductID: int64p(1), Qty: intp(2)},
			{ProductID: int64p(2), Qty: intp(1)},
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTotalMismatch)
	assert.Equal(t, "Provided total amount 10.00 does not match calculated total 13.50", err.Error())

	// the whole transaction rolled back, including the two reservations
	assert.Equal(t, 10, store.stockOf(1))
	assert.Equal(t, 4, store.stockOf(2))
	orders, _ := store.ListOrders(context.Background())
	assert.Empty(t, orders)
}

func TestCreateOrderAbortsMidBatch(t *testing.T) {
	store := newMemStore()
	store.addProduct(1, "5.00", 10, true)
	store.addProduct(2, "3.50", 4, true)
	svc := NewService(store, nil)

	// line 3 fails after lines 1 and 2 already reserved stock
	_, err := svc.Create(context.Background(), CreateRequest{
		Details: []LineRequest{
			{ProductID: int64p(1), Qty: intp(2)},
			{ProductID: int64p(2), Qty: intp(1)},
			{ProductID: int64p(2), Qty: intp(100)},
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	assert.Equal(t, 10, store.stockOf(1))
	assert.Equal(t, 4, store.stockOf(2))
	details, _ := store.ListDetails(context.Background())
	assert.Empty(t, details)
}

func TestCreateOrderRollsBackOnPersistFailure(t *testing.T) {
	store := newMemStore()
	store.addProduct(1, "5.00", 10, true)
	store.failCreateDetails = true
	svc := NewService(store, nil)

	_, err := svc.Create(context.Background(), CreateRequest{
		Details: []LineRequest{{ProductID: int64p(1), Qty: intp(2)}},
	})
	require.Error(t, err)
	assert.False(t, IsValidation(err))

	assert.Equal(t, 10, store.stockOf(1))
	orders, _ := store.ListOrders(context.Background())
	assert.Empty(t, orders)
}

func TestUpdateReplacesDetails(t *testing.T) {
	store := newMemStore()
	store.addProduct(1, "5.00", 10, true)
	store.addProduct(2, "3.50", 4, true)
	svc := NewService(store, nil)
	ctx := context.Background()

	ord, err := svc.Create(ctx, CreateRequest{
		Details: []LineRequest{{ProductID: int64p(1), Qty: intp(2)}},
	})
	require.NoError(t, err)
	require.Equal(t, 8, store.stockOf(1))
	oldDetailID := ord.Details[0].ID

	updated, err := svc.Update(ctx, ord.ID, UpdateRequest{
		Details: []LineRequest{{ProductID: int64p(2), Qty: intp(3)}},
	})
	require.NoError(t, err)
	require.Len(t, updated.Details, 1)
	assert.Equal(t, int64(2), updated.Details[0].ProductID)
	assert.True(t, updated.TotalAmount.Equal(decimal.RequireFromString("10.50")), "got %s", updated.TotalAmount)

	_, err = store.GetDetail(ctx, oldDetailID)
	assert.ErrorIs(t, err, ErrOrderDetailNotFound)

	// replacement lines reserve their full quantity; the original
	// reservation is not returned
	assert.Equal(t, 8, store.stockOf(1))
	assert.Equal(t, 1, store.stockOf(2))
}

func TestUpdateEmptyDetails(t *testing.T) {
	store := newMemStore()
	store.addProduct(1, "5.00", 10, true)
	svc := NewService(store, nil)
	ctx := context.Background()

	ord, err := svc.Create(ctx, CreateRequest{
		Details: []LineRequest{{ProductID: int64p(1), Qty: intp(1)}},
	})
	require.NoError(t, err)

	_, err = svc.Update(ctx, ord.ID, UpdateRequest{})
	assert.ErrorIs(t, err, ErrEmptyOrder)

	// the failed update must not have discarded the existing details
	got, err := svc.Get(ctx, ord.ID)
	require.NoError(t, err)
	assert.Len(t, got.Details, 1)
}

func TestUpdateOrderNotFound(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, nil)

	_, err := svc.Update(context.Background(), 404, UpdateRequest{
		Details: []LineRequest{{ProductID: int64p(1), Qty: intp(1)}},
	})
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestUpdateAllowsUnavailableProduct(t *testing.T) {
	store := newMemStore()
	store.addProduct(1, "5.00", 10, true)
	store.addProduct(2, "3.50", 4, false)
	svc := NewService(store, nil)
	ctx := context.Background()

	ord, err := svc.Create(ctx, CreateRequest{
		Details: []LineRequest{{ProductID: int64p(1), Qty: intp(1)}},
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, ord.ID, UpdateRequest{
		Details: []LineRequest{{ProductID: int64p(2), Qty: intp(1)}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.Details[0].ProductID)
	assert.Equal(t, 3, store.stockOf(2))
}

func TestUpdateStatusOnlyRaises(t *testing.T) {
	store := newMemStore()
	store.addProduct(1, "5.00", 10, true)
	svc := NewService(store, nil)
	ctx := context.Background()

	ord, err := svc.Create(ctx, CreateRequest{
		Status:  boolp(false),
		Details: []LineRequest{{ProductID: int64p(1), Qty: intp(1)}},
	})
	require.NoError(t, err)
	require.False(t, ord.Status)

	// status=false in an update is ignored, only true is applied
	updated, err := svc.Update(ctx, ord.ID, UpdateRequest{
		Status:  boolp(false),
		Details: []LineRequest{{ProductID: int64p(1), Qty: intp(1)}},
	})
	require.NoError(t, err)
	assert.False(t, updated.Status)

	updated, err = svc.Update(ctx, ord.ID, UpdateRequest{
		Status:  boolp(true),
		Details: []LineRequest{{ProductID: int64p(1), Qty: intp(1)}},
	})
	require.NoError(t, err)
	assert.True(t, updated.Status)
}

func TestDeleteDoesNotRestoreStock(t *testing.T) {
	store := newMemStore()
	store.addProduct(1, "5.00", 10, true)
	bus := &recordingBus{}
	svc := NewService(store, bus)
	ctx := context.Background()

	ord, err := svc.Create(ctx, CreateRequest{
		Details: []LineRequest{{ProductID: int64p(1), Qty: intp(4)}},
	})
	require.NoError(t, err)
	require.Equal(t, 6, store.stockOf(1))

	require.NoError(t, svc.Delete(ctx, ord.ID))

	_, err = svc.Get(ctx, ord.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)
	details, _ := store.ListDetails(ctx)
	assert.Empty(t, details)
	// deletion is not a compensating event
	assert.Equal(t, 6, store.stockOf(1))

	assert.Equal(t, []string{TopicOrderCreated, TopicOrderDeleted}, bus.topics)
}

func TestDeleteOrderNotFound(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, nil)

	err := svc.Delete(context.Background(), 404)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestGetRecomputesDriftedTotal(t *testing.T) {
	store := newMemStore()
	store.addProduct(1, "5.00", 10, true)
	svc := NewService(store, nil)
	ctx := context.Background()

	ord, err := svc.Create(ctx, CreateRequest{
		Details: []LineRequest{{ProductID: int64p(1), Qty: intp(2)}},
	})
	require.NoError(t, err)

	// corrupt the stored total; reads must mask it with the computed one
	stored, err := store.GetOrder(ctx, ord.ID)
	require.NoError(t, err)
	stored.TotalAmount = decimal.RequireFromString("999.99")
	stored.Details = nil
	require.NoError(t, store.SaveOrder(ctx, stored))

	got, err := svc.Get(ctx, ord.ID)
	require.NoError(t, err)
	assert.True(t, got.TotalAmount.Equal(decimal.RequireFromString("10.00")), "got %s", got.TotalAmount)

	// repeated reads agree
	again, err := svc.Get(ctx, ord.ID)
	require.NoError(t, err)
	assert.True(t, got.TotalAmount.Equal(again.TotalAmount))
}

func TestListOrdersNewestFirst(t *testing.T) {
	store := newMemStore()
	store.addProduct(1, "5.00", 100, true)
	svc := NewService(store, nil)
	ctx := context.Background()

	older := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	newer := time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC)
	first, err := svc.Create(ctx, CreateRequest{
		OrderDateTime: &older,
		Details:       []LineRequest{{ProductID: int64p(1), Qty: intp(1)}},
	})
	require.NoError(t, err)
	second, err := svc.Create(ctx, CreateRequest{
		OrderDateTime: &newer,
		Details:       []LineRequest{{ProductID: int64p(1), Qty: intp(2)}},
	})
	require.NoError(t, err)

	orders, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, second.ID, orders[0].ID)
	assert.Equal(t, first.ID, orders[1].ID)
	assert.True(t, orders[0].TotalAmount.Equal(decimal.RequireFromString("10.00")))
}

func TestAppendDetailRefreshesTotal(t *testing.T) {
	store := newMemStore()
	store.addProduct(1, "5.00", 10, true)
	store.addProduct(2, "3.50", 4, true)
	svc := NewService(store, nil)
	ctx := context.Background()

	ord, err := svc.Create(ctx, CreateRequest{
		Details: []LineRequest{{ProductID: int64p(1), Qty: intp(2)}},
	})
	require.NoError(t, err)

	detail, err := svc.AppendDetail(ctx, ord.ID, LineRequest{ProductID: int64p(2), Qty: intp(1)})
	require.NoError(t, err)
	assert.Equal(t, ord.ID, detail.OrderID)
	assert.True(t, detail.SubTotal.Equal(decimal.RequireFromString("3.50")))
	assert.Equal(t, 3, store.stockOf(2))

	got, err := svc.Get(ctx, ord.ID)
	require.NoError(t, err)
	assert.Len(t, got.Details, 2)
	assert.True(t, got.TotalAmount.Equal(decimal.RequireFromString("13.50")), "got %s", got.TotalAmount)
}

func TestAppendDetailOrderNotFound(t *testing.T) {
	store := newMemStore()
	store.addProduct(1, "5.00", 10, true)
	svc := NewService(store, nil)

	_, err := svc.AppendDetail(context.Background(), 404, LineRequest{ProductID: int64p(1), Qty: intp(1)})
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestConcurrentReservationLastUnit(t *testing.T) {
	store := newMemStore()
	store.addProduct(1, "5.00", 1, true)
	svc := NewService(store, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Create(ctx, CreateRequest{
				Details: []LineRequest{{ProductID: int64p(1), Qty: intp(1)}},
			})
		}(i)
	}
	wg.Wait()

	var won, lost int
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		default:
			assert.ErrorIs(t, err, ErrInsufficientStock)
			lost++
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, 1, lost)
	assert.Equal(t, 0, store.stockOf(1))

	orders, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}
