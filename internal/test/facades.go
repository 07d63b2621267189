package test

import (
	"context"
	"sync"
	"time"

	"github.com/polkiloo/orders/internal/domain/model"
)

var fixedTime = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// OrderFacadeStub provides configurable behaviour for order handlers.
type OrderFacadeStub struct {
	OrdersFn       func(context.Context) ([]*model.Order, error)
	OrderFn        func(context.Context, string) (*model.Order, error)
	CreateFn       func(context.Context, string, []model.ProductQuantity, *string) (*model.Order, *model.Payment, error)
	UpdateStatusFn func(context.Context, string, string) (*model.Order, error)
	DeleteFn       func(context.Context, string) error
}

func (s OrderFacadeStub) Orders(ctx context.Context) ([]*model.Order, error) {
	if s.OrdersFn != nil {
		return s.OrdersFn(ctx)
	}
	return nil, nil
}

func (s OrderFacadeStub) Order(ctx context.Context, id string) (*model.Order, error) {
	if s.OrderFn != nil {
		return s.OrderFn(ctx, id)
	}
	return MustOrder(id, model.OrderStatusAwaiting, fixedTime), nil
}

func (s OrderFacadeStub) CreateOrder(ctx context.Context, notes string, items []model.ProductQuantity, customerID *string) (*model.Order, *model.Payment, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, notes, items, customerID)
	}
	order := MustOrder("order-1", model.OrderStatusPaymentPending, fixedTime)
	order.PaymentID = 1
	order.CustomerID = customerID
	return order, &model.Payment{ID: 1, OrderID: order.ID, PixQRCode: "pix", PixQRCodeBase64: "cGl4"}, nil
}

func (s OrderFacadeStub) UpdateOrderStatus(ctx context.Context, id, status string) (*model.Order, error) {
	if s.UpdateStatusFn != nil {
		return s.UpdateStatusFn(ctx, id, status)
	}
	parsed, err := model.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}
	return MustOrder(id, parsed, fixedTime), nil
}

func (s OrderFacadeStub) DeleteOrder(ctx context.Context, id string) error {
	if s.DeleteFn != nil {
		return s.DeleteFn(ctx, id)
	}
	return nil
}

// HealthCheckerStub reports the configured error.
type HealthCheckerStub struct {
	Err error
}

func (s HealthCheckerStub) HealthCheck(context.Context) error {
	return s.Err
}

// OrdersFacadeStub aggregates stubs to satisfy the handler facade.
type OrdersFacadeStub struct {
	OrderFacadeStub
	HealthCheckerStub
	TokenParserStub
}

// ReconcileCall records a ReconcilePayment invocation.
type ReconcileCall struct {
	OrderID string
	Success bool
}

// ReconcilerStub records payment reconciliations and replays configured errors in order.
type ReconcilerStub struct {
	mu     sync.Mutex
	Errs   []error
	Calls  []ReconcileCall
	Called chan ReconcileCall
}

func (s *ReconcilerStub) ReconcilePayment(_ context.Context, orderID string, success bool) error {
	s.mu.Lock()
	call := ReconcileCall{OrderID: orderID, Success: success}
	s.Calls = append(s.Calls, call)
	var err error
	if len(s.Errs) > 0 {
		err = s.Errs[0]
		s.Errs = s.Errs[1:]
	}
	s.mu.Unlock()

	if s.Called != nil {
		select {
		case s.Called <- call:
		default:
		}
	}
	return err
}

// CallCount returns the number of recorded reconciliations.
func (s *ReconcilerStub) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Calls)
}
