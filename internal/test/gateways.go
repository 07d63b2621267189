package test

import (
	"context"
	"sync"

	"github.com/polkiloo/orders/internal/domain/model"
)

// ProductReserverStub returns configured products for reservations.
type ProductReserverStub struct {
	ReserveFn func(context.Context, []model.ProductQuantity) ([]model.Product, error)
	Products  []model.Product
	Err       error
	Calls     int
}

// Reserve delegates to ReserveFn or returns the configured result.
func (s *ProductReserverStub) Reserve(ctx context.Context, items []model.ProductQuantity) ([]model.Product, error) {
	s.Calls++
	if s.ReserveFn != nil {
		return s.ReserveFn(ctx, items)
	}
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Products, nil
}

// PaymentCall records a CreatePayment invocation.
type PaymentCall struct {
	OrderID string
	Price   float64
}

// PaymentCreatorStub issues deterministic payments.
type PaymentCreatorStub struct {
	CreateFn func(context.Context, string, float64) (*model.Payment, error)
	Err      error
	NextID   int64

	mu    sync.Mutex
	Calls []PaymentCall
}

// CreatePayment records the call and returns a payment for the order.
func (s *PaymentCreatorStub) CreatePayment(ctx context.Context, orderID string, price float64) (*model.Payment, error) {
	s.mu.Lock()
	s.Calls = append(s.Calls, PaymentCall{OrderID: orderID, Price: price})
	s.mu.Unlock()
	if s.CreateFn != nil {
		return s.CreateFn(ctx, orderID, price)
	}
	if s.Err != nil {
		return nil, s.Err
	}
	id := s.NextID
	if id == 0 {
		id = 1
	}
	return &model.Payment{ID: id, OrderID: orderID, Price: price, PixQRCode: "pix", PixQRCodeBase64: "cGl4"}, nil
}
