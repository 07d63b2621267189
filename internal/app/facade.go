package app

import (
	"context"

	"github.com/polkiloo/orders/internal/domain/model"
	"github.com/polkiloo/orders/internal/pkg/auth"
	"github.com/polkiloo/orders/internal/usecase"
)

// HealthChecker reports whether backing storage is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type OrdersFacade struct {
	orders *usecase.OrderUseCase
	tokens auth.Strategy
	health HealthChecker
}

func NewOrdersFacade(orders *usecase.OrderUseCase, tokens auth.Strategy, health HealthChecker) *OrdersFacade {
	return &OrdersFacade{orders: orders, tokens: tokens, health: health}
}

func (f *OrdersFacade) Orders(ctx context.Context) ([]*model.Order, error) {
	return f.orders.FindAll(ctx)
}

func (f *OrdersFacade) Order(ctx context.Context, id string) (*model.Order, error) {
	return f.orders.FindByID(ctx, id)
}

func (f *OrdersFacade) CreateOrder(ctx context.Context, notes string, items []model.ProductQuantity, customerID *string) (*model.Order, *model.Payment, error) {
	result, err := f.orders.Create(ctx, usecase.CreateOrderInput{
		Notes:      notes,
		Items:      items,
		CustomerID: customerID,
	})
	if err != nil {
		return nil, nil, err
	}
	return result.Order, result.Payment, nil
}

func (f *OrdersFacade) UpdateOrderStatus(ctx context.Context, id, status string) (*model.Order, error) {
	return f.orders.Update(ctx, id, status)
}

func (f *OrdersFacade) DeleteOrder(ctx context.Context, id string) error {
	return f.orders.Delete(ctx, id)
}

// ReconcilePayment is consumed by the payment result worker.
func (f *OrdersFacade) ReconcilePayment(ctx context.Context, orderID string, success bool) error {
	return f.orders.ReconcilePayment(ctx, orderID, success)
}

func (f *OrdersFacade) ParseToken(ctx context.Context, token string) (string, error) {
	return f.tokens.ParseToken(ctx, token)
}

func (f *OrdersFacade) HealthCheck(ctx context.Context) error {
	return f.health.HealthCheck(ctx)
}
