package handlers

import (
	"context"

	"github.com/polkiloo/orders/internal/domain/model"
)

// OrderFacade encapsulates order operations exposed via HTTP.
type OrderFacade interface {
	Orders(ctx context.Context) ([]*model.Order, error)
	Order(ctx context.Context, id string) (*model.Order, error)
	CreateOrder(ctx context.Context, notes string, items []model.ProductQuantity, customerID *string) (*model.Order, *model.Payment, error)
	UpdateOrderStatus(ctx context.Context, id, status string) (*model.Order, error)
	DeleteOrder(ctx context.Context, id string) error
}

// HealthFacade reports readiness of backing services.
type HealthFacade interface {
	HealthCheck(ctx context.Context) error
}

// TokenFacade verifies identity tokens.
type TokenFacade interface {
	ParseToken(ctx context.Context, token string) (string, error)
}

// OrdersFacade aggregates the full set of operations used across handlers and middleware.
type OrdersFacade interface {
	OrderFacade
	HealthFacade
	TokenFacade
}
