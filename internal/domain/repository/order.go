package repository

import (
	"context"

	"github.com/polkiloo/orders/internal/domain/model"
)

// OrderRepository persists orders.
// A missing order is reported as errors.ErrNotFound; every other storage
// failure is a DatabaseError.
type OrderRepository interface {
	FindAll(ctx context.Context) ([]*model.Order, error)
	FindByID(ctx context.Context, id string) (*model.Order, error)
	// Create assigns the identifier and timestamps and returns the stored order.
	Create(ctx context.Context, order *model.Order) (*model.Order, error)
	UpdateStatus(ctx context.Context, order *model.Order) (*model.Order, error)
	UpdatePaymentID(ctx context.Context, orderID string, paymentID int64) (*model.Order, error)
	Delete(ctx context.Context, id string) error
}
