package gateway

import (
	"context"

	"github.com/polkiloo/orders/internal/domain/model"
)

// ProductReserver reserves stock and returns priced product snapshots.
// Failures are ReserveProductsError.
type ProductReserver interface {
	Reserve(ctx context.Context, items []model.ProductQuantity) ([]model.Product, error)
}
