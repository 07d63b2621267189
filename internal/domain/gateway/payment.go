package gateway

import (
	"context"

	"github.com/polkiloo/orders/internal/domain/model"
)

// PaymentCreator requests a charge for an order. Failures are CreatePaymentError.
type PaymentCreator interface {
	CreatePayment(ctx context.Context, orderID string, price float64) (*model.Payment, error)
}
