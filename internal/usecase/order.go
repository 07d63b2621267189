package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	domainErrors "github.com/polkiloo/orders/internal/domain/errors"
	"github.com/polkiloo/orders/internal/domain/gateway"
	"github.com/polkiloo/orders/internal/domain/model"
	"github.com/polkiloo/orders/internal/domain/repository"
)

const tracerName = "github.com/polkiloo/orders/internal/usecase"

// CreateOrderInput is a request to place an order.
type CreateOrderInput struct {
	Notes      string
	Items      []model.ProductQuantity
	CustomerID *string
}

// OrderWithPayment is the result of a successful order creation.
type OrderWithPayment struct {
	Order   *model.Order
	Payment *model.Payment
}

// OrderUseCase drives the order lifecycle across storage, stock reservation and payments.
type OrderUseCase struct {
	orders   repository.OrderRepository
	products gateway.ProductReserver
	payments gateway.PaymentCreator
	logger   *slog.Logger
	tracer   trace.Tracer
	now      func() time.Time
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(orders repository.OrderRepository, products gateway.ProductReserver, payments gateway.PaymentCreator, logger *slog.Logger) *OrderUseCase {
	return &OrderUseCase{
		orders:   orders,
		products: products,
		payments: payments,
		logger:   logger,
		tracer:   otel.Tracer(tracerName),
		now:      time.Now,
	}
}

// FindAll returns the active order queue.
func (u *OrderUseCase) FindAll(ctx context.Context) ([]*model.Order, error) {
	orders, err := u.orders.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return FilterAndSortOrders(orders), nil
}

func (u *OrderUseCase) FindByID(ctx context.Context, id string) (*model.Order, error) {
	return u.find(ctx, id)
}

// Create reserves products, stores a payment-pending order and requests its payment.
// When the payment request fails the stored order is deleted and the payment error returned.
func (u *OrderUseCase) Create(ctx context.Context, in CreateOrderInput) (result *OrderWithPayment, err error) {
	ctx, span := u.tracer.Start(ctx, "orders.create")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if err := validateCreateInput(in); err != nil {
		return nil, err
	}

	products, err := u.products.Reserve(ctx, in.Items)
	if err != nil {
		return nil, err
	}
	span.AddEvent("products reserved", trace.WithAttributes(attribute.Int("products", len(products))))

	total := model.TotalPrice(products)
	draft, err := model.NewOrder(in.Notes, total, products, in.CustomerID, u.now())
	if err != nil {
		return nil, err
	}

	created, err := u.orders.Create(ctx, draft)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("order.id", created.ID))

	payment, err := u.payments.CreatePayment(ctx, created.ID, total)
	if err != nil {
		u.compensate(ctx, created.ID, err)
		return nil, err
	}
	span.AddEvent("payment created", trace.WithAttributes(attribute.Int64("payment.id", payment.ID)))

	linked, err := u.orders.UpdatePaymentID(ctx, created.ID, payment.ID)
	if err != nil {
		return nil, err
	}

	return &OrderWithPayment{Order: linked, Payment: payment}, nil
}

func (u *OrderUseCase) compensate(ctx context.Context, orderID string, cause error) {
	if err := u.orders.Delete(ctx, orderID); err != nil {
		u.logger.ErrorContext(ctx, "compensating delete failed, order left without payment",
			slog.String("order_id", orderID),
			slog.String("payment_error", cause.Error()),
			slog.String("error", err.Error()),
		)
		return
	}
	u.logger.WarnContext(ctx, "order deleted after payment failure",
		slog.String("order_id", orderID),
		slog.String("payment_error", cause.Error()),
	)
}

// Update sets a new status on an existing order.
func (u *OrderUseCase) Update(ctx context.Context, id, status string) (*model.Order, error) {
	order, err := u.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := order.SetStatus(status); err != nil {
		return nil, err
	}
	return u.orders.UpdateStatus(ctx, order)
}

// ReconcilePayment applies an asynchronous payment outcome to a payment-pending order.
// A repeated notification fails with ErrInvalidPaymentOrderStatus.
func (u *OrderUseCase) ReconcilePayment(ctx context.Context, orderID string, success bool) error {
	order, err := u.find(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Status() != model.OrderStatusPaymentPending {
		return domainErrors.New(domainErrors.ErrInvalidPaymentOrderStatus, "Order status is not payment pending")
	}

	next := model.OrderStatusPaymentFailed
	if success {
		next = model.OrderStatusAwaiting
	}
	if err := order.SetStatus(string(next)); err != nil {
		return err
	}

	if _, err := u.orders.UpdateStatus(ctx, order); err != nil {
		return err
	}
	return nil
}

func (u *OrderUseCase) Delete(ctx context.Context, id string) error {
	if _, err := u.find(ctx, id); err != nil {
		return err
	}
	return u.orders.Delete(ctx, id)
}

func (u *OrderUseCase) find(ctx context.Context, id string) (*model.Order, error) {
	order, err := u.orders.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, domainErrors.New(domainErrors.ErrOrderNotFound, "Order not found")
		}
		return nil, err
	}
	return order, nil
}

func validateCreateInput(in CreateOrderInput) error {
	if len(in.Items) == 0 {
		return domainErrors.New(domainErrors.ErrInvalidOrder, "Order must have at least one product")
	}
	for _, item := range in.Items {
		if item.Quantity <= 0 {
			return domainErrors.New(domainErrors.ErrInvalidOrder, "Product quantity must be greater than 0")
		}
	}
	return model.ValidateNotes(in.Notes)
}
