package model

import (
	"math"
	"time"
	"unicode/utf8"

	domainErrors "github.com/polkiloo/orders/internal/domain/errors"
)

// OrderStatus describes the order lifecycle.
type OrderStatus string

const (
	OrderStatusAwaiting       OrderStatus = "AWAITING"
	OrderStatusInProgress     OrderStatus = "IN_PROGRESS"
	OrderStatusDone           OrderStatus = "DONE"
	OrderStatusFinished       OrderStatus = "FINISHED"
	OrderStatusCancelled      OrderStatus = "CANCELLED"
	OrderStatusPaymentPending OrderStatus = "PAYMENT_PENDING"
	OrderStatusPaymentFailed  OrderStatus = "PAYMENT_FAILED"
)

const (
	MaxNotesLength = 50

	invalidStatusMessage = "Status must be AWAITING, IN_PROGRESS, DONE, FINISHED or CANCELLED"
	invalidNotesMessage  = "Notes size must be lesser than 50"
)

var orderStatuses = map[OrderStatus]struct{}{
	OrderStatusAwaiting:       {},
	OrderStatusInProgress:     {},
	OrderStatusDone:           {},
	OrderStatusFinished:       {},
	OrderStatusCancelled:      {},
	OrderStatusPaymentPending: {},
	OrderStatusPaymentFailed:  {},
}

// ParseOrderStatus returns the status matching value exactly.
func ParseOrderStatus(value string) (OrderStatus, error) {
	status := OrderStatus(value)
	if _, ok := orderStatuses[status]; !ok {
		return "", domainErrors.New(domainErrors.ErrInvalidOrder, invalidStatusMessage)
	}
	return status, nil
}

// ValidateNotes checks the notes length limit.
func ValidateNotes(notes string) error {
	if utf8.RuneCountInString(notes) > MaxNotesLength {
		return domainErrors.New(domainErrors.ErrInvalidOrder, invalidNotesMessage)
	}
	return nil
}

// Order is a customer order with its reserved line items.
// Status and notes change only through SetStatus and SetNotes.
type Order struct {
	ID         string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	TrackingID int64
	TotalPrice float64
	PaymentID  int64
	Products   []Product
	CustomerID *string

	notes  string
	status OrderStatus
}

// NewOrder builds an unpersisted order awaiting payment.
func NewOrder(notes string, totalPrice float64, products []Product, customerID *string, now time.Time) (*Order, error) {
	order := &Order{
		CreatedAt:  now,
		UpdatedAt:  now,
		TotalPrice: totalPrice,
		Products:   products,
		CustomerID: customerID,
		status:     OrderStatusPaymentPending,
	}
	if err := order.SetNotes(notes); err != nil {
		return nil, err
	}
	return order, nil
}

// OrderRecord carries stored order values before validation.
type OrderRecord struct {
	ID         string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Notes      string
	TrackingID int64
	TotalPrice float64
	Status     string
	PaymentID  int64
	Products   []Product
	CustomerID *string
}

// RestoreOrder rebuilds a persisted order, applying the same invariants as NewOrder.
func RestoreOrder(r OrderRecord) (*Order, error) {
	order := &Order{
		ID:         r.ID,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
		TrackingID: r.TrackingID,
		TotalPrice: r.TotalPrice,
		PaymentID:  r.PaymentID,
		Products:   r.Products,
		CustomerID: r.CustomerID,
	}
	if err := order.SetNotes(r.Notes); err != nil {
		return nil, err
	}
	if err := order.SetStatus(r.Status); err != nil {
		return nil, err
	}
	return order, nil
}

func (o *Order) Status() OrderStatus { return o.status }

func (o *Order) Notes() string { return o.notes }

// SetStatus accepts only members of the closed status set.
func (o *Order) SetStatus(value string) error {
	status, err := ParseOrderStatus(value)
	if err != nil {
		return err
	}
	o.status = status
	return nil
}

func (o *Order) SetNotes(notes string) error {
	if err := ValidateNotes(notes); err != nil {
		return err
	}
	o.notes = notes
	return nil
}

// TotalPrice sums price times reserved quantity, rounded to cents.
func TotalPrice(products []Product) float64 {
	var total float64
	for _, p := range products {
		total += p.Price * float64(p.Quantity)
	}
	return math.Round(total*100) / 100
}
