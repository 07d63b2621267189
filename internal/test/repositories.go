package test

import (
	"context"
	"fmt"
	"sync"
	"time"

	domainErrors "github.com/polkiloo/orders/internal/domain/errors"
	"github.com/polkiloo/orders/internal/domain/model"
)

// OrderRepositoryStub keeps orders in memory. Stored values are copies, so
// callers mutating a returned order do not change the stored one.
type OrderRepositoryStub struct {
	mu     sync.Mutex
	orders map[string]*model.Order
	order  []string
	next   int

	FindAllErr         error
	FindErr            error
	CreateErr          error
	UpdateStatusErr    error
	UpdatePaymentIDErr error
	DeleteErr          error

	Deleted       []string
	StatusUpdates int
}

// NewOrderRepositoryStub returns a repository seeded with the given orders.
func NewOrderRepositoryStub(seed ...*model.Order) *OrderRepositoryStub {
	s := &OrderRepositoryStub{orders: make(map[string]*model.Order)}
	for _, o := range seed {
		s.put(o)
	}
	return s
}

func (s *OrderRepositoryStub) put(o *model.Order) {
	if s.orders == nil {
		s.orders = make(map[string]*model.Order)
	}
	if _, ok := s.orders[o.ID]; !ok {
		s.order = append(s.order, o.ID)
	}
	s.orders[o.ID] = cloneOrder(o)
}

// Get returns a copy of the stored order.
func (s *OrderRepositoryStub) Get(id string) (*model.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, false
	}
	return cloneOrder(o), true
}

// Len reports the number of stored orders.
func (s *OrderRepositoryStub) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

func (s *OrderRepositoryStub) FindAll(ctx context.Context) ([]*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FindAllErr != nil {
		return nil, s.FindAllErr
	}
	result := make([]*model.Order, 0, len(s.orders))
	for _, id := range s.order {
		if o, ok := s.orders[id]; ok {
			result = append(result, cloneOrder(o))
		}
	}
	return result, nil
}

func (s *OrderRepositoryStub) FindByID(ctx context.Context, id string) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FindErr != nil {
		return nil, s.FindErr
	}
	o, ok := s.orders[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return cloneOrder(o), nil
}

func (s *OrderRepositoryStub) Create(ctx context.Context, order *model.Order) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CreateErr != nil {
		return nil, s.CreateErr
	}
	s.next++
	stored := cloneOrder(order)
	stored.ID = fmt.Sprintf("order-%d", s.next)
	s.put(stored)
	return cloneOrder(stored), nil
}

func (s *OrderRepositoryStub) UpdateStatus(ctx context.Context, order *model.Order) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.UpdateStatusErr != nil {
		return nil, s.UpdateStatusErr
	}
	stored, ok := s.orders[order.ID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	if err := stored.SetStatus(string(order.Status())); err != nil {
		return nil, err
	}
	stored.UpdatedAt = time.Now()
	s.StatusUpdates++
	return cloneOrder(stored), nil
}

func (s *OrderRepositoryStub) UpdatePaymentID(ctx context.Context, orderID string, paymentID int64) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.UpdatePaymentIDErr != nil {
		return nil, s.UpdatePaymentIDErr
	}
	stored, ok := s.orders[orderID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	stored.PaymentID = paymentID
	stored.UpdatedAt = time.Now()
	return cloneOrder(stored), nil
}

func (s *OrderRepositoryStub) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Deleted = append(s.Deleted, id)
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	delete(s.orders, id)
	return nil
}

// MustOrder builds a persisted order or panics; test fixtures only.
func MustOrder(id string, status model.OrderStatus, createdAt time.Time) *model.Order {
	o, err := model.RestoreOrder(model.OrderRecord{
		ID:        id,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
		Status:    string(status),
	})
	if err != nil {
		panic(err)
	}
	return o
}

func cloneOrder(o *model.Order) *model.Order {
	c := *o
	return &c
}
