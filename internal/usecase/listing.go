package usecase

import (
	"slices"

	"github.com/polkiloo/orders/internal/domain/model"
)

const lowestStatusPriority = 4

// statusPriority ranks statuses for the kitchen queue. Statuses without a
// dedicated rank share the lowest one.
func statusPriority(status model.OrderStatus) int {
	switch status {
	case model.OrderStatusDone:
		return 1
	case model.OrderStatusInProgress:
		return 2
	case model.OrderStatusAwaiting:
		return 3
	default:
		return lowestStatusPriority
	}
}

// FilterAndSortOrders drops finished orders and orders the rest by status
// priority, then by creation time, oldest first.
func FilterAndSortOrders(orders []*model.Order) []*model.Order {
	active := make([]*model.Order, 0, len(orders))
	for _, o := range orders {
		if o.Status() != model.OrderStatusFinished {
			active = append(active, o)
		}
	}

	slices.SortStableFunc(active, func(a, b *model.Order) int {
		if d := statusPriority(a.Status()) - statusPriority(b.Status()); d != 0 {
			return d
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return active
}
