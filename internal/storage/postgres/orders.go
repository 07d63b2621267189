package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/orders/internal/domain/errors"
	"github.com/polkiloo/orders/internal/domain/model"
)

const orderColumns = `id, created_at, updated_at, notes, tracking_id, total_price, status, payment_id, customer_id, products`

var newOrderID = uuid.NewString

type orderRepository struct {
	storage *Storage
}

func (r *orderRepository) FindAll(ctx context.Context) ([]*model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at`
	const failure = "Failed to find all orders"

	rows, err := r.storage.pool.Query(ctx, query)
	if err != nil {
		return nil, r.storage.dbError(ctx, failure, err)
	}
	defer rows.Close()

	var result []*model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, r.storage.dbError(ctx, failure, err)
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, r.storage.dbError(ctx, failure, err)
	}
	return result, nil
}

func (r *orderRepository) FindByID(ctx context.Context, id string) (*model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	return r.queryOne(ctx, "Failed to find order", query, id)
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) (*model.Order, error) {
	const query = `INSERT INTO orders (id, notes, tracking_id, total_price, status, payment_id, customer_id, products)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
                   RETURNING ` + orderColumns
	const failure = "Failed to create order"

	products, err := json.Marshal(productsOrEmpty(order.Products))
	if err != nil {
		return nil, r.storage.dbError(ctx, failure, err)
	}
	return r.queryOne(ctx, failure, query,
		newOrderID(), order.Notes(), order.TrackingID, order.TotalPrice, string(order.Status()), order.PaymentID, order.CustomerID, products)
}

func (r *orderRepository) UpdateStatus(ctx context.Context, order *model.Order) (*model.Order, error) {
	const query = `UPDATE orders SET status=$1, updated_at=NOW() WHERE id=$2 RETURNING ` + orderColumns
	return r.queryOne(ctx, "Failed to update order status", query, string(order.Status()), order.ID)
}

func (r *orderRepository) UpdatePaymentID(ctx context.Context, orderID string, paymentID int64) (*model.Order, error) {
	const query = `UPDATE orders SET payment_id=$1, updated_at=NOW() WHERE id=$2 RETURNING ` + orderColumns
	return r.queryOne(ctx, "Failed to update order payment id", query, paymentID, orderID)
}

func (r *orderRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM orders WHERE id=$1`
	tag, err := r.storage.pool.Exec(ctx, query, id)
	if err != nil {
		return r.storage.dbError(ctx, "Failed to delete order", err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *orderRepository) queryOne(ctx context.Context, failure, query string, args ...any) (*model.Order, error) {
	o, err := scanOrder(r.storage.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, r.storage.dbError(ctx, failure, err)
	}
	return o, nil
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var (
		rec      model.OrderRecord
		products []byte
	)
	if err := row.Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt, &rec.Notes, &rec.TrackingID, &rec.TotalPrice, &rec.Status, &rec.PaymentID, &rec.CustomerID, &products); err != nil {
		return nil, err
	}
	if len(products) > 0 {
		if err := json.Unmarshal(products, &rec.Products); err != nil {
			return nil, err
		}
	}
	return model.RestoreOrder(rec)
}

func productsOrEmpty(products []model.Product) []model.Product {
	if products == nil {
		return []model.Product{}
	}
	return products
}
