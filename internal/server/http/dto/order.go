package dto

import "time"

// ProductQuantityRequest is a requested line item.
type ProductQuantityRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// CreateOrderRequest describes order placement payload.
type CreateOrderRequest struct {
	Notes                string                   `json:"notes"`
	ProductsWithQuantity []ProductQuantityRequest `json:"productsWithQuantity"`
}

// UpdateStatusRequest describes status change payload.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type ProductResponse struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	Description string    `json:"description"`
	Pictures    []string  `json:"pictures"`
	Category    string    `json:"category"`
	Quantity    int       `json:"quantity"`
}

// OrderResponse is the public representation of an order.
// PaymentID is omitted from the creation response, which carries the payment instead.
type OrderResponse struct {
	ID         string            `json:"id"`
	CreatedAt  time.Time         `json:"createdAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`
	Notes      string            `json:"notes"`
	TrackingID int64             `json:"trackingId"`
	TotalPrice float64           `json:"totalPrice"`
	Status     string            `json:"status"`
	PaymentID  *int64            `json:"paymentId,omitempty"`
	CustomerID *string           `json:"customerId"`
	Products   []ProductResponse `json:"products"`
}

type PaymentResponse struct {
	ID              int64  `json:"id"`
	PixQRCode       string `json:"pixQrCode"`
	PixQRCodeBase64 string `json:"pixQrCodeBase64"`
}

// CreateOrderResponse is returned by order placement.
type CreateOrderResponse struct {
	OrderResponse
	Payment PaymentResponse `json:"payment"`
}
