package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/orders/internal/domain/errors"
	"github.com/polkiloo/orders/internal/domain/model"
	"github.com/polkiloo/orders/internal/server/http/dto"
	"github.com/polkiloo/orders/internal/server/http/middleware"
)

const internalServerError = "Internal Server Error"

// CurrentCustomerID extracts the authenticated customer identifier, nil for anonymous requests.
func CurrentCustomerID(c *gin.Context) *string {
	val, ok := c.Get(middleware.CustomerIDContextKey)
	if !ok {
		return nil
	}
	id, ok := val.(string)
	if !ok || id == "" {
		return nil
	}
	return &id
}

// writeError maps domain error kinds onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := internalServerError

	switch {
	case errors.Is(err, domainErrors.ErrInvalidOrder),
		errors.Is(err, domainErrors.ErrInvalidProduct),
		errors.Is(err, domainErrors.ErrInvalidCategory):
		status, message = http.StatusBadRequest, domainErrors.MessageOf(err)
	case errors.Is(err, domainErrors.ErrOrderNotFound):
		status, message = http.StatusNotFound, domainErrors.MessageOf(err)
	case errors.Is(err, domainErrors.ErrNotFound):
		status, message = http.StatusNotFound, "Order not found"
	case errors.Is(err, domainErrors.ErrInvalidPaymentOrderStatus),
		errors.Is(err, domainErrors.ErrCreatePayment),
		errors.Is(err, domainErrors.ErrReserveProducts):
		status, message = http.StatusConflict, domainErrors.MessageOf(err)
	case errors.Is(err, domainErrors.ErrDatabase):
		message = domainErrors.MessageOf(err)
	default:
		_ = c.Error(err)
	}

	c.AbortWithStatusJSON(status, dto.ErrorResponse{Message: message})
}

func toOrderResponse(order *model.Order) dto.OrderResponse {
	products := make([]dto.ProductResponse, 0, len(order.Products))
	for _, p := range order.Products {
		products = append(products, dto.ProductResponse{
			ID:          p.ID,
			CreatedAt:   p.CreatedAt,
			UpdatedAt:   p.UpdatedAt,
			Name:        p.Name,
			Price:       p.Price,
			Description: p.Description,
			Pictures:    p.Pictures,
			Category:    string(p.Category),
			Quantity:    p.Quantity,
		})
	}
	paymentID := order.PaymentID
	return dto.OrderResponse{
		ID:         order.ID,
		CreatedAt:  order.CreatedAt,
		UpdatedAt:  order.UpdatedAt,
		Notes:      order.Notes(),
		TrackingID: order.TrackingID,
		TotalPrice: order.TotalPrice,
		Status:     string(order.Status()),
		PaymentID:  &paymentID,
		CustomerID: order.CustomerID,
		Products:   products,
	}
}
