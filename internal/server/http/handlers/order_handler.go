package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/orders/internal/domain/model"
	"github.com/polkiloo/orders/internal/server/http/dto"
)

// OrderHandler manages order-related endpoints.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// List handles GET /order.
func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.facade.Orders(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	response := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		response = append(response, toOrderResponse(o))
	}
	c.JSON(http.StatusOK, response)
}

// Get handles GET /order/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.facade.Order(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

// Create handles POST /order.
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body"})
		return
	}

	items := make([]model.ProductQuantity, 0, len(req.ProductsWithQuantity))
	for _, item := range req.ProductsWithQuantity {
		items = append(items, model.ProductQuantity{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	order, payment, err := h.facade.CreateOrder(c.Request.Context(), req.Notes, items, CurrentCustomerID(c))
	if err != nil {
		writeError(c, err)
		return
	}

	response := dto.CreateOrderResponse{
		OrderResponse: toOrderResponse(order),
		Payment: dto.PaymentResponse{
			ID:              payment.ID,
			PixQRCode:       payment.PixQRCode,
			PixQRCodeBase64: payment.PixQRCodeBase64,
		},
	}
	response.PaymentID = nil
	c.JSON(http.StatusOK, response)
}

// ChangeStatus handles PATCH /order/:id/change-status.
func (h *OrderHandler) ChangeStatus(c *gin.Context) {
	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body"})
		return
	}

	order, err := h.facade.UpdateOrderStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

// Delete handles DELETE /order/:id.
func (h *OrderHandler) Delete(c *gin.Context) {
	if err := h.facade.DeleteOrder(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
