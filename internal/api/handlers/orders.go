package handlers

import (
	"net/http"

	"collect-and-cruise/internal/services"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	orders *services.OrderService
}

func NewOrderHandler(orders *services.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// Checkout places a paid order for everything in the caller's cart.
func (h *OrderHandler) Checkout(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}
	order, err := h.orders.Checkout(c.Request.Context(), user.ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) List(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}
	orders, err := h.orders.List(c.Request.Context(), user.ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) Get(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}
	order, err := h.orders.Get(c.Request.Context(), user.ID, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) HasPurchased(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}
	bought, err := h.orders.HasPurchased(c.Request.Context(), user.ID, c.Param("productId"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hasPurchased": bought})
}
