package handlers

import (
	"net/http"

	"collect-and-cruise/internal/models"
	"collect-and-cruise/internal/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type cartItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Qty       int    `json:"qty"`
}

type mergeRequest struct {
	Items []cartItemRequest `json:"items"`
}

type CartHandler struct {
	cart *services.CartService
}

func NewCartHandler(cart *services.CartService) *CartHandler {
	return &CartHandler{cart: cart}
}

func (h *CartHandler) Get(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}
	lines, err := h.cart.Get(c.Request.Context(), user.ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, lines)
}

// Add sets the quantity of a product in the caller's cart.
func (h *CartHandler) Add(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}
	var req cartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, err)
		return
	}
	lines, err := h.cart.Add(c.Request.Context(), user.ID, req.ProductID, req.Qty)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, lines)
}

func (h *CartHandler) Remove(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}
	lines, err := h.cart.Remove(c.Request.Context(), user.ID, c.Param("productId"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, lines)
}

// Merge folds a guest cart into the caller's cart. Entries with malformed
// product ids are dropped like entries for deleted products.
func (h *CartHandler) Merge(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}
	var req mergeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, err)
		return
	}
	local := make([]models.CartItem, 0, len(req.Items))
	for _, it := range req.Items {
		id, err := primitive.ObjectIDFromHex(it.ProductID)
		if err != nil {
			continue
		}
		local = append(local, models.CartItem{Product: id, Qty: it.Qty})
	}
	lines, err := h.cart.Merge(c.Request.Context(), user.ID, local)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, lines)
}
