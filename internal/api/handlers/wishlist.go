package handlers

import (
	"net/http"

	"collect-and-cruise/internal/models"
	"collect-and-cruise/internal/services"

	"github.com/gin-gonic/gin"
)

type wishlistRequest struct {
	ProductID string `json:"productId" binding:"required"`
}

type toggleResponse struct {
	Added    bool             `json:"added"`
	Wishlist []models.Product `json:"wishlist"`
}

type WishlistHandler struct {
	wishlist *services.WishlistService
}

func NewWishlistHandler(wishlist *services.WishlistService) *WishlistHandler {
	return &WishlistHandler{wishlist: wishlist}
}

func (h *WishlistHandler) Get(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}
	list, err := h.wishlist.Get(c.Request.Context(), user.ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *WishlistHandler) Add(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}
	var req wishlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, err)
		return
	}
	list, err := h.wishlist.Add(c.Request.Context(), user.ID, req.ProductID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, list)
}

func (h *WishlistHandler) Remove(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}
	list, err := h.wishlist.Remove(c.Request.Context(), user.ID, c.Param("productId"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *WishlistHandler) Toggle(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}
	var req wishlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, err)
		return
	}
	list, added, err := h.wishlist.Toggle(c.Request.Context(), user.ID, req.ProductID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toggleResponse{Added: added, Wishlist: list})
}
