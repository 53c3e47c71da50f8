package handlers

import (
	"net/http"

	"collect-and-cruise/internal/services"

	"github.com/gin-gonic/gin"
)

type credentials struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthHandler struct {
	auth *services.AuthService
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, err)
		return
	}
	info, err := h.auth.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, info)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, err)
		return
	}
	info, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// Profile returns the caller's identity fields.
func (h *AuthHandler) Profile(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"_id":     user.ID,
		"email":   user.Email,
		"isAdmin": user.IsAdmin,
	})
}
