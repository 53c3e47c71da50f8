package handlers

import (
	"net/http"

	"collect-and-cruise/internal/services"

	"github.com/gin-gonic/gin"
)

type updateUserRequest struct {
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
}

type UserHandler struct {
	admin *services.AdminService
}

func NewUserHandler(admin *services.AdminService) *UserHandler {
	return &UserHandler{admin: admin}
}

func (h *UserHandler) List(c *gin.Context) {
	users, err := h.admin.ListUsers(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.admin.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Update(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, err)
		return
	}
	user, err := h.admin.UpdateUser(c.Request.Context(), c.Param("id"), req.Email, req.IsAdmin)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"_id":     user.ID,
		"email":   user.Email,
		"isAdmin": user.IsAdmin,
	})
}

func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.admin.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: "User deleted successfully"})
}
