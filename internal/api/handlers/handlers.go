// Package handlers adapts the services to gin. Failures are recorded with
// c.Error and rendered by middleware.ErrorHandler.
package handlers

import (
	"collect-and-cruise/internal/api/middleware"
	"collect-and-cruise/internal/apperr"
	"collect-and-cruise/internal/models"

	"github.com/gin-gonic/gin"
)

type messageResponse struct {
	Message string `json:"message"`
}

func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// caller returns the authenticated account or records a 401.
func caller(c *gin.Context) (*models.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		fail(c, apperr.Unauthorized("Not authorized, no token"))
	}
	return user, ok
}
