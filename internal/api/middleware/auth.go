package middleware

import (
	"context"
	"strings"

	"collect-and-cruise/internal/apperr"
	"collect-and-cruise/internal/models"

	"github.com/gin-gonic/gin"
)

const userKey = "user"

// Authenticator resolves a bearer token to the account it was issued for.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// Protect requires "Authorization: Bearer <token>" and stores the caller
// in the context.
func Protect(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			abort(c, apperr.Unauthorized("Not authorized, no token"))
			return
		}
		user, err := auth.Authenticate(c.Request.Context(), strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			abort(c, err)
			return
		}
		c.Set(userKey, user)
		c.Next()
	}
}

// AdminOnly must run after Protect.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok || !user.IsAdmin {
			abort(c, apperr.Forbidden("Not authorized as admin"))
			return
		}
		c.Next()
	}
}

// CurrentUser returns the account set by Protect.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok && user != nil
}

func abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
