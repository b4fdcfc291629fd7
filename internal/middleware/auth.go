package middleware

import (
	"net/http"
	"strings"

	"github.com/courierlab/messenger-backend/internal/common"
	"github.com/courierlab/messenger-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
)

const (
	ctxUserID        = "userID"
	ctxNickname      = "nickname"
	ctxAuthenticated = "authenticated"
)

// BearerAuth extracts identity from an Authorization bearer token.
// Verification failure does not abort the request (optional auth);
// handlers that need identity use RequireAuth behind it.
func BearerAuth(manager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.Next()
			return
		}

		claims, err := manager.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.Next()
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxNickname, claims.Nickname)
		c.Set(ctxAuthenticated, true)
		c.Next()
	}
}

// RequireAuth rejects requests without a verified identity
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAuthenticated(c) {
			common.ErrorResponse(c, http.StatusUnauthorized, "authentication required", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetUserID returns the authenticated user's ID, 0 when anonymous
func GetUserID(c *gin.Context) uint64 {
	if v, ok := c.Get(ctxUserID); ok {
		if id, ok := v.(uint64); ok {
			return id
		}
	}
	return 0
}

// IsAuthenticated reports whether the request carries a verified identity
func IsAuthenticated(c *gin.Context) bool {
	v, ok := c.Get(ctxAuthenticated)
	if !ok {
		return false
	}
	authenticated, _ := v.(bool)
	return authenticated
}
