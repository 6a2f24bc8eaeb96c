// Package httpx holds shared gin middleware for the market service.
//
// Identity is request-scoped: the auth layer in front of this service
// resolves the session and injects the caller's id as X-User-ID. Nothing
// here reads ambient session state.
package httpx

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const userKey = "uid"

func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if uid := c.GetHeader("X-User-ID"); uid != "" {
			c.Set(userKey, uid)
		}
		c.Next()
	}
}

// UserID returns the authenticated caller's id, or "" for anonymous requests.
func UserID(c *gin.Context) string {
	return c.GetString(userKey)
}

// RequireUser aborts with 401 when no identity was injected.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if UserID(c) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}
