package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	userIDKey  = "userId"
	isGuestKey = "isGuest"
)

// Identity derives the caller partition key. Signed-in clients send X-User-Id,
// anonymous browser sessions send X-Guest-Id, and anything else is keyed by client IP.
// The key only scopes history; it is not an authentication check.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch {
		case strings.TrimSpace(c.GetHeader("X-User-Id")) != "":
			c.Set(userIDKey, "user:"+strings.TrimSpace(c.GetHeader("X-User-Id")))
			c.Set(isGuestKey, false)
		case strings.TrimSpace(c.GetHeader("X-Guest-Id")) != "":
			c.Set(userIDKey, "guest:"+strings.TrimSpace(c.GetHeader("X-Guest-Id")))
			c.Set(isGuestKey, true)
		default:
			c.Set(userIDKey, "ip:"+c.ClientIP())
			c.Set(isGuestKey, true)
		}
		c.Next()
	}
}

// UserIDFromContext fetches the partition key set by Identity.
func UserIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(userIDKey)
	if id, ok := val.(string); ok {
		return id
	}
	return ""
}
