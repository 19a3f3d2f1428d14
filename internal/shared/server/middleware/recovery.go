package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"careerlift-backend/internal/shared/server/respond"
	"careerlift-backend/internal/shared/telemetry"
)

// Recovery turns a handler panic into a 500 envelope and logs the caller identity and
// the pipeline operation, when either is known.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			fields := map[string]any{
				"request_id": RequestIDFromContext(c),
				"user_id":    UserIDFromContext(c),
				"route":      c.FullPath(),
				"panic":      fmt.Sprint(rec),
				"stack":      string(debug.Stack()),
			}
			if op, ok := c.Get(OpKey); ok {
				fields["op"] = op
			}
			telemetry.Error("http.panic", fields)
			if !c.Writer.Written() {
				respond.Error(c, http.StatusInternalServerError, "internal_error", "Unexpected server error", nil)
			}
			c.Abort()
		}()
		c.Next()
	}
}
