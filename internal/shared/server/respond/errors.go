package respond

import (
	"github.com/gin-gonic/gin"

	"careerlift-backend/internal/shared/apperr"
	"careerlift-backend/internal/shared/telemetry"
)

// ErrorBody defines the standardized error object.
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// ErrorResponse wraps the error body.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// Error sends a standardized error response.
func Error(c *gin.Context, status int, code, message string, details interface{}) {
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if userID := c.GetString("userId"); userID != "" {
		fields["user_id"] = userID
	}
	if isGuest, ok := c.Get("isGuest"); ok {
		fields["is_guest"] = isGuest
	}
	telemetry.Error("http.error", fields)

	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// ErrorFrom maps a pipeline error to its status and code. Raw backend payloads are
// logged here and never reach the client.
func ErrorFrom(c *gin.Context, err error) {
	status, code := apperr.HTTPStatus(err)
	fields := map[string]any{
		"request_id": c.GetString("requestId"),
		"code":       code,
		"error":      err.Error(),
	}
	if raw := apperr.RawOf(err); raw != "" {
		fields["raw"] = truncate(raw, 4096)
	}
	telemetry.Error("pipeline.error", fields)
	Error(c, status, code, apperr.Message(err), nil)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
