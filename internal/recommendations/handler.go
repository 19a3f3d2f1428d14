package recommendations

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"careerlift-backend/internal/shared/server/respond"
)

// Handler serves the curated recommendation catalog.
type Handler struct{}

// NewHandler constructs a handler.
func NewHandler() *Handler { return &Handler{} }

// RegisterRoutes wires routes under the provided group.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/recommendations/details", h.details)
}

func (h *Handler) details(c *gin.Context) {
	typ := strings.TrimSpace(c.Query("type"))
	items, ok := Details(typ)
	if !ok {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Invalid type parameter.", gin.H{"allowed": Types()})
		return
	}
	respond.OK(c, gin.H{"type": typ, "items": items})
}
