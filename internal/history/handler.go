package history

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"careerlift-backend/internal/shared/server/middleware"
	"careerlift-backend/internal/shared/server/respond"
)

// Handler exposes the caller's analysis history.
type Handler struct {
	Repo Repo
}

// NewHandler constructs a handler.
func NewHandler(repo Repo) *Handler {
	return &Handler{Repo: repo}
}

// RegisterRoutes wires routes under the provided group.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/analyses", h.list)
	r.GET("/analyses/latest", h.latest)
}

func (h *Handler) list(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	items, err := h.Repo.ListByOwner(c.Request.Context(), middleware.UserIDFromContext(c), limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Failed to load analyses", nil)
		return
	}
	respond.OK(c, gin.H{"items": items, "count": len(items)})
}

func (h *Handler) latest(c *gin.Context) {
	rec, err := h.Repo.Latest(c.Request.Context(), middleware.UserIDFromContext(c))
	if errors.Is(err, ErrNotFound) {
		respond.Error(c, http.StatusNotFound, "not_found", "No analyses yet", nil)
		return
	}
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Failed to load analysis", nil)
		return
	}
	respond.OK(c, rec)
}
