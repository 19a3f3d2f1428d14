package catalog

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"careerlift-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/catalog/courses")
	g.GET("", h.list)
	g.POST("", h.create)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.remove)
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.Svc.List(c.Request.Context(), c.Query("category"))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Failed to load courses", nil)
		return
	}
	respond.OK(c, gin.H{"courses": items, "count": len(items)})
}

func (h *Handler) create(c *gin.Context) {
	var in Input
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Invalid JSON body", nil)
		return
	}
	course, err := h.Svc.Create(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.Created(c, course)
}

func (h *Handler) update(c *gin.Context) {
	var in Input
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Invalid JSON body", nil)
		return
	}
	course, err := h.Svc.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, course)
}

func (h *Handler) remove(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	respond.NoContent(c)
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalid):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "Course not found", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Failed to save course", nil)
	}
}
