package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"careerlift-backend/internal/catalog"
	"careerlift-backend/internal/history"
	"careerlift-backend/internal/pipeline"
	"careerlift-backend/internal/recommendations"
	"careerlift-backend/internal/shared/config"
	"careerlift-backend/internal/shared/metrics"
	"careerlift-backend/internal/shared/server/middleware"
	"careerlift-backend/internal/shared/server/respond"
)

const (
	banner          = "CareerLift AI backend is running."
	generationGroup = "GENERATION"
)

// RouterDeps carries the handlers mounted by NewRouter. Nil handlers are skipped.
type RouterDeps struct {
	Config                 config.Config
	PipelineHandler        *pipeline.Handler
	HistoryHandler         *history.Handler
	CatalogHandler         *catalog.Handler
	RecommendationsHandler *recommendations.Handler
	RateLimiter            *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Identity(),
	)

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, banner)
	})
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		respond.OK(c, gin.H{"ok": true})
	})

	if deps.PipelineHandler != nil {
		gen := api.Group("")
		gen.Use(middleware.RateLimit(deps.RateLimiter, generationGroup, middleware.RateLimitRule{
			Rate:  deps.Config.RateLimitRPS,
			Burst: deps.Config.RateLimitBurst,
		}))
		deps.PipelineHandler.RegisterGeneration(gen)
		deps.PipelineHandler.RegisterJobs(api)
	}
	if deps.HistoryHandler != nil {
		deps.HistoryHandler.RegisterRoutes(api)
	}
	if deps.CatalogHandler != nil {
		deps.CatalogHandler.RegisterRoutes(api)
	}
	if deps.RecommendationsHandler != nil {
		deps.RecommendationsHandler.RegisterRoutes(api)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":4000"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
