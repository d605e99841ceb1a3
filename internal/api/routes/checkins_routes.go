package routes

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/habitflow/backend/internal/api/handlers"
	"github.com/habitflow/backend/internal/api/middleware"
	"github.com/habitflow/backend/pkg/security/auth"
)

// CheckinsRoutes handles the setup of ledger and analytics routes
type CheckinsRoutes struct {
	handler   *handlers.CheckinsHandler
	jwtSecret string
	limiter   auth.RateLimiter
}

// NewCheckinsRoutes creates a new CheckinsRoutes instance
func NewCheckinsRoutes(handler *handlers.CheckinsHandler, jwtSecret string, limiter auth.RateLimiter) *CheckinsRoutes {
	return &CheckinsRoutes{
		handler:   handler,
		jwtSecret: jwtSecret,
		limiter:   limiter,
	}
}

// RegisterRoutes registers the per-habit ledger routes and the user-level
// analytics routes
func (r *CheckinsRoutes) RegisterRoutes(router *gin.Engine, cache *middleware.CacheMiddleware) {
	metrics := middleware.NewMetricsMiddleware()

	// Per-habit ledger and analytics
	habitCheckins := router.Group("/api/habits/:habitId/checkins")
	habitCheckins.Use(middleware.NewAuthMiddleware(r.jwtSecret))
	habitCheckins.Use(middleware.RateLimitMiddleware(r.limiter))
	habitCheckins.Use(metrics.CollectMetrics())

	// Read operations with caching; heatmaps and trends compress well
	habitCheckins.GET("", cache.CacheResponse(), gzip.Gzip(gzip.DefaultCompression), r.handler.ListCheckins)
	habitCheckins.GET("/stats", cache.CacheResponse(), gzip.Gzip(gzip.DefaultCompression), r.handler.GetHabitStats)
	habitCheckins.GET("/streak", cache.CacheResponse(), r.handler.GetStreakDetail)
	habitCheckins.GET("/heatmap", cache.CacheResponse(), gzip.Gzip(gzip.DefaultCompression), r.handler.GetHeatmap)
	habitCheckins.GET("/trend", cache.CacheResponse(), gzip.Gzip(gzip.DefaultCompression), r.handler.GetTrend)

	// Ledger mutations invalidate the habit summaries and analytics derived
	// from them
	habitCheckins.POST("", cache.CacheInvalidate("habits:*", "checkins:*"), r.handler.RecordCheckin)
	habitCheckins.POST("/toggle", cache.CacheInvalidate("habits:*", "checkins:*"), r.handler.ToggleCheckin)
	habitCheckins.PUT("/:checkinId", cache.CacheInvalidate("habits:*", "checkins:*"), r.handler.UpdateCheckin)
	habitCheckins.DELETE("/:checkinId", cache.CacheInvalidate("habits:*", "checkins:*"), r.handler.DeleteCheckin)

	// User-level views across all habits
	checkins := router.Group("/api/checkins")
	checkins.Use(middleware.NewAuthMiddleware(r.jwtSecret))
	checkins.Use(middleware.RateLimitMiddleware(r.limiter))
	checkins.Use(metrics.CollectMetrics())

	checkins.GET("", cache.CacheResponse(), gzip.Gzip(gzip.DefaultCompression), r.handler.ListMonthCheckins)
	checkins.GET("/insights", cache.CacheResponse(), gzip.Gzip(gzip.DefaultCompression), r.handler.GetInsights)
}
