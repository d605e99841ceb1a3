package routes

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/habitflow/backend/internal/api/handlers"
	"github.com/habitflow/backend/internal/api/middleware"
	"github.com/habitflow/backend/pkg/security/auth"
)

// HabitsRoutes handles the setup of habit-related routes
type HabitsRoutes struct {
	handler   *handlers.HabitsHandler
	jwtSecret string
	limiter   auth.RateLimiter
}

// NewHabitsRoutes creates a new HabitsRoutes instance
func NewHabitsRoutes(handler *handlers.HabitsHandler, jwtSecret string, limiter auth.RateLimiter) *HabitsRoutes {
	return &HabitsRoutes{
		handler:   handler,
		jwtSecret: jwtSecret,
		limiter:   limiter,
	}
}

// RegisterRoutes registers all habit-related routes
func (r *HabitsRoutes) RegisterRoutes(router *gin.Engine, cache *middleware.CacheMiddleware) {
	metrics := middleware.NewMetricsMiddleware()

	habits := router.Group("/api/habits")
	habits.Use(middleware.NewAuthMiddleware(r.jwtSecret))
	habits.Use(middleware.RateLimitMiddleware(r.limiter))
	habits.Use(metrics.CollectMetrics())

	// Read operations with caching
	habits.GET("", cache.CacheResponse(), gzip.Gzip(gzip.DefaultCompression), r.handler.ListHabits)
	habits.GET("/:habitId", cache.CacheResponse(), r.handler.GetHabit)

	// Write operations with cache invalidation. A habit write can shift every
	// derived view, including calendars that embed its slots, so all three
	// namespaces are cleared.
	habits.POST("", cache.CacheInvalidate("habits:*", "checkins:*", "days:*"), r.handler.CreateHabit)
	habits.PUT("/:habitId", cache.CacheInvalidate("habits:*", "checkins:*", "days:*"), r.handler.UpdateHabit)
	habits.DELETE("/:habitId", cache.CacheInvalidate("habits:*", "checkins:*", "days:*"), r.handler.DeleteHabit)
}
