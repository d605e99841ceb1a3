package routes

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/habitflow/backend/internal/api/handlers"
	"github.com/habitflow/backend/internal/api/middleware"
	"github.com/habitflow/backend/pkg/security/auth"
)

// DaysRoutes handles the setup of day and calendar routes
type DaysRoutes struct {
	handler   *handlers.DaysHandler
	jwtSecret string
	limiter   auth.RateLimiter
}

// NewDaysRoutes creates a new DaysRoutes instance
func NewDaysRoutes(handler *handlers.DaysHandler, jwtSecret string, limiter auth.RateLimiter) *DaysRoutes {
	return &DaysRoutes{
		handler:   handler,
		jwtSecret: jwtSecret,
		limiter:   limiter,
	}
}

// RegisterRoutes registers all day-related routes
func (r *DaysRoutes) RegisterRoutes(router *gin.Engine, cache *middleware.CacheMiddleware) {
	metrics := middleware.NewMetricsMiddleware()

	days := router.Group("/api/days")
	days.Use(middleware.NewAuthMiddleware(r.jwtSecret))
	days.Use(middleware.RateLimitMiddleware(r.limiter))
	days.Use(metrics.CollectMetrics())

	// Read operations with caching; the calendar is the heaviest payload
	days.GET("", cache.CacheResponse(), gzip.Gzip(gzip.DefaultCompression), r.handler.ListDays)
	days.GET("/calendar", cache.CacheResponse(), gzip.Gzip(gzip.DefaultCompression), r.handler.GetMonthlyCalendar)
	days.GET("/:dayId", cache.CacheResponse(), r.handler.GetDay)

	// Day-level writes only touch the day view
	days.POST("", cache.CacheInvalidate("days:*"), r.handler.CreateDay)
	days.PUT("/:dayId", cache.CacheInvalidate("days:*"), r.handler.UpdateDay)
	days.DELETE("/:dayId", cache.CacheInvalidate("days:*"), r.handler.DeleteDay)

	// Habit slots. Checking one writes through to the ledger, so habit and
	// checkin views go stale too.
	days.POST("/:dayId/habits", cache.CacheInvalidate("days:*"), r.handler.AddHabitToDay)
	days.PUT("/:dayId/habits/:habitId", cache.CacheInvalidate("habits:*", "checkins:*", "days:*"), r.handler.CheckHabitInDay)
	days.DELETE("/:dayId/habits/:habitId", cache.CacheInvalidate("days:*"), r.handler.RemoveHabitFromDay)
}
