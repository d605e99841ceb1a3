package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/habitflow/backend/internal/infrastructure/cache"
	"github.com/habitflow/backend/internal/infrastructure/persistence/postgres/connection"
)

// HealthResponse represents the health check response structure
type HealthResponse struct {
	Status    string            `json:"status" example:"healthy"`
	Timestamp time.Time         `json:"timestamp" example:"2026-01-01T02:00:00Z"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// SetupHealthRoutes registers health check endpoints
func SetupHealthRoutes(router *gin.Engine, db *connection.Database, redis *cache.RedisClient) {
	// @Summary Health check endpoint
	// @Description Get the current health status of the API and its backing stores
	// @Tags health
	// @Produce json
	// @Success 200 {object} HealthResponse
	// @Failure 503 {object} HealthResponse
	// @Router /health [get]
	router.GET("/health", func(c *gin.Context) {
		checks := map[string]string{
			"database": "healthy",
			"cache":    "healthy",
		}
		status := "healthy"
		code := http.StatusOK

		if sqlDB, err := db.DB.DB(); err != nil {
			checks["database"] = err.Error()
			status = "unhealthy"
			code = http.StatusServiceUnavailable
		} else if err := sqlDB.PingContext(c.Request.Context()); err != nil {
			checks["database"] = err.Error()
			status = "unhealthy"
			code = http.StatusServiceUnavailable
		}

		// Cache trouble is reported but does not flip overall status.
		if redis != nil {
			if err := redis.HealthCheck(c.Request.Context()); err != nil {
				checks["cache"] = err.Error()
			}
		} else {
			checks["cache"] = "disabled"
		}

		c.JSON(code, HealthResponse{
			Status:    status,
			Timestamp: time.Now().UTC(),
			Checks:    checks,
		})
	})

	// @Summary Readiness check endpoint
	// @Description Get the current readiness status of the API
	// @Tags health
	// @Produce json
	// @Success 200 {object} HealthResponse
	// @Router /health/ready [get]
	router.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, HealthResponse{
			Status:    "ready",
			Timestamp: time.Now().UTC(),
		})
	})
}
