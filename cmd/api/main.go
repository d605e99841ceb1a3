package main

import (
	"context"
	"fmt"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/habitflow/backend/internal/api/handlers"
	"github.com/habitflow/backend/internal/api/middleware"
	"github.com/habitflow/backend/internal/api/routes"
	"github.com/habitflow/backend/internal/domain/checkins"
	"github.com/habitflow/backend/internal/domain/days"
	"github.com/habitflow/backend/internal/domain/habits"
	"github.com/habitflow/backend/internal/infrastructure/cache"
	"github.com/habitflow/backend/internal/infrastructure/persistence/postgres/connection"
	"github.com/habitflow/backend/internal/infrastructure/persistence/postgres/migrations"
	"github.com/habitflow/backend/pkg/config"
	"github.com/habitflow/backend/pkg/logger"
	"github.com/habitflow/backend/pkg/security/auth"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// @title           HabitFlow API
// @version         1.0
// @description     Habit tracking API: completion ledger, streaks, heatmaps and day planning.

// @host      localhost:8000
// @BasePath

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// RequestLoggerMiddleware logs all incoming HTTP requests
func RequestLoggerMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		log.Info("Request completed",
			zap.String("path", path),
			zap.String("method", method),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("") // Empty string will make it search in default locations
	if err != nil {
		stdlog.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	log := logger.NewLogger(cfg.Logging.Level)
	defer log.Sync()

	log.Info("Configuration loaded successfully")
	log.Info("Server mode: " + cfg.Server.Mode)

	// Set up Gin
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	gin.DefaultWriter = os.Stdout

	handlers.SetProductionMode(cfg.IsProduction())

	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(RequestLoggerMiddleware(log))
	router.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORS.AllowedOrigins,
		AllowMethods: cfg.CORS.AllowedMethods,
		AllowHeaders: append(cfg.CORS.AllowedHeaders,
			"Accept-Encoding",
			"Content-Encoding",
			"Content-Type",
			"Authorization",
		),
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Encoding",
			"Content-Type",
			"X-RateLimit-Remaining",
			"X-RateLimit-Reset",
			"Vary",
		},
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	// Add Prometheus metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Connect to database
	db, err := connection.NewDatabase(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if err := migrations.AutoMigrate(db, log.Logger); err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Initialize Redis
	redisConfig := cache.NewConfigFromEnv(cfg)
	redisClient, err := cache.NewRedisClient(redisConfig)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	// Initialize rate limiter with Redis client
	rateLimiter := auth.NewRedisRateLimiter(redisClient.GetClient(), 1*time.Minute, 1000)

	// Create cache middleware for the derived analytics endpoints
	cacheMiddleware := middleware.NewCacheMiddleware(redisClient, "habitflow", 5*time.Minute)

	// Initialize repositories
	habitsRepo := habits.NewRepository(db)
	checkinsRepo := checkins.NewRepository(db)
	daysRepo := days.NewRepository(db)

	// Initialize services. The checkins service owns the ledger; habit
	// deletion purges through it and day check-offs write through it. Habit
	// deletion also drops the habit's slots from every day that planned it.
	habitsService := habits.NewService(habitsRepo, redisClient, log.Logger)
	checkinsService := checkins.NewService(checkinsRepo, habitsRepo, redisClient, log.Logger)
	daysService := days.NewService(daysRepo, habitsRepo, checkinsService, redisClient, log.Logger)
	habitsService.SetCompletionPurger(checkinsService)
	habitsService.SetDaySlotRemover(daysService)

	// Initialize handlers
	habitsHandler := handlers.NewHabitsHandler(habitsService)
	checkinsHandler := handlers.NewCheckinsHandler(checkinsService)
	daysHandler := handlers.NewDaysHandler(daysService)

	// Health check routes (no /api prefix as these are system endpoints)
	routes.SetupHealthRoutes(router, db, redisClient)
	log.Info("Registered health check routes at /health and /health/ready")

	// Habits routes (protected)
	habitsRoutes := routes.NewHabitsRoutes(habitsHandler, cfg.Auth.JWTSecret, rateLimiter)
	habitsRoutes.RegisterRoutes(router, cacheMiddleware)
	log.Info("Registered habits routes at /api/habits")

	// Checkin ledger and analytics routes (protected)
	checkinsRoutes := routes.NewCheckinsRoutes(checkinsHandler, cfg.Auth.JWTSecret, rateLimiter)
	checkinsRoutes.RegisterRoutes(router, cacheMiddleware)
	log.Info("Registered checkin routes at /api/habits/:habitId/checkins and /api/checkins")

	// Days and calendar routes (protected)
	daysRoutes := routes.NewDaysRoutes(daysHandler, cfg.Auth.JWTSecret, rateLimiter)
	daysRoutes.RegisterRoutes(router, cacheMiddleware)
	log.Info("Registered day routes at /api/days")

	// Start server
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info(fmt.Sprintf("Server starting on port %d", cfg.Server.Port))

		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	log.Info("Shutting down server...")
	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited properly")
}
