package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/menubridge/backend/internal/application/availability"
	"github.com/menubridge/backend/internal/application/catalog"
	"github.com/menubridge/backend/internal/application/dashboard"
	"github.com/menubridge/backend/internal/application/orders"
	"github.com/menubridge/backend/internal/application/settings"
	"github.com/menubridge/backend/internal/application/webhooks"
	"github.com/menubridge/backend/internal/domain/shared"
	"github.com/menubridge/backend/internal/infrastructure/cache"
	"github.com/menubridge/backend/internal/infrastructure/config"
	"github.com/menubridge/backend/internal/infrastructure/logger"
	"github.com/menubridge/backend/internal/infrastructure/marketplace/uber"
	"github.com/menubridge/backend/internal/infrastructure/persistence"
	"github.com/menubridge/backend/internal/infrastructure/pos/square"
	"github.com/menubridge/backend/internal/interfaces/http/handler"
	"github.com/menubridge/backend/internal/interfaces/http/middleware"
	"github.com/menubridge/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting MenuBridge",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Webhook deduplication store: Redis when configured, in-memory otherwise
	var idempotencyStore shared.IdempotencyStore
	if cfg.Redis.Enabled {
		store, err := cache.NewRedisIdempotencyStore(cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		idempotencyStore = store
		log.Info("Redis idempotency store connected",
			zap.String("host", cfg.Redis.Host),
			zap.Int("port", cfg.Redis.Port),
		)
	} else {
		idempotencyStore = cache.NewInMemoryIdempotencyStore()
		log.Info("Using in-memory idempotency store")
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	// Initialize repositories
	itemRepo := persistence.NewGormMenuItemRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	settingsRepo := persistence.NewGormSettingsRepository(db.DB)
	webhookLogRepo := persistence.NewGormWebhookLogRepository(db.DB)
	syncLogRepo := persistence.NewGormSyncLogRepository(db.DB)

	// Initialize platform adapters
	squareConfig := square.NewConfig()
	squareConfig.Timeout = cfg.Square.Timeout
	posAdapter := square.NewAdapter(squareConfig, settingsRepo)

	uberConfig := uber.NewConfig(cfg.Uber.RedirectURL)
	uberConfig.Timeout = cfg.Uber.Timeout
	marketplaceAdapter := uber.NewAdapter(uberConfig, settingsRepo)

	// Initialize application services
	catalogService := catalog.NewService(itemRepo, settingsRepo, posAdapter, marketplaceAdapter, syncLogRepo, log)
	orderService := orders.NewService(orderRepo, posAdapter, log)
	availabilityService := availability.NewService(itemRepo, settingsRepo, marketplaceAdapter, log)
	settingsService := settings.NewService(settingsRepo, posAdapter, marketplaceAdapter, log)
	dashboardService := dashboard.NewService(itemRepo, orderRepo, syncLogRepo, log)
	webhookService := webhooks.NewService(webhookLogRepo, idempotencyStore, shared.IdempotencyConfig{
		TTL:     cfg.Webhook.DedupTTL,
		Enabled: cfg.Webhook.DedupEnabled,
	}, orderService, availabilityService, log)

	// Initialize HTTP handlers
	menuHandler := handler.NewMenuHandler(catalogService, log)
	orderHandler := handler.NewOrderHandler(orderService, log)
	settingsHandler := handler.NewSettingsHandler(settingsService, log)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, log)
	webhookHandler := handler.NewWebhookHandler(webhookService, handler.WebhookVerification{
		SquareSignatureKey:    cfg.Square.WebhookSignatureKey,
		SquareNotificationURL: cfg.Square.WebhookURL,
		UberSecret:            cfg.Uber.WebhookSecret,
	}, log)
	systemHandler := handler.NewSystemHandler()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware stack: request ID, panic recovery, request logging, CORS,
	// body limit, then tenant resolution
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	defaultTenantID := uuid.Nil
	if cfg.App.DefaultTenantID != "" {
		defaultTenantID, err = uuid.Parse(cfg.App.DefaultTenantID)
		if err != nil {
			log.Fatal("Invalid app.default_tenant_id", zap.Error(err))
		}
	}
	// Health check endpoint (outside API versioning and tenant resolution)
	engine.GET("/health", healthHandler(db, log))

	engine.Use(middleware.Tenant(middleware.TenantConfig{DefaultTenantID: defaultTenantID}))

	// Register API routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(menuHandler).
		Register(orderHandler).
		Register(settingsHandler).
		Register(dashboardHandler).
		Register(webhookHandler).
		Register(systemHandler)
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
