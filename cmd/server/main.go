package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	billingapp "github.com/rentdesk/backend/internal/application/billing"
	"github.com/rentdesk/backend/internal/domain/shared"
	"github.com/rentdesk/backend/internal/infrastructure/auth"
	"github.com/rentdesk/backend/internal/infrastructure/cache"
	"github.com/rentdesk/backend/internal/infrastructure/config"
	"github.com/rentdesk/backend/internal/infrastructure/event"
	"github.com/rentdesk/backend/internal/infrastructure/logger"
	"github.com/rentdesk/backend/internal/infrastructure/persistence"
	"github.com/rentdesk/backend/internal/infrastructure/scheduler"
	"github.com/rentdesk/backend/internal/interfaces/http/handler"
	"github.com/rentdesk/backend/internal/interfaces/http/middleware"
	"github.com/rentdesk/backend/internal/interfaces/http/router"
)

//	@title			RentDesk Billing API
//	@version		1.0
//	@description	Property management billing backend covering invoice composition, payment recording, and settlement reconciliation.

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

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

	log.Info("Starting RentDesk Billing",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database connection with GORM logging routed through zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
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

	// Repositories
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	taxRateRepo := persistence.NewGormTaxRateRepository(db.DB)
	numberGen := persistence.NewGormInvoiceNumberGenerator(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Domain event bus
	eventBus := event.NewInMemoryEventBus(log)
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Idempotency store. Redis shares state across instances; the
	// in-memory store only protects a single process.
	var idempotencyStore shared.IdempotencyStore
	if cfg.Redis.Enabled {
		redisStore, err := cache.NewRedisIdempotencyStore(cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			_ = redisStore.Close()
		}()
		idempotencyStore = redisStore
		log.Info("Redis idempotency store enabled", zap.String("addr", cfg.Redis.Addr()))
	} else {
		memStore := cache.NewInMemoryIdempotencyStore()
		defer memStore.Close()
		idempotencyStore = memStore
	}

	// Application services
	invoiceService := billingapp.NewInvoiceService(invoiceRepo, taxRateRepo, numberGen, txScope, eventBus)
	paymentService := billingapp.NewPaymentService(paymentRepo, invoiceRepo, txScope, idempotencyStore, eventBus)

	// Auth
	jwtService := auth.NewJWTService(cfg.JWT)

	// Handlers
	invoiceHandler := handler.NewInvoiceHandler(invoiceService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	systemHandler := handler.NewSystemHandler(db.DB)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware stack, outermost first
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Authentication resolves the owner for every API route except the
	// public diagnostics endpoints. Outside production the X-Owner-ID
	// header can stand in for a token.
	jwtConfig := middleware.DefaultJWTConfig(jwtService)
	jwtConfig.SkipPaths = append(jwtConfig.SkipPaths,
		"/api/v1/system/ping",
		"/api/v1/system/info",
	)
	jwtConfig.Logger = log
	engine.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	ownerConfig := middleware.DefaultOwnerConfig()
	ownerConfig.AllowHeaderFallback = cfg.App.Env != "production"
	ownerConfig.SkipPaths = append(ownerConfig.SkipPaths,
		"/api/v1/system/ping",
		"/api/v1/system/info",
	)
	ownerConfig.Logger = log
	engine.Use(middleware.OwnerWithConfig(ownerConfig))

	// Probes live outside API versioning
	engine.GET("/health", systemHandler.Health)
	engine.GET("/ready", systemHandler.Ready)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(router.BillingRoutes(invoiceHandler, paymentHandler)).
		Register(router.SystemRoutes(systemHandler))
	r.Setup()

	// Overdue sweeper flags past-due invoices once a day
	var sweeper *scheduler.OverdueSweeper
	if cfg.Sweeper.Enabled {
		sweeper = scheduler.NewOverdueSweeper(scheduler.OverdueSweeperConfig{
			SweepHour:     cfg.Sweeper.SweepHour,
			SweepMinute:   cfg.Sweeper.SweepMinute,
			CheckInterval: cfg.Sweeper.CheckInterval,
			BatchSize:     cfg.Sweeper.BatchSize,
		}, invoiceRepo, log)
		if err := sweeper.Start(context.Background()); err != nil {
			log.Fatal("Failed to start overdue sweeper", zap.Error(err))
		}
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if sweeper != nil {
		if err := sweeper.Stop(ctx); err != nil {
			log.Warn("Overdue sweeper did not stop cleanly", zap.Error(err))
		}
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	if err := eventBus.Stop(ctx); err != nil {
		log.Warn("Event bus did not stop cleanly", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
