package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/koushalk6/whatsapp-saas-api-v2-extended/internal/auth"
	"github.com/koushalk6/whatsapp-saas-api-v2-extended/internal/config"
	"github.com/koushalk6/whatsapp-saas-api-v2-extended/internal/constants"
	"github.com/koushalk6/whatsapp-saas-api-v2-extended/internal/logger"
	"github.com/koushalk6/whatsapp-saas-api-v2-extended/internal/messaging"
	"github.com/koushalk6/whatsapp-saas-api-v2-extended/internal/provider"
	"github.com/koushalk6/whatsapp-saas-api-v2-extended/internal/templates"
	"github.com/koushalk6/whatsapp-saas-api-v2-extended/pkg/bootstrap"
	"github.com/koushalk6/whatsapp-saas-api-v2-extended/pkg/circuitbreaker"
	apperrors "github.com/koushalk6/whatsapp-saas-api-v2-extended/pkg/errors"
	"github.com/koushalk6/whatsapp-saas-api-v2-extended/pkg/health"
	"github.com/koushalk6/whatsapp-saas-api-v2-extended/pkg/metrics"
	"github.com/koushalk6/whatsapp-saas-api-v2-extended/pkg/middleware"
	"github.com/koushalk6/whatsapp-saas-api-v2-extended/pkg/ratelimit"
	"github.com/koushalk6/whatsapp-saas-api-v2-extended/pkg/tracing"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const serviceName = "messaging-service"

type App struct {
	config         *config.Config
	logger         logger.Logger
	base           *bootstrap.Base
	dbConnector    *bootstrap.DatabaseConnector
	redisClient    *redis.Client
	server         *http.Server
	router         *gin.Engine
	tracerProvider *tracing.TracerProvider
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	return &App{
		config:      cfg,
		logger:      log,
		base:        bootstrap.NewBase(cfg, log),
		dbConnector: bootstrap.NewDatabaseConnector(cfg, log),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	if err := a.initRedis(ctx); err != nil {
		return fmt.Errorf("failed to initialize redis: %w", err)
	}

	a.initBroker()

	if err := a.initRouter(); err != nil {
		return fmt.Errorf("failed to initialize router: %w", err)
	}

	if err := a.initServer(); err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	tp, err := tracing.Init(a.config.Tracing, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	a.tracerProvider = tp

	return nil
}

// initRedis connects only when the redis-backed rate limit store is selected.
// The ledger is in-memory and needs no storage of its own.
func (a *App) initRedis(ctx context.Context) error {
	if !a.config.RateLimit.Enabled || a.config.RateLimit.Store != constants.RateLimitStoreRedis {
		return nil
	}

	client, err := a.dbConnector.InitRedis(ctx)
	if err != nil {
		return err
	}
	a.redisClient = client
	return nil
}

func (a *App) initBroker() {
	if !a.config.Events.Enabled {
		return
	}

	if err := a.base.InitBroker(serviceName); err != nil {
		a.logger.WarnwCtx(context.Background(), "Failed to create event producer, lifecycle events will be disabled", "error", err)
	}
}

func (a *App) initRouter() error {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	if a.config.Tracing.Enabled {
		router.Use(tracing.GinMiddleware(serviceName))
	}

	router.Use(middleware.RecoveryMiddleware(a.logger))
	router.Use(middleware.LoggerMiddleware(a.logger))
	router.Use(middleware.RequestIDMiddleware())

	if a.config.RateLimit.Enabled {
		rateLimitConfig := ratelimit.Config{
			RPS:             a.config.RateLimit.RPS,
			Burst:           a.config.RateLimit.Burst,
			Window:          time.Duration(a.config.RateLimit.WindowSeconds) * time.Second,
			CleanupInterval: time.Duration(a.config.RateLimit.CleanupInterval) * time.Second,
			MaxAge:          time.Duration(a.config.RateLimit.MaxAge) * time.Second,
		}

		var store ratelimit.Store
		if a.redisClient != nil {
			store = ratelimit.NewRedisStore(a.redisClient, rateLimitConfig)
		} else {
			store = ratelimit.NewMemoryStore(rateLimitConfig)
		}

		router.Use(ratelimit.Middleware(store, rateLimitConfig, a.logger))
		a.logger.InfowCtx(context.Background(), "Rate limiting enabled", "store", a.config.RateLimit.Store, "rps", rateLimitConfig.RPS, "burst", rateLimitConfig.Burst)
	}

	gatewayOpts := []provider.Option{}
	if a.config.CircuitBreaker.Enabled {
		breaker := circuitbreaker.NewWrapper(circuitbreaker.FromConfig("provider", a.config.CircuitBreaker))
		gatewayOpts = append(gatewayOpts, provider.WithCircuitBreaker(breaker))
		a.logger.InfowCtx(context.Background(), "Provider circuit breaker enabled")
	}
	gateway := provider.NewHTTPGateway(a.config.Provider, a.logger, gatewayOpts...)

	ledger := messaging.NewMemoryLedger()

	svcOpts := []messaging.ServiceOption{}
	if a.base.Producer != nil {
		events := messaging.NewBroadcastEventProducer(a.base.Producer, a.config.Events, a.logger)
		svcOpts = append(svcOpts, messaging.WithEvents(events))
	}

	messagingSvc := messaging.NewService(gateway, ledger, a.config.Provider, a.logger, svcOpts...)
	templatesSvc := templates.NewService(gateway, a.config.Provider, a.logger)

	messagingHandler := messaging.NewHandler(messagingSvc, a.logger)
	templatesHandler := templates.NewHandler(templatesSvc, a.logger)

	v1 := router.Group("/api/v1")
	if a.config.Auth.Enabled {
		v1.Use(auth.Middleware(auth.NewJWTVerifier(a.config.Auth.JWTSecret), a.logger))
	}
	messagingHandler.RegisterRoutes(v1)
	templatesHandler.RegisterRoutes(v1)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, apperrors.ToErrorResponse(apperrors.ErrNotFound))
	})

	metrics.RegisterHTTPMetrics()
	metrics.RegisterMessagingMetrics()
	metrics.RegisterEventMetrics()
	metrics.RegisterCircuitBreakerMetrics()

	healthRegistry := health.NewCheckerRegistry()
	if a.redisClient != nil {
		healthRegistry.Register(health.NewRedisChecker(a.redisClient))
	}
	if a.base.Producer != nil {
		healthRegistry.Register(health.NewKafkaChecker(a.config.Events.Brokers))
	}

	router.GET("/health", func(c *gin.Context) {
		h := healthRegistry.Check(c.Request.Context())
		statusCode := http.StatusOK
		if h.Status == health.StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}
		c.JSON(statusCode, h)
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	a.router = router
	return nil
}

func (a *App) initServer() error {
	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout,
	}
	return nil
}

func (a *App) Run(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		a.logger.InfowCtx(ctx, "Server listening", "port", a.config.Server.Port)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		return a.Shutdown(ctx)
	case err := <-errChan:
		return err
	}
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.InfowCtx(ctx, "Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()

	var errs []error

	if a.server != nil {
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
		}
	}

	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown error: %w", err))
		}
	}

	errs = append(errs, a.base.ShutdownBroker()...)
	errs = append(errs, a.dbConnector.ShutdownDatabases(a.redisClient)...)

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}

	a.logger.InfowCtx(ctx, "Server exited successfully")
	return nil
}
