package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/hexasamples/backend/internal/application/catalog"
	eventapp "github.com/hexasamples/backend/internal/application/event"
	"github.com/hexasamples/backend/internal/application/mediator"
	partnerapp "github.com/hexasamples/backend/internal/application/partner"
	tradeapp "github.com/hexasamples/backend/internal/application/trade"
	"github.com/hexasamples/backend/internal/domain/shared"
	"github.com/hexasamples/backend/internal/infrastructure/cache"
	"github.com/hexasamples/backend/internal/infrastructure/config"
	"github.com/hexasamples/backend/internal/infrastructure/event"
	"github.com/hexasamples/backend/internal/infrastructure/logger"
	"github.com/hexasamples/backend/internal/infrastructure/messaging"
	"github.com/hexasamples/backend/internal/infrastructure/metrics"
	"github.com/hexasamples/backend/internal/infrastructure/persistence"
	"github.com/hexasamples/backend/internal/infrastructure/telemetry"
	"github.com/hexasamples/backend/internal/interfaces/http/handler"
	"github.com/hexasamples/backend/internal/interfaces/http/middleware"
	"github.com/hexasamples/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const version = "1.0.0"

//	@title			Sales Order API
//	@version		1.0
//	@description	Sales orders with store, customer and product registries

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

	baseLog, err := logger.New(logger.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  cfg.Log.Output,
		Service: cfg.App.Name,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Telemetry comes first so the bridged logger and every span share one provider
	logProvider, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize log exporter", zap.Error(err))
	}
	log := logProvider.Bridge(baseLog, zapcore.InfoLevel)
	defer func() {
		_ = log.Sync()
	}()

	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	profiler, err := telemetry.NewProfiler(cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	if profiler.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}

	log.Info("Starting sales order service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("db_driver", cfg.Database.Driver),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.OpenDatabase(&cfg.Database, persistence.WithGormLogger(gormLog))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.NewDBTracing(cfg.Telemetry, log).Register(db.DB, cfg.Database.DBName); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	if cfg.Database.AutoMigrate {
		if err := persistence.AutoMigrate(db.DB); err != nil {
			log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}
	log.Info("Database connected successfully")

	prom := metrics.NewPrometheus(cfg.Metrics.Namespace, cfg.App.Name)
	if sqlDB, err := db.SQLDB(); err == nil {
		if err := prom.RegisterDBStats(sqlDB, cfg.Database.DBName); err != nil {
			log.Warn("Failed to register database stats", zap.Error(err))
		}
	}

	// Events are written to the outbox inside each unit of work
	serializer := event.NewEventSerializer()
	event.RegisterAllEvents(serializer)
	outboxPublisher := event.NewOutboxPublisher(serializer).WithMaxRetries(cfg.Event.MaxRetries)
	unit := persistence.NewGormUnitOfWork(db.DB, outboxPublisher.Recorder)

	if cfg.Database.Seed {
		if err := persistence.Seed(ctx, unit); err != nil {
			log.Fatal("Failed to seed demo data", zap.Error(err))
		}
		log.Info("Demo data seeded")
	}

	idempotencyStore, err := cache.NewIdempotencyStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.IsProduction()),
	).CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer func() {
		_ = idempotencyStore.Close()
	}()

	eventBus := event.NewInMemoryEventBus(log)
	subscribers := event.WrapHandlersWithIdempotency(
		[]shared.EventHandler{
			tradeapp.NewSalesOrderActivityLogger(log),
			tradeapp.NewSalesOrderMetricsHandler(prom),
		},
		idempotencyStore,
		log,
		event.WithIdempotencyConfig(shared.IdempotencyConfig{TTL: cfg.Event.IdempotencyTTL, Enabled: true}),
	)
	for _, h := range subscribers {
		eventBus.Subscribe(h)
	}
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	outboxRepo := event.NewGormOutboxRepository(db.DB)
	processorOpts := []event.ProcessorOption{event.WithObserver(prom)}
	if cfg.AMQP.Enabled {
		conn, err := messaging.Dial(cfg.AMQP)
		if err != nil {
			log.Fatal("Failed to connect to message broker", zap.Error(err))
		}
		defer func() {
			_ = conn.Close()
		}()
		processorOpts = append(processorOpts, event.WithForwarder(messaging.NewPublisher(conn.Channel(), cfg.AMQP, log)))
		log.Info("Forwarding outbox entries to broker", zap.String("exchange", cfg.AMQP.Exchange))
	}

	var processor *event.OutboxProcessor
	if cfg.Event.ProcessorEnabled {
		processor = event.NewOutboxProcessor(outboxRepo, eventBus, serializer, event.OutboxProcessorConfig{
			BatchSize:        cfg.Event.BatchSize,
			PollInterval:     cfg.Event.PollInterval,
			Workers:          cfg.Event.Workers,
			StuckAfter:       cfg.Event.StuckAfter,
			CleanupEnabled:   cfg.Event.CleanupEnabled,
			CleanupRetention: cfg.Event.CleanupRetention,
			CleanupInterval:  cfg.Event.CleanupInterval,
		}, log, processorOpts...)
		if err := processor.Start(ctx); err != nil {
			log.Fatal("Failed to start outbox processor", zap.Error(err))
		}
	}

	m := mediator.New(
		mediator.RecoveryBehavior(log),
		mediator.TracingBehavior(cfg.Telemetry.ServiceName),
		mediator.LoggingBehavior(log),
		mediator.MetricsBehavior(prom),
	)
	tradeapp.NewSalesOrderHandlers(unit, log).Register(m)

	engine := newEngine(cfg, log, prom)

	systemHandler := handler.NewSystemHandler(cfg.App.Name, version, db)
	engine.GET("/health", systemHandler.Health)
	if cfg.Metrics.Enabled {
		engine.GET(cfg.Metrics.Path, gin.WrapH(prom.Handler()))
	}

	var auth []gin.HandlerFunc
	if cfg.JWT.Enabled {
		auth = append(auth, middleware.JWTAuth(middleware.NewTokenValidator(cfg.JWT)))
	}
	r := router.NewRouter(engine, router.WithAPIVersion("v1")).Use(auth...)
	handlers := router.Handlers{
		SalesOrders: handler.NewSalesOrderHandler(m),
		Stores:      handler.NewStoreHandler(partnerapp.NewStoreService(unit)),
		Customers:   handler.NewCustomerHandler(partnerapp.NewCustomerService(unit)),
		Products:    handler.NewProductHandler(catalogapp.NewProductService(unit)),
		System:      systemHandler,
		Outbox:      handler.NewOutboxHandler(eventapp.NewOutboxService(outboxRepo, log)),
	}
	handlers.RegisterAll(r).Setup()
	handlers.RegisterPublic(engine.Group("/", auth...))
	for _, rt := range r.Routes() {
		log.Debug("Route registered", zap.String("group", rt.Group), zap.String("method", rt.Method), zap.String("path", rt.Path))
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
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if processor != nil {
		if err := processor.Stop(shutdownCtx); err != nil {
			log.Error("Outbox processor did not stop cleanly", zap.Error(err))
		}
	}
	_ = eventBus.Stop(shutdownCtx)
	if err := profiler.Stop(); err != nil {
		log.Warn("Profiler stop failed", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Tracer shutdown failed", zap.Error(err))
	}
	if err := logProvider.Shutdown(shutdownCtx); err != nil {
		baseLog.Warn("Log exporter shutdown failed", zap.Error(err))
	}

	log.Info("Server exited gracefully", zap.Duration("shutdown_budget", cfg.HTTP.ShutdownTimeout))
}

// newEngine builds the gin engine with the global middleware chain.
// Order matters: the request ID must exist before logging and tracing read it.
func newEngine(cfg *config.Config, log *zap.Logger, prom *metrics.Prometheus) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Warn("Invalid trusted proxies, trusting none", zap.Error(err))
		_ = engine.SetTrustedProxies(nil)
	}

	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		}),
		middleware.TracingAttributeInjector(),
		middleware.SpanErrorMarker(),
		middleware.Metrics(prom, "/health", cfg.Metrics.Path),
		middleware.ProfilingWithConfig(middleware.ProfilingConfig{
			Enabled:   cfg.Telemetry.ProfilingEnabled,
			SkipPaths: []string{"/health", cfg.Metrics.Path},
		}),
		middleware.SecureWithConfig(securityConfig(cfg)),
		middleware.CORSWithConfig(middleware.CORSConfigFromHTTP(cfg.HTTP)),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)
	return engine
}

func securityConfig(cfg *config.Config) middleware.SecurityConfig {
	sec := middleware.DefaultSecurityConfig()
	// HSTS only makes sense behind TLS termination in production
	sec.HSTSEnabled = cfg.IsProduction()
	return sec
}
