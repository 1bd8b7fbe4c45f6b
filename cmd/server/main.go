package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MysticyDev/OproepBot/internal/config"
	"github.com/MysticyDev/OproepBot/internal/handlers"
	"github.com/MysticyDev/OproepBot/internal/logger"
	"github.com/MysticyDev/OproepBot/internal/middleware"
	"github.com/MysticyDev/OproepBot/internal/notify"
	"github.com/MysticyDev/OproepBot/internal/opsalert"
	"github.com/MysticyDev/OproepBot/internal/pipeline"
	"github.com/MysticyDev/OproepBot/internal/ratelimit"
	"github.com/MysticyDev/OproepBot/internal/telemetry"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	configFlag := flag.String("config", "", "Path to the call-up config file (overrides CALLUP_CONFIG)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *configFlag != "" {
		cfg.CallupConfigPath = *configFlag
	}

	debugMode := cfg.ServerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		if syncErr := logger.Sync(zapLogger); syncErr != nil {
			_ = syncErr
		}
	}()

	callup, err := config.LoadCallup(cfg.CallupConfigPath)
	if err != nil {
		zapLogger.Fatal("failed_to_load_callup_config", zap.Error(err))
	}
	for _, warning := range callup.Warnings() {
		zapLogger.Warn("callup_config_warning", zap.String("warning", warning))
	}

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("ratelimit_backend", cfg.RateLimitBackend),
		zap.Int("option_count", len(callup.Options)),
		zap.Int("cooldown_seconds", callup.CooldownSeconds),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	// OpenTelemetry, optional.
	var tracerProvider interface{ Shutdown(context.Context) error }
	if cfg.OTELEnabled {
		if cfg.OTELEndpoint == "" {
			zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		} else {
			tp, err := telemetry.InitTracer(context.Background(), "oproepbot", cfg.OTELEndpoint)
			if err != nil {
				zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
			} else {
				tracerProvider = tp
				zapLogger.Info("otel_tracer_initialized", zap.String("endpoint", cfg.OTELEndpoint))
				defer func() {
					shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer shutdownCancel()
					if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
						zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
					}
				}()
			}
		}
	}

	// Cooldown store.
	var (
		store       ratelimit.Store
		redisClient *redis.Client
		healthPings = make(map[string]handlers.Pinger)
	)
	switch cfg.RateLimitBackend {
	case config.BackendRedis:
		redisStore, err := ratelimit.NewRedisStore(cfg.RedisURL)
		if err != nil {
			zapLogger.Fatal("failed_to_connect_to_redis", zap.Error(err))
		}
		defer func() {
			if err := redisStore.Close(); err != nil {
				zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
			}
		}()
		store = redisStore
		redisClient = redisStore.Client()
		healthPings["redis"] = redisStore
		zapLogger.Info("connected_to_redis")
	case config.BackendPostgres:
		pgStore, err := ratelimit.NewPostgresStore(cfg.DatabaseURL)
		if err != nil {
			zapLogger.Fatal("failed_to_connect_to_database", zap.Error(err))
		}
		defer func() {
			if err := pgStore.Close(); err != nil {
				zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
			}
		}()
		store = pgStore
		healthPings["postgres"] = pgStore
		zapLogger.Info("connected_to_database")
	case config.BackendMemory:
		// Records do not survive a restart; acceptable for local runs only.
		store = ratelimit.NewMemoryStore()
		zapLogger.Warn("using_in_memory_ratelimit_store")
	}

	// Operator alerts, optional.
	var alerts opsalert.Publisher = opsalert.Noop{}
	if cfg.RabbitMQURL != "" {
		publisher, err := opsalert.NewRabbitMQPublisher(cfg.RabbitMQURL)
		if err != nil {
			zapLogger.Warn("failed_to_connect_to_rabbitmq_alerts_disabled", zap.Error(err))
		} else {
			alerts = publisher
			zapLogger.Info("connected_to_rabbitmq")
			defer func() {
				if err := publisher.Close(); err != nil {
					zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
				}
			}()
		}
	}

	dispatcher := notify.NewDispatcher(notify.DefaultDispatchTimeout)
	pipe := pipeline.New(callup, store, dispatcher, alerts, zapLogger)

	interactionsHandler := handlers.NewInteractionsHandler(pipe, zapLogger)
	healthChecker := handlers.NewHealthChecker(healthPings)

	// Router and middleware. gorilla/mux runs middleware in registration
	// order, outermost first.
	r := mux.NewRouter()
	if cfg.OTELEnabled && tracerProvider != nil {
		r.Use(otelmux.Middleware("oproepbot"))
	}
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	r.Use(middleware.ContentType)
	r.Use(middleware.Timeout(middleware.DefaultRequestTimeout))
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.Logging(zapLogger))

	// Health is public.
	healthChecker.RegisterRoutes(r)

	// Interaction routes sit behind the relay token and flood limiting.
	floodLimitMW, err := middleware.FloodLimit(redisClient, cfg.FloodLimitRate)
	if err != nil {
		zapLogger.Fatal("failed_to_create_flood_limiter", zap.Error(err))
	}
	apiRouter := r.PathPrefix("/api/v1").Subrouter()
	apiRouter.Use(middleware.RelayAuth(cfg.RelayAuthSecret, zapLogger))
	apiRouter.Use(floodLimitMW)
	interactionsHandler.RegisterRoutes(apiRouter)

	var handler http.Handler = r
	if len(cfg.AllowedOrigins) > 0 {
		c := cors.New(cors.Options{
			AllowedOrigins: cfg.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type", "Authorization"},
		})
		handler = c.Handler(r)
	}

	srv := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        handler,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		zapLogger.Info("server_starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}
