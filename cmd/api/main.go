package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lead_funnel_backend/internal/analytics"
	"lead_funnel_backend/internal/bootstrap"
	"lead_funnel_backend/internal/chat"
	"lead_funnel_backend/internal/consultation"
	"lead_funnel_backend/internal/content"
	emailhandler "lead_funnel_backend/internal/email/handler"
	"lead_funnel_backend/internal/events"
	apphttp "lead_funnel_backend/internal/http"
	"lead_funnel_backend/internal/http/router"
	"lead_funnel_backend/internal/leads"
	leadservice "lead_funnel_backend/internal/leads/service"
	"lead_funnel_backend/internal/notification"
	"lead_funnel_backend/internal/observability"
	routinghandler "lead_funnel_backend/internal/routing/handler"
	"lead_funnel_backend/internal/scheduler"
	"lead_funnel_backend/platform/config"
	"lead_funnel_backend/platform/logger"
	"lead_funnel_backend/platform/store"
	"lead_funnel_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	var redisClient *redis.Client
	if cfg.UseRedisStore() {
		redisClient = connectRedis(ctx, cfg, log)
		defer func() { _ = redisClient.Close() }()
	} else {
		log.Warn("REDIS_URL not configured; leads and shared state are kept in process memory")
	}

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)
	metrics := observability.NewMetrics()

	sink, closeSink := initAuditSink(cfg, log)
	defer closeSink()

	tasks := scheduler.NewMux()
	taskScheduler, runScheduler, closeScheduler := initScheduler(cfg, tasks, log)
	defer closeScheduler()

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	components, err := bootstrap.Build(bootstrap.Options{
		Config:    cfg,
		Log:       log,
		Redis:     redisClient,
		Scheduler: taskScheduler,
		Bus:       eventBus,
		Metrics:   metrics,
		Sink:      sink,
	})
	if err != nil {
		log.Error("failed to build services", "error", err)
		panic("failed to build services: " + err.Error())
	}
	components.RegisterTasks(tasks)
	components.RegisterHandlers(eventBus)

	leadsModule, err := leads.NewModule(components.LeadDeps(), val)
	if err != nil {
		log.Error("failed to initialize leads module", "error", err)
		panic("failed to initialize leads module: " + err.Error())
	}
	chatModule := chat.NewModule(components.ChatDeps(leadsModule.Service()), val)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:     cfg,
		Logger:     log,
		EventBus:   eventBus,
		Validator:  val,
		Metrics:    metrics,
		Middleware: []gin.HandlerFunc{metrics.Middleware()},
		Modules: []apphttp.Module{
			leadsModule,
			chatModule,
			routinghandler.NewModule(components.Engine),
			emailhandler.NewModule(components.Email),
			notification.NewModule(components.Sales, components.Prompts),
			content.NewModule(components.Content),
			consultation.NewModule(components.Bookings),
		},
	}
	if checker, ok := components.Repo.(apphttp.HealthChecker); ok {
		app.Health = checker
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	if runScheduler != nil {
		g.Go(func() error {
			runScheduler(gctx)
			return nil
		})
	}
	if interval := cfg.GetSweepInterval(); interval > 0 {
		g.Go(func() error {
			runSweeps(gctx, leadsModule.Service(), interval, log)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		eventBus.Wait()
		panic("server error: " + err.Error())
	}
	eventBus.Wait()
	log.Info("server stopped")
}

// connectRedis pings the configured Redis until it answers or retries run out.
func connectRedis(ctx context.Context, cfg config.StoreConfig, log *logger.Logger) *redis.Client {
	client, err := store.NewRedisClient(cfg)
	if err != nil {
		log.Error("invalid redis configuration", "error", err)
		panic("invalid redis configuration: " + err.Error())
	}
	if err := withRetry(ctx, log, "redis connection", 5, 2*time.Second, func() error {
		return client.Ping(ctx).Err()
	}); err != nil {
		log.Error("failed to connect to redis", "error", err)
		panic("failed to connect to redis: " + err.Error())
	}
	log.Info("redis connection established")
	return client
}

// initAuditSink always logs the routing audit trail and also publishes it to
// Kafka when brokers are configured.
func initAuditSink(cfg config.AnalyticsConfig, log *logger.Logger) (analytics.Sink, func()) {
	logSink := analytics.NewLogSink(log)
	if !cfg.IsKafkaEnabled() {
		return logSink, func() {}
	}

	kafkaSink, err := analytics.NewKafkaSink(cfg)
	if err != nil {
		log.Error("failed to initialize kafka audit sink; logging only", "error", err)
		return logSink, func() {}
	}
	log.Info("kafka audit sink enabled", "topic", cfg.GetKafkaAnalyticsTopic())
	return analytics.MultiSink{logSink, kafkaSink}, func() {
		_ = kafkaSink.Close()
	}
}

// initScheduler returns the asynq client when Redis is configured, so the
// scheduler worker runs delayed actions. Otherwise tasks run in this process
// and the returned run func must be started.
func initScheduler(cfg config.SchedulerConfig, tasks *scheduler.Mux, log *logger.Logger) (scheduler.Scheduler, func(context.Context), func()) {
	if cfg.IsDistributedScheduler() {
		client, err := scheduler.NewClient(cfg)
		if err == nil {
			log.Info("delayed actions dispatched to the scheduler worker", "queue", cfg.GetAsynqQueueName())
			return client, nil, func() { _ = client.Close() }
		}
		log.Error("failed to initialize scheduler client; running tasks in process", "error", err)
	}

	local := scheduler.NewLocal(nil, tasks, log)
	run := func(ctx context.Context) {
		local.Run(ctx, cfg.GetSchedulerPollInterval())
	}
	return local, run, func() {}
}

// runSweeps re-routes idle leads so inactivity rules fire without a visit.
func runSweeps(ctx context.Context, leads *leadservice.Service, interval time.Duration, log *logger.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			result, err := leads.SweepInactive(ctx)
			if err != nil {
				log.Error("inactive lead sweep failed", "error", err)
				continue
			}
			log.Info("inactive lead sweep complete", "routed", result.Routed, "skipped", result.Skipped, "failed", result.Failed)
		}
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
