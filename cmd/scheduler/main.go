package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lead_funnel_backend/internal/analytics"
	"lead_funnel_backend/internal/bootstrap"
	"lead_funnel_backend/internal/events"
	"lead_funnel_backend/internal/observability"
	"lead_funnel_backend/internal/scheduler"
	"lead_funnel_backend/platform/config"
	"lead_funnel_backend/platform/logger"
	"lead_funnel_backend/platform/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env, "queue", cfg.GetAsynqQueueName())

	if !cfg.IsDistributedScheduler() {
		log.Error("REDIS_URL is required for the scheduler worker")
		panic("REDIS_URL is required for the scheduler worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, err := store.NewRedisClient(cfg)
	if err != nil {
		log.Error("invalid redis configuration", "error", err)
		panic("invalid redis configuration: " + err.Error())
	}
	defer func() { _ = redisClient.Close() }()
	if err := withRetry(ctx, log, "redis connection", 5, 2*time.Second, func() error {
		return redisClient.Ping(ctx).Err()
	}); err != nil {
		log.Error("failed to connect to redis", "error", err)
		panic("failed to connect to redis: " + err.Error())
	}

	eventBus := events.NewInMemoryBus(log)
	defer eventBus.Wait()

	// Actions run here may schedule follow-ups, e.g. the emails of a sequence.
	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		panic("failed to initialize scheduler client: " + err.Error())
	}
	defer func() { _ = client.Close() }()

	components, err := bootstrap.Build(bootstrap.Options{
		Config:    cfg,
		Log:       log,
		Redis:     redisClient,
		Scheduler: client,
		Bus:       eventBus,
		Metrics:   observability.NewMetrics(),
		Sink:      auditSink(cfg, log),
	})
	if err != nil {
		log.Error("failed to build services", "error", err)
		panic("failed to build services: " + err.Error())
	}

	tasks := scheduler.NewMux()
	components.RegisterTasks(tasks)
	components.RegisterHandlers(eventBus)

	worker, err := scheduler.NewWorker(cfg, tasks, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
	log.Info("scheduler stopped")
}

func auditSink(cfg config.AnalyticsConfig, log *logger.Logger) analytics.Sink {
	logSink := analytics.NewLogSink(log)
	if !cfg.IsKafkaEnabled() {
		return logSink
	}
	kafkaSink, err := analytics.NewKafkaSink(cfg)
	if err != nil {
		log.Error("failed to initialize kafka audit sink; logging only", "error", err)
		return logSink
	}
	return analytics.MultiSink{logSink, kafkaSink}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
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
