// Package http provides HTTP server infrastructure including module registration.
package http

import (
	"context"
	stdhttp "net/http"

	"lead_funnel_backend/internal/events"
	"lead_funnel_backend/platform/config"
	"lead_funnel_backend/platform/logger"
	"lead_funnel_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

// RouterConfig combines the config interfaces needed by the HTTP router.
type RouterConfig interface {
	config.HTTPConfig
	config.RateLimitConfig
}

// HealthChecker exposes minimal functionality for readiness checks.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// MetricsProvider exposes request instrumentation and the scrape endpoint.
type MetricsProvider interface {
	Handler() stdhttp.Handler
}

// App holds the fully initialized application dependencies.
// This is populated by main.go (the composition root) and passed to the router.
type App struct {
	// Config holds the router configuration (HTTP and rate limit settings only).
	Config RouterConfig
	// Logger is the structured logger.
	Logger *logger.Logger
	// Health is used for readiness checks (e.g. Redis ping). Nil means always healthy.
	Health HealthChecker
	// EventBus is the domain event bus for cross-module communication.
	EventBus events.Bus
	// Validator is shared with every module.
	Validator *validator.Validator
	// Metrics serves /metrics. Nil disables the endpoint.
	Metrics MetricsProvider
	// Middleware runs on every route after the built-in middleware.
	Middleware []gin.HandlerFunc
	// Modules contains all HTTP-facing domain modules.
	Modules []Module
}
