package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apphttp "lead_funnel_backend/internal/http"
	"lead_funnel_backend/internal/observability"
	"lead_funnel_backend/platform/logger"
	"lead_funnel_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testConfig struct{}

func (testConfig) GetHTTPAddr() string      { return ":0" }
func (testConfig) GetCORSAllowAll() bool    { return true }
func (testConfig) GetCORSOrigins() []string { return nil }
func (testConfig) GetCORSAllowCreds() bool  { return false }
func (testConfig) GetRateLimitRPS() float64 { return 100 }
func (testConfig) GetRateLimitBurst() int   { return 100 }

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

type pingModule struct{}

func (pingModule) Name() string { return "ping" }

func (pingModule) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	ctx.Ops.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "ops pong") })
}

func newApp(health apphttp.HealthChecker) *apphttp.App {
	metrics := observability.NewMetrics()
	return &apphttp.App{
		Config:     testConfig{},
		Logger:     logger.Nop(),
		Health:     health,
		Validator:  validator.New(),
		Metrics:    metrics,
		Middleware: []gin.HandlerFunc{metrics.Middleware()},
		Modules:    []apphttp.Module{pingModule{}},
	}
}

func get(engine *gin.Engine, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthReflectsDependency(t *testing.T) {
	if rec := get(New(newApp(pinger{})), "/api/health"); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec := get(New(newApp(pinger{err: errors.New("redis down")})), "/api/health"); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if rec := get(New(newApp(nil)), "/api/health"); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 without a health checker, got %d", rec.Code)
	}
}

func TestModulesMountUnderV1AndOps(t *testing.T) {
	engine := New(newApp(nil))

	if rec := get(engine, "/api/v1/ping"); rec.Code != http.StatusOK || rec.Body.String() != "pong" {
		t.Fatalf("unexpected v1 response %d %q", rec.Code, rec.Body.String())
	}
	if rec := get(engine, "/api/v1/ops/ping"); rec.Code != http.StatusOK || rec.Body.String() != "ops pong" {
		t.Fatalf("unexpected ops response %d %q", rec.Code, rec.Body.String())
	}
	if rec := get(engine, "/api/v1/ping"); rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected a request id header")
	}
}

func TestMetricsEndpointCountsRequests(t *testing.T) {
	engine := New(newApp(nil))
	get(engine, "/api/v1/ping")

	rec := get(engine, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "http_requests_total") {
		t.Fatal("expected request counter in scrape output")
	}
}
