package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCountersAndExposition(t *testing.T) {
	m := NewMetrics()
	m.RuleFired("hot_lead_immediate", "sales_notification")
	m.RuleFired("hot_lead_immediate", "sales_notification")
	m.EmailOutcome("hot-lead-immediate", "sent")

	if got := testutil.ToFloat64(m.rulesFired.WithLabelValues("hot_lead_immediate", "sales_notification")); got != 2 {
		t.Fatalf("expected 2 fired rules, got %v", got)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "funnel_emails_total") {
		t.Fatalf("expected exposition to include email counter, got:\n%s", rec.Body.String())
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.LeadCreated()
	m.StatusChanged("cold", "warm")
	m.RuleFailed("r", "a")
	m.SalesAlert("urgent")
}

func TestMiddlewareRecordsRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/leads/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/leads/abc", nil))

	if got := testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("/leads/:id", "204")); got != 1 {
		t.Fatalf("expected one request on the route template, got %v", got)
	}
}
