// Package observability exposes Prometheus metrics for the funnel.
// A nil *Metrics is valid and records nothing.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	gatherer          prometheus.Gatherer
	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	leadsCreated      prometheus.Counter
	statusTransitions *prometheus.CounterVec
	rulesFired        *prometheus.CounterVec
	rulesFailed       *prometheus.CounterVec
	emails            *prometheus.CounterVec
	salesAlerts       *prometheus.CounterVec
}

// NewMetrics registers the funnel collectors on a dedicated registry.
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.NewRegistry())
}

// NewMetricsWith registers the funnel collectors on reg.
func NewMetricsWith(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		gatherer: reg,
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total count of HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		leadsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "funnel_leads_created_total",
			Help: "Anonymous leads created on first visit.",
		}),
		statusTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "funnel_lead_status_transitions_total",
			Help: "Lead status changes by source and target status.",
		}, []string{"from", "to"}),
		rulesFired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "funnel_routing_rules_fired_total",
			Help: "Routing actions scheduled per rule.",
		}, []string{"rule", "action"}),
		rulesFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "funnel_routing_rules_failed_total",
			Help: "Routing actions that failed to schedule or dispatch per rule.",
		}, []string{"rule", "action"}),
		emails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "funnel_emails_total",
			Help: "Sequence email deliveries by sequence and outcome.",
		}, []string{"sequence", "outcome"}),
		salesAlerts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "funnel_sales_alerts_total",
			Help: "Sales alerts raised by priority.",
		}, []string{"priority"}),
	}

	reg.MustRegister(
		m.httpRequestsTotal,
		m.httpDuration,
		m.leadsCreated,
		m.statusTransitions,
		m.rulesFired,
		m.rulesFailed,
		m.emails,
		m.salesAlerts,
	)

	return m
}

// Middleware records request counts and durations by matched route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if m == nil {
			return
		}
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequestsTotal.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) LeadCreated() {
	if m == nil {
		return
	}
	m.leadsCreated.Inc()
}

func (m *Metrics) StatusChanged(from, to string) {
	if m == nil {
		return
	}
	m.statusTransitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) RuleFired(ruleID, action string) {
	if m == nil {
		return
	}
	m.rulesFired.WithLabelValues(ruleID, action).Inc()
}

func (m *Metrics) RuleFailed(ruleID, action string) {
	if m == nil {
		return
	}
	m.rulesFailed.WithLabelValues(ruleID, action).Inc()
}

func (m *Metrics) EmailOutcome(sequenceID, outcome string) {
	if m == nil {
		return
	}
	m.emails.WithLabelValues(sequenceID, outcome).Inc()
}

func (m *Metrics) SalesAlert(priority string) {
	if m == nil {
		return
	}
	m.salesAlerts.WithLabelValues(priority).Inc()
}
