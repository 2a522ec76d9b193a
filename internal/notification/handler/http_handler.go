package handler

import (
	"context"
	"strconv"

	"lead_funnel_backend/internal/notification/alerts"
	"lead_funnel_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

const (
	defaultAlertLimit = 50
	maxAlertLimit     = 200
)

// AlertReader lists sales alerts.
type AlertReader interface {
	Alerts(ctx context.Context) ([]alerts.SalesAlert, error)
}

// PromptCollector hands out a lead's queued chat prompts.
type PromptCollector interface {
	Collect(ctx context.Context, leadID string) ([]alerts.ChatPrompt, error)
}

type HTTPHandler struct {
	alerts  AlertReader
	prompts PromptCollector
}

func NewHTTPHandler(feed AlertReader, prompts PromptCollector) *HTTPHandler {
	return &HTTPHandler{alerts: feed, prompts: prompts}
}

// RegisterSalesRoutes mounts the sales feed for dashboards.
func (h *HTTPHandler) RegisterSalesRoutes(rg *gin.RouterGroup) {
	rg.GET("/alerts", h.ListAlerts)
}

// RegisterWidgetRoutes mounts the chat widget polling endpoint under a lead group.
func (h *HTTPHandler) RegisterWidgetRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id/chat/prompts", h.CollectPrompts)
}

func (h *HTTPHandler) ListAlerts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultAlertLimit)))
	if limit < 1 {
		limit = defaultAlertLimit
	}
	if limit > maxAlertLimit {
		limit = maxAlertLimit
	}

	feed, err := h.alerts.Alerts(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	total := len(feed)
	if len(feed) > limit {
		feed = feed[:limit]
	}
	httpkit.OK(c, gin.H{"items": feed, "total": total})
}

func (h *HTTPHandler) CollectPrompts(c *gin.Context) {
	prompts, err := h.prompts.Collect(c.Request.Context(), c.Param("id"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"prompts": prompts})
}
