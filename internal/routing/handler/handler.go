// Package handler exposes the routing rule table and its performance over HTTP.
package handler

import (
	"net/http"
	"strconv"

	"lead_funnel_backend/internal/routing"
	"lead_funnel_backend/platform/apperr"
	"lead_funnel_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

const defaultMinSample = 10

type Handler struct {
	engine *routing.Engine
}

func New(engine *routing.Engine) *Handler {
	return &Handler{engine: engine}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/rules", h.ListRules)
	rg.POST("/rules", h.AddRule)
	rg.GET("/rules/performance", h.Performance)
	rg.GET("/rules/optimize", h.Optimize)
	rg.PATCH("/rules/:id", h.UpdateRule)
	rg.POST("/rules/:id/deactivate", h.DeactivateRule)
}

// ListRules returns every rule in evaluation order; ?active=true limits it to active ones.
func (h *Handler) ListRules(c *gin.Context) {
	table := h.engine.Table()
	rules := table.All()
	if c.Query("active") == "true" {
		rules = table.Active()
	}
	httpkit.OK(c, gin.H{"rules": rules, "version": table.Version()})
}

// AddRule stores a new rule. A body without "active" adds the rule enabled.
func (h *Handler) AddRule(c *gin.Context) {
	rule := routing.Rule{Active: true}
	if err := c.ShouldBindJSON(&rule); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if httpkit.HandleError(c, h.engine.Table().Add(rule)) {
		return
	}
	stored, _ := h.engine.Table().Get(rule.ID)
	httpkit.JSON(c, http.StatusCreated, stored)
}

func (h *Handler) UpdateRule(c *gin.Context) {
	var patch routing.RulePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	rule, found, err := h.engine.Table().Update(c.Param("id"), patch)
	if !found {
		err = apperr.NotFound("routing rule not found")
	}
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, rule)
}

func (h *Handler) DeactivateRule(c *gin.Context) {
	if !h.engine.Table().Deactivate(c.Param("id")) {
		httpkit.HandleError(c, apperr.NotFound("routing rule not found"))
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Performance(c *gin.Context) {
	perf, err := h.engine.Performance(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"rules": perf})
}

// Optimize lists underperforming rules. minSample defaults to 10 firings.
func (h *Handler) Optimize(c *gin.Context) {
	minSample := defaultMinSample
	if raw := c.Query("minSample"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			httpkit.Error(c, http.StatusBadRequest, "minSample must be a positive integer", nil)
			return
		}
		minSample = n
	}
	suggestions, err := h.engine.OptimizeRules(c.Request.Context(), minSample)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"minSample": minSample, "suggestions": suggestions})
}
