// Package handler exposes email sequence previews, enrollments and analytics.
package handler

import (
	"lead_funnel_backend/internal/email"
	"lead_funnel_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *email.Service
}

func New(svc *email.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterLeadRoutes mounts the per-lead endpoints on the /leads group.
func (h *Handler) RegisterLeadRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id/email/preview", h.Preview)
	rg.GET("/:id/email/enrollments", h.Enrollments)
}

// RegisterOpsRoutes mounts the sequence catalog and its counters.
func (h *Handler) RegisterOpsRoutes(rg *gin.RouterGroup) {
	rg.GET("/sequences", h.ListSequences)
	rg.GET("/sequences/:id/analytics", h.Analytics)
}

// Preview renders ?sequence= (or the sequence the lead qualifies for) without sending.
func (h *Handler) Preview(c *gin.Context) {
	seq, err := h.svc.PreviewForLead(c.Request.Context(), c.Param("id"), c.Query("sequence"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, seq)
}

func (h *Handler) Enrollments(c *gin.Context) {
	enrollments, err := h.svc.Enrollments(c.Request.Context(), c.Param("id"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"leadId": c.Param("id"), "enrollments": enrollments})
}

func (h *Handler) ListSequences(c *gin.Context) {
	httpkit.OK(c, gin.H{"sequences": h.svc.Catalog().List()})
}

func (h *Handler) Analytics(c *gin.Context) {
	stats, err := h.svc.Analytics(c.Request.Context(), c.Param("id"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, stats)
}
