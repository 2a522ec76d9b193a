package handler

import (
	"context"

	"lead_funnel_backend/internal/content/catalog"
	"lead_funnel_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Recommendations is the slice of catalog.Service the handler needs.
type Recommendations interface {
	Catalog() *catalog.Catalog
	History(ctx context.Context, leadID string) ([]catalog.RecommendationSet, error)
}

type Handler struct {
	svc Recommendations
}

func New(svc Recommendations) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(v1 *gin.RouterGroup) {
	v1.GET("/content/catalog", h.ListCatalog)
	v1.GET("/leads/:id/content/recommendations", h.ListForLead)
}

func (h *Handler) ListCatalog(c *gin.Context) {
	httpkit.OK(c, gin.H{"items": h.svc.Catalog().Items()})
}

func (h *Handler) ListForLead(c *gin.Context) {
	sets, err := h.svc.History(c.Request.Context(), c.Param("id"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"recommendations": sets})
}
