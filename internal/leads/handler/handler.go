package handler

import (
	"net/http"

	"lead_funnel_backend/internal/leads/service"
	"lead_funnel_backend/internal/leads/transport"
	"lead_funnel_backend/platform/httpkit"
	"lead_funnel_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes mounts the visitor facing lead endpoints.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("/:id", h.GetByID)
	rg.POST("/:id/sessions", h.StartSession)
	rg.POST("/:id/actions", h.TrackAction)
	rg.POST("/:id/content-views", h.RecordContentView)
	rg.POST("/:id/email", h.CaptureEmail)
	rg.PUT("/:id/qualification", h.UpdateQualification)
	rg.POST("/:id/outcome", h.SetOutcome)
	rg.POST("/:id/route", h.Route)
	rg.GET("/:id/next-actions", h.NextActions)
}

// RegisterOpsRoutes mounts maintenance endpoints.
func (h *Handler) RegisterOpsRoutes(rg *gin.RouterGroup) {
	rg.POST("/sweep", h.Sweep)
}

func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateLeadRequest
	if c.Request.ContentLength > 0 {
		if !h.bind(c, &req) {
			return
		}
	}

	lead, err := h.svc.CreateAnonymous(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, lead)
}

func (h *Handler) GetByID(c *gin.Context) {
	lead, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

func (h *Handler) StartSession(c *gin.Context) {
	lead, err := h.svc.StartSession(c.Request.Context(), c.Param("id"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

func (h *Handler) TrackAction(c *gin.Context) {
	var req transport.TrackActionRequest
	if !h.bind(c, &req) {
		return
	}

	lead, err := h.svc.TrackAction(c.Request.Context(), c.Param("id"), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

func (h *Handler) RecordContentView(c *gin.Context) {
	var req transport.ContentViewRequest
	if !h.bind(c, &req) {
		return
	}

	lead, err := h.svc.RecordContentView(c.Request.Context(), c.Param("id"), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

func (h *Handler) CaptureEmail(c *gin.Context) {
	var req transport.CaptureEmailRequest
	if !h.bind(c, &req) {
		return
	}

	lead, err := h.svc.CaptureEmail(c.Request.Context(), c.Param("id"), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

func (h *Handler) UpdateQualification(c *gin.Context) {
	var req transport.QualificationRequest
	if !h.bind(c, &req) {
		return
	}

	lead, err := h.svc.UpdateQualification(c.Request.Context(), c.Param("id"), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

func (h *Handler) SetOutcome(c *gin.Context) {
	var req transport.OutcomeRequest
	if !h.bind(c, &req) {
		return
	}

	lead, err := h.svc.SetOutcome(c.Request.Context(), c.Param("id"), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

func (h *Handler) Route(c *gin.Context) {
	result, err := h.svc.Route(c.Request.Context(), c.Param("id"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) NextActions(c *gin.Context) {
	result, err := h.svc.NextActions(c.Request.Context(), c.Param("id"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) Sweep(c *gin.Context) {
	result, err := h.svc.SweepInactive(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return false
	}
	return true
}
