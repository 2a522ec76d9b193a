package handler

import (
	"net/http"

	"lead_funnel_backend/internal/chat/session"
	"lead_funnel_backend/platform/httpkit"
	"lead_funnel_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

type SendMessageRequest struct {
	Message string `json:"message" validate:"required,max=2000"`
}

type HTTPHandler struct {
	svc *session.Service
	val *validator.Validator
}

func NewHTTPHandler(svc *session.Service, val *validator.Validator) *HTTPHandler {
	return &HTTPHandler{svc: svc, val: val}
}

func (h *HTTPHandler) RegisterRoutes(v1 *gin.RouterGroup) {
	v1.GET("/chat/greeting", h.Greeting)
	v1.GET("/leads/:id/chat", h.History)
	v1.POST("/leads/:id/chat", h.Send)
}

func (h *HTTPHandler) Greeting(c *gin.Context) {
	httpkit.OK(c, h.svc.Greeting())
}

func (h *HTTPHandler) Send(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	exchange, err := h.svc.Send(c.Request.Context(), c.Param("id"), req.Message)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, exchange)
}

func (h *HTTPHandler) History(c *gin.Context) {
	messages, err := h.svc.History(c.Request.Context(), c.Param("id"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"messages": messages})
}
