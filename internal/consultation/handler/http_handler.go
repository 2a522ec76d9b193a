package handler

import (
	"context"

	"lead_funnel_backend/internal/consultation/booking"
	"lead_funnel_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// BookingLister reads a lead's reservations.
type BookingLister interface {
	ListForLead(ctx context.Context, leadID string) ([]booking.Booking, error)
}

type Handler struct {
	bookings BookingLister
}

func New(bookings BookingLister) *Handler {
	return &Handler{bookings: bookings}
}

func (h *Handler) RegisterRoutes(leads *gin.RouterGroup) {
	leads.GET("/:id/consultations", h.ListForLead)
}

func (h *Handler) ListForLead(c *gin.Context) {
	list, err := h.bookings.ListForLead(c.Request.Context(), c.Param("id"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"consultations": list})
}
