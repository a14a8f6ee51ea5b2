package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/doctors-portal/api/internal/service"
)

type TreatmentHandler struct {
	availability *service.AvailabilityService
}

func NewTreatmentHandler(availability *service.AvailabilityService) *TreatmentHandler {
	return &TreatmentHandler{availability: availability}
}

// List returns the treatment catalog with full slot lists.
func (h *TreatmentHandler) List(c *gin.Context) {
	treatments, err := h.availability.ListTreatments(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, treatments)
}

// Available returns per-treatment open slots for the requested date.
func (h *TreatmentHandler) Available(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		respondError(c, http.StatusBadRequest, "date query parameter is required")
		return
	}

	availability, err := h.availability.ComputeAvailability(c.Request.Context(), date)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, availability)
}
