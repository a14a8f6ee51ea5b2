package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/doctors-portal/api/internal/service"
)

type PaymentHandler struct {
	payments *service.PaymentService
}

func NewPaymentHandler(payments *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

type createPaymentIntentRequest struct {
	BookingID string `json:"bookingId" binding:"required"`
}

// CreateIntent opens a payment with the processor for the booking's price and
// hands the client secret back to the browser.
func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	var req createPaymentIntentRequest
	if !bindJSON(c, &req) {
		return
	}

	id, err := uuid.Parse(req.BookingID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid bookingId: must be a valid UUID")
		return
	}

	secret, err := h.payments.CreatePaymentIntent(c.Request.Context(), id, claimsFromContext(c), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"clientSecret": secret})
}
