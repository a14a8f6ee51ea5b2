package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/doctors-portal/api/internal/domain/booking"
	"github.com/doctors-portal/api/internal/service"
)

type BookingHandler struct {
	bookings *service.BookingService
}

func NewBookingHandler(bookings *service.BookingService) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

type submitBookingRequest struct {
	Treatment string `json:"treatment" binding:"required"`
	Date      string `json:"date" binding:"required"`
	Patient   string `json:"patient" binding:"required,email"`
	Slot      string `json:"slot" binding:"required"`
}

// Create submits a booking. A duplicate intent comes back 200 with
// accepted=false and the earlier booking; only a fresh admission is 201.
func (h *BookingHandler) Create(c *gin.Context) {
	var req submitBookingRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.bookings.SubmitBooking(c.Request.Context(), &booking.SubmitBookingCommand{
		Treatment: req.Treatment,
		Date:      req.Date,
		Patient:   req.Patient,
		Slot:      req.Slot,
	}, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if result.Accepted {
		respondCreated(c, result)
		return
	}
	respondOK(c, result)
}

// ListByPatient returns the caller's bookings. The patient query parameter
// must match the token identity.
func (h *BookingHandler) ListByPatient(c *gin.Context) {
	patient := c.Query("patient")
	if patient == "" {
		respondError(c, http.StatusBadRequest, "patient query parameter is required")
		return
	}

	bookings, err := h.bookings.ListPatientBookings(c.Request.Context(), patient, claimsFromContext(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, bookings)
}

func (h *BookingHandler) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	b, err := h.bookings.GetBooking(c.Request.Context(), id, claimsFromContext(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, b)
}

type markPaidRequest struct {
	TransactionID string `json:"transactionId" binding:"required"`
}

func (h *BookingHandler) MarkPaid(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req markPaidRequest
	if !bindJSON(c, &req) {
		return
	}

	b, err := h.bookings.MarkPaid(c.Request.Context(), id, req.TransactionID, claimsFromContext(c), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, b)
}
