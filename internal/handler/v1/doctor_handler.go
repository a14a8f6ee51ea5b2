package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/doctors-portal/api/internal/domain/doctor"
	"github.com/doctors-portal/api/internal/service"
)

type DoctorHandler struct {
	doctors *service.DoctorService
}

func NewDoctorHandler(doctors *service.DoctorService) *DoctorHandler {
	return &DoctorHandler{doctors: doctors}
}

type addDoctorRequest struct {
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Specialty string `json:"specialty"`
	ImageURL  string `json:"img"`
}

func (h *DoctorHandler) Add(c *gin.Context) {
	var req addDoctorRequest
	if !bindJSON(c, &req) {
		return
	}

	d, err := h.doctors.AddDoctor(c.Request.Context(), &doctor.AddDoctorCommand{
		Name:      req.Name,
		Email:     req.Email,
		Specialty: req.Specialty,
		ImageURL:  req.ImageURL,
	}, claimsFromContext(c), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, d)
}

func (h *DoctorHandler) Remove(c *gin.Context) {
	err := h.doctors.RemoveDoctor(c.Request.Context(), c.Param("email"), claimsFromContext(c), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (h *DoctorHandler) List(c *gin.Context) {
	doctors, err := h.doctors.ListDoctors(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, doctors)
}
