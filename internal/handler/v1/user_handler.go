package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/doctors-portal/api/internal/service"
)

type UserHandler struct {
	auth *service.AuthService
}

func NewUserHandler(auth *service.AuthService) *UserHandler {
	return &UserHandler{auth: auth}
}

type upsertUserRequest struct {
	Name     string `json:"name"`
	Password string `json:"password,omitempty"`
}

type upsertUserResponse struct {
	User  any                  `json:"user"`
	Token *service.IssuedToken `json:"token"`
}

// Upsert creates or updates the profile at /user/:email and returns a fresh
// bearer token for it.
func (h *UserHandler) Upsert(c *gin.Context) {
	email := c.Param("email")

	var req upsertUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, token, err := h.auth.UpsertUser(c.Request.Context(), email, req.Name, req.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, upsertUserResponse{User: user, Token: token})
}

func (h *UserHandler) List(c *gin.Context) {
	users, err := h.auth.ListUsers(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, users)
}

// IsAdmin answers whether the email holds the administrator role. The route
// is public so clients can decide which dashboard to render.
func (h *UserHandler) IsAdmin(c *gin.Context) {
	admin, err := h.auth.IsAdmin(c.Request.Context(), c.Param("email"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"admin": admin})
}

func (h *UserHandler) GrantAdmin(c *gin.Context) {
	err := h.auth.GrantAdmin(c.Request.Context(), c.Param("email"), claimsFromContext(c), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"granted": true})
}
