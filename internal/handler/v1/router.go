package v1

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/doctors-portal/api/internal/config"
	"github.com/doctors-portal/api/internal/domain"
	"github.com/doctors-portal/api/pkg/auth"
	"github.com/doctors-portal/api/pkg/metrics"
)

type RouterDeps struct {
	Config    *config.Config
	Verifier  auth.TokenVerifier
	Metrics   *metrics.Collector
	Log       *zap.Logger
	Treatment *TreatmentHandler
	Booking   *BookingHandler
	User      *UserHandler
	Doctor    *DoctorHandler
	Payment   *PaymentHandler
}

func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(
		gin.Recovery(),
		RequestLogger(deps.Log),
		Observe(deps.Metrics),
		cors.New(cors.Config{
			AllowOrigins: deps.Config.CORS.AllowedOrigins,
			AllowMethods: deps.Config.CORS.AllowedMethods,
			AllowHeaders: deps.Config.CORS.AllowedHeaders,
			MaxAge:       deps.Config.CORS.MaxAge,
		}),
		Authenticate(deps.Verifier),
	)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": deps.Config.App.Version})
	})
	r.GET("/metrics", gin.WrapH(metrics.MetricsHandler()))

	// Public
	r.GET("/service", deps.Treatment.List)
	r.GET("/available", deps.Treatment.Available)
	r.POST("/booking", deps.Booking.Create)
	r.GET("/admin/:email", deps.User.IsAdmin)

	// gin's route tree cannot hold /user/:email next to /user/admin/:email,
	// so both PUT surfaces share one catch-all and split here. The profile
	// upsert is public; the admin grant requires an administrator token.
	r.PUT("/user/*rest", func(c *gin.Context) {
		rest := strings.TrimPrefix(c.Param("rest"), "/")
		if email, isGrant := strings.CutPrefix(rest, "admin/"); isGrant {
			claims := claimsFromContext(c)
			if claims == nil {
				c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required", Code: "AUTH_MISSING"})
				return
			}
			if claims.Role != domain.RoleAdmin {
				c.JSON(http.StatusForbidden, ErrorResponse{Error: "access denied", Code: "FORBIDDEN"})
				return
			}
			c.Params = append(c.Params, gin.Param{Key: "email", Value: email})
			deps.User.GrantAdmin(c)
			return
		}
		c.Params = append(c.Params, gin.Param{Key: "email", Value: rest})
		deps.User.Upsert(c)
	})

	// Any authenticated identity
	authed := r.Group("", RequireAuth())
	{
		authed.GET("/booking", deps.Booking.ListByPatient)
		authed.GET("/booking/:id", deps.Booking.Get)
		authed.PATCH("/booking/:id", deps.Booking.MarkPaid)
		authed.GET("/users", deps.User.List)
		authed.POST("/create-payment-intent", deps.Payment.CreateIntent)
	}

	// Administrators only
	admin := r.Group("", RequireRole(domain.RoleAdmin))
	{
		admin.POST("/doctor", deps.Doctor.Add)
		admin.DELETE("/doctor/:email", deps.Doctor.Remove)
		admin.GET("/doctor", deps.Doctor.List)
	}

	return r
}
