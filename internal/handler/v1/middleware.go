package v1

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/doctors-portal/api/internal/domain"
	"github.com/doctors-portal/api/pkg/auth"
	"github.com/doctors-portal/api/pkg/metrics"
)

const contextClaimsKey = "claims"

// Authenticate verifies the bearer token when one is presented and stashes
// the resulting identity on the request context. A request without a token
// passes through anonymous; a request with a bad token is rejected outright.
// The two failure kinds stay distinguishable: no token at all only fails
// later, at RequireAuth, with 401.
func Authenticate(verifier auth.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		raw := strings.TrimPrefix(header, "Bearer ")
		if raw == header || raw == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
				Error: "malformed authorization header",
				Code:  "AUTH_INVALID",
			})
			return
		}

		claims, err := verifier.Verify(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
				Error: "invalid or expired token",
				Code:  "AUTH_INVALID",
			})
			return
		}

		c.Set(contextClaimsKey, claims)
		c.Next()
	}
}

// RequireAuth rejects anonymous requests with 401. Token validity was already
// settled by Authenticate.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claimsFromContext(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Error: "authentication required",
				Code:  "AUTH_MISSING",
			})
			return
		}
		c.Next()
	}
}

// RequireRole gates a route to the given roles. Role mismatch on a valid
// identity is 403, never 401.
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	allowed := make(map[domain.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		claims := claimsFromContext(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Error: "authentication required",
				Code:  "AUTH_MISSING",
			})
			return
		}
		if _, ok := allowed[claims.Role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
				Error: "access denied",
				Code:  "FORBIDDEN",
			})
			return
		}
		c.Next()
	}
}

// RequestLogger emits one structured line per request.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		)
	}
}

// Observe records the HTTP request metrics for every route.
func Observe(m *metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		m.InFlightGauge.Inc()
		start := time.Now()

		c.Next()

		m.InFlightGauge.Dec()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.RequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		m.RequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}
