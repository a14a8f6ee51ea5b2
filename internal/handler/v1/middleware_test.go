package v1

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/doctors-portal/api/internal/domain"
	"github.com/doctors-portal/api/pkg/auth"
	"github.com/doctors-portal/api/pkg/metrics"
)

var (
	testMetricsOnce sync.Once
	testMetrics     *metrics.Collector
)

func testCollector() *metrics.Collector {
	testMetricsOnce.Do(func() {
		testMetrics = metrics.NewCollector("handlertest")
	})
	return testMetrics
}

// fakeVerifier maps fixed token strings to identities.
type fakeVerifier struct{}

func (fakeVerifier) Verify(token string) (*domain.Claims, error) {
	switch token {
	case "patient-token":
		return &domain.Claims{Email: "a@x.com", Role: domain.RolePatient}, nil
	case "admin-token":
		return &domain.Claims{Email: "root@x.com", Role: domain.RoleAdmin}, nil
	default:
		return nil, auth.ErrTokenInvalid
	}
}

func gatedEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Authenticate(fakeVerifier{}))

	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	r.GET("/open", ok)
	r.GET("/authed", RequireAuth(), ok)
	r.GET("/admin-only", RequireRole(domain.RoleAdmin), ok)
	return r
}

func doRequest(r *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticate_AnonymousPassesThroughOpenRoutes(t *testing.T) {
	r := gatedEngine()
	assert.Equal(t, http.StatusOK, doRequest(r, http.MethodGet, "/open", "").Code)
}

func TestAuthenticate_InvalidTokenIsForbiddenEvenOnOpenRoutes(t *testing.T) {
	r := gatedEngine()

	w := doRequest(r, http.MethodGet, "/open", "garbage")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_INVALID")
}

func TestAuthenticate_MalformedHeader(t *testing.T) {
	r := gatedEngine()

	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	req.Header.Set("Authorization", "Token abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_INVALID")
}

func TestRequireAuth_MissingTokenIs401(t *testing.T) {
	r := gatedEngine()

	w := doRequest(r, http.MethodGet, "/authed", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_MISSING")
}

func TestRequireAuth_ValidTokenPasses(t *testing.T) {
	r := gatedEngine()
	assert.Equal(t, http.StatusOK, doRequest(r, http.MethodGet, "/authed", "patient-token").Code)
}

func TestRequireRole_PatientCannotReachAdminRoutes(t *testing.T) {
	r := gatedEngine()

	w := doRequest(r, http.MethodGet, "/admin-only", "patient-token")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "FORBIDDEN")
}

func TestRequireRole_AdminPasses(t *testing.T) {
	r := gatedEngine()
	assert.Equal(t, http.StatusOK, doRequest(r, http.MethodGet, "/admin-only", "admin-token").Code)
}

func TestRequireRole_MissingTokenIs401NotForbidden(t *testing.T) {
	r := gatedEngine()
	assert.Equal(t, http.StatusUnauthorized, doRequest(r, http.MethodGet, "/admin-only", "").Code)
}
