package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-zone-analytics/internal/models"
	appErrors "github.com/noah-isme/sma-zone-analytics/pkg/errors"
)

type validatorStub struct {
	claims map[string]*models.JWTClaims
}

func (v validatorStub) ValidateToken(token string) (*models.JWTClaims, error) {
	claims, ok := v.claims[token]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}
	return claims, nil
}

func newTestRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	validator := validatorStub{claims: map[string]*models.JWTClaims{
		"admin":   {UserID: "u-admin", Role: models.RoleAdmin},
		"teacher": {UserID: "u-teacher", Role: models.RoleTeacher},
		"student": {UserID: "s1", Role: models.RoleStudent},
	}}
	chain := append([]gin.HandlerFunc{JWT(validator)}, handlers...)
	chain = append(chain, func(c *gin.Context) { c.Status(http.StatusNoContent) })
	router.GET("/zones/students/:studentId", chain...)
	return router
}

func serve(router *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestJWTRejectsMissingAndInvalidTokens(t *testing.T) {
	router := newTestRouter()

	assert.Equal(t, http.StatusUnauthorized, serve(router, "/zones/students/s1", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, "/zones/students/s1", "forged").Code)
	assert.Equal(t, http.StatusNoContent, serve(router, "/zones/students/s1", "teacher").Code)

	req := httptest.NewRequest(http.MethodGet, "/zones/students/s1", nil)
	req.Header.Set("Authorization", "Basic abc")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRoles(t *testing.T) {
	router := newTestRouter(RequireRoles(models.RoleAdmin, models.RoleSuperAdmin))

	assert.Equal(t, http.StatusNoContent, serve(router, "/zones/students/s1", "admin").Code)
	assert.Equal(t, http.StatusForbidden, serve(router, "/zones/students/s1", "teacher").Code)
}

func TestRequireRolesOrSelf(t *testing.T) {
	router := newTestRouter(RequireRolesOrSelf("studentId", models.RoleTeacher))

	assert.Equal(t, http.StatusNoContent, serve(router, "/zones/students/s1", "teacher").Code)
	assert.Equal(t, http.StatusNoContent, serve(router, "/zones/students/s1", "student").Code)
	assert.Equal(t, http.StatusForbidden, serve(router, "/zones/students/s2", "student").Code)
}

func TestResponseMeta(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var meta map[string]interface{}
	router := gin.New()
	router.Use(WithResponseMeta())
	router.GET("/", func(c *gin.Context) {
		SetCacheHit(c, true)
		SetGeneration(c, "gen-1")
		SetGeneration(c, "")
		meta = ExtractMeta(c)
		c.Status(http.StatusOK)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotNil(t, meta)
	assert.Equal(t, true, meta[cacheHitKey])
	assert.Equal(t, "gen-1", meta[generationKey])
	assert.Contains(t, meta, "processing_time_ms")
}

type observerStub struct {
	paths []string
}

func (o *observerStub) ObserveHTTPRequest(method, path string, status int, _ time.Duration) {
	o.paths = append(o.paths, method+" "+path)
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	observer := &observerStub{}
	router := gin.New()
	router.Use(Metrics(observer))
	router.GET("/zones/classes/:classId", func(c *gin.Context) { c.Status(http.StatusOK) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/zones/classes/c-17", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, []string{"GET /zones/classes/:classId", "GET unmatched"}, observer.paths)
}
