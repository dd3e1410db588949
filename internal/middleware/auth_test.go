package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"crmtasks/internal/authz"
)

var testKey = []byte("test-secret")

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(creds Credentials, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(AuthMiddleware(creds))
	r.Use(extra...)
	echo := func(c *gin.Context) {
		role, _ := c.Get(CtxRoleID)
		tenant, _ := c.Get(CtxTenantID)
		c.JSON(http.StatusOK, gin.H{"role": role, "tenant": tenant})
	}
	r.GET("/tasks", echo)
	r.POST("/tasks", echo)
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func do(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_Bearer(t *testing.T) {
	r := newRouter(Credentials{JWTKey: testKey})
	tok, err := IssueToken(testKey, 7, authz.RoleSales, "tenant-a", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := do(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"role":10,"tenant":"tenant-a"}`, w.Body.String())
}

func TestAuthMiddleware_CookieAndQuery(t *testing.T) {
	r := newRouter(Credentials{JWTKey: testKey})
	tok, err := IssueToken(testKey, 7, authz.RoleAdmin, "", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: tok})
	assert.Equal(t, http.StatusOK, do(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/tasks?token="+tok, nil)
	assert.Equal(t, http.StatusOK, do(r, req).Code)
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	r := newRouter(Credentials{JWTKey: testKey})
	expired, err := IssueToken(testKey, 1, authz.RoleAdmin, "", -time.Hour)
	require.NoError(t, err)
	foreign, err := IssueToken([]byte("other"), 1, authz.RoleAdmin, "", time.Hour)
	require.NoError(t, err)

	for name, header := range map[string]string{
		"missing":   "",
		"scheme":    "Basic abc",
		"expired":   "Bearer " + expired,
		"signature": "Bearer " + foreign,
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			assert.Equal(t, http.StatusUnauthorized, do(r, req).Code)
		})
	}
}

func TestAuthMiddleware_PublicPath(t *testing.T) {
	r := newRouter(Credentials{JWTKey: testKey})
	assert.Equal(t, http.StatusOK, do(r, httptest.NewRequest(http.MethodGet, "/healthz", nil)).Code)
}

func TestAuthMiddleware_ServiceKey(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("service-key"), bcrypt.MinCost)
	require.NoError(t, err)
	r := newRouter(Credentials{ServiceKeyHash: hash})

	req := httptest.NewRequest(http.MethodPost, "/tasks", nil)
	req.Header.Set("apikey", "service-key")
	w := do(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"role":50,"tenant":null}`, w.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/tasks", nil)
	req.Header.Set("apikey", "wrong")
	assert.Equal(t, http.StatusUnauthorized, do(r, req).Code)
}

func TestReadOnlyGuardAndRoles(t *testing.T) {
	r := newRouter(Credentials{JWTKey: testKey}, ReadOnlyGuard(), RequireRoles(authz.TaskRoles...))
	audit, err := IssueToken(testKey, 3, authz.RoleAudit, "", time.Hour)
	require.NoError(t, err)
	stranger, err := IssueToken(testKey, 4, 99, "", time.Hour)
	require.NoError(t, err)

	get := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	get.Header.Set("Authorization", "Bearer "+audit)
	assert.Equal(t, http.StatusOK, do(r, get).Code)

	post := httptest.NewRequest(http.MethodPost, "/tasks", nil)
	post.Header.Set("Authorization", "Bearer "+audit)
	assert.Equal(t, http.StatusForbidden, do(r, post).Code)

	other := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	other.Header.Set("Authorization", "Bearer "+stranger)
	assert.Equal(t, http.StatusForbidden, do(r, other).Code)
}
