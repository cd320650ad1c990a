package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serveApp(t *testing.T) *gin.Engine {
	t.Helper()
	r := gin.New()
	r.GET("/app/*path", InviteRedirect())
	return r
}

func TestInviteRedirectRequiresToken(t *testing.T) {
	r := serveApp(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/app/rfq/123", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "token is required")
}

func TestInviteRedirectPreservesDestination(t *testing.T) {
	r := serveApp(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/app/rfq/123?token=inv_9f8e7d6c", nil))
	require.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.Equal(t,
		"/auth/request-otp?redirectUrl=%2Fapp%2Frfq%2F123&token=inv_9f8e7d6c",
		w.Header().Get("Location"))
}

func TestAdminOnlyRejectsMissingToken(t *testing.T) {
	r := gin.New()
	r.GET("/admin", AdminOnly("superadmin"), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminOnlyRejectsWrongRole(t *testing.T) {
	token, err := utils.GenerateJWT("maker@factoryspace.in", "employee")
	require.NoError(t, err)

	r := gin.New()
	r.GET("/admin", AdminOnly("superadmin"), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Admin access required")
}

func TestAdminOnlyAllowsAdminAndExposesEmail(t *testing.T) {
	token, err := utils.GenerateJWT("admin@factoryspace.in", "SuperAdmin")
	require.NoError(t, err)

	r := gin.New()
	r.GET("/admin", AdminOnly("superadmin"), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"admin_email": c.GetString("admin_email")})
	})

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "admin@factoryspace.in")
}

func TestAdminRoleDefault(t *testing.T) {
	t.Setenv("ADMIN_ROLE", "")
	assert.Equal(t, "superadmin", adminRole())

	t.Setenv("ADMIN_ROLE", "platform_admin")
	assert.Equal(t, "platform_admin", adminRole())
}
