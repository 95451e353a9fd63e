package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"isp-system/pkg/service"
	"isp-system/pkg/utils"
)

type fakePermissions struct {
	byRole map[uint64][]string
	err    error
}

func (f *fakePermissions) GetRolePermissionsNames(_ context.Context, roleID uint64) ([]string, error) {
	return f.byRole[roleID], f.err
}

type fakeDenyList struct {
	revoked map[string]bool
}

func (f *fakeDenyList) IsTokenRevoked(_ context.Context, jti string) (bool, error) {
	return f.revoked[jti], nil
}

type authFixture struct {
	e      *echo.Echo
	jwtSvc service.JWTService
	deny   *fakeDenyList
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	jwtSvc := service.NewJWTService("test-secret", time.Minute, time.Hour, zap.NewNop())
	perms := &fakePermissions{byRole: map[uint64][]string{
		1: {"superuser"},
		2: {"plans:view", "scope:operator"},
	}}
	deny := &fakeDenyList{revoked: map[string]bool{}}
	mw := NewAuthMiddleware(jwtSvc, perms, deny, zap.NewNop())

	e := echo.New()
	g := e.Group("/api", mw.Auth)
	g.GET("/plans", func(c echo.Context) error {
		userID, err := utils.GetUserIDFromCtx(c.Request().Context())
		require.NoError(t, err)
		return c.JSON(http.StatusOK, map[string]uint64{"user": userID})
	}, mw.AuthorizeAny("plans:view"))
	g.DELETE("/plans/1", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	}, mw.AuthorizeAny("plans:delete"))

	return &authFixture{e: e, jwtSvc: jwtSvc, deny: deny}
}

func (f *authFixture) do(method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func TestAuth_MissingHeader(t *testing.T) {
	f := newAuthFixture(t)
	rec := f.do(http.MethodGet, "/api/plans", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_AllowsWithPermission(t *testing.T) {
	f := newAuthFixture(t)
	access, _, err := f.jwtSvc.GenerateTokens(service.TokenSubject{UserID: 5, RoleID: 2, RoleCode: "OPERATOR"})
	require.NoError(t, err)

	rec := f.do(http.MethodGet, "/api/plans", access)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"user":5`)

	rec = f.do(http.MethodDelete, "/api/plans/1", access)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAuth_SuperuserBypasses(t *testing.T) {
	f := newAuthFixture(t)
	access, _, err := f.jwtSvc.GenerateTokens(service.TokenSubject{UserID: 1, RoleID: 1, RoleCode: "ADMIN"})
	require.NoError(t, err)

	rec := f.do(http.MethodDelete, "/api/plans/1", access)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAuth_RejectsRefreshAndRevoked(t *testing.T) {
	f := newAuthFixture(t)
	access, refresh, err := f.jwtSvc.GenerateTokens(service.TokenSubject{UserID: 5, RoleID: 2})
	require.NoError(t, err)

	rec := f.do(http.MethodGet, "/api/plans", refresh)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	claims, err := f.jwtSvc.ValidateToken(access)
	require.NoError(t, err)
	f.deny.revoked[claims.ID] = true

	rec = f.do(http.MethodGet, "/api/plans", access)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_PermissionLookupFails(t *testing.T) {
	jwtSvc := service.NewJWTService("s", time.Minute, time.Hour, zap.NewNop())
	mw := NewAuthMiddleware(jwtSvc, &fakePermissions{err: errors.New("redis down")}, nil, zap.NewNop())
	e := echo.New()
	e.GET("/x", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, mw.Auth)

	access, _, err := jwtSvc.GenerateTokens(service.TokenSubject{UserID: 3, RoleID: 9})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+access)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestMetrics_CountsByRoute(t *testing.T) {
	m := NewMetrics("isp_test")
	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/api/plans/:id", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/metrics", m.Handler())

	for _, id := range []string{"1", "2"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/plans/"+id, nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	assert.Contains(t, body, `isp_test_http_requests_total{method="GET",route="/api/plans/:id",status="200"} 2`)
	assert.Contains(t, body, "isp_test_http_request_duration_seconds")
}
