package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"isp-system/internal/authz"
	"isp-system/internal/controllers"
	"isp-system/pkg/middleware"
	"isp-system/pkg/service"
)

type rolePermissions map[uint64][]string

func (r rolePermissions) GetRolePermissionsNames(_ context.Context, roleID uint64) ([]string, error) {
	return r[roleID], nil
}

const (
	roleTechnician uint64 = 4
	roleVendor     uint64 = 5
)

// RouterTestSuite собирает таблицу маршрутов без БД: контроллеры не вызываются,
// проверяется только то, что отсекают middleware.
type RouterTestSuite struct {
	suite.Suite
	Echo   *echo.Echo
	JWT    service.JWTService
	tokens map[uint64]string
}

func (s *RouterTestSuite) SetupSuite() {
	nop := zap.NewNop()
	s.JWT = service.NewJWTService("router-test-secret", time.Hour, 2*time.Hour, nop)
	perms := rolePermissions{
		roleTechnician: authz.RoleDefaults["TECHNICIAN"],
		roleVendor:     authz.RoleDefaults["VENDOR"],
	}
	authMW := middleware.NewAuthMiddleware(s.JWT, perms, nil, nop)

	e := echo.New()
	api := e.Group("/api")
	runAuthRouter(api, controllers.NewAuthController(nil, nop), authMW, 0)

	secure := api.Group("", authMW.Auth)
	runAdminRouter(secure, authMW,
		controllers.NewOperatorController(nil, nop),
		controllers.NewUserController(nil, nop),
		controllers.NewRoleController(nil, nop),
		controllers.NewActivityLogController(nil, nop),
		controllers.NewDashboardController(nil, nop),
	)
	runBillingRouter(secure, authMW,
		controllers.NewPlanController(nil, nop),
		controllers.NewSubscriptionController(nil, nop),
		controllers.NewPaymentController(nil, nop),
	)
	runSupportRouter(secure, authMW, controllers.NewComplaintController(nil, nop), controllers.NewTicketController(nil, nop))
	runFieldRouter(secure, authMW, controllers.NewTaskController(nil, nop))
	runHRRouter(secure, authMW, controllers.NewAttendanceController(nil, nop), controllers.NewLeaveController(nil, nop))
	runSupplyRouter(secure, authMW,
		controllers.NewVendorController(nil, nop),
		controllers.NewInventoryController(nil, nop),
		controllers.NewOrderController(nil, nop),
		controllers.NewReturnController(nil, nop),
		controllers.NewShipmentController(nil, nop),
	)
	s.Echo = e

	s.tokens = make(map[uint64]string)
	for _, roleID := range []uint64{roleTechnician, roleVendor} {
		access, _, err := s.JWT.GenerateTokens(service.TokenSubject{UserID: 100 + roleID, RoleID: roleID})
		s.Require().NoError(err)
		s.tokens[roleID] = access
	}
}

func (s *RouterTestSuite) do(method, path string, roleID uint64) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token, ok := s.tokens[roleID]; ok {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}

func (s *RouterTestSuite) TestRoutesRegistered() {
	registered := make(map[string]bool)
	for _, r := range s.Echo.Routes() {
		registered[r.Method+" "+r.Path] = true
	}

	for _, route := range []string{
		"POST /api/auth/login",
		"POST /api/auth/refresh",
		"GET /api/dashboard",
		"GET /api/logs",
		"PUT /api/roles/:id/permissions",
		"GET /api/plans/stats",
		"GET /api/payments/export",
		"POST /api/complaints/:id/attachments",
		"POST /api/tickets/:id/escalate",
		"PUT /api/tasks/:id/assign",
		"PUT /api/technician/tasks/:id",
		"POST /api/attendance/check-in",
		"PUT /api/leaves/:id/review",
		"GET /api/vendor/profile",
		"POST /api/inventory/import",
		"POST /api/inventory/:id/adjust",
		"DELETE /api/shipments/:id",
	} {
		s.True(registered[route], route)
	}
}

func (s *RouterTestSuite) TestUnauthenticated() {
	rec := s.do(http.MethodGet, "/api/plans", 0)
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *RouterTestSuite) TestRolePermissionsGate() {
	s.Equal(http.StatusForbidden, s.do(http.MethodGet, "/api/operators", roleTechnician).Code)
	s.Equal(http.StatusForbidden, s.do(http.MethodPut, "/api/tasks/1/assign", roleTechnician).Code)
	s.Equal(http.StatusForbidden, s.do(http.MethodPost, "/api/inventory/import", roleVendor).Code)
	s.Equal(http.StatusForbidden, s.do(http.MethodGet, "/api/payments/export", roleVendor).Code)
}

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}

func TestAuthRateLimiter(t *testing.T) {
	e := echo.New()
	e.POST("/login", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }, authRateLimiter(1))

	codes := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	require.Len(t, codes, 4)
	assert.Equal(t, http.StatusNoContent, codes[0])
	assert.Contains(t, codes, http.StatusTooManyRequests)
}
