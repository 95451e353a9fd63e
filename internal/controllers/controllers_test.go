package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"isp-system/internal/dto"
	"isp-system/internal/entities"
	apperrors "isp-system/pkg/errors"
	"isp-system/pkg/export"
	"isp-system/pkg/service"
	"isp-system/pkg/types"
	"isp-system/pkg/utils"
	"isp-system/pkg/validation"
	appwebsocket "isp-system/pkg/websocket"
)

type fakePlans struct {
	filter  types.Filter
	fields  utils.Fields
	update  dto.UpdatePlanDTO
	created dto.CreatePlanDTO
	findErr error
}

func (f *fakePlans) GetPlans(_ context.Context, filter types.Filter) ([]entities.Plan, uint64, error) {
	f.filter = filter
	return []entities.Plan{{ID: 1, Name: "Домашний 100"}, {ID: 2, Name: "Бизнес 500"}}, 42, nil
}

func (f *fakePlans) GetStats(_ context.Context, _ types.Filter) (types.StatusStats, error) {
	return types.StatusStats{Total: 3, ByStatus: map[string]uint64{"active": 2, "inactive": 1}}, nil
}

func (f *fakePlans) FindByID(_ context.Context, id uint64) (*entities.Plan, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return &entities.Plan{ID: id, Name: "Домашний 100"}, nil
}

func (f *fakePlans) Create(_ context.Context, payload dto.CreatePlanDTO) (*entities.Plan, error) {
	f.created = payload
	return &entities.Plan{ID: 7, Name: payload.Name, Price: payload.Price}, nil
}

func (f *fakePlans) Update(_ context.Context, id uint64, payload dto.UpdatePlanDTO, fields utils.Fields) (*entities.Plan, error) {
	f.update, f.fields = payload, fields
	return &entities.Plan{ID: id}, nil
}

func (f *fakePlans) Delete(_ context.Context, id uint64) error {
	if id == 9 {
		return apperrors.NewHttpError(http.StatusConflict, "На тарифе есть активные подписки", apperrors.ErrConflict, nil)
	}
	return nil
}

func newPlanServer(f *fakePlans) *echo.Echo {
	e := echo.New()
	e.Validator = validation.New()
	c := NewPlanController(f, zap.NewNop())
	e.GET("/plans", c.GetAll)
	e.GET("/plans/stats", c.GetStats)
	e.GET("/plans/:id", c.GetByID)
	e.POST("/plans", c.Create)
	e.PUT("/plans/:id", c.Update)
	e.DELETE("/plans/:id", c.Delete)
	return e
}

func serve(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Body    json.RawMessage `json:"body"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestList_PassesFilterAndPaginates(t *testing.T) {
	f := &fakePlans{}
	rec := serve(newPlanServer(f), http.MethodGet, "/plans?search=дом&filter[status]=active&limit=10&page=2", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "дом", f.filter.Search)
	assert.Equal(t, "active", f.filter.Filter["status"])
	assert.Equal(t, 10, f.filter.Offset)

	var body struct {
		List       []entities.Plan `json:"list"`
		Pagination struct {
			TotalCount uint64 `json:"total_count"`
			TotalPages int    `json:"total_pages"`
			Page       int    `json:"page"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Body, &body))
	assert.Len(t, body.List, 2)
	assert.Equal(t, uint64(42), body.Pagination.TotalCount)
	assert.Equal(t, 5, body.Pagination.TotalPages)
	assert.Equal(t, 2, body.Pagination.Page)
}

func TestStats(t *testing.T) {
	rec := serve(newPlanServer(&fakePlans{}), http.MethodGet, "/plans/stats", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var stats types.StatusStats
	require.NoError(t, json.Unmarshal(decode(t, rec).Body, &stats))
	assert.Equal(t, uint64(3), stats.Total)
	assert.Equal(t, uint64(2), stats.ByStatus["active"])
}

func TestGetByID_Errors(t *testing.T) {
	e := newPlanServer(&fakePlans{findErr: apperrors.ErrNotFound})

	assert.Equal(t, http.StatusBadRequest, serve(e, http.MethodGet, "/plans/abc", "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(e, http.MethodGet, "/plans/0", "").Code)

	rec := serve(e, http.MethodGet, "/plans/5", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, decode(t, rec).Status)
}

func TestCreate_ValidatesAndReturns201(t *testing.T) {
	f := &fakePlans{}
	e := newPlanServer(f)

	rec := serve(e, http.MethodPost, "/plans", `{"code":"H100","speed_mbps":100,"price":"150.00","billing_cycle":"monthly"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(e, http.MethodPost, "/plans", `{"name":"Домашний 100","code":"H100","speed_mbps":100,"price":"150.00","billing_cycle":"monthly"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, f.created.Price.Equal(decimal.RequireFromString("150")))
}

func TestUpdate_PassesSentFields(t *testing.T) {
	f := &fakePlans{}
	rec := serve(newPlanServer(f), http.MethodPut, "/plans/3", `{"name":"Новый","data_limit_gb":null}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, f.fields.Has("name"))
	assert.True(t, f.fields.Has("data_limit_gb"))
	assert.False(t, f.fields.Has("price"))
	assert.False(t, f.update.DataLimitGB.Valid)
	require.NotNil(t, f.update.Name)
	assert.Equal(t, "Новый", *f.update.Name)
}

func TestDelete_Conflict(t *testing.T) {
	e := newPlanServer(&fakePlans{})

	assert.Equal(t, http.StatusOK, serve(e, http.MethodDelete, "/plans/1", "").Code)

	rec := serve(e, http.MethodDelete, "/plans/9", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "На тарифе есть активные подписки", decode(t, rec).Message)
}

func TestExport_WritesXLSX(t *testing.T) {
	e := echo.New()
	e.GET("/export", func(c echo.Context) error {
		return respondExport(c, zap.NewNop(), "payments", func(_ context.Context, filter types.Filter, w io.Writer) error {
			assert.Equal(t, "card", filter.Search)
			return export.WriteXLSX(w, export.Table{Sheet: "Платежи", Headers: []string{"ID"}, Rows: [][]interface{}{{1}}})
		})
	})
	e.GET("/broken", func(c echo.Context) error {
		return respondExport(c, zap.NewNop(), "payments", func(context.Context, types.Filter, io.Writer) error {
			return apperrors.ErrForbidden
		})
	})

	rec := serve(e, http.MethodGet, "/export?search=card", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, export.ContentTypeXLSX, rec.Header().Get(echo.HeaderContentType))
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "payments_")

	rows, err := export.ReadRows(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, []string{"ID"}, rows[0])

	assert.Equal(t, http.StatusForbidden, serve(e, http.MethodGet, "/broken", "").Code)
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func TestHealth(t *testing.T) {
	e := echo.New()
	ok := NewHealthController(map[string]Pinger{"postgres": fakePinger{}, "redis": fakePinger{}}, zap.NewNop())
	bad := NewHealthController(map[string]Pinger{"postgres": fakePinger{}, "redis": fakePinger{err: errors.New("connection refused")}}, zap.NewNop())
	e.GET("/ok", ok.Health)
	e.GET("/bad", bad.Health)

	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/ok", "").Code)

	rec := serve(e, http.MethodGet, "/bad", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var resp healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "ok", resp.Checks["postgres"])
}

func TestServeWs_RejectsBadTokens(t *testing.T) {
	jwtSvc := service.NewJWTService("test-secret", time.Minute, time.Hour, zap.NewNop())
	_, refresh, err := jwtSvc.GenerateTokens(service.TokenSubject{UserID: 1, RoleID: 1})
	require.NoError(t, err)

	c := NewWebSocketController(appwebsocket.NewHub(zap.NewNop()), jwtSvc, nil, nil, zap.NewNop())
	e := echo.New()
	e.GET("/ws", c.ServeWs)

	assert.Equal(t, http.StatusUnauthorized, serve(e, http.MethodGet, "/ws", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(e, http.MethodGet, "/ws?token=garbage", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(e, http.MethodGet, "/ws?token="+refresh, "").Code)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"http://localhost:5173"})

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	assert.True(t, check(req))

	req.Header.Set("Origin", "http://evil.example")
	assert.False(t, check(req))

	assert.True(t, originChecker(nil)(req))
}

type fakeRoles struct {
	payload dto.UpdateRolePermissionsDTO
}

func (f *fakeRoles) GetRoles(context.Context) ([]entities.Role, error) {
	return []entities.Role{{ID: 1, Code: "ADMIN"}, {ID: 2, Code: "STAFF"}}, nil
}

func (f *fakeRoles) FindRole(_ context.Context, id uint64) (*entities.Role, error) {
	if id == 99 {
		return nil, apperrors.ErrNotFound
	}
	return &entities.Role{ID: id, Code: "STAFF"}, nil
}

func (f *fakeRoles) GetPermissions(context.Context) ([]entities.Permission, error) {
	return []entities.Permission{{ID: 1, Name: "plans:view"}}, nil
}

func (f *fakeRoles) UpdateRolePermissions(_ context.Context, roleID uint64, payload dto.UpdateRolePermissionsDTO) (*entities.Role, error) {
	f.payload = payload
	return &entities.Role{ID: roleID, Code: "STAFF"}, nil
}

func TestRoleController(t *testing.T) {
	f := &fakeRoles{}
	c := NewRoleController(f, zap.NewNop())
	e := echo.New()
	e.Validator = validation.New()
	e.GET("/roles", c.GetRoles)
	e.GET("/roles/:id", c.GetRole)
	e.GET("/permissions", c.GetPermissions)
	e.PUT("/roles/:id/permissions", c.UpdatePermissions)

	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/roles", "").Code)
	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/permissions", "").Code)
	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/roles/2", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(e, http.MethodGet, "/roles/99", "").Code)

	rec := serve(e, http.MethodPut, "/roles/2/permissions", `{"permission_ids":[3,5]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []uint64{3, 5}, f.payload.PermissionIDs)
}
