package services

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"isp-system/internal/dto"
	"isp-system/internal/entities"
	"isp-system/internal/repositories"
	"isp-system/pkg/config"
	"isp-system/pkg/constants"
	apperrors "isp-system/pkg/errors"
	"isp-system/pkg/service"
	"isp-system/pkg/utils"
)

// memCache - кеш в памяти вместо redis; TTL не учитывается.
type memCache struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemCache() *memCache { return &memCache{data: make(map[string]string)} }

func (m *memCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = toString(value)
	return nil
}

func toString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return ""
	}
}

func (m *memCache) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return "", repositories.ErrCacheMiss
	}
	return v, nil
}

func (m *memCache) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *memCache) Incr(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, _ := strconv.ParseInt(m.data[key], 10, 64)
	n++
	m.data[key] = strconv.FormatInt(n, 10)
	return n, nil
}

func (m *memCache) Expire(context.Context, string, time.Duration) (bool, error) { return true, nil }

func (m *memCache) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok, nil
}

func (m *memCache) Ping(context.Context) error { return nil }

type loginUsers struct {
	repositories.UserRepositoryInterface
	user *entities.User
}

func (l loginUsers) FindByLogin(_ context.Context, login string) (*entities.User, error) {
	if login == l.user.Email {
		return l.user, nil
	}
	return nil, apperrors.ErrNotFound
}

func (l loginUsers) FindByID(_ context.Context, _ repositories.Querier, id uint64) (*entities.User, error) {
	if id == l.user.ID {
		return l.user, nil
	}
	return nil, apperrors.ErrNotFound
}

type staticPerms []string

func (p staticPerms) GetRolePermissionsNames(context.Context, uint64) ([]string, error) { return p, nil }
func (staticPerms) InvalidateRolePermissionsCache(context.Context, uint64) error      { return nil }

func newAuthService(t *testing.T, status string) (*AuthService, *memCache) {
	t.Helper()
	hash, err := utils.HashPassword("secret123")
	require.NoError(t, err)
	user := &entities.User{ID: 11, Fio: "Рахимова Нигина", Email: "nigina@isp.local", Password: hash, RoleID: 3, RoleCode: constants.RoleStaff, Status: status}

	cache := newMemCache()
	jwtSvc := service.NewJWTService("auth-test", time.Minute, time.Hour, zap.NewNop())
	svc := NewAuthService(loginUsers{user: user}, cache, staticPerms{"complaints:view"}, jwtSvc, zap.NewNop(),
		config.AuthConfig{MaxLoginAttempts: 3, LockoutDuration: time.Minute})
	return svc, cache
}

func TestAuthService_Login(t *testing.T) {
	svc, _ := newAuthService(t, constants.StatusActive)

	resp, err := svc.Login(context.Background(), dto.LoginDTO{Login: "  Nigina@ISP.local ", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, []string{"complaints:view"}, resp.User.Permissions)
}

func TestAuthService_LockoutAfterFailedAttempts(t *testing.T) {
	svc, cache := newAuthService(t, constants.StatusActive)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Login(ctx, dto.LoginDTO{Login: "nigina@isp.local", Password: "wrong-pass"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	}

	_, err := svc.Login(ctx, dto.LoginDTO{Login: "nigina@isp.local", Password: "secret123"})
	assert.ErrorIs(t, err, apperrors.ErrTooManyAttempts)

	// после истечения блокировки счётчик пропадает из redis
	require.NoError(t, cache.Del(ctx, "login_attempts:nigina@isp.local"))
	_, err = svc.Login(ctx, dto.LoginDTO{Login: "nigina@isp.local", Password: "secret123"})
	assert.NoError(t, err)
}

func TestAuthService_InactiveUser(t *testing.T) {
	svc, _ := newAuthService(t, constants.StatusInactive)

	_, err := svc.Login(context.Background(), dto.LoginDTO{Login: "nigina@isp.local", Password: "secret123"})
	assert.ErrorIs(t, err, apperrors.ErrUserInactive)
}

func TestAuthService_RefreshRevokesUsedToken(t *testing.T) {
	svc, _ := newAuthService(t, constants.StatusActive)
	ctx := context.Background()

	resp, err := svc.Login(ctx, dto.LoginDTO{Login: "nigina@isp.local", Password: "secret123"})
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, dto.RefreshTokenDTO{RefreshToken: resp.AccessToken})
	assert.ErrorIs(t, err, apperrors.ErrTokenIsNotRefresh)

	_, err = svc.Refresh(ctx, dto.RefreshTokenDTO{RefreshToken: resp.RefreshToken})
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, dto.RefreshTokenDTO{RefreshToken: resp.RefreshToken})
	assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)
}
