package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"isp-system/pkg/contextkeys"
	apperrors "isp-system/pkg/errors"
	"isp-system/pkg/service"
	"isp-system/pkg/utils"
)

const superuserPermission = "superuser"

// PermissionProvider отдаёт имена привилегий роли (обычно из кеша).
type PermissionProvider interface {
	GetRolePermissionsNames(ctx context.Context, roleID uint64) ([]string, error)
}

// TokenDenyList - отозванные при logout токены.
type TokenDenyList interface {
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
}

type AuthMiddleware struct {
	jwtService  service.JWTService
	permissions PermissionProvider
	denyList    TokenDenyList
	logger      *zap.Logger
}

func NewAuthMiddleware(jwtSvc service.JWTService, permissions PermissionProvider, denyList TokenDenyList, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService:  jwtSvc,
		permissions: permissions,
		denyList:    denyList,
		logger:      logger,
	}
}

// Auth - основная функция middleware: Bearer → claims → deny-list → привилегии → контекст.
func (m *AuthMiddleware) Auth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		if authHeader == "" {
			return utils.ErrorResponse(c, apperrors.ErrEmptyAuthHeader, m.logger)
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			return utils.ErrorResponse(c, apperrors.ErrInvalidAuthHeader, m.logger)
		}

		claims, err := m.jwtService.ValidateToken(parts[1])
		if err != nil {
			return utils.ErrorResponse(c, err, m.logger)
		}
		if claims.IsRefreshToken {
			return utils.ErrorResponse(c, apperrors.ErrTokenIsNotAccess, m.logger)
		}

		ctx := c.Request().Context()

		if m.denyList != nil {
			revoked, err := m.denyList.IsTokenRevoked(ctx, claims.ID)
			if err != nil {
				m.logger.Error("AuthMiddleware: не удалось проверить отзыв токена", zap.Error(err))
				return utils.ErrorResponse(c, apperrors.ErrInternalServer, m.logger)
			}
			if revoked {
				return utils.ErrorResponse(c, apperrors.ErrTokenRevoked, m.logger)
			}
		}

		names, err := m.permissions.GetRolePermissionsNames(ctx, claims.RoleID)
		if err != nil {
			m.logger.Error("AuthMiddleware: не удалось получить привилегии роли", zap.Uint64("roleID", claims.RoleID), zap.Error(err))
			return utils.ErrorResponse(c, err, m.logger)
		}
		permissionsMap := make(map[string]bool, len(names))
		for _, p := range names {
			permissionsMap[p] = true
		}

		ctx = context.WithValue(ctx, contextkeys.UserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, contextkeys.RoleIDKey, claims.RoleID)
		ctx = context.WithValue(ctx, contextkeys.RoleCodeKey, claims.RoleCode)
		ctx = context.WithValue(ctx, contextkeys.OperatorIDKey, claims.OperatorID)
		ctx = context.WithValue(ctx, contextkeys.VendorIDKey, claims.VendorID)
		ctx = context.WithValue(ctx, contextkeys.UserPermissionsMapKey, permissionsMap)
		ctx = context.WithValue(ctx, contextkeys.TokenIDKey, claims.ID)
		if claims.ExpiresAt != nil {
			ctx = context.WithValue(ctx, contextkeys.TokenExpiresAtKey, claims.ExpiresAt.Time)
		}
		c.SetRequest(c.Request().WithContext(ctx))

		m.logger.Debug("AuthMiddleware: пользователь аутентифицирован", zap.Uint64("userID", claims.UserID), zap.String("role", claims.RoleCode))
		return next(c)
	}
}

// AuthorizeAny пропускает запрос, если у пользователя есть хотя бы одна из привилегий.
func (m *AuthMiddleware) AuthorizeAny(permissions ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			perms, err := utils.GetPermissionsMapFromCtx(c.Request().Context())
			if err != nil {
				return utils.ErrorResponse(c, apperrors.ErrForbidden, m.logger)
			}
			if perms[superuserPermission] {
				return next(c)
			}
			for _, p := range permissions {
				if perms[p] {
					return next(c)
				}
			}
			m.logger.Warn("AuthorizeAny: недостаточно прав", zap.Strings("required", permissions), zap.String("uri", c.Request().RequestURI))
			return utils.ErrorResponse(c, apperrors.ErrForbidden, m.logger)
		}
	}
}
