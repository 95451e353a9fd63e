package utils

import (
	"context"
	"time"

	"isp-system/pkg/contextkeys"
	apperrors "isp-system/pkg/errors"
)

func GetUserIDFromCtx(ctx context.Context) (uint64, error) {
	userID, ok := ctx.Value(contextkeys.UserIDKey).(uint64)
	if !ok || userID == 0 {
		return 0, apperrors.ErrUnauthorized
	}
	return userID, nil
}

func GetUserRoleIDFromCtx(ctx context.Context) (uint64, error) {
	roleID, ok := ctx.Value(contextkeys.RoleIDKey).(uint64)
	if !ok {
		return 0, apperrors.ErrUnauthorized
	}
	return roleID, nil
}

func GetPermissionsMapFromCtx(ctx context.Context) (map[string]bool, error) {
	permissions, ok := ctx.Value(contextkeys.UserPermissionsMapKey).(map[string]bool)
	if !ok || permissions == nil {
		return nil, apperrors.ErrForbidden
	}
	return permissions, nil
}

// GetTokenFromCtx возвращает jti и срок жизни текущего access-токена.
func GetTokenFromCtx(ctx context.Context) (string, time.Time, error) {
	jti, ok := ctx.Value(contextkeys.TokenIDKey).(string)
	if !ok || jti == "" {
		return "", time.Time{}, apperrors.ErrUnauthorized
	}
	exp, _ := ctx.Value(contextkeys.TokenExpiresAtKey).(time.Time)
	return jti, exp, nil
}
