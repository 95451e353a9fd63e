package service

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "isp-system/pkg/errors"
)

func TestJWT_GenerateAndValidate(t *testing.T) {
	svc := NewJWTService("secret", time.Minute, time.Hour, zap.NewNop())
	operatorID := uint64(7)

	access, refresh, err := svc.GenerateTokens(TokenSubject{UserID: 42, RoleID: 2, RoleCode: "OPERATOR", OperatorID: &operatorID})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(access)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), claims.UserID)
	assert.Equal(t, "OPERATOR", claims.RoleCode)
	require.NotNil(t, claims.OperatorID)
	assert.Equal(t, operatorID, *claims.OperatorID)
	assert.False(t, claims.IsRefreshToken)
	assert.NotEmpty(t, claims.ID)

	refreshClaims, err := svc.ValidateToken(refresh)
	require.NoError(t, err)
	assert.True(t, refreshClaims.IsRefreshToken)
	assert.NotEqual(t, claims.ID, refreshClaims.ID)
}

func TestJWT_Expired(t *testing.T) {
	svc := NewJWTService("secret", -time.Minute, time.Hour, zap.NewNop())
	access, _, err := svc.GenerateTokens(TokenSubject{UserID: 1})
	require.NoError(t, err)

	_, err = svc.ValidateToken(access)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestJWT_WrongSecret(t *testing.T) {
	issuer := NewJWTService("one", time.Minute, time.Hour, zap.NewNop())
	checker := NewJWTService("two", time.Minute, time.Hour, zap.NewNop())
	access, _, err := issuer.GenerateTokens(TokenSubject{UserID: 1})
	require.NoError(t, err)

	_, err = checker.ValidateToken(access)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestJWT_RejectsNoneAlgorithm(t *testing.T) {
	svc := NewJWTService("secret", time.Minute, time.Hour, zap.NewNop())
	token := jwt.NewWithClaims(jwt.SigningMethodNone, &JwtCustomClaim{UserID: 1})
	raw, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.ValidateToken(raw)
	assert.Error(t, err)
}
