package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

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

type AuthServiceInterface interface {
	Login(ctx context.Context, payload dto.LoginDTO) (*dto.AuthResponseDTO, error)
	Refresh(ctx context.Context, payload dto.RefreshTokenDTO) (*dto.AuthResponseDTO, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*dto.UserPublicDTO, error)
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
}

type AuthService struct {
	userRepo    repositories.UserRepositoryInterface
	cacheRepo   repositories.CacheRepositoryInterface
	permissions AuthPermissionServiceInterface
	jwtService  service.JWTService
	logger      *zap.Logger
	cfg         config.AuthConfig
}

func NewAuthService(
	userRepo repositories.UserRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	permissions AuthPermissionServiceInterface,
	jwtService service.JWTService,
	logger *zap.Logger,
	cfg config.AuthConfig,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		cacheRepo:   cacheRepo,
		permissions: permissions,
		jwtService:  jwtService,
		logger:      logger,
		cfg:         cfg,
	}
}

func normalizeLogin(login string) string {
	login = strings.TrimSpace(login)
	if utils.LooksLikePhone(login) {
		return utils.NormalizePhone(login)
	}
	return strings.ToLower(login)
}

func (s *AuthService) Login(ctx context.Context, payload dto.LoginDTO) (*dto.AuthResponseDTO, error) {
	login := normalizeLogin(payload.Login)
	logger := s.logger.With(zap.String("login", login))

	attemptsKey := fmt.Sprintf(constants.CacheKeyLoginAttempts, login)
	if attemptsStr, err := s.cacheRepo.Get(ctx, attemptsKey); err == nil {
		if attempts, _ := strconv.Atoi(attemptsStr); attempts >= s.cfg.MaxLoginAttempts {
			logger.Warn("Вход заблокирован: превышено число попыток")
			return nil, apperrors.ErrTooManyAttempts
		}
	}

	user, err := s.userRepo.FindByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.registerFailure(ctx, attemptsKey)
			logger.Warn("Попытка входа несуществующего пользователя")
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := utils.ComparePasswords(user.Password, payload.Password); err != nil {
		s.registerFailure(ctx, attemptsKey)
		logger.Warn("Неверный пароль", zap.Uint64("userID", user.ID))
		return nil, apperrors.ErrInvalidCredentials
	}
	if user.Status != constants.StatusActive {
		return nil, apperrors.ErrUserInactive
	}

	if err := s.cacheRepo.Del(ctx, attemptsKey); err != nil {
		logger.Warn("Не удалось сбросить счётчик попыток", zap.Error(err))
	}

	logger.Info("Успешный вход", zap.Uint64("userID", user.ID), zap.String("role", user.RoleCode))
	return s.issue(ctx, user)
}

func (s *AuthService) registerFailure(ctx context.Context, key string) {
	if _, err := s.cacheRepo.Incr(ctx, key); err != nil {
		s.logger.Warn("Не удалось увеличить счётчик попыток", zap.Error(err))
		return
	}
	if _, err := s.cacheRepo.Expire(ctx, key, s.cfg.LockoutDuration); err != nil {
		s.logger.Warn("Не удалось выставить TTL счётчика попыток", zap.Error(err))
	}
}

// Refresh выдаёт новую пару; использованный refresh-токен отзывается.
func (s *AuthService) Refresh(ctx context.Context, payload dto.RefreshTokenDTO) (*dto.AuthResponseDTO, error) {
	claims, err := s.jwtService.ValidateToken(payload.RefreshToken)
	if err != nil {
		return nil, err
	}
	if !claims.IsRefreshToken {
		return nil, apperrors.ErrTokenIsNotRefresh
	}

	revoked, err := s.IsTokenRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, apperrors.ErrTokenRevoked
	}

	user, err := s.userRepo.FindByID(ctx, nil, claims.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, err
	}
	if user.Status != constants.StatusActive {
		return nil, apperrors.ErrUserInactive
	}

	if claims.ExpiresAt != nil {
		s.revoke(ctx, claims.ID, claims.ExpiresAt.Time)
	}
	return s.issue(ctx, user)
}

func (s *AuthService) Logout(ctx context.Context) error {
	jti, exp, err := utils.GetTokenFromCtx(ctx)
	if err != nil {
		return err
	}
	s.revoke(ctx, jti, exp)
	return nil
}

func (s *AuthService) revoke(ctx context.Context, jti string, exp time.Time) {
	ttl := time.Until(exp)
	if ttl <= 0 {
		return
	}
	if err := s.cacheRepo.Set(ctx, fmt.Sprintf(constants.CacheKeyRevokedToken, jti), "1", ttl); err != nil {
		s.logger.Error("Не удалось отозвать токен", zap.String("jti", jti), zap.Error(err))
	}
}

func (s *AuthService) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	return s.cacheRepo.Exists(ctx, fmt.Sprintf(constants.CacheKeyRevokedToken, jti))
}

func (s *AuthService) Me(ctx context.Context) (*dto.UserPublicDTO, error) {
	userID, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, nil, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}
	return s.publicUser(ctx, user)
}

func (s *AuthService) issue(ctx context.Context, user *entities.User) (*dto.AuthResponseDTO, error) {
	access, refresh, err := s.jwtService.GenerateTokens(service.TokenSubject{
		UserID:     user.ID,
		RoleID:     user.RoleID,
		RoleCode:   user.RoleCode,
		OperatorID: user.OperatorID,
		VendorID:   user.VendorID,
	})
	if err != nil {
		s.logger.Error("Не удалось сгенерировать токены", zap.Uint64("userID", user.ID), zap.Error(err))
		return nil, apperrors.ErrInternalServer
	}

	public, err := s.publicUser(ctx, user)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponseDTO{AccessToken: access, RefreshToken: refresh, User: *public}, nil
}

func (s *AuthService) publicUser(ctx context.Context, user *entities.User) (*dto.UserPublicDTO, error) {
	perms, err := s.permissions.GetRolePermissionsNames(ctx, user.RoleID)
	if err != nil {
		return nil, err
	}
	return &dto.UserPublicDTO{
		ID:          user.ID,
		Fio:         user.Fio,
		Email:       user.Email,
		Phone:       user.Phone,
		RoleID:      user.RoleID,
		RoleCode:    user.RoleCode,
		RoleName:    user.RoleName,
		OperatorID:  user.OperatorID,
		VendorID:    user.VendorID,
		Permissions: perms,
	}, nil
}
