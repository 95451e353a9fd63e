package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"isp-system/internal/repositories"
	"isp-system/pkg/constants"
	apperrors "isp-system/pkg/errors"
)

type AuthPermissionServiceInterface interface {
	GetRolePermissionsNames(ctx context.Context, roleID uint64) ([]string, error)
	InvalidateRolePermissionsCache(ctx context.Context, roleID uint64) error
}

type AuthPermissionService struct {
	roleRepo  repositories.RoleRepositoryInterface
	cacheRepo repositories.CacheRepositoryInterface
	logger    *zap.Logger
	cacheTTL  time.Duration
}

func NewAuthPermissionService(
	roleRepo repositories.RoleRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	logger *zap.Logger,
	cacheTTL time.Duration,
) AuthPermissionServiceInterface {
	return &AuthPermissionService{
		roleRepo:  roleRepo,
		cacheRepo: cacheRepo,
		logger:    logger,
		cacheTTL:  cacheTTL,
	}
}

// GetRolePermissionsNames - сначала redis, при промахе или битом значении БД.
func (s *AuthPermissionService) GetRolePermissionsNames(ctx context.Context, roleID uint64) ([]string, error) {
	cacheKey := fmt.Sprintf(constants.CacheKeyRolePermissions, roleID)
	var permissions []string

	cached, err := s.cacheRepo.Get(ctx, cacheKey)
	switch {
	case err == nil:
		if err := json.Unmarshal([]byte(cached), &permissions); err == nil {
			return permissions, nil
		}
		s.logger.Warn("AuthPermissionService: битое значение в кеше", zap.String("key", cacheKey))
	case !errors.Is(err, repositories.ErrCacheMiss):
		s.logger.Warn("AuthPermissionService: кеш недоступен, идём в БД", zap.Error(err))
	}

	permissions, err = s.roleRepo.GetRolePermissionsNames(ctx, roleID)
	if err != nil {
		s.logger.Error("AuthPermissionService: не удалось получить привилегии роли", zap.Uint64("roleID", roleID), zap.Error(err))
		return nil, apperrors.ErrInternalServer
	}

	if data, err := json.Marshal(permissions); err == nil {
		if err := s.cacheRepo.Set(ctx, cacheKey, string(data), s.cacheTTL); err != nil {
			s.logger.Warn("AuthPermissionService: не удалось закешировать привилегии", zap.Uint64("roleID", roleID), zap.Error(err))
		}
	}
	return permissions, nil
}

func (s *AuthPermissionService) InvalidateRolePermissionsCache(ctx context.Context, roleID uint64) error {
	cacheKey := fmt.Sprintf(constants.CacheKeyRolePermissions, roleID)
	if err := s.cacheRepo.Del(ctx, cacheKey); err != nil {
		s.logger.Error("AuthPermissionService: ошибка инвалидации кеша", zap.Uint64("roleID", roleID), zap.Error(err))
		return err
	}
	s.logger.Info("AuthPermissionService: кеш привилегий роли сброшен", zap.Uint64("roleID", roleID))
	return nil
}
