package services

import (
	"context"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"isp-system/internal/authz"
	"isp-system/internal/dto"
	"isp-system/internal/entities"
	"isp-system/internal/repositories"
	"isp-system/pkg/constants"
	apperrors "isp-system/pkg/errors"
)

type RoleService struct {
	*BaseService
	roleRepo       repositories.RoleRepositoryInterface
	permissionRepo repositories.PermissionRepositoryInterface
	permissions    AuthPermissionServiceInterface
}

func NewRoleService(
	base *BaseService,
	roleRepo repositories.RoleRepositoryInterface,
	permissionRepo repositories.PermissionRepositoryInterface,
	permissions AuthPermissionServiceInterface,
) *RoleService {
	return &RoleService{BaseService: base, roleRepo: roleRepo, permissionRepo: permissionRepo, permissions: permissions}
}

func (s *RoleService) GetRoles(ctx context.Context) ([]entities.Role, error) {
	if _, _, err := s.authorize(ctx, authz.RolesView, nil); err != nil {
		return nil, err
	}
	return s.roleRepo.GetRoles(ctx)
}

func (s *RoleService) FindRole(ctx context.Context, id uint64) (*entities.Role, error) {
	if _, _, err := s.authorize(ctx, authz.RolesView, nil); err != nil {
		return nil, err
	}
	role, err := s.roleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if role.Permissions, err = s.roleRepo.GetRolePermissions(ctx, id); err != nil {
		return nil, err
	}
	return role, nil
}

func (s *RoleService) GetPermissions(ctx context.Context) ([]entities.Permission, error) {
	if _, _, err := s.authorize(ctx, authz.RolesView, nil); err != nil {
		return nil, err
	}
	return s.permissionRepo.GetPermissions(ctx)
}

// UpdateRolePermissions заменяет набор привилегий роли целиком и сбрасывает кеш.
func (s *RoleService) UpdateRolePermissions(ctx context.Context, roleID uint64, payload dto.UpdateRolePermissionsDTO) (*entities.Role, error) {
	actor, _, err := s.authorize(ctx, authz.RolesUpdate, nil)
	if err != nil {
		return nil, err
	}
	role, err := s.roleRepo.FindByID(ctx, roleID)
	if err != nil {
		return nil, err
	}

	ids := uniqueIDs(payload.PermissionIDs)
	if len(ids) > 0 {
		found, err := s.permissionRepo.CountExisting(ctx, ids)
		if err != nil {
			return nil, err
		}
		if found != len(ids) {
			return nil, apperrors.NewInvalidInputError("часть привилегий не найдена (%d из %d)", found, len(ids))
		}
	}

	before, err := s.roleRepo.GetRolePermissionsNames(ctx, roleID)
	if err != nil {
		return nil, err
	}

	err = s.inTx(ctx, actor, func(tx pgx.Tx, j *Journal) error {
		if err := s.roleRepo.ReplacePermissions(ctx, tx, roleID, ids); err != nil {
			return err
		}
		return j.Record(ctx, Change{EntityType: constants.EntityRole, EntityID: roleID, Action: constants.ActionPermissions, Old: before, New: ids})
	})
	if err != nil {
		return nil, err
	}

	if err := s.permissions.InvalidateRolePermissionsCache(ctx, roleID); err != nil {
		s.logger.Warn("Кеш привилегий не сброшен, обновится по TTL", zap.Uint64("roleID", roleID), zap.Error(err))
	}

	if role.Permissions, err = s.roleRepo.GetRolePermissions(ctx, roleID); err != nil {
		return nil, err
	}
	return role, nil
}

func uniqueIDs(ids []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
