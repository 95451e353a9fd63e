package services

import (
	"context"
	"errors"
	"slices"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"isp-system/internal/authz"
	"isp-system/internal/dto"
	"isp-system/internal/entities"
	"isp-system/internal/repositories"
	"isp-system/pkg/constants"
	apperrors "isp-system/pkg/errors"
	"isp-system/pkg/types"
	"isp-system/pkg/utils"
)

// userSection - раздел "Пользователи" или "Сотрудники": разные привилегии, одна таблица.
type userSection struct {
	view, create, update, delete string
	// ограничение по ролям; nil - без ограничения
	roles []string
}

var (
	usersSection = userSection{view: authz.UsersView, create: authz.UsersCreate, update: authz.UsersUpdate, delete: authz.UsersDelete}
	staffSection = userSection{view: authz.StaffView, create: authz.StaffCreate, update: authz.StaffUpdate, delete: authz.StaffDelete, roles: constants.StaffRoles}
)

func (sec userSection) condition() sq.Sqlizer {
	if sec.roles == nil {
		return nil
	}
	return sq.Eq{"r.code": sec.roles}
}

func (sec userSection) contains(u *entities.User) bool {
	return sec.roles == nil || slices.Contains(sec.roles, u.RoleCode)
}

type UserService struct {
	*BaseService
	repo     repositories.UserRepositoryInterface
	roleRepo repositories.RoleRepositoryInterface
}

func NewUserService(base *BaseService, repo repositories.UserRepositoryInterface, roleRepo repositories.RoleRepositoryInterface) *UserService {
	return &UserService{BaseService: base, repo: repo, roleRepo: roleRepo}
}

func (s *UserService) list(ctx context.Context, sec userSection, filter types.Filter) ([]entities.User, uint64, error) {
	_, scope, err := s.scope(ctx, sec.view, repositories.UserScopeColumns)
	if err != nil {
		return nil, 0, err
	}
	return s.repo.GetUsers(ctx, filter, repositories.AndScope(scope, sec.condition()))
}

func (s *UserService) stats(ctx context.Context, sec userSection, filter types.Filter) (types.StatusStats, error) {
	_, scope, err := s.scope(ctx, sec.view, repositories.UserScopeColumns)
	if err != nil {
		return types.StatusStats{}, err
	}
	return s.repo.GetStats(ctx, filter, repositories.AndScope(scope, sec.condition()))
}

func (s *UserService) find(ctx context.Context, sec userSection, permission string, id uint64) (*entities.User, *authz.Actor, map[string]bool, error) {
	user, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, nil, nil, err
	}
	if !sec.contains(user) {
		return nil, nil, nil, apperrors.ErrNotFound
	}
	actor, perms, err := s.authorize(ctx, permission, user)
	if err != nil {
		return nil, nil, nil, err
	}
	return user, actor, perms, nil
}

func (s *UserService) GetUsers(ctx context.Context, filter types.Filter) ([]entities.User, uint64, error) {
	return s.list(ctx, usersSection, filter)
}

func (s *UserService) GetUserStats(ctx context.Context, filter types.Filter) (types.StatusStats, error) {
	return s.stats(ctx, usersSection, filter)
}

func (s *UserService) FindUser(ctx context.Context, id uint64) (*entities.User, error) {
	user, _, _, err := s.find(ctx, usersSection, usersSection.view, id)
	return user, err
}

func (s *UserService) GetStaff(ctx context.Context, filter types.Filter) ([]entities.User, uint64, error) {
	return s.list(ctx, staffSection, filter)
}

func (s *UserService) GetStaffStats(ctx context.Context, filter types.Filter) (types.StatusStats, error) {
	return s.stats(ctx, staffSection, filter)
}

func (s *UserService) FindStaff(ctx context.Context, id uint64) (*entities.User, error) {
	user, _, _, err := s.find(ctx, staffSection, staffSection.view, id)
	return user, err
}

// checkRole не даёт роли без глобальной области раздавать глобальные роли.
func (s *UserService) checkRole(ctx context.Context, perms map[string]bool, roleID uint64) (*entities.Role, error) {
	role, err := s.roleRepo.FindByID(ctx, roleID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewInvalidInputError("роль %d не найдена", roleID)
		}
		return nil, err
	}
	if role.Code == constants.RoleAdmin && !isGlobal(perms) {
		return nil, apperrors.ErrForbidden
	}
	return role, nil
}

func (s *UserService) CreateUser(ctx context.Context, payload dto.CreateUserDTO) (*entities.User, error) {
	actor, perms, err := s.authorize(ctx, usersSection.create, nil)
	if err != nil {
		return nil, err
	}
	role, err := s.checkRole(ctx, perms, payload.RoleID)
	if err != nil {
		return nil, err
	}

	var operatorID *uint64
	if role.Code != constants.RoleAdmin {
		id, err := resolveOperator(actor, perms, payload.OperatorID)
		if err != nil {
			return nil, err
		}
		operatorID = &id
	}
	hireDate, err := parseOptionalDate(payload.HireDate)
	if err != nil {
		return nil, err
	}

	user := &entities.User{
		Fio:        payload.Fio,
		Email:      payload.Email,
		Phone:      normalizedPhone(payload.Phone),
		RoleID:     role.ID,
		RoleCode:   role.Code,
		RoleName:   role.Name,
		OperatorID: operatorID,
		Status:     payload.Status,
		Position:   payload.Position,
		HireDate:   hireDate,
	}
	return s.create(ctx, actor, user, payload.Password)
}

func (s *UserService) CreateStaff(ctx context.Context, payload dto.CreateStaffDTO) (*entities.User, error) {
	actor, perms, err := s.authorize(ctx, staffSection.create, nil)
	if err != nil {
		return nil, err
	}
	role, err := s.roleRepo.FindByCode(ctx, payload.RoleCode)
	if err != nil {
		return nil, err
	}
	operatorID, err := resolveOperator(actor, perms, payload.OperatorID)
	if err != nil {
		return nil, err
	}
	hireDate, err := parseOptionalDate(payload.HireDate)
	if err != nil {
		return nil, err
	}

	user := &entities.User{
		Fio:        payload.Fio,
		Email:      payload.Email,
		Phone:      normalizedPhone(payload.Phone),
		RoleID:     role.ID,
		RoleCode:   role.Code,
		RoleName:   role.Name,
		OperatorID: &operatorID,
		Position:   payload.Position,
		HireDate:   hireDate,
	}
	return s.create(ctx, actor, user, payload.Password)
}

func (s *UserService) create(ctx context.Context, actor *authz.Actor, user *entities.User, password string) (*entities.User, error) {
	hash, err := utils.HashPassword(password)
	if err != nil {
		s.logger.Error("Не удалось захешировать пароль", zap.Error(err))
		return nil, apperrors.ErrInternalServer
	}
	user.Password = hash
	if user.Status == "" {
		user.Status = constants.StatusActive
	}

	err = s.inTx(ctx, actor, func(tx pgx.Tx, j *Journal) error {
		if err := s.repo.Create(ctx, tx, user); err != nil {
			return err
		}
		return j.Record(ctx, Change{EntityType: constants.EntityUser, EntityID: user.ID, OperatorID: user.OperatorID, Action: constants.ActionCreated, New: user})
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) UpdateUser(ctx context.Context, id uint64, payload dto.UpdateUserDTO, fields utils.Fields) (*entities.User, error) {
	return s.update(ctx, usersSection, id, payload, fields)
}

func (s *UserService) UpdateStaff(ctx context.Context, id uint64, payload dto.UpdateUserDTO, fields utils.Fields) (*entities.User, error) {
	return s.update(ctx, staffSection, id, payload, fields)
}

func (s *UserService) update(ctx context.Context, sec userSection, id uint64, payload dto.UpdateUserDTO, fields utils.Fields) (*entities.User, error) {
	user, actor, perms, err := s.find(ctx, sec, sec.update, id)
	if err != nil {
		return nil, err
	}
	old := *user

	if payload.Fio != nil {
		user.Fio = *payload.Fio
	}
	if payload.Email != nil {
		user.Email = *payload.Email
	}
	if fields.Has("phone") {
		user.Phone = normalizedPhone(payload.Phone.Ptr())
	}
	if payload.RoleID != nil && *payload.RoleID != user.RoleID {
		role, err := s.checkRole(ctx, perms, *payload.RoleID)
		if err != nil {
			return nil, err
		}
		if !sec.contains(&entities.User{RoleCode: role.Code}) {
			return nil, apperrors.NewInvalidInputError("роль %s недопустима в этом разделе", role.Code)
		}
		user.RoleID, user.RoleCode, user.RoleName = role.ID, role.Code, role.Name
	}
	if fields.Has("operator_id") {
		if !isGlobal(perms) {
			return nil, apperrors.ErrForbidden
		}
		user.OperatorID = payload.OperatorID.Ptr()
	}
	if payload.Status != nil {
		user.Status = *payload.Status
	}
	if fields.Has("position") {
		user.Position = payload.Position.Ptr()
	}
	if fields.Has("hire_date") {
		if user.HireDate, err = parseOptionalDate(payload.HireDate.Ptr()); err != nil {
			return nil, err
		}
	}

	err = s.inTx(ctx, actor, func(tx pgx.Tx, j *Journal) error {
		if err := s.repo.Update(ctx, tx, user); err != nil {
			return err
		}
		return j.Record(ctx, Change{EntityType: constants.EntityUser, EntityID: user.ID, OperatorID: user.OperatorID, Action: constants.ActionUpdated, Old: old, New: user})
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) ChangePassword(ctx context.Context, id uint64, payload dto.ChangePasswordDTO) error {
	user, actor, _, err := s.find(ctx, usersSection, usersSection.update, id)
	if err != nil {
		return err
	}
	hash, err := utils.HashPassword(payload.Password)
	if err != nil {
		s.logger.Error("Не удалось захешировать пароль", zap.Error(err))
		return apperrors.ErrInternalServer
	}
	return s.inTx(ctx, actor, func(tx pgx.Tx, j *Journal) error {
		if err := s.repo.UpdatePassword(ctx, tx, user.ID, hash); err != nil {
			return err
		}
		return j.Record(ctx, Change{EntityType: constants.EntityUser, EntityID: user.ID, OperatorID: user.OperatorID, Action: constants.ActionPasswordReset})
	})
}

func (s *UserService) DeleteUser(ctx context.Context, id uint64) error {
	return s.delete(ctx, usersSection, id)
}

func (s *UserService) DeleteStaff(ctx context.Context, id uint64) error {
	return s.delete(ctx, staffSection, id)
}

func (s *UserService) delete(ctx context.Context, sec userSection, id uint64) error {
	user, actor, _, err := s.find(ctx, sec, sec.delete, id)
	if err != nil {
		return err
	}
	if user.ID == actor.ID {
		return apperrors.NewInvalidInputError("нельзя удалить собственную учётную запись")
	}
	return s.inTx(ctx, actor, func(tx pgx.Tx, j *Journal) error {
		if err := s.repo.Delete(ctx, tx, id); err != nil {
			return err
		}
		return j.Record(ctx, Change{EntityType: constants.EntityUser, EntityID: id, OperatorID: user.OperatorID, Action: constants.ActionDeleted, Old: user})
	})
}

func normalizedPhone(phone *string) *string {
	if phone == nil {
		return nil
	}
	p := utils.NormalizePhone(*phone)
	if p == "" {
		return nil
	}
	return &p
}
