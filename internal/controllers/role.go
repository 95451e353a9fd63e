package controllers

import (
	"context"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"isp-system/internal/dto"
	"isp-system/internal/entities"
	"isp-system/pkg/api"
	"isp-system/pkg/utils"
)

type RoleService interface {
	GetRoles(ctx context.Context) ([]entities.Role, error)
	FindRole(ctx context.Context, id uint64) (*entities.Role, error)
	GetPermissions(ctx context.Context) ([]entities.Permission, error)
	UpdateRolePermissions(ctx context.Context, roleID uint64, payload dto.UpdateRolePermissionsDTO) (*entities.Role, error)
}

type RoleController struct {
	service RoleService
	logger  *zap.Logger
}

func NewRoleController(service RoleService, logger *zap.Logger) *RoleController {
	return &RoleController{service: service, logger: logger}
}

func (c *RoleController) GetRoles(ctx echo.Context) error {
	roles, err := c.service.GetRoles(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessList(ctx, "Список ролей получен", roles, uint64(len(roles)), 1, len(roles), false)
}

func (c *RoleController) GetRole(ctx echo.Context) error {
	return respondByID(ctx, c.logger, "Роль найдена", c.service.FindRole)
}

func (c *RoleController) GetPermissions(ctx echo.Context) error {
	perms, err := c.service.GetPermissions(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessList(ctx, "Список привилегий получен", perms, uint64(len(perms)), 1, len(perms), false)
}

func (c *RoleController) UpdatePermissions(ctx echo.Context) error {
	return respondAction(ctx, c.logger, "Привилегии роли обновлены", c.service.UpdateRolePermissions)
}
