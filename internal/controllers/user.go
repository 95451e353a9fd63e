package controllers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"isp-system/internal/dto"
	"isp-system/internal/entities"
	"isp-system/pkg/api"
	"isp-system/pkg/types"
	"isp-system/pkg/utils"
)

type UserService interface {
	GetUsers(ctx context.Context, filter types.Filter) ([]entities.User, uint64, error)
	GetUserStats(ctx context.Context, filter types.Filter) (types.StatusStats, error)
	FindUser(ctx context.Context, id uint64) (*entities.User, error)
	CreateUser(ctx context.Context, payload dto.CreateUserDTO) (*entities.User, error)
	UpdateUser(ctx context.Context, id uint64, payload dto.UpdateUserDTO, fields utils.Fields) (*entities.User, error)
	DeleteUser(ctx context.Context, id uint64) error
	ChangePassword(ctx context.Context, id uint64, payload dto.ChangePasswordDTO) error

	GetStaff(ctx context.Context, filter types.Filter) ([]entities.User, uint64, error)
	GetStaffStats(ctx context.Context, filter types.Filter) (types.StatusStats, error)
	FindStaff(ctx context.Context, id uint64) (*entities.User, error)
	CreateStaff(ctx context.Context, payload dto.CreateStaffDTO) (*entities.User, error)
	UpdateStaff(ctx context.Context, id uint64, payload dto.UpdateUserDTO, fields utils.Fields) (*entities.User, error)
	DeleteStaff(ctx context.Context, id uint64) error
}

// UserController обслуживает и /users, и /staff: это одна таблица с разными срезами по ролям.
type UserController struct {
	service UserService
	logger  *zap.Logger
}

func NewUserController(service UserService, logger *zap.Logger) *UserController {
	return &UserController{service: service, logger: logger}
}

func (c *UserController) GetUsers(ctx echo.Context) error {
	return respondList(ctx, c.logger, "Список пользователей получен", c.service.GetUsers)
}

func (c *UserController) GetUserStats(ctx echo.Context) error {
	return respondStats(ctx, c.logger, c.service.GetUserStats)
}

func (c *UserController) GetUser(ctx echo.Context) error {
	return respondByID(ctx, c.logger, "Пользователь найден", c.service.FindUser)
}

func (c *UserController) CreateUser(ctx echo.Context) error {
	return respondCreate(ctx, c.logger, "Пользователь создан", c.service.CreateUser)
}

func (c *UserController) UpdateUser(ctx echo.Context) error {
	return respondPatch(ctx, c.logger, "Пользователь обновлён", c.service.UpdateUser)
}

func (c *UserController) DeleteUser(ctx echo.Context) error {
	return respondDelete(ctx, c.logger, "Пользователь удалён", c.service.DeleteUser)
}

func (c *UserController) ChangePassword(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var payload dto.ChangePasswordDTO
	if err := utils.BindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := c.service.ChangePassword(ctx.Request().Context(), id, payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Пароль изменён", struct{}{})
}

func (c *UserController) GetStaff(ctx echo.Context) error {
	return respondList(ctx, c.logger, "Список сотрудников получен", c.service.GetStaff)
}

func (c *UserController) GetStaffStats(ctx echo.Context) error {
	return respondStats(ctx, c.logger, c.service.GetStaffStats)
}

func (c *UserController) GetStaffMember(ctx echo.Context) error {
	return respondByID(ctx, c.logger, "Сотрудник найден", c.service.FindStaff)
}

func (c *UserController) CreateStaff(ctx echo.Context) error {
	return respondCreate(ctx, c.logger, "Сотрудник создан", c.service.CreateStaff)
}

func (c *UserController) UpdateStaff(ctx echo.Context) error {
	return respondPatch(ctx, c.logger, "Сотрудник обновлён", c.service.UpdateStaff)
}

func (c *UserController) DeleteStaff(ctx echo.Context) error {
	return respondDelete(ctx, c.logger, "Сотрудник удалён", c.service.DeleteStaff)
}
