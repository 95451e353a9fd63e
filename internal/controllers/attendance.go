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

type AttendanceService interface {
	GetAttendance(ctx context.Context, filter types.Filter) ([]entities.Attendance, uint64, error)
	GetStats(ctx context.Context, filter types.Filter) (types.StatusStats, error)
	FindByID(ctx context.Context, id uint64) (*entities.Attendance, error)
	CheckIn(ctx context.Context, payload dto.CheckDTO) (*entities.Attendance, error)
	CheckOut(ctx context.Context, payload dto.CheckDTO) (*entities.Attendance, error)
	Create(ctx context.Context, payload dto.CreateAttendanceDTO) (*entities.Attendance, error)
	Update(ctx context.Context, id uint64, payload dto.UpdateAttendanceDTO, fields utils.Fields) (*entities.Attendance, error)
	Delete(ctx context.Context, id uint64) error
}

type AttendanceController struct {
	service AttendanceService
	logger  *zap.Logger
}

func NewAttendanceController(service AttendanceService, logger *zap.Logger) *AttendanceController {
	return &AttendanceController{service: service, logger: logger}
}

func (c *AttendanceController) GetAll(ctx echo.Context) error {
	return respondList(ctx, c.logger, "Посещаемость получена", c.service.GetAttendance)
}

func (c *AttendanceController) GetStats(ctx echo.Context) error {
	return respondStats(ctx, c.logger, c.service.GetStats)
}

func (c *AttendanceController) GetByID(ctx echo.Context) error {
	return respondByID(ctx, c.logger, "Запись найдена", c.service.FindByID)
}

// Тело у check-in/check-out необязательно.
func (c *AttendanceController) check(ctx echo.Context, message string, fn func(context.Context, dto.CheckDTO) (*entities.Attendance, error)) error {
	var payload dto.CheckDTO
	if ctx.Request().ContentLength > 0 {
		if err := utils.BindAndValidate(ctx, &payload); err != nil {
			return utils.ErrorResponse(ctx, err, c.logger)
		}
	}
	record, err := fn(ctx.Request().Context(), payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusOK, message, record)
}

func (c *AttendanceController) CheckIn(ctx echo.Context) error {
	return c.check(ctx, "Приход отмечен", c.service.CheckIn)
}

func (c *AttendanceController) CheckOut(ctx echo.Context) error {
	return c.check(ctx, "Уход отмечен", c.service.CheckOut)
}

func (c *AttendanceController) Create(ctx echo.Context) error {
	return respondCreate(ctx, c.logger, "Запись создана", c.service.Create)
}

func (c *AttendanceController) Update(ctx echo.Context) error {
	return respondPatch(ctx, c.logger, "Запись обновлена", c.service.Update)
}

func (c *AttendanceController) Delete(ctx echo.Context) error {
	return respondDelete(ctx, c.logger, "Запись удалена", c.service.Delete)
}
