package controllers

import (
	"context"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"isp-system/internal/dto"
	"isp-system/internal/entities"
	"isp-system/pkg/types"
	"isp-system/pkg/utils"
)

type LeaveService interface {
	GetLeaves(ctx context.Context, filter types.Filter) ([]entities.LeaveRequest, uint64, error)
	GetStats(ctx context.Context, filter types.Filter) (types.StatusStats, error)
	FindByID(ctx context.Context, id uint64) (*entities.LeaveRequest, error)
	Create(ctx context.Context, payload dto.CreateLeaveDTO) (*entities.LeaveRequest, error)
	Update(ctx context.Context, id uint64, payload dto.UpdateLeaveDTO, fields utils.Fields) (*entities.LeaveRequest, error)
	Review(ctx context.Context, id uint64, payload dto.ReviewLeaveDTO) (*entities.LeaveRequest, error)
	Delete(ctx context.Context, id uint64) error
}

type LeaveController struct {
	service LeaveService
	logger  *zap.Logger
}

func NewLeaveController(service LeaveService, logger *zap.Logger) *LeaveController {
	return &LeaveController{service: service, logger: logger}
}

func (c *LeaveController) GetAll(ctx echo.Context) error {
	return respondList(ctx, c.logger, "Список заявок на отпуск получен", c.service.GetLeaves)
}

func (c *LeaveController) GetStats(ctx echo.Context) error {
	return respondStats(ctx, c.logger, c.service.GetStats)
}

func (c *LeaveController) GetByID(ctx echo.Context) error {
	return respondByID(ctx, c.logger, "Заявка найдена", c.service.FindByID)
}

func (c *LeaveController) Create(ctx echo.Context) error {
	return respondCreate(ctx, c.logger, "Заявка на отпуск создана", c.service.Create)
}

func (c *LeaveController) Update(ctx echo.Context) error {
	return respondPatch(ctx, c.logger, "Заявка обновлена", c.service.Update)
}

func (c *LeaveController) Review(ctx echo.Context) error {
	return respondAction(ctx, c.logger, "Заявка рассмотрена", c.service.Review)
}

func (c *LeaveController) Delete(ctx echo.Context) error {
	return respondDelete(ctx, c.logger, "Заявка удалена", c.service.Delete)
}
