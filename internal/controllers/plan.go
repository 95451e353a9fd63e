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

type PlanService interface {
	GetPlans(ctx context.Context, filter types.Filter) ([]entities.Plan, uint64, error)
	GetStats(ctx context.Context, filter types.Filter) (types.StatusStats, error)
	FindByID(ctx context.Context, id uint64) (*entities.Plan, error)
	Create(ctx context.Context, payload dto.CreatePlanDTO) (*entities.Plan, error)
	Update(ctx context.Context, id uint64, payload dto.UpdatePlanDTO, fields utils.Fields) (*entities.Plan, error)
	Delete(ctx context.Context, id uint64) error
}

type PlanController struct {
	service PlanService
	logger  *zap.Logger
}

func NewPlanController(service PlanService, logger *zap.Logger) *PlanController {
	return &PlanController{service: service, logger: logger}
}

func (c *PlanController) GetAll(ctx echo.Context) error {
	return respondList(ctx, c.logger, "Список тарифов получен", c.service.GetPlans)
}

func (c *PlanController) GetStats(ctx echo.Context) error {
	return respondStats(ctx, c.logger, c.service.GetStats)
}

func (c *PlanController) GetByID(ctx echo.Context) error {
	return respondByID(ctx, c.logger, "Тариф найден", c.service.FindByID)
}

func (c *PlanController) Create(ctx echo.Context) error {
	return respondCreate(ctx, c.logger, "Тариф создан", c.service.Create)
}

func (c *PlanController) Update(ctx echo.Context) error {
	return respondPatch(ctx, c.logger, "Тариф обновлён", c.service.Update)
}

func (c *PlanController) Delete(ctx echo.Context) error {
	return respondDelete(ctx, c.logger, "Тариф удалён", c.service.Delete)
}
