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

type OperatorService interface {
	GetOperators(ctx context.Context, filter types.Filter) ([]entities.Operator, uint64, error)
	GetStats(ctx context.Context, filter types.Filter) (types.StatusStats, error)
	FindByID(ctx context.Context, id uint64) (*entities.Operator, error)
	Create(ctx context.Context, payload dto.CreateOperatorDTO) (*entities.Operator, error)
	Update(ctx context.Context, id uint64, payload dto.UpdateOperatorDTO, fields utils.Fields) (*entities.Operator, error)
	Delete(ctx context.Context, id uint64) error
}

type OperatorController struct {
	service OperatorService
	logger  *zap.Logger
}

func NewOperatorController(service OperatorService, logger *zap.Logger) *OperatorController {
	return &OperatorController{service: service, logger: logger}
}

func (c *OperatorController) GetAll(ctx echo.Context) error {
	return respondList(ctx, c.logger, "Список операторов получен", c.service.GetOperators)
}

func (c *OperatorController) GetStats(ctx echo.Context) error {
	return respondStats(ctx, c.logger, c.service.GetStats)
}

func (c *OperatorController) GetByID(ctx echo.Context) error {
	return respondByID(ctx, c.logger, "Оператор найден", c.service.FindByID)
}

func (c *OperatorController) Create(ctx echo.Context) error {
	return respondCreate(ctx, c.logger, "Оператор создан", c.service.Create)
}

func (c *OperatorController) Update(ctx echo.Context) error {
	return respondPatch(ctx, c.logger, "Оператор обновлён", c.service.Update)
}

func (c *OperatorController) Delete(ctx echo.Context) error {
	return respondDelete(ctx, c.logger, "Оператор удалён", c.service.Delete)
}
