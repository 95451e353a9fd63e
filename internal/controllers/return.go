package controllers

import (
	"context"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"isp-system/internal/dto"
	"isp-system/internal/entities"
	"isp-system/pkg/types"
)

type ReturnService interface {
	GetReturns(ctx context.Context, filter types.Filter) ([]entities.Return, uint64, error)
	GetStats(ctx context.Context, filter types.Filter) (types.StatusStats, error)
	FindByID(ctx context.Context, id uint64) (*entities.Return, error)
	Create(ctx context.Context, payload dto.CreateReturnDTO) (*entities.Return, error)
	Update(ctx context.Context, id uint64, payload dto.UpdateReturnDTO) (*entities.Return, error)
	Delete(ctx context.Context, id uint64) error
}

type ReturnController struct {
	service ReturnService
	logger  *zap.Logger
}

func NewReturnController(service ReturnService, logger *zap.Logger) *ReturnController {
	return &ReturnController{service: service, logger: logger}
}

func (c *ReturnController) GetAll(ctx echo.Context) error {
	return respondList(ctx, c.logger, "Список возвратов получен", c.service.GetReturns)
}

func (c *ReturnController) GetStats(ctx echo.Context) error {
	return respondStats(ctx, c.logger, c.service.GetStats)
}

func (c *ReturnController) GetByID(ctx echo.Context) error {
	return respondByID(ctx, c.logger, "Возврат найден", c.service.FindByID)
}

func (c *ReturnController) Create(ctx echo.Context) error {
	return respondCreate(ctx, c.logger, "Возврат оформлен", c.service.Create)
}

func (c *ReturnController) Update(ctx echo.Context) error {
	return respondAction(ctx, c.logger, "Возврат обновлён", c.service.Update)
}

func (c *ReturnController) Delete(ctx echo.Context) error {
	return respondDelete(ctx, c.logger, "Возврат удалён", c.service.Delete)
}
