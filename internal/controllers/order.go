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

type OrderService interface {
	GetOrders(ctx context.Context, filter types.Filter) ([]entities.Order, uint64, error)
	GetStats(ctx context.Context, filter types.Filter) (types.StatusStats, error)
	FindByID(ctx context.Context, id uint64) (*entities.Order, error)
	Create(ctx context.Context, payload dto.CreateOrderDTO) (*entities.Order, error)
	Update(ctx context.Context, id uint64, payload dto.UpdateOrderDTO, fields utils.Fields) (*entities.Order, error)
	Delete(ctx context.Context, id uint64) error
}

type OrderController struct {
	service OrderService
	logger  *zap.Logger
}

func NewOrderController(service OrderService, logger *zap.Logger) *OrderController {
	return &OrderController{service: service, logger: logger}
}

func (c *OrderController) GetAll(ctx echo.Context) error {
	return respondList(ctx, c.logger, "Список закупок получен", c.service.GetOrders)
}

func (c *OrderController) GetStats(ctx echo.Context) error {
	return respondStats(ctx, c.logger, c.service.GetStats)
}

func (c *OrderController) GetByID(ctx echo.Context) error {
	return respondByID(ctx, c.logger, "Закупка найдена", c.service.FindByID)
}

func (c *OrderController) Create(ctx echo.Context) error {
	return respondCreate(ctx, c.logger, "Закупка создана", c.service.Create)
}

func (c *OrderController) Update(ctx echo.Context) error {
	return respondPatch(ctx, c.logger, "Закупка обновлена", c.service.Update)
}

func (c *OrderController) Delete(ctx echo.Context) error {
	return respondDelete(ctx, c.logger, "Закупка удалена", c.service.Delete)
}
