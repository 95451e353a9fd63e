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

type ShipmentService interface {
	GetShipments(ctx context.Context, filter types.Filter) ([]entities.Shipment, uint64, error)
	GetStats(ctx context.Context, filter types.Filter) (types.StatusStats, error)
	FindByID(ctx context.Context, id uint64) (*entities.Shipment, error)
	Create(ctx context.Context, payload dto.CreateShipmentDTO) (*entities.Shipment, error)
	Update(ctx context.Context, id uint64, payload dto.UpdateShipmentDTO, fields utils.Fields) (*entities.Shipment, error)
	Delete(ctx context.Context, id uint64) error
}

type ShipmentController struct {
	service ShipmentService
	logger  *zap.Logger
}

func NewShipmentController(service ShipmentService, logger *zap.Logger) *ShipmentController {
	return &ShipmentController{service: service, logger: logger}
}

func (c *ShipmentController) GetAll(ctx echo.Context) error {
	return respondList(ctx, c.logger, "Список доставок получен", c.service.GetShipments)
}

func (c *ShipmentController) GetStats(ctx echo.Context) error {
	return respondStats(ctx, c.logger, c.service.GetStats)
}

func (c *ShipmentController) GetByID(ctx echo.Context) error {
	return respondByID(ctx, c.logger, "Доставка найдена", c.service.FindByID)
}

func (c *ShipmentController) Create(ctx echo.Context) error {
	return respondCreate(ctx, c.logger, "Доставка создана", c.service.Create)
}

func (c *ShipmentController) Update(ctx echo.Context) error {
	return respondPatch(ctx, c.logger, "Доставка обновлена", c.service.Update)
}

func (c *ShipmentController) Delete(ctx echo.Context) error {
	return respondDelete(ctx, c.logger, "Доставка удалена", c.service.Delete)
}
