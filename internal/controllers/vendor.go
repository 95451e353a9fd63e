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

type VendorService interface {
	GetVendors(ctx context.Context, filter types.Filter) ([]entities.Vendor, uint64, error)
	GetStats(ctx context.Context, filter types.Filter) (types.StatusStats, error)
	FindByID(ctx context.Context, id uint64) (*entities.Vendor, error)
	Create(ctx context.Context, payload dto.CreateVendorDTO) (*entities.Vendor, error)
	Update(ctx context.Context, id uint64, payload dto.UpdateVendorDTO, fields utils.Fields) (*entities.Vendor, error)
	Delete(ctx context.Context, id uint64) error
	GetProfile(ctx context.Context) (*entities.Vendor, error)
	UpdateProfile(ctx context.Context, payload dto.VendorProfileDTO, fields utils.Fields) (*entities.Vendor, error)
}

type VendorController struct {
	service VendorService
	logger  *zap.Logger
}

func NewVendorController(service VendorService, logger *zap.Logger) *VendorController {
	return &VendorController{service: service, logger: logger}
}

func (c *VendorController) GetAll(ctx echo.Context) error {
	return respondList(ctx, c.logger, "Список поставщиков получен", c.service.GetVendors)
}

func (c *VendorController) GetStats(ctx echo.Context) error {
	return respondStats(ctx, c.logger, c.service.GetStats)
}

func (c *VendorController) GetByID(ctx echo.Context) error {
	return respondByID(ctx, c.logger, "Поставщик найден", c.service.FindByID)
}

func (c *VendorController) Create(ctx echo.Context) error {
	return respondCreate(ctx, c.logger, "Поставщик создан", c.service.Create)
}

func (c *VendorController) Update(ctx echo.Context) error {
	return respondPatch(ctx, c.logger, "Поставщик обновлён", c.service.Update)
}

func (c *VendorController) Delete(ctx echo.Context) error {
	return respondDelete(ctx, c.logger, "Поставщик удалён", c.service.Delete)
}

func (c *VendorController) GetProfile(ctx echo.Context) error {
	vendor, err := c.service.GetProfile(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Профиль получен", vendor)
}

func (c *VendorController) UpdateProfile(ctx echo.Context) error {
	var payload dto.VendorProfileDTO
	fields, err := utils.BindPatch(ctx, &payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	vendor, err := c.service.UpdateProfile(ctx.Request().Context(), payload, fields)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Профиль обновлён", vendor)
}
