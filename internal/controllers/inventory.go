package controllers

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"isp-system/config"
	"isp-system/internal/dto"
	"isp-system/internal/entities"
	"isp-system/pkg/api"
	"isp-system/pkg/types"
	"isp-system/pkg/utils"
	"isp-system/pkg/validation"
)

type InventoryService interface {
	GetItems(ctx context.Context, filter types.Filter) ([]entities.InventoryItem, uint64, error)
	GetStats(ctx context.Context, filter types.Filter) (types.StatusStats, error)
	FindByID(ctx context.Context, id uint64) (*entities.InventoryItem, error)
	Create(ctx context.Context, payload dto.CreateInventoryItemDTO) (*entities.InventoryItem, error)
	Update(ctx context.Context, id uint64, payload dto.UpdateInventoryItemDTO, fields utils.Fields) (*entities.InventoryItem, error)
	Adjust(ctx context.Context, id uint64, payload dto.AdjustInventoryDTO) (*entities.InventoryItem, error)
	Delete(ctx context.Context, id uint64) error
	Import(ctx context.Context, r io.Reader, requestedOperator *uint64) (*dto.ImportResultDTO, error)
	Export(ctx context.Context, filter types.Filter, w io.Writer) error
}

type InventoryController struct {
	service InventoryService
	logger  *zap.Logger
}

func NewInventoryController(service InventoryService, logger *zap.Logger) *InventoryController {
	return &InventoryController{service: service, logger: logger}
}

func (c *InventoryController) GetAll(ctx echo.Context) error {
	return respondList(ctx, c.logger, "Список позиций склада получен", c.service.GetItems)
}

func (c *InventoryController) GetStats(ctx echo.Context) error {
	return respondStats(ctx, c.logger, c.service.GetStats)
}

func (c *InventoryController) GetByID(ctx echo.Context) error {
	return respondByID(ctx, c.logger, "Позиция найдена", c.service.FindByID)
}

func (c *InventoryController) Create(ctx echo.Context) error {
	return respondCreate(ctx, c.logger, "Позиция создана", c.service.Create)
}

func (c *InventoryController) Update(ctx echo.Context) error {
	return respondPatch(ctx, c.logger, "Позиция обновлена", c.service.Update)
}

func (c *InventoryController) Adjust(ctx echo.Context) error {
	return respondAction(ctx, c.logger, "Остаток скорректирован", c.service.Adjust)
}

func (c *InventoryController) Delete(ctx echo.Context) error {
	return respondDelete(ctx, c.logger, "Позиция удалена", c.service.Delete)
}

func (c *InventoryController) Export(ctx echo.Context) error {
	return respondExport(ctx, c.logger, "inventory", c.service.Export)
}

// Import - multipart "file" (xlsx) и необязательное поле operator_id для администратора.
func (c *InventoryController) Import(ctx echo.Context) error {
	var operatorID *uint64
	if raw := ctx.FormValue("operator_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return utils.ErrorResponse(ctx, badRequest("Неверный operator_id", err), c.logger)
		}
		operatorID = &id
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return utils.ErrorResponse(ctx, badRequest("Файл не передан", err), c.logger)
	}
	src, err := fileHeader.Open()
	if err != nil {
		return utils.ErrorResponse(ctx, badRequest("Не удалось открыть файл", err), c.logger)
	}
	defer src.Close()

	if err := validation.ValidateFile(fileHeader, src, config.UploadInventoryImport); err != nil {
		return utils.ErrorResponse(ctx, badRequest(err.Error(), err), c.logger)
	}

	result, err := c.service.Import(ctx.Request().Context(), src, operatorID)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Импорт завершён", result)
}
