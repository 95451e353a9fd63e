package controllers

import (
	"context"
	"io"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"isp-system/internal/dto"
	"isp-system/internal/entities"
	"isp-system/pkg/types"
)

type PaymentService interface {
	GetPayments(ctx context.Context, filter types.Filter) ([]entities.Payment, uint64, error)
	GetStats(ctx context.Context, filter types.Filter) (*dto.PaymentStatsDTO, error)
	FindByID(ctx context.Context, id uint64) (*entities.Payment, error)
	Create(ctx context.Context, payload dto.CreatePaymentDTO) (*entities.Payment, error)
	Update(ctx context.Context, id uint64, payload dto.UpdatePaymentDTO) (*entities.Payment, error)
	Delete(ctx context.Context, id uint64) error
	Export(ctx context.Context, filter types.Filter, w io.Writer) error
}

type PaymentController struct {
	service PaymentService
	logger  *zap.Logger
}

func NewPaymentController(service PaymentService, logger *zap.Logger) *PaymentController {
	return &PaymentController{service: service, logger: logger}
}

func (c *PaymentController) GetAll(ctx echo.Context) error {
	return respondList(ctx, c.logger, "Список платежей получен", c.service.GetPayments)
}

// GetStats дополнительно к разбивке по статусам отдаёт сумму проведённых платежей.
func (c *PaymentController) GetStats(ctx echo.Context) error {
	return respondStats(ctx, c.logger, c.service.GetStats)
}

func (c *PaymentController) GetByID(ctx echo.Context) error {
	return respondByID(ctx, c.logger, "Платёж найден", c.service.FindByID)
}

func (c *PaymentController) Create(ctx echo.Context) error {
	return respondCreate(ctx, c.logger, "Платёж создан", c.service.Create)
}

func (c *PaymentController) Update(ctx echo.Context) error {
	return respondAction(ctx, c.logger, "Платёж обновлён", c.service.Update)
}

func (c *PaymentController) Delete(ctx echo.Context) error {
	return respondDelete(ctx, c.logger, "Платёж удалён", c.service.Delete)
}

func (c *PaymentController) Export(ctx echo.Context) error {
	return respondExport(ctx, c.logger, "payments", c.service.Export)
}
