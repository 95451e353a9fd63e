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

type TicketService interface {
	GetTickets(ctx context.Context, filter types.Filter) ([]entities.Ticket, uint64, error)
	GetStats(ctx context.Context, filter types.Filter) (types.StatusStats, error)
	FindByID(ctx context.Context, id uint64) (*entities.Ticket, error)
	Create(ctx context.Context, payload dto.CreateTicketDTO) (*entities.Ticket, error)
	Update(ctx context.Context, id uint64, payload dto.UpdateTicketDTO, fields utils.Fields) (*entities.Ticket, error)
	Escalate(ctx context.Context, id uint64) (*entities.Ticket, error)
	Delete(ctx context.Context, id uint64) error
}

type TicketController struct {
	service TicketService
	logger  *zap.Logger
}

func NewTicketController(service TicketService, logger *zap.Logger) *TicketController {
	return &TicketController{service: service, logger: logger}
}

func (c *TicketController) GetAll(ctx echo.Context) error {
	return respondList(ctx, c.logger, "Список тикетов получен", c.service.GetTickets)
}

func (c *TicketController) GetStats(ctx echo.Context) error {
	return respondStats(ctx, c.logger, c.service.GetStats)
}

func (c *TicketController) GetByID(ctx echo.Context) error {
	return respondByID(ctx, c.logger, "Тикет найден", c.service.FindByID)
}

func (c *TicketController) Create(ctx echo.Context) error {
	return respondCreate(ctx, c.logger, "Тикет создан", c.service.Create)
}

func (c *TicketController) Update(ctx echo.Context) error {
	return respondPatch(ctx, c.logger, "Тикет обновлён", c.service.Update)
}

func (c *TicketController) Escalate(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	ticket, err := c.service.Escalate(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Приоритет тикета повышен", ticket)
}

func (c *TicketController) Delete(ctx echo.Context) error {
	return respondDelete(ctx, c.logger, "Тикет удалён", c.service.Delete)
}
