package controllers

import (
	"context"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"isp-system/internal/entities"
	"isp-system/pkg/types"
)

type ActivityLogService interface {
	GetLogs(ctx context.Context, filter types.Filter) ([]entities.ActivityLog, uint64, error)
}

type ActivityLogController struct {
	service ActivityLogService
	logger  *zap.Logger
}

func NewActivityLogController(service ActivityLogService, logger *zap.Logger) *ActivityLogController {
	return &ActivityLogController{service: service, logger: logger}
}

func (c *ActivityLogController) GetAll(ctx echo.Context) error {
	return respondList(ctx, c.logger, "Журнал действий получен", c.service.GetLogs)
}
