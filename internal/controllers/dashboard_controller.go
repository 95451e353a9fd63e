package controllers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"isp-system/internal/dto"
	"isp-system/pkg/api"
	"isp-system/pkg/utils"
)

type DashboardService interface {
	GetDashboard(ctx context.Context) (*dto.DashboardDTO, error)
}

type DashboardController struct {
	service DashboardService
	logger  *zap.Logger
}

func NewDashboardController(service DashboardService, logger *zap.Logger) *DashboardController {
	return &DashboardController{service: service, logger: logger}
}

func (c *DashboardController) GetDashboard(ctx echo.Context) error {
	data, err := c.service.GetDashboard(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Данные дашборда получены", data)
}
