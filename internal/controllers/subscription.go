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

type SubscriptionService interface {
	GetSubscriptions(ctx context.Context, filter types.Filter) ([]entities.Subscription, uint64, error)
	GetStats(ctx context.Context, filter types.Filter) (types.StatusStats, error)
	FindByID(ctx context.Context, id uint64) (*entities.Subscription, error)
	Create(ctx context.Context, payload dto.CreateSubscriptionDTO) (*entities.Subscription, error)
	Update(ctx context.Context, id uint64, payload dto.UpdateSubscriptionDTO, fields utils.Fields) (*entities.Subscription, error)
	Delete(ctx context.Context, id uint64) error
}

type SubscriptionController struct {
	service SubscriptionService
	logger  *zap.Logger
}

func NewSubscriptionController(service SubscriptionService, logger *zap.Logger) *SubscriptionController {
	return &SubscriptionController{service: service, logger: logger}
}

func (c *SubscriptionController) GetAll(ctx echo.Context) error {
	return respondList(ctx, c.logger, "Список подписок получен", c.service.GetSubscriptions)
}

func (c *SubscriptionController) GetStats(ctx echo.Context) error {
	return respondStats(ctx, c.logger, c.service.GetStats)
}

func (c *SubscriptionController) GetByID(ctx echo.Context) error {
	return respondByID(ctx, c.logger, "Подписка найдена", c.service.FindByID)
}

func (c *SubscriptionController) Create(ctx echo.Context) error {
	return respondCreate(ctx, c.logger, "Подписка создана", c.service.Create)
}

func (c *SubscriptionController) Update(ctx echo.Context) error {
	return respondPatch(ctx, c.logger, "Подписка обновлена", c.service.Update)
}

func (c *SubscriptionController) Delete(ctx echo.Context) error {
	return respondDelete(ctx, c.logger, "Подписка удалена", c.service.Delete)
}
