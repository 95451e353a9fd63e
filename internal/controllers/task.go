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

type TaskService interface {
	GetTasks(ctx context.Context, filter types.Filter) ([]entities.Task, uint64, error)
	GetStats(ctx context.Context, filter types.Filter) (types.StatusStats, error)
	FindByID(ctx context.Context, id uint64) (*entities.Task, error)
	Create(ctx context.Context, payload dto.CreateTaskDTO) (*entities.Task, error)
	Update(ctx context.Context, id uint64, payload dto.UpdateTaskDTO, fields utils.Fields) (*entities.Task, error)
	UpdateByTechnician(ctx context.Context, id uint64, payload dto.TechnicianTaskUpdateDTO, fields utils.Fields) (*entities.Task, error)
	Assign(ctx context.Context, id uint64, payload dto.AssignTaskDTO) (*entities.Task, error)
	Delete(ctx context.Context, id uint64) error
}

type TaskController struct {
	service TaskService
	logger  *zap.Logger
}

func NewTaskController(service TaskService, logger *zap.Logger) *TaskController {
	return &TaskController{service: service, logger: logger}
}

// GetAll обслуживает и /tasks, и /technician/tasks: техник видит только свои задачи через scope:own.
func (c *TaskController) GetAll(ctx echo.Context) error {
	return respondList(ctx, c.logger, "Список задач получен", c.service.GetTasks)
}

func (c *TaskController) GetStats(ctx echo.Context) error {
	return respondStats(ctx, c.logger, c.service.GetStats)
}

func (c *TaskController) GetByID(ctx echo.Context) error {
	return respondByID(ctx, c.logger, "Задача найдена", c.service.FindByID)
}

func (c *TaskController) Create(ctx echo.Context) error {
	return respondCreate(ctx, c.logger, "Задача создана", c.service.Create)
}

func (c *TaskController) Update(ctx echo.Context) error {
	return respondPatch(ctx, c.logger, "Задача обновлена", c.service.Update)
}

func (c *TaskController) UpdateByTechnician(ctx echo.Context) error {
	return respondPatch(ctx, c.logger, "Статус задачи обновлён", c.service.UpdateByTechnician)
}

func (c *TaskController) Assign(ctx echo.Context) error {
	return respondAction(ctx, c.logger, "Техник назначен", c.service.Assign)
}

func (c *TaskController) Delete(ctx echo.Context) error {
	return respondDelete(ctx, c.logger, "Задача удалена", c.service.Delete)
}
