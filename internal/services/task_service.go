package services

import (
	"context"

	"github.com/jackc/pgx/v5"

	"isp-system/internal/authz"
	"isp-system/internal/dto"
	"isp-system/internal/entities"
	"isp-system/internal/repositories"
	"isp-system/pkg/constants"
	apperrors "isp-system/pkg/errors"
	"isp-system/pkg/types"
	"isp-system/pkg/utils"
)

type TaskService struct {
	*BaseService
	repo     repositories.TaskRepositoryInterface
	userRepo repositories.UserRepositoryInterface
}

func NewTaskService(base *BaseService, repo repositories.TaskRepositoryInterface, userRepo repositories.UserRepositoryInterface) *TaskService {
	return &TaskService{BaseService: base, repo: repo, userRepo: userRepo}
}

// GetTasks - для техника ListScope сам сужает список до его задач.
func (s *TaskService) GetTasks(ctx context.Context, filter types.Filter) ([]entities.Task, uint64, error) {
	_, scope, err := s.scope(ctx, authz.TasksView, repositories.TaskScopeColumns)
	if err != nil {
		return nil, 0, err
	}
	return s.repo.GetTasks(ctx, filter, scope)
}

func (s *TaskService) GetStats(ctx context.Context, filter types.Filter) (types.StatusStats, error) {
	_, scope, err := s.scope(ctx, authz.TasksView, repositories.TaskScopeColumns)
	if err != nil {
		return types.StatusStats{}, err
	}
	return s.repo.GetStats(ctx, filter, scope)
}

func (s *TaskService) FindByID(ctx context.Context, id uint64) (*entities.Task, error) {
	task, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if _, _, err := s.authorize(ctx, authz.TasksView, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) Create(ctx context.Context, payload dto.CreateTaskDTO) (*entities.Task, error) {
	actor, perms, err := s.authorize(ctx, authz.TasksCreate, nil)
	if err != nil {
		return nil, err
	}
	operatorID, err := resolveOperator(actor, perms, nil)
	if err != nil {
		return nil, err
	}

	task := &entities.Task{
		OperatorID:  operatorID,
		Title:       payload.Title,
		Type:        payload.Type,
		Address:     payload.Address,
		ScheduledAt: payload.ScheduledAt,
		TicketID:    payload.TicketID,
		ComplaintID: payload.ComplaintID,
		Status:      constants.TaskPending,
		Notes:       payload.Notes,
		CreatedBy:   actor.ID,
	}
	if payload.TechnicianID != nil {
		if !perms[authz.TasksAssign] && !perms[authz.Superuser] {
			return nil, apperrors.ErrForbidden
		}
		tech, err := staffMember(ctx, s.userRepo, *payload.TechnicianID, operatorID, constants.RoleTechnician)
		if err != nil {
			return nil, err
		}
		task.TechnicianID = &tech.ID
		task.TechnicianName = &tech.Fio
		task.Status = constants.TaskAssigned
	}

	err = s.inTx(ctx, actor, func(tx pgx.Tx, j *Journal) error {
		if err := s.repo.Create(ctx, tx, task); err != nil {
			return err
		}
		return j.Record(ctx, Change{
			EntityType: constants.EntityTask, EntityID: task.ID, OperatorID: &task.OperatorID,
			Action: constants.ActionCreated, New: task, Recipients: recipients(task.TechnicianID),
		})
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// Update - правка задачи диспетчером. Техник пользуется UpdateByTechnician.
func (s *TaskService) Update(ctx context.Context, id uint64, payload dto.UpdateTaskDTO, fields utils.Fields) (*entities.Task, error) {
	task, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	actor, _, err := s.authorize(ctx, authz.TasksUpdate, task)
	if err != nil {
		return nil, err
	}
	if actor.RoleCode == constants.RoleTechnician {
		return nil, apperrors.ErrForbidden
	}
	if err := guardFinal(constants.EntityTask, task.Status); err != nil {
		return nil, err
	}
	old := *task

	if payload.Title != nil {
		task.Title = *payload.Title
	}
	if payload.Type != nil {
		task.Type = *payload.Type
	}
	if payload.Address != nil {
		task.Address = *payload.Address
	}
	if fields.Has("scheduled_at") {
		task.ScheduledAt = payload.ScheduledAt.Ptr()
	}
	if fields.Has("notes") {
		task.Notes = payload.Notes.Ptr()
	}
	if payload.Status != nil {
		if *payload.Status == constants.TaskAssigned && task.TechnicianID == nil {
			return nil, apperrors.NewInvalidInputError("задача без техника не может быть в статусе assigned")
		}
		setTaskStatus(task, *payload.Status)
	}

	if err := s.save(ctx, actor, &old, task); err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateByTechnician - техник меняет только статус и заметки своей задачи.
func (s *TaskService) UpdateByTechnician(ctx context.Context, id uint64, payload dto.TechnicianTaskUpdateDTO, fields utils.Fields) (*entities.Task, error) {
	task, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	actor, _, err := s.authorize(ctx, authz.TasksUpdate, task)
	if err != nil {
		return nil, err
	}
	if task.TechnicianID == nil || *task.TechnicianID != actor.ID {
		return nil, apperrors.ErrForbidden
	}
	if err := guardFinal(constants.EntityTask, task.Status); err != nil {
		return nil, err
	}
	old := *task

	if fields.Has("notes") {
		task.Notes = payload.Notes.Ptr()
	}
	if payload.Status != nil {
		setTaskStatus(task, *payload.Status)
	}

	if err := s.save(ctx, actor, &old, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Assign назначает техника того же оператора и переводит задачу в assigned.
func (s *TaskService) Assign(ctx context.Context, id uint64, payload dto.AssignTaskDTO) (*entities.Task, error) {
	task, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	actor, _, err := s.authorize(ctx, authz.TasksAssign, task)
	if err != nil {
		return nil, err
	}
	if err := guardFinal(constants.EntityTask, task.Status); err != nil {
		return nil, err
	}
	tech, err := staffMember(ctx, s.userRepo, payload.TechnicianID, task.OperatorID, constants.RoleTechnician)
	if err != nil {
		return nil, err
	}
	old := *task

	task.TechnicianID = &tech.ID
	task.TechnicianName = &tech.Fio
	task.Status = constants.TaskAssigned

	if err := s.save(ctx, actor, &old, task); err != nil {
		return nil, err
	}
	return task, nil
}

func setTaskStatus(task *entities.Task, status string) {
	if status == task.Status {
		return
	}
	task.Status = status
	if status == constants.TaskCompleted {
		now := nowFunc()
		task.CompletedAt = &now
	}
}

func (s *TaskService) save(ctx context.Context, actor *authz.Actor, old, task *entities.Task) error {
	action := constants.ActionUpdated
	switch {
	case !equalIDs(task.TechnicianID, old.TechnicianID):
		action = constants.ActionAssigned
	case task.Status != old.Status:
		action = constants.ActionStatusChanged
	}

	// старому технику тоже сообщаем о снятии задачи
	to := recipients(task.TechnicianID)
	if old.TechnicianID != nil && !equalIDs(task.TechnicianID, old.TechnicianID) {
		to = append(to, *old.TechnicianID)
	}

	return s.inTx(ctx, actor, func(tx pgx.Tx, j *Journal) error {
		if err := s.repo.Update(ctx, tx, task); err != nil {
			return err
		}
		return j.Record(ctx, Change{
			EntityType: constants.EntityTask, EntityID: task.ID, OperatorID: &task.OperatorID,
			Action: action, Old: old, New: task, Recipients: to,
		})
	})
}

func (s *TaskService) Delete(ctx context.Context, id uint64) error {
	task, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return err
	}
	actor, _, err := s.authorize(ctx, authz.TasksDelete, task)
	if err != nil {
		return err
	}
	return s.inTx(ctx, actor, func(tx pgx.Tx, j *Journal) error {
		if err := s.repo.Delete(ctx, tx, id); err != nil {
			return err
		}
		return j.Record(ctx, Change{EntityType: constants.EntityTask, EntityID: id, OperatorID: &task.OperatorID, Action: constants.ActionDeleted, Old: task})
	})
}
