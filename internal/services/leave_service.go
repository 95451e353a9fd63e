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

type LeaveService struct {
	*BaseService
	repo repositories.LeaveRepositoryInterface
}

func NewLeaveService(base *BaseService, repo repositories.LeaveRepositoryInterface) *LeaveService {
	return &LeaveService{BaseService: base, repo: repo}
}

func (s *LeaveService) GetLeaves(ctx context.Context, filter types.Filter) ([]entities.LeaveRequest, uint64, error) {
	_, scope, err := s.scope(ctx, authz.LeavesView, repositories.LeaveScopeColumns)
	if err != nil {
		return nil, 0, err
	}
	return s.repo.GetLeaves(ctx, filter, scope)
}

func (s *LeaveService) GetStats(ctx context.Context, filter types.Filter) (types.StatusStats, error) {
	_, scope, err := s.scope(ctx, authz.LeavesView, repositories.LeaveScopeColumns)
	if err != nil {
		return types.StatusStats{}, err
	}
	return s.repo.GetStats(ctx, filter, scope)
}

func (s *LeaveService) FindByID(ctx context.Context, id uint64) (*entities.LeaveRequest, error) {
	leave, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if _, _, err := s.authorize(ctx, authz.LeavesView, leave); err != nil {
		return nil, err
	}
	return leave, nil
}

// Create - сотрудник подаёт заявку только на себя.
func (s *LeaveService) Create(ctx context.Context, payload dto.CreateLeaveDTO) (*entities.LeaveRequest, error) {
	actor, _, err := s.authorize(ctx, authz.LeavesCreate, nil)
	if err != nil {
		return nil, err
	}
	if actor.OperatorID == nil {
		return nil, apperrors.ErrForbidden
	}

	leave := &entities.LeaveRequest{
		OperatorID: *actor.OperatorID,
		UserID:     actor.ID,
		Type:       payload.Type,
		Reason:     payload.Reason,
		Status:     constants.LeavePending,
	}
	if leave.StartDate, err = parseDate(payload.StartDate); err != nil {
		return nil, err
	}
	if leave.EndDate, err = parseDate(payload.EndDate); err != nil {
		return nil, err
	}
	if err := checkPeriod(leave); err != nil {
		return nil, err
	}

	err = s.inTx(ctx, actor, func(tx pgx.Tx, j *Journal) error {
		if err := s.repo.Create(ctx, tx, leave); err != nil {
			return err
		}
		return j.Record(ctx, Change{EntityType: constants.EntityLeave, EntityID: leave.ID, OperatorID: &leave.OperatorID, Action: constants.ActionCreated, New: leave})
	})
	if err != nil {
		return nil, err
	}
	return leave, nil
}

// Update - правка или отмена своей заявки, пока она на рассмотрении.
// Чужую заявку меняет только тот, кто вправе её рассматривать.
func (s *LeaveService) Update(ctx context.Context, id uint64, payload dto.UpdateLeaveDTO, fields utils.Fields) (*entities.LeaveRequest, error) {
	leave, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	actor, perms, err := s.authorize(ctx, authz.LeavesUpdate, leave)
	if err != nil {
		return nil, err
	}
	if leave.UserID != actor.ID && !perms[authz.LeavesReview] && !perms[authz.Superuser] {
		return nil, apperrors.ErrForbidden
	}
	if leave.Status != constants.LeavePending {
		return nil, apperrors.ErrFinalStatus
	}
	old := *leave

	if payload.Type != nil {
		leave.Type = *payload.Type
	}
	if payload.StartDate != nil {
		if leave.StartDate, err = parseDate(*payload.StartDate); err != nil {
			return nil, err
		}
	}
	if payload.EndDate != nil {
		if leave.EndDate, err = parseDate(*payload.EndDate); err != nil {
			return nil, err
		}
	}
	if fields.Has("reason") {
		leave.Reason = payload.Reason.Ptr()
	}
	if err := checkPeriod(leave); err != nil {
		return nil, err
	}

	action := constants.ActionUpdated
	if payload.Status != nil && *payload.Status == constants.LeaveCancelled {
		leave.Status = constants.LeaveCancelled
		action = constants.ActionStatusChanged
	}

	err = s.inTx(ctx, actor, func(tx pgx.Tx, j *Journal) error {
		if err := s.repo.Update(ctx, tx, leave); err != nil {
			return err
		}
		return j.Record(ctx, Change{
			EntityType: constants.EntityLeave, EntityID: leave.ID, OperatorID: &leave.OperatorID,
			Action: action, Old: old, New: leave, Recipients: []uint64{leave.UserID},
		})
	})
	if err != nil {
		return nil, err
	}
	return leave, nil
}

// Review - решение по заявке; рассматривать можно только pending и только чужие.
func (s *LeaveService) Review(ctx context.Context, id uint64, payload dto.ReviewLeaveDTO) (*entities.LeaveRequest, error) {
	leave, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	actor, _, err := s.authorize(ctx, authz.LeavesReview, leave)
	if err != nil {
		return nil, err
	}
	if leave.Status != constants.LeavePending {
		return nil, apperrors.ErrFinalStatus
	}
	if leave.UserID == actor.ID {
		return nil, apperrors.NewInvalidInputError("нельзя согласовать собственную заявку")
	}
	old := *leave

	now := nowFunc()
	leave.Status = payload.Status
	leave.ReviewedBy = &actor.ID
	leave.ReviewedAt = &now
	leave.ReviewComment = payload.Comment

	err = s.inTx(ctx, actor, func(tx pgx.Tx, j *Journal) error {
		if err := s.repo.Update(ctx, tx, leave); err != nil {
			return err
		}
		return j.Record(ctx, Change{
			EntityType: constants.EntityLeave, EntityID: leave.ID, OperatorID: &leave.OperatorID,
			Action: constants.ActionReviewed, Old: old, New: leave, Recipients: []uint64{leave.UserID},
		})
	})
	if err != nil {
		return nil, err
	}
	return leave, nil
}

func (s *LeaveService) Delete(ctx context.Context, id uint64) error {
	leave, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return err
	}
	actor, _, err := s.authorize(ctx, authz.LeavesDelete, leave)
	if err != nil {
		return err
	}
	return s.inTx(ctx, actor, func(tx pgx.Tx, j *Journal) error {
		if err := s.repo.Delete(ctx, tx, id); err != nil {
			return err
		}
		return j.Record(ctx, Change{EntityType: constants.EntityLeave, EntityID: id, OperatorID: &leave.OperatorID, Action: constants.ActionDeleted, Old: leave})
	})
}

func checkPeriod(l *entities.LeaveRequest) error {
	if l.EndDate.Before(l.StartDate) {
		return apperrors.NewInvalidInputError("дата окончания раньше даты начала")
	}
	return nil
}
