package services

import (
	"context"

	"github.com/jackc/pgx/v5"

	"isp-system/internal/authz"
	"isp-system/internal/dto"
	"isp-system/internal/entities"
	"isp-system/internal/repositories"
	"isp-system/pkg/constants"
	"isp-system/pkg/types"
	"isp-system/pkg/utils"
)

type OperatorService struct {
	*BaseService
	repo repositories.OperatorRepositoryInterface
}

func NewOperatorService(base *BaseService, repo repositories.OperatorRepositoryInterface) *OperatorService {
	return &OperatorService{BaseService: base, repo: repo}
}

func (s *OperatorService) GetOperators(ctx context.Context, filter types.Filter) ([]entities.Operator, uint64, error) {
	_, scope, err := s.scope(ctx, authz.OperatorsView, repositories.OperatorScopeColumns)
	if err != nil {
		return nil, 0, err
	}
	return s.repo.GetOperators(ctx, filter, scope)
}

func (s *OperatorService) GetStats(ctx context.Context, filter types.Filter) (types.StatusStats, error) {
	_, scope, err := s.scope(ctx, authz.OperatorsView, repositories.OperatorScopeColumns)
	if err != nil {
		return types.StatusStats{}, err
	}
	return s.repo.GetStats(ctx, filter, scope)
}

func (s *OperatorService) FindByID(ctx context.Context, id uint64) (*entities.Operator, error) {
	op, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if _, _, err := s.authorize(ctx, authz.OperatorsView, op); err != nil {
		return nil, err
	}
	return op, nil
}

func (s *OperatorService) Create(ctx context.Context, payload dto.CreateOperatorDTO) (*entities.Operator, error) {
	actor, _, err := s.authorize(ctx, authz.OperatorsCreate, nil)
	if err != nil {
		return nil, err
	}

	op := &entities.Operator{
		Name:    payload.Name,
		Code:    payload.Code,
		Email:   payload.Email,
		Phone:   payload.Phone,
		Address: payload.Address,
		Status:  payload.Status,
	}
	if op.Status == "" {
		op.Status = constants.StatusActive
	}

	err = s.inTx(ctx, actor, func(tx pgx.Tx, j *Journal) error {
		if err := s.repo.Create(ctx, tx, op); err != nil {
			return err
		}
		return j.Record(ctx, Change{EntityType: constants.EntityOperator, EntityID: op.ID, OperatorID: &op.ID, Action: constants.ActionCreated, New: op})
	})
	if err != nil {
		return nil, err
	}
	return op, nil
}

func (s *OperatorService) Update(ctx context.Context, id uint64, payload dto.UpdateOperatorDTO, fields utils.Fields) (*entities.Operator, error) {
	op, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	actor, _, err := s.authorize(ctx, authz.OperatorsUpdate, op)
	if err != nil {
		return nil, err
	}
	old := *op

	if payload.Name != nil {
		op.Name = *payload.Name
	}
	if payload.Code != nil {
		op.Code = *payload.Code
	}
	if fields.Has("email") {
		op.Email = payload.Email.Ptr()
	}
	if fields.Has("phone") {
		op.Phone = payload.Phone.Ptr()
	}
	if fields.Has("address") {
		op.Address = payload.Address.Ptr()
	}
	if payload.Status != nil {
		op.Status = *payload.Status
	}

	err = s.inTx(ctx, actor, func(tx pgx.Tx, j *Journal) error {
		if err := s.repo.Update(ctx, tx, op); err != nil {
			return err
		}
		return j.Record(ctx, Change{EntityType: constants.EntityOperator, EntityID: op.ID, OperatorID: &op.ID, Action: constants.ActionUpdated, Old: old, New: op})
	})
	if err != nil {
		return nil, err
	}
	return op, nil
}

func (s *OperatorService) Delete(ctx context.Context, id uint64) error {
	op, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return err
	}
	actor, _, err := s.authorize(ctx, authz.OperatorsDelete, op)
	if err != nil {
		return err
	}
	return s.inTx(ctx, actor, func(tx pgx.Tx, j *Journal) error {
		if err := s.repo.Delete(ctx, tx, id); err != nil {
			return err
		}
		return j.Record(ctx, Change{EntityType: constants.EntityOperator, EntityID: id, OperatorID: &op.ID, Action: constants.ActionDeleted, Old: op})
	})
}
