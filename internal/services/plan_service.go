package services

import (
	"context"
	"net/http"

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

type PlanService struct {
	*BaseService
	repo repositories.PlanRepositoryInterface
}

func NewPlanService(base *BaseService, repo repositories.PlanRepositoryInterface) *PlanService {
	return &PlanService{BaseService: base, repo: repo}
}

func (s *PlanService) GetPlans(ctx context.Context, filter types.Filter) ([]entities.Plan, uint64, error) {
	_, scope, err := s.scope(ctx, authz.PlansView, repositories.PlanScopeColumns)
	if err != nil {
		return nil, 0, err
	}
	return s.repo.GetPlans(ctx, filter, scope)
}

func (s *PlanService) GetStats(ctx context.Context, filter types.Filter) (types.StatusStats, error) {
	_, scope, err := s.scope(ctx, authz.PlansView, repositories.PlanScopeColumns)
	if err != nil {
		return types.StatusStats{}, err
	}
	return s.repo.GetStats(ctx, filter, scope)
}

func (s *PlanService) FindByID(ctx context.Context, id uint64) (*entities.Plan, error) {
	plan, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if _, _, err := s.authorize(ctx, authz.PlansView, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *PlanService) Create(ctx context.Context, payload dto.CreatePlanDTO) (*entities.Plan, error) {
	actor, perms, err := s.authorize(ctx, authz.PlansCreate, nil)
	if err != nil {
		return nil, err
	}
	operatorID, err := resolveOperator(actor, perms, payload.OperatorID)
	if err != nil {
		return nil, err
	}

	plan := &entities.Plan{
		OperatorID:   operatorID,
		Name:         payload.Name,
		Code:         payload.Code,
		SpeedMbps:    payload.SpeedMbps,
		DataLimitGB:  payload.DataLimitGB,
		Price:        payload.Price,
		BillingCycle: payload.BillingCycle,
		Status:       payload.Status,
	}
	if plan.Status == "" {
		plan.Status = constants.StatusActive
	}

	err = s.inTx(ctx, actor, func(tx pgx.Tx, j *Journal) error {
		if err := s.repo.Create(ctx, tx, plan); err != nil {
			return err
		}
		return j.Record(ctx, Change{EntityType: constants.EntityPlan, EntityID: plan.ID, OperatorID: &plan.OperatorID, Action: constants.ActionCreated, New: plan})
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *PlanService) Update(ctx context.Context, id uint64, payload dto.UpdatePlanDTO, fields utils.Fields) (*entities.Plan, error) {
	plan, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	actor, _, err := s.authorize(ctx, authz.PlansUpdate, plan)
	if err != nil {
		return nil, err
	}
	old := *plan

	if payload.Name != nil {
		plan.Name = *payload.Name
	}
	if payload.Code != nil {
		plan.Code = *payload.Code
	}
	if payload.SpeedMbps != nil {
		plan.SpeedMbps = *payload.SpeedMbps
	}
	if fields.Has("data_limit_gb") {
		plan.DataLimitGB = payload.DataLimitGB.Ptr()
	}
	if payload.Price.Valid {
		plan.Price = payload.Price.Decimal
	}
	if payload.BillingCycle != nil {
		plan.BillingCycle = *payload.BillingCycle
	}
	if payload.Status != nil {
		plan.Status = *payload.Status
	}

	err = s.inTx(ctx, actor, func(tx pgx.Tx, j *Journal) error {
		if err := s.repo.Update(ctx, tx, plan); err != nil {
			return err
		}
		return j.Record(ctx, Change{EntityType: constants.EntityPlan, EntityID: plan.ID, OperatorID: &plan.OperatorID, Action: constants.ActionUpdated, Old: old, New: plan})
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// Delete запрещён, пока на тарифе есть активные подписки.
func (s *PlanService) Delete(ctx context.Context, id uint64) error {
	plan, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return err
	}
	actor, _, err := s.authorize(ctx, authz.PlansDelete, plan)
	if err != nil {
		return err
	}
	return s.inTx(ctx, actor, func(tx pgx.Tx, j *Journal) error {
		active, err := s.repo.CountActiveSubscriptions(ctx, tx, id)
		if err != nil {
			return err
		}
		if active > 0 {
			return apperrors.NewHttpError(http.StatusConflict, "На тарифе есть активные подписки", apperrors.ErrConflict, map[string]uint64{"active_subscriptions": active})
		}
		if err := s.repo.Delete(ctx, tx, id); err != nil {
			return err
		}
		return j.Record(ctx, Change{EntityType: constants.EntityPlan, EntityID: id, OperatorID: &plan.OperatorID, Action: constants.ActionDeleted, Old: plan})
	})
}
