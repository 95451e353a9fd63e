package services

import (
	"context"
	"errors"

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

type SubscriptionService struct {
	*BaseService
	repo     repositories.SubscriptionRepositoryInterface
	planRepo repositories.PlanRepositoryInterface
	userRepo repositories.UserRepositoryInterface
}

func NewSubscriptionService(
	base *BaseService,
	repo repositories.SubscriptionRepositoryInterface,
	planRepo repositories.PlanRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
) *SubscriptionService {
	return &SubscriptionService{BaseService: base, repo: repo, planRepo: planRepo, userRepo: userRepo}
}

func (s *SubscriptionService) GetSubscriptions(ctx context.Context, filter types.Filter) ([]entities.Subscription, uint64, error) {
	_, scope, err := s.scope(ctx, authz.SubscriptionsView, repositories.SubscriptionScopeColumns)
	if err != nil {
		return nil, 0, err
	}
	return s.repo.GetSubscriptions(ctx, filter, scope)
}

func (s *SubscriptionService) GetStats(ctx context.Context, filter types.Filter) (types.StatusStats, error) {
	_, scope, err := s.scope(ctx, authz.SubscriptionsView, repositories.SubscriptionScopeColumns)
	if err != nil {
		return types.StatusStats{}, err
	}
	return s.repo.GetStats(ctx, filter, scope)
}

func (s *SubscriptionService) FindByID(ctx context.Context, id uint64) (*entities.Subscription, error) {
	sub, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if _, _, err := s.authorize(ctx, authz.SubscriptionsView, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// activePlan - тариф должен быть активным и принадлежать оператору подписки.
func (s *SubscriptionService) activePlan(ctx context.Context, q repositories.Querier, planID, operatorID uint64) (*entities.Plan, error) {
	plan, err := s.planRepo.FindByID(ctx, q, planID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewInvalidInputError("тариф %d не найден", planID)
		}
		return nil, err
	}
	if plan.OperatorID != operatorID {
		return nil, apperrors.NewInvalidInputError("тариф принадлежит другому оператору")
	}
	if plan.Status != constants.StatusActive {
		return nil, apperrors.NewInvalidInputError("тариф %q не активен", plan.Name)
	}
	return plan, nil
}

func (s *SubscriptionService) Create(ctx context.Context, payload dto.CreateSubscriptionDTO) (*entities.Subscription, error) {
	actor, _, err := s.authorize(ctx, authz.SubscriptionsCreate, nil)
	if err != nil {
		return nil, err
	}

	customer, err := s.userRepo.FindByID(ctx, nil, payload.CustomerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewInvalidInputError("клиент %d не найден", payload.CustomerID)
		}
		return nil, err
	}
	if customer.RoleCode != constants.RoleCustomer || customer.OperatorID == nil {
		return nil, apperrors.NewInvalidInputError("пользователь %d не является клиентом оператора", customer.ID)
	}
	if _, _, err := s.authorize(ctx, authz.SubscriptionsCreate, customer); err != nil {
		return nil, err
	}

	plan, err := s.activePlan(ctx, nil, payload.PlanID, *customer.OperatorID)
	if err != nil {
		return nil, err
	}
	start, err := parseDate(payload.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseOptionalDate(payload.EndDate)
	if err != nil {
		return nil, err
	}
	if end != nil && end.Before(start) {
		return nil, apperrors.NewInvalidInputError("дата окончания раньше даты начала")
	}

	sub := &entities.Subscription{
		OperatorID:   *customer.OperatorID,
		CustomerID:   customer.ID,
		PlanID:       plan.ID,
		Status:       payload.Status,
		StartDate:    start,
		EndDate:      end,
		AutoRenew:    utils.SafeDeref(payload.AutoRenew),
		Address:      payload.Address,
		CustomerName: customer.Fio,
		PlanName:     plan.Name,
	}
	if sub.Status == "" {
		sub.Status = constants.SubscriptionPending
	}

	err = s.inTx(ctx, actor, func(tx pgx.Tx, j *Journal) error {
		if err := s.repo.Create(ctx, tx, sub); err != nil {
			return err
		}
		return j.Record(ctx, Change{
			EntityType: constants.EntitySubscription, EntityID: sub.ID, OperatorID: &sub.OperatorID,
			Action: constants.ActionCreated, New: sub, Recipients: []uint64{sub.CustomerID},
		})
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *SubscriptionService) Update(ctx context.Context, id uint64, payload dto.UpdateSubscriptionDTO, fields utils.Fields) (*entities.Subscription, error) {
	sub, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	actor, _, err := s.authorize(ctx, authz.SubscriptionsUpdate, sub)
	if err != nil {
		return nil, err
	}
	if err := guardFinal(constants.EntitySubscription, sub.Status); err != nil {
		return nil, err
	}
	old := *sub

	if payload.PlanID != nil && *payload.PlanID != sub.PlanID {
		plan, err := s.activePlan(ctx, nil, *payload.PlanID, sub.OperatorID)
		if err != nil {
			return nil, err
		}
		sub.PlanID, sub.PlanName = plan.ID, plan.Name
	}
	if payload.Status != nil {
		sub.Status = *payload.Status
	}
	if fields.Has("end_date") {
		if sub.EndDate, err = parseOptionalDate(payload.EndDate.Ptr()); err != nil {
			return nil, err
		}
		if sub.EndDate != nil && sub.EndDate.Before(sub.StartDate) {
			return nil, apperrors.NewInvalidInputError("дата окончания раньше даты начала")
		}
	}
	if payload.AutoRenew != nil {
		sub.AutoRenew = *payload.AutoRenew
	}
	if payload.Address != nil {
		sub.Address = *payload.Address
	}

	action := constants.ActionUpdated
	if sub.Status != old.Status {
		action = constants.ActionStatusChanged
	}

	err = s.inTx(ctx, actor, func(tx pgx.Tx, j *Journal) error {
		if err := s.repo.Update(ctx, tx, sub); err != nil {
			return err
		}
		return j.Record(ctx, Change{
			EntityType: constants.EntitySubscription, EntityID: sub.ID, OperatorID: &sub.OperatorID,
			Action: action, Old: old, New: sub, Recipients: []uint64{sub.CustomerID},
		})
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *SubscriptionService) Delete(ctx context.Context, id uint64) error {
	sub, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return err
	}
	actor, _, err := s.authorize(ctx, authz.SubscriptionsDelete, sub)
	if err != nil {
		return err
	}
	return s.inTx(ctx, actor, func(tx pgx.Tx, j *Journal) error {
		if err := s.repo.Delete(ctx, tx, id); err != nil {
			return err
		}
		return j.Record(ctx, Change{EntityType: constants.EntitySubscription, EntityID: id, OperatorID: &sub.OperatorID, Action: constants.ActionDeleted, Old: sub})
	})
}
