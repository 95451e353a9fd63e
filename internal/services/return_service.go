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
)

type ReturnService struct {
	*BaseService
	repo       repositories.ReturnRepositoryInterface
	orderRepo  repositories.OrderRepositoryInterface
	vendorRepo repositories.VendorRepositoryInterface
}

func NewReturnService(
	base *BaseService,
	repo repositories.ReturnRepositoryInterface,
	orderRepo repositories.OrderRepositoryInterface,
	vendorRepo repositories.VendorRepositoryInterface,
) *ReturnService {
	return &ReturnService{BaseService: base, repo: repo, orderRepo: orderRepo, vendorRepo: vendorRepo}
}

func (s *ReturnService) GetReturns(ctx context.Context, filter types.Filter) ([]entities.Return, uint64, error) {
	_, scope, err := s.scope(ctx, authz.ReturnsView, repositories.ReturnScopeColumns)
	if err != nil {
		return nil, 0, err
	}
	return s.repo.GetReturns(ctx, filter, scope)
}

func (s *ReturnService) GetStats(ctx context.Context, filter types.Filter) (types.StatusStats, error) {
	_, scope, err := s.scope(ctx, authz.ReturnsView, repositories.ReturnScopeColumns)
	if err != nil {
		return types.StatusStats{}, err
	}
	return s.repo.GetStats(ctx, filter, scope)
}

func (s *ReturnService) FindByID(ctx context.Context, id uint64) (*entities.Return, error) {
	rt, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if _, _, err := s.authorize(ctx, authz.ReturnsView, rt); err != nil {
		return nil, err
	}
	return rt, nil
}

// Create - возврат возможен только по доставленной закупке; поставщик берётся из неё.
func (s *ReturnService) Create(ctx context.Context, payload dto.CreateReturnDTO) (*entities.Return, error) {
	order, err := s.orderRepo.FindByID(ctx, nil, payload.OrderID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewInvalidInputError("закупка %d не найдена", payload.OrderID)
		}
		return nil, err
	}
	actor, _, err := s.authorize(ctx, authz.ReturnsCreate, order)
	if err != nil {
		return nil, err
	}
	if order.Status != constants.OrderDelivered {
		return nil, apperrors.NewInvalidInputError("возврат возможен только по доставленной закупке")
	}
	if payload.RefundAmount.GreaterThan(order.Total) {
		return nil, apperrors.NewInvalidInputError("сумма возврата больше суммы закупки")
	}

	rt := &entities.Return{
		OperatorID:   order.OperatorID,
		OrderID:      order.ID,
		VendorID:     order.VendorID,
		Reason:       payload.Reason,
		Quantity:     payload.Quantity,
		RefundAmount: payload.RefundAmount,
		Status:       constants.ReturnRequested,
		OrderNumber:  order.OrderNumber,
	}

	err = s.inTx(ctx, actor, func(tx pgx.Tx, j *Journal) error {
		if err := s.repo.Create(ctx, tx, rt); err != nil {
			return err
		}
		return j.Record(ctx, Change{
			EntityType: constants.EntityReturn, EntityID: rt.ID, OperatorID: &rt.OperatorID,
			Action: constants.ActionCreated, New: rt, Recipients: vendorRecipients(ctx, s.BaseService, s.vendorRepo, rt.VendorID),
		})
	})
	if err != nil {
		return nil, err
	}
	return rt, nil
}

func (s *ReturnService) Update(ctx context.Context, id uint64, payload dto.UpdateReturnDTO) (*entities.Return, error) {
	rt, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	actor, _, err := s.authorize(ctx, authz.ReturnsUpdate, rt)
	if err != nil {
		return nil, err
	}
	if err := guardFinal(constants.EntityReturn, rt.Status); err != nil {
		return nil, err
	}
	old := *rt

	if payload.Reason != nil {
		rt.Reason = *payload.Reason
	}
	if payload.Quantity != nil {
		rt.Quantity = *payload.Quantity
	}
	if payload.RefundAmount.Valid && !payload.RefundAmount.Decimal.Equal(rt.RefundAmount) {
		order, err := s.orderRepo.FindByID(ctx, nil, rt.OrderID)
		if err != nil {
			return nil, err
		}
		if payload.RefundAmount.Decimal.GreaterThan(order.Total) {
			return nil, apperrors.NewInvalidInputError("сумма возврата больше суммы закупки")
		}
		rt.RefundAmount = payload.RefundAmount.Decimal
	}
	if payload.Status != nil {
		rt.Status = *payload.Status
	}

	action := constants.ActionUpdated
	if rt.Status != old.Status {
		action = constants.ActionStatusChanged
	}

	err = s.inTx(ctx, actor, func(tx pgx.Tx, j *Journal) error {
		if err := s.repo.Update(ctx, tx, rt); err != nil {
			return err
		}
		return j.Record(ctx, Change{
			EntityType: constants.EntityReturn, EntityID: rt.ID, OperatorID: &rt.OperatorID,
			Action: action, Old: old, New: rt, Recipients: vendorRecipients(ctx, s.BaseService, s.vendorRepo, rt.VendorID),
		})
	})
	if err != nil {
		return nil, err
	}
	return rt, nil
}

func (s *ReturnService) Delete(ctx context.Context, id uint64) error {
	rt, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return err
	}
	actor, _, err := s.authorize(ctx, authz.ReturnsDelete, rt)
	if err != nil {
		return err
	}
	return s.inTx(ctx, actor, func(tx pgx.Tx, j *Journal) error {
		if err := s.repo.Delete(ctx, tx, id); err != nil {
			return err
		}
		return j.Record(ctx, Change{EntityType: constants.EntityReturn, EntityID: id, OperatorID: &rt.OperatorID, Action: constants.ActionDeleted, Old: rt})
	})
}
