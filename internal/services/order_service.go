package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"isp-system/internal/authz"
	"isp-system/internal/dto"
	"isp-system/internal/entities"
	"isp-system/internal/repositories"
	"isp-system/pkg/constants"
	apperrors "isp-system/pkg/errors"
	"isp-system/pkg/types"
	"isp-system/pkg/utils"
)

// Статусы, которые поставщик выставляет сам.
var vendorOrderStatuses = []string{constants.OrderConfirmed, constants.OrderProcessing, constants.OrderCancelled}

// Поставщик отменяет закупку только до отгрузки.
var vendorCancellable = []string{constants.OrderPending, constants.OrderConfirmed, constants.OrderProcessing}

type OrderService struct {
	*BaseService
	repo       repositories.OrderRepositoryInterface
	vendorRepo repositories.VendorRepositoryInterface
}

func NewOrderService(base *BaseService, repo repositories.OrderRepositoryInterface, vendorRepo repositories.VendorRepositoryInterface) *OrderService {
	return &OrderService{BaseService: base, repo: repo, vendorRepo: vendorRepo}
}

// NewOrderNumber - PO-ГГГГММДД-xxxxxx.
func NewOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("%s-%s-%s", constants.OrderNumberPrefix, nowFunc().Format("20060102"), suffix)
}

func (s *OrderService) GetOrders(ctx context.Context, filter types.Filter) ([]entities.Order, uint64, error) {
	_, scope, err := s.scope(ctx, authz.OrdersView, repositories.OrderScopeColumns)
	if err != nil {
		return nil, 0, err
	}
	return s.repo.GetOrders(ctx, filter, scope)
}

func (s *OrderService) GetStats(ctx context.Context, filter types.Filter) (types.StatusStats, error) {
	_, scope, err := s.scope(ctx, authz.OrdersView, repositories.OrderScopeColumns)
	if err != nil {
		return types.StatusStats{}, err
	}
	return s.repo.GetStats(ctx, filter, scope)
}

func (s *OrderService) FindByID(ctx context.Context, id uint64) (*entities.Order, error) {
	order, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if _, _, err := s.authorize(ctx, authz.OrdersView, order); err != nil {
		return nil, err
	}
	return order, nil
}

func orderItems(payload []dto.OrderItemDTO) []entities.OrderItem {
	items := make([]entities.OrderItem, 0, len(payload))
	for _, it := range payload {
		items = append(items, entities.OrderItem{
			InventoryItemID: it.InventoryItemID,
			Name:            it.Name,
			Quantity:        it.Quantity,
			UnitPrice:       it.UnitPrice,
		})
	}
	return items
}

func (s *OrderService) Create(ctx context.Context, payload dto.CreateOrderDTO) (*entities.Order, error) {
	vendor, err := s.vendorRepo.FindByID(ctx, nil, payload.VendorID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewInvalidInputError("поставщик %d не найден", payload.VendorID)
		}
		return nil, err
	}
	actor, _, err := s.authorize(ctx, authz.OrdersCreate, vendor)
	if err != nil {
		return nil, err
	}
	if vendor.Status != constants.StatusActive {
		return nil, apperrors.NewInvalidInputError("поставщик %q не активен", vendor.Name)
	}

	order := &entities.Order{
		OperatorID:  vendor.OperatorID,
		VendorID:    vendor.ID,
		OrderNumber: NewOrderNumber(),
		Status:      constants.OrderPending,
		Notes:       payload.Notes,
		CreatedBy:   actor.ID,
		VendorName:  vendor.Name,
		Items:       orderItems(payload.Items),
	}
	order.Total = entities.ItemsTotal(order.Items)

	err = s.inTx(ctx, actor, func(tx pgx.Tx, j *Journal) error {
		if err := s.repo.Create(ctx, tx, order); err != nil {
			return err
		}
		return j.Record(ctx, Change{
			EntityType: constants.EntityOrder, EntityID: order.ID, OperatorID: &order.OperatorID,
			Action: constants.ActionCreated, New: order, Recipients: recipients(vendor.UserID),
		})
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderService) Update(ctx context.Context, id uint64, payload dto.UpdateOrderDTO, fields utils.Fields) (*entities.Order, error) {
	order, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	actor, _, err := s.authorize(ctx, authz.OrdersUpdate, order)
	if err != nil {
		return nil, err
	}
	if err := guardFinal(constants.EntityOrder, order.Status); err != nil {
		return nil, err
	}
	isVendor := actor.RoleCode == constants.RoleVendor
	old := *order

	if payload.Status != nil && *payload.Status != order.Status {
		if isVendor && !slices.Contains(vendorOrderStatuses, *payload.Status) {
			return nil, apperrors.NewInvalidInputError("поставщик не может перевести закупку в статус %s", *payload.Status)
		}
		if isVendor && *payload.Status == constants.OrderCancelled && !slices.Contains(vendorCancellable, old.Status) {
			return nil, apperrors.NewInvalidInputError("закупку в статусе %s поставщик отменить не может", old.Status)
		}
		order.Status = *payload.Status
	}
	if fields.Has("notes") {
		order.Notes = payload.Notes.Ptr()
	}
	replaceItems := len(payload.Items) > 0
	if replaceItems {
		if isVendor || old.Status != constants.OrderPending {
			return nil, apperrors.NewInvalidInputError("позиции можно менять только у закупки в статусе pending")
		}
		order.Items = orderItems(payload.Items)
		order.Total = entities.ItemsTotal(order.Items)
	}

	action := constants.ActionUpdated
	if order.Status != old.Status {
		action = constants.ActionStatusChanged
	}

	err = s.inTx(ctx, actor, func(tx pgx.Tx, j *Journal) error {
		if err := s.repo.Update(ctx, tx, order); err != nil {
			return err
		}
		if replaceItems {
			if err := s.repo.ReplaceItems(ctx, tx, order.ID, order.Items); err != nil {
				return err
			}
		}
		return j.Record(ctx, Change{
			EntityType: constants.EntityOrder, EntityID: order.ID, OperatorID: &order.OperatorID,
			Action: action, Old: old, New: order, Recipients: s.vendorRecipients(ctx, order.VendorID),
		})
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderService) Delete(ctx context.Context, id uint64) error {
	order, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return err
	}
	actor, _, err := s.authorize(ctx, authz.OrdersDelete, order)
	if err != nil {
		return err
	}
	return s.inTx(ctx, actor, func(tx pgx.Tx, j *Journal) error {
		if err := s.repo.Delete(ctx, tx, id); err != nil {
			return err
		}
		return j.Record(ctx, Change{EntityType: constants.EntityOrder, EntityID: id, OperatorID: &order.OperatorID, Action: constants.ActionDeleted, Old: order})
	})
}

func (s *OrderService) vendorRecipients(ctx context.Context, vendorID uint64) []uint64 {
	return vendorRecipients(ctx, s.BaseService, s.vendorRepo, vendorID)
}

// vendorRecipients - учётка поставщика, если она есть. Ошибка поиска не должна ронять изменение.
func vendorRecipients(ctx context.Context, base *BaseService, repo repositories.VendorRepositoryInterface, vendorID uint64) []uint64 {
	vendor, err := repo.FindByID(ctx, nil, vendorID)
	if err != nil {
		base.logger.Warn("Не удалось найти поставщика для уведомления", zap.Uint64("vendorID", vendorID), zap.Error(err))
		return nil
	}
	return recipients(vendor.UserID)
}
