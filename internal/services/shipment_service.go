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

type ShipmentService struct {
	*BaseService
	repo       repositories.ShipmentRepositoryInterface
	orderRepo  repositories.OrderRepositoryInterface
	vendorRepo repositories.VendorRepositoryInterface
}

func NewShipmentService(
	base *BaseService,
	repo repositories.ShipmentRepositoryInterface,
	orderRepo repositories.OrderRepositoryInterface,
	vendorRepo repositories.VendorRepositoryInterface,
) *ShipmentService {
	return &ShipmentService{BaseService: base, repo: repo, orderRepo: orderRepo, vendorRepo: vendorRepo}
}

func (s *ShipmentService) GetShipments(ctx context.Context, filter types.Filter) ([]entities.Shipment, uint64, error) {
	_, scope, err := s.scope(ctx, authz.ShipmentsView, repositories.ShipmentScopeColumns)
	if err != nil {
		return nil, 0, err
	}
	return s.repo.GetShipments(ctx, filter, scope)
}

func (s *ShipmentService) GetStats(ctx context.Context, filter types.Filter) (types.StatusStats, error) {
	_, scope, err := s.scope(ctx, authz.ShipmentsView, repositories.ShipmentScopeColumns)
	if err != nil {
		return types.StatusStats{}, err
	}
	return s.repo.GetStats(ctx, filter, scope)
}

func (s *ShipmentService) FindByID(ctx context.Context, id uint64) (*entities.Shipment, error) {
	shipment, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if _, _, err := s.authorize(ctx, authz.ShipmentsView, shipment); err != nil {
		return nil, err
	}
	return shipment, nil
}

func (s *ShipmentService) Create(ctx context.Context, payload dto.CreateShipmentDTO) (*entities.Shipment, error) {
	order, err := s.orderRepo.FindByID(ctx, nil, payload.OrderID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewInvalidInputError("закупка %d не найдена", payload.OrderID)
		}
		return nil, err
	}
	actor, _, err := s.authorize(ctx, authz.ShipmentsCreate, order)
	if err != nil {
		return nil, err
	}
	if order.Status == constants.OrderPending || constants.IsFinalStatus(constants.EntityOrder, order.Status) {
		return nil, apperrors.NewInvalidInputError("отгрузка возможна только по подтверждённой закупке")
	}
	estimated, err := parseOptionalDate(payload.EstimatedDelivery)
	if err != nil {
		return nil, err
	}

	shipment := &entities.Shipment{
		OperatorID:        order.OperatorID,
		OrderID:           order.ID,
		VendorID:          order.VendorID,
		Carrier:           payload.Carrier,
		TrackingNumber:    payload.TrackingNumber,
		Status:            constants.ShipmentPending,
		EstimatedDelivery: estimated,
		OrderNumber:       order.OrderNumber,
	}

	err = s.inTx(ctx, actor, func(tx pgx.Tx, j *Journal) error {
		if err := s.repo.Create(ctx, tx, shipment); err != nil {
			return err
		}
		return j.Record(ctx, Change{
			EntityType: constants.EntityShipment, EntityID: shipment.ID, OperatorID: &shipment.OperatorID,
			Action: constants.ActionCreated, New: shipment, Recipients: vendorRecipients(ctx, s.BaseService, s.vendorRepo, shipment.VendorID),
		})
	})
	if err != nil {
		return nil, err
	}
	return shipment, nil
}

// orderStatusFor - статус закупки, который следует из статуса доставки.
func orderStatusFor(shipmentStatus string) string {
	switch shipmentStatus {
	case constants.ShipmentInTransit:
		return constants.OrderShipped
	case constants.ShipmentDelivered:
		return constants.OrderDelivered
	}
	return ""
}

// Update: in_transit фиксирует отправку, delivered - доставку; закупка переводится в той же транзакции.
func (s *ShipmentService) Update(ctx context.Context, id uint64, payload dto.UpdateShipmentDTO, fields utils.Fields) (*entities.Shipment, error) {
	shipment, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	actor, _, err := s.authorize(ctx, authz.ShipmentsUpdate, shipment)
	if err != nil {
		return nil, err
	}
	if err := guardFinal(constants.EntityShipment, shipment.Status); err != nil {
		return nil, err
	}
	old := *shipment

	if payload.Carrier != nil {
		shipment.Carrier = *payload.Carrier
	}
	if payload.TrackingNumber != nil {
		shipment.TrackingNumber = *payload.TrackingNumber
	}
	if fields.Has("estimated_delivery") {
		if shipment.EstimatedDelivery, err = parseOptionalDate(payload.EstimatedDelivery.Ptr()); err != nil {
			return nil, err
		}
	}
	if payload.Status != nil && *payload.Status != shipment.Status {
		now := nowFunc()
		shipment.Status = *payload.Status
		switch shipment.Status {
		case constants.ShipmentInTransit:
			shipment.ShippedAt = &now
		case constants.ShipmentDelivered:
			if shipment.ShippedAt == nil {
				shipment.ShippedAt = &now
			}
			shipment.DeliveredAt = &now
		}
	}

	action := constants.ActionUpdated
	if shipment.Status != old.Status {
		action = constants.ActionStatusChanged
	}
	to := vendorRecipients(ctx, s.BaseService, s.vendorRepo, shipment.VendorID)

	err = s.inTx(ctx, actor, func(tx pgx.Tx, j *Journal) error {
		if err := s.repo.Update(ctx, tx, shipment); err != nil {
			return err
		}
		if err := j.Record(ctx, Change{
			EntityType: constants.EntityShipment, EntityID: shipment.ID, OperatorID: &shipment.OperatorID,
			Action: action, Old: old, New: shipment, Recipients: to,
		}); err != nil {
			return err
		}

		next := orderStatusFor(shipment.Status)
		if next == "" || shipment.Status == old.Status {
			return nil
		}
		return s.moveOrder(ctx, tx, j, shipment.OrderID, next, to)
	})
	if err != nil {
		return nil, err
	}
	return shipment, nil
}

func (s *ShipmentService) moveOrder(ctx context.Context, tx pgx.Tx, j *Journal, orderID uint64, status string, to []uint64) error {
	order, err := s.orderRepo.FindByID(ctx, tx, orderID)
	if err != nil {
		return err
	}
	if order.Status == status || constants.IsFinalStatus(constants.EntityOrder, order.Status) {
		return nil
	}
	old := *order
	order.Status = status
	if err := s.orderRepo.Update(ctx, tx, order); err != nil {
		return err
	}
	return j.Record(ctx, Change{
		EntityType: constants.EntityOrder, EntityID: order.ID, OperatorID: &order.OperatorID,
		Action: constants.ActionStatusChanged, Old: old, New: order, Recipients: to,
	})
}

func (s *ShipmentService) Delete(ctx context.Context, id uint64) error {
	shipment, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return err
	}
	actor, _, err := s.authorize(ctx, authz.ShipmentsDelete, shipment)
	if err != nil {
		return err
	}
	return s.inTx(ctx, actor, func(tx pgx.Tx, j *Journal) error {
		if err := s.repo.Delete(ctx, tx, id); err != nil {
			return err
		}
		return j.Record(ctx, Change{EntityType: constants.EntityShipment, EntityID: id, OperatorID: &shipment.OperatorID, Action: constants.ActionDeleted, Old: shipment})
	})
}
