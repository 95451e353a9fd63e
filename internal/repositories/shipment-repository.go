package repositories

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"isp-system/internal/authz"
	"isp-system/internal/entities"
	"isp-system/internal/infrastructure/bd"
	"isp-system/pkg/types"
)

const shipmentTable = "shipments"

var ShipmentScopeColumns = authz.Columns{Operator: "sh.operator_id", Vendor: "sh.vendor_id"}

var shipmentSource = listSource{
	From:  "shipments sh",
	Joins: []string{"JOIN orders o ON o.id = sh.order_id"},
	Columns: []string{
		"sh.id", "sh.operator_id", "sh.order_id", "sh.vendor_id", "sh.carrier", "sh.tracking_number", "sh.status",
		"sh.shipped_at", "sh.estimated_delivery", "sh.delivered_at", "sh.created_at", "sh.updated_at", "o.order_number",
	},
	Spec: bd.ListSpec{
		Allowed: map[string]string{
			"id":                 "sh.id",
			"status":             "sh.status",
			"order_id":           "sh.order_id",
			"vendor_id":          "sh.vendor_id",
			"operator_id":        "sh.operator_id",
			"carrier":            "sh.carrier",
			"estimated_delivery": "sh.estimated_delivery",
			"created_at":         "sh.created_at",
		},
		Search:       []string{"sh.tracking_number", "sh.carrier", "o.order_number"},
		DefaultOrder: "sh.id DESC",
	},
	CountColumn:  "sh.id",
	StatusColumn: "sh.status",
}

type ShipmentRepositoryInterface interface {
	GetShipments(ctx context.Context, filter types.Filter, scope sq.Sqlizer) ([]entities.Shipment, uint64, error)
	GetStats(ctx context.Context, filter types.Filter, scope sq.Sqlizer) (types.StatusStats, error)
	FindByID(ctx context.Context, q Querier, id uint64) (*entities.Shipment, error)
	Create(ctx context.Context, tx pgx.Tx, s *entities.Shipment) error
	Update(ctx context.Context, tx pgx.Tx, s *entities.Shipment) error
	Delete(ctx context.Context, tx pgx.Tx, id uint64) error
}

type ShipmentRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewShipmentRepository(storage *pgxpool.Pool, logger *zap.Logger) ShipmentRepositoryInterface {
	return &ShipmentRepository{storage: storage, logger: logger}
}

func scanShipment(row pgx.Row) (*entities.Shipment, error) {
	var s entities.Shipment
	err := row.Scan(&s.ID, &s.OperatorID, &s.OrderID, &s.VendorID, &s.Carrier, &s.TrackingNumber, &s.Status,
		&s.ShippedAt, &s.EstimatedDelivery, &s.DeliveredAt, &s.CreatedAt, &s.UpdatedAt, &s.OrderNumber)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *ShipmentRepository) GetShipments(ctx context.Context, filter types.Filter, scope sq.Sqlizer) ([]entities.Shipment, uint64, error) {
	return fetchList(ctx, r.storage, shipmentSource, filter, scope, scanShipment)
}

func (r *ShipmentRepository) GetStats(ctx context.Context, filter types.Filter, scope sq.Sqlizer) (types.StatusStats, error) {
	return fetchStats(ctx, r.storage, shipmentSource, filter, scope)
}

func (r *ShipmentRepository) FindByID(ctx context.Context, q Querier, id uint64) (*entities.Shipment, error) {
	if q == nil {
		q = r.storage
	}
	return fetchOne(ctx, q, shipmentSource, sq.Eq{"sh.id": id}, scanShipment, "доставка")
}

func (r *ShipmentRepository) Create(ctx context.Context, tx pgx.Tx, s *entities.Shipment) error {
	query, args, err := psql.Insert(shipmentTable).
		Columns("operator_id", "order_id", "vendor_id", "carrier", "tracking_number", "status", "shipped_at", "estimated_delivery", "delivered_at").
		Values(s.OperatorID, s.OrderID, s.VendorID, s.Carrier, s.TrackingNumber, s.Status, s.ShippedAt, s.EstimatedDelivery, s.DeliveredAt).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return err
	}
	err = tx.QueryRow(ctx, query, args...).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	return mapPgError(err, "доставка")
}

func (r *ShipmentRepository) Update(ctx context.Context, tx pgx.Tx, s *entities.Shipment) error {
	query, args, err := psql.Update(shipmentTable).
		Set("carrier", s.Carrier).
		Set("tracking_number", s.TrackingNumber).
		Set("status", s.Status).
		Set("shipped_at", s.ShippedAt).
		Set("estimated_delivery", s.EstimatedDelivery).
		Set("delivered_at", s.DeliveredAt).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": s.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return err
	}
	err = tx.QueryRow(ctx, query, args...).Scan(&s.UpdatedAt)
	return mapPgError(err, "доставка")
}

func (r *ShipmentRepository) Delete(ctx context.Context, tx pgx.Tx, id uint64) error {
	return hardDelete(ctx, tx, shipmentTable, id)
}
