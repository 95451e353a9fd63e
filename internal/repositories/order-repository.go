package repositories

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"isp-system/internal/authz"
	"isp-system/internal/entities"
	"isp-system/internal/infrastructure/bd"
	"isp-system/pkg/types"
)

const (
	orderTable     = "orders"
	orderItemTable = "order_items"
)

var OrderScopeColumns = authz.Columns{Operator: "o.operator_id", Vendor: "o.vendor_id"}

var orderSource = listSource{
	From:  "orders o",
	Joins: []string{"JOIN vendors v ON v.id = o.vendor_id"},
	Columns: []string{
		"o.id", "o.operator_id", "o.vendor_id", "o.order_number", "o.status", "o.total", "o.notes", "o.created_by",
		"o.created_at", "o.updated_at", "v.name",
	},
	Spec: bd.ListSpec{
		Allowed: map[string]string{
			"id":           "o.id",
			"status":       "o.status",
			"vendor_id":    "o.vendor_id",
			"operator_id":  "o.operator_id",
			"order_number": "o.order_number",
			"total":        "o.total",
			"created_by":   "o.created_by",
			"created_at":   "o.created_at",
		},
		Search:       []string{"o.order_number", "o.notes", "v.name"},
		DefaultOrder: "o.id DESC",
	},
	CountColumn:  "o.id",
	StatusColumn: "o.status",
}

type OrderRepositoryInterface interface {
	GetOrders(ctx context.Context, filter types.Filter, scope sq.Sqlizer) ([]entities.Order, uint64, error)
	GetStats(ctx context.Context, filter types.Filter, scope sq.Sqlizer) (types.StatusStats, error)
	FindByID(ctx context.Context, q Querier, id uint64) (*entities.Order, error)
	Create(ctx context.Context, tx pgx.Tx, o *entities.Order) error
	Update(ctx context.Context, tx pgx.Tx, o *entities.Order) error
	Delete(ctx context.Context, tx pgx.Tx, id uint64) error

	GetItems(ctx context.Context, q Querier, orderID uint64) ([]entities.OrderItem, error)
	ReplaceItems(ctx context.Context, tx pgx.Tx, orderID uint64, items []entities.OrderItem) error
}

type OrderRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewOrderRepository(storage *pgxpool.Pool, logger *zap.Logger) OrderRepositoryInterface {
	return &OrderRepository{storage: storage, logger: logger}
}

func scanOrder(row pgx.Row) (*entities.Order, error) {
	var o entities.Order
	err := row.Scan(&o.ID, &o.OperatorID, &o.VendorID, &o.OrderNumber, &o.Status, &o.Total, &o.Notes, &o.CreatedBy,
		&o.CreatedAt, &o.UpdatedAt, &o.VendorName)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) GetOrders(ctx context.Context, filter types.Filter, scope sq.Sqlizer) ([]entities.Order, uint64, error) {
	return fetchList(ctx, r.storage, orderSource, filter, scope, scanOrder)
}

func (r *OrderRepository) GetStats(ctx context.Context, filter types.Filter, scope sq.Sqlizer) (types.StatusStats, error) {
	return fetchStats(ctx, r.storage, orderSource, filter, scope)
}

// FindByID возвращает закупку вместе с позициями.
func (r *OrderRepository) FindByID(ctx context.Context, q Querier, id uint64) (*entities.Order, error) {
	if q == nil {
		q = r.storage
	}
	o, err := fetchOne(ctx, q, orderSource, sq.Eq{"o.id": id}, scanOrder, "закупка")
	if err != nil {
		return nil, err
	}
	if o.Items, err = r.GetItems(ctx, q, id); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *OrderRepository) Create(ctx context.Context, tx pgx.Tx, o *entities.Order) error {
	query, args, err := psql.Insert(orderTable).
		Columns("operator_id", "vendor_id", "order_number", "status", "total", "notes", "created_by").
		Values(o.OperatorID, o.VendorID, o.OrderNumber, o.Status, o.Total, o.Notes, o.CreatedBy).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return err
	}
	if err = tx.QueryRow(ctx, query, args...).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return mapPgError(err, "закупка")
	}
	return r.ReplaceItems(ctx, tx, o.ID, o.Items)
}

func (r *OrderRepository) Update(ctx context.Context, tx pgx.Tx, o *entities.Order) error {
	query, args, err := psql.Update(orderTable).
		Set("vendor_id", o.VendorID).
		Set("status", o.Status).
		Set("total", o.Total).
		Set("notes", o.Notes).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": o.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return err
	}
	err = tx.QueryRow(ctx, query, args...).Scan(&o.UpdatedAt)
	return mapPgError(err, "закупка")
}

// Delete удаляет закупку; позиции уходят каскадом.
func (r *OrderRepository) Delete(ctx context.Context, tx pgx.Tx, id uint64) error {
	return hardDelete(ctx, tx, orderTable, id)
}

func (r *OrderRepository) GetItems(ctx context.Context, q Querier, orderID uint64) ([]entities.OrderItem, error) {
	if q == nil {
		q = r.storage
	}
	query, args, err := psql.Select("id", "order_id", "inventory_item_id", "name", "quantity", "unit_price").
		From(orderItemTable).
		Where(sq.Eq{"order_id": orderID}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения позиций закупки: %w", err)
	}
	defer rows.Close()

	items := make([]entities.OrderItem, 0)
	for rows.Next() {
		var it entities.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.InventoryItemID, &it.Name, &it.Quantity, &it.UnitPrice); err != nil {
			return nil, fmt.Errorf("ошибка сканирования позиции закупки: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// ReplaceItems перезаписывает позиции закупки одной вставкой.
func (r *OrderRepository) ReplaceItems(ctx context.Context, tx pgx.Tx, orderID uint64, items []entities.OrderItem) error {
	if _, err := tx.Exec(ctx, "DELETE FROM order_items WHERE order_id = $1", orderID); err != nil {
		return mapPgError(err, "позиция закупки")
	}
	if len(items) == 0 {
		return nil
	}

	b := psql.Insert(orderItemTable).Columns("order_id", "inventory_item_id", "name", "quantity", "unit_price")
	for _, it := range items {
		b = b.Values(orderID, it.InventoryItemID, it.Name, it.Quantity, it.UnitPrice)
	}
	query, args, err := b.Suffix("RETURNING id").ToSql()
	if err != nil {
		return err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return mapPgError(err, "позиция закупки")
	}
	defer rows.Close()

	i := 0
	for rows.Next() && i < len(items) {
		if err := rows.Scan(&items[i].ID); err != nil {
			return err
		}
		items[i].OrderID = orderID
		i++
	}
	return mapPgError(rows.Err(), "позиция закупки")
}
