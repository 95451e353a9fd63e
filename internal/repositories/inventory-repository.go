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
	"isp-system/pkg/constants"
	"isp-system/pkg/types"
)

const inventoryTable = "inventory_items"

var InventoryScopeColumns = authz.Columns{Operator: "i.operator_id", Vendor: "i.vendor_id"}

var inventorySource = listSource{
	From: "inventory_items i",
	Columns: []string{
		"i.id", "i.operator_id", "i.vendor_id", "i.sku", "i.name", "i.category", "i.quantity", "i.min_quantity",
		"i.unit_price", "i.location", "i.status", "i.created_at", "i.updated_at", "i.deleted_at",
	},
	Spec: bd.ListSpec{
		Allowed: map[string]string{
			"id":          "i.id",
			"status":      "i.status",
			"category":    "i.category",
			"vendor_id":   "i.vendor_id",
			"operator_id": "i.operator_id",
			"sku":         "i.sku",
			"name":        "i.name",
			"quantity":    "i.quantity",
			"unit_price":  "i.unit_price",
			"created_at":  "i.created_at",
		},
		Search:       []string{"i.sku", "i.name", "i.location"},
		DefaultOrder: "i.name ASC",
	},
	Base:         sq.Expr("i.deleted_at IS NULL"),
	CountColumn:  "i.id",
	StatusColumn: "i.status",
}

type InventoryRepositoryInterface interface {
	GetItems(ctx context.Context, filter types.Filter, scope sq.Sqlizer) ([]entities.InventoryItem, uint64, error)
	GetStats(ctx context.Context, filter types.Filter, scope sq.Sqlizer) (types.StatusStats, error)
	CountLowStock(ctx context.Context, scope sq.Sqlizer) (uint64, error)
	FindByID(ctx context.Context, q Querier, id uint64) (*entities.InventoryItem, error)
	FindBySKU(ctx context.Context, q Querier, operatorID uint64, sku string) (*entities.InventoryItem, error)
	Create(ctx context.Context, tx pgx.Tx, item *entities.InventoryItem) error
	Update(ctx context.Context, tx pgx.Tx, item *entities.InventoryItem) error
	Adjust(ctx context.Context, tx pgx.Tx, item *entities.InventoryItem, delta int) error
	Delete(ctx context.Context, tx pgx.Tx, id uint64) error
}

type InventoryRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewInventoryRepository(storage *pgxpool.Pool, logger *zap.Logger) InventoryRepositoryInterface {
	return &InventoryRepository{storage: storage, logger: logger}
}

func scanInventory(row pgx.Row) (*entities.InventoryItem, error) {
	var i entities.InventoryItem
	err := row.Scan(&i.ID, &i.OperatorID, &i.VendorID, &i.SKU, &i.Name, &i.Category, &i.Quantity, &i.MinQuantity,
		&i.UnitPrice, &i.Location, &i.Status, &i.CreatedAt, &i.UpdatedAt, &i.DeletedAt)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *InventoryRepository) GetItems(ctx context.Context, filter types.Filter, scope sq.Sqlizer) ([]entities.InventoryItem, uint64, error) {
	return fetchList(ctx, r.storage, inventorySource, filter, scope, scanInventory)
}

func (r *InventoryRepository) GetStats(ctx context.Context, filter types.Filter, scope sq.Sqlizer) (types.StatusStats, error) {
	return fetchStats(ctx, r.storage, inventorySource, filter, scope)
}

// CountLowStock - позиции с низким остатком или закончившиеся.
func (r *InventoryRepository) CountLowStock(ctx context.Context, scope sq.Sqlizer) (uint64, error) {
	filter := types.Filter{Filter: map[string]interface{}{"status": constants.StockLow + "," + constants.StockOut}}
	query, args, err := inventorySource.count(filter, scope).ToSql()
	if err != nil {
		return 0, err
	}
	var cnt uint64
	if err := r.storage.QueryRow(ctx, query, args...).Scan(&cnt); err != nil {
		return 0, mapPgError(err, "склад")
	}
	return cnt, nil
}

func (r *InventoryRepository) FindByID(ctx context.Context, q Querier, id uint64) (*entities.InventoryItem, error) {
	if q == nil {
		q = r.storage
	}
	return fetchOne(ctx, q, inventorySource, sq.Eq{"i.id": id}, scanInventory, "позиция склада")
}

func (r *InventoryRepository) FindBySKU(ctx context.Context, q Querier, operatorID uint64, sku string) (*entities.InventoryItem, error) {
	if q == nil {
		q = r.storage
	}
	where := sq.Eq{"i.operator_id": operatorID, "i.sku": sku}
	return fetchOne(ctx, q, inventorySource, where, scanInventory, "позиция склада")
}

func (r *InventoryRepository) Create(ctx context.Context, tx pgx.Tx, item *entities.InventoryItem) error {
	item.Refresh()
	query, args, err := psql.Insert(inventoryTable).
		Columns("operator_id", "vendor_id", "sku", "name", "category", "quantity", "min_quantity", "unit_price", "location", "status").
		Values(item.OperatorID, item.VendorID, item.SKU, item.Name, item.Category, item.Quantity, item.MinQuantity,
			item.UnitPrice, item.Location, item.Status).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return err
	}
	err = tx.QueryRow(ctx, query, args...).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	return mapPgError(err, "позиция склада")
}

func (r *InventoryRepository) Update(ctx context.Context, tx pgx.Tx, item *entities.InventoryItem) error {
	item.Refresh()
	query, args, err := psql.Update(inventoryTable).
		Set("vendor_id", item.VendorID).
		Set("sku", item.SKU).
		Set("name", item.Name).
		Set("category", item.Category).
		Set("quantity", item.Quantity).
		Set("min_quantity", item.MinQuantity).
		Set("unit_price", item.UnitPrice).
		Set("location", item.Location).
		Set("status", item.Status).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": item.ID}).
		Where("deleted_at IS NULL").
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return err
	}
	err = tx.QueryRow(ctx, query, args...).Scan(&item.UpdatedAt)
	return mapPgError(err, "позиция склада")
}

// Adjust атомарно меняет количество. Уход в минус отсекает CHECK (quantity >= 0).
func (r *InventoryRepository) Adjust(ctx context.Context, tx pgx.Tx, item *entities.InventoryItem, delta int) error {
	query := `
		UPDATE inventory_items
		SET quantity = quantity + $1,
		    status = CASE
		        WHEN quantity + $1 <= 0 THEN $3
		        WHEN quantity + $1 <= min_quantity THEN $4
		        ELSE $5 END,
		    updated_at = NOW()
		WHERE id = $2 AND deleted_at IS NULL
		RETURNING quantity, status, updated_at`
	err := tx.QueryRow(ctx, query, delta, item.ID, constants.StockOut, constants.StockLow, constants.StockIn).
		Scan(&item.Quantity, &item.Status, &item.UpdatedAt)
	return mapPgError(err, "позиция склада")
}

func (r *InventoryRepository) Delete(ctx context.Context, tx pgx.Tx, id uint64) error {
	return softDelete(ctx, tx, inventoryTable, id)
}
