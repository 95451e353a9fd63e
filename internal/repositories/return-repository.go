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

const returnTable = "returns"

var ReturnScopeColumns = authz.Columns{Operator: "rt.operator_id", Vendor: "rt.vendor_id"}

var returnSource = listSource{
	From:  "returns rt",
	Joins: []string{"JOIN orders o ON o.id = rt.order_id"},
	Columns: []string{
		"rt.id", "rt.operator_id", "rt.order_id", "rt.vendor_id", "rt.reason", "rt.quantity", "rt.refund_amount",
		"rt.status", "rt.created_at", "rt.updated_at", "o.order_number",
	},
	Spec: bd.ListSpec{
		Allowed: map[string]string{
			"id":            "rt.id",
			"status":        "rt.status",
			"order_id":      "rt.order_id",
			"vendor_id":     "rt.vendor_id",
			"operator_id":   "rt.operator_id",
			"refund_amount": "rt.refund_amount",
			"created_at":    "rt.created_at",
		},
		Search:       []string{"rt.reason", "o.order_number"},
		DefaultOrder: "rt.id DESC",
	},
	CountColumn:  "rt.id",
	StatusColumn: "rt.status",
}

type ReturnRepositoryInterface interface {
	GetReturns(ctx context.Context, filter types.Filter, scope sq.Sqlizer) ([]entities.Return, uint64, error)
	GetStats(ctx context.Context, filter types.Filter, scope sq.Sqlizer) (types.StatusStats, error)
	FindByID(ctx context.Context, q Querier, id uint64) (*entities.Return, error)
	Create(ctx context.Context, tx pgx.Tx, rt *entities.Return) error
	Update(ctx context.Context, tx pgx.Tx, rt *entities.Return) error
	Delete(ctx context.Context, tx pgx.Tx, id uint64) error
}

type ReturnRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewReturnRepository(storage *pgxpool.Pool, logger *zap.Logger) ReturnRepositoryInterface {
	return &ReturnRepository{storage: storage, logger: logger}
}

func scanReturn(row pgx.Row) (*entities.Return, error) {
	var rt entities.Return
	err := row.Scan(&rt.ID, &rt.OperatorID, &rt.OrderID, &rt.VendorID, &rt.Reason, &rt.Quantity, &rt.RefundAmount,
		&rt.Status, &rt.CreatedAt, &rt.UpdatedAt, &rt.OrderNumber)
	if err != nil {
		return nil, err
	}
	return &rt, nil
}

func (r *ReturnRepository) GetReturns(ctx context.Context, filter types.Filter, scope sq.Sqlizer) ([]entities.Return, uint64, error) {
	return fetchList(ctx, r.storage, returnSource, filter, scope, scanReturn)
}

func (r *ReturnRepository) GetStats(ctx context.Context, filter types.Filter, scope sq.Sqlizer) (types.StatusStats, error) {
	return fetchStats(ctx, r.storage, returnSource, filter, scope)
}

func (r *ReturnRepository) FindByID(ctx context.Context, q Querier, id uint64) (*entities.Return, error) {
	if q == nil {
		q = r.storage
	}
	return fetchOne(ctx, q, returnSource, sq.Eq{"rt.id": id}, scanReturn, "возврат")
}

func (r *ReturnRepository) Create(ctx context.Context, tx pgx.Tx, rt *entities.Return) error {
	query, args, err := psql.Insert(returnTable).
		Columns("operator_id", "order_id", "vendor_id", "reason", "quantity", "refund_amount", "status").
		Values(rt.OperatorID, rt.OrderID, rt.VendorID, rt.Reason, rt.Quantity, rt.RefundAmount, rt.Status).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return err
	}
	err = tx.QueryRow(ctx, query, args...).Scan(&rt.ID, &rt.CreatedAt, &rt.UpdatedAt)
	return mapPgError(err, "возврат")
}

func (r *ReturnRepository) Update(ctx context.Context, tx pgx.Tx, rt *entities.Return) error {
	query, args, err := psql.Update(returnTable).
		Set("reason", rt.Reason).
		Set("quantity", rt.Quantity).
		Set("refund_amount", rt.RefundAmount).
		Set("status", rt.Status).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": rt.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return err
	}
	err = tx.QueryRow(ctx, query, args...).Scan(&rt.UpdatedAt)
	return mapPgError(err, "возврат")
}

func (r *ReturnRepository) Delete(ctx context.Context, tx pgx.Tx, id uint64) error {
	return hardDelete(ctx, tx, returnTable, id)
}
