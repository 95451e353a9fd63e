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
	apperrors "isp-system/pkg/errors"
	"isp-system/pkg/types"
)

const operatorTable = "operators"

var OperatorScopeColumns = authz.Columns{Operator: "op.id"}

var operatorSource = listSource{
	From: "operators op",
	Columns: []string{
		"op.id", "op.name", "op.code", "op.email", "op.phone", "op.address", "op.status",
		"op.created_at", "op.updated_at",
	},
	Spec: bd.ListSpec{
		Allowed: map[string]string{
			"id":         "op.id",
			"name":       "op.name",
			"code":       "op.code",
			"status":     "op.status",
			"created_at": "op.created_at",
		},
		Search:       []string{"op.name", "op.code", "op.email"},
		DefaultOrder: "op.id DESC",
	},
	Base:         sq.Expr("op.deleted_at IS NULL"),
	CountColumn:  "op.id",
	StatusColumn: "op.status",
}

type OperatorRepositoryInterface interface {
	GetOperators(ctx context.Context, filter types.Filter, scope sq.Sqlizer) ([]entities.Operator, uint64, error)
	GetStats(ctx context.Context, filter types.Filter, scope sq.Sqlizer) (types.StatusStats, error)
	FindByID(ctx context.Context, q Querier, id uint64) (*entities.Operator, error)
	Create(ctx context.Context, tx pgx.Tx, op *entities.Operator) error
	Update(ctx context.Context, tx pgx.Tx, op *entities.Operator) error
	Delete(ctx context.Context, tx pgx.Tx, id uint64) error
}

type OperatorRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewOperatorRepository(storage *pgxpool.Pool, logger *zap.Logger) OperatorRepositoryInterface {
	return &OperatorRepository{storage: storage, logger: logger}
}

func scanOperator(row pgx.Row) (*entities.Operator, error) {
	var o entities.Operator
	err := row.Scan(&o.ID, &o.Name, &o.Code, &o.Email, &o.Phone, &o.Address, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OperatorRepository) GetOperators(ctx context.Context, filter types.Filter, scope sq.Sqlizer) ([]entities.Operator, uint64, error) {
	return fetchList(ctx, r.storage, operatorSource, filter, scope, scanOperator)
}

func (r *OperatorRepository) GetStats(ctx context.Context, filter types.Filter, scope sq.Sqlizer) (types.StatusStats, error) {
	return fetchStats(ctx, r.storage, operatorSource, filter, scope)
}

func (r *OperatorRepository) FindByID(ctx context.Context, q Querier, id uint64) (*entities.Operator, error) {
	if q == nil {
		q = r.storage
	}
	return fetchOne(ctx, q, operatorSource, sq.Eq{"op.id": id}, scanOperator, "оператор")
}

func (r *OperatorRepository) Create(ctx context.Context, tx pgx.Tx, op *entities.Operator) error {
	query, args, err := psql.Insert(operatorTable).
		Columns("name", "code", "email", "phone", "address", "status").
		Values(op.Name, op.Code, op.Email, op.Phone, op.Address, op.Status).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return err
	}
	err = tx.QueryRow(ctx, query, args...).Scan(&op.ID, &op.CreatedAt, &op.UpdatedAt)
	return mapPgError(err, "оператор")
}

func (r *OperatorRepository) Update(ctx context.Context, tx pgx.Tx, op *entities.Operator) error {
	query, args, err := psql.Update(operatorTable).
		Set("name", op.Name).
		Set("code", op.Code).
		Set("email", op.Email).
		Set("phone", op.Phone).
		Set("address", op.Address).
		Set("status", op.Status).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": op.ID}).
		Where("deleted_at IS NULL").
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return err
	}
	err = tx.QueryRow(ctx, query, args...).Scan(&op.UpdatedAt)
	return mapPgError(err, "оператор")
}

func (r *OperatorRepository) Delete(ctx context.Context, tx pgx.Tx, id uint64) error {
	return softDelete(ctx, tx, operatorTable, id)
}

// softDelete проставляет deleted_at. ErrNotFound, если записи нет или она уже удалена.
func softDelete(ctx context.Context, q Querier, table string, id uint64) error {
	query := fmt.Sprintf("UPDATE %s SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL", table)
	result, err := q.Exec(ctx, query, id)
	if err != nil {
		return mapPgError(err, table)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// hardDelete удаляет строку физически.
func hardDelete(ctx context.Context, q Querier, table string, id uint64) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", table)
	result, err := q.Exec(ctx, query, id)
	if err != nil {
		return mapPgError(err, table)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
