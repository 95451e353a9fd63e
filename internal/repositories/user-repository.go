package repositories

import (
	"context"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"isp-system/internal/authz"
	"isp-system/internal/entities"
	"isp-system/internal/infrastructure/bd"
	"isp-system/pkg/types"
)

const userTable = "users"

var UserScopeColumns = authz.Columns{Operator: "u.operator_id", Owner: []string{"u.id"}}

var userSource = listSource{
	From: "users u",
	Joins: []string{
		"JOIN roles r ON r.id = u.role_id",
		"LEFT JOIN vendors v ON v.user_id = u.id AND v.deleted_at IS NULL",
	},
	Columns: []string{
		"u.id", "u.fio", "u.email", "u.phone", "u.password", "u.role_id", "r.code", "r.name",
		"u.operator_id", "v.id", "u.status", "u.position", "u.hire_date", "u.created_at", "u.updated_at",
	},
	Spec: bd.ListSpec{
		Allowed: map[string]string{
			"id":          "u.id",
			"fio":         "u.fio",
			"email":       "u.email",
			"role_id":     "u.role_id",
			"role_code":   "r.code",
			"operator_id": "u.operator_id",
			"status":      "u.status",
			"position":    "u.position",
			"hire_date":   "u.hire_date",
			"created_at":  "u.created_at",
		},
		Search:       []string{"u.fio", "u.email", "u.phone"},
		DefaultOrder: "u.id DESC",
	},
	Base:         sq.Expr("u.deleted_at IS NULL"),
	CountColumn:  "u.id",
	StatusColumn: "u.status",
}

type UserRepositoryInterface interface {
	GetUsers(ctx context.Context, filter types.Filter, scope sq.Sqlizer) ([]entities.User, uint64, error)
	GetStats(ctx context.Context, filter types.Filter, scope sq.Sqlizer) (types.StatusStats, error)
	FindByID(ctx context.Context, q Querier, id uint64) (*entities.User, error)
	FindByLogin(ctx context.Context, login string) (*entities.User, error)
	Create(ctx context.Context, tx pgx.Tx, user *entities.User) error
	Update(ctx context.Context, tx pgx.Tx, user *entities.User) error
	UpdatePassword(ctx context.Context, tx pgx.Tx, id uint64, hash string) error
	Delete(ctx context.Context, tx pgx.Tx, id uint64) error
}

type UserRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewUserRepository(storage *pgxpool.Pool, logger *zap.Logger) UserRepositoryInterface {
	return &UserRepository{storage: storage, logger: logger}
}

func scanUser(row pgx.Row) (*entities.User, error) {
	var u entities.User
	err := row.Scan(
		&u.ID, &u.Fio, &u.Email, &u.Phone, &u.Password, &u.RoleID, &u.RoleCode, &u.RoleName,
		&u.OperatorID, &u.VendorID, &u.Status, &u.Position, &u.HireDate, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetUsers(ctx context.Context, filter types.Filter, scope sq.Sqlizer) ([]entities.User, uint64, error) {
	return fetchList(ctx, r.storage, userSource, filter, scope, scanUser)
}

func (r *UserRepository) GetStats(ctx context.Context, filter types.Filter, scope sq.Sqlizer) (types.StatusStats, error) {
	return fetchStats(ctx, r.storage, userSource, filter, scope)
}

func (r *UserRepository) FindByID(ctx context.Context, q Querier, id uint64) (*entities.User, error) {
	if q == nil {
		q = r.storage
	}
	return fetchOne(ctx, q, userSource, sq.Eq{"u.id": id}, scanUser, "пользователь")
}

// FindByLogin ищет по email (без учёта регистра) или по телефону.
func (r *UserRepository) FindByLogin(ctx context.Context, login string) (*entities.User, error) {
	where := sq.Or{
		sq.Expr("LOWER(u.email) = ?", strings.ToLower(login)),
		sq.Eq{"u.phone": login},
	}
	return fetchOne(ctx, r.storage, userSource, where, scanUser, "пользователь")
}

func (r *UserRepository) Create(ctx context.Context, tx pgx.Tx, user *entities.User) error {
	query, args, err := psql.Insert(userTable).
		Columns("fio", "email", "phone", "password", "role_id", "operator_id", "status", "position", "hire_date").
		Values(user.Fio, user.Email, user.Phone, user.Password, user.RoleID, user.OperatorID, user.Status, user.Position, user.HireDate).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return err
	}
	err = tx.QueryRow(ctx, query, args...).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	return mapPgError(err, "пользователь")
}

func (r *UserRepository) Update(ctx context.Context, tx pgx.Tx, user *entities.User) error {
	query, args, err := psql.Update(userTable).
		Set("fio", user.Fio).
		Set("email", user.Email).
		Set("phone", user.Phone).
		Set("role_id", user.RoleID).
		Set("operator_id", user.OperatorID).
		Set("status", user.Status).
		Set("position", user.Position).
		Set("hire_date", user.HireDate).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": user.ID}).
		Where("deleted_at IS NULL").
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return err
	}
	err = tx.QueryRow(ctx, query, args...).Scan(&user.UpdatedAt)
	return mapPgError(err, "пользователь")
}

func (r *UserRepository) UpdatePassword(ctx context.Context, tx pgx.Tx, id uint64, hash string) error {
	result, err := tx.Exec(ctx, "UPDATE users SET password = $1, updated_at = NOW() WHERE id = $2 AND deleted_at IS NULL", hash, id)
	if err != nil {
		return mapPgError(err, "пользователь")
	}
	if result.RowsAffected() == 0 {
		return mapPgError(pgx.ErrNoRows, "пользователь")
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, tx pgx.Tx, id uint64) error {
	return softDelete(ctx, tx, userTable, id)
}
