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

const leaveTable = "leave_requests"

var LeaveScopeColumns = authz.Columns{Operator: "lr.operator_id", Owner: []string{"lr.user_id"}}

var leaveSource = listSource{
	From:  "leave_requests lr",
	Joins: []string{"JOIN users u ON u.id = lr.user_id"},
	Columns: []string{
		"lr.id", "lr.operator_id", "lr.user_id", "lr.type", "lr.start_date", "lr.end_date", "lr.reason",
		"lr.status", "lr.reviewed_by", "lr.reviewed_at", "lr.review_comment", "lr.created_at", "lr.updated_at", "u.fio",
	},
	Spec: bd.ListSpec{
		Allowed: map[string]string{
			"id":          "lr.id",
			"status":      "lr.status",
			"type":        "lr.type",
			"user_id":     "lr.user_id",
			"operator_id": "lr.operator_id",
			"start_date":  "lr.start_date",
			"end_date":    "lr.end_date",
			"created_at":  "lr.created_at",
		},
		Search:       []string{"u.fio", "lr.reason"},
		DefaultOrder: "lr.id DESC",
	},
	CountColumn:  "lr.id",
	StatusColumn: "lr.status",
}

type LeaveRepositoryInterface interface {
	GetLeaves(ctx context.Context, filter types.Filter, scope sq.Sqlizer) ([]entities.LeaveRequest, uint64, error)
	GetStats(ctx context.Context, filter types.Filter, scope sq.Sqlizer) (types.StatusStats, error)
	FindByID(ctx context.Context, q Querier, id uint64) (*entities.LeaveRequest, error)
	Create(ctx context.Context, tx pgx.Tx, l *entities.LeaveRequest) error
	Update(ctx context.Context, tx pgx.Tx, l *entities.LeaveRequest) error
	Delete(ctx context.Context, tx pgx.Tx, id uint64) error
}

type LeaveRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewLeaveRepository(storage *pgxpool.Pool, logger *zap.Logger) LeaveRepositoryInterface {
	return &LeaveRepository{storage: storage, logger: logger}
}

func scanLeave(row pgx.Row) (*entities.LeaveRequest, error) {
	var l entities.LeaveRequest
	err := row.Scan(&l.ID, &l.OperatorID, &l.UserID, &l.Type, &l.StartDate, &l.EndDate, &l.Reason,
		&l.Status, &l.ReviewedBy, &l.ReviewedAt, &l.ReviewComment, &l.CreatedAt, &l.UpdatedAt, &l.UserName)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LeaveRepository) GetLeaves(ctx context.Context, filter types.Filter, scope sq.Sqlizer) ([]entities.LeaveRequest, uint64, error) {
	return fetchList(ctx, r.storage, leaveSource, filter, scope, scanLeave)
}

func (r *LeaveRepository) GetStats(ctx context.Context, filter types.Filter, scope sq.Sqlizer) (types.StatusStats, error) {
	return fetchStats(ctx, r.storage, leaveSource, filter, scope)
}

func (r *LeaveRepository) FindByID(ctx context.Context, q Querier, id uint64) (*entities.LeaveRequest, error) {
	if q == nil {
		q = r.storage
	}
	return fetchOne(ctx, q, leaveSource, sq.Eq{"lr.id": id}, scanLeave, "заявка на отпуск")
}

func (r *LeaveRepository) Create(ctx context.Context, tx pgx.Tx, l *entities.LeaveRequest) error {
	query, args, err := psql.Insert(leaveTable).
		Columns("operator_id", "user_id", "type", "start_date", "end_date", "reason", "status").
		Values(l.OperatorID, l.UserID, l.Type, l.StartDate, l.EndDate, l.Reason, l.Status).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return err
	}
	err = tx.QueryRow(ctx, query, args...).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
	return mapPgError(err, "заявка на отпуск")
}

func (r *LeaveRepository) Update(ctx context.Context, tx pgx.Tx, l *entities.LeaveRequest) error {
	query, args, err := psql.Update(leaveTable).
		Set("type", l.Type).
		Set("start_date", l.StartDate).
		Set("end_date", l.EndDate).
		Set("reason", l.Reason).
		Set("status", l.Status).
		Set("reviewed_by", l.ReviewedBy).
		Set("reviewed_at", l.ReviewedAt).
		Set("review_comment", l.ReviewComment).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": l.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return err
	}
	err = tx.QueryRow(ctx, query, args...).Scan(&l.UpdatedAt)
	return mapPgError(err, "заявка на отпуск")
}

func (r *LeaveRepository) Delete(ctx context.Context, tx pgx.Tx, id uint64) error {
	return hardDelete(ctx, tx, leaveTable, id)
}
