package repositories

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"isp-system/internal/authz"
	"isp-system/internal/entities"
	"isp-system/internal/infrastructure/bd"
	"isp-system/pkg/types"
)

const attendanceTable = "attendance"

var AttendanceScopeColumns = authz.Columns{Operator: "a.operator_id", Owner: []string{"a.user_id"}}

var attendanceSource = listSource{
	From:  "attendance a",
	Joins: []string{"JOIN users u ON u.id = a.user_id"},
	Columns: []string{
		"a.id", "a.operator_id", "a.user_id", "a.date", "a.check_in", "a.check_out", "a.status", "a.notes",
		"a.created_at", "a.updated_at", "u.fio",
	},
	Spec: bd.ListSpec{
		Allowed: map[string]string{
			"id":          "a.id",
			"status":      "a.status",
			"user_id":     "a.user_id",
			"date":        "a.date",
			"operator_id": "a.operator_id",
			"check_in":    "a.check_in",
		},
		Search:       []string{"u.fio", "a.notes"},
		DefaultOrder: "a.date DESC, a.id DESC",
	},
	CountColumn:  "a.id",
	StatusColumn: "a.status",
}

type AttendanceRepositoryInterface interface {
	GetAttendance(ctx context.Context, filter types.Filter, scope sq.Sqlizer) ([]entities.Attendance, uint64, error)
	GetStats(ctx context.Context, filter types.Filter, scope sq.Sqlizer) (types.StatusStats, error)
	FindByID(ctx context.Context, q Querier, id uint64) (*entities.Attendance, error)
	FindByUserAndDate(ctx context.Context, q Querier, userID uint64, date time.Time) (*entities.Attendance, error)
	Create(ctx context.Context, tx pgx.Tx, a *entities.Attendance) error
	Update(ctx context.Context, tx pgx.Tx, a *entities.Attendance) error
	Delete(ctx context.Context, tx pgx.Tx, id uint64) error
}

type AttendanceRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewAttendanceRepository(storage *pgxpool.Pool, logger *zap.Logger) AttendanceRepositoryInterface {
	return &AttendanceRepository{storage: storage, logger: logger}
}

func scanAttendance(row pgx.Row) (*entities.Attendance, error) {
	var a entities.Attendance
	err := row.Scan(&a.ID, &a.OperatorID, &a.UserID, &a.Date, &a.CheckIn, &a.CheckOut, &a.Status, &a.Notes,
		&a.CreatedAt, &a.UpdatedAt, &a.UserName)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AttendanceRepository) GetAttendance(ctx context.Context, filter types.Filter, scope sq.Sqlizer) ([]entities.Attendance, uint64, error) {
	return fetchList(ctx, r.storage, attendanceSource, filter, scope, scanAttendance)
}

func (r *AttendanceRepository) GetStats(ctx context.Context, filter types.Filter, scope sq.Sqlizer) (types.StatusStats, error) {
	return fetchStats(ctx, r.storage, attendanceSource, filter, scope)
}

func (r *AttendanceRepository) FindByID(ctx context.Context, q Querier, id uint64) (*entities.Attendance, error) {
	if q == nil {
		q = r.storage
	}
	return fetchOne(ctx, q, attendanceSource, sq.Eq{"a.id": id}, scanAttendance, "посещаемость")
}

func (r *AttendanceRepository) FindByUserAndDate(ctx context.Context, q Querier, userID uint64, date time.Time) (*entities.Attendance, error) {
	if q == nil {
		q = r.storage
	}
	where := sq.Eq{"a.user_id": userID, "a.date": date.Format("2006-01-02")}
	return fetchOne(ctx, q, attendanceSource, where, scanAttendance, "посещаемость")
}

func (r *AttendanceRepository) Create(ctx context.Context, tx pgx.Tx, a *entities.Attendance) error {
	query, args, err := psql.Insert(attendanceTable).
		Columns("operator_id", "user_id", "date", "check_in", "check_out", "status", "notes").
		Values(a.OperatorID, a.UserID, a.Date.Format("2006-01-02"), a.CheckIn, a.CheckOut, a.Status, a.Notes).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return err
	}
	err = tx.QueryRow(ctx, query, args...).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	return mapPgError(err, "посещаемость")
}

func (r *AttendanceRepository) Update(ctx context.Context, tx pgx.Tx, a *entities.Attendance) error {
	query, args, err := psql.Update(attendanceTable).
		Set("check_in", a.CheckIn).
		Set("check_out", a.CheckOut).
		Set("status", a.Status).
		Set("notes", a.Notes).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": a.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return err
	}
	err = tx.QueryRow(ctx, query, args...).Scan(&a.UpdatedAt)
	return mapPgError(err, "посещаемость")
}

func (r *AttendanceRepository) Delete(ctx context.Context, tx pgx.Tx, id uint64) error {
	return hardDelete(ctx, tx, attendanceTable, id)
}
