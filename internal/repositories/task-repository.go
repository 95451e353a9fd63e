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

const taskTable = "tasks"

var TaskScopeColumns = authz.Columns{Operator: "tk.operator_id", Owner: []string{"tk.technician_id"}}

var taskSource = listSource{
	From:  "tasks tk",
	Joins: []string{"LEFT JOIN users tech ON tech.id = tk.technician_id"},
	Columns: []string{
		"tk.id", "tk.operator_id", "tk.title", "tk.type", "tk.address", "tk.scheduled_at", "tk.technician_id",
		"tk.ticket_id", "tk.complaint_id", "tk.status", "tk.completed_at", "tk.notes", "tk.created_by",
		"tk.created_at", "tk.updated_at", "tech.fio",
	},
	Spec: bd.ListSpec{
		Allowed: map[string]string{
			"id":            "tk.id",
			"status":        "tk.status",
			"type":          "tk.type",
			"technician_id": "tk.technician_id",
			"ticket_id":     "tk.ticket_id",
			"complaint_id":  "tk.complaint_id",
			"operator_id":   "tk.operator_id",
			"scheduled_at":  "tk.scheduled_at",
			"created_at":    "tk.created_at",
		},
		Search:       []string{"tk.title", "tk.address"},
		DefaultOrder: "tk.id DESC",
	},
	CountColumn:  "tk.id",
	StatusColumn: "tk.status",
}

type TaskRepositoryInterface interface {
	GetTasks(ctx context.Context, filter types.Filter, scope sq.Sqlizer) ([]entities.Task, uint64, error)
	GetStats(ctx context.Context, filter types.Filter, scope sq.Sqlizer) (types.StatusStats, error)
	FindByID(ctx context.Context, q Querier, id uint64) (*entities.Task, error)
	Create(ctx context.Context, tx pgx.Tx, t *entities.Task) error
	Update(ctx context.Context, tx pgx.Tx, t *entities.Task) error
	Delete(ctx context.Context, tx pgx.Tx, id uint64) error
}

type TaskRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewTaskRepository(storage *pgxpool.Pool, logger *zap.Logger) TaskRepositoryInterface {
	return &TaskRepository{storage: storage, logger: logger}
}

func scanTask(row pgx.Row) (*entities.Task, error) {
	var t entities.Task
	err := row.Scan(&t.ID, &t.OperatorID, &t.Title, &t.Type, &t.Address, &t.ScheduledAt, &t.TechnicianID,
		&t.TicketID, &t.ComplaintID, &t.Status, &t.CompletedAt, &t.Notes, &t.CreatedBy,
		&t.CreatedAt, &t.UpdatedAt, &t.TechnicianName)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TaskRepository) GetTasks(ctx context.Context, filter types.Filter, scope sq.Sqlizer) ([]entities.Task, uint64, error) {
	return fetchList(ctx, r.storage, taskSource, filter, scope, scanTask)
}

func (r *TaskRepository) GetStats(ctx context.Context, filter types.Filter, scope sq.Sqlizer) (types.StatusStats, error) {
	return fetchStats(ctx, r.storage, taskSource, filter, scope)
}

func (r *TaskRepository) FindByID(ctx context.Context, q Querier, id uint64) (*entities.Task, error) {
	if q == nil {
		q = r.storage
	}
	return fetchOne(ctx, q, taskSource, sq.Eq{"tk.id": id}, scanTask, "задача")
}

func (r *TaskRepository) Create(ctx context.Context, tx pgx.Tx, t *entities.Task) error {
	query, args, err := psql.Insert(taskTable).
		Columns("operator_id", "title", "type", "address", "scheduled_at", "technician_id", "ticket_id",
			"complaint_id", "status", "notes", "created_by").
		Values(t.OperatorID, t.Title, t.Type, t.Address, t.ScheduledAt, t.TechnicianID, t.TicketID,
			t.ComplaintID, t.Status, t.Notes, t.CreatedBy).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return err
	}
	err = tx.QueryRow(ctx, query, args...).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	return mapPgError(err, "задача")
}

func (r *TaskRepository) Update(ctx context.Context, tx pgx.Tx, t *entities.Task) error {
	query, args, err := psql.Update(taskTable).
		Set("title", t.Title).
		Set("type", t.Type).
		Set("address", t.Address).
		Set("scheduled_at", t.ScheduledAt).
		Set("technician_id", t.TechnicianID).
		Set("status", t.Status).
		Set("completed_at", t.CompletedAt).
		Set("notes", t.Notes).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": t.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return err
	}
	err = tx.QueryRow(ctx, query, args...).Scan(&t.UpdatedAt)
	return mapPgError(err, "задача")
}

func (r *TaskRepository) Delete(ctx context.Context, tx pgx.Tx, id uint64) error {
	return hardDelete(ctx, tx, taskTable, id)
}
