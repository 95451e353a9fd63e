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

const ticketTable = "tickets"

var TicketScopeColumns = authz.Columns{Operator: "t.operator_id", Owner: []string{"t.created_by", "t.assigned_to"}}

var ticketSource = listSource{
	From:  "tickets t",
	Joins: []string{"LEFT JOIN users asg ON asg.id = t.assigned_to"},
	Columns: []string{
		"t.id", "t.operator_id", "t.complaint_id", "t.title", "t.description", "t.priority", "t.status",
		"t.created_by", "t.assigned_to", "t.created_at", "t.updated_at", "asg.fio",
	},
	Spec: bd.ListSpec{
		Allowed: map[string]string{
			"id":           "t.id",
			"status":       "t.status",
			"priority":     "t.priority",
			"complaint_id": "t.complaint_id",
			"assigned_to":  "t.assigned_to",
			"created_by":   "t.created_by",
			"operator_id":  "t.operator_id",
			"created_at":   "t.created_at",
		},
		Search:       []string{"t.title", "t.description"},
		DefaultOrder: "t.id DESC",
	},
	CountColumn:  "t.id",
	StatusColumn: "t.status",
}

type TicketRepositoryInterface interface {
	GetTickets(ctx context.Context, filter types.Filter, scope sq.Sqlizer) ([]entities.Ticket, uint64, error)
	GetStats(ctx context.Context, filter types.Filter, scope sq.Sqlizer) (types.StatusStats, error)
	FindByID(ctx context.Context, q Querier, id uint64) (*entities.Ticket, error)
	Create(ctx context.Context, tx pgx.Tx, t *entities.Ticket) error
	Update(ctx context.Context, tx pgx.Tx, t *entities.Ticket) error
	Delete(ctx context.Context, tx pgx.Tx, id uint64) error
}

type TicketRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewTicketRepository(storage *pgxpool.Pool, logger *zap.Logger) TicketRepositoryInterface {
	return &TicketRepository{storage: storage, logger: logger}
}

func scanTicket(row pgx.Row) (*entities.Ticket, error) {
	var t entities.Ticket
	err := row.Scan(&t.ID, &t.OperatorID, &t.ComplaintID, &t.Title, &t.Description, &t.Priority, &t.Status,
		&t.CreatedBy, &t.AssignedTo, &t.CreatedAt, &t.UpdatedAt, &t.AssigneeName)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TicketRepository) GetTickets(ctx context.Context, filter types.Filter, scope sq.Sqlizer) ([]entities.Ticket, uint64, error) {
	return fetchList(ctx, r.storage, ticketSource, filter, scope, scanTicket)
}

func (r *TicketRepository) GetStats(ctx context.Context, filter types.Filter, scope sq.Sqlizer) (types.StatusStats, error) {
	return fetchStats(ctx, r.storage, ticketSource, filter, scope)
}

func (r *TicketRepository) FindByID(ctx context.Context, q Querier, id uint64) (*entities.Ticket, error) {
	if q == nil {
		q = r.storage
	}
	return fetchOne(ctx, q, ticketSource, sq.Eq{"t.id": id}, scanTicket, "тикет")
}

func (r *TicketRepository) Create(ctx context.Context, tx pgx.Tx, t *entities.Ticket) error {
	query, args, err := psql.Insert(ticketTable).
		Columns("operator_id", "complaint_id", "title", "description", "priority", "status", "created_by", "assigned_to").
		Values(t.OperatorID, t.ComplaintID, t.Title, t.Description, t.Priority, t.Status, t.CreatedBy, t.AssignedTo).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return err
	}
	err = tx.QueryRow(ctx, query, args...).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	return mapPgError(err, "тикет")
}

func (r *TicketRepository) Update(ctx context.Context, tx pgx.Tx, t *entities.Ticket) error {
	query, args, err := psql.Update(ticketTable).
		Set("title", t.Title).
		Set("description", t.Description).
		Set("priority", t.Priority).
		Set("status", t.Status).
		Set("assigned_to", t.AssignedTo).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": t.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return err
	}
	err = tx.QueryRow(ctx, query, args...).Scan(&t.UpdatedAt)
	return mapPgError(err, "тикет")
}

func (r *TicketRepository) Delete(ctx context.Context, tx pgx.Tx, id uint64) error {
	return hardDelete(ctx, tx, ticketTable, id)
}
