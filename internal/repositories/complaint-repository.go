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

const complaintTable = "complaints"

var ComplaintScopeColumns = authz.Columns{Operator: "c.operator_id", Owner: []string{"c.customer_id", "c.assigned_to"}}

var complaintSource = listSource{
	From: "complaints c",
	Joins: []string{
		"JOIN users cu ON cu.id = c.customer_id",
		"LEFT JOIN users asg ON asg.id = c.assigned_to",
	},
	Columns: []string{
		"c.id", "c.operator_id", "c.customer_id", "c.subscription_id", "c.subject", "c.description",
		"c.category", "c.priority", "c.status", "c.assigned_to", "c.resolved_at", "c.created_at", "c.updated_at",
		"cu.fio", "asg.fio",
	},
	Spec: bd.ListSpec{
		Allowed: map[string]string{
			"id":          "c.id",
			"status":      "c.status",
			"priority":    "c.priority",
			"category":    "c.category",
			"customer_id": "c.customer_id",
			"assigned_to": "c.assigned_to",
			"operator_id": "c.operator_id",
			"created_at":  "c.created_at",
			"resolved_at": "c.resolved_at",
		},
		Search:       []string{"c.subject", "c.description"},
		DefaultOrder: "c.id DESC",
	},
	CountColumn:  "c.id",
	StatusColumn: "c.status",
}

type ComplaintRepositoryInterface interface {
	GetComplaints(ctx context.Context, filter types.Filter, scope sq.Sqlizer) ([]entities.Complaint, uint64, error)
	GetStats(ctx context.Context, filter types.Filter, scope sq.Sqlizer) (types.StatusStats, error)
	FindByID(ctx context.Context, q Querier, id uint64) (*entities.Complaint, error)
	Create(ctx context.Context, tx pgx.Tx, c *entities.Complaint) error
	Update(ctx context.Context, tx pgx.Tx, c *entities.Complaint) error
	Delete(ctx context.Context, tx pgx.Tx, id uint64) error

	CreateAttachment(ctx context.Context, tx pgx.Tx, a *entities.ComplaintAttachment) error
	GetAttachments(ctx context.Context, complaintID uint64) ([]entities.ComplaintAttachment, error)
}

type ComplaintRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewComplaintRepository(storage *pgxpool.Pool, logger *zap.Logger) ComplaintRepositoryInterface {
	return &ComplaintRepository{storage: storage, logger: logger}
}

func scanComplaint(row pgx.Row) (*entities.Complaint, error) {
	var c entities.Complaint
	err := row.Scan(&c.ID, &c.OperatorID, &c.CustomerID, &c.SubscriptionID, &c.Subject, &c.Description,
		&c.Category, &c.Priority, &c.Status, &c.AssignedTo, &c.ResolvedAt, &c.CreatedAt, &c.UpdatedAt,
		&c.CustomerName, &c.AssigneeName)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ComplaintRepository) GetComplaints(ctx context.Context, filter types.Filter, scope sq.Sqlizer) ([]entities.Complaint, uint64, error) {
	return fetchList(ctx, r.storage, complaintSource, filter, scope, scanComplaint)
}

func (r *ComplaintRepository) GetStats(ctx context.Context, filter types.Filter, scope sq.Sqlizer) (types.StatusStats, error) {
	return fetchStats(ctx, r.storage, complaintSource, filter, scope)
}

func (r *ComplaintRepository) FindByID(ctx context.Context, q Querier, id uint64) (*entities.Complaint, error) {
	if q == nil {
		q = r.storage
	}
	return fetchOne(ctx, q, complaintSource, sq.Eq{"c.id": id}, scanComplaint, "жалоба")
}

func (r *ComplaintRepository) Create(ctx context.Context, tx pgx.Tx, c *entities.Complaint) error {
	query, args, err := psql.Insert(complaintTable).
		Columns("operator_id", "customer_id", "subscription_id", "subject", "description", "category", "priority", "status", "assigned_to").
		Values(c.OperatorID, c.CustomerID, c.SubscriptionID, c.Subject, c.Description, c.Category, c.Priority, c.Status, c.AssignedTo).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return err
	}
	err = tx.QueryRow(ctx, query, args...).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	return mapPgError(err, "жалоба")
}

func (r *ComplaintRepository) Update(ctx context.Context, tx pgx.Tx, c *entities.Complaint) error {
	query, args, err := psql.Update(complaintTable).
		Set("subject", c.Subject).
		Set("description", c.Description).
		Set("category", c.Category).
		Set("priority", c.Priority).
		Set("status", c.Status).
		Set("assigned_to", c.AssignedTo).
		Set("resolved_at", c.ResolvedAt).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": c.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return err
	}
	err = tx.QueryRow(ctx, query, args...).Scan(&c.UpdatedAt)
	return mapPgError(err, "жалоба")
}

func (r *ComplaintRepository) Delete(ctx context.Context, tx pgx.Tx, id uint64) error {
	return hardDelete(ctx, tx, complaintTable, id)
}

func (r *ComplaintRepository) CreateAttachment(ctx context.Context, tx pgx.Tx, a *entities.ComplaintAttachment) error {
	query, args, err := psql.Insert("complaint_attachments").
		Columns("complaint_id", "file_name", "file_path", "file_type", "file_size", "uploaded_by").
		Values(a.ComplaintID, a.FileName, a.FilePath, a.FileType, a.FileSize, a.UploadedBy).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return err
	}
	err = tx.QueryRow(ctx, query, args...).Scan(&a.ID, &a.CreatedAt)
	return mapPgError(err, "вложение")
}

func (r *ComplaintRepository) GetAttachments(ctx context.Context, complaintID uint64) ([]entities.ComplaintAttachment, error) {
	query := `
		SELECT id, complaint_id, file_name, file_path, file_type, file_size, uploaded_by, created_at
		FROM complaint_attachments
		WHERE complaint_id = $1
		ORDER BY id`
	rows, err := r.storage.Query(ctx, query, complaintID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения вложений: %w", err)
	}
	defer rows.Close()

	list := make([]entities.ComplaintAttachment, 0)
	for rows.Next() {
		var a entities.ComplaintAttachment
		if err := rows.Scan(&a.ID, &a.ComplaintID, &a.FileName, &a.FilePath, &a.FileType, &a.FileSize, &a.UploadedBy, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования вложения: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}
