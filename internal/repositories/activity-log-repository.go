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

var ActivityLogScopeColumns = authz.Columns{Operator: "al.operator_id", Owner: []string{"al.actor_id"}}

var activityLogSource = listSource{
	From:  "activity_logs al",
	Joins: []string{"LEFT JOIN users u ON u.id = al.actor_id"},
	Columns: []string{
		"al.id", "al.operator_id", "al.actor_id", "al.entity_type", "al.entity_id", "al.action",
		"al.old_value", "al.new_value", "al.tx_id", "al.created_at", "u.fio",
	},
	Spec: bd.ListSpec{
		Allowed: map[string]string{
			"id":          "al.id",
			"entity_type": "al.entity_type",
			"entity_id":   "al.entity_id",
			"action":      "al.action",
			"actor_id":    "al.actor_id",
			"operator_id": "al.operator_id",
			"created_at":  "al.created_at",
		},
		Search:       []string{"u.fio", "al.entity_type", "al.action"},
		DefaultOrder: "al.id DESC",
	},
	CountColumn: "al.id",
}

type ActivityLogRepositoryInterface interface {
	GetLogs(ctx context.Context, filter types.Filter, scope sq.Sqlizer) ([]entities.ActivityLog, uint64, error)
	Create(ctx context.Context, tx pgx.Tx, l *entities.ActivityLog) error
}

type ActivityLogRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewActivityLogRepository(storage *pgxpool.Pool, logger *zap.Logger) ActivityLogRepositoryInterface {
	return &ActivityLogRepository{storage: storage, logger: logger}
}

func scanActivityLog(row pgx.Row) (*entities.ActivityLog, error) {
	var l entities.ActivityLog
	err := row.Scan(&l.ID, &l.OperatorID, &l.ActorID, &l.EntityType, &l.EntityID, &l.Action,
		&l.OldValue, &l.NewValue, &l.TxID, &l.CreatedAt, &l.ActorName)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *ActivityLogRepository) GetLogs(ctx context.Context, filter types.Filter, scope sq.Sqlizer) ([]entities.ActivityLog, uint64, error) {
	return fetchList(ctx, r.storage, activityLogSource, filter, scope, scanActivityLog)
}

// Create пишет запись в транзакции изменения: откат изменения откатывает и журнал.
func (r *ActivityLogRepository) Create(ctx context.Context, tx pgx.Tx, l *entities.ActivityLog) error {
	query, args, err := psql.Insert("activity_logs").
		Columns("operator_id", "actor_id", "entity_type", "entity_id", "action", "old_value", "new_value", "tx_id").
		Values(l.OperatorID, l.ActorID, l.EntityType, l.EntityID, l.Action, nullJSON(l.OldValue), nullJSON(l.NewValue), l.TxID).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return err
	}
	err = tx.QueryRow(ctx, query, args...).Scan(&l.ID, &l.CreatedAt)
	return mapPgError(err, "журнал")
}

// nullJSON - пустое значение пишется как NULL, а не как пустая строка.
func nullJSON(raw []byte) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
