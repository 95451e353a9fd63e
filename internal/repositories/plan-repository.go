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
	"isp-system/pkg/constants"
	"isp-system/pkg/types"
)

const planTable = "plans"

var PlanScopeColumns = authz.Columns{Operator: "p.operator_id", OperatorShared: true}

var planSource = listSource{
	From: "plans p",
	Columns: []string{
		"p.id", "p.operator_id", "p.name", "p.code", "p.speed_mbps", "p.data_limit_gb", "p.price",
		"p.billing_cycle", "p.status", "p.created_at", "p.updated_at",
	},
	Spec: bd.ListSpec{
		Allowed: map[string]string{
			"id":            "p.id",
			"name":          "p.name",
			"code":          "p.code",
			"speed_mbps":    "p.speed_mbps",
			"price":         "p.price",
			"billing_cycle": "p.billing_cycle",
			"status":        "p.status",
			"operator_id":   "p.operator_id",
			"created_at":    "p.created_at",
		},
		Search:       []string{"p.name", "p.code"},
		DefaultOrder: "p.id DESC",
	},
	Base:         sq.Expr("p.deleted_at IS NULL"),
	CountColumn:  "p.id",
	StatusColumn: "p.status",
}

type PlanRepositoryInterface interface {
	GetPlans(ctx context.Context, filter types.Filter, scope sq.Sqlizer) ([]entities.Plan, uint64, error)
	GetStats(ctx context.Context, filter types.Filter, scope sq.Sqlizer) (types.StatusStats, error)
	FindByID(ctx context.Context, q Querier, id uint64) (*entities.Plan, error)
	CountActiveSubscriptions(ctx context.Context, q Querier, planID uint64) (uint64, error)
	Create(ctx context.Context, tx pgx.Tx, p *entities.Plan) error
	Update(ctx context.Context, tx pgx.Tx, p *entities.Plan) error
	Delete(ctx context.Context, tx pgx.Tx, id uint64) error
}

type PlanRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewPlanRepository(storage *pgxpool.Pool, logger *zap.Logger) PlanRepositoryInterface {
	return &PlanRepository{storage: storage, logger: logger}
}

func scanPlan(row pgx.Row) (*entities.Plan, error) {
	var p entities.Plan
	err := row.Scan(&p.ID, &p.OperatorID, &p.Name, &p.Code, &p.SpeedMbps, &p.DataLimitGB, &p.Price,
		&p.BillingCycle, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PlanRepository) GetPlans(ctx context.Context, filter types.Filter, scope sq.Sqlizer) ([]entities.Plan, uint64, error) {
	return fetchList(ctx, r.storage, planSource, filter, scope, scanPlan)
}

func (r *PlanRepository) GetStats(ctx context.Context, filter types.Filter, scope sq.Sqlizer) (types.StatusStats, error) {
	return fetchStats(ctx, r.storage, planSource, filter, scope)
}

func (r *PlanRepository) FindByID(ctx context.Context, q Querier, id uint64) (*entities.Plan, error) {
	if q == nil {
		q = r.storage
	}
	return fetchOne(ctx, q, planSource, sq.Eq{"p.id": id}, scanPlan, "тариф")
}

func (r *PlanRepository) CountActiveSubscriptions(ctx context.Context, q Querier, planID uint64) (uint64, error) {
	if q == nil {
		q = r.storage
	}
	var n uint64
	err := q.QueryRow(ctx, "SELECT COUNT(*) FROM subscriptions WHERE plan_id = $1 AND status = $2", planID, constants.SubscriptionActive).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчета подписок тарифа: %w", err)
	}
	return n, nil
}

func (r *PlanRepository) Create(ctx context.Context, tx pgx.Tx, p *entities.Plan) error {
	query, args, err := psql.Insert(planTable).
		Columns("operator_id", "name", "code", "speed_mbps", "data_limit_gb", "price", "billing_cycle", "status").
		Values(p.OperatorID, p.Name, p.Code, p.SpeedMbps, p.DataLimitGB, p.Price, p.BillingCycle, p.Status).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return err
	}
	err = tx.QueryRow(ctx, query, args...).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	return mapPgError(err, "тариф")
}

func (r *PlanRepository) Update(ctx context.Context, tx pgx.Tx, p *entities.Plan) error {
	query, args, err := psql.Update(planTable).
		Set("name", p.Name).
		Set("code", p.Code).
		Set("speed_mbps", p.SpeedMbps).
		Set("data_limit_gb", p.DataLimitGB).
		Set("price", p.Price).
		Set("billing_cycle", p.BillingCycle).
		Set("status", p.Status).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": p.ID}).
		Where("deleted_at IS NULL").
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return err
	}
	err = tx.QueryRow(ctx, query, args...).Scan(&p.UpdatedAt)
	return mapPgError(err, "тариф")
}

func (r *PlanRepository) Delete(ctx context.Context, tx pgx.Tx, id uint64) error {
	return softDelete(ctx, tx, planTable, id)
}
