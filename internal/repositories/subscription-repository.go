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

const subscriptionTable = "subscriptions"

var SubscriptionScopeColumns = authz.Columns{Operator: "s.operator_id", Owner: []string{"s.customer_id"}}

var subscriptionSource = listSource{
	From: "subscriptions s",
	Joins: []string{
		"JOIN users cu ON cu.id = s.customer_id",
		"JOIN plans p ON p.id = s.plan_id",
	},
	Columns: []string{
		"s.id", "s.operator_id", "s.customer_id", "s.plan_id", "s.status", "s.start_date", "s.end_date",
		"s.auto_renew", "s.address", "s.created_at", "s.updated_at", "cu.fio", "p.name",
	},
	Spec: bd.ListSpec{
		Allowed: map[string]string{
			"id":          "s.id",
			"status":      "s.status",
			"customer_id": "s.customer_id",
			"plan_id":     "s.plan_id",
			"operator_id": "s.operator_id",
			"start_date":  "s.start_date",
			"end_date":    "s.end_date",
			"auto_renew":  "s.auto_renew",
			"created_at":  "s.created_at",
		},
		Search:       []string{"s.address", "cu.fio", "p.name"},
		DefaultOrder: "s.id DESC",
	},
	CountColumn:  "s.id",
	StatusColumn: "s.status",
}

type SubscriptionRepositoryInterface interface {
	GetSubscriptions(ctx context.Context, filter types.Filter, scope sq.Sqlizer) ([]entities.Subscription, uint64, error)
	GetStats(ctx context.Context, filter types.Filter, scope sq.Sqlizer) (types.StatusStats, error)
	FindByID(ctx context.Context, q Querier, id uint64) (*entities.Subscription, error)
	Create(ctx context.Context, tx pgx.Tx, s *entities.Subscription) error
	Update(ctx context.Context, tx pgx.Tx, s *entities.Subscription) error
	Delete(ctx context.Context, tx pgx.Tx, id uint64) error
}

type SubscriptionRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewSubscriptionRepository(storage *pgxpool.Pool, logger *zap.Logger) SubscriptionRepositoryInterface {
	return &SubscriptionRepository{storage: storage, logger: logger}
}

func scanSubscription(row pgx.Row) (*entities.Subscription, error) {
	var s entities.Subscription
	err := row.Scan(&s.ID, &s.OperatorID, &s.CustomerID, &s.PlanID, &s.Status, &s.StartDate, &s.EndDate,
		&s.AutoRenew, &s.Address, &s.CreatedAt, &s.UpdatedAt, &s.CustomerName, &s.PlanName)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SubscriptionRepository) GetSubscriptions(ctx context.Context, filter types.Filter, scope sq.Sqlizer) ([]entities.Subscription, uint64, error) {
	return fetchList(ctx, r.storage, subscriptionSource, filter, scope, scanSubscription)
}

func (r *SubscriptionRepository) GetStats(ctx context.Context, filter types.Filter, scope sq.Sqlizer) (types.StatusStats, error) {
	return fetchStats(ctx, r.storage, subscriptionSource, filter, scope)
}

func (r *SubscriptionRepository) FindByID(ctx context.Context, q Querier, id uint64) (*entities.Subscription, error) {
	if q == nil {
		q = r.storage
	}
	return fetchOne(ctx, q, subscriptionSource, sq.Eq{"s.id": id}, scanSubscription, "подписка")
}

func (r *SubscriptionRepository) Create(ctx context.Context, tx pgx.Tx, s *entities.Subscription) error {
	query, args, err := psql.Insert(subscriptionTable).
		Columns("operator_id", "customer_id", "plan_id", "status", "start_date", "end_date", "auto_renew", "address").
		Values(s.OperatorID, s.CustomerID, s.PlanID, s.Status, s.StartDate, s.EndDate, s.AutoRenew, s.Address).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return err
	}
	err = tx.QueryRow(ctx, query, args...).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	return mapPgError(err, "подписка")
}

func (r *SubscriptionRepository) Update(ctx context.Context, tx pgx.Tx, s *entities.Subscription) error {
	query, args, err := psql.Update(subscriptionTable).
		Set("plan_id", s.PlanID).
		Set("status", s.Status).
		Set("end_date", s.EndDate).
		Set("auto_renew", s.AutoRenew).
		Set("address", s.Address).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": s.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return err
	}
	err = tx.QueryRow(ctx, query, args...).Scan(&s.UpdatedAt)
	return mapPgError(err, "подписка")
}

func (r *SubscriptionRepository) Delete(ctx context.Context, tx pgx.Tx, id uint64) error {
	return hardDelete(ctx, tx, subscriptionTable, id)
}
