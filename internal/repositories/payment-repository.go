package repositories

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"isp-system/internal/authz"
	"isp-system/internal/entities"
	"isp-system/internal/infrastructure/bd"
	"isp-system/pkg/constants"
	"isp-system/pkg/types"
)

const paymentTable = "payments"

var PaymentScopeColumns = authz.Columns{Operator: "pm.operator_id", Owner: []string{"pm.customer_id"}}

var paymentSource = listSource{
	From:  "payments pm",
	Joins: []string{"JOIN users cu ON cu.id = pm.customer_id"},
	Columns: []string{
		"pm.id", "pm.operator_id", "pm.subscription_id", "pm.customer_id", "pm.amount", "pm.method",
		"pm.status", "pm.reference", "pm.paid_at", "pm.created_at", "pm.updated_at", "cu.fio",
	},
	Spec: bd.ListSpec{
		Allowed: map[string]string{
			"id":              "pm.id",
			"status":          "pm.status",
			"method":          "pm.method",
			"amount":          "pm.amount",
			"customer_id":     "pm.customer_id",
			"subscription_id": "pm.subscription_id",
			"operator_id":     "pm.operator_id",
			"paid_at":         "pm.paid_at",
			"created_at":      "pm.created_at",
		},
		Search:       []string{"pm.reference", "cu.fio"},
		DefaultOrder: "pm.id DESC",
	},
	CountColumn:  "pm.id",
	StatusColumn: "pm.status",
}

type PaymentRepositoryInterface interface {
	GetPayments(ctx context.Context, filter types.Filter, scope sq.Sqlizer) ([]entities.Payment, uint64, error)
	GetStats(ctx context.Context, filter types.Filter, scope sq.Sqlizer) (types.StatusStats, error)
	SumCompleted(ctx context.Context, filter types.Filter, scope sq.Sqlizer) (decimal.Decimal, error)
	Revenue(ctx context.Context, scope sq.Sqlizer, from, to time.Time) (decimal.Decimal, error)
	FindByID(ctx context.Context, q Querier, id uint64) (*entities.Payment, error)
	Create(ctx context.Context, tx pgx.Tx, p *entities.Payment) error
	Update(ctx context.Context, tx pgx.Tx, p *entities.Payment) error
	Delete(ctx context.Context, tx pgx.Tx, id uint64) error
}

type PaymentRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewPaymentRepository(storage *pgxpool.Pool, logger *zap.Logger) PaymentRepositoryInterface {
	return &PaymentRepository{storage: storage, logger: logger}
}

func scanPayment(row pgx.Row) (*entities.Payment, error) {
	var p entities.Payment
	err := row.Scan(&p.ID, &p.OperatorID, &p.SubscriptionID, &p.CustomerID, &p.Amount, &p.Method,
		&p.Status, &p.Reference, &p.PaidAt, &p.CreatedAt, &p.UpdatedAt, &p.CustomerName)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) GetPayments(ctx context.Context, filter types.Filter, scope sq.Sqlizer) ([]entities.Payment, uint64, error) {
	return fetchList(ctx, r.storage, paymentSource, filter, scope, scanPayment)
}

func (r *PaymentRepository) GetStats(ctx context.Context, filter types.Filter, scope sq.Sqlizer) (types.StatusStats, error) {
	return fetchStats(ctx, r.storage, paymentSource, filter, scope)
}

// SumCompleted - сумма завершённых платежей под фильтрами карточек (без filter[status]).
func (r *PaymentRepository) SumCompleted(ctx context.Context, filter types.Filter, scope sq.Sqlizer) (decimal.Decimal, error) {
	return r.sum(ctx, completedSum(filter, scope))
}

func completedSum(filter types.Filter, scope sq.Sqlizer) sq.SelectBuilder {
	b := paymentSource.where(psql.Select("COALESCE(SUM(pm.amount), 0)").From(paymentSource.From), scope)
	return bd.ApplyFilters(b, withoutStatus(filter), paymentSource.Spec).Where(sq.Eq{"pm.status": constants.PaymentCompleted})
}

// Revenue - сумма завершённых платежей с paid_at в [from, to).
func (r *PaymentRepository) Revenue(ctx context.Context, scope sq.Sqlizer, from, to time.Time) (decimal.Decimal, error) {
	b := paymentSource.where(psql.Select("COALESCE(SUM(pm.amount), 0)").From(paymentSource.From), scope).
		Where(sq.Eq{"pm.status": constants.PaymentCompleted}).
		Where(sq.GtOrEq{"pm.paid_at": from}).
		Where(sq.Lt{"pm.paid_at": to})
	return r.sum(ctx, b)
}

func (r *PaymentRepository) sum(ctx context.Context, b sq.SelectBuilder) (decimal.Decimal, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return decimal.Zero, err
	}
	var total decimal.Decimal
	if err := r.storage.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("ошибка подсчета суммы платежей: %w", err)
	}
	return total, nil
}

func (r *PaymentRepository) FindByID(ctx context.Context, q Querier, id uint64) (*entities.Payment, error) {
	if q == nil {
		q = r.storage
	}
	return fetchOne(ctx, q, paymentSource, sq.Eq{"pm.id": id}, scanPayment, "платеж")
}

func (r *PaymentRepository) Create(ctx context.Context, tx pgx.Tx, p *entities.Payment) error {
	query, args, err := psql.Insert(paymentTable).
		Columns("operator_id", "subscription_id", "customer_id", "amount", "method", "status", "reference", "paid_at").
		Values(p.OperatorID, p.SubscriptionID, p.CustomerID, p.Amount, p.Method, p.Status, p.Reference, p.PaidAt).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return err
	}
	err = tx.QueryRow(ctx, query, args...).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	return mapPgError(err, "платеж")
}

func (r *PaymentRepository) Update(ctx context.Context, tx pgx.Tx, p *entities.Payment) error {
	query, args, err := psql.Update(paymentTable).
		Set("method", p.Method).
		Set("status", p.Status).
		Set("reference", p.Reference).
		Set("paid_at", p.PaidAt).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": p.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return err
	}
	err = tx.QueryRow(ctx, query, args...).Scan(&p.UpdatedAt)
	return mapPgError(err, "платеж")
}

func (r *PaymentRepository) Delete(ctx context.Context, tx pgx.Tx, id uint64) error {
	return hardDelete(ctx, tx, paymentTable, id)
}
