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

const vendorTable = "vendors"

var VendorScopeColumns = authz.Columns{Operator: "v.operator_id", Owner: []string{"v.user_id"}, Vendor: "v.id"}

var vendorSource = listSource{
	From: "vendors v",
	Columns: []string{
		"v.id", "v.operator_id", "v.user_id", "v.name", "v.contact_person", "v.email", "v.phone",
		"v.address", "v.status", "v.created_at", "v.updated_at",
	},
	Spec: bd.ListSpec{
		Allowed: map[string]string{
			"id":          "v.id",
			"name":        "v.name",
			"status":      "v.status",
			"operator_id": "v.operator_id",
			"created_at":  "v.created_at",
		},
		Search:       []string{"v.name", "v.email", "v.contact_person"},
		DefaultOrder: "v.id DESC",
	},
	Base:         sq.Expr("v.deleted_at IS NULL"),
	CountColumn:  "v.id",
	StatusColumn: "v.status",
}

type VendorRepositoryInterface interface {
	GetVendors(ctx context.Context, filter types.Filter, scope sq.Sqlizer) ([]entities.Vendor, uint64, error)
	GetStats(ctx context.Context, filter types.Filter, scope sq.Sqlizer) (types.StatusStats, error)
	FindByID(ctx context.Context, q Querier, id uint64) (*entities.Vendor, error)
	FindByUserID(ctx context.Context, userID uint64) (*entities.Vendor, error)
	Create(ctx context.Context, tx pgx.Tx, v *entities.Vendor) error
	Update(ctx context.Context, tx pgx.Tx, v *entities.Vendor) error
	Delete(ctx context.Context, tx pgx.Tx, id uint64) error
}

type VendorRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewVendorRepository(storage *pgxpool.Pool, logger *zap.Logger) VendorRepositoryInterface {
	return &VendorRepository{storage: storage, logger: logger}
}

func scanVendor(row pgx.Row) (*entities.Vendor, error) {
	var v entities.Vendor
	err := row.Scan(&v.ID, &v.OperatorID, &v.UserID, &v.Name, &v.ContactPerson, &v.Email, &v.Phone,
		&v.Address, &v.Status, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *VendorRepository) GetVendors(ctx context.Context, filter types.Filter, scope sq.Sqlizer) ([]entities.Vendor, uint64, error) {
	return fetchList(ctx, r.storage, vendorSource, filter, scope, scanVendor)
}

func (r *VendorRepository) GetStats(ctx context.Context, filter types.Filter, scope sq.Sqlizer) (types.StatusStats, error) {
	return fetchStats(ctx, r.storage, vendorSource, filter, scope)
}

func (r *VendorRepository) FindByID(ctx context.Context, q Querier, id uint64) (*entities.Vendor, error) {
	if q == nil {
		q = r.storage
	}
	return fetchOne(ctx, q, vendorSource, sq.Eq{"v.id": id}, scanVendor, "поставщик")
}

func (r *VendorRepository) FindByUserID(ctx context.Context, userID uint64) (*entities.Vendor, error) {
	return fetchOne(ctx, r.storage, vendorSource, sq.Eq{"v.user_id": userID}, scanVendor, "поставщик")
}

func (r *VendorRepository) Create(ctx context.Context, tx pgx.Tx, v *entities.Vendor) error {
	query, args, err := psql.Insert(vendorTable).
		Columns("operator_id", "user_id", "name", "contact_person", "email", "phone", "address", "status").
		Values(v.OperatorID, v.UserID, v.Name, v.ContactPerson, v.Email, v.Phone, v.Address, v.Status).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return err
	}
	err = tx.QueryRow(ctx, query, args...).Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
	return mapPgError(err, "поставщик")
}

func (r *VendorRepository) Update(ctx context.Context, tx pgx.Tx, v *entities.Vendor) error {
	query, args, err := psql.Update(vendorTable).
		Set("user_id", v.UserID).
		Set("name", v.Name).
		Set("contact_person", v.ContactPerson).
		Set("email", v.Email).
		Set("phone", v.Phone).
		Set("address", v.Address).
		Set("status", v.Status).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": v.ID}).
		Where("deleted_at IS NULL").
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return err
	}
	err = tx.QueryRow(ctx, query, args...).Scan(&v.UpdatedAt)
	return mapPgError(err, "поставщик")
}

func (r *VendorRepository) Delete(ctx context.Context, tx pgx.Tx, id uint64) error {
	return softDelete(ctx, tx, vendorTable, id)
}
