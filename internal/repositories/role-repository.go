package repositories

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"isp-system/internal/entities"
)

type RoleRepositoryInterface interface {
	GetRoles(ctx context.Context) ([]entities.Role, error)
	FindByID(ctx context.Context, id uint64) (*entities.Role, error)
	FindByCode(ctx context.Context, code string) (*entities.Role, error)
	GetRolePermissionsNames(ctx context.Context, roleID uint64) ([]string, error)
	GetRolePermissions(ctx context.Context, roleID uint64) ([]entities.Permission, error)
	ReplacePermissions(ctx context.Context, tx pgx.Tx, roleID uint64, permissionIDs []uint64) error
}

type RoleRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewRoleRepository(storage *pgxpool.Pool, logger *zap.Logger) RoleRepositoryInterface {
	return &RoleRepository{storage: storage, logger: logger}
}

func scanRole(row pgx.Row) (*entities.Role, error) {
	var role entities.Role
	if err := row.Scan(&role.ID, &role.Code, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt); err != nil {
		return nil, err
	}
	return &role, nil
}

const roleColumns = "id, code, name, description, created_at, updated_at"

func (r *RoleRepository) GetRoles(ctx context.Context) ([]entities.Role, error) {
	rows, err := r.storage.Query(ctx, "SELECT "+roleColumns+" FROM roles ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("ошибка получения ролей: %w", err)
	}
	defer rows.Close()

	roles := make([]entities.Role, 0)
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования роли: %w", err)
		}
		roles = append(roles, *role)
	}
	return roles, rows.Err()
}

func (r *RoleRepository) FindByID(ctx context.Context, id uint64) (*entities.Role, error) {
	role, err := scanRole(r.storage.QueryRow(ctx, "SELECT "+roleColumns+" FROM roles WHERE id = $1", id))
	if err != nil {
		return nil, mapPgError(err, "роль")
	}
	return role, nil
}

func (r *RoleRepository) FindByCode(ctx context.Context, code string) (*entities.Role, error) {
	role, err := scanRole(r.storage.QueryRow(ctx, "SELECT "+roleColumns+" FROM roles WHERE code = $1", code))
	if err != nil {
		return nil, mapPgError(err, "роль")
	}
	return role, nil
}

func (r *RoleRepository) GetRolePermissions(ctx context.Context, roleID uint64) ([]entities.Permission, error) {
	query := `
		SELECT p.id, p.name, p.description, p.created_at
		FROM permissions p
		JOIN role_permissions rp ON rp.permission_id = p.id
		WHERE rp.role_id = $1
		ORDER BY p.name`
	rows, err := r.storage.Query(ctx, query, roleID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения привилегий роли: %w", err)
	}
	defer rows.Close()

	perms := make([]entities.Permission, 0)
	for rows.Next() {
		var p entities.Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования привилегии: %w", err)
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

func (r *RoleRepository) GetRolePermissionsNames(ctx context.Context, roleID uint64) ([]string, error) {
	perms, err := r.GetRolePermissions(ctx, roleID)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(perms))
	for _, p := range perms {
		names = append(names, p.Name)
	}
	return names, nil
}

// ReplacePermissions заменяет набор привилегий роли целиком.
func (r *RoleRepository) ReplacePermissions(ctx context.Context, tx pgx.Tx, roleID uint64, permissionIDs []uint64) error {
	if _, err := tx.Exec(ctx, "DELETE FROM role_permissions WHERE role_id = $1", roleID); err != nil {
		return mapPgError(err, "привилегии роли")
	}
	if len(permissionIDs) == 0 {
		return nil
	}

	insert := psql.Insert("role_permissions").Columns("role_id", "permission_id")
	for _, id := range permissionIDs {
		insert = insert.Values(roleID, id)
	}
	query, args, err := insert.Suffix("ON CONFLICT DO NOTHING").ToSql()
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, query, args...)
	return mapPgError(err, "привилегии роли")
}

type PermissionRepositoryInterface interface {
	GetPermissions(ctx context.Context) ([]entities.Permission, error)
	CountExisting(ctx context.Context, ids []uint64) (int, error)
}

type PermissionRepository struct {
	storage *pgxpool.Pool
}

func NewPermissionRepository(storage *pgxpool.Pool) PermissionRepositoryInterface {
	return &PermissionRepository{storage: storage}
}

func (r *PermissionRepository) GetPermissions(ctx context.Context) ([]entities.Permission, error) {
	rows, err := r.storage.Query(ctx, "SELECT id, name, description, created_at FROM permissions ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("ошибка получения привилегий: %w", err)
	}
	defer rows.Close()

	perms := make([]entities.Permission, 0)
	for rows.Next() {
		var p entities.Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования привилегии: %w", err)
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

// CountExisting - сколько из переданных id реально есть в таблице.
func (r *PermissionRepository) CountExisting(ctx context.Context, ids []uint64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query, args, err := psql.Select("COUNT(*)").From("permissions").Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return 0, err
	}
	var n int
	if err := r.storage.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("ошибка проверки привилегий: %w", err)
	}
	return n, nil
}
