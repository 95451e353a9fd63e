package seeders

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"isp-system/internal/authz"
)

// false - ничего не удалять, только добавить недостающие связи.
// Права ролей могут меняться через PUT /api/roles/:id/permissions, их не трогаем.
const fullSync_RolePermissions = false

func seedRolePermissions(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - Наполнение таблицы 'role_permissions'...")

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if fullSync_RolePermissions {
		log.Println("    - Стратегия: Полная перезапись (TRUNCATE)")
		if _, err := tx.Exec(ctx, "TRUNCATE TABLE role_permissions"); err != nil {
			return err
		}
	} else {
		log.Println("    - Стратегия: Только добавление новых связей (ADDITIVE)")
	}

	query := `INSERT INTO role_permissions (role_id, permission_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`

	for roleCode, permissionNames := range authz.RoleDefaults {
		var roleID uint64
		if err := tx.QueryRow(ctx, "SELECT id FROM roles WHERE code = $1", roleCode).Scan(&roleID); err != nil {
			log.Printf("ПРЕДУПРЕЖДЕНИЕ: Роль '%s' не найдена, пропускаем.", roleCode)
			continue
		}

		for _, permName := range permissionNames {
			var permID uint64
			if err := tx.QueryRow(ctx, "SELECT id FROM permissions WHERE name = $1", permName).Scan(&permID); err != nil {
				log.Printf("ПРЕДУПРЕЖДЕНИЕ: Привилегия '%s' не найдена, пропускаем.", permName)
				continue
			}
			if _, err := tx.Exec(ctx, query, roleID, permID); err != nil {
				return err
			}
		}
	}
	return tx.Commit(ctx)
}
