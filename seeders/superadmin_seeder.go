package seeders

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"isp-system/pkg/config"
	"isp-system/pkg/constants"
	"isp-system/pkg/utils"
)

func SeedSuperAdmin(db *pgxpool.Pool, cfg *config.Config) error {
	ctx := context.Background()
	log.Println("  - Запуск сидера SuperAdmin...")

	email := cfg.Seeder.AdminEmail
	password := cfg.Seeder.AdminPassword

	if email == "" || password == "" {
		log.Println("    ℹ️  SEED_ADMIN_EMAIL или SEED_ADMIN_PASSWORD не заданы. Пропускаем создание.")
		return nil
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var userID uint64
	err = tx.QueryRow(ctx, "SELECT id FROM users WHERE email = $1 AND deleted_at IS NULL", email).Scan(&userID)
	if err == nil {
		log.Println("    ℹ️  Администратор уже существует. Не трогаем.")
		return tx.Commit(ctx)
	}

	log.Println("    - Создаем администратора платформы...")

	var roleID uint64
	if err := tx.QueryRow(ctx, "SELECT id FROM roles WHERE code = $1", constants.RoleAdmin).Scan(&roleID); err != nil {
		return fmt.Errorf("роль %s не найдена. Запустите сначала -roles", constants.RoleAdmin)
	}

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO users (fio, email, password, role_id, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err = tx.QueryRow(ctx, query,
		"System Administrator", email, hashedPassword, roleID, constants.StatusActive,
	).Scan(&userID)
	if err != nil {
		return fmt.Errorf("ошибка SQL при создании администратора: %w", err)
	}

	log.Printf("    ✅ Пользователь %s успешно создан (id=%d)", email, userID)
	return tx.Commit(ctx)
}
