package seeders

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"isp-system/pkg/config"
)

// SeedCoreDictionaries наполняет каталог прав. Зависимостей нет.
func SeedCoreDictionaries(db *pgxpool.Pool) {
	ctx := context.Background()
	log.Println("▶️  Запуск наполнения базовых справочников...")

	if err := seedPermissions(ctx, db); err != nil {
		log.Fatalf("❌ Ошибка наполнения Прав (Permissions): %v", err)
	}
	log.Println("✅ Наполнение базовых справочников завершено!")
}

// SeedRolesAndAdmin настраивает роли, их связи и создает администратора платформы.
func SeedRolesAndAdmin(db *pgxpool.Pool, cfg *config.Config) {
	ctx := context.Background()
	log.Println("▶️  Запуск настройки ролей и администратора...")

	if err := seedRoles(ctx, db); err != nil {
		log.Fatalf("❌ Ошибка наполнения Ролей (Roles): %v", err)
	}
	if err := seedRolePermissions(ctx, db); err != nil {
		log.Fatalf("❌ Ошибка наполнения Связей Ролей и Прав: %v", err)
	}
	if err := SeedSuperAdmin(db, cfg); err != nil {
		log.Fatalf("❌ Ошибка создания SuperAdmin: %v", err)
	}

	log.Println("✅ Настройка ролей и администратора завершена!")
}

// SeedDemoData - демо-операторы со всеми порталами. Требует -roles.
func SeedDemoData(db *pgxpool.Pool, cfg *config.Config) {
	if err := SeedDemo(db, cfg.Seeder.DemoPassword); err != nil {
		log.Fatalf("❌ Ошибка наполнения демо-данных: %v", err)
	}
}
