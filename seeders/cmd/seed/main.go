package main

import (
	"context"
	"flag"
	"log"

	"isp-system/pkg/config"
	"isp-system/pkg/database/migrations"
	"isp-system/pkg/database/postgresql"
	"isp-system/seeders"
)

func main() {
	log.Println("======================================================")
	log.Println("       🌱 СИСТЕМА СИДЕРОВ (Наполнение БД)           ")
	log.Println("======================================================")

	runMigrate := flag.Bool("migrate", false, "Применить миграции перед сидерами")
	runCore := flag.Bool("core", false, "Запустить наполнение каталога прав")
	runRoles := flag.Bool("roles", false, "Запустить создание ролей и администратора платформы")
	runDemo := flag.Bool("demo", false, "Загрузить демо-операторов с абонентами, тарифами и складом")
	runAll := flag.Bool("all", false, "Запустить все шаги (эквивалентно -migrate -core -roles -demo)")

	flag.Parse()

	if !*runMigrate && !*runCore && !*runRoles && !*runDemo && !*runAll {
		log.Println("❌ Не выбран ни один сидер для запуска.")
		log.Println("")
		log.Println("Доступные флаги:")
		flag.PrintDefaults()
		log.Println("")
		log.Println("Примеры использования:")
		log.Println("  go run ./seeders/cmd/seed -migrate -core -roles")
		log.Println("  go run ./seeders/cmd/seed -demo")
		log.Println("  go run ./seeders/cmd/seed -all")
		log.Println("======================================================")
		return
	}

	cfg := config.New()
	dbPool, err := postgresql.ConnectDB(cfg.Postgres)
	if err != nil {
		log.Fatalf("❌ Не удалось подключиться к БД: %v", err)
	}
	defer dbPool.Close()

	log.Println("======================================================")

	if *runAll || *runMigrate {
		if err := migrations.Up(context.Background(), dbPool); err != nil {
			log.Fatalf("❌ Ошибка применения миграций: %v", err)
		}
		log.Println("✅ Миграции применены")
		log.Println("======================================================")
	}

	if *runAll || *runCore {
		seeders.SeedCoreDictionaries(dbPool)
		log.Println("======================================================")
	}

	if *runAll || *runRoles {
		// Связи ролей ссылаются на права из -core
		seeders.SeedRolesAndAdmin(dbPool, cfg)
		log.Println("======================================================")
	}

	if *runAll || *runDemo {
		seeders.SeedDemoData(dbPool, cfg)
		log.Println("======================================================")
	}

	log.Println("✅ Все указанные операции сидирования успешно завершены.")
	log.Println("======================================================")
}
