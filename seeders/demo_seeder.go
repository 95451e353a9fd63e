package seeders

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"isp-system/internal/entities"
	"isp-system/internal/services"
	"isp-system/pkg/constants"
	"isp-system/pkg/utils"
)

// Объём демо-данных на одного оператора.
const (
	demoOperators   = 2
	demoStaff       = 3
	demoTechnicians = 3
	demoCustomers   = 12
	demoInventory   = 10
)

var demoPlans = []struct {
	Name  string
	Code  string
	Speed int
	Limit *int
	Price string
	Cycle string
}{
	{Name: "Домашний 50", Code: "HOME50", Speed: 50, Price: "120.00", Cycle: "monthly"},
	{Name: "Домашний 100", Code: "HOME100", Speed: 100, Price: "180.00", Cycle: "monthly"},
	{Name: "Бизнес 300", Code: "BIZ300", Speed: 300, Price: "1500.00", Cycle: "quarterly"},
	{Name: "Мобильный 20", Code: "MOB20", Speed: 20, Limit: intPtr(50), Price: "60.00", Cycle: "monthly"},
}

func intPtr(v int) *int { return &v }

// demoOperator - то, что нужно следующим шагам сидера.
type demoOperator struct {
	id          uint64
	code        string
	operatorID  uint64
	staffIDs    []uint64
	techIDs     []uint64
	customerIDs []uint64
	planIDs     []uint64
	vendorID    uint64
}

type demoSeeder struct {
	tx       pgx.Tx
	faker    *gofakeit.Faker
	password string
	roles    map[string]uint64
}

// SeedDemo наполняет БД правдоподобными данными для ручной проверки порталов.
// Повторный запуск пропускается, если демо-оператор уже есть.
func SeedDemo(db *pgxpool.Pool, password string) error {
	ctx := context.Background()
	log.Println("▶️  Запуск наполнения демо-данными...")

	var exists bool
	if err := db.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM operators WHERE code LIKE 'DEMO%')").Scan(&exists); err != nil {
		return err
	}
	if exists {
		log.Println("    ℹ️  Демо-данные уже загружены. Пропускаем.")
		return nil
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return err
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	s := &demoSeeder{tx: tx, faker: gofakeit.New(0), password: hashed, roles: make(map[string]uint64)}
	if err := s.loadRoles(ctx); err != nil {
		return err
	}

	for i := 1; i <= demoOperators; i++ {
		op, err := s.seedOperator(ctx, i)
		if err != nil {
			return fmt.Errorf("оператор %d: %w", i, err)
		}
		steps := []struct {
			name string
			fn   func(context.Context, *demoOperator) error
		}{
			{"пользователи", s.seedUsers},
			{"тарифы", s.seedPlans},
			{"подписки и платежи", s.seedSubscriptions},
			{"жалобы, тикеты, задачи", s.seedSupport},
			{"поставщик и склад", s.seedSupply},
			{"посещаемость", s.seedAttendance},
		}
		for _, step := range steps {
			if err := step.fn(ctx, op); err != nil {
				return fmt.Errorf("оператор %s, %s: %w", op.code, step.name, err)
			}
		}
		log.Printf("    ✅ Оператор %s (id=%d) заполнен", op.code, op.id)
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	log.Printf("✅ Демо-данные загружены. Пароль всех демо-пользователей: %s", password)
	return nil
}

func (s *demoSeeder) loadRoles(ctx context.Context) error {
	rows, err := s.tx.Query(ctx, "SELECT id, code FROM roles")
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var id uint64
		var code string
		if err := rows.Scan(&id, &code); err != nil {
			return err
		}
		s.roles[code] = id
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if len(s.roles) < len(rolesData) {
		return fmt.Errorf("роли не найдены. Запустите сначала -roles")
	}
	return nil
}

func (s *demoSeeder) seedOperator(ctx context.Context, n int) (*demoOperator, error) {
	op := &demoOperator{code: fmt.Sprintf("DEMO%d", n)}
	err := s.tx.QueryRow(ctx,
		`INSERT INTO operators (name, code, email, phone, address, status) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		s.faker.Company()+" Telecom", op.code, s.faker.Email(), s.faker.Phone(), s.faker.Address().Address, constants.StatusActive,
	).Scan(&op.id)
	return op, err
}

func (s *demoSeeder) insertUser(ctx context.Context, op *demoOperator, roleCode, email, position string) (uint64, error) {
	var hireDate *time.Time
	if position != "" {
		d := s.faker.DateRange(time.Now().AddDate(-5, 0, 0), time.Now().AddDate(0, -1, 0))
		hireDate = &d
	}
	var id uint64
	err := s.tx.QueryRow(ctx,
		`INSERT INTO users (fio, email, phone, password, role_id, operator_id, status, position, hire_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9) RETURNING id`,
		s.faker.Name(), email, s.faker.Phone(), s.password, s.roles[roleCode], op.id, constants.StatusActive, position, hireDate,
	).Scan(&id)
	return id, err
}

func (s *demoSeeder) seedUsers(ctx context.Context, op *demoOperator) error {
	domain := strings.ToLower(op.code) + ".local"

	var err error
	if op.operatorID, err = s.insertUser(ctx, op, constants.RoleOperator, "operator@"+domain, ""); err != nil {
		return err
	}
	for i := 1; i <= demoStaff; i++ {
		id, err := s.insertUser(ctx, op, constants.RoleStaff, fmt.Sprintf("staff%d@%s", i, domain), s.faker.JobTitle())
		if err != nil {
			return err
		}
		op.staffIDs = append(op.staffIDs, id)
	}
	for i := 1; i <= demoTechnicians; i++ {
		id, err := s.insertUser(ctx, op, constants.RoleTechnician, fmt.Sprintf("tech%d@%s", i, domain), "Техник")
		if err != nil {
			return err
		}
		op.techIDs = append(op.techIDs, id)
	}
	for i := 1; i <= demoCustomers; i++ {
		id, err := s.insertUser(ctx, op, constants.RoleCustomer, fmt.Sprintf("customer%d@%s", i, domain), "")
		if err != nil {
			return err
		}
		op.customerIDs = append(op.customerIDs, id)
	}
	return nil
}

func (s *demoSeeder) seedPlans(ctx context.Context, op *demoOperator) error {
	for _, p := range demoPlans {
		var id uint64
		err := s.tx.QueryRow(ctx,
			`INSERT INTO plans (operator_id, name, code, speed_mbps, data_limit_gb, price, billing_cycle, status)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
			op.id, p.Name, p.Code, p.Speed, p.Limit, decimal.RequireFromString(p.Price), p.Cycle, constants.StatusActive,
		).Scan(&id)
		if err != nil {
			return err
		}
		op.planIDs = append(op.planIDs, id)
	}
	return nil
}

func (s *demoSeeder) seedSubscriptions(ctx context.Context, op *demoOperator) error {
	statuses := []string{
		constants.SubscriptionActive, constants.SubscriptionActive, constants.SubscriptionActive,
		constants.SubscriptionPending, constants.SubscriptionSuspended, constants.SubscriptionCancelled,
	}
	methods := []string{"cash", "card", "bank_transfer", "mobile"}

	for i, customerID := range op.customerIDs {
		planIdx := s.faker.Number(0, len(demoPlans)-1)
		status := statuses[i%len(statuses)]
		start := s.faker.DateRange(time.Now().AddDate(-1, 0, 0), time.Now().AddDate(0, -1, 0))

		var subID uint64
		err := s.tx.QueryRow(ctx,
			`INSERT INTO subscriptions (operator_id, customer_id, plan_id, status, start_date, auto_renew, address)
			 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
			op.id, customerID, op.planIDs[planIdx], status, start, s.faker.Bool(), s.faker.Address().Address,
		).Scan(&subID)
		if err != nil {
			return err
		}
		if status == constants.SubscriptionPending {
			continue
		}

		price := decimal.RequireFromString(demoPlans[planIdx].Price)
		months := s.faker.Number(1, 4)
		for m := 0; m < months; m++ {
			paidAt := start.AddDate(0, m, 0)
			paymentStatus := constants.PaymentCompleted
			if s.faker.Number(1, 10) == 1 {
				paymentStatus = constants.PaymentFailed
			}
			_, err := s.tx.Exec(ctx,
				`INSERT INTO payments (operator_id, subscription_id, customer_id, amount, method, status, reference, paid_at, created_at)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)`,
				op.id, subID, customerID, price, methods[s.faker.Number(0, len(methods)-1)], paymentStatus,
				fmt.Sprintf("%s-%s", op.code, strings.ToUpper(s.faker.LetterN(10))), paidAt,
			)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *demoSeeder) seedSupport(ctx context.Context, op *demoOperator) error {
	categories := []string{"connectivity", "billing", "speed", "hardware", "other"}
	statuses := []string{constants.IssueOpen, constants.IssueInProgress, constants.IssueResolved, constants.IssueClosed}

	for i, customerID := range op.customerIDs {
		if i%2 == 1 {
			continue
		}
		status := statuses[s.faker.Number(0, len(statuses)-1)]
		priority := constants.Priorities[s.faker.Number(0, len(constants.Priorities)-1)]
		assignee := op.staffIDs[s.faker.Number(0, len(op.staffIDs)-1)]

		var resolvedAt *time.Time
		if status == constants.IssueResolved || status == constants.IssueClosed {
			t := s.faker.DateRange(time.Now().AddDate(0, 0, -20), time.Now())
			resolvedAt = &t
		}

		var complaintID uint64
		err := s.tx.QueryRow(ctx,
			`INSERT INTO complaints (operator_id, customer_id, subject, description, category, priority, status, assigned_to, resolved_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`,
			op.id, customerID, complaintSubjects[s.faker.Number(0, len(complaintSubjects)-1)], s.faker.Sentence(12),
			categories[s.faker.Number(0, len(categories)-1)], priority, status, assignee, resolvedAt,
		).Scan(&complaintID)
		if err != nil {
			return err
		}

		if priority != constants.PriorityHigh && priority != constants.PriorityCritical {
			continue
		}

		// Серьёзные жалобы доходят до тикета и выезда техника.
		var ticketID uint64
		err = s.tx.QueryRow(ctx,
			`INSERT INTO tickets (operator_id, complaint_id, title, description, priority, status, created_by, assigned_to)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
			op.id, complaintID, fmt.Sprintf("Жалоба #%d", complaintID), s.faker.Sentence(10), priority,
			constants.IssueInProgress, assignee, assignee,
		).Scan(&ticketID)
		if err != nil {
			return err
		}

		taskStatus := constants.TaskAssigned
		var completedAt *time.Time
		if status == constants.IssueResolved || status == constants.IssueClosed {
			taskStatus, completedAt = constants.TaskCompleted, resolvedAt
		}
		scheduled := s.faker.DateRange(time.Now().AddDate(0, 0, -10), time.Now().AddDate(0, 0, 5))
		_, err = s.tx.Exec(ctx,
			`INSERT INTO tasks (operator_id, title, type, address, scheduled_at, technician_id, ticket_id, complaint_id, status, completed_at, created_by)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			op.id, "Выезд по тикету #"+fmt.Sprint(ticketID), "repair", s.faker.Address().Address, scheduled,
			op.techIDs[s.faker.Number(0, len(op.techIDs)-1)], ticketID, complaintID, taskStatus, completedAt, assignee,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *demoSeeder) seedSupply(ctx context.Context, op *demoOperator) error {
	vendorUserID, err := s.insertUser(ctx, op, constants.RoleVendor, "vendor@"+strings.ToLower(op.code)+".local", "")
	if err != nil {
		return err
	}
	err = s.tx.QueryRow(ctx,
		`INSERT INTO vendors (operator_id, user_id, name, contact_person, email, phone, address, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		op.id, vendorUserID, s.faker.Company(), s.faker.Name(), s.faker.Email(), s.faker.Phone(), s.faker.Address().Address, constants.StatusActive,
	).Scan(&op.vendorID)
	if err != nil {
		return err
	}

	categories := make([]string, 0, len(inventoryNames))
	for c := range inventoryNames {
		categories = append(categories, c)
	}

	type orderLine struct {
		itemID uint64
		name   string
		price  decimal.Decimal
	}
	lines := make([]orderLine, 0, 3)

	for i := 1; i <= demoInventory; i++ {
		category := categories[s.faker.Number(0, len(categories)-1)]
		names := inventoryNames[category]
		name := names[s.faker.Number(0, len(names)-1)]
		quantity := s.faker.Number(0, 60)
		minQuantity := s.faker.Number(5, 15)
		price := decimal.NewFromFloat(s.faker.Price(5, 400)).Round(2)

		var itemID uint64
		err := s.tx.QueryRow(ctx,
			`INSERT INTO inventory_items (operator_id, vendor_id, sku, name, category, quantity, min_quantity, unit_price, location, status)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`,
			op.id, op.vendorID, fmt.Sprintf("%s-%03d", op.code, i), name, category, quantity, minQuantity, price,
			"Склад "+s.faker.City(), entities.DeriveStockStatus(quantity, minQuantity),
		).Scan(&itemID)
		if err != nil {
			return err
		}
		if len(lines) < cap(lines) {
			lines = append(lines, orderLine{itemID: itemID, name: name, price: price})
		}
	}

	total := decimal.Zero
	quantities := make([]int, len(lines))
	for i, l := range lines {
		quantities[i] = s.faker.Number(1, 20)
		total = total.Add(l.price.Mul(decimal.NewFromInt(int64(quantities[i]))))
	}

	var orderID uint64
	err = s.tx.QueryRow(ctx,
		`INSERT INTO orders (operator_id, vendor_id, order_number, status, total, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		op.id, op.vendorID, services.NewOrderNumber(), constants.OrderShipped, total, op.operatorID,
	).Scan(&orderID)
	if err != nil {
		return err
	}
	for i, l := range lines {
		if _, err := s.tx.Exec(ctx,
			`INSERT INTO order_items (order_id, inventory_item_id, name, quantity, unit_price) VALUES ($1, $2, $3, $4, $5)`,
			orderID, l.itemID, l.name, quantities[i], l.price,
		); err != nil {
			return err
		}
	}

	_, err = s.tx.Exec(ctx,
		`INSERT INTO shipments (operator_id, order_id, vendor_id, carrier, tracking_number, status, shipped_at, estimated_delivery)
		 VALUES ($1, $2, $3, $4, $5, $6, NOW(), CURRENT_DATE + 3)`,
		op.id, orderID, op.vendorID, s.faker.Company()+" Logistics", strings.ToUpper(s.faker.LetterN(12)), constants.ShipmentInTransit,
	)
	return err
}

func (s *demoSeeder) seedAttendance(ctx context.Context, op *demoOperator) error {
	employees := append(append([]uint64{}, op.staffIDs...), op.techIDs...)
	today := time.Now().Truncate(24 * time.Hour)

	for day := 1; day <= 5; day++ {
		date := today.AddDate(0, 0, -day)
		for _, userID := range employees {
			checkIn := date.Add(time.Duration(s.faker.Number(8*60+30, 10*60)) * time.Minute)
			status := constants.AttendancePresent
			if checkIn.Sub(date) > 9*time.Hour+30*time.Minute {
				status = constants.AttendanceLate
			}
			_, err := s.tx.Exec(ctx,
				`INSERT INTO attendance (operator_id, user_id, date, check_in, check_out, status)
				 VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT (user_id, date) DO NOTHING`,
				op.id, userID, date, checkIn, checkIn.Add(9*time.Hour), status,
			)
			if err != nil {
				return err
			}
		}
	}

	_, err := s.tx.Exec(ctx,
		`INSERT INTO leave_requests (operator_id, user_id, type, start_date, end_date, reason, status)
		 VALUES ($1, $2, 'annual', CURRENT_DATE + 14, CURRENT_DATE + 21, $3, $4)`,
		op.id, op.staffIDs[0], s.faker.Sentence(6), constants.LeavePending,
	)
	return err
}
