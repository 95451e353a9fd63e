package authz

// --- СПИСОК ВСЕХ ПЕРМИШЕНОВ В СИСТЕМЕ ---

const (
	// Глобальные
	Superuser = "superuser"

	// Модификаторы области (Scopes)
	ScopeAll      = "scope:all"
	ScopeOperator = "scope:operator"
	ScopeOwn      = "scope:own"

	// Операторы (тенанты)
	OperatorsView   = "operators:view"
	OperatorsCreate = "operators:create"
	OperatorsUpdate = "operators:update"
	OperatorsDelete = "operators:delete"

	// Пользователи
	UsersView   = "users:view"
	UsersCreate = "users:create"
	UsersUpdate = "users:update"
	UsersDelete = "users:delete"

	// Сотрудники
	StaffView   = "staff:view"
	StaffCreate = "staff:create"
	StaffUpdate = "staff:update"
	StaffDelete = "staff:delete"

	// Тарифы
	PlansView   = "plans:view"
	PlansCreate = "plans:create"
	PlansUpdate = "plans:update"
	PlansDelete = "plans:delete"

	// Подписки
	SubscriptionsView   = "subscriptions:view"
	SubscriptionsCreate = "subscriptions:create"
	SubscriptionsUpdate = "subscriptions:update"
	SubscriptionsDelete = "subscriptions:delete"

	// Жалобы
	ComplaintsView   = "complaints:view"
	ComplaintsCreate = "complaints:create"
	ComplaintsUpdate = "complaints:update"
	ComplaintsDelete = "complaints:delete"
	ComplaintsExport = "complaints:export"

	// Тикеты
	TicketsView   = "tickets:view"
	TicketsCreate = "tickets:create"
	TicketsUpdate = "tickets:update"
	TicketsDelete = "tickets:delete"

	// Задачи техников
	TasksView   = "tasks:view"
	TasksCreate = "tasks:create"
	TasksUpdate = "tasks:update"
	TasksDelete = "tasks:delete"
	TasksAssign = "tasks:assign"

	// Платежи
	PaymentsView   = "payments:view"
	PaymentsCreate = "payments:create"
	PaymentsUpdate = "payments:update"
	PaymentsDelete = "payments:delete"
	PaymentsExport = "payments:export"

	// Посещаемость
	AttendanceView   = "attendance:view"
	AttendanceCreate = "attendance:create"
	AttendanceUpdate = "attendance:update"
	AttendanceDelete = "attendance:delete"

	// Отпуска
	LeavesView   = "leaves:view"
	LeavesCreate = "leaves:create"
	LeavesUpdate = "leaves:update"
	LeavesDelete = "leaves:delete"
	LeavesReview = "leaves:review"

	// Поставщики
	VendorsView   = "vendors:view"
	VendorsCreate = "vendors:create"
	VendorsUpdate = "vendors:update"
	VendorsDelete = "vendors:delete"

	// Склад
	InventoryView   = "inventory:view"
	InventoryCreate = "inventory:create"
	InventoryUpdate = "inventory:update"
	InventoryDelete = "inventory:delete"
	InventoryImport = "inventory:import"
	InventoryExport = "inventory:export"

	// Закупки
	OrdersView   = "orders:view"
	OrdersCreate = "orders:create"
	OrdersUpdate = "orders:update"
	OrdersDelete = "orders:delete"

	// Возвраты
	ReturnsView   = "returns:view"
	ReturnsCreate = "returns:create"
	ReturnsUpdate = "returns:update"
	ReturnsDelete = "returns:delete"

	// Доставка
	ShipmentsView   = "shipments:view"
	ShipmentsCreate = "shipments:create"
	ShipmentsUpdate = "shipments:update"
	ShipmentsDelete = "shipments:delete"

	// Журнал и дашборд
	LogsView      = "logs:view"
	DashboardView = "dashboard:view"

	// Роли
	RolesView   = "roles:view"
	RolesUpdate = "roles:update"
)

// Descriptions - каталог для сидера и GET /api/permissions.
var Descriptions = map[string]string{
	Superuser:     "Полный доступ ко всему",
	ScopeAll:      "Область: все операторы",
	ScopeOperator: "Область: свой оператор",
	ScopeOwn:      "Область: только свои записи",

	OperatorsView: "Просмотр операторов", OperatorsCreate: "Создание операторов",
	OperatorsUpdate: "Изменение операторов", OperatorsDelete: "Удаление операторов",

	UsersView: "Просмотр пользователей", UsersCreate: "Создание пользователей",
	UsersUpdate: "Изменение пользователей", UsersDelete: "Удаление пользователей",

	StaffView: "Просмотр сотрудников", StaffCreate: "Создание сотрудников",
	StaffUpdate: "Изменение сотрудников", StaffDelete: "Удаление сотрудников",

	PlansView: "Просмотр тарифов", PlansCreate: "Создание тарифов",
	PlansUpdate: "Изменение тарифов", PlansDelete: "Удаление тарифов",

	SubscriptionsView: "Просмотр подписок", SubscriptionsCreate: "Создание подписок",
	SubscriptionsUpdate: "Изменение подписок", SubscriptionsDelete: "Удаление подписок",

	ComplaintsView: "Просмотр жалоб", ComplaintsCreate: "Создание жалоб",
	ComplaintsUpdate: "Изменение жалоб", ComplaintsDelete: "Удаление жалоб",
	ComplaintsExport: "Выгрузка жалоб в Excel",

	TicketsView: "Просмотр тикетов", TicketsCreate: "Создание тикетов",
	TicketsUpdate: "Изменение тикетов", TicketsDelete: "Удаление тикетов",

	TasksView: "Просмотр задач", TasksCreate: "Создание задач",
	TasksUpdate: "Изменение задач", TasksDelete: "Удаление задач",
	TasksAssign: "Назначение техника",

	PaymentsView: "Просмотр платежей", PaymentsCreate: "Создание платежей",
	PaymentsUpdate: "Изменение платежей", PaymentsDelete: "Удаление платежей",
	PaymentsExport: "Выгрузка платежей в Excel",

	AttendanceView: "Просмотр посещаемости", AttendanceCreate: "Отметка прихода/ухода",
	AttendanceUpdate: "Изменение посещаемости", AttendanceDelete: "Удаление посещаемости",

	LeavesView: "Просмотр отпусков", LeavesCreate: "Заявка на отпуск",
	LeavesUpdate: "Изменение заявок на отпуск", LeavesDelete: "Удаление заявок на отпуск",
	LeavesReview: "Согласование отпусков",

	VendorsView: "Просмотр поставщиков", VendorsCreate: "Создание поставщиков",
	VendorsUpdate: "Изменение поставщиков", VendorsDelete: "Удаление поставщиков",

	InventoryView: "Просмотр склада", InventoryCreate: "Создание позиций склада",
	InventoryUpdate: "Изменение позиций склада", InventoryDelete: "Удаление позиций склада",
	InventoryImport: "Импорт склада из Excel", InventoryExport: "Выгрузка склада в Excel",

	OrdersView: "Просмотр закупок", OrdersCreate: "Создание закупок",
	OrdersUpdate: "Изменение закупок", OrdersDelete: "Удаление закупок",

	ReturnsView: "Просмотр возвратов", ReturnsCreate: "Создание возвратов",
	ReturnsUpdate: "Изменение возвратов", ReturnsDelete: "Удаление возвратов",

	ShipmentsView: "Просмотр доставок", ShipmentsCreate: "Создание доставок",
	ShipmentsUpdate: "Изменение доставок", ShipmentsDelete: "Удаление доставок",

	LogsView:      "Просмотр журнала действий",
	DashboardView: "Просмотр дашборда",
	RolesView:     "Просмотр ролей и привилегий",
	RolesUpdate:   "Изменение привилегий ролей",
}

func crud(resource string) []string {
	return []string{resource + ":view", resource + ":create", resource + ":update", resource + ":delete"}
}

func join(groups ...[]string) []string {
	out := make([]string, 0)
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// RoleDefaults - привилегии ролей по умолчанию (сидер).
var RoleDefaults = map[string][]string{
	"ADMIN": {Superuser, ScopeAll},
	"OPERATOR": join(
		[]string{ScopeOperator, OperatorsView},
		crud("users"), crud("staff"), crud("plans"), crud("subscriptions"), crud("complaints"),
		crud("tickets"), crud("tasks"), crud("payments"), crud("attendance"), crud("leaves"),
		crud("vendors"), crud("inventory"), crud("orders"), crud("returns"), crud("shipments"),
		[]string{ComplaintsExport, PaymentsExport, InventoryExport, InventoryImport, TasksAssign, LeavesReview,
			LogsView, DashboardView, RolesView},
	),
	"STAFF": {
		ScopeOperator, DashboardView,
		PlansView, SubscriptionsView, SubscriptionsCreate, SubscriptionsUpdate,
		ComplaintsView, ComplaintsCreate, ComplaintsUpdate, ComplaintsExport,
		TicketsView, TicketsCreate, TicketsUpdate,
		TasksView, TasksCreate, TasksUpdate, TasksAssign,
		PaymentsView, PaymentsCreate,
		InventoryView, AttendanceView, AttendanceCreate, LeavesView, LeavesCreate, LeavesUpdate,
	},
	"TECHNICIAN": {
		ScopeOwn, DashboardView,
		TasksView, TasksUpdate,
		AttendanceView, AttendanceCreate, LeavesView, LeavesCreate, LeavesUpdate,
	},
	"VENDOR": {
		ScopeOwn, DashboardView,
		VendorsView, VendorsUpdate, InventoryView,
		OrdersView, OrdersUpdate, ReturnsView, ReturnsCreate, ShipmentsView, ShipmentsCreate, ShipmentsUpdate,
	},
	"CUSTOMER": {
		ScopeOwn, DashboardView,
		PlansView, SubscriptionsView, ComplaintsView, ComplaintsCreate, PaymentsView,
	},
}
