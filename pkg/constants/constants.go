package constants

import "time"

//============== ROLES ==============

// Коды ролей. Совпадают с roles.code в БД.
const (
	RoleAdmin      = "ADMIN"
	RoleOperator   = "OPERATOR"
	RoleStaff      = "STAFF"
	RoleTechnician = "TECHNICIAN"
	RoleVendor     = "VENDOR"
	RoleCustomer   = "CUSTOMER"
)

// StaffRoles - роли, которые показываются в разделе "Сотрудники".
var StaffRoles = []string{RoleStaff, RoleTechnician}

//============== ENTITY TYPES ==============

// Типы сущностей для журнала действий и уведомлений.
const (
	EntityOperator     = "operator"
	EntityUser         = "user"
	EntityPlan         = "plan"
	EntitySubscription = "subscription"
	EntityComplaint    = "complaint"
	EntityTicket       = "ticket"
	EntityTask         = "task"
	EntityPayment      = "payment"
	EntityAttendance   = "attendance"
	EntityLeave        = "leave"
	EntityVendor       = "vendor"
	EntityInventory    = "inventory"
	EntityOrder        = "order"
	EntityReturn       = "return"
	EntityShipment     = "shipment"
	EntityRole         = "role"
)

// Действия журнала.
const (
	ActionCreated       = "created"
	ActionUpdated       = "updated"
	ActionDeleted       = "deleted"
	ActionStatusChanged = "status_changed"
	ActionAssigned      = "assigned"
	ActionEscalated     = "escalated"
	ActionAdjusted      = "adjusted"
	ActionImported      = "imported"
	ActionReviewed      = "reviewed"
	ActionAttached      = "attached"
	ActionCheckIn       = "check_in"
	ActionCheckOut      = "check_out"
	ActionPasswordReset = "password_changed"
	ActionPermissions   = "permissions_changed"
)

//============== CACHE KEYS ==============

const (
	// Формат: login_attempts:<login> -> count
	CacheKeyLoginAttempts = "login_attempts:%s"

	// Формат: auth:revoked:<jti> -> "1", живёт до истечения токена
	CacheKeyRevokedToken = "auth:revoked:%s"

	// Формат: auth:permissions:role:<roleID> -> JSON массив имён
	CacheKeyRolePermissions = "auth:permissions:role:%d"

	// Формат: dashboard:user:<userID> -> JSON DashboardDTO
	CacheKeyDashboard = "dashboard:user:%d"
)

//============== ATTENDANCE ==============

// Отметка прихода позже этого времени (локально) считается опозданием.
const (
	LateThresholdHour   = 9
	LateThresholdMinute = 30
)

// ShiftStart возвращает порог опоздания для дня t в его часовом поясе.
func ShiftStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), LateThresholdHour, LateThresholdMinute, 0, 0, t.Location())
}

//============== ORDERS ==============

const OrderNumberPrefix = "PO"
