package constants

import "slices"

// --- Операторы, пользователи, тарифы, поставщики ---
const (
	StatusActive      = "active"
	StatusInactive    = "inactive"
	StatusSuspended   = "suspended"
	StatusBlacklisted = "blacklisted"
)

// --- Подписки ---
const (
	SubscriptionPending   = "pending"
	SubscriptionActive    = "active"
	SubscriptionSuspended = "suspended"
	SubscriptionCancelled = "cancelled"
)

// --- Жалобы и тикеты ---
const (
	IssueOpen       = "open"
	IssueInProgress = "in_progress"
	IssueOnHold     = "on_hold"
	IssueResolved   = "resolved"
	IssueClosed     = "closed"
)

// --- Приоритеты, по возрастанию ---
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

var Priorities = []string{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

// --- Задачи техников ---
const (
	TaskPending    = "pending"
	TaskAssigned   = "assigned"
	TaskInProgress = "in_progress"
	TaskCompleted  = "completed"
	TaskCancelled  = "cancelled"
)

// --- Платежи ---
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
	PaymentRefunded  = "refunded"
)

// --- Посещаемость ---
const (
	AttendancePresent = "present"
	AttendanceAbsent  = "absent"
	AttendanceLate    = "late"
	AttendanceHalfDay = "half_day"
	AttendanceOnLeave = "on_leave"
)

// --- Отпуска ---
const (
	LeavePending   = "pending"
	LeaveApproved  = "approved"
	LeaveRejected  = "rejected"
	LeaveCancelled = "cancelled"
)

// --- Склад (вычисляемый) ---
const (
	StockIn  = "in_stock"
	StockLow = "low_stock"
	StockOut = "out_of_stock"
)

// --- Закупки ---
const (
	OrderPending    = "pending"
	OrderConfirmed  = "confirmed"
	OrderProcessing = "processing"
	OrderShipped    = "shipped"
	OrderDelivered  = "delivered"
	OrderCancelled  = "cancelled"
)

// --- Возвраты ---
const (
	ReturnRequested = "requested"
	ReturnApproved  = "approved"
	ReturnRejected  = "rejected"
	ReturnReceived  = "received"
	ReturnRefunded  = "refunded"
)

// --- Доставка ---
const (
	ShipmentPending   = "pending"
	ShipmentInTransit = "in_transit"
	ShipmentDelivered = "delivered"
	ShipmentFailed    = "failed"
	ShipmentReturned  = "returned"
)

// FinalStatuses - после перехода в эти статусы запись больше не меняется.
var FinalStatuses = map[string][]string{
	EntitySubscription: {SubscriptionCancelled},
	EntityComplaint:    {IssueClosed},
	EntityTicket:       {IssueClosed},
	EntityTask:         {TaskCompleted, TaskCancelled},
	EntityPayment:      {PaymentRefunded},
	EntityLeave:        {LeaveApproved, LeaveRejected, LeaveCancelled},
	EntityOrder:        {OrderDelivered, OrderCancelled},
	EntityReturn:       {ReturnRejected, ReturnRefunded},
	EntityShipment:     {ShipmentDelivered, ShipmentReturned},
}

func IsFinalStatus(entity, status string) bool {
	return slices.Contains(FinalStatuses[entity], status)
}

// NextPriority - на ступень выше; critical остаётся critical.
func NextPriority(p string) string {
	i := slices.Index(Priorities, p)
	if i < 0 {
		return PriorityMedium
	}
	if i == len(Priorities)-1 {
		return p
	}
	return Priorities[i+1]
}
