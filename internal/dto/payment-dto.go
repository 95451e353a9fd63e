package dto

import "github.com/shopspring/decimal"

type CreatePaymentDTO struct {
	SubscriptionID uint64          `json:"subscription_id" validate:"required"`
	Amount         decimal.Decimal `json:"amount" validate:"positive_money"`
	Method         string          `json:"method" validate:"required,oneof=cash card bank_transfer mobile"`
	Status         string          `json:"status" validate:"omitempty,oneof=pending completed failed"`
	Reference      string          `json:"reference" validate:"required,max=128"`
}

type UpdatePaymentDTO struct {
	Method    *string `json:"method" validate:"omitempty,oneof=cash card bank_transfer mobile"`
	Status    *string `json:"status" validate:"omitempty,oneof=pending completed failed refunded"`
	Reference *string `json:"reference" validate:"omitempty,max=128"`
}

// PaymentStatsDTO - карточки платежей: по статусам и сумма завершённых.
type PaymentStatsDTO struct {
	Total       uint64            `json:"total"`
	ByStatus    map[string]uint64 `json:"by_status"`
	TotalAmount decimal.Decimal   `json:"total_amount"`
}
