package dto

import "github.com/shopspring/decimal"

type CreateReturnDTO struct {
	OrderID      uint64          `json:"order_id" validate:"required"`
	Reason       string          `json:"reason" validate:"required"`
	Quantity     int             `json:"quantity" validate:"required,gt=0"`
	RefundAmount decimal.Decimal `json:"refund_amount" validate:"money"`
}

type UpdateReturnDTO struct {
	Reason       *string             `json:"reason" validate:"omitempty,min=1"`
	Quantity     *int                `json:"quantity" validate:"omitempty,gt=0"`
	RefundAmount decimal.NullDecimal `json:"refund_amount" validate:"omitempty,money"`
	Status       *string             `json:"status" validate:"omitempty,oneof=requested approved rejected received refunded"`
}
