package dto

import (
	"github.com/aarondl/null/v8"
	"github.com/shopspring/decimal"
)

type CreatePlanDTO struct {
	OperatorID   *uint64         `json:"operator_id" validate:"omitempty,gt=0"`
	Name         string          `json:"name" validate:"required,max=255"`
	Code         string          `json:"code" validate:"required,max=64"`
	SpeedMbps    int             `json:"speed_mbps" validate:"required,gt=0"`
	DataLimitGB  *int            `json:"data_limit_gb" validate:"omitempty,gt=0"`
	Price        decimal.Decimal `json:"price" validate:"money"`
	BillingCycle string          `json:"billing_cycle" validate:"required,oneof=monthly quarterly yearly"`
	Status       string          `json:"status" validate:"omitempty,oneof=active inactive"`
}

type UpdatePlanDTO struct {
	Name         *string             `json:"name" validate:"omitempty,max=255"`
	Code         *string             `json:"code" validate:"omitempty,max=64"`
	SpeedMbps    *int                `json:"speed_mbps" validate:"omitempty,gt=0"`
	DataLimitGB  null.Int            `json:"data_limit_gb" validate:"omitempty,gt=0"`
	Price        decimal.NullDecimal `json:"price" validate:"omitempty,money"`
	BillingCycle *string             `json:"billing_cycle" validate:"omitempty,oneof=monthly quarterly yearly"`
	Status       *string             `json:"status" validate:"omitempty,oneof=active inactive"`
}
