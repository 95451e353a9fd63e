package dto

import "github.com/aarondl/null/v8"

type CreateSubscriptionDTO struct {
	CustomerID uint64  `json:"customer_id" validate:"required"`
	PlanID     uint64  `json:"plan_id" validate:"required"`
	Status     string  `json:"status" validate:"omitempty,oneof=pending active"`
	StartDate  string  `json:"start_date" validate:"required,date"`
	EndDate    *string `json:"end_date" validate:"omitempty,date"`
	AutoRenew  *bool   `json:"auto_renew"`
	Address    string  `json:"address" validate:"required"`
}

type UpdateSubscriptionDTO struct {
	PlanID    *uint64     `json:"plan_id" validate:"omitempty,gt=0"`
	Status    *string     `json:"status" validate:"omitempty,oneof=pending active suspended cancelled"`
	EndDate   null.String `json:"end_date" validate:"omitempty,date"`
	AutoRenew *bool       `json:"auto_renew"`
	Address   *string     `json:"address" validate:"omitempty,min=1"`
}
