package dto

import "github.com/aarondl/null/v8"

type CreateOperatorDTO struct {
	Name    string  `json:"name" validate:"required,max=255"`
	Code    string  `json:"code" validate:"required,max=64"`
	Email   *string `json:"email" validate:"omitempty,email"`
	Phone   *string `json:"phone" validate:"omitempty,phone"`
	Address *string `json:"address" validate:"omitempty"`
	Status  string  `json:"status" validate:"omitempty,oneof=active suspended"`
}

type UpdateOperatorDTO struct {
	Name    *string     `json:"name" validate:"omitempty,max=255"`
	Code    *string     `json:"code" validate:"omitempty,max=64"`
	Email   null.String `json:"email" validate:"omitempty,email"`
	Phone   null.String `json:"phone" validate:"omitempty,phone"`
	Address null.String `json:"address"`
	Status  *string     `json:"status" validate:"omitempty,oneof=active suspended"`
}
