package dto

import "github.com/aarondl/null/v8"

type CreateLeaveDTO struct {
	Type      string  `json:"type" validate:"required,oneof=annual sick unpaid other"`
	StartDate string  `json:"start_date" validate:"required,date"`
	EndDate   string  `json:"end_date" validate:"required,date"`
	Reason    *string `json:"reason"`
}

type UpdateLeaveDTO struct {
	Type      *string     `json:"type" validate:"omitempty,oneof=annual sick unpaid other"`
	StartDate *string     `json:"start_date" validate:"omitempty,date"`
	EndDate   *string     `json:"end_date" validate:"omitempty,date"`
	Reason    null.String `json:"reason"`
	// сотрудник может только отменить свою заявку
	Status *string `json:"status" validate:"omitempty,oneof=cancelled"`
}

type ReviewLeaveDTO struct {
	Status  string  `json:"status" validate:"required,oneof=approved rejected"`
	Comment *string `json:"comment"`
}
