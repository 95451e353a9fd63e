package dto

import (
	"time"

	"github.com/aarondl/null/v8"
)

type CreateAttendanceDTO struct {
	UserID   uint64     `json:"user_id" validate:"required"`
	Date     string     `json:"date" validate:"required,date"`
	CheckIn  *time.Time `json:"check_in"`
	CheckOut *time.Time `json:"check_out"`
	Status   string     `json:"status" validate:"required,oneof=present absent late half_day on_leave"`
	Notes    *string    `json:"notes"`
}

type UpdateAttendanceDTO struct {
	CheckIn  null.Time   `json:"check_in"`
	CheckOut null.Time   `json:"check_out"`
	Status   *string     `json:"status" validate:"omitempty,oneof=present absent late half_day on_leave"`
	Notes    null.String `json:"notes"`
}

type CheckDTO struct {
	Notes *string `json:"notes"`
}
