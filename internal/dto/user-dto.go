package dto

import "github.com/aarondl/null/v8"

type CreateUserDTO struct {
	Fio        string  `json:"fio" validate:"required,max=255"`
	Email      string  `json:"email" validate:"required,email"`
	Phone      *string `json:"phone" validate:"omitempty,phone"`
	Password   string  `json:"password" validate:"required,min=6"`
	RoleID     uint64  `json:"role_id" validate:"required"`
	OperatorID *uint64 `json:"operator_id" validate:"omitempty,gt=0"`
	Status     string  `json:"status" validate:"omitempty,oneof=active inactive"`
	Position   *string `json:"position" validate:"omitempty,max=255"`
	HireDate   *string `json:"hire_date" validate:"omitempty,date"`
}

type UpdateUserDTO struct {
	Fio        *string     `json:"fio" validate:"omitempty,max=255"`
	Email      *string     `json:"email" validate:"omitempty,email"`
	Phone      null.String `json:"phone" validate:"omitempty,phone"`
	RoleID     *uint64     `json:"role_id" validate:"omitempty,gt=0"`
	OperatorID null.Uint64 `json:"operator_id" validate:"omitempty,gt=0"`
	Status     *string     `json:"status" validate:"omitempty,oneof=active inactive"`
	Position   null.String `json:"position" validate:"omitempty,max=255"`
	HireDate   null.String `json:"hire_date" validate:"omitempty,date"`
}

type ChangePasswordDTO struct {
	Password string `json:"password" validate:"required,min=6"`
}

// CreateStaffDTO - сотрудник: роль задаётся кодом, только STAFF или TECHNICIAN.
type CreateStaffDTO struct {
	Fio        string  `json:"fio" validate:"required,max=255"`
	Email      string  `json:"email" validate:"required,email"`
	Phone      *string `json:"phone" validate:"omitempty,phone"`
	Password   string  `json:"password" validate:"required,min=6"`
	RoleCode   string  `json:"role_code" validate:"required,oneof=STAFF TECHNICIAN"`
	OperatorID *uint64 `json:"operator_id" validate:"omitempty,gt=0"`
	Position   *string `json:"position" validate:"omitempty,max=255"`
	HireDate   *string `json:"hire_date" validate:"omitempty,date"`
}
