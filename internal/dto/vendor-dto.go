package dto

import "github.com/aarondl/null/v8"

type CreateVendorDTO struct {
	OperatorID    *uint64 `json:"operator_id" validate:"omitempty,gt=0"`
	UserID        *uint64 `json:"user_id" validate:"omitempty,gt=0"`
	Name          string  `json:"name" validate:"required,max=255"`
	ContactPerson *string `json:"contact_person" validate:"omitempty,max=255"`
	Email         *string `json:"email" validate:"omitempty,email"`
	Phone         *string `json:"phone" validate:"omitempty,phone"`
	Address       *string `json:"address"`
	Status        string  `json:"status" validate:"omitempty,oneof=active inactive blacklisted"`
}

type UpdateVendorDTO struct {
	UserID        null.Uint64 `json:"user_id" validate:"omitempty,gt=0"`
	Name          *string     `json:"name" validate:"omitempty,max=255"`
	ContactPerson null.String `json:"contact_person" validate:"omitempty,max=255"`
	Email         null.String `json:"email" validate:"omitempty,email"`
	Phone         null.String `json:"phone" validate:"omitempty,phone"`
	Address       null.String `json:"address"`
	Status        *string     `json:"status" validate:"omitempty,oneof=active inactive blacklisted"`
}

// VendorProfileDTO - что поставщик правит в своём профиле сам.
type VendorProfileDTO struct {
	ContactPerson null.String `json:"contact_person" validate:"omitempty,max=255"`
	Email         null.String `json:"email" validate:"omitempty,email"`
	Phone         null.String `json:"phone" validate:"omitempty,phone"`
	Address       null.String `json:"address"`
}
