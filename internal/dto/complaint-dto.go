package dto

import "github.com/aarondl/null/v8"

type CreateComplaintDTO struct {
	// заполняется сотрудником; клиент создаёт жалобу на себя
	CustomerID     *uint64 `json:"customer_id" validate:"omitempty,gt=0"`
	SubscriptionID *uint64 `json:"subscription_id" validate:"omitempty,gt=0"`
	Subject        string  `json:"subject" validate:"required,max=255"`
	Description    string  `json:"description" validate:"required"`
	Category       string  `json:"category" validate:"required,oneof=connectivity billing speed hardware other"`
	Priority       string  `json:"priority" validate:"omitempty,oneof=low medium high critical"`
}

type UpdateComplaintDTO struct {
	Subject     *string     `json:"subject" validate:"omitempty,max=255"`
	Description *string     `json:"description" validate:"omitempty,min=1"`
	Category    *string     `json:"category" validate:"omitempty,oneof=connectivity billing speed hardware other"`
	Priority    *string     `json:"priority" validate:"omitempty,oneof=low medium high critical"`
	Status      *string     `json:"status" validate:"omitempty,oneof=open in_progress resolved closed"`
	AssignedTo  null.Uint64 `json:"assigned_to" validate:"omitempty,gt=0"`
}
