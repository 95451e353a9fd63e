package dto

import "github.com/aarondl/null/v8"

type CreateTicketDTO struct {
	ComplaintID *uint64 `json:"complaint_id" validate:"omitempty,gt=0"`
	Title       string  `json:"title" validate:"required,max=255"`
	Description string  `json:"description" validate:"required"`
	Priority    string  `json:"priority" validate:"omitempty,oneof=low medium high critical"`
	AssignedTo  *uint64 `json:"assigned_to" validate:"omitempty,gt=0"`
}

type UpdateTicketDTO struct {
	Title       *string     `json:"title" validate:"omitempty,max=255"`
	Description *string     `json:"description" validate:"omitempty,min=1"`
	Priority    *string     `json:"priority" validate:"omitempty,oneof=low medium high critical"`
	Status      *string     `json:"status" validate:"omitempty,oneof=open in_progress on_hold resolved closed"`
	AssignedTo  null.Uint64 `json:"assigned_to" validate:"omitempty,gt=0"`
}
