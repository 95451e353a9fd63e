package dto

import (
	"time"

	"github.com/aarondl/null/v8"
)

type CreateTaskDTO struct {
	Title        string     `json:"title" validate:"required,max=255"`
	Type         string     `json:"type" validate:"required,oneof=installation repair maintenance survey"`
	Address      string     `json:"address" validate:"required"`
	ScheduledAt  *time.Time `json:"scheduled_at"`
	TechnicianID *uint64    `json:"technician_id" validate:"omitempty,gt=0"`
	TicketID     *uint64    `json:"ticket_id" validate:"omitempty,gt=0"`
	ComplaintID  *uint64    `json:"complaint_id" validate:"omitempty,gt=0"`
	Notes        *string    `json:"notes"`
}

type UpdateTaskDTO struct {
	Title       *string     `json:"title" validate:"omitempty,max=255"`
	Type        *string     `json:"type" validate:"omitempty,oneof=installation repair maintenance survey"`
	Address     *string     `json:"address" validate:"omitempty,min=1"`
	ScheduledAt null.Time   `json:"scheduled_at"`
	Status      *string     `json:"status" validate:"omitempty,oneof=pending assigned in_progress completed cancelled"`
	Notes       null.String `json:"notes"`
}

type AssignTaskDTO struct {
	TechnicianID uint64 `json:"technician_id" validate:"required"`
}

// TechnicianTaskUpdateDTO - что техник может менять в своей задаче.
type TechnicianTaskUpdateDTO struct {
	Status *string     `json:"status" validate:"omitempty,oneof=in_progress completed"`
	Notes  null.String `json:"notes"`
}
