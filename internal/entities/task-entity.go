package entities

import (
	"time"

	"isp-system/pkg/types"
)

// Task - выезд техника (монтаж, ремонт, обслуживание, обследование).
type Task struct {
	ID           uint64     `json:"id" db:"id"`
	OperatorID   uint64     `json:"operator_id" db:"operator_id"`
	Title        string     `json:"title" db:"title"`
	Type         string     `json:"type" db:"type"`
	Address      string     `json:"address" db:"address"`
	ScheduledAt  *time.Time `json:"scheduled_at" db:"scheduled_at"`
	TechnicianID *uint64    `json:"technician_id" db:"technician_id"`
	TicketID     *uint64    `json:"ticket_id" db:"ticket_id"`
	ComplaintID  *uint64    `json:"complaint_id" db:"complaint_id"`
	Status       string     `json:"status" db:"status"`
	CompletedAt  *time.Time `json:"completed_at" db:"completed_at"`
	Notes        *string    `json:"notes" db:"notes"`
	CreatedBy    uint64     `json:"created_by" db:"created_by"`

	TechnicianName *string `json:"technician_name" db:"-"`

	types.BaseEntity
}

func (t *Task) ScopeOperatorID() *uint64 { return &t.OperatorID }
func (t *Task) ScopeOwnerIDs() []uint64 {
	if t.TechnicianID == nil {
		return nil
	}
	return []uint64{*t.TechnicianID}
}
