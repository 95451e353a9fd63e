package entities

import "isp-system/pkg/types"

type Ticket struct {
	ID          uint64  `json:"id" db:"id"`
	OperatorID  uint64  `json:"operator_id" db:"operator_id"`
	ComplaintID *uint64 `json:"complaint_id" db:"complaint_id"`
	Title       string  `json:"title" db:"title"`
	Description string  `json:"description" db:"description"`
	Priority    string  `json:"priority" db:"priority"`
	Status      string  `json:"status" db:"status"`
	CreatedBy   uint64  `json:"created_by" db:"created_by"`
	AssignedTo  *uint64 `json:"assigned_to" db:"assigned_to"`

	AssigneeName *string `json:"assignee_name" db:"-"`

	types.BaseEntity
}

func (t *Ticket) ScopeOperatorID() *uint64 { return &t.OperatorID }
func (t *Ticket) ScopeOwnerIDs() []uint64 {
	ids := []uint64{t.CreatedBy}
	if t.AssignedTo != nil {
		ids = append(ids, *t.AssignedTo)
	}
	return ids
}
