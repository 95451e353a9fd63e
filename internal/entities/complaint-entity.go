package entities

import (
	"time"

	"isp-system/pkg/types"
)

type Complaint struct {
	ID             uint64     `json:"id" db:"id"`
	OperatorID     uint64     `json:"operator_id" db:"operator_id"`
	CustomerID     uint64     `json:"customer_id" db:"customer_id"`
	SubscriptionID *uint64    `json:"subscription_id" db:"subscription_id"`
	Subject        string     `json:"subject" db:"subject"`
	Description    string     `json:"description" db:"description"`
	Category       string     `json:"category" db:"category"`
	Priority       string     `json:"priority" db:"priority"`
	Status         string     `json:"status" db:"status"`
	AssignedTo     *uint64    `json:"assigned_to" db:"assigned_to"`
	ResolvedAt     *time.Time `json:"resolved_at" db:"resolved_at"`

	CustomerName string  `json:"customer_name" db:"-"`
	AssigneeName *string `json:"assignee_name" db:"-"`

	types.BaseEntity
}

func (c *Complaint) ScopeOperatorID() *uint64 { return &c.OperatorID }
func (c *Complaint) ScopeOwnerIDs() []uint64 {
	ids := []uint64{c.CustomerID}
	if c.AssignedTo != nil {
		ids = append(ids, *c.AssignedTo)
	}
	return ids
}

type ComplaintAttachment struct {
	ID          uint64    `json:"id" db:"id"`
	ComplaintID uint64    `json:"complaint_id" db:"complaint_id"`
	FileName    string    `json:"file_name" db:"file_name"`
	FilePath    string    `json:"file_path" db:"file_path"`
	FileType    string    `json:"file_type" db:"file_type"`
	FileSize    int64     `json:"file_size" db:"file_size"`
	UploadedBy  uint64    `json:"uploaded_by" db:"uploaded_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
