package entities

import (
	"time"

	"isp-system/pkg/types"
)

type LeaveRequest struct {
	ID            uint64     `json:"id" db:"id"`
	OperatorID    uint64     `json:"operator_id" db:"operator_id"`
	UserID        uint64     `json:"user_id" db:"user_id"`
	Type          string     `json:"type" db:"type"`
	StartDate     time.Time  `json:"start_date" db:"start_date"`
	EndDate       time.Time  `json:"end_date" db:"end_date"`
	Reason        *string    `json:"reason" db:"reason"`
	Status        string     `json:"status" db:"status"`
	ReviewedBy    *uint64    `json:"reviewed_by" db:"reviewed_by"`
	ReviewedAt    *time.Time `json:"reviewed_at" db:"reviewed_at"`
	ReviewComment *string    `json:"review_comment" db:"review_comment"`

	UserName string `json:"user_name" db:"-"`

	types.BaseEntity
}

func (l *LeaveRequest) ScopeOperatorID() *uint64 { return &l.OperatorID }
func (l *LeaveRequest) ScopeOwnerIDs() []uint64  { return []uint64{l.UserID} }

// Days - длительность в календарных днях включительно.
func (l *LeaveRequest) Days() int {
	return int(l.EndDate.Sub(l.StartDate).Hours()/24) + 1
}
