package entities

import (
	"time"

	"isp-system/pkg/types"
)

type Attendance struct {
	ID         uint64     `json:"id" db:"id"`
	OperatorID uint64     `json:"operator_id" db:"operator_id"`
	UserID     uint64     `json:"user_id" db:"user_id"`
	Date       time.Time  `json:"date" db:"date"`
	CheckIn    *time.Time `json:"check_in" db:"check_in"`
	CheckOut   *time.Time `json:"check_out" db:"check_out"`
	Status     string     `json:"status" db:"status"`
	Notes      *string    `json:"notes" db:"notes"`

	UserName string `json:"user_name" db:"-"`

	types.BaseEntity
}

func (a *Attendance) ScopeOperatorID() *uint64 { return &a.OperatorID }
func (a *Attendance) ScopeOwnerIDs() []uint64  { return []uint64{a.UserID} }
