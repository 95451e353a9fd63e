package entities

import (
	"time"

	"isp-system/pkg/types"
)

type Subscription struct {
	ID         uint64     `json:"id" db:"id"`
	OperatorID uint64     `json:"operator_id" db:"operator_id"`
	CustomerID uint64     `json:"customer_id" db:"customer_id"`
	PlanID     uint64     `json:"plan_id" db:"plan_id"`
	Status     string     `json:"status" db:"status"`
	StartDate  time.Time  `json:"start_date" db:"start_date"`
	EndDate    *time.Time `json:"end_date" db:"end_date"`
	AutoRenew  bool       `json:"auto_renew" db:"auto_renew"`
	Address    string     `json:"address" db:"address"`

	CustomerName string `json:"customer_name" db:"-"`
	PlanName     string `json:"plan_name" db:"-"`

	types.BaseEntity
}

func (s *Subscription) ScopeOperatorID() *uint64 { return &s.OperatorID }
func (s *Subscription) ScopeOwnerIDs() []uint64  { return []uint64{s.CustomerID} }
