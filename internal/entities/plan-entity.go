package entities

import (
	"github.com/shopspring/decimal"

	"isp-system/pkg/types"
)

// Plan - тарифный план. Виден всем пользователям своего оператора.
type Plan struct {
	ID           uint64          `json:"id" db:"id"`
	OperatorID   uint64          `json:"operator_id" db:"operator_id"`
	Name         string          `json:"name" db:"name"`
	Code         string          `json:"code" db:"code"`
	SpeedMbps    int             `json:"speed_mbps" db:"speed_mbps"`
	DataLimitGB  *int            `json:"data_limit_gb" db:"data_limit_gb"` // nil - безлимит
	Price        decimal.Decimal `json:"price" db:"price"`
	BillingCycle string          `json:"billing_cycle" db:"billing_cycle"`
	Status       string          `json:"status" db:"status"`

	types.BaseEntity
	types.SoftDelete
}

func (p *Plan) ScopeOperatorID() *uint64   { return &p.OperatorID }
func (p *Plan) ScopeOwnerIDs() []uint64    { return nil }
func (p *Plan) SharedWithinOperator() bool { return true }
