package entities

import (
	"time"

	"github.com/shopspring/decimal"

	"isp-system/pkg/types"
)

type Payment struct {
	ID             uint64          `json:"id" db:"id"`
	OperatorID     uint64          `json:"operator_id" db:"operator_id"`
	SubscriptionID uint64          `json:"subscription_id" db:"subscription_id"`
	CustomerID     uint64          `json:"customer_id" db:"customer_id"`
	Amount         decimal.Decimal `json:"amount" db:"amount"`
	Method         string          `json:"method" db:"method"`
	Status         string          `json:"status" db:"status"`
	Reference      string          `json:"reference" db:"reference"`
	PaidAt         *time.Time      `json:"paid_at" db:"paid_at"`

	CustomerName string `json:"customer_name" db:"-"`

	types.BaseEntity
}

func (p *Payment) ScopeOperatorID() *uint64 { return &p.OperatorID }
func (p *Payment) ScopeOwnerIDs() []uint64  { return []uint64{p.CustomerID} }
