package entities

import (
	"github.com/shopspring/decimal"

	"isp-system/pkg/types"
)

type Return struct {
	ID           uint64          `json:"id" db:"id"`
	OperatorID   uint64          `json:"operator_id" db:"operator_id"`
	OrderID      uint64          `json:"order_id" db:"order_id"`
	VendorID     uint64          `json:"vendor_id" db:"vendor_id"`
	Reason       string          `json:"reason" db:"reason"`
	Quantity     int             `json:"quantity" db:"quantity"`
	RefundAmount decimal.Decimal `json:"refund_amount" db:"refund_amount"`
	Status       string          `json:"status" db:"status"`

	OrderNumber string `json:"order_number" db:"-"`

	types.BaseEntity
}

func (r *Return) ScopeOperatorID() *uint64 { return &r.OperatorID }
func (r *Return) ScopeOwnerIDs() []uint64  { return nil }
func (r *Return) ScopeVendorID() *uint64   { return &r.VendorID }
