package entities

import "isp-system/pkg/types"

// Operator - интернет-провайдер (тенант).
type Operator struct {
	ID      uint64  `json:"id" db:"id"`
	Name    string  `json:"name" db:"name"`
	Code    string  `json:"code" db:"code"`
	Email   *string `json:"email" db:"email"`
	Phone   *string `json:"phone" db:"phone"`
	Address *string `json:"address" db:"address"`
	Status  string  `json:"status" db:"status"`

	types.BaseEntity
	types.SoftDelete
}

func (o *Operator) ScopeOperatorID() *uint64 { return &o.ID }
func (o *Operator) ScopeOwnerIDs() []uint64  { return nil }
