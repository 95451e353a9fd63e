package entities

import "isp-system/pkg/types"

type Vendor struct {
	ID            uint64  `json:"id" db:"id"`
	OperatorID    uint64  `json:"operator_id" db:"operator_id"`
	UserID        *uint64 `json:"user_id" db:"user_id"`
	Name          string  `json:"name" db:"name"`
	ContactPerson *string `json:"contact_person" db:"contact_person"`
	Email         *string `json:"email" db:"email"`
	Phone         *string `json:"phone" db:"phone"`
	Address       *string `json:"address" db:"address"`
	Status        string  `json:"status" db:"status"`

	types.BaseEntity
	types.SoftDelete
}

func (v *Vendor) ScopeOperatorID() *uint64 { return &v.OperatorID }
func (v *Vendor) ScopeVendorID() *uint64   { return &v.ID }
func (v *Vendor) ScopeOwnerIDs() []uint64 {
	if v.UserID == nil {
		return nil
	}
	return []uint64{*v.UserID}
}
