package entities

import (
	"time"

	"isp-system/pkg/types"
)

type User struct {
	ID       uint64  `json:"id" db:"id"`
	Fio      string  `json:"fio" db:"fio"`
	Email    string  `json:"email" db:"email"`
	Phone    *string `json:"phone" db:"phone"`
	Password string  `json:"-" db:"password"`

	RoleID     uint64  `json:"role_id" db:"role_id"`
	RoleCode   string  `json:"role_code" db:"-"`
	RoleName   string  `json:"role_name" db:"-"`
	OperatorID *uint64 `json:"operator_id" db:"operator_id"`
	VendorID   *uint64 `json:"vendor_id,omitempty" db:"-"` // из vendors.user_id

	Status   string     `json:"status" db:"status"`
	Position *string    `json:"position" db:"position"`
	HireDate *time.Time `json:"hire_date" db:"hire_date"`

	types.BaseEntity
	types.SoftDelete
}

func (u *User) ScopeOperatorID() *uint64 { return u.OperatorID }
func (u *User) ScopeOwnerIDs() []uint64  { return []uint64{u.ID} }
