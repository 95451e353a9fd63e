package entities

import "isp-system/pkg/types"

type Role struct {
	ID          uint64       `json:"id" db:"id"`
	Code        string       `json:"code" db:"code"`
	Name        string       `json:"name" db:"name"`
	Description *string      `json:"description" db:"description"`
	Permissions []Permission `json:"permissions,omitempty" db:"-"`

	types.BaseEntity
}
