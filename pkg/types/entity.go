package types

import "time"

type BaseEntity struct {
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type SoftDelete struct {
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// StatusStats - данные для карточек статистики.
type StatusStats struct {
	Total    uint64            `json:"total"`
	ByStatus map[string]uint64 `json:"by_status"`
}
