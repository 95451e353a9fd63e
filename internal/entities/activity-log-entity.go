package entities

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ActivityLog - запись журнала действий. Пишется в той же транзакции, что и изменение.
type ActivityLog struct {
	ID         uint64          `json:"id" db:"id"`
	OperatorID *uint64         `json:"operator_id" db:"operator_id"`
	ActorID    *uint64         `json:"actor_id" db:"actor_id"`
	EntityType string          `json:"entity_type" db:"entity_type"`
	EntityID   uint64          `json:"entity_id" db:"entity_id"`
	Action     string          `json:"action" db:"action"`
	OldValue   json.RawMessage `json:"old_value,omitempty" db:"old_value"`
	NewValue   json.RawMessage `json:"new_value,omitempty" db:"new_value"`
	TxID       uuid.UUID       `json:"tx_id" db:"tx_id"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`

	ActorName *string `json:"actor_name" db:"-"`
}

func (l *ActivityLog) ScopeOperatorID() *uint64 { return l.OperatorID }
func (l *ActivityLog) ScopeOwnerIDs() []uint64 {
	if l.ActorID == nil {
		return nil
	}
	return []uint64{*l.ActorID}
}
