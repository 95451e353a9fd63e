package entities

import (
	"time"

	"isp-system/pkg/types"
)

type Shipment struct {
	ID                uint64     `json:"id" db:"id"`
	OperatorID        uint64     `json:"operator_id" db:"operator_id"`
	OrderID           uint64     `json:"order_id" db:"order_id"`
	VendorID          uint64     `json:"vendor_id" db:"vendor_id"`
	Carrier           string     `json:"carrier" db:"carrier"`
	TrackingNumber    string     `json:"tracking_number" db:"tracking_number"`
	Status            string     `json:"status" db:"status"`
	ShippedAt         *time.Time `json:"shipped_at" db:"shipped_at"`
	EstimatedDelivery *time.Time `json:"estimated_delivery" db:"estimated_delivery"`
	DeliveredAt       *time.Time `json:"delivered_at" db:"delivered_at"`

	OrderNumber string `json:"order_number" db:"-"`

	types.BaseEntity
}

func (s *Shipment) ScopeOperatorID() *uint64 { return &s.OperatorID }
func (s *Shipment) ScopeOwnerIDs() []uint64  { return nil }
func (s *Shipment) ScopeVendorID() *uint64   { return &s.VendorID }
