package entities

import (
	"github.com/shopspring/decimal"

	"isp-system/pkg/constants"
	"isp-system/pkg/types"
)

type InventoryItem struct {
	ID          uint64          `json:"id" db:"id"`
	OperatorID  uint64          `json:"operator_id" db:"operator_id"`
	VendorID    *uint64         `json:"vendor_id" db:"vendor_id"`
	SKU         string          `json:"sku" db:"sku"`
	Name        string          `json:"name" db:"name"`
	Category    string          `json:"category" db:"category"`
	Quantity    int             `json:"quantity" db:"quantity"`
	MinQuantity int             `json:"min_quantity" db:"min_quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price" db:"unit_price"`
	Location    *string         `json:"location" db:"location"`
	Status      string          `json:"status" db:"status"`

	types.BaseEntity
	types.SoftDelete
}

func (i *InventoryItem) ScopeOperatorID() *uint64 { return &i.OperatorID }
func (i *InventoryItem) ScopeOwnerIDs() []uint64  { return nil }
func (i *InventoryItem) ScopeVendorID() *uint64   { return i.VendorID }

// DeriveStockStatus вычисляет статус остатка по количеству.
func DeriveStockStatus(quantity, minQuantity int) string {
	switch {
	case quantity <= 0:
		return constants.StockOut
	case quantity <= minQuantity:
		return constants.StockLow
	default:
		return constants.StockIn
	}
}

// Refresh пересчитывает статус после изменения количества.
func (i *InventoryItem) Refresh() {
	i.Status = DeriveStockStatus(i.Quantity, i.MinQuantity)
}
