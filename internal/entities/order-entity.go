package entities

import (
	"github.com/shopspring/decimal"

	"isp-system/pkg/types"
)

// Order - закупка у поставщика.
type Order struct {
	ID          uint64          `json:"id" db:"id"`
	OperatorID  uint64          `json:"operator_id" db:"operator_id"`
	VendorID    uint64          `json:"vendor_id" db:"vendor_id"`
	OrderNumber string          `json:"order_number" db:"order_number"`
	Status      string          `json:"status" db:"status"`
	Total       decimal.Decimal `json:"total" db:"total"`
	Notes       *string         `json:"notes" db:"notes"`
	CreatedBy   uint64          `json:"created_by" db:"created_by"`

	VendorName string      `json:"vendor_name" db:"-"`
	Items      []OrderItem `json:"items" db:"-"`

	types.BaseEntity
}

type OrderItem struct {
	ID              uint64          `json:"id" db:"id"`
	OrderID         uint64          `json:"order_id" db:"order_id"`
	InventoryItemID *uint64         `json:"inventory_item_id" db:"inventory_item_id"`
	Name            string          `json:"name" db:"name"`
	Quantity        int             `json:"quantity" db:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price" db:"unit_price"`
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ItemsTotal - сумма по позициям.
func ItemsTotal(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	return total
}

func (o *Order) ScopeOperatorID() *uint64 { return &o.OperatorID }
func (o *Order) ScopeOwnerIDs() []uint64  { return nil }
func (o *Order) ScopeVendorID() *uint64   { return &o.VendorID }
