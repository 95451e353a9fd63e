package dto

import (
	"github.com/aarondl/null/v8"
	"github.com/shopspring/decimal"
)

type OrderItemDTO struct {
	InventoryItemID *uint64         `json:"inventory_item_id" validate:"omitempty,gt=0"`
	Name            string          `json:"name" validate:"required,max=255"`
	Quantity        int             `json:"quantity" validate:"required,gt=0"`
	UnitPrice       decimal.Decimal `json:"unit_price" validate:"money"`
}

type CreateOrderDTO struct {
	VendorID uint64         `json:"vendor_id" validate:"required"`
	Notes    *string        `json:"notes"`
	Items    []OrderItemDTO `json:"items" validate:"required,min=1,dive"`
}

type UpdateOrderDTO struct {
	Status *string        `json:"status" validate:"omitempty,oneof=pending confirmed processing shipped delivered cancelled"`
	Notes  null.String    `json:"notes"`
	Items  []OrderItemDTO `json:"items" validate:"omitempty,min=1,dive"`
}
