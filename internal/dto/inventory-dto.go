package dto

import (
	"github.com/aarondl/null/v8"
	"github.com/shopspring/decimal"
)

type CreateInventoryItemDTO struct {
	OperatorID  *uint64         `json:"operator_id" validate:"omitempty,gt=0"`
	VendorID    *uint64         `json:"vendor_id" validate:"omitempty,gt=0"`
	SKU         string          `json:"sku" validate:"required,sku"`
	Name        string          `json:"name" validate:"required,max=255"`
	Category    string          `json:"category" validate:"required,oneof=router modem ont cable switch other"`
	Quantity    int             `json:"quantity" validate:"min=0"`
	MinQuantity int             `json:"min_quantity" validate:"min=0"`
	UnitPrice   decimal.Decimal `json:"unit_price" validate:"money"`
	Location    *string         `json:"location" validate:"omitempty,max=255"`
}

type UpdateInventoryItemDTO struct {
	VendorID    null.Uint64         `json:"vendor_id" validate:"omitempty,gt=0"`
	SKU         *string             `json:"sku" validate:"omitempty,sku"`
	Name        *string             `json:"name" validate:"omitempty,max=255"`
	Category    *string             `json:"category" validate:"omitempty,oneof=router modem ont cable switch other"`
	Quantity    *int                `json:"quantity" validate:"omitempty,min=0"`
	MinQuantity *int                `json:"min_quantity" validate:"omitempty,min=0"`
	UnitPrice   decimal.NullDecimal `json:"unit_price" validate:"omitempty,money"`
	Location    null.String         `json:"location" validate:"omitempty,max=255"`
}

type AdjustInventoryDTO struct {
	Delta  int    `json:"delta" validate:"required,ne=0"`
	Reason string `json:"reason" validate:"required,max=255"`
}

type ImportRowErrorDTO struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

type ImportResultDTO struct {
	Created int                 `json:"created"`
	Updated int                 `json:"updated"`
	Skipped int                 `json:"skipped"`
	Errors  []ImportRowErrorDTO `json:"errors"`
}
