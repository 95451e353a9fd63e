package dto

import "github.com/aarondl/null/v8"

type CreateShipmentDTO struct {
	OrderID           uint64  `json:"order_id" validate:"required"`
	Carrier           string  `json:"carrier" validate:"required,max=128"`
	TrackingNumber    string  `json:"tracking_number" validate:"required,max=128"`
	EstimatedDelivery *string `json:"estimated_delivery" validate:"omitempty,date"`
}

type UpdateShipmentDTO struct {
	Carrier           *string     `json:"carrier" validate:"omitempty,max=128"`
	TrackingNumber    *string     `json:"tracking_number" validate:"omitempty,max=128"`
	Status            *string     `json:"status" validate:"omitempty,oneof=pending in_transit delivered failed returned"`
	EstimatedDelivery null.String `json:"estimated_delivery" validate:"omitempty,date"`
}
