package dto

import (
	"github.com/shopspring/decimal"

	"isp-system/internal/entities"
	"isp-system/pkg/types"
)

type RevenueDTO struct {
	CurrentMonth  decimal.Decimal `json:"current_month"`
	PreviousMonth decimal.Decimal `json:"previous_month"`
	TrendPercent  float64         `json:"trend_percent"`
}

// DashboardDTO - карточки дашборда. Пустые секции не отдаются, если роль их не видит.
type DashboardDTO struct {
	Complaints     *types.StatusStats     `json:"complaints,omitempty"`
	Tickets        *types.StatusStats     `json:"tickets,omitempty"`
	Tasks          *types.StatusStats     `json:"tasks,omitempty"`
	Subscriptions  *types.StatusStats     `json:"subscriptions,omitempty"`
	Orders         *types.StatusStats     `json:"orders,omitempty"`
	Shipments      *types.StatusStats     `json:"shipments,omitempty"`
	Revenue        *RevenueDTO            `json:"revenue,omitempty"`
	LowStockCount  *uint64                `json:"low_stock_count,omitempty"`
	PendingLeaves  *uint64                `json:"pending_leaves,omitempty"`
	RecentActivity []entities.ActivityLog `json:"recent_activity"`
}
