package entities

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"isp-system/pkg/constants"
)

func TestDeriveStockStatus(t *testing.T) {
	assert.Equal(t, constants.StockOut, DeriveStockStatus(0, 5))
	assert.Equal(t, constants.StockLow, DeriveStockStatus(5, 5))
	assert.Equal(t, constants.StockLow, DeriveStockStatus(1, 5))
	assert.Equal(t, constants.StockIn, DeriveStockStatus(6, 5))
	assert.Equal(t, constants.StockIn, DeriveStockStatus(1, 0))
}

func TestItemsTotal(t *testing.T) {
	items := []OrderItem{
		{Name: "ONT", Quantity: 3, UnitPrice: decimal.RequireFromString("45.50")},
		{Name: "Cable", Quantity: 10, UnitPrice: decimal.RequireFromString("1.25")},
	}
	assert.True(t, decimal.RequireFromString("149").Equal(ItemsTotal(items)))
	assert.True(t, decimal.Zero.Equal(ItemsTotal(nil)))
}

func TestLeaveDays(t *testing.T) {
	l := LeaveRequest{
		StartDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, 5, l.Days())
}

func TestScopeOwners(t *testing.T) {
	tech := uint64(7)
	task := &Task{OperatorID: 1}
	assert.Empty(t, task.ScopeOwnerIDs())
	task.TechnicianID = &tech
	assert.Equal(t, []uint64{7}, task.ScopeOwnerIDs())

	assignee := uint64(9)
	c := &Complaint{CustomerID: 3, AssignedTo: &assignee}
	assert.Equal(t, []uint64{3, 9}, c.ScopeOwnerIDs())
}
