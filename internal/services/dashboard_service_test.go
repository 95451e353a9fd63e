package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"isp-system/pkg/constants"
	"isp-system/pkg/types"
)

func TestGetDashboard_CachedPerUser(t *testing.T) {
	env := newTestEnv()
	complaints, subs, payments := new(mockComplaintRepo), new(mockSubscriptionRepo), new(mockPaymentRepo)
	cache := newMemCache()
	svc := NewDashboardService(env.base, DashboardRepos{
		Complaints:    complaints,
		Tickets:       new(mockTicketRepo),
		Tasks:         new(mockTaskRepo),
		Subscriptions: subs,
		Orders:        new(mockOrderRepo),
		Shipments:     new(mockShipmentRepo),
		Payments:      payments,
		Inventory:     new(mockInventoryRepo),
		Leaves:        new(mockLeaveRepo),
	}, cache, time.Minute)
	op := uint64(1)
	ctx := actorCtx(30, constants.RoleCustomer, &op)
	freezeTime(t, time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC))

	may := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	june := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	july := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

	complaints.On("GetStats", mock.Anything).Return(types.StatusStats{Total: 2, ByStatus: map[string]uint64{"open": 2}}, nil)
	subs.On("GetStats", mock.Anything).Return(types.StatusStats{Total: 1, ByStatus: map[string]uint64{"active": 1}}, nil)
	payments.On("Revenue", june, july).Return(decimal.NewFromInt(300), nil)
	payments.On("Revenue", may, june).Return(decimal.NewFromInt(200), nil)

	first, err := svc.GetDashboard(ctx)
	require.NoError(t, err)
	require.NotNil(t, first.Complaints)
	assert.Equal(t, uint64(2), first.Complaints.Total)
	assert.Nil(t, first.Tickets)
	assert.Nil(t, first.LowStockCount)
	require.NotNil(t, first.Revenue)
	assert.Equal(t, 50.0, first.Revenue.TrendPercent)

	cached, _ := cache.Exists(ctx, fmt.Sprintf(constants.CacheKeyDashboard, 30))
	assert.True(t, cached)

	second, err := svc.GetDashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), second.Complaints.Total)
	assert.True(t, second.Revenue.CurrentMonth.Equal(decimal.NewFromInt(300)))
	complaints.AssertNumberOfCalls(t, "GetStats", 1)
	subs.AssertNumberOfCalls(t, "GetStats", 1)
	payments.AssertNumberOfCalls(t, "Revenue", 2)

	// после сброса ключа дашборд собирается заново
	require.NoError(t, cache.Del(ctx, fmt.Sprintf(constants.CacheKeyDashboard, 30)))
	_, err = svc.GetDashboard(ctx)
	require.NoError(t, err)
	complaints.AssertNumberOfCalls(t, "GetStats", 2)
}
