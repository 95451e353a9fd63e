package services

import (
	"errors"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"isp-system/internal/dto"
	"isp-system/internal/entities"
	"isp-system/pkg/constants"
	apperrors "isp-system/pkg/errors"
	"isp-system/pkg/export"
	"isp-system/pkg/utils"
)

func TestShipmentDelivered_MovesOrderInSameTransaction(t *testing.T) {
	env := newTestEnv()
	shipments, orders, vendors := new(mockShipmentRepo), new(mockOrderRepo), new(mockVendorRepo)
	svc := NewShipmentService(env.base, shipments, orders, vendors)
	op, vendorUser := uint64(1), uint64(50)
	now := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)
	freezeTime(t, now)

	shipments.On("FindByID", uint64(5)).Return(&entities.Shipment{ID: 5, OperatorID: op, OrderID: 9, VendorID: 4, Status: constants.ShipmentInTransit, ShippedAt: &now}, nil)
	shipments.On("Update", mock.Anything).Return(nil)
	orders.On("FindByID", uint64(9)).Return(&entities.Order{ID: 9, OperatorID: op, VendorID: 4, Status: constants.OrderShipped}, nil)
	orders.On("Update", mock.MatchedBy(func(o *entities.Order) bool { return o.Status == constants.OrderDelivered })).Return(nil)
	vendors.On("FindByID", uint64(4)).Return(&entities.Vendor{ID: 4, OperatorID: op, UserID: &vendorUser}, nil)

	shipment, err := svc.Update(actorCtx(2, constants.RoleOperator, &op), 5,
		dto.UpdateShipmentDTO{Status: ptr(constants.ShipmentDelivered)}, utils.Fields{"status": {}})
	require.NoError(t, err)

	assert.Equal(t, now, *shipment.DeliveredAt)
	orders.AssertExpectations(t)
	assert.Equal(t, 1, env.tx.committed)
	require.Len(t, env.logs.entries, 2)
	assert.Equal(t, constants.EntityShipment, env.logs.entries[0].EntityType)
	assert.Equal(t, constants.EntityOrder, env.logs.entries[1].EntityType)
	assert.Equal(t, env.logs.entries[0].TxID, env.logs.entries[1].TxID)
	assert.Equal(t, []uint64{vendorUser}, env.bus.events[1].Recipients)
}

func TestShipmentFinalStatusIsLocked(t *testing.T) {
	env := newTestEnv()
	shipments := new(mockShipmentRepo)
	svc := NewShipmentService(env.base, shipments, new(mockOrderRepo), new(mockVendorRepo))
	op := uint64(1)

	shipments.On("FindByID", uint64(5)).Return(&entities.Shipment{ID: 5, OperatorID: op, Status: constants.ShipmentDelivered}, nil)

	_, err := svc.Update(actorCtx(2, constants.RoleOperator, &op), 5, dto.UpdateShipmentDTO{Carrier: ptr("DHL")}, utils.Fields{"carrier": {}})
	assert.ErrorIs(t, err, apperrors.ErrFinalStatus)
}

func TestInventoryAdjust(t *testing.T) {
	env := newTestEnv()
	items := new(mockInventoryRepo)
	svc := NewInventoryService(env.base, items, new(mockVendorRepo))
	op := uint64(1)
	ctx := actorCtx(2, constants.RoleOperator, &op)

	items.On("FindByID", uint64(3)).Return(&entities.InventoryItem{ID: 3, OperatorID: op, Quantity: 4, MinQuantity: 2, Status: constants.StockIn}, nil).Once()
	items.On("Adjust", uint64(3), -3).Return(nil)

	item, err := svc.Adjust(ctx, 3, dto.AdjustInventoryDTO{Delta: -3, Reason: "монтаж"})
	require.NoError(t, err)
	assert.Equal(t, 1, item.Quantity)
	assert.Equal(t, constants.StockLow, item.Status)
	assert.Equal(t, constants.ActionAdjusted, env.logs.entries[0].Action)

	items.On("FindByID", uint64(3)).Return(&entities.InventoryItem{ID: 3, OperatorID: op, Quantity: 1, MinQuantity: 2}, nil).Once()
	_, err = svc.Adjust(ctx, 3, dto.AdjustInventoryDTO{Delta: -2, Reason: "монтаж"})
	var httpErr *apperrors.HttpError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusUnprocessableEntity, httpErr.Code)
}

func TestPlanDelete_ConflictWithActiveSubscriptions(t *testing.T) {
	env := newTestEnv()
	plans := new(mockPlanRepo)
	svc := NewPlanService(env.base, plans)
	op := uint64(1)

	plans.On("FindByID", uint64(8)).Return(&entities.Plan{ID: 8, OperatorID: op, Status: constants.StatusActive}, nil)
	plans.On("CountActiveSubscriptions", uint64(8)).Return(uint64(3), nil)

	err := svc.Delete(actorCtx(2, constants.RoleOperator, &op), 8)
	var httpErr *apperrors.HttpError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusConflict, httpErr.Code)
	plans.AssertNotCalled(t, "Delete", mock.Anything)
	assert.Empty(t, env.bus.events)
}

func TestLeaveReview(t *testing.T) {
	env := newTestEnv()
	leaves := new(mockLeaveRepo)
	svc := NewLeaveService(env.base, leaves)
	op := uint64(1)
	ctx := actorCtx(2, constants.RoleOperator, &op)

	leaves.On("FindByID", uint64(1)).Return(&entities.LeaveRequest{ID: 1, OperatorID: op, UserID: 20, Status: constants.LeavePending}, nil)
	leaves.On("FindByID", uint64(2)).Return(&entities.LeaveRequest{ID: 2, OperatorID: op, UserID: 20, Status: constants.LeaveApproved}, nil)
	leaves.On("FindByID", uint64(3)).Return(&entities.LeaveRequest{ID: 3, OperatorID: op, UserID: 2, Status: constants.LeavePending}, nil)
	leaves.On("Update", mock.Anything).Return(nil)

	leave, err := svc.Review(ctx, 1, dto.ReviewLeaveDTO{Status: constants.LeaveApproved, Comment: ptr("ок")})
	require.NoError(t, err)
	assert.Equal(t, constants.LeaveApproved, leave.Status)
	assert.Equal(t, uint64(2), *leave.ReviewedBy)
	assert.Equal(t, []uint64{20}, env.bus.events[0].Recipients)

	_, err = svc.Review(ctx, 2, dto.ReviewLeaveDTO{Status: constants.LeaveRejected})
	assert.ErrorIs(t, err, apperrors.ErrFinalStatus)

	_, err = svc.Review(ctx, 3, dto.ReviewLeaveDTO{Status: constants.LeaveApproved})
	var input *apperrors.InvalidInputError
	assert.ErrorAs(t, err, &input)
}

func TestLeaveUpdate_OnlyOwnerOrReviewer(t *testing.T) {
	env := newTestEnv()
	leaves := new(mockLeaveRepo)
	svc := NewLeaveService(env.base, leaves)
	op := uint64(1)
	cancel := dto.UpdateLeaveDTO{Status: ptr(constants.LeaveCancelled)}

	leaves.On("FindByID", uint64(1)).Return(&entities.LeaveRequest{ID: 1, OperatorID: op, UserID: 20, Status: constants.LeavePending}, nil)
	leaves.On("Update", mock.Anything).Return(nil)

	_, err := svc.Update(actorCtx(7, constants.RoleStaff, &op), 1, cancel, utils.Fields{"status": {}})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	leaves.AssertNotCalled(t, "Update", mock.Anything)
	assert.Zero(t, env.tx.committed)

	leave, err := svc.Update(actorCtx(20, constants.RoleStaff, &op), 1, cancel, utils.Fields{"status": {}})
	require.NoError(t, err)
	assert.Equal(t, constants.LeaveCancelled, leave.Status)
}

func TestLeaveUpdate_ReviewerMayEditForeign(t *testing.T) {
	env := newTestEnv()
	leaves := new(mockLeaveRepo)
	svc := NewLeaveService(env.base, leaves)
	op := uint64(1)

	leaves.On("FindByID", uint64(1)).Return(&entities.LeaveRequest{
		ID: 1, OperatorID: op, UserID: 20, Status: constants.LeavePending,
		StartDate: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), EndDate: time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC),
	}, nil)
	leaves.On("Update", mock.Anything).Return(nil)

	leave, err := svc.Update(actorCtx(2, constants.RoleOperator, &op), 1, dto.UpdateLeaveDTO{EndDate: ptr("2024-07-05")}, utils.Fields{"end_date": {}})
	require.NoError(t, err)
	assert.Equal(t, 5, leave.EndDate.Day())
}

func TestLeaveCreate_EndBeforeStart(t *testing.T) {
	env := newTestEnv()
	svc := NewLeaveService(env.base, new(mockLeaveRepo))
	op := uint64(1)

	_, err := svc.Create(actorCtx(20, constants.RoleStaff, &op), dto.CreateLeaveDTO{Type: "annual", StartDate: "2024-07-10", EndDate: "2024-07-01"})
	var input *apperrors.InvalidInputError
	assert.ErrorAs(t, err, &input)
}

func TestAttendanceCheckIn(t *testing.T) {
	env := newTestEnv()
	repo := new(mockAttendanceRepo)
	svc := NewAttendanceService(env.base, repo, new(mockUserRepo))
	op := uint64(1)
	ctx := actorCtx(20, constants.RoleStaff, &op)

	loc := time.FixedZone("DUS", 5*3600)
	now := time.Date(2024, 5, 14, 9, 45, 0, 0, loc)
	freezeTime(t, now)
	day := time.Date(2024, 5, 14, 0, 0, 0, 0, loc)

	repo.On("FindByUserAndDate", uint64(20), day).Return(nil, apperrors.ErrNotFound).Once()
	repo.On("Create", mock.Anything).Return(nil)

	record, err := svc.CheckIn(ctx, dto.CheckDTO{})
	require.NoError(t, err)
	assert.Equal(t, constants.AttendanceLate, record.Status)
	assert.Equal(t, constants.ActionCheckIn, env.logs.entries[0].Action)

	repo.On("FindByUserAndDate", uint64(20), day).Return(&entities.Attendance{ID: 1, UserID: 20, CheckIn: &now}, nil).Once()
	_, err = svc.CheckIn(ctx, dto.CheckDTO{})
	var httpErr *apperrors.HttpError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusConflict, httpErr.Code)
}

func TestNewOrderNumber(t *testing.T) {
	freezeTime(t, time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC))
	assert.Regexp(t, regexp.MustCompile(`^PO-20240309-[0-9A-F]{6}$`), NewOrderNumber())
	assert.NotEqual(t, NewOrderNumber(), NewOrderNumber())
}

func TestTrendPercent(t *testing.T) {
	assert.Equal(t, 50.0, trendPercent(decimal.NewFromInt(150), decimal.NewFromInt(100)))
	assert.Equal(t, -33.3, trendPercent(decimal.NewFromInt(200), decimal.NewFromInt(300)))
	assert.Equal(t, 100.0, trendPercent(decimal.NewFromInt(10), decimal.Zero))
	assert.Equal(t, 0.0, trendPercent(decimal.Zero, decimal.Zero))
}

func TestParseImportRow(t *testing.T) {
	header := []string{"sku", "Name", "Category", "Quantity", "Min", "Price", "Location"}
	idx := export.HeaderIndex(header, colSKU, colName, colCategory, colQuantity, colMin, colPrice, colLocation)

	item, err := parseImportRow([]string{"rt-100", "Роутер", "Router", "5", "2", "120,50", "Склад А"}, idx)
	require.NoError(t, err)
	assert.Equal(t, "RT-100", item.SKU)
	assert.Equal(t, "router", item.Category)
	assert.Equal(t, 5, item.Quantity)
	assert.True(t, decimal.RequireFromString("120.5").Equal(item.UnitPrice))
	assert.Equal(t, "Склад А", *item.Location)

	item, err = parseImportRow([]string{"", ""}, idx)
	assert.NoError(t, err)
	assert.Nil(t, item)

	_, err = parseImportRow([]string{"RT-1", "Роутер", "toaster"}, idx)
	assert.Error(t, err)

	_, err = parseImportRow([]string{"RT-1", "Роутер", "router", "-1"}, idx)
	assert.Error(t, err)
}

func TestMergeImported_SkipsUnchanged(t *testing.T) {
	idx := map[string]int{colSKU: 0, colName: 1, colCategory: -1, colQuantity: 2, colMin: -1, colPrice: -1, colLocation: -1}
	dst := &entities.InventoryItem{SKU: "A", Name: "Кабель", Category: "cable", Quantity: 10}

	assert.False(t, mergeImported(dst, &entities.InventoryItem{SKU: "A", Name: "Кабель", Category: "other", Quantity: 10}, idx))
	assert.Equal(t, "cable", dst.Category)

	assert.True(t, mergeImported(dst, &entities.InventoryItem{SKU: "A", Name: "Кабель", Quantity: 12}, idx))
	assert.Equal(t, 12, dst.Quantity)
}

