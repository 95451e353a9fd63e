package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"isp-system/internal/dto"
	"isp-system/internal/entities"
	"isp-system/pkg/constants"
	apperrors "isp-system/pkg/errors"
	"isp-system/pkg/utils"
)

func TestOrderCreate_TotalFromItems(t *testing.T) {
	env := newTestEnv()
	orders, vendors := new(mockOrderRepo), new(mockVendorRepo)
	svc := NewOrderService(env.base, orders, vendors)
	op, vendorUser := uint64(1), uint64(50)

	vendors.On("FindByID", uint64(4)).Return(&entities.Vendor{ID: 4, OperatorID: op, UserID: &vendorUser, Name: "ТехноСнаб", Status: constants.StatusActive}, nil)
	vendors.On("FindByID", uint64(5)).Return(&entities.Vendor{ID: 5, OperatorID: op, Name: "Старый", Status: constants.StatusInactive}, nil)
	orders.On("Create", mock.Anything).Return(nil)

	order, err := svc.Create(actorCtx(2, constants.RoleOperator, &op), dto.CreateOrderDTO{
		VendorID: 4,
		Items: []dto.OrderItemDTO{
			{Name: "ONT Huawei", Quantity: 2, UnitPrice: decimal.RequireFromString("150.50")},
			{Name: "Патч-корд", Quantity: 3, UnitPrice: decimal.NewFromInt(10)},
		},
	})
	require.NoError(t, err)
	assert.True(t, order.Total.Equal(decimal.RequireFromString("331")), order.Total.String())
	assert.Equal(t, constants.OrderPending, order.Status)
	assert.Len(t, order.Items, 2)
	assert.Equal(t, []uint64{vendorUser}, env.bus.events[0].Recipients)

	_, err = svc.Create(actorCtx(2, constants.RoleOperator, &op), dto.CreateOrderDTO{
		VendorID: 5, Items: []dto.OrderItemDTO{{Name: "Кабель", Quantity: 1, UnitPrice: decimal.NewFromInt(1)}},
	})
	var input *apperrors.InvalidInputError
	assert.ErrorAs(t, err, &input)
}

func TestOrderUpdate_VendorLimits(t *testing.T) {
	env := newTestEnv()
	orders, vendors := new(mockOrderRepo), new(mockVendorRepo)
	svc := NewOrderService(env.base, orders, vendors)
	op, vendorUser := uint64(1), uint64(50)
	ctx := vendorCtx(vendorUser, 4, &op)
	status := func(s string) dto.UpdateOrderDTO { return dto.UpdateOrderDTO{Status: ptr(s)} }
	fields := utils.Fields{"status": {}}

	vendors.On("FindByID", uint64(4)).Return(&entities.Vendor{ID: 4, OperatorID: op, UserID: &vendorUser}, nil)
	orders.On("FindByID", uint64(1)).Return(&entities.Order{ID: 1, OperatorID: op, VendorID: 4, Status: constants.OrderPending}, nil)
	orders.On("FindByID", uint64(2)).Return(&entities.Order{ID: 2, OperatorID: op, VendorID: 4, Status: constants.OrderShipped}, nil)
	orders.On("FindByID", uint64(3)).Return(&entities.Order{ID: 3, OperatorID: op, VendorID: 4, Status: constants.OrderProcessing}, nil)
	orders.On("FindByID", uint64(4)).Return(&entities.Order{ID: 4, OperatorID: op, VendorID: 9, Status: constants.OrderPending}, nil)
	orders.On("Update", mock.Anything).Return(nil)

	var input *apperrors.InvalidInputError

	_, err := svc.Update(ctx, 1, status(constants.OrderShipped), fields)
	assert.ErrorAs(t, err, &input)

	_, err = svc.Update(ctx, 1, dto.UpdateOrderDTO{Items: []dto.OrderItemDTO{{Name: "ONT", Quantity: 1, UnitPrice: decimal.NewFromInt(1)}}}, utils.Fields{"items": {}})
	assert.ErrorAs(t, err, &input)

	order, err := svc.Update(ctx, 1, status(constants.OrderConfirmed), fields)
	require.NoError(t, err)
	assert.Equal(t, constants.OrderConfirmed, order.Status)

	_, err = svc.Update(ctx, 2, status(constants.OrderCancelled), fields)
	assert.ErrorAs(t, err, &input)

	order, err = svc.Update(ctx, 3, status(constants.OrderCancelled), fields)
	require.NoError(t, err)
	assert.Equal(t, constants.OrderCancelled, order.Status)

	_, err = svc.Update(ctx, 4, status(constants.OrderConfirmed), fields)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	orders.AssertNumberOfCalls(t, "Update", 2)
}

func TestOrderUpdate_OperatorMayCancelShipped(t *testing.T) {
	env := newTestEnv()
	orders, vendors := new(mockOrderRepo), new(mockVendorRepo)
	svc := NewOrderService(env.base, orders, vendors)
	op := uint64(1)

	vendors.On("FindByID", uint64(4)).Return(&entities.Vendor{ID: 4, OperatorID: op}, nil)
	orders.On("FindByID", uint64(2)).Return(&entities.Order{ID: 2, OperatorID: op, VendorID: 4, Status: constants.OrderShipped}, nil)
	orders.On("Update", mock.Anything).Return(nil)

	order, err := svc.Update(actorCtx(2, constants.RoleOperator, &op), 2, dto.UpdateOrderDTO{Status: ptr(constants.OrderCancelled)}, utils.Fields{"status": {}})
	require.NoError(t, err)
	assert.Equal(t, constants.OrderCancelled, order.Status)
}

func TestReturnCreate_OnlyDeliveredOrders(t *testing.T) {
	env := newTestEnv()
	returns, orders, vendors := new(mockReturnRepo), new(mockOrderRepo), new(mockVendorRepo)
	svc := NewReturnService(env.base, returns, orders, vendors)
	op, vendorUser := uint64(1), uint64(50)
	ctx := actorCtx(2, constants.RoleOperator, &op)

	orders.On("FindByID", uint64(9)).Return(&entities.Order{ID: 9, OperatorID: op, VendorID: 4, OrderNumber: "PO-20240601-ABC123", Status: constants.OrderDelivered, Total: decimal.NewFromInt(500)}, nil)
	orders.On("FindByID", uint64(10)).Return(&entities.Order{ID: 10, OperatorID: op, VendorID: 4, Status: constants.OrderShipped, Total: decimal.NewFromInt(500)}, nil)
	vendors.On("FindByID", uint64(4)).Return(&entities.Vendor{ID: 4, OperatorID: op, UserID: &vendorUser}, nil)
	returns.On("Create", mock.Anything).Return(nil)

	payload := func(orderID uint64, amount int64) dto.CreateReturnDTO {
		return dto.CreateReturnDTO{OrderID: orderID, Reason: "брак", Quantity: 1, RefundAmount: decimal.NewFromInt(amount)}
	}

	var input *apperrors.InvalidInputError
	_, err := svc.Create(ctx, payload(10, 100))
	assert.ErrorAs(t, err, &input)
	_, err = svc.Create(ctx, payload(9, 600))
	assert.ErrorAs(t, err, &input)
	returns.AssertNotCalled(t, "Create", mock.Anything)

	rt, err := svc.Create(ctx, payload(9, 200))
	require.NoError(t, err)
	assert.Equal(t, constants.ReturnRequested, rt.Status)
	assert.Equal(t, uint64(4), rt.VendorID)
	assert.Equal(t, "PO-20240601-ABC123", rt.OrderNumber)
	assert.Equal(t, []uint64{vendorUser}, env.bus.events[0].Recipients)
}

func TestReturnUpdate_RefundNotAboveOrderTotal(t *testing.T) {
	env := newTestEnv()
	returns, orders, vendors := new(mockReturnRepo), new(mockOrderRepo), new(mockVendorRepo)
	svc := NewReturnService(env.base, returns, orders, vendors)
	op := uint64(1)
	ctx := actorCtx(2, constants.RoleOperator, &op)
	refund := func(amount int64) dto.UpdateReturnDTO {
		return dto.UpdateReturnDTO{RefundAmount: decimal.NewNullDecimal(decimal.NewFromInt(amount))}
	}

	returns.On("FindByID", uint64(1)).Return(&entities.Return{ID: 1, OperatorID: op, OrderID: 9, VendorID: 4, RefundAmount: decimal.NewFromInt(100), Status: constants.ReturnRequested}, nil)
	orders.On("FindByID", uint64(9)).Return(&entities.Order{ID: 9, OperatorID: op, VendorID: 4, Status: constants.OrderDelivered, Total: decimal.NewFromInt(500)}, nil)
	vendors.On("FindByID", uint64(4)).Return(&entities.Vendor{ID: 4, OperatorID: op}, nil)
	returns.On("Update", mock.Anything).Return(nil)

	_, err := svc.Update(ctx, 1, refund(600))
	var input *apperrors.InvalidInputError
	assert.ErrorAs(t, err, &input)
	returns.AssertNotCalled(t, "Update", mock.Anything)

	rt, err := svc.Update(ctx, 1, refund(500))
	require.NoError(t, err)
	assert.True(t, rt.RefundAmount.Equal(decimal.NewFromInt(500)))
}
