package services

import (
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
	"isp-system/pkg/types"
	"isp-system/pkg/utils"
)

func TestSubscriptionCreate_PlanMustBeActiveAndLocal(t *testing.T) {
	env := newTestEnv()
	subs, plans, users := new(mockSubscriptionRepo), new(mockPlanRepo), new(mockUserRepo)
	svc := NewSubscriptionService(env.base, subs, plans, users)
	op := uint64(1)
	ctx := actorCtx(2, constants.RoleOperator, &op)

	users.On("FindByID", uint64(30)).Return(&entities.User{ID: 30, Fio: "Каримов Фаррух", RoleCode: constants.RoleCustomer, OperatorID: &op}, nil)
	plans.On("FindByID", uint64(1)).Return(&entities.Plan{ID: 1, OperatorID: op, Name: "Домашний 100", Status: constants.StatusActive}, nil)
	plans.On("FindByID", uint64(2)).Return(&entities.Plan{ID: 2, OperatorID: op, Name: "Архивный", Status: constants.StatusInactive}, nil)
	plans.On("FindByID", uint64(3)).Return(&entities.Plan{ID: 3, OperatorID: 9, Name: "Чужой", Status: constants.StatusActive}, nil)
	subs.On("Create", mock.Anything).Return(nil)

	payload := func(planID uint64) dto.CreateSubscriptionDTO {
		return dto.CreateSubscriptionDTO{CustomerID: 30, PlanID: planID, StartDate: "2024-06-01", Address: "ул. Рудаки, 10"}
	}

	var input *apperrors.InvalidInputError
	_, err := svc.Create(ctx, payload(2))
	assert.ErrorAs(t, err, &input)
	_, err = svc.Create(ctx, payload(3))
	assert.ErrorAs(t, err, &input)
	subs.AssertNotCalled(t, "Create", mock.Anything)

	sub, err := svc.Create(ctx, payload(1))
	require.NoError(t, err)
	assert.Equal(t, constants.SubscriptionPending, sub.Status)
	assert.Equal(t, "Домашний 100", sub.PlanName)
	assert.Equal(t, "Каримов Фаррух", sub.CustomerName)
	assert.Equal(t, []uint64{30}, env.bus.events[0].Recipients)
}

func TestSubscriptionCancelledIsFinal(t *testing.T) {
	env := newTestEnv()
	subs := new(mockSubscriptionRepo)
	svc := NewSubscriptionService(env.base, subs, new(mockPlanRepo), new(mockUserRepo))
	op := uint64(1)
	ctx := actorCtx(7, constants.RoleStaff, &op)

	subs.On("FindByID", uint64(4)).Return(&entities.Subscription{ID: 4, OperatorID: op, CustomerID: 30, Status: constants.SubscriptionActive}, nil)
	subs.On("FindByID", uint64(5)).Return(&entities.Subscription{ID: 5, OperatorID: op, CustomerID: 30, Status: constants.SubscriptionCancelled}, nil)
	subs.On("Update", mock.Anything).Return(nil)

	sub, err := svc.Update(ctx, 4, dto.UpdateSubscriptionDTO{Status: ptr(constants.SubscriptionCancelled)}, utils.Fields{"status": {}})
	require.NoError(t, err)
	assert.Equal(t, constants.SubscriptionCancelled, sub.Status)
	assert.Equal(t, constants.ActionStatusChanged, env.logs.entries[0].Action)

	_, err = svc.Update(ctx, 5, dto.UpdateSubscriptionDTO{Status: ptr(constants.SubscriptionActive)}, utils.Fields{"status": {}})
	assert.ErrorIs(t, err, apperrors.ErrFinalStatus)
	subs.AssertNumberOfCalls(t, "Update", 1)
}

func TestPaymentCreate_CompletedStampsPaidAt(t *testing.T) {
	env := newTestEnv()
	payments, subs := new(mockPaymentRepo), new(mockSubscriptionRepo)
	svc := NewPaymentService(env.base, payments, subs)
	op := uint64(1)
	now := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)
	freezeTime(t, now)

	subs.On("FindByID", uint64(7)).Return(&entities.Subscription{ID: 7, OperatorID: op, CustomerID: 30, CustomerName: "Каримов Фаррух"}, nil)
	payments.On("Create", mock.Anything).Return(nil)

	payment, err := svc.Create(actorCtx(7, constants.RoleStaff, &op), dto.CreatePaymentDTO{
		SubscriptionID: 7, Amount: decimal.NewFromInt(150), Method: "cash", Status: constants.PaymentCompleted, Reference: "KASSA-001",
	})
	require.NoError(t, err)
	assert.Equal(t, constants.PaymentCompleted, payment.Status)
	require.NotNil(t, payment.PaidAt)
	assert.Equal(t, now, *payment.PaidAt)
	assert.Equal(t, uint64(30), payment.CustomerID)

	payment, err = svc.Create(actorCtx(7, constants.RoleStaff, &op), dto.CreatePaymentDTO{
		SubscriptionID: 7, Amount: decimal.NewFromInt(150), Method: "card", Reference: "POS-17",
	})
	require.NoError(t, err)
	assert.Equal(t, constants.PaymentPending, payment.Status)
	assert.Nil(t, payment.PaidAt)
}

func TestPaymentUpdate_RefundOnlyFromCompleted(t *testing.T) {
	env := newTestEnv()
	payments := new(mockPaymentRepo)
	svc := NewPaymentService(env.base, payments, new(mockSubscriptionRepo))
	op := uint64(1)
	ctx := actorCtx(2, constants.RoleOperator, &op)
	now := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)
	freezeTime(t, now)

	payments.On("FindByID", uint64(1)).Return(&entities.Payment{ID: 1, OperatorID: op, CustomerID: 30, Status: constants.PaymentPending}, nil)
	payments.On("FindByID", uint64(2)).Return(&entities.Payment{ID: 2, OperatorID: op, CustomerID: 30, Status: constants.PaymentFailed}, nil)
	payments.On("FindByID", uint64(3)).Return(&entities.Payment{ID: 3, OperatorID: op, CustomerID: 30, Status: constants.PaymentRefunded}, nil)
	payments.On("Update", mock.Anything).Return(nil)

	payment, err := svc.Update(ctx, 1, dto.UpdatePaymentDTO{Status: ptr(constants.PaymentCompleted)})
	require.NoError(t, err)
	require.NotNil(t, payment.PaidAt)
	assert.Equal(t, now, *payment.PaidAt)

	payment, err = svc.Update(ctx, 1, dto.UpdatePaymentDTO{Status: ptr(constants.PaymentRefunded)})
	require.NoError(t, err)
	assert.Equal(t, constants.PaymentRefunded, payment.Status)
	assert.Equal(t, now, *payment.PaidAt)

	_, err = svc.Update(ctx, 2, dto.UpdatePaymentDTO{Status: ptr(constants.PaymentRefunded)})
	var input *apperrors.InvalidInputError
	assert.ErrorAs(t, err, &input)

	_, err = svc.Update(ctx, 3, dto.UpdatePaymentDTO{Reference: ptr("X")})
	assert.ErrorIs(t, err, apperrors.ErrFinalStatus)
	payments.AssertNumberOfCalls(t, "Update", 2)
}

func TestPaymentStats_TotalAmount(t *testing.T) {
	env := newTestEnv()
	payments := new(mockPaymentRepo)
	svc := NewPaymentService(env.base, payments, new(mockSubscriptionRepo))
	op := uint64(1)

	payments.On("GetStats", mock.Anything).Return(types.StatusStats{Total: 5, ByStatus: map[string]uint64{"completed": 3, "pending": 2}}, nil)
	payments.On("SumCompleted", mock.Anything).Return(decimal.RequireFromString("450.50"), nil)

	stats, err := svc.GetStats(actorCtx(2, constants.RoleOperator, &op), types.Filter{})
	require.NoError(t, err)
	assert.Equal(t, uint64(5), stats.Total)
	assert.Equal(t, uint64(3), stats.ByStatus[constants.PaymentCompleted])
	assert.True(t, stats.TotalAmount.Equal(decimal.RequireFromString("450.5")))
}
