package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"isp-system/internal/dto"
	"isp-system/internal/entities"
	"isp-system/pkg/constants"
	apperrors "isp-system/pkg/errors"
	"isp-system/pkg/utils"
)

func newComplaintService(env *testEnv) (*ComplaintService, *mockComplaintRepo, *mockUserRepo) {
	complaints, users := new(mockComplaintRepo), new(mockUserRepo)
	return NewComplaintService(env.base, complaints, users, new(mockSubscriptionRepo), nil), complaints, users
}

func TestComplaintCreate_CustomerOnlyForSelf(t *testing.T) {
	env := newTestEnv()
	svc, complaints, users := newComplaintService(env)
	op := uint64(1)

	users.On("FindByID", uint64(30)).Return(&entities.User{ID: 30, Fio: "Каримов Фаррух", RoleCode: constants.RoleCustomer, OperatorID: &op}, nil)
	complaints.On("Create", mock.Anything).Return(nil)

	complaint, err := svc.Create(actorCtx(30, constants.RoleCustomer, &op), dto.CreateComplaintDTO{
		CustomerID: ptr(uint64(31)), Subject: "Нет интернета", Description: "С утра не работает", Category: "connectivity",
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(30), complaint.CustomerID)
	assert.Equal(t, constants.IssueOpen, complaint.Status)
	assert.Equal(t, constants.PriorityMedium, complaint.Priority)
	users.AssertNotCalled(t, "FindByID", uint64(31))
}

func TestComplaintCreate_StaffMustNameCustomer(t *testing.T) {
	env := newTestEnv()
	svc, complaints, _ := newComplaintService(env)
	op := uint64(1)

	_, err := svc.Create(actorCtx(7, constants.RoleStaff, &op), dto.CreateComplaintDTO{Subject: "Звонок", Description: "Медленно", Category: "speed"})
	var input *apperrors.InvalidInputError
	assert.ErrorAs(t, err, &input)
	complaints.AssertNotCalled(t, "Create", mock.Anything)
}

func TestComplaintUpdate_ResolvedAtAndClosedIsFinal(t *testing.T) {
	env := newTestEnv()
	svc, complaints, _ := newComplaintService(env)
	op := uint64(1)
	ctx := actorCtx(7, constants.RoleStaff, &op)
	now := time.Date(2024, 6, 3, 15, 30, 0, 0, time.UTC)
	freezeTime(t, now)

	complaints.On("FindByID", uint64(1)).Return(&entities.Complaint{ID: 1, OperatorID: op, CustomerID: 30, Status: constants.IssueInProgress}, nil)
	complaints.On("FindByID", uint64(2)).Return(&entities.Complaint{ID: 2, OperatorID: op, CustomerID: 30, Status: constants.IssueClosed}, nil)
	complaints.On("Update", mock.Anything).Return(nil)

	complaint, err := svc.Update(ctx, 1, dto.UpdateComplaintDTO{Status: ptr(constants.IssueResolved)}, utils.Fields{"status": {}})
	require.NoError(t, err)
	require.NotNil(t, complaint.ResolvedAt)
	assert.Equal(t, now, *complaint.ResolvedAt)
	assert.Equal(t, []uint64{30}, env.bus.events[0].Recipients)

	_, err = svc.Update(ctx, 2, dto.UpdateComplaintDTO{Status: ptr(constants.IssueOpen)}, utils.Fields{"status": {}})
	assert.ErrorIs(t, err, apperrors.ErrFinalStatus)
	complaints.AssertNumberOfCalls(t, "Update", 1)
}

func TestTicketEscalate(t *testing.T) {
	env := newTestEnv()
	tickets := new(mockTicketRepo)
	svc := NewTicketService(env.base, tickets, new(mockComplaintRepo), new(mockUserRepo))
	op, tech := uint64(1), uint64(12)
	ctx := actorCtx(7, constants.RoleStaff, &op)

	tickets.On("FindByID", uint64(1)).Return(&entities.Ticket{ID: 1, OperatorID: op, CreatedBy: 7, AssignedTo: &tech, Priority: constants.PriorityHigh, Status: constants.IssueOpen}, nil)
	tickets.On("FindByID", uint64(2)).Return(&entities.Ticket{ID: 2, OperatorID: op, CreatedBy: 7, Priority: constants.PriorityLow, Status: constants.IssueClosed}, nil)
	tickets.On("Update", mock.Anything).Return(nil)

	ticket, err := svc.Escalate(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, constants.PriorityCritical, ticket.Priority)
	assert.Equal(t, constants.ActionEscalated, env.logs.entries[0].Action)
	assert.Equal(t, []uint64{tech}, env.bus.events[0].Recipients)

	ticket, err = svc.Escalate(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, constants.PriorityCritical, ticket.Priority)

	_, err = svc.Escalate(ctx, 2)
	assert.ErrorIs(t, err, apperrors.ErrFinalStatus)

	_, err = svc.Escalate(actorCtx(30, constants.RoleCustomer, &op), 1)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}
