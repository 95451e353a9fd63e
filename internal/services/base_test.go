package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"isp-system/internal/authz"
	"isp-system/pkg/constants"
	apperrors "isp-system/pkg/errors"
)

func TestInTx_PublishesAfterCommit(t *testing.T) {
	env := newTestEnv()
	actor := &authz.Actor{ID: 7}
	op := uint64(1)

	err := env.base.inTx(context.Background(), actor, func(tx pgx.Tx, j *Journal) error {
		if err := j.Record(context.Background(), Change{EntityType: constants.EntityTask, EntityID: 10, OperatorID: &op, Action: constants.ActionCreated, New: map[string]string{"title": "Монтаж"}, Recipients: []uint64{3}}); err != nil {
			return err
		}
		assert.Empty(t, env.bus.events, "до коммита событий быть не должно")
		return j.Record(context.Background(), Change{EntityType: constants.EntityOrder, EntityID: 20, OperatorID: &op, Action: constants.ActionStatusChanged})
	})
	require.NoError(t, err)

	require.Len(t, env.logs.entries, 2)
	require.Len(t, env.bus.events, 2)
	assert.Equal(t, env.logs.entries[0].TxID, env.logs.entries[1].TxID, "одна транзакция - один tx_id")
	assert.Equal(t, uint64(7), *env.logs.entries[0].ActorID)
	assert.JSONEq(t, `{"title":"Монтаж"}`, string(env.logs.entries[0].NewValue))
	assert.Nil(t, env.logs.entries[0].OldValue)
	assert.Equal(t, []uint64{3}, env.bus.events[0].Recipients)
}

func TestInTx_RollbackDropsEvents(t *testing.T) {
	env := newTestEnv()
	boom := errors.New("boom")

	err := env.base.inTx(context.Background(), &authz.Actor{ID: 1}, func(tx pgx.Tx, j *Journal) error {
		require.NoError(t, j.Record(context.Background(), Change{EntityType: constants.EntityTask, EntityID: 1, Action: constants.ActionCreated}))
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Empty(t, env.bus.events)
	assert.Zero(t, env.tx.committed)
}

func TestGuardFinal(t *testing.T) {
	assert.ErrorIs(t, guardFinal(constants.EntityPayment, constants.PaymentRefunded), apperrors.ErrFinalStatus)
	assert.NoError(t, guardFinal(constants.EntityPayment, constants.PaymentCompleted))
}

func TestResolveOperator(t *testing.T) {
	op := uint64(5)
	admin := &authz.Actor{ID: 1}
	global := map[string]bool{authz.Superuser: true}

	id, err := resolveOperator(admin, global, ptr(uint64(9)))
	require.NoError(t, err)
	assert.Equal(t, uint64(9), id)

	_, err = resolveOperator(admin, global, nil)
	var input *apperrors.InvalidInputError
	assert.ErrorAs(t, err, &input)

	// не глобальная роль не может выбрать чужого оператора
	id, err = resolveOperator(&authz.Actor{ID: 2, OperatorID: &op}, map[string]bool{authz.ScopeOperator: true}, ptr(uint64(9)))
	require.NoError(t, err)
	assert.Equal(t, op, id)

	_, err = resolveOperator(&authz.Actor{ID: 3}, map[string]bool{authz.ScopeOwn: true}, nil)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestAuthorize_DeniedWithoutPermission(t *testing.T) {
	env := newTestEnv()
	ctx := actorCtx(4, constants.RoleCustomer, ptr(uint64(1)))

	_, _, err := env.base.authorize(ctx, authz.TasksView, nil)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestRecipientsSkipsEmpty(t *testing.T) {
	assert.Equal(t, []uint64{2, 5}, recipients(ptr(uint64(2)), nil, ptr(uint64(0)), ptr(uint64(5))))
}

func TestMarshalValue(t *testing.T) {
	raw, err := marshalValue(nil)
	require.NoError(t, err)
	assert.Nil(t, raw)

	raw, err = marshalValue(struct {
		Status string `json:"status"`
	}{"open"})
	require.NoError(t, err)
	var decoded map[string]string
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "open", decoded["status"])
}
