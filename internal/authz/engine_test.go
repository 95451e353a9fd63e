package authz

import (
	"context"
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"isp-system/pkg/contextkeys"
)

type fakeTarget struct {
	operatorID *uint64
	owners     []uint64
	vendorID   *uint64
	shared     bool
}

func (f fakeTarget) ScopeOperatorID() *uint64   { return f.operatorID }
func (f fakeTarget) ScopeOwnerIDs() []uint64    { return f.owners }
func (f fakeTarget) ScopeVendorID() *uint64     { return f.vendorID }
func (f fakeTarget) SharedWithinOperator() bool { return f.shared }

func u64(v uint64) *uint64 { return &v }

func perms(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

func TestCanDo(t *testing.T) {
	operatorActor := &Actor{ID: 10, OperatorID: u64(1)}
	customer := &Actor{ID: 20, OperatorID: u64(1)}
	vendor := &Actor{ID: 30, OperatorID: u64(1), VendorID: u64(7)}

	tests := []struct {
		name       string
		permission string
		ctx        Context
		want       bool
	}{
		{"superuser bypass", ComplaintsDelete, Context{Actor: operatorActor, Permissions: perms(Superuser), Target: fakeTarget{operatorID: u64(2)}}, true},
		{"no rbac permission", ComplaintsView, Context{Actor: operatorActor, Permissions: perms(ScopeAll)}, false},
		{"no target", ComplaintsCreate, Context{Actor: customer, Permissions: perms(ComplaintsCreate, ScopeOwn)}, true},
		{"operator same tenant", ComplaintsUpdate, Context{Actor: operatorActor, Permissions: perms(ComplaintsUpdate, ScopeOperator), Target: fakeTarget{operatorID: u64(1)}}, true},
		{"operator other tenant", ComplaintsUpdate, Context{Actor: operatorActor, Permissions: perms(ComplaintsUpdate, ScopeOperator), Target: fakeTarget{operatorID: u64(2)}}, false},
		{"own record", ComplaintsView, Context{Actor: customer, Permissions: perms(ComplaintsView, ScopeOwn), Target: fakeTarget{operatorID: u64(1), owners: []uint64{20}}}, true},
		{"foreign record", ComplaintsView, Context{Actor: customer, Permissions: perms(ComplaintsView, ScopeOwn), Target: fakeTarget{operatorID: u64(1), owners: []uint64{21}}}, false},
		{"vendor owns order", OrdersUpdate, Context{Actor: vendor, Permissions: perms(OrdersUpdate, ScopeOwn), Target: fakeTarget{operatorID: u64(1), vendorID: u64(7)}}, true},
		{"vendor foreign order", OrdersUpdate, Context{Actor: vendor, Permissions: perms(OrdersUpdate, ScopeOwn), Target: fakeTarget{operatorID: u64(1), vendorID: u64(8)}}, false},
		{"shared plan view", PlansView, Context{Actor: customer, Permissions: perms(PlansView, ScopeOwn), Target: fakeTarget{operatorID: u64(1), shared: true}}, true},
		{"shared plan other tenant", PlansView, Context{Actor: customer, Permissions: perms(PlansView, ScopeOwn), Target: fakeTarget{operatorID: u64(2), shared: true}}, false},
		{"shared plan update", PlansUpdate, Context{Actor: customer, Permissions: perms(PlansUpdate, ScopeOwn), Target: fakeTarget{operatorID: u64(1), shared: true}}, false},
		{"scope all", PaymentsView, Context{Actor: operatorActor, Permissions: perms(PaymentsView, ScopeAll), Target: fakeTarget{operatorID: u64(9)}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanDo(tt.permission, tt.ctx))
		})
	}
}

func TestListScope(t *testing.T) {
	cols := Columns{Operator: "c.operator_id", Owner: []string{"c.customer_id", "c.assigned_to"}}

	t.Run("superuser has no restriction", func(t *testing.T) {
		assert.Nil(t, ListScope(&Actor{ID: 1}, perms(Superuser), cols))
	})

	t.Run("operator scope", func(t *testing.T) {
		cond := ListScope(&Actor{ID: 1, OperatorID: u64(5)}, perms(ScopeOperator), cols)
		require.NotNil(t, cond)
		sql, args, err := sq.Select("*").From("complaints c").Where(cond).ToSql()
		require.NoError(t, err)
		assert.Equal(t, "SELECT * FROM complaints c WHERE (c.operator_id = ?)", sql)
		assert.Equal(t, []interface{}{uint64(5)}, args)
	})

	t.Run("own scope ORs owner columns", func(t *testing.T) {
		cond := ListScope(&Actor{ID: 3, OperatorID: u64(5)}, perms(ScopeOwn), cols)
		sql, args, err := sq.Select("*").From("complaints c").Where(cond).ToSql()
		require.NoError(t, err)
		assert.Equal(t, "SELECT * FROM complaints c WHERE (c.customer_id = ? OR c.assigned_to = ?)", sql)
		assert.Equal(t, []interface{}{uint64(3), uint64(3)}, args)
	})

	t.Run("vendor column", func(t *testing.T) {
		cond := ListScope(&Actor{ID: 3, VendorID: u64(7)}, perms(ScopeOwn), Columns{Operator: "o.operator_id", Vendor: "o.vendor_id"})
		sql, args, err := sq.Select("*").From("orders o").Where(cond).ToSql()
		require.NoError(t, err)
		assert.Equal(t, "SELECT * FROM orders o WHERE (o.vendor_id = ?)", sql)
		assert.Equal(t, []interface{}{uint64(7)}, args)
	})

	t.Run("nothing matches", func(t *testing.T) {
		cond := ListScope(&Actor{ID: 3}, perms(ScopeOwn), Columns{Operator: "p.operator_id"})
		sql, _, err := cond.ToSql()
		require.NoError(t, err)
		assert.Equal(t, "1 = 0", sql)
	})
}

func TestActorFromContext(t *testing.T) {
	_, _, err := ActorFromContext(context.Background())
	assert.Error(t, err)

	ctx := context.WithValue(context.Background(), contextkeys.UserIDKey, uint64(4))
	ctx = context.WithValue(ctx, contextkeys.RoleCodeKey, "STAFF")
	ctx = context.WithValue(ctx, contextkeys.OperatorIDKey, u64(2))
	ctx = context.WithValue(ctx, contextkeys.VendorIDKey, (*uint64)(nil))
	ctx = context.WithValue(ctx, contextkeys.UserPermissionsMapKey, perms(TasksView))

	actor, p, err := ActorFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), actor.ID)
	assert.Equal(t, "STAFF", actor.RoleCode)
	assert.Equal(t, uint64(2), *actor.OperatorID)
	assert.Nil(t, actor.VendorID)
	assert.True(t, p[TasksView])
}

func TestRoleDefaultsAreCatalogued(t *testing.T) {
	for role, names := range RoleDefaults {
		for _, n := range names {
			_, ok := Descriptions[n]
			assert.True(t, ok, "роль %s: привилегия %s отсутствует в каталоге", role, n)
		}
	}
}
