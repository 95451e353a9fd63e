package repositories

import (
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"isp-system/internal/authz"
	"isp-system/pkg/types"
)

const complaintJoins = "JOIN users cu ON cu.id = c.customer_id LEFT JOIN users asg ON asg.id = c.assigned_to"

func TestListSource_Count(t *testing.T) {
	filter := types.Filter{Filter: map[string]interface{}{"status": "open"}}

	sql, args, err := complaintSource.count(filter, sq.Eq{"c.operator_id": uint64(3)}).ToSql()
	require.NoError(t, err)

	assert.Equal(t, "SELECT COUNT(c.id) FROM complaints c "+complaintJoins+" WHERE c.operator_id = $1 AND c.status = $2", sql)
	assert.Equal(t, []interface{}{uint64(3), "open"}, args)
}

func TestListSource_List(t *testing.T) {
	filter := types.Filter{
		Search:         "wifi",
		Sort:           map[string]string{"created_at": "asc"},
		Limit:          10,
		Offset:         10,
		WithPagination: true,
	}

	sql, args, err := ticketSource.list(filter, nil).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "FROM tickets t LEFT JOIN users asg ON asg.id = t.assigned_to")
	assert.Contains(t, sql, "ORDER BY t.created_at ASC LIMIT 10 OFFSET 10")
	assert.Len(t, args, len(ticketSource.Spec.Search))
}

func TestListSource_SoftDeleteBase(t *testing.T) {
	filter := types.Filter{Filter: map[string]interface{}{"status": "low_stock,out_of_stock"}}

	sql, args, err := inventorySource.count(filter, nil).ToSql()
	require.NoError(t, err)

	assert.Equal(t, "SELECT COUNT(i.id) FROM inventory_items i WHERE i.deleted_at IS NULL AND i.status IN ($1,$2)", sql)
	assert.Equal(t, []interface{}{"low_stock", "out_of_stock"}, args)
}

func TestListSource_Stats(t *testing.T) {
	filter := types.Filter{Filter: map[string]interface{}{"priority": "high"}}

	sql, args, err := complaintSource.stats(filter, nil).ToSql()
	require.NoError(t, err)

	assert.Equal(t, "SELECT c.status, COUNT(*) FROM complaints c "+complaintJoins+" WHERE c.priority = $1 GROUP BY c.status", sql)
	assert.Equal(t, []interface{}{"high"}, args)
}

func TestListSource_ScopeFromActor(t *testing.T) {
	vendorID := uint64(9)
	actor := &authz.Actor{ID: 5, RoleCode: "VENDOR", VendorID: &vendorID}
	perms := map[string]bool{authz.ScopeOwn: true, authz.OrdersView: true}

	scope := authz.ListScope(actor, perms, OrderScopeColumns)
	sql, args, err := orderSource.count(types.Filter{}, scope).ToSql()
	require.NoError(t, err)

	assert.Equal(t, "SELECT COUNT(o.id) FROM orders o JOIN vendors v ON v.id = o.vendor_id WHERE (o.vendor_id = $1)", sql)
	assert.Equal(t, []interface{}{uint64(9)}, args)
}

func TestAndScope(t *testing.T) {
	assert.Nil(t, AndScope(nil, nil))

	sql, args, err := psql.Select("1").Where(AndScope(sq.Eq{"a": 1}, nil, sq.Eq{"b": 2})).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1 WHERE (a = $1 AND b = $2)", sql)
	assert.Equal(t, []interface{}{1, 2}, args)
}

func TestCompletedSum_IgnoresStatusFilter(t *testing.T) {
	filter := types.Filter{Filter: map[string]interface{}{"status": "pending", "method": "cash"}}

	sql, args, err := completedSum(filter, nil).ToSql()
	require.NoError(t, err)

	assert.Equal(t, "SELECT COALESCE(SUM(pm.amount), 0) FROM payments pm JOIN users cu ON cu.id = pm.customer_id WHERE pm.method = $1 AND pm.status = $2", sql)
	assert.Equal(t, []interface{}{"cash", "completed"}, args)

	// исходный фильтр списка не меняется
	assert.Equal(t, "pending", filter.Filter["status"])
	assert.Equal(t, withoutStatus(filter).Filter, map[string]interface{}{"method": "cash"})
}
