package bd

import (
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"isp-system/pkg/types"
)

var complaintSpec = ListSpec{
	Allowed: map[string]string{
		"status":     "c.status",
		"priority":   "c.priority",
		"created_at": "c.created_at",
	},
	Search:       []string{"c.subject", "c.description"},
	DefaultOrder: "c.id DESC",
}

func TestApplyFilters(t *testing.T) {
	filter := types.Filter{
		Search: "router",
		Filter: map[string]interface{}{
			"status":   "open,in_progress",
			"priority": "high",
			"password": "x",
		},
	}

	sql, args, err := ApplyFilters(sq.Select("c.id").From("complaints c"), filter, complaintSpec).ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT c.id FROM complaints c WHERE (c.subject ILIKE ? OR c.description ILIKE ?) AND c.priority = ? AND c.status IN (?,?)",
		sql)
	assert.Equal(t, []interface{}{"%router%", "%router%", "high", "open", "in_progress"}, args)
}

func TestApplyFilters_EscapesLike(t *testing.T) {
	filter := types.Filter{Search: "50%_off"}
	_, args, err := ApplyFilters(sq.Select("c.id").From("complaints c"), filter, complaintSpec).ToSql()
	require.NoError(t, err)
	assert.Equal(t, `%50\%\_off%`, args[0])
}

func TestApplyListParams(t *testing.T) {
	t.Run("default order and pagination", func(t *testing.T) {
		filter := types.Filter{Limit: 20, Offset: 40, WithPagination: true}
		sql, _, err := ApplyListParams(sq.Select("c.id").From("complaints c"), filter, complaintSpec).ToSql()
		require.NoError(t, err)
		assert.Equal(t, "SELECT c.id FROM complaints c ORDER BY c.id DESC LIMIT 20 OFFSET 40", sql)
	})

	t.Run("explicit sort ignores unknown fields", func(t *testing.T) {
		filter := types.Filter{Sort: map[string]string{"created_at": "asc", "secret": "desc"}, Limit: 10}
		sql, _, err := ApplyListParams(sq.Select("c.id").From("complaints c"), filter, complaintSpec).ToSql()
		require.NoError(t, err)
		assert.Equal(t, "SELECT c.id FROM complaints c ORDER BY c.created_at ASC", sql)
	})
}
