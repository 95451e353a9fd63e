package seeders

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"isp-system/internal/authz"
)

func TestRolesData_CoversRoleDefaults(t *testing.T) {
	codes := make(map[string]bool, len(rolesData))
	for _, r := range rolesData {
		assert.NotEmpty(t, r.Name, r.Code)
		codes[r.Code] = true
	}
	for code := range authz.RoleDefaults {
		assert.True(t, codes[code], "роль %s не сидируется", code)
	}
}

func TestDemoPlans_Valid(t *testing.T) {
	seen := make(map[string]bool)
	for _, p := range demoPlans {
		assert.Greater(t, p.Speed, 0, p.Code)
		assert.False(t, seen[p.Code], "дубль кода %s", p.Code)
		seen[p.Code] = true
		assert.Contains(t, []string{"monthly", "quarterly", "yearly"}, p.Cycle)
	}
}

func TestInventoryNames_KnownCategories(t *testing.T) {
	for category, names := range inventoryNames {
		assert.Contains(t, []string{"router", "modem", "ont", "cable", "switch", "other"}, category)
		assert.NotEmpty(t, names, category)
	}
}
