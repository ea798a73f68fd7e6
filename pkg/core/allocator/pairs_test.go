package allocator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pibshift/pibshift/pkg/core/model"
)

var pairRoles = []model.RoleDefinition{
	{Key: "PRODUCTION", Slots: 1},
	{Key: "FILMING", Slots: 3},
	{Key: "TAKE", Slots: 2},
}

func dayWithPools(pools map[string][]model.Identity) *DayState {
	day := newDayState("05/06")
	for role, pool := range pools {
		day.Pools[role] = append([]model.Identity{}, pool...)
		day.RawPools[role] = append([]model.Identity{}, pool...)
	}
	return day
}

func TestResolvePairs_Cross(t *testing.T) {
	rule := PairRule{
		Name: "laysa-gabriel",
		Kind: PairCross,
		Placements: []PairPlacement{
			{Identity: "Laysa", Roles: []string{"FILMING"}},
			{Identity: "Gabriel Marques", Roles: []string{"PRODUCTION"}},
		},
	}

	t.Run("both available", func(t *testing.T) {
		day := dayWithPools(map[string][]model.Identity{
			"PRODUCTION": {"Ana Souza", "Gabriel Marques"},
			"FILMING":    {"Laysa", "Bruno Lima"},
		})

		placed := ResolvePairs(day, []PairRule{rule}, pairRoles)
		assert.Equal(t, 2, placed)
		require.Len(t, day.Preallocated["FILMING"], 1)
		assert.Equal(t, model.Identity("Laysa"), day.Preallocated["FILMING"][0].identity)
		assert.Equal(t, "laysa-gabriel", day.Preallocated["FILMING"][0].rule)
		require.Len(t, day.Preallocated["PRODUCTION"], 1)
		assert.Equal(t, model.Identity("Gabriel Marques"), day.Preallocated["PRODUCTION"][0].identity)
		assert.True(t, day.Used["Laysa"])
		assert.True(t, day.Used["Gabriel Marques"])
	})

	t.Run("one missing places nobody", func(t *testing.T) {
		day := dayWithPools(map[string][]model.Identity{
			"PRODUCTION": {"Ana Souza"},
			"FILMING":    {"Laysa"},
		})

		placed := ResolvePairs(day, []PairRule{rule}, pairRoles)
		assert.Equal(t, 0, placed)
		assert.Empty(t, day.Preallocated)
		assert.Empty(t, day.Used)
	})

	t.Run("falls through role preferences", func(t *testing.T) {
		preferring := rule
		preferring.Placements = []PairPlacement{
			{Identity: "Laysa", Roles: []string{"TAKE", "FILMING"}},
			{Identity: "Gabriel Marques", Roles: []string{"PRODUCTION"}},
		}
		day := dayWithPools(map[string][]model.Identity{
			"PRODUCTION": {"Gabriel Marques"},
			"FILMING":    {"Laysa"},
		})

		ResolvePairs(day, []PairRule{preferring}, pairRoles)
		require.Len(t, day.Preallocated["FILMING"], 1)
		assert.Empty(t, day.Preallocated["TAKE"])
	})

	t.Run("filtered out unless bypassing", func(t *testing.T) {
		day := dayWithPools(map[string][]model.Identity{
			"PRODUCTION": {"Gabriel Marques"},
			"FILMING":    {"Laysa"},
		})
		// Laysa already at the shift cap
		day.Pools["FILMING"] = nil

		assert.Equal(t, 0, ResolvePairs(day, []PairRule{rule}, pairRoles))

		bypassing := rule
		bypassing.BypassFilters = true
		assert.Equal(t, 2, ResolvePairs(day, []PairRule{bypassing}, pairRoles))
	})
}

func TestResolvePairs_Exclusion(t *testing.T) {
	rule := PairRule{Name: "laysa-nevile", Kind: PairExclusion, Members: []model.Identity{"Laysa", "Gabriel Nevile"}}

	t.Run("first present removes second everywhere", func(t *testing.T) {
		day := dayWithPools(map[string][]model.Identity{
			"FILMING": {"Gabriel Nevile", "Laysa"},
			"TAKE":    {"Gabriel Nevile"},
		})

		ResolvePairs(day, []PairRule{rule}, pairRoles)
		assert.Equal(t, []model.Identity{"Laysa"}, day.Pools["FILMING"])
		assert.Empty(t, day.Pools["TAKE"])
		assert.NotContains(t, day.RawPools["TAKE"], model.Identity("Gabriel Nevile"))
	})

	t.Run("second alone stays", func(t *testing.T) {
		day := dayWithPools(map[string][]model.Identity{
			"FILMING": {"Gabriel Nevile"},
		})

		ResolvePairs(day, []PairRule{rule}, pairRoles)
		assert.Equal(t, []model.Identity{"Gabriel Nevile"}, day.Pools["FILMING"])
	})

	t.Run("filtered first is dropped from raw pools", func(t *testing.T) {
		day := dayWithPools(map[string][]model.Identity{
			"PRODUCTION": {"Gabriel Marques"},
			"FILMING":    {"Gabriel Nevile"},
		})
		// Laysa is available but filtered out, e.g. by the shift cap
		day.RawPools["FILMING"] = []model.Identity{"Gabriel Nevile", "Laysa"}

		bypass := PairRule{
			Name:          "laysa-gabriel",
			Kind:          PairCross,
			BypassFilters: true,
			Placements: []PairPlacement{
				{Identity: "Laysa", Roles: []string{"FILMING"}},
				{Identity: "Gabriel Marques", Roles: []string{"PRODUCTION"}},
			},
		}

		placed := ResolvePairs(day, []PairRule{rule, bypass}, pairRoles)
		assert.Equal(t, 0, placed)
		assert.Equal(t, []model.Identity{"Gabriel Nevile"}, day.RawPools["FILMING"])
		assert.False(t, day.Used["Laysa"])
	})

	t.Run("exclusions run before placements", func(t *testing.T) {
		together := PairRule{Name: "nevile-bruno", Kind: PairTogether, Role: "FILMING", Members: []model.Identity{"Gabriel Nevile", "Bruno Lima"}}
		day := dayWithPools(map[string][]model.Identity{
			"FILMING": {"Bruno Lima", "Gabriel Nevile", "Laysa"},
		})

		placed := ResolvePairs(day, []PairRule{together, rule}, pairRoles)
		assert.Equal(t, 0, placed)
		assert.NotContains(t, day.Pools["FILMING"], model.Identity("Gabriel Nevile"))
	})
}

func TestResolvePairs_Together(t *testing.T) {
	rule := PairRule{Name: "gabriel-gabi", Kind: PairTogether, Role: "TAKE", Members: []model.Identity{"Gabriel", "Gabi"}}

	t.Run("both in pool", func(t *testing.T) {
		day := dayWithPools(map[string][]model.Identity{
			"TAKE": {"Ana Souza", "Gabi", "Gabriel"},
		})

		assert.Equal(t, 2, ResolvePairs(day, []PairRule{rule}, pairRoles))
		require.Len(t, day.Preallocated["TAKE"], 2)
		assert.Equal(t, model.Identity("Gabriel"), day.Preallocated["TAKE"][0].identity)
		assert.Equal(t, model.Identity("Gabi"), day.Preallocated["TAKE"][1].identity)
	})

	t.Run("needs two free slots", func(t *testing.T) {
		day := dayWithPools(map[string][]model.Identity{
			"PRODUCTION": {"Gabriel"},
			"TAKE":       {"Gabi", "Gabriel"},
		})
		day.preallocate("TAKE", "Ana Souza", "earlier")

		assert.Equal(t, 0, ResolvePairs(day, []PairRule{rule}, pairRoles))
		assert.Len(t, day.Preallocated["TAKE"], 1)
	})

	t.Run("member already used", func(t *testing.T) {
		day := dayWithPools(map[string][]model.Identity{
			"TAKE": {"Gabi", "Gabriel"},
		})
		day.Used["Gabriel"] = true

		assert.Equal(t, 0, ResolvePairs(day, []PairRule{rule}, pairRoles))
	})
}

func TestPairRule_Check(t *testing.T) {
	keys := []string{"PRODUCTION", "FILMING", "TAKE"}

	tests := []struct {
		name      string
		rule      PairRule
		expectErr string
	}{
		{
			name: "valid cross",
			rule: PairRule{Name: "x", Kind: PairCross, Placements: []PairPlacement{
				{Identity: "A", Roles: []string{"FILMING"}},
				{Identity: "B", Roles: []string{"PRODUCTION"}},
			}},
		},
		{
			name: "cross with unknown role",
			rule: PairRule{Name: "x", Kind: PairCross, Placements: []PairPlacement{
				{Identity: "A", Roles: []string{"SOUND"}},
				{Identity: "B", Roles: []string{"PRODUCTION"}},
			}},
			expectErr: "unknown role \"SOUND\"",
		},
		{
			name:      "cross with one placement",
			rule:      PairRule{Name: "x", Kind: PairCross, Placements: []PairPlacement{{Identity: "A", Roles: []string{"FILMING"}}}},
			expectErr: "at least 2 placements",
		},
		{
			name:      "exclusion with three members",
			rule:      PairRule{Name: "x", Kind: PairExclusion, Members: []model.Identity{"A", "B", "C"}},
			expectErr: "exactly 2 members",
		},
		{
			name:      "together with same member twice",
			rule:      PairRule{Name: "x", Kind: PairTogether, Role: "TAKE", Members: []model.Identity{"A", "A"}},
			expectErr: "must be different",
		},
		{
			name:      "together with unknown role",
			rule:      PairRule{Name: "x", Kind: PairTogether, Role: "SOUND", Members: []model.Identity{"A", "B"}},
			expectErr: "unknown role",
		},
		{
			name:      "unknown kind",
			rule:      PairRule{Name: "x", Kind: "sometimes"},
			expectErr: "unknown kind",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule.Check(keys)
			if tt.expectErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectErr)
		})
	}
}
