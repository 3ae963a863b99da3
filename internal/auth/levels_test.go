package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelAllows(t *testing.T) {
	testCases := []struct {
		name    string
		level   Level
		roles   []string
		allowed bool
	}{
		{
			name:    "authenticated accepts empty role set",
			level:   LevelAuthenticated,
			roles:   nil,
			allowed: true,
		},
		{
			name:    "staff rejects empty role set",
			level:   LevelStaff,
			roles:   nil,
			allowed: false,
		},
		{
			name:    "staff accepts staff role",
			level:   LevelStaff,
			roles:   []string{"staff"},
			allowed: true,
		},
		{
			name:    "staff accepts direction role",
			level:   LevelStaff,
			roles:   []string{"direction"},
			allowed: true,
		},
		{
			name:    "staff role comparison is case-insensitive",
			level:   LevelStaff,
			roles:   []string{"Staff"},
			allowed: true,
		},
		{
			name:    "gestion rejects staff role",
			level:   LevelGestion,
			roles:   []string{"staff"},
			allowed: false,
		},
		{
			name:    "gestion accepts gestion role",
			level:   LevelGestion,
			roles:   []string{"gestion"},
			allowed: true,
		},
		{
			name:    "direction rejects gestion role",
			level:   LevelDirection,
			roles:   []string{"gestion"},
			allowed: false,
		},
		{
			name:    "direction accepts direction role",
			level:   LevelDirection,
			roles:   []string{"DIRECTION"},
			allowed: true,
		},
		{
			name:    "one matching role among unrelated ones is enough",
			level:   LevelStaff,
			roles:   []string{"citizen", "vip", "staff"},
			allowed: true,
		},
		{
			name:    "unrelated roles never pass a gated level",
			level:   LevelStaff,
			roles:   []string{"citizen", "vip"},
			allowed: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.allowed, tc.level.Allows(tc.roles))
		})
	}
}

// TestLevelMonotonicity verifies that passing a level implies passing every
// weaker level.
func TestLevelMonotonicity(t *testing.T) {
	levels := []Level{LevelAuthenticated, LevelStaff, LevelGestion, LevelDirection}
	roleSets := [][]string{
		{},
		{"staff"},
		{"gestion"},
		{"direction"},
		{"staff", "gestion"},
		{"citizen"},
	}

	for _, roles := range roleSets {
		for i := 1; i < len(levels); i++ {
			if levels[i].Allows(roles) {
				assert.True(t, levels[i-1].Allows(roles),
					"roles %v pass %s but not the weaker %s", roles, levels[i], levels[i-1])
			}
		}
	}
}
