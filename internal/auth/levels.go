package auth

import "strings"

// Level is a tiered access requirement.
type Level int

// Access levels, from weakest to strongest requirement.
const (
	// LevelAuthenticated requires any signed-in user.
	LevelAuthenticated Level = iota
	// LevelStaff requires the staff, gestion or direction role.
	LevelStaff
	// LevelGestion requires the gestion or direction role.
	LevelGestion
	// LevelDirection requires the direction role.
	LevelDirection
)

// Role names recognized by the access gate. Comparison is case-insensitive.
const (
	RoleStaff     = "staff"
	RoleGestion   = "gestion"
	RoleDirection = "direction"
)

// levelRoles maps each level to the role names that satisfy it.
var levelRoles = map[Level][]string{ //nolint:gochecknoglobals
	LevelStaff:     {RoleStaff, RoleGestion, RoleDirection},
	LevelGestion:   {RoleGestion, RoleDirection},
	LevelDirection: {RoleDirection},
}

// String returns the level name.
func (l Level) String() string {
	switch l {
	case LevelAuthenticated:
		return "authenticated"
	case LevelStaff:
		return "staff"
	case LevelGestion:
		return "gestion"
	case LevelDirection:
		return "direction"
	default:
		return "unknown"
	}
}

// Allows reports whether a user holding the given roles satisfies the level.
// A single matching role is enough. LevelAuthenticated is satisfied by any
// signed-in user regardless of roles.
func (l Level) Allows(roles []string) bool {
	if l == LevelAuthenticated {
		return true
	}

	accepted := levelRoles[l]

	for _, held := range roles {
		for _, want := range accepted {
			if strings.EqualFold(held, want) {
				return true
			}
		}
	}

	return false
}
