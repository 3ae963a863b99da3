package models

import "time"

// Role is an authorization label attached to users.
// Roles mirrored from the Discord guild carry the Discord role identifier;
// the synchronizer creates them lazily, renames them in place when the guild
// role is renamed, and never deletes them (orphan roles persist on purpose,
// staff records may still reference them).
// Roles created inside the panel have a nil DiscordID and are outside the
// synchronizer's authority.
type Role struct {
	// ID is the unique identifier for the role.
	ID uint `gorm:"primaryKey"`
	// Name is the human-readable role name. Mutable: guild role renames are
	// applied to the existing row.
	Name string `gorm:"size:100;not null"`
	// DiscordID is the guild role identifier this row mirrors.
	// Nil for locally created roles. At most one row per Discord role.
	DiscordID *string `gorm:"size:32;uniqueIndex"`
	// CreatedAt is the timestamp when the role was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the role was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Role model.
func (Role) TableName() string {
	return "roles"
}

// External reports whether the role is mirrored from Discord.
func (r *Role) External() bool {
	return r.DiscordID != nil
}
