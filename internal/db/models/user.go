package models

import (
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog/log"
)

// User represents an account in the panel.
// Most users sign in through Discord and carry a linked Discord account;
// local accounts (service/admin accounts) authenticate with an argon2id password.
type User struct {
	// ID is the unique identifier for the user.
	ID uint64 `gorm:"primaryKey"`
	// Active indicates whether the account may sign in.
	Active bool
	// Username is the unique display name used across the panel.
	Username string `gorm:"unique;size:100;not null"`
	// Email is the user's email address (empty for Discord accounts that did not share one).
	Email string `gorm:"size:255"`
	// Password is the argon2id hash for local accounts. Empty for Discord-only accounts.
	Password string `gorm:"size:255"`
	// AvatarURL points at the user's Discord avatar, if any.
	AvatarURL string `gorm:"size:255"`
	// DiscordID is the linked Discord account identifier. Nil for local accounts.
	// At most one user per Discord account.
	DiscordID *string `gorm:"size:32;uniqueIndex"`
	// DiscordToken is the last OAuth2 access token obtained for this user.
	// Used to refresh guild role membership without a new sign-in.
	DiscordToken string `gorm:"size:255"`
	// Roles are the authorization labels attached to this user. Roles mirrored
	// from Discord are managed by the role synchronizer; locally created roles
	// are managed by hand and never touched by synchronization.
	Roles []Role `gorm:"many2many:user_roles"`
	// CreatedAt is the timestamp when the user was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the user was last updated (managed by GORM).
	UpdatedAt time.Time
	// DeletedAt is the soft delete timestamp (nil if not deleted, managed by GORM).
	DeletedAt *time.Time
}

// HashPassword hashes a plaintext password using the Argon2id algorithm.
// Used when creating or updating local account passwords.
func HashPassword(password string) string {
	hashedPassword, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		log.Fatal().Msgf("failed to hash password: %v", err)
	}

	return hashedPassword
}

// VerifyPassword verifies a plaintext password against the stored hash.
// Returns false for Discord-only accounts, which have no password.
func (u *User) VerifyPassword(password string) bool {
	if u.Password == "" {
		return false
	}

	match, err := argon2id.ComparePasswordAndHash(password, u.Password)
	if err != nil {
		log.Error().Msgf("failed to verify password: %v", err)
		return false
	}

	return match
}

// RoleNames returns the names of all roles attached to the user.
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for i := range u.Roles {
		names = append(names, u.Roles[i].Name)
	}

	return names
}
