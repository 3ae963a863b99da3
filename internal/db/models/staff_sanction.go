package models

import "time"

// SanctionType classifies a disciplinary action against a staff member.
type SanctionType string

const (
	// SanctionWarn is a formal warning.
	SanctionWarn SanctionType = "WARN"
	// SanctionBlame is a recorded blame, heavier than a warning.
	SanctionBlame SanctionType = "BLAME"
	// SanctionKick removes the member from the staff team.
	SanctionKick SanctionType = "KICK"
	// SanctionBan bans the member from the community.
	SanctionBan SanctionType = "BAN"
)

// StaffSanction is a disciplinary record attached to a staff record.
type StaffSanction struct {
	// ID is the unique identifier for the sanction.
	ID uint64 `gorm:"primaryKey"`
	// StaffID is the staff record the sanction belongs to.
	StaffID uint64 `gorm:"not null;index"`
	// Type is the kind of sanction applied.
	Type SanctionType `gorm:"type:varchar(10);not null"`
	// Reason explains why the sanction was applied.
	Reason string `gorm:"size:1000;not null"`
	// AuthorID is the user who applied the sanction.
	AuthorID uint64 `gorm:"not null"`
	// CreatedAt is the timestamp when the sanction was applied (managed by GORM).
	CreatedAt time.Time
}

// TableName specifies the database table name for the StaffSanction model.
func (StaffSanction) TableName() string {
	return "staff_sanctions"
}
