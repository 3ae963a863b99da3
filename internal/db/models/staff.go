package models

import "time"

// Staff represents a staff-team membership record for a user.
// It is the anchor for notes, sanctions and absence records kept by the
// management team; the optional role points at the staff position (mirrored
// or local), independent of the user's authorization roles.
type Staff struct {
	// ID is the unique identifier for the staff record.
	ID uint64 `gorm:"primaryKey"`
	// UserID is the user this record belongs to. One staff record per user.
	UserID uint64 `gorm:"not null;uniqueIndex"`
	// RoleID is the staff position role, if assigned.
	RoleID *uint
	// Bio is a free-form description maintained by the management team.
	Bio string `gorm:"size:2000"`
	// User is the associated user (loaded via foreign key).
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	// Role is the staff position role (loaded via foreign key).
	Role *Role `gorm:"foreignKey:RoleID"`
	// Notes are the management notes recorded against this staff member.
	Notes []StaffNote `gorm:"foreignKey:StaffID"`
	// Sanctions are the disciplinary records against this staff member.
	Sanctions []StaffSanction `gorm:"foreignKey:StaffID"`
	// Absences are the recorded absences and delays.
	Absences []StaffAbsence `gorm:"foreignKey:StaffID"`
	// CreatedAt is the timestamp when the record was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the record was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Staff model.
func (Staff) TableName() string {
	return "staff"
}
