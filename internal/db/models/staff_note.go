package models

import "time"

// StaffNote is a management note attached to a staff record.
type StaffNote struct {
	// ID is the unique identifier for the note.
	ID uint64 `gorm:"primaryKey"`
	// StaffID is the staff record the note belongs to.
	StaffID uint64 `gorm:"not null;index"`
	// AuthorID is the user who wrote the note.
	AuthorID uint64 `gorm:"not null"`
	// Content is the note body.
	Content string `gorm:"size:2000;not null"`
	// Author is the associated author (loaded via foreign key).
	Author User `gorm:"foreignKey:AuthorID"`
	// CreatedAt is the timestamp when the note was created (managed by GORM).
	CreatedAt time.Time
}

// TableName specifies the database table name for the StaffNote model.
func (StaffNote) TableName() string {
	return "staff_notes"
}
