// Package models contains database model definitions.
package models

import "time"

// LogEntry is an audit log line recorded by the panel.
type LogEntry struct {
	// ID is the unique identifier for the entry.
	ID uint64 `gorm:"primaryKey"`
	// Action describes what happened.
	Action string `gorm:"size:500;not null"`
	// UserID is the user the action relates to.
	UserID uint64 `gorm:"not null;index"`
	// CreatedAt is the timestamp when the entry was recorded (managed by GORM).
	CreatedAt time.Time `gorm:"index"`
}

// TableName specifies the database table name for the LogEntry model.
func (LogEntry) TableName() string {
	return "logs"
}
