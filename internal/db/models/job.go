package models

import "time"

// Job is an in-game profession (police, EMS, mechanic, ...) with a grade
// ladder and a member roster.
type Job struct {
	// ID is the unique identifier for the job.
	ID uint64 `gorm:"primaryKey"`
	// Name is the unique machine name of the job (e.g. "police").
	Name string `gorm:"unique;size:100;not null"`
	// Label is the display name of the job (e.g. "Police Nationale").
	Label string `gorm:"size:200;not null"`
	// Grades is the grade ladder, lowest level first.
	Grades []JobGrade `gorm:"foreignKey:JobID"`
	// Members is the roster of recruited users.
	Members []JobMember `gorm:"foreignKey:JobID"`
	// Reports are the intervention reports filed by members.
	Reports []JobReport `gorm:"foreignKey:JobID"`
	// CreatedAt is the timestamp when the job was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the job was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Job model.
func (Job) TableName() string {
	return "jobs"
}
