package models

import "time"

// JobGrade is one rung of a job's grade ladder.
type JobGrade struct {
	// ID is the unique identifier for the grade.
	ID uint64 `gorm:"primaryKey"`
	// JobID is the job this grade belongs to.
	JobID uint64 `gorm:"not null;index"`
	// Name is the grade name (e.g. "Lieutenant").
	Name string `gorm:"size:100;not null"`
	// Level orders grades within the job, 0 is the lowest.
	Level int `gorm:"not null"`
	// Salary is the per-payout salary at this grade.
	Salary int `gorm:"not null;default:0"`
	// CreatedAt is the timestamp when the grade was created (managed by GORM).
	CreatedAt time.Time
}

// TableName specifies the database table name for the JobGrade model.
func (JobGrade) TableName() string {
	return "job_grades"
}
