package models

import "time"

// ReportStatus is the lifecycle state of an intervention report.
type ReportStatus string

const (
	// ReportOpen means the report is awaiting review.
	ReportOpen ReportStatus = "OPEN"
	// ReportClosed means the report has been reviewed and closed.
	ReportClosed ReportStatus = "CLOSED"
)

// JobReport is an intervention report filed by a job member.
type JobReport struct {
	// ID is the unique identifier for the report.
	ID uint64 `gorm:"primaryKey"`
	// JobID is the job the report belongs to.
	JobID uint64 `gorm:"not null;index"`
	// AuthorID is the member who filed the report.
	AuthorID uint64 `gorm:"not null"`
	// Title is the report title.
	Title string `gorm:"size:200;not null"`
	// Content is the report body.
	Content string `gorm:"size:5000;not null"`
	// Status is the lifecycle state of the report.
	Status ReportStatus `gorm:"type:varchar(10);not null;default:'OPEN'"`
	// Author is the associated author (loaded via foreign key).
	Author User `gorm:"foreignKey:AuthorID"`
	// CreatedAt is the timestamp when the report was filed (managed by GORM).
	CreatedAt time.Time
}

// TableName specifies the database table name for the JobReport model.
func (JobReport) TableName() string {
	return "job_reports"
}
