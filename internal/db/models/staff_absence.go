package models

import "time"

// AbsenceType distinguishes a full absence from a delay.
type AbsenceType string

const (
	// AbsenceFull is a full absence for the given date.
	AbsenceFull AbsenceType = "ABSENCE"
	// AbsenceDelay is a late arrival, with an optional duration in minutes.
	AbsenceDelay AbsenceType = "DELAY"
)

// StaffAbsence records an absence or delay for a staff member.
type StaffAbsence struct {
	// ID is the unique identifier for the absence record.
	ID uint64 `gorm:"primaryKey"`
	// StaffID is the staff record the absence belongs to.
	StaffID uint64 `gorm:"not null;index"`
	// Type is ABSENCE or DELAY.
	Type AbsenceType `gorm:"type:varchar(10);not null"`
	// Date is the day the absence or delay occurred.
	Date time.Time `gorm:"not null"`
	// Reason is the stated reason, if any.
	Reason string `gorm:"size:500"`
	// Duration is the delay length in minutes. Nil for full absences.
	Duration *int
	// AuthorID is the user who recorded the absence.
	AuthorID uint64 `gorm:"not null"`
	// CreatedAt is the timestamp when the record was created (managed by GORM).
	CreatedAt time.Time
}

// TableName specifies the database table name for the StaffAbsence model.
func (StaffAbsence) TableName() string {
	return "staff_absences"
}
