package models

import "time"

// ServiceStatus is a job member's current duty state.
type ServiceStatus string

const (
	// ServiceOffDuty means the member is not in service.
	ServiceOffDuty ServiceStatus = "OFF_DUTY"
	// ServiceAvailable means the member is in service and free.
	ServiceAvailable ServiceStatus = "AVAILABLE"
	// ServiceBusy means the member is in service but occupied.
	ServiceBusy ServiceStatus = "BUSY"
	// ServiceInIntervention means the member is handling an intervention.
	ServiceInIntervention ServiceStatus = "IN_INTERVENTION"
)

// JobMember is a user recruited into a job at a given grade.
// A user holds at most one membership per job.
type JobMember struct {
	// ID is the unique identifier for the membership.
	ID uint64 `gorm:"primaryKey"`
	// UserID is the recruited user.
	UserID uint64 `gorm:"not null;uniqueIndex:idx_user_job"`
	// JobID is the job the user belongs to.
	JobID uint64 `gorm:"not null;uniqueIndex:idx_user_job"`
	// GradeID is the member's grade within the job.
	GradeID uint64 `gorm:"not null"`
	// ServiceStatus is the member's current duty state.
	ServiceStatus ServiceStatus `gorm:"type:varchar(20);not null;default:'OFF_DUTY'"`
	// IsAvailable mirrors ServiceStatus != OFF_DUTY for roster queries.
	IsAvailable bool
	// LastServiceStart is when the member last went on duty. Nil while off duty.
	LastServiceStart *time.Time
	// TotalServiceTime is the accumulated on-duty time in minutes.
	TotalServiceTime int `gorm:"not null;default:0"`
	// User is the associated user (loaded via foreign key).
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	// Job is the associated job (loaded via foreign key).
	Job Job `gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE"`
	// Grade is the associated grade (loaded via foreign key).
	Grade JobGrade `gorm:"foreignKey:GradeID"`
	// JoinedAt is the timestamp when the user was recruited (managed by GORM).
	JoinedAt time.Time `gorm:"autoCreateTime"`
}

// TableName specifies the database table name for the JobMember model.
func (JobMember) TableName() string {
	return "job_members"
}
