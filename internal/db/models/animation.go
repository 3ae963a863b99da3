package models

import "time"

// AnimationStatus is the lifecycle state of an animation (roleplay event).
type AnimationStatus string

const (
	// AnimationPlanning means the event is announced but not started.
	AnimationPlanning AnimationStatus = "PLANNING"
	// AnimationOngoing means the event is running.
	AnimationOngoing AnimationStatus = "ONGOING"
	// AnimationFinished means the event is over.
	AnimationFinished AnimationStatus = "FINISHED"
)

// Animation is a scheduled roleplay event run by a staff organizer.
type Animation struct {
	// ID is the unique identifier for the animation.
	ID uint64 `gorm:"primaryKey"`
	// Name is the event name.
	Name string `gorm:"size:200;not null"`
	// Description is the event description, if any.
	Description string `gorm:"size:2000"`
	// Date is when the event takes place.
	Date time.Time `gorm:"not null"`
	// Location is the in-game location, if any.
	Location string `gorm:"size:200"`
	// Status is the lifecycle state of the event.
	Status AnimationStatus `gorm:"type:varchar(10);not null"`
	// OrganizerID is the user who created the event. Only the organizer may
	// modify or delete it.
	OrganizerID uint64 `gorm:"not null;index"`
	// Organizer is the associated organizer (loaded via foreign key).
	Organizer User `gorm:"foreignKey:OrganizerID"`
	// Participants are the signed-up users with their accreditations.
	Participants []AnimationParticipant `gorm:"foreignKey:AnimationID"`
	// CreatedAt is the timestamp when the event was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the event was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Animation model.
func (Animation) TableName() string {
	return "animations"
}
