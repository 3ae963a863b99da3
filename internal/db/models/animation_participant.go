package models

import "time"

// Accreditation is a participant's role within an animation.
type Accreditation string

const (
	// AccreditationOrganizer marks the event organizer.
	AccreditationOrganizer Accreditation = "ORGANIZER"
	// AccreditationModerator marks a moderator of the event.
	AccreditationModerator Accreditation = "MODERATOR"
	// AccreditationParticipant is the default accreditation.
	AccreditationParticipant Accreditation = "PARTICIPANT"
	// AccreditationObserver marks a spectator.
	AccreditationObserver Accreditation = "OBSERVER"
	// AccreditationStaff marks supporting staff.
	AccreditationStaff Accreditation = "STAFF"
)

// AnimationParticipant represents a user signed up to an animation.
type AnimationParticipant struct {
	// AnimationID is the animation joined.
	AnimationID uint64 `gorm:"primaryKey;column:animation_id"`
	// UserID is the participating user.
	UserID uint64 `gorm:"primaryKey;column:user_id"`
	// Accreditation is the participant's role within the event.
	Accreditation Accreditation `gorm:"type:varchar(15);not null"`
	// Animation is the associated animation (loaded via foreign key).
	Animation Animation `gorm:"foreignKey:AnimationID;constraint:OnDelete:CASCADE"`
	// User is the associated user (loaded via foreign key).
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	// JoinedAt is the timestamp when the user joined (managed by GORM).
	JoinedAt time.Time `gorm:"autoCreateTime"`
}

// TableName specifies the database table name for the AnimationParticipant model.
func (AnimationParticipant) TableName() string {
	return "animation_participants"
}
