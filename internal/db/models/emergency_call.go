package models

import "time"

// CallType is the emergency service a call is addressed to.
type CallType string

const (
	// CallPolice routes the call to the police service.
	CallPolice CallType = "POLICE"
	// CallEMS routes the call to the medical service.
	CallEMS CallType = "EMS"
	// CallMecano routes the call to the mechanic service.
	CallMecano CallType = "MECANO"
)

// CallStatus is the lifecycle state of an emergency call.
type CallStatus string

const (
	// CallPending means no responder has taken the call yet.
	CallPending CallStatus = "PENDING"
	// CallTaken means a responder is handling the call.
	CallTaken CallStatus = "TAKEN"
	// CallDone means the call is resolved and closed.
	CallDone CallStatus = "DONE"
)

// EmergencyCall is a citizen's emergency call in the queue.
type EmergencyCall struct {
	// ID is the unique identifier for the call.
	ID uint64 `gorm:"primaryKey"`
	// Type is the service the call is addressed to.
	Type CallType `gorm:"type:varchar(10);not null;index"`
	// Message is the caller's description of the emergency.
	Message string `gorm:"size:1000;not null"`
	// Coords is the in-game location as "x,y,z", if provided.
	Coords string `gorm:"size:100"`
	// Status is the lifecycle state of the call.
	Status CallStatus `gorm:"type:varchar(10);not null;index"`
	// CallerID is the user who placed the call.
	CallerID uint64 `gorm:"not null"`
	// TakenByID is the responder handling the call, if taken.
	TakenByID *uint64
	// TakenAt is when the call was taken, if taken.
	TakenAt *time.Time
	// Caller is the associated caller (loaded via foreign key).
	Caller User `gorm:"foreignKey:CallerID"`
	// TakenBy is the associated responder (loaded via foreign key).
	TakenBy *User `gorm:"foreignKey:TakenByID"`
	// CreatedAt is the timestamp when the call was placed (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the call was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the EmergencyCall model.
func (EmergencyCall) TableName() string {
	return "emergency_calls"
}
