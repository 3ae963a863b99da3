package models

import "time"

// Mail is an internal message between two users.
// Deletion is soft (trash) and archiving only affects the receiver's inbox;
// the row is kept so the sender's outbox and the data export stay complete.
type Mail struct {
	// ID is the unique identifier for the mail.
	ID uint64 `gorm:"primaryKey"`
	// SenderID is the user who sent the mail.
	SenderID uint64 `gorm:"not null;index"`
	// ReceiverID is the user the mail was sent to.
	ReceiverID uint64 `gorm:"not null;index"`
	// Subject is the mail subject line.
	Subject string `gorm:"size:200;not null"`
	// Content is the sanitized mail body.
	Content string `gorm:"size:10000;not null"`
	// Attachment is the URL of an uploaded attachment, if any.
	Attachment string `gorm:"size:500"`
	// IsRead is set when the receiver opens the mail.
	IsRead bool
	// IsArchived is set when the receiver archives the mail.
	IsArchived bool
	// IsDeleted is the soft-delete flag (trash).
	IsDeleted bool
	// Sender is the associated sender (loaded via foreign key).
	Sender User `gorm:"foreignKey:SenderID"`
	// Receiver is the associated receiver (loaded via foreign key).
	Receiver User `gorm:"foreignKey:ReceiverID"`
	// CreatedAt is the timestamp when the mail was sent (managed by GORM).
	CreatedAt time.Time
}

// TableName specifies the database table name for the Mail model.
func (Mail) TableName() string {
	return "mails"
}
