package handler

import (
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/exiledrp/exiled-panel/internal/db/models"
)

// Audit records an audit log line. Failures are absorbed, an action must
// never fail because its trace could not be written.
func Audit(db *gorm.DB, userID uint64, action string) {
	entry := models.LogEntry{
		Action: action,
		UserID: userID,
	}

	if err := db.Create(&entry).Error; err != nil {
		log.Error().Err(err).Str("action", action).Msg("failed to write audit log")
	}
}
