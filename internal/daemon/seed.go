package daemon

import (
	"gorm.io/gorm"

	"github.com/exiledrp/exiled-panel/internal/auth"
	"github.com/exiledrp/exiled-panel/internal/config"
	"github.com/exiledrp/exiled-panel/internal/db/models"
)

// seed creates the bootstrap admin account on an empty database.
// The account is local (no Discord link) and carries a locally created
// direction role, so the panel is manageable before Discord sign-in is
// configured. Change the password after first sign-in.
func seed(_ *config.Config, db *gorm.DB) {
	var count int64

	db.Model(&models.User{}).Count(&count)
	if count != 0 {
		return
	}

	db.Create(
		&models.User{
			Username: "admin",
			Password: models.HashPassword("changeme"),
			Active:   true,
			Roles: []models.Role{
				{Name: auth.RoleDirection},
			},
		},
	)
}
