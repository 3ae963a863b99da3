// Package daemon boots the panel: database, migrations, seed data,
// session storage and the web service.
package daemon

import (
	"fmt"

	sessionmysql "github.com/gofiber/storage/mysql/v2"
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/exiledrp/exiled-panel/internal/config"
	"github.com/exiledrp/exiled-panel/internal/db/dsn"
	"github.com/exiledrp/exiled-panel/internal/db/models"
	"github.com/exiledrp/exiled-panel/internal/web"
	"github.com/exiledrp/exiled-panel/internal/web/session"
)

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	webService *web.Service
}

// Start starts the Daemon's web service and blocks until it stops.
func (d *Daemon) Start() error {
	go d.webService.WaitShutdown()

	return d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port))
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) *Daemon {
	if cfg == nil {
		log.Fatal().Msg("config is nil")
		return nil
	}

	dbDriver := gormmysql.Open(dsn.Create(cfg))

	db, err := gorm.Open(dbDriver, &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	if err = db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.UserRole{},
		&models.Staff{},
		&models.StaffNote{},
		&models.StaffSanction{},
		&models.StaffAbsence{},
		&models.Mail{},
		&models.EmergencyCall{},
		&models.Animation{},
		&models.AnimationParticipant{},
		&models.Job{},
		&models.JobGrade{},
		&models.JobMember{},
		&models.JobReport{},
		&models.LogEntry{},
		&models.Setting{},
	); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	seed(cfg, db)

	// Sessions live in the same database so a panel restart keeps users signed in.
	sessionStorage := sessionmysql.New(sessionmysql.Config{
		ConnectionURI: dsn.Create(cfg),
		Table:         "sessions",
	})

	session.Init(sessionStorage)

	return &Daemon{
		cfg:        cfg,
		webService: web.New(cfg, db),
	}
}
