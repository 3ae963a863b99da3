// Package logs implements the audit log API and the full data export.
package logs

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/exiledrp/exiled-panel/internal/auth"
	"github.com/exiledrp/exiled-panel/internal/config"
	"github.com/exiledrp/exiled-panel/internal/db/models"
	"github.com/exiledrp/exiled-panel/internal/web/handler"
)

const (
	// Path is the base path of the logs API.
	Path = "/api/logs"

	// maxEntries caps the log listing.
	maxEntries = 1000
)

// Service is the logs handler service.
type Service struct {
	handler.Service
	cfg *config.Config
	db  *gorm.DB
}

// Handler is the logs handler.
var Handler = Service{}

// Init initializes the logs handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.cfg = cfg
	s.db = db

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RouterRootPath, auth.RequireLevel(auth.LevelGestion), s.List)
		router.Post(handler.RouterRootPath, auth.RequireLevel(auth.LevelAuthenticated), s.Create)
		router.Get("/export", auth.RequireLevel(auth.LevelGestion), s.Export)
	})

	return nil
}

// List returns the latest audit log entries.
func (s *Service) List(c *fiber.Ctx) error {
	var entries []models.LogEntry

	err := s.db.Order("created_at DESC").Limit(maxEntries).Find(&entries).Error
	if err != nil {
		log.Error().Err(err).Msg("failed to load audit logs")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load logs"})
	}

	return c.JSON(fiber.Map{"logs": entries})
}

type createRequest struct {
	Action string `json:"action" validate:"required,max=500"`
}

// Create appends an audit log entry for the signed-in user.
func (s *Service) Create(c *fiber.Ctx) error {
	sessData := auth.SessionFromLocals(c)

	req := new(createRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}

	if err := handler.Validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	entry := models.LogEntry{
		Action: req.Action,
		UserID: sessData.User.ID,
	}

	if err := s.db.Create(&entry).Error; err != nil {
		log.Error().Err(err).Msg("failed to create audit log entry")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create log"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"log": entry})
}

// Export bundles the panel's data into one JSON document.
func (s *Service) Export(c *fiber.Ctx) error {
	sessData := auth.SessionFromLocals(c)

	var (
		users      []models.User
		staff      []models.Staff
		animations []models.Animation
		jobs       []models.Job
		calls      []models.EmergencyCall
		mails      []models.Mail
		entries    []models.LogEntry
	)

	type loader struct {
		name string
		load func() error
	}

	loaders := []loader{
		{"users", func() error { return s.db.Preload("Roles").Find(&users).Error }},
		{"staff", func() error {
			return s.db.Preload("User").Preload("Notes").Preload("Sanctions").Preload("Absences").
				Find(&staff).Error
		}},
		{"animations", func() error { return s.db.Preload("Participants").Find(&animations).Error }},
		{"jobs", func() error {
			return s.db.Preload("Grades").Preload("Members").Preload("Reports").Find(&jobs).Error
		}},
		{"emergency calls", func() error { return s.db.Find(&calls).Error }},
		{"mails", func() error { return s.db.Find(&mails).Error }},
		{"logs", func() error { return s.db.Find(&entries).Error }},
	}

	for _, l := range loaders {
		if err := l.load(); err != nil {
			log.Error().Err(err).Str("dataset", l.name).Msg("failed to export dataset")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "export failed"})
		}
	}

	handler.Audit(s.db, sessData.User.ID, "exported all panel data")

	return c.JSON(fiber.Map{
		"exportDate":     time.Now().UTC(),
		"users":          users,
		"staff":          staff,
		"animations":     animations,
		"jobs":           jobs,
		"emergencyCalls": calls,
		"mails":          mails,
		"logs":           entries,
	})
}
