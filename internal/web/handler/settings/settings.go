// Package settings exposes the panel-wide settings API.
package settings

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/exiledrp/exiled-panel/internal/auth"
	"github.com/exiledrp/exiled-panel/internal/config"
	"github.com/exiledrp/exiled-panel/internal/db/controller/setting"
	"github.com/exiledrp/exiled-panel/internal/web/handler"
)

const (
	// Path is the base path of the settings API.
	Path = "/api/settings"
)

// Service is the settings handler service.
type Service struct {
	handler.Service
	cfg *config.Config
	db  *gorm.DB
}

// Handler is the settings handler.
var Handler = Service{}

// Init initializes the settings handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.cfg = cfg
	s.db = db

	app.Route(Path, func(router fiber.Router) {
		router.Use(auth.RequireLevel(auth.LevelGestion))
		router.Get(handler.RouterRootPath, s.List)
		router.Get("/:name", s.Get)
		router.Put("/:name", s.Set)
		router.Delete("/:name", s.Delete)
	})

	return nil
}

// List returns all settings.
func (s *Service) List(c *fiber.Ctx) error {
	settings, err := setting.GetAll(s.db)
	if err != nil {
		log.Error().Err(err).Msg("failed to load settings")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load settings"})
	}

	return c.JSON(fiber.Map{"settings": settings})
}

// Get returns one setting by name.
func (s *Service) Get(c *fiber.Ctx) error {
	value, err := setting.Get(s.db, c.Params("name"))
	if errors.Is(err, setting.ErrSettingNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "setting not found"})
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to load setting")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load setting"})
	}

	return c.JSON(fiber.Map{"setting": value})
}

type setRequest struct {
	Value string `json:"value" validate:"required"`
}

// Set creates or updates a setting.
func (s *Service) Set(c *fiber.Ctx) error {
	sessData := auth.SessionFromLocals(c)

	req := new(setRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}

	if err := handler.Validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	value, err := setting.Set(s.db, c.Params("name"), []byte(req.Value))
	if err != nil {
		log.Error().Err(err).Msg("failed to store setting")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to store setting"})
	}

	handler.Audit(s.db, sessData.User.ID, "updated setting "+value.Name)

	return c.JSON(fiber.Map{"setting": value})
}

// Delete removes a setting by name.
func (s *Service) Delete(c *fiber.Ctx) error {
	sessData := auth.SessionFromLocals(c)

	err := setting.Delete(s.db, c.Params("name"))
	if errors.Is(err, setting.ErrSettingNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "setting not found"})
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to delete setting")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete setting"})
	}

	handler.Audit(s.db, sessData.User.ID, "deleted setting "+c.Params("name"))

	return c.JSON(fiber.Map{"success": true})
}
