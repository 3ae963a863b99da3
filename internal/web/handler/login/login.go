// Package login implements the local username/password sign-in page.
package login

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/exiledrp/exiled-panel/internal/auth"
	"github.com/exiledrp/exiled-panel/internal/config"
	"github.com/exiledrp/exiled-panel/internal/web/handler"
	"github.com/exiledrp/exiled-panel/internal/web/session"
)

const (
	// Path is the path to the login page.
	Path = "/login"
)

// Service is the login handler service.
type Service struct {
	handler.Service
	cfg         *config.Config
	db          *gorm.DB
	authService *auth.Service
}

// Handler is the login handler.
var Handler = Service{}

// Init initializes the login handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New("app, cfg or db is nil")
	}

	s.db = db
	s.cfg = cfg
	s.authService = authService

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RouterRootPath, s.Get)
		router.Post(handler.RouterRootPath, s.Post)
	})

	return nil
}

// Get handles the login page rendering.
func (s *Service) Get(c *fiber.Ctx) error {
	return c.Render("login", fiber.Map{
		"title":           s.cfg.Title,
		"discord_enabled": s.cfg.Discord.Enabled,
	})
}

type credentials struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

// Post handles the login form submission.
func (s *Service) Post(c *fiber.Ctx) error {
	creds := new(credentials)

	if err := c.BodyParser(creds); err != nil {
		return err
	}

	user, err := s.authService.Authenticate(creds.Username, creds.Password)
	if err != nil {
		return c.Render("login", fiber.Map{
			"title":           s.cfg.Title,
			"discord_enabled": s.cfg.Discord.Enabled,
			"error":           "Invalid username or password",
		})
	}

	userSession := &session.Data{
		User:  *user,
		Roles: user.RoleNames(),
	}

	if err := handler.WriteSession(c, s.cfg, userSession); err != nil {
		log.Error().Err(err).Msg("failed to write session")

		return c.Render("login", fiber.Map{
			"title":           s.cfg.Title,
			"discord_enabled": s.cfg.Discord.Enabled,
			"error":           "Internal server error",
		})
	}

	return c.Redirect("/desktop")
}
