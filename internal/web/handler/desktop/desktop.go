// Package desktop renders the authenticated landing page and its gated
// sub-areas. Access is enforced by the page gate middleware; the handler
// only renders.
package desktop

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/exiledrp/exiled-panel/internal/auth"
	"github.com/exiledrp/exiled-panel/internal/config"
	"github.com/exiledrp/exiled-panel/internal/web/handler"
)

const (
	// Path is the desktop landing page.
	Path = "/desktop"
)

// Service is the desktop handler service.
type Service struct {
	handler.Service
	cfg *config.Config
}

// Handler is the desktop handler.
var Handler = Service{}

// Init initializes the desktop handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.cfg = cfg

	app.Get(Path, s.render("desktop", "Desktop"))
	app.Get(Path+"/staff-center", s.render("desktop", "Staff Center"))
	app.Get(Path+"/gestion", s.render("desktop", "Gestion"))
	app.Get(Path+"/direction", s.render("desktop", "Direction"))

	return nil
}

// render builds a handler rendering the given template with session context.
func (s *Service) render(template, area string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessData := auth.SessionFromLocals(c)
		if sessData == nil {
			sessData = auth.Resolve(c)
		}

		data := fiber.Map{
			"title": s.cfg.Title,
			"area":  area,
		}

		if sessData != nil {
			data["username"] = sessData.User.Username
			data["avatarUrl"] = sessData.User.AvatarURL
			data["roles"] = sessData.Roles
		}

		return c.Render(template, data, handler.BaseLayout)
	}
}
