package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/exiledrp/exiled-panel/internal/web/session"
)

const (
	// LoginPath is the page unauthenticated browsers are redirected to.
	LoginPath = "/login"
	// DesktopPath is the page browsers lacking a role are redirected to.
	DesktopPath = "/desktop"
)

// pageGate maps page prefixes to the level they require. Longest prefix wins.
var pageGate = []struct { //nolint:gochecknoglobals
	prefix string
	level  Level
}{
	{"/desktop/direction", LevelDirection},
	{"/desktop/gestion", LevelGestion},
	{"/desktop/staff-center", LevelStaff},
	{"/desktop", LevelAuthenticated},
}

// Resolve reads the session cookie and returns the session data, or nil when
// the request is not authenticated. Any resolution failure degrades to
// unauthenticated.
func Resolve(c *fiber.Ctx) *session.Data {
	sessionID := c.Cookies("session")
	if sessionID == "" {
		return nil
	}

	sessData := new(session.Data)
	if err := sessData.Read(sessionID); err != nil {
		return nil
	}

	if sessData.User.ID == 0 {
		return nil
	}

	return sessData
}

// RequireLevel creates Fiber middleware that requires the given access level
// on an API route. Denials are JSON and never disclose which roles exist.
func RequireLevel(level Level) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessData := Resolve(c)
		if sessData == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "unauthorized",
			})
		}

		if !level.Allows(sessData.Roles) {
			log.Warn().Uint64("user_id", sessData.User.ID).Str("level", level.String()).
				Str("path", c.Path()).Msg("user lacks required access level")

			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "forbidden",
			})
		}

		c.Locals("session", sessData)

		return c.Next()
	}
}

// PageGate is a Fiber middleware guarding browser pages. Unauthenticated
// visitors are sent to the login page, authenticated visitors lacking the
// required level to the desktop.
func PageGate(c *fiber.Ctx) error {
	path := strings.ToLower(c.Path())

	level, gated := requiredPageLevel(path)
	if !gated {
		return c.Next()
	}

	sessData := Resolve(c)
	if sessData == nil {
		return c.Redirect(LoginPath)
	}

	if !level.Allows(sessData.Roles) {
		return c.Redirect(DesktopPath)
	}

	c.Locals("session", sessData)

	return c.Next()
}

// requiredPageLevel returns the level guarding a page path, if any.
func requiredPageLevel(path string) (Level, bool) {
	for _, gate := range pageGate {
		if strings.HasPrefix(path, gate.prefix) {
			return gate.level, true
		}
	}

	return LevelAuthenticated, false
}

// SessionFromLocals returns the session data stored by the middleware.
func SessionFromLocals(c *fiber.Ctx) *session.Data {
	sessData, ok := c.Locals("session").(*session.Data)
	if !ok {
		return nil
	}

	return sessData
}
