package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/exiledrp/exiled-panel/internal/config"
	"github.com/exiledrp/exiled-panel/internal/web/session"
)

// WriteSession persists the session data and sets the session cookie.
func WriteSession(c *fiber.Ctx, cfg *config.Config, data *session.Data) error {
	sessionID, err := session.GenerateSessionID()
	if err != nil {
		return err
	}

	if err := data.Write(sessionID, cfg.Webserver.Session.ExpiryTime); err != nil {
		return err
	}

	cookie := &fiber.Cookie{
		Name:     SessionCookie,
		Value:    sessionID,
		MaxAge:   int(cfg.Webserver.Session.ExpiryTime.Seconds()),
		Secure:   true,
		HTTPOnly: true,
		SameSite: "Lax",
	}

	if cfg.DevMode {
		cookie.Secure = false
	}

	c.Cookie(cookie)

	return nil
}

// ClearSession removes the stored session and expires the cookie.
func ClearSession(c *fiber.Ctx) {
	if sessionID := c.Cookies(SessionCookie); sessionID != "" {
		_ = session.Destroy(sessionID)
	}

	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    "",
		MaxAge:   -1,
		Secure:   true,
		HTTPOnly: true,
		SameSite: "Lax",
	})
}
