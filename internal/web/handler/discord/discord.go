// Package discord implements Discord OAuth2 sign-in and the session API.
//
// The callback is where a Discord account becomes a panel account: the code
// is exchanged, the profile fetched, the user found or created by Discord id
// and the guild roles synchronized before the session is written. The role
// snapshot stored in the session is what every access decision reads until
// the next sync.
package discord

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/exiledrp/exiled-panel/internal/auth"
	"github.com/exiledrp/exiled-panel/internal/config"
	"github.com/exiledrp/exiled-panel/internal/db/models"
	"github.com/exiledrp/exiled-panel/internal/discord"
	"github.com/exiledrp/exiled-panel/internal/web/handler"
	"github.com/exiledrp/exiled-panel/internal/web/session"
)

const (
	// LoginPath starts the OAuth2 flow.
	LoginPath = "/auth/discord/login"
	// CallbackPath is the OAuth2 redirect target.
	CallbackPath = "/auth/discord/callback"

	stateCookie = "oauth_state"
	stateMaxAge = 600
)

// Service is the Discord auth handler service.
type Service struct {
	handler.Service
	cfg         *config.Config
	db          *gorm.DB
	client      *discord.Client
	authService *auth.Service
}

// Handler is the Discord auth handler.
var Handler = Service{}

// Init initializes the Discord auth handler.
func (s *Service) Init(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	client *discord.Client,
	authService *auth.Service,
) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New("app, cfg or db is nil")
	}

	s.cfg = cfg
	s.db = db
	s.client = client
	s.authService = authService

	if cfg.Discord.Enabled {
		app.Get(LoginPath, s.Login)
		app.Get(CallbackPath, s.Callback)
	}

	app.Get("/api/auth/session", s.Session)
	app.Post("/api/auth/sync-roles", s.SyncRoles)

	return nil
}

// Login redirects the browser to the Discord authorization page.
func (s *Service) Login(c *fiber.Ctx) error {
	state, err := auth.GenerateStateToken()
	if err != nil {
		log.Error().Err(err).Msg("failed to generate oauth state token")
		return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
	}

	cookie := &fiber.Cookie{
		Name:     stateCookie,
		Value:    state,
		MaxAge:   stateMaxAge,
		Secure:   true,
		HTTPOnly: true,
		SameSite: "Lax",
	}

	if s.cfg.DevMode {
		cookie.Secure = false
	}

	c.Cookie(cookie)

	return c.Redirect(s.client.AuthURL(state))
}

// Callback finishes the OAuth2 flow and signs the user in.
func (s *Service) Callback(c *fiber.Ctx) error {
	state := c.Query("state")
	if state == "" || state != c.Cookies(stateCookie) {
		log.Warn().Msg("oauth callback with missing or mismatched state")
		return c.Redirect("/login")
	}

	// state is single use
	c.Cookie(&fiber.Cookie{Name: stateCookie, Value: "", MaxAge: -1})

	code := c.Query("code")
	if code == "" {
		return c.Redirect("/login")
	}

	token, err := s.client.Exchange(c.Context(), code)
	if err != nil {
		log.Error().Err(err).Msg("oauth code exchange failed")
		return c.Redirect("/login")
	}

	profile, err := s.client.CurrentUser(c.Context(), token.AccessToken)
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch discord profile")
		return c.Redirect("/login")
	}

	user, err := s.findOrCreateUser(profile, token.AccessToken)
	if err != nil {
		log.Error().Err(err).Str("discord_id", profile.ID).Msg("failed to upsert user")
		return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
	}

	if !user.Active {
		return c.Redirect("/login")
	}

	roles, err := s.authService.SyncRoles(c.Context(), user.ID)
	if err != nil {
		log.Error().Err(err).Uint64("user_id", user.ID).Msg("role sync failed during sign-in")
		return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
	}

	userSession := &session.Data{
		User:  *user,
		Roles: roles,
	}

	if err := handler.WriteSession(c, s.cfg, userSession); err != nil {
		log.Error().Err(err).Msg("failed to write session")
		return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
	}

	return c.Redirect("/desktop")
}

// findOrCreateUser resolves the panel account linked to a Discord profile,
// creating it on first sign-in and refreshing profile data on every one.
func (s *Service) findOrCreateUser(profile *discord.User, accessToken string) (*models.User, error) {
	var user models.User

	err := s.db.Where("discord_id = ?", profile.ID).First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		discordID := profile.ID
		user = models.User{
			Active:       true,
			Username:     profile.Username,
			Email:        profile.Email,
			AvatarURL:    profile.AvatarURL(),
			DiscordID:    &discordID,
			DiscordToken: accessToken,
		}

		if err := s.db.Create(&user).Error; err != nil {
			return nil, err
		}

		return &user, nil
	}

	if err != nil {
		return nil, err
	}

	user.Email = profile.Email
	user.AvatarURL = profile.AvatarURL()
	user.DiscordToken = accessToken

	if err := s.db.Save(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

// sessionUser is the public shape of a signed-in user.
type sessionUser struct {
	ID        uint64   `json:"id"`
	Username  string   `json:"username"`
	Email     string   `json:"email,omitempty"`
	AvatarURL string   `json:"avatarUrl,omitempty"`
	Roles     []string `json:"roles"`
}

// Session answers the current session, or a null user when there is none.
func (s *Service) Session(c *fiber.Ctx) error {
	sessData := auth.Resolve(c)
	if sessData == nil {
		return c.JSON(fiber.Map{"user": nil})
	}

	return c.JSON(fiber.Map{"user": sessionUser{
		ID:        sessData.User.ID,
		Username:  sessData.User.Username,
		Email:     sessData.User.Email,
		AvatarURL: sessData.User.AvatarURL,
		Roles:     sessData.Roles,
	}})
}

// SyncRoles re-runs role synchronization for the signed-in user and rewrites
// the session snapshot.
func (s *Service) SyncRoles(c *fiber.Ctx) error {
	sessData := auth.Resolve(c)
	if sessData == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	roles, err := s.authService.SyncRoles(c.Context(), sessData.User.ID)
	if err != nil {
		log.Error().Err(err).Uint64("user_id", sessData.User.ID).Msg("manual role sync failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "sync failed"})
	}

	sessData.Roles = roles
	if sessionID := c.Cookies(handler.SessionCookie); sessionID != "" {
		if err := sessData.Write(sessionID, s.cfg.Webserver.Session.ExpiryTime); err != nil {
			log.Error().Err(err).Msg("failed to rewrite session snapshot")
		}
	}

	return c.JSON(fiber.Map{"roles": roles})
}
