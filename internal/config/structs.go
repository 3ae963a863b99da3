package config

import (
	"time"

	"github.com/exiledrp/exiled-panel/internal/logger"
)

// Session settings.
type Session struct {
	ExpiryTime time.Duration
}

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Discord   Discord
	Log       logger.Log
	Title     string
	Uploads   Uploads
	Webserver Webserver
}

// Webserver implement webserver settings.
type Webserver struct {
	Domain       string  // domain name for the webserver
	Port         int     // listening port for the webserver
	ShutDownTime int     // wait time for shutdown
	URL          string  // base url for the webserver
	Session      Session // session settings
}

// Discord holds the Discord application and guild settings for sign-in,
// role synchronization and webhook event logging.
type Discord struct {
	Enabled      bool   // enable Discord sign-in and role sync
	ClientID     string // OAuth2 application client id
	ClientSecret string // OAuth2 application client secret
	RedirectURL  string // OAuth2 callback URL
	GuildID      string // reference guild whose roles are mirrored
	BotToken     string // privileged fallback credential for member/role lookups
	WebhookURL   string // webhook for panel event logging (empty disables it)
}

// Uploads holds mail attachment upload settings.
type Uploads struct {
	Dir       string // directory attachments are stored in
	MaxSizeMB int    // per-file size cap in megabytes
}
