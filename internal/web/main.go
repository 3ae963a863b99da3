// Package web wires the fiber application: templates, static files,
// middleware and all route handlers.
package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/template/html/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/exiledrp/exiled-panel/internal/auth"
	"github.com/exiledrp/exiled-panel/internal/config"
	"github.com/exiledrp/exiled-panel/internal/discord"
	"github.com/exiledrp/exiled-panel/internal/discordlog"
	"github.com/exiledrp/exiled-panel/internal/web/handler/animation"
	"github.com/exiledrp/exiled-panel/internal/web/handler/desktop"
	discordhandler "github.com/exiledrp/exiled-panel/internal/web/handler/discord"
	"github.com/exiledrp/exiled-panel/internal/web/handler/emergency"
	"github.com/exiledrp/exiled-panel/internal/web/handler/job"
	"github.com/exiledrp/exiled-panel/internal/web/handler/login"
	"github.com/exiledrp/exiled-panel/internal/web/handler/logout"
	"github.com/exiledrp/exiled-panel/internal/web/handler/logs"
	"github.com/exiledrp/exiled-panel/internal/web/handler/mail"
	"github.com/exiledrp/exiled-panel/internal/web/handler/settings"
	"github.com/exiledrp/exiled-panel/internal/web/handler/staff"
	"github.com/exiledrp/exiled-panel/internal/web/handler/upload"
)

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
	db           *gorm.DB
	authService  *auth.Service
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown waits for graceful shutdown of the panel.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: set status to fail, so checkalive returns fail.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	serverShutdown := make(chan struct{})

	go func() {
		log.Info().Msg("stopping http server ...")

		err := s.App.Shutdown()
		if err != nil {
			log.Error().Err(err).Msg("")
		}

		serverShutdown <- struct{}{}
	}()

	<-serverShutdown
	log.Info().Msg("http server was stopped ... good bye...")
}

// New creates a new web service with the given configuration.
func New(cfg *config.Config, db *gorm.DB) *Service {
	if cfg == nil {
		panic("config cannot be nil")
	}

	if db == nil {
		panic("db cannot be nil")
	}

	templateEngine := html.NewFileSystem(http.FS(templateRoot()), ".gohtml")

	// in dev mode, use local filesystem for templates
	if cfg.DevMode {
		templateEngine = html.New("./internal/web/templates", ".gohtml")
		templateEngine.ShouldReload = true

		log.Warn().Msg("dev mode enabled: using local filesystem for templates")
	}

	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        cfg.Title,
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
			Views:          templateEngine,
		},
	)

	// serve embedded static files
	app.Use("/static",
		filesystem.New(
			filesystem.Config{
				Root:       http.FS(staticFS),
				PathPrefix: "static",
				Browse:     false,
			},
		),
	)

	// page gate: redirects for browser surfaces, API routes guard themselves
	app.Use(auth.PageGate)

	var discordClient *discord.Client
	if cfg.Discord.Enabled {
		discordClient = discord.New(discord.Config{
			ClientID:     cfg.Discord.ClientID,
			ClientSecret: cfg.Discord.ClientSecret,
			RedirectURL:  cfg.Discord.RedirectURL,
			GuildID:      cfg.Discord.GuildID,
			BotToken:     cfg.Discord.BotToken,
		})
	}

	authService := newAuthService(db, discordClient)
	eventLog := discordlog.New(cfg.Discord.WebhookURL)

	service := &Service{
		cfg:         cfg,
		App:         app,
		db:          db,
		authService: authService,
	}
	service.alive.Store(true)

	initHandlers(app, cfg, db, discordClient, authService, eventLog)

	// health endpoint for the load balancer drain window
	app.Get("/healthz", func(c *fiber.Ctx) error {
		if !service.alive.Load() {
			return c.SendStatus(fiber.StatusServiceUnavailable)
		}

		return c.SendStatus(fiber.StatusOK)
	})

	// redirect root to the desktop
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect(desktop.Path)
	})

	return service
}

// newAuthService builds the auth service, keeping a typed nil out of the
// role fetcher interface when Discord is disabled.
func newAuthService(db *gorm.DB, discordClient *discord.Client) *auth.Service {
	if discordClient == nil {
		return auth.NewService(db, nil)
	}

	return auth.NewService(db, discordClient)
}

// initHandlers registers every route handler.
func initHandlers(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	discordClient *discord.Client,
	authService *auth.Service,
	eventLog *discordlog.Logger,
) {
	type namedInit struct {
		name string
		init func() error
	}

	inits := []namedInit{
		{"login", func() error { return login.Handler.Init(app, cfg, db, authService) }},
		{"discord", func() error { return discordhandler.Handler.Init(app, cfg, db, discordClient, authService) }},
		{"desktop", func() error { return desktop.Handler.Init(app, cfg, db) }},
		{"mail", func() error { return mail.Handler.Init(app, cfg, db) }},
		{"upload", func() error { return upload.Handler.Init(app, cfg, db) }},
		{"staff", func() error { return staff.Handler.Init(app, cfg, db, eventLog) }},
		{"emergency", func() error { return emergency.Handler.Init(app, cfg, db, eventLog) }},
		{"animation", func() error { return animation.Handler.Init(app, cfg, db, eventLog) }},
		{"job", func() error { return job.Handler.Init(app, cfg, db, eventLog) }},
		{"logs", func() error { return logs.Handler.Init(app, cfg, db) }},
		{"settings", func() error { return settings.Handler.Init(app, cfg, db) }},
	}

	for _, h := range inits {
		if err := h.init(); err != nil {
			log.Fatal().Err(err).Str("handler", h.name).Msg("failed to init handler")
		}
	}

	logout.Handler.Init(app, cfg)
}
