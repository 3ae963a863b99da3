// Package upload stores mail attachments on disk and returns their public URL.
package upload

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/exiledrp/exiled-panel/internal/auth"
	"github.com/exiledrp/exiled-panel/internal/config"
	"github.com/exiledrp/exiled-panel/internal/web/handler"
)

const (
	// Path is the upload endpoint.
	Path = "/api/upload"

	bytesPerMB = 1 << 20
)

// Service is the upload handler service.
type Service struct {
	handler.Service
	cfg *config.Config
}

// Handler is the upload handler.
var Handler = Service{}

// Init initializes the upload handler and makes sure the target directory exists.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.cfg = cfg

	if err := os.MkdirAll(cfg.Uploads.Dir, 0o750); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	app.Post(Path, auth.RequireLevel(auth.LevelAuthenticated), s.Upload)
	app.Static("/uploads", cfg.Uploads.Dir)

	return nil
}

// Upload accepts one multipart file and stores it under a random name.
// The original filename only contributes its extension.
func (s *Service) Upload(c *fiber.Ctx) error {
	sessData := auth.SessionFromLocals(c)

	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing file"})
	}

	maxSize := int64(s.cfg.Uploads.MaxSizeMB) * bytesPerMB
	if file.Size > maxSize {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
			"error": fmt.Sprintf("file exceeds the %d MB limit", s.cfg.Uploads.MaxSizeMB),
		})
	}

	name := uuid.NewString() + filepath.Ext(file.Filename)
	target := filepath.Join(s.cfg.Uploads.Dir, name)

	if err := c.SaveFile(file, target); err != nil {
		log.Error().Err(err).Uint64("user_id", sessData.User.ID).Msg("failed to store upload")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to store file"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"url": s.cfg.Webserver.URL + "/uploads/" + name,
	})
}
