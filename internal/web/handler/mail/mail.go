// Package mail implements the internal mail API.
package mail

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/exiledrp/exiled-panel/internal/auth"
	"github.com/exiledrp/exiled-panel/internal/config"
	"github.com/exiledrp/exiled-panel/internal/db/models"
	"github.com/exiledrp/exiled-panel/internal/web/handler"
)

const (
	// Path is the base path of the mail API.
	Path = "/api/mail"
)

// Service is the mail handler service.
type Service struct {
	handler.Service
	cfg       *config.Config
	db        *gorm.DB
	sanitizer *bluemonday.Policy
}

// Handler is the mail handler.
var Handler = Service{}

// Init initializes the mail handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.cfg = cfg
	s.db = db
	s.sanitizer = bluemonday.UGCPolicy()

	app.Route(Path, func(router fiber.Router) {
		router.Use(auth.RequireLevel(auth.LevelAuthenticated))
		router.Get("/inbox", s.Inbox)
		router.Get("/sent", s.Sent)
		router.Get("/:id", s.Get)
		router.Post(handler.RouterRootPath, s.Send)
		router.Post("/:id/archive", s.Archive)
		router.Delete("/:id", s.Delete)
	})

	return nil
}

// Inbox lists the received mails that are neither deleted nor archived.
func (s *Service) Inbox(c *fiber.Ctx) error {
	sessData := auth.SessionFromLocals(c)

	var mails []models.Mail

	err := s.db.Preload("Sender").
		Where("receiver_id = ? AND is_deleted = ? AND is_archived = ?", sessData.User.ID, false, false).
		Order("created_at DESC").
		Find(&mails).Error
	if err != nil {
		log.Error().Err(err).Msg("failed to load inbox")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load inbox"})
	}

	return c.JSON(fiber.Map{"mails": mails})
}

// Sent lists the mails the user sent.
func (s *Service) Sent(c *fiber.Ctx) error {
	sessData := auth.SessionFromLocals(c)

	var mails []models.Mail

	err := s.db.Preload("Receiver").
		Where("sender_id = ? AND is_deleted = ?", sessData.User.ID, false).
		Order("created_at DESC").
		Find(&mails).Error
	if err != nil {
		log.Error().Err(err).Msg("failed to load sent mails")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load sent mails"})
	}

	return c.JSON(fiber.Map{"mails": mails})
}

// Get returns one mail. Only the sender or the receiver may read it; a read
// by the receiver marks the mail as read.
func (s *Service) Get(c *fiber.Ctx) error {
	sessData := auth.SessionFromLocals(c)

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid mail id"})
	}

	var mail models.Mail

	err = s.db.Preload("Sender").Preload("Receiver").First(&mail, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "mail not found"})
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to load mail")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load mail"})
	}

	if mail.SenderID != sessData.User.ID && mail.ReceiverID != sessData.User.ID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
	}

	if mail.ReceiverID == sessData.User.ID && !mail.IsRead {
		mail.IsRead = true
		if err := s.db.Model(&mail).Update("is_read", true).Error; err != nil {
			log.Error().Err(err).Uint64("mail_id", mail.ID).Msg("failed to mark mail as read")
		}
	}

	return c.JSON(fiber.Map{"mail": mail})
}

type sendRequest struct {
	Receiver   string `json:"receiver" validate:"required"`
	Subject    string `json:"subject" validate:"required,max=200"`
	Content    string `json:"content" validate:"required,max=10000"`
	Attachment string `json:"attachment" validate:"omitempty,url,max=500"`
}

// Send delivers a mail to another user, addressed by username.
func (s *Service) Send(c *fiber.Ctx) error {
	sessData := auth.SessionFromLocals(c)

	req := new(sendRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}

	if err := handler.Validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var receiver models.User

	err := s.db.Where("username = ?", req.Receiver).First(&receiver).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "receiver not found"})
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to resolve receiver")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to send mail"})
	}

	mail := models.Mail{
		SenderID:   sessData.User.ID,
		ReceiverID: receiver.ID,
		Subject:    req.Subject,
		Content:    s.sanitizer.Sanitize(req.Content),
		Attachment: req.Attachment,
	}

	if err := s.db.Create(&mail).Error; err != nil {
		log.Error().Err(err).Msg("failed to create mail")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to send mail"})
	}

	handler.Audit(s.db, sessData.User.ID, fmt.Sprintf("mail sent to %s", receiver.Username))

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"mail": mail})
}

// Archive moves a received mail out of the inbox. Receiver only.
func (s *Service) Archive(c *fiber.Ctx) error {
	return s.flag(c, "is_archived", true)
}

// Delete soft deletes a mail for its sender or receiver.
func (s *Service) Delete(c *fiber.Ctx) error {
	return s.flag(c, "is_deleted", false)
}

// flag sets a boolean column on a mail after an ownership check.
// receiverOnly restricts the action to the receiver.
func (s *Service) flag(c *fiber.Ctx, column string, receiverOnly bool) error {
	sessData := auth.SessionFromLocals(c)

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid mail id"})
	}

	var mail models.Mail

	err = s.db.First(&mail, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "mail not found"})
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to load mail")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update mail"})
	}

	allowed := mail.ReceiverID == sessData.User.ID
	if !receiverOnly {
		allowed = allowed || mail.SenderID == sessData.User.ID
	}

	if !allowed {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
	}

	if err := s.db.Model(&mail).Update(column, true).Error; err != nil {
		log.Error().Err(err).Uint64("mail_id", mail.ID).Msg("failed to update mail flag")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update mail"})
	}

	return c.JSON(fiber.Map{"success": true})
}
