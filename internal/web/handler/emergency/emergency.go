// Package emergency implements the emergency call queue API.
package emergency

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/exiledrp/exiled-panel/internal/auth"
	"github.com/exiledrp/exiled-panel/internal/config"
	"github.com/exiledrp/exiled-panel/internal/db/models"
	"github.com/exiledrp/exiled-panel/internal/discordlog"
	"github.com/exiledrp/exiled-panel/internal/web/handler"
)

const (
	// Path is the base path of the emergency API.
	Path = "/api/emergency"
)

// Service is the emergency handler service.
type Service struct {
	handler.Service
	cfg      *config.Config
	db       *gorm.DB
	eventLog *discordlog.Logger
}

// Handler is the emergency handler.
var Handler = Service{}

// Init initializes the emergency handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, eventLog *discordlog.Logger) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.cfg = cfg
	s.db = db
	s.eventLog = eventLog

	app.Route(Path, func(router fiber.Router) {
		router.Use(auth.RequireLevel(auth.LevelAuthenticated))
		router.Post(handler.RouterRootPath, s.Create)
		router.Get("/active", s.Active)
		router.Post("/:id/take", s.Take)
		router.Post("/:id/close", auth.RequireLevel(auth.LevelStaff), s.Close)
		router.Post("/:id/assign", auth.RequireLevel(auth.LevelStaff), s.Assign)
	})

	return nil
}

type createRequest struct {
	Type    models.CallType `json:"type" validate:"required,oneof=POLICE EMS MECANO"`
	Message string          `json:"message" validate:"required,min=5,max=1000"`
	Coords  string          `json:"coords" validate:"omitempty,max=100"`
}

// Create places a new emergency call in the queue.
func (s *Service) Create(c *fiber.Ctx) error {
	sessData := auth.SessionFromLocals(c)

	req := new(createRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}

	if err := handler.Validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	call := models.EmergencyCall{
		Type:     req.Type,
		Message:  req.Message,
		Coords:   req.Coords,
		Status:   models.CallPending,
		CallerID: sessData.User.ID,
	}

	if err := s.db.Create(&call).Error; err != nil {
		log.Error().Err(err).Msg("failed to create emergency call")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create call"})
	}

	s.eventLog.Send(c.Context(), discordlog.SeverityCritical, "New emergency call",
		discordlog.Field{Name: "Type", Value: string(call.Type), Inline: true},
		discordlog.Field{Name: "Caller", Value: sessData.User.Username, Inline: true},
		discordlog.Field{Name: "Message", Value: call.Message},
	)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"call": call})
}

// Active lists the calls that are not yet done, optionally filtered by type.
func (s *Service) Active(c *fiber.Ctx) error {
	query := s.db.Preload("Caller").Preload("TakenBy").
		Where("status <> ?", models.CallDone).
		Order("created_at ASC")

	if callType := c.Query("type"); callType != "" {
		query = query.Where("type = ?", callType)
	}

	var calls []models.EmergencyCall

	if err := query.Find(&calls).Error; err != nil {
		log.Error().Err(err).Msg("failed to load active calls")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load calls"})
	}

	return c.JSON(fiber.Map{"calls": calls})
}

// Take assigns the pending call to the requesting user.
func (s *Service) Take(c *fiber.Ctx) error {
	sessData := auth.SessionFromLocals(c)

	call, errResp := s.loadCall(c)
	if call == nil {
		return errResp
	}

	if call.Status != models.CallPending {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "call is not pending"})
	}

	now := time.Now()
	call.Status = models.CallTaken
	call.TakenByID = &sessData.User.ID
	call.TakenAt = &now

	if err := s.db.Save(call).Error; err != nil {
		log.Error().Err(err).Uint64("call_id", call.ID).Msg("failed to take call")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to take call"})
	}

	handler.Audit(s.db, sessData.User.ID, fmt.Sprintf("took emergency call #%d", call.ID))

	s.eventLog.Send(c.Context(), discordlog.SeveritySuccess, "Emergency call taken",
		discordlog.Field{Name: "Type", Value: string(call.Type), Inline: true},
		discordlog.Field{Name: "Responder", Value: sessData.User.Username, Inline: true},
	)

	return c.JSON(fiber.Map{"call": call})
}

// Close resolves a call. Staff only; any staff member may close any call.
func (s *Service) Close(c *fiber.Ctx) error {
	sessData := auth.SessionFromLocals(c)

	call, errResp := s.loadCall(c)
	if call == nil {
		return errResp
	}

	if call.Status == models.CallDone {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "call is already closed"})
	}

	call.Status = models.CallDone

	if err := s.db.Save(call).Error; err != nil {
		log.Error().Err(err).Uint64("call_id", call.ID).Msg("failed to close call")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to close call"})
	}

	handler.Audit(s.db, sessData.User.ID, fmt.Sprintf("closed emergency call #%d", call.ID))

	return c.JSON(fiber.Map{"call": call})
}

type assignRequest struct {
	UserID    uint64 `json:"userId"`
	DiscordID string `json:"discordId"`
}

// Assign manually puts a responder on a call, addressed by panel user id or
// Discord id. Staff only.
func (s *Service) Assign(c *fiber.Ctx) error {
	sessData := auth.SessionFromLocals(c)

	call, errResp := s.loadCall(c)
	if call == nil {
		return errResp
	}

	req := new(assignRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}

	var (
		responder models.User
		err       error
	)

	switch {
	case req.UserID != 0:
		err = s.db.First(&responder, req.UserID).Error
	case req.DiscordID != "":
		err = s.db.Where("discord_id = ?", req.DiscordID).First(&responder).Error
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "userId or discordId required"})
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "responder not found"})
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to resolve responder")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to assign call"})
	}

	now := time.Now()
	call.Status = models.CallTaken
	call.TakenByID = &responder.ID
	call.TakenAt = &now

	if err := s.db.Save(call).Error; err != nil {
		log.Error().Err(err).Uint64("call_id", call.ID).Msg("failed to assign call")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to assign call"})
	}

	handler.Audit(s.db, sessData.User.ID,
		fmt.Sprintf("assigned emergency call #%d to %s", call.ID, responder.Username))

	return c.JSON(fiber.Map{"call": call})
}

// loadCall reads the :id parameter and loads the call, answering the request
// itself on failure.
func (s *Service) loadCall(c *fiber.Ctx) (*models.EmergencyCall, error) {
	id, err := c.ParamsInt("id")
	if err != nil {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid call id"})
	}

	var call models.EmergencyCall

	err = s.db.First(&call, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "call not found"})
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to load call")
		return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load call"})
	}

	return &call, nil
}
