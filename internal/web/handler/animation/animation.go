// Package animation implements the roleplay event API.
//
// Anyone signed in may browse and join events; creating one takes Staff
// level and only the organizer may modify or delete their event.
package animation

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
	// Path is the base path of the animation API.
	Path = "/api/animations"
)

// Service is the animation handler service.
type Service struct {
	handler.Service
	cfg      *config.Config
	db       *gorm.DB
	eventLog *discordlog.Logger
}

// Handler is the animation handler.
var Handler = Service{}

// Init initializes the animation handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, eventLog *discordlog.Logger) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.cfg = cfg
	s.db = db
	s.eventLog = eventLog

	app.Route(Path, func(router fiber.Router) {
		router.Use(auth.RequireLevel(auth.LevelAuthenticated))
		router.Get(handler.RouterRootPath, s.List)
		router.Get("/stats", s.Stats)
		router.Post(handler.RouterRootPath, auth.RequireLevel(auth.LevelStaff), s.Create)
		router.Put("/:id", s.Update)
		router.Put("/:id/status", s.UpdateStatus)
		router.Delete("/:id", s.Delete)
		router.Post("/:id/join", s.Join)
		router.Post("/:id/leave", s.Leave)
		router.Get("/:id/participants", s.Participants)
	})

	return nil
}

// animationView is an animation with its participant count.
type animationView struct {
	models.Animation
	ParticipantCount int `json:"participantCount"`
}

// List returns all animations with their participant counts, newest first.
func (s *Service) List(c *fiber.Ctx) error {
	var animations []models.Animation

	err := s.db.Preload("Organizer").Preload("Participants").
		Order("date DESC").
		Find(&animations).Error
	if err != nil {
		log.Error().Err(err).Msg("failed to load animations")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load animations"})
	}

	views := make([]animationView, 0, len(animations))
	for i := range animations {
		views = append(views, animationView{
			Animation:        animations[i],
			ParticipantCount: len(animations[i].Participants),
		})
	}

	return c.JSON(fiber.Map{"animations": views})
}

type createRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Date        string `json:"date" validate:"required"`
	Location    string `json:"location" validate:"max=200"`
}

// Create schedules a new animation with the requester as organizer.
func (s *Service) Create(c *fiber.Ctx) error {
	sessData := auth.SessionFromLocals(c)

	req := new(createRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}

	if err := handler.Validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	date, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid date"})
	}

	animation := models.Animation{
		Name:        req.Name,
		Description: req.Description,
		Date:        date,
		Location:    req.Location,
		Status:      models.AnimationPlanning,
		OrganizerID: sessData.User.ID,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&animation).Error; err != nil {
			return err
		}

		// the organizer participates in their own event
		return tx.Create(&models.AnimationParticipant{
			AnimationID:   animation.ID,
			UserID:        sessData.User.ID,
			Accreditation: models.AccreditationOrganizer,
		}).Error
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to create animation")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create animation"})
	}

	handler.Audit(s.db, sessData.User.ID, fmt.Sprintf("created animation %q", animation.Name))

	s.eventLog.Send(c.Context(), discordlog.SeverityInfo, "Animation scheduled",
		discordlog.Field{Name: "Name", Value: animation.Name, Inline: true},
		discordlog.Field{Name: "Organizer", Value: sessData.User.Username, Inline: true},
	)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"animation": animation})
}

type updateRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Date        string `json:"date" validate:"required"`
	Location    string `json:"location" validate:"max=200"`
}

// Update edits an animation. Organizer only.
func (s *Service) Update(c *fiber.Ctx) error {
	animation, errResp := s.loadOwnAnimation(c)
	if animation == nil {
		return errResp
	}

	req := new(updateRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}

	if err := handler.Validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	date, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid date"})
	}

	animation.Name = req.Name
	animation.Description = req.Description
	animation.Date = date
	animation.Location = req.Location

	if err := s.db.Save(animation).Error; err != nil {
		log.Error().Err(err).Uint64("animation_id", animation.ID).Msg("failed to update animation")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update animation"})
	}

	return c.JSON(fiber.Map{"animation": animation})
}

type statusRequest struct {
	Status models.AnimationStatus `json:"status" validate:"required,oneof=PLANNING ONGOING FINISHED"`
}

// UpdateStatus moves an animation through its lifecycle. Organizer only.
func (s *Service) UpdateStatus(c *fiber.Ctx) error {
	animation, errResp := s.loadOwnAnimation(c)
	if animation == nil {
		return errResp
	}

	req := new(statusRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}

	if err := handler.Validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := s.db.Model(animation).Update("status", req.Status).Error; err != nil {
		log.Error().Err(err).Uint64("animation_id", animation.ID).Msg("failed to update animation status")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update status"})
	}

	return c.JSON(fiber.Map{"success": true})
}

// Delete removes an animation and its sign-ups. Organizer only.
func (s *Service) Delete(c *fiber.Ctx) error {
	sessData := auth.SessionFromLocals(c)

	animation, errResp := s.loadOwnAnimation(c)
	if animation == nil {
		return errResp
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("animation_id = ?", animation.ID).
			Delete(&models.AnimationParticipant{}).Error; err != nil {
			return err
		}

		return tx.Delete(animation).Error
	})
	if err != nil {
		log.Error().Err(err).Uint64("animation_id", animation.ID).Msg("failed to delete animation")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete animation"})
	}

	handler.Audit(s.db, sessData.User.ID, fmt.Sprintf("deleted animation %q", animation.Name))

	return c.JSON(fiber.Map{"success": true})
}

type joinRequest struct {
	Accreditation models.Accreditation `json:"accreditation" validate:"omitempty,oneof=MODERATOR PARTICIPANT OBSERVER STAFF"`
}

// Join signs the requesting user up to an animation.
func (s *Service) Join(c *fiber.Ctx) error {
	sessData := auth.SessionFromLocals(c)

	animation, errResp := s.loadAnimation(c)
	if animation == nil {
		return errResp
	}

	if animation.Status == models.AnimationFinished {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "animation is finished"})
	}

	// the body is optional, an empty one means default accreditation
	req := new(joinRequest)
	if len(c.Body()) > 0 {
		if err := c.BodyParser(req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
		}
	}

	if err := handler.Validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	accreditation := req.Accreditation
	if accreditation == "" {
		accreditation = models.AccreditationParticipant
	}

	participant := models.AnimationParticipant{
		AnimationID:   animation.ID,
		UserID:        sessData.User.ID,
		Accreditation: accreditation,
	}

	if err := s.db.Create(&participant).Error; err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "already joined"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"participant": participant})
}

// Leave removes the requesting user's sign-up.
func (s *Service) Leave(c *fiber.Ctx) error {
	sessData := auth.SessionFromLocals(c)

	animation, errResp := s.loadAnimation(c)
	if animation == nil {
		return errResp
	}

	if animation.OrganizerID == sessData.User.ID {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "organizer cannot leave their own animation"})
	}

	result := s.db.Where("animation_id = ? AND user_id = ?", animation.ID, sessData.User.ID).
		Delete(&models.AnimationParticipant{})
	if result.Error != nil {
		log.Error().Err(result.Error).Uint64("animation_id", animation.ID).Msg("failed to leave animation")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to leave animation"})
	}

	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not a participant"})
	}

	return c.JSON(fiber.Map{"success": true})
}

// Participants lists the sign-ups of an animation.
func (s *Service) Participants(c *fiber.Ctx) error {
	animation, errResp := s.loadAnimation(c)
	if animation == nil {
		return errResp
	}

	var participants []models.AnimationParticipant

	err := s.db.Preload("User").
		Where("animation_id = ?", animation.ID).
		Order("joined_at ASC").
		Find(&participants).Error
	if err != nil {
		log.Error().Err(err).Uint64("animation_id", animation.ID).Msg("failed to load participants")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load participants"})
	}

	return c.JSON(fiber.Map{"participants": participants})
}

// Stats summarizes animations by status and the average sign-up count.
func (s *Service) Stats(c *fiber.Ctx) error {
	var animations []models.Animation

	if err := s.db.Preload("Participants").Find(&animations).Error; err != nil {
		log.Error().Err(err).Msg("failed to load animation stats")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load stats"})
	}

	var (
		byStatus          = make(map[models.AnimationStatus]int)
		totalParticipants int
	)

	for i := range animations {
		byStatus[animations[i].Status]++
		totalParticipants += len(animations[i].Participants)
	}

	average := 0.0
	if len(animations) > 0 {
		average = float64(totalParticipants) / float64(len(animations))
	}

	return c.JSON(fiber.Map{
		"total":               len(animations),
		"planning":            byStatus[models.AnimationPlanning],
		"ongoing":             byStatus[models.AnimationOngoing],
		"finished":            byStatus[models.AnimationFinished],
		"averageParticipants": average,
	})
}

// loadAnimation reads the :id parameter and loads the animation, answering
// the request itself on failure.
func (s *Service) loadAnimation(c *fiber.Ctx) (*models.Animation, error) {
	id, err := c.ParamsInt("id")
	if err != nil {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid animation id"})
	}

	var animation models.Animation

	err = s.db.First(&animation, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "animation not found"})
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to load animation")
		return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load animation"})
	}

	return &animation, nil
}

// loadOwnAnimation loads the animation and rejects the request when the
// requester is not its organizer.
func (s *Service) loadOwnAnimation(c *fiber.Ctx) (*models.Animation, error) {
	sessData := auth.SessionFromLocals(c)

	animation, errResp := s.loadAnimation(c)
	if animation == nil {
		return nil, errResp
	}

	if animation.OrganizerID != sessData.User.ID {
		return nil, c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "only the organizer may do this"})
	}

	return animation, nil
}
