// Package staff implements the staff management API.
//
// Listing the team requires Staff level; everything touching notes,
// sanctions, absences or the roster itself is Gestion territory.
package staff

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
	// Path is the base path of the staff API.
	Path = "/api/staff"
)

// Service is the staff handler service.
type Service struct {
	handler.Service
	cfg      *config.Config
	db       *gorm.DB
	eventLog *discordlog.Logger
}

// Handler is the staff handler.
var Handler = Service{}

// Init initializes the staff handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, eventLog *discordlog.Logger) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.cfg = cfg
	s.db = db
	s.eventLog = eventLog

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RouterRootPath, auth.RequireLevel(auth.LevelStaff), s.List)

		gestion := auth.RequireLevel(auth.LevelGestion)
		router.Get("/stats", gestion, s.Stats)
		router.Post(handler.RouterRootPath, gestion, s.Create)
		router.Get("/:id", gestion, s.Get)
		router.Delete("/:id", gestion, s.Delete)
		router.Put("/:id/role", gestion, s.UpdateRole)
		router.Post("/:id/notes", gestion, s.AddNote)
		router.Post("/:id/sanctions", gestion, s.AddSanction)
		router.Post("/:id/absences", gestion, s.AddAbsence)
	})

	return nil
}

// List returns the staff roster.
func (s *Service) List(c *fiber.Ctx) error {
	var staff []models.Staff

	err := s.db.Preload("User").Preload("Role").Order("id ASC").Find(&staff).Error
	if err != nil {
		log.Error().Err(err).Msg("failed to load staff roster")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load staff"})
	}

	return c.JSON(fiber.Map{"staff": staff})
}

// Get returns one staff record with its notes, sanctions and absences.
func (s *Service) Get(c *fiber.Ctx) error {
	staff, errResp := s.loadStaff(c, true)
	if staff == nil {
		return errResp
	}

	return c.JSON(fiber.Map{"staff": staff})
}

type createRequest struct {
	UserID uint64 `json:"userId" validate:"required"`
	RoleID *uint  `json:"roleId"`
	Bio    string `json:"bio" validate:"max=2000"`
}

// Create adds a user to the staff team.
func (s *Service) Create(c *fiber.Ctx) error {
	sessData := auth.SessionFromLocals(c)

	req := new(createRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}

	if err := handler.Validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var user models.User
	if err := s.db.First(&user, req.UserID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
	}

	staff := models.Staff{
		UserID: req.UserID,
		RoleID: req.RoleID,
		Bio:    req.Bio,
	}

	if err := s.db.Create(&staff).Error; err != nil {
		log.Error().Err(err).Uint64("user_id", req.UserID).Msg("failed to create staff record")
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "user is already staff"})
	}

	handler.Audit(s.db, sessData.User.ID, fmt.Sprintf("added %s to the staff team", user.Username))

	s.eventLog.Send(c.Context(), discordlog.SeverityInfo, "Staff member added",
		discordlog.Field{Name: "Member", Value: user.Username, Inline: true},
		discordlog.Field{Name: "By", Value: sessData.User.Username, Inline: true},
	)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"staff": staff})
}

// Delete removes a staff record and its attached notes, sanctions and absences.
func (s *Service) Delete(c *fiber.Ctx) error {
	sessData := auth.SessionFromLocals(c)

	staff, errResp := s.loadStaff(c, false)
	if staff == nil {
		return errResp
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("staff_id = ?", staff.ID).Delete(&models.StaffNote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("staff_id = ?", staff.ID).Delete(&models.StaffSanction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("staff_id = ?", staff.ID).Delete(&models.StaffAbsence{}).Error; err != nil {
			return err
		}

		return tx.Delete(staff).Error
	})
	if err != nil {
		log.Error().Err(err).Uint64("staff_id", staff.ID).Msg("failed to delete staff record")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete staff"})
	}

	handler.Audit(s.db, sessData.User.ID, fmt.Sprintf("removed staff record #%d", staff.ID))

	return c.JSON(fiber.Map{"success": true})
}

type updateRoleRequest struct {
	RoleID *uint `json:"roleId"`
}

// UpdateRole changes the staff position role.
func (s *Service) UpdateRole(c *fiber.Ctx) error {
	sessData := auth.SessionFromLocals(c)

	staff, errResp := s.loadStaff(c, false)
	if staff == nil {
		return errResp
	}

	req := new(updateRoleRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}

	if req.RoleID != nil {
		var role models.Role
		if err := s.db.First(&role, *req.RoleID).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "role not found"})
		}
	}

	if err := s.db.Model(staff).Update("role_id", req.RoleID).Error; err != nil {
		log.Error().Err(err).Uint64("staff_id", staff.ID).Msg("failed to update staff role")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update role"})
	}

	handler.Audit(s.db, sessData.User.ID, fmt.Sprintf("changed role of staff record #%d", staff.ID))

	return c.JSON(fiber.Map{"success": true})
}

type noteRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
}

// AddNote attaches a management note to a staff record.
func (s *Service) AddNote(c *fiber.Ctx) error {
	sessData := auth.SessionFromLocals(c)

	staff, errResp := s.loadStaff(c, false)
	if staff == nil {
		return errResp
	}

	req := new(noteRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}

	if err := handler.Validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	note := models.StaffNote{
		StaffID:  staff.ID,
		AuthorID: sessData.User.ID,
		Content:  req.Content,
	}

	if err := s.db.Create(&note).Error; err != nil {
		log.Error().Err(err).Uint64("staff_id", staff.ID).Msg("failed to create staff note")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to add note"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"note": note})
}

type sanctionRequest struct {
	Type   models.SanctionType `json:"type" validate:"required,oneof=WARN BLAME KICK BAN"`
	Reason string              `json:"reason" validate:"required,max=1000"`
}

// AddSanction records a disciplinary action against a staff member.
func (s *Service) AddSanction(c *fiber.Ctx) error {
	sessData := auth.SessionFromLocals(c)

	staff, errResp := s.loadStaff(c, false)
	if staff == nil {
		return errResp
	}

	req := new(sanctionRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}

	if err := handler.Validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	sanction := models.StaffSanction{
		StaffID:  staff.ID,
		Type:     req.Type,
		Reason:   req.Reason,
		AuthorID: sessData.User.ID,
	}

	if err := s.db.Create(&sanction).Error; err != nil {
		log.Error().Err(err).Uint64("staff_id", staff.ID).Msg("failed to create sanction")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to add sanction"})
	}

	handler.Audit(s.db, sessData.User.ID,
		fmt.Sprintf("sanctioned staff record #%d (%s)", staff.ID, req.Type))

	s.eventLog.Send(c.Context(), discordlog.SeverityWarn, "Staff sanction",
		discordlog.Field{Name: "Type", Value: string(req.Type), Inline: true},
		discordlog.Field{Name: "By", Value: sessData.User.Username, Inline: true},
		discordlog.Field{Name: "Reason", Value: req.Reason},
	)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"sanction": sanction})
}

type absenceRequest struct {
	Type     models.AbsenceType `json:"type" validate:"required,oneof=ABSENCE DELAY"`
	Date     string             `json:"date" validate:"required,datetime=2006-01-02"`
	Reason   string             `json:"reason" validate:"max=500"`
	Duration *int               `json:"duration" validate:"omitempty,min=1"`
}

// AddAbsence records an absence or delay.
func (s *Service) AddAbsence(c *fiber.Ctx) error {
	sessData := auth.SessionFromLocals(c)

	staff, errResp := s.loadStaff(c, false)
	if staff == nil {
		return errResp
	}

	req := new(absenceRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}

	if err := handler.Validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid date"})
	}

	absence := models.StaffAbsence{
		StaffID:  staff.ID,
		Type:     req.Type,
		Date:     date,
		Reason:   req.Reason,
		Duration: req.Duration,
		AuthorID: sessData.User.ID,
	}

	if err := s.db.Create(&absence).Error; err != nil {
		log.Error().Err(err).Uint64("staff_id", staff.ID).Msg("failed to create absence")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to add absence"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"absence": absence})
}

// Stats summarizes the staff team: roster size and note, sanction and
// absence counts per staff record.
func (s *Service) Stats(c *fiber.Ctx) error {
	var staff []models.Staff

	err := s.db.Preload("User").Preload("Notes").Preload("Sanctions").Preload("Absences").
		Find(&staff).Error
	if err != nil {
		log.Error().Err(err).Msg("failed to load staff stats")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load stats"})
	}

	type memberStats struct {
		StaffID   uint64 `json:"staffId"`
		Username  string `json:"username"`
		Notes     int    `json:"notes"`
		Sanctions int    `json:"sanctions"`
		Absences  int    `json:"absences"`
	}

	var (
		members        = make([]memberStats, 0, len(staff))
		totalSanctions int
		totalAbsences  int
	)

	for i := range staff {
		members = append(members, memberStats{
			StaffID:   staff[i].ID,
			Username:  staff[i].User.Username,
			Notes:     len(staff[i].Notes),
			Sanctions: len(staff[i].Sanctions),
			Absences:  len(staff[i].Absences),
		})
		totalSanctions += len(staff[i].Sanctions)
		totalAbsences += len(staff[i].Absences)
	}

	return c.JSON(fiber.Map{
		"totalStaff":     len(staff),
		"totalSanctions": totalSanctions,
		"totalAbsences":  totalAbsences,
		"members":        members,
	})
}

// loadStaff reads the :id parameter and loads the staff record, answering
// the request itself on failure.
func (s *Service) loadStaff(c *fiber.Ctx, full bool) (*models.Staff, error) {
	id, err := c.ParamsInt("id")
	if err != nil {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid staff id"})
	}

	query := s.db.Preload("User").Preload("Role")
	if full {
		query = query.
			Preload("Notes").Preload("Notes.Author").
			Preload("Sanctions").Preload("Sanctions.Author").
			Preload("Absences")
	}

	var staff models.Staff

	err = query.First(&staff, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "staff not found"})
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to load staff record")
		return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load staff"})
	}

	return &staff, nil
}
