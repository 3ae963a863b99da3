// Package job implements the in-game profession API: jobs, grade ladders,
// rosters, intervention reports and duty time accounting.
package job

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
	// Path is the base path of the job API.
	Path = "/api/jobs"
)

// Service is the job handler service.
type Service struct {
	handler.Service
	cfg      *config.Config
	db       *gorm.DB
	eventLog *discordlog.Logger
}

// Handler is the job handler.
var Handler = Service{}

// Init initializes the job handler.
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
		router.Get("/mine", s.Mine)
		router.Get("/stats", s.Stats)
		router.Put("/service-status", s.ServiceStatus)

		gestion := auth.RequireLevel(auth.LevelGestion)
		router.Post(handler.RouterRootPath, gestion, s.Create)
		router.Post("/:id/grades", gestion, s.AddGrade)
		router.Post("/:id/members", gestion, s.AddMember)

		router.Get("/:id/reports", s.ListReports)
		router.Post("/:id/reports", s.CreateReport)
	})

	return nil
}

// List returns all jobs with their grade ladders.
func (s *Service) List(c *fiber.Ctx) error {
	var jobs []models.Job

	err := s.db.Preload("Grades", func(db *gorm.DB) *gorm.DB {
		return db.Order("level ASC")
	}).Find(&jobs).Error
	if err != nil {
		log.Error().Err(err).Msg("failed to load jobs")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load jobs"})
	}

	return c.JSON(fiber.Map{"jobs": jobs})
}

type createRequest struct {
	Name  string `json:"name" validate:"required,max=100"`
	Label string `json:"label" validate:"required,max=200"`
}

// Create registers a new job.
func (s *Service) Create(c *fiber.Ctx) error {
	sessData := auth.SessionFromLocals(c)

	req := new(createRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}

	if err := handler.Validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	job := models.Job{
		Name:  req.Name,
		Label: req.Label,
	}

	if err := s.db.Create(&job).Error; err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "job already exists"})
	}

	handler.Audit(s.db, sessData.User.ID, fmt.Sprintf("created job %s", job.Name))

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"job": job})
}

type gradeRequest struct {
	Name   string `json:"name" validate:"required,max=100"`
	Level  int    `json:"level" validate:"min=0"`
	Salary int    `json:"salary" validate:"min=0"`
}

// AddGrade adds a rung to a job's grade ladder.
func (s *Service) AddGrade(c *fiber.Ctx) error {
	job, errResp := s.loadJob(c)
	if job == nil {
		return errResp
	}

	req := new(gradeRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}

	if err := handler.Validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	grade := models.JobGrade{
		JobID:  job.ID,
		Name:   req.Name,
		Level:  req.Level,
		Salary: req.Salary,
	}

	if err := s.db.Create(&grade).Error; err != nil {
		log.Error().Err(err).Uint64("job_id", job.ID).Msg("failed to create grade")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to add grade"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"grade": grade})
}

type memberRequest struct {
	UserID    uint64 `json:"userId"`
	DiscordID string `json:"discordId"`
	GradeID   uint64 `json:"gradeId" validate:"required"`
}

// AddMember recruits a user into a job, addressed by user id or Discord id.
func (s *Service) AddMember(c *fiber.Ctx) error {
	sessData := auth.SessionFromLocals(c)

	job, errResp := s.loadJob(c)
	if job == nil {
		return errResp
	}

	req := new(memberRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}

	if err := handler.Validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var (
		user    models.User
		userErr error
	)

	switch {
	case req.UserID != 0:
		userErr = s.db.First(&user, req.UserID).Error
	case req.DiscordID != "":
		userErr = s.db.Where("discord_id = ?", req.DiscordID).First(&user).Error
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "userId or discordId required"})
	}

	if errors.Is(userErr, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
	}
	if userErr != nil {
		log.Error().Err(userErr).Msg("failed to resolve user")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to recruit member"})
	}

	var grade models.JobGrade
	if err := s.db.Where("id = ? AND job_id = ?", req.GradeID, job.ID).First(&grade).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "grade not found for this job"})
	}

	member := models.JobMember{
		UserID:        user.ID,
		JobID:         job.ID,
		GradeID:       grade.ID,
		ServiceStatus: models.ServiceOffDuty,
	}

	if err := s.db.Create(&member).Error; err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "user is already a member of this job"})
	}

	handler.Audit(s.db, sessData.User.ID,
		fmt.Sprintf("recruited %s into job %s", user.Username, job.Name))

	s.eventLog.Send(c.Context(), discordlog.SeverityInfo, "Job recruitment",
		discordlog.Field{Name: "Job", Value: job.Label, Inline: true},
		discordlog.Field{Name: "Recruit", Value: user.Username, Inline: true},
		discordlog.Field{Name: "By", Value: sessData.User.Username, Inline: true},
	)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"member": member})
}

// Mine returns the requesting user's job memberships.
func (s *Service) Mine(c *fiber.Ctx) error {
	sessData := auth.SessionFromLocals(c)

	var memberships []models.JobMember

	err := s.db.Preload("Job").Preload("Grade").
		Where("user_id = ?", sessData.User.ID).
		Find(&memberships).Error
	if err != nil {
		log.Error().Err(err).Msg("failed to load job memberships")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load memberships"})
	}

	return c.JSON(fiber.Map{"memberships": memberships})
}

type reportRequest struct {
	Title   string `json:"title" validate:"required,max=200"`
	Content string `json:"content" validate:"required,max=5000"`
}

// CreateReport files an intervention report. Members of the job only.
func (s *Service) CreateReport(c *fiber.Ctx) error {
	sessData := auth.SessionFromLocals(c)

	job, errResp := s.loadJob(c)
	if job == nil {
		return errResp
	}

	if !s.isMember(job.ID, sessData.User.ID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "not a member of this job"})
	}

	req := new(reportRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}

	if err := handler.Validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	report := models.JobReport{
		JobID:    job.ID,
		AuthorID: sessData.User.ID,
		Title:    req.Title,
		Content:  req.Content,
		Status:   models.ReportOpen,
	}

	if err := s.db.Create(&report).Error; err != nil {
		log.Error().Err(err).Uint64("job_id", job.ID).Msg("failed to create report")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to file report"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"report": report})
}

// ListReports lists a job's intervention reports. Members of the job only.
func (s *Service) ListReports(c *fiber.Ctx) error {
	sessData := auth.SessionFromLocals(c)

	job, errResp := s.loadJob(c)
	if job == nil {
		return errResp
	}

	if !s.isMember(job.ID, sessData.User.ID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "not a member of this job"})
	}

	var reports []models.JobReport

	err := s.db.Preload("Author").
		Where("job_id = ?", job.ID).
		Order("created_at DESC").
		Find(&reports).Error
	if err != nil {
		log.Error().Err(err).Uint64("job_id", job.ID).Msg("failed to load reports")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load reports"})
	}

	return c.JSON(fiber.Map{"reports": reports})
}

type serviceStatusRequest struct {
	JobID  uint64               `json:"jobId" validate:"required"`
	Status models.ServiceStatus `json:"status" validate:"required,oneof=OFF_DUTY AVAILABLE BUSY IN_INTERVENTION"`
}

// ServiceStatus changes the requester's duty state in one of their jobs.
// Going on duty stamps the start time, going off duty accumulates the
// elapsed minutes into the member's total.
func (s *Service) ServiceStatus(c *fiber.Ctx) error {
	sessData := auth.SessionFromLocals(c)

	req := new(serviceStatusRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}

	if err := handler.Validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var member models.JobMember

	err := s.db.Where("user_id = ? AND job_id = ?", sessData.User.ID, req.JobID).First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "not a member of this job"})
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to load membership")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update status"})
	}

	now := time.Now()

	wasOnDuty := member.ServiceStatus != models.ServiceOffDuty
	goesOnDuty := req.Status != models.ServiceOffDuty

	switch {
	case !wasOnDuty && goesOnDuty:
		member.LastServiceStart = &now
	case wasOnDuty && !goesOnDuty:
		if member.LastServiceStart != nil {
			member.TotalServiceTime += int(now.Sub(*member.LastServiceStart).Minutes())
		}

		member.LastServiceStart = nil
	}

	member.ServiceStatus = req.Status
	member.IsAvailable = goesOnDuty

	if err := s.db.Save(&member).Error; err != nil {
		log.Error().Err(err).Uint64("member_id", member.ID).Msg("failed to update service status")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update status"})
	}

	return c.JSON(fiber.Map{"member": member})
}

// Stats summarizes jobs: member counts, on-duty counts and open reports.
func (s *Service) Stats(c *fiber.Ctx) error {
	var jobs []models.Job

	if err := s.db.Preload("Members").Preload("Reports").Find(&jobs).Error; err != nil {
		log.Error().Err(err).Msg("failed to load job stats")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load stats"})
	}

	type jobStats struct {
		JobID       uint64 `json:"jobId"`
		Name        string `json:"name"`
		Members     int    `json:"members"`
		OnDuty      int    `json:"onDuty"`
		OpenReports int    `json:"openReports"`
	}

	stats := make([]jobStats, 0, len(jobs))

	for i := range jobs {
		entry := jobStats{
			JobID:   jobs[i].ID,
			Name:    jobs[i].Name,
			Members: len(jobs[i].Members),
		}

		for j := range jobs[i].Members {
			if jobs[i].Members[j].ServiceStatus != models.ServiceOffDuty {
				entry.OnDuty++
			}
		}

		for j := range jobs[i].Reports {
			if jobs[i].Reports[j].Status == models.ReportOpen {
				entry.OpenReports++
			}
		}

		stats = append(stats, entry)
	}

	return c.JSON(fiber.Map{"jobs": stats})
}

// isMember reports whether the user belongs to the job.
func (s *Service) isMember(jobID, userID uint64) bool {
	var count int64

	err := s.db.Model(&models.JobMember{}).
		Where("job_id = ? AND user_id = ?", jobID, userID).
		Count(&count).Error
	if err != nil {
		log.Error().Err(err).Msg("failed to check job membership")
		return false
	}

	return count > 0
}

// loadJob reads the :id parameter and loads the job, answering the request
// itself on failure.
func (s *Service) loadJob(c *fiber.Ctx) (*models.Job, error) {
	id, err := c.ParamsInt("id")
	if err != nil {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid job id"})
	}

	var job models.Job

	err = s.db.First(&job, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "job not found"})
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to load job")
		return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load job"})
	}

	return &job, nil
}
