package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"gorm.io/gorm"

	"github.com/exiledrp/exiled-panel/internal/db/models"
	"github.com/exiledrp/exiled-panel/internal/discord"
)

// RoleFetcher fetches the guild roles a member currently holds.
// *discord.Client satisfies it.
type RoleFetcher interface {
	MemberRoles(ctx context.Context, accessToken, discordUserID string) ([]discord.GuildRole, error)
}

// Service provides authentication and role synchronization functionality.
type Service struct {
	db      *gorm.DB
	discord RoleFetcher

	// syncMu guards against concurrent syncs for the same user.
	syncMu sync.Mutex
	// syncing holds the user IDs with a sync in flight.
	syncing map[uint64]struct{}
}

// NewService creates a new auth service. The role fetcher may be nil when
// Discord sign-in is disabled; role synchronization then becomes a no-op.
func NewService(db *gorm.DB, discordClient RoleFetcher) *Service {
	return &Service{
		db:      db,
		discord: discordClient,
		syncing: make(map[uint64]struct{}),
	}
}

// Authenticate authenticates a local user against the database.
func (s *Service) Authenticate(username, password string) (*models.User, error) {
	var user models.User

	err := s.db.Preload("Roles").Where("username = ?", username).First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	if !user.Active {
		return nil, ErrUserAccountDisabled
	}

	if !user.VerifyPassword(password) {
		return nil, ErrInvalidPassword
	}

	return &user, nil
}

// GetUserByID retrieves a user with roles preloaded.
func (s *Service) GetUserByID(userID uint64) (*models.User, error) {
	var user models.User

	err := s.db.Preload("Roles").First(&user, userID).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return &user, nil
}

// CreateLocalUser creates a local account with an argon2id hashed password.
func (s *Service) CreateLocalUser(username, email, password string) (*models.User, error) {
	var existing models.User

	err := s.db.Where("username = ?", username).First(&existing).Error
	if err == nil {
		return nil, ErrUserNameExists
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	user := models.User{
		Active:   true,
		Username: username,
		Email:    email,
		Password: models.HashPassword(password),
	}

	if err := s.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &user, nil
}

// beginSync marks a user sync as in flight. It reports false when another
// sync for the same user is already running.
func (s *Service) beginSync(userID uint64) bool {
	s.syncMu.Lock()
	defer s.syncMu.Unlock()

	if _, busy := s.syncing[userID]; busy {
		return false
	}

	s.syncing[userID] = struct{}{}

	return true
}

// endSync clears the in flight marker for a user.
func (s *Service) endSync(userID uint64) {
	s.syncMu.Lock()
	defer s.syncMu.Unlock()

	delete(s.syncing, userID)
}
