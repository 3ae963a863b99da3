package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/exiledrp/exiled-panel/internal/db/models"
	"github.com/exiledrp/exiled-panel/internal/discord"
)

// SyncRoles reconciles the user's local roles against the roles they hold in
// the community's Discord guild and returns the resulting role name snapshot.
//
// The reconciliation is one way: guild roles are mirrored into the local
// catalog (created lazily, renamed in place), attachments are added for newly
// held roles and removed for mirrored roles no longer held. Locally created
// roles are never detached. Fetch failures are absorbed into an empty fetched
// set, which strips mirrored roles but never fails the sign-in.
//
// Local-only accounts are left untouched and get their current snapshot back.
func (s *Service) SyncRoles(ctx context.Context, userID uint64) ([]string, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	if s.discord == nil || user.DiscordID == nil {
		return user.RoleNames(), nil
	}

	// another sync for this user is already running, serve the current snapshot
	if !s.beginSync(userID) {
		return user.RoleNames(), nil
	}
	defer s.endSync(userID)

	fetched, err := s.discord.MemberRoles(ctx, user.DiscordToken, *user.DiscordID)
	if err != nil {
		log.Warn().Err(err).Uint64("user_id", userID).
			Msg("failed to fetch discord roles, treating member as holding none")

		fetched = nil
	}

	if err := s.applyRoles(user, fetched); err != nil {
		return nil, err
	}

	// re-read for the fresh snapshot
	user, err = s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	return user.RoleNames(), nil
}

// applyRoles applies the fetched guild roles to the user's attachments.
func (s *Service) applyRoles(user *models.User, fetched []discord.GuildRole) error {
	missing, stale := diffRoles(user.Roles, fetched)

	for _, guildRole := range missing {
		role, err := s.mirrorRole(guildRole)
		if err != nil {
			return err
		}

		if err := s.db.Model(user).Association("Roles").Append(role); err != nil {
			return fmt.Errorf("failed to attach role %s: %w", role.Name, err)
		}
	}

	// renames for roles the user already holds
	for _, guildRole := range fetched {
		if _, err := s.mirrorRole(guildRole); err != nil {
			return err
		}
	}

	for i := range stale {
		if err := s.db.Model(user).Association("Roles").Delete(&stale[i]); err != nil {
			return fmt.Errorf("failed to detach role %s: %w", stale[i].Name, err)
		}
	}

	return nil
}

// mirrorRole finds or creates the local role mirroring a guild role and
// renames it in place when the guild role was renamed.
func (s *Service) mirrorRole(guildRole discord.GuildRole) (*models.Role, error) {
	var role models.Role

	err := s.db.Where("discord_id = ?", guildRole.ID).First(&role).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		discordID := guildRole.ID
		role = models.Role{Name: guildRole.Name, DiscordID: &discordID}

		if err := s.db.Create(&role).Error; err != nil {
			return nil, fmt.Errorf("failed to create role %s: %w", guildRole.Name, err)
		}

		return &role, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query role: %w", err)
	}

	if role.Name != guildRole.Name {
		role.Name = guildRole.Name
		if err := s.db.Save(&role).Error; err != nil {
			return nil, fmt.Errorf("failed to rename role: %w", err)
		}
	}

	return &role, nil
}

// diffRoles compares the user's current roles with the fetched guild roles.
// It returns the guild roles not yet attached and the mirrored roles that are
// no longer held. Locally created roles never show up as stale.
func diffRoles(current []models.Role, fetched []discord.GuildRole) ([]discord.GuildRole, []models.Role) {
	held := make(map[string]struct{}, len(current))

	for i := range current {
		if current[i].External() {
			held[*current[i].DiscordID] = struct{}{}
		}
	}

	wanted := make(map[string]struct{}, len(fetched))
	missing := make([]discord.GuildRole, 0)

	for _, guildRole := range fetched {
		wanted[guildRole.ID] = struct{}{}

		if _, ok := held[guildRole.ID]; !ok {
			missing = append(missing, guildRole)
		}
	}

	stale := make([]models.Role, 0)

	for i := range current {
		if !current[i].External() {
			continue
		}

		if _, ok := wanted[*current[i].DiscordID]; !ok {
			stale = append(stale, current[i])
		}
	}

	return missing, stale
}
