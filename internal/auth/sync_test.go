package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/exiledrp/exiled-panel/internal/db/models"
	"github.com/exiledrp/exiled-panel/internal/discord"
)

// fakeFetcher serves a canned guild role answer.
type fakeFetcher struct {
	roles []discord.GuildRole
	err   error
	calls int
}

func (f *fakeFetcher) MemberRoles(_ context.Context, _, _ string) ([]discord.GuildRole, error) {
	f.calls++
	return f.roles, f.err
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	err = db.AutoMigrate(&models.User{}, &models.Role{})
	require.NoError(t, err, "failed to migrate test database")

	return db
}

func createDiscordUser(t *testing.T, db *gorm.DB, username, discordID string, roles ...models.Role) *models.User {
	t.Helper()

	user := models.User{
		Active:    true,
		Username:  username,
		DiscordID: &discordID,
		Roles:     roles,
	}
	require.NoError(t, db.Create(&user).Error)

	return &user
}

func TestSyncRolesAttachesAndMirrors(t *testing.T) {
	db := setupTestDB(t)
	fetcher := &fakeFetcher{roles: []discord.GuildRole{
		{ID: "r-staff", Name: "Staff"},
		{ID: "r-citizen", Name: "Citizen"},
	}}
	svc := NewService(db, fetcher)

	user := createDiscordUser(t, db, "john", "42")

	names, err := svc.SyncRoles(context.Background(), user.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Staff", "Citizen"}, names)

	// the catalog mirrors both guild roles
	var roles []models.Role
	require.NoError(t, db.Find(&roles).Error)
	assert.Len(t, roles, 2)
}

func TestSyncRolesDetachesMirroredRoles(t *testing.T) {
	db := setupTestDB(t)

	staffID := "r-staff"
	fetcher := &fakeFetcher{roles: []discord.GuildRole{{ID: staffID, Name: "Staff"}}}
	svc := NewService(db, fetcher)

	citizenID := "r-citizen"
	user := createDiscordUser(t, db, "john", "42",
		models.Role{Name: "Staff", DiscordID: &staffID},
		models.Role{Name: "Citizen", DiscordID: &citizenID},
	)

	names, err := svc.SyncRoles(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Staff"}, names)

	// the detached role row survives in the catalog
	var citizen models.Role
	require.NoError(t, db.Where("discord_id = ?", citizenID).First(&citizen).Error)
}

func TestSyncRolesKeepsLocalRoles(t *testing.T) {
	db := setupTestDB(t)
	fetcher := &fakeFetcher{roles: nil}
	svc := NewService(db, fetcher)

	user := createDiscordUser(t, db, "john", "42",
		models.Role{Name: "direction"},
	)

	names, err := svc.SyncRoles(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"direction"}, names)
}

func TestSyncRolesRenamesInPlace(t *testing.T) {
	db := setupTestDB(t)

	staffID := "r-staff"
	fetcher := &fakeFetcher{roles: []discord.GuildRole{{ID: staffID, Name: "Senior Staff"}}}
	svc := NewService(db, fetcher)

	user := createDiscordUser(t, db, "john", "42",
		models.Role{Name: "Staff", DiscordID: &staffID},
	)

	names, err := svc.SyncRoles(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Senior Staff"}, names)

	var count int64
	require.NoError(t, db.Model(&models.Role{}).Count(&count).Error)
	assert.EqualValues(t, 1, count, "rename must reuse the existing row")
}

func TestSyncRolesIdempotent(t *testing.T) {
	db := setupTestDB(t)
	fetcher := &fakeFetcher{roles: []discord.GuildRole{{ID: "r-staff", Name: "Staff"}}}
	svc := NewService(db, fetcher)

	user := createDiscordUser(t, db, "john", "42")

	first, err := svc.SyncRoles(context.Background(), user.ID)
	require.NoError(t, err)

	second, err := svc.SyncRoles(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	var count int64
	require.NoError(t, db.Model(&models.Role{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestSyncRolesAbsorbsFetchFailure(t *testing.T) {
	db := setupTestDB(t)

	staffID := "r-staff"
	fetcher := &fakeFetcher{err: errors.New("discord is down")}
	svc := NewService(db, fetcher)

	user := createDiscordUser(t, db, "john", "42",
		models.Role{Name: "Staff", DiscordID: &staffID},
		models.Role{Name: "direction"},
	)

	// the failure strips mirrored roles but keeps the local one and does not error
	names, err := svc.SyncRoles(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"direction"}, names)
}

func TestSyncRolesLocalOnlyAccount(t *testing.T) {
	db := setupTestDB(t)
	fetcher := &fakeFetcher{roles: []discord.GuildRole{{ID: "r-staff", Name: "Staff"}}}
	svc := NewService(db, fetcher)

	user := models.User{
		Active:   true,
		Username: "admin",
		Roles:    []models.Role{{Name: "direction"}},
	}
	require.NoError(t, db.Create(&user).Error)

	names, err := svc.SyncRoles(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"direction"}, names)
	assert.Zero(t, fetcher.calls, "local accounts never hit discord")
}

func TestSyncRolesUnknownUser(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, &fakeFetcher{})

	_, err := svc.SyncRoles(context.Background(), 999)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestDiffRoles(t *testing.T) {
	staffID := "r-staff"
	citizenID := "r-citizen"

	current := []models.Role{
		{Name: "Staff", DiscordID: &staffID},
		{Name: "Citizen", DiscordID: &citizenID},
		{Name: "direction"},
	}
	fetched := []discord.GuildRole{
		{ID: "r-staff", Name: "Staff"},
		{ID: "r-new", Name: "New"},
	}

	missing, stale := diffRoles(current, fetched)

	require.Len(t, missing, 1)
	assert.Equal(t, "r-new", missing[0].ID)

	require.Len(t, stale, 1)
	assert.Equal(t, "Citizen", stale[0].Name)
}

func TestAuthenticateLocal(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, nil)

	created, err := svc.CreateLocalUser("admin", "admin@example.com", "s3cret")
	require.NoError(t, err)
	require.NotNil(t, created)

	testCases := []struct {
		name          string
		username      string
		password      string
		expectedError error
	}{
		{
			name:     "valid credentials",
			username: "admin",
			password: "s3cret",
		},
		{
			name:          "wrong password",
			username:      "admin",
			password:      "wrong",
			expectedError: ErrInvalidPassword,
		},
		{
			name:          "unknown user",
			username:      "ghost",
			password:      "s3cret",
			expectedError: ErrUserNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			user, err := svc.Authenticate(tc.username, tc.password)

			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				require.NotNil(t, user)
				assert.Equal(t, tc.username, user.Username)
			}
		})
	}
}

func TestAuthenticateDisabledAccount(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, nil)

	user := models.User{
		Active:   false,
		Username: "frozen",
		Password: models.HashPassword("s3cret"),
	}
	require.NoError(t, db.Create(&user).Error)

	_, err := svc.Authenticate("frozen", "s3cret")
	require.ErrorIs(t, err, ErrUserAccountDisabled)
}

func TestCreateLocalUserDuplicate(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, nil)

	_, err := svc.CreateLocalUser("admin", "", "s3cret")
	require.NoError(t, err)

	_, err = svc.CreateLocalUser("admin", "", "other")
	require.ErrorIs(t, err, ErrUserNameExists)
}
