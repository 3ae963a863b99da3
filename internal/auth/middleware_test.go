package auth

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exiledrp/exiled-panel/internal/db/models"
	"github.com/exiledrp/exiled-panel/internal/web/session"
)

// memStorage is an in-memory session backend for middleware tests.
type memStorage struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemStorage() *memStorage {
	return &memStorage{data: make(map[string][]byte)}
}

func (m *memStorage) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

func (m *memStorage) Set(key string, val []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = val
	return nil
}

func (m *memStorage) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memStorage) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string][]byte)
	return nil
}

func (m *memStorage) Close() error { return nil }

func newGatedApp(t *testing.T) *fiber.App {
	t.Helper()

	session.Init(newMemStorage())

	app := fiber.New()
	app.Use(PageGate)

	pages := []string{
		"/desktop",
		"/desktop/staff-center",
		"/desktop/gestion",
		"/desktop/direction",
	}
	for _, p := range pages {
		app.Get(p, func(c *fiber.Ctx) error {
			return c.SendString("ok")
		})
	}

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	api := app.Group("/api/test", RequireLevel(LevelStaff))
	api.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})

	return app
}

func signIn(t *testing.T, roles []string) string {
	t.Helper()

	sessionID, err := session.GenerateSessionID()
	require.NoError(t, err)

	sessData := session.Data{
		User:  models.User{ID: 1, Username: "tester", Active: true},
		Roles: roles,
	}
	require.NoError(t, sessData.Write(sessionID, time.Hour))

	return sessionID
}

func get(t *testing.T, app *fiber.App, path, sessionID string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: "session", Value: sessionID})
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	return resp
}

func TestPageGate(t *testing.T) {
	tests := []struct {
		name         string
		path         string
		roles        []string
		signedIn     bool
		wantStatus   int
		wantLocation string
	}{
		{
			name:         "unauthenticated desktop redirects to login",
			path:         "/desktop",
			signedIn:     false,
			wantStatus:   fiber.StatusFound,
			wantLocation: "/login",
		},
		{
			name:       "authenticated desktop passes without roles",
			path:       "/desktop",
			signedIn:   true,
			wantStatus: fiber.StatusOK,
		},
		{
			name:         "staff center without role redirects to desktop",
			path:         "/desktop/staff-center",
			signedIn:     true,
			wantStatus:   fiber.StatusFound,
			wantLocation: "/desktop",
		},
		{
			name:       "staff center with staff role passes",
			path:       "/desktop/staff-center",
			signedIn:   true,
			roles:      []string{"staff"},
			wantStatus: fiber.StatusOK,
		},
		{
			name:         "gestion page rejects staff role",
			path:         "/desktop/gestion",
			signedIn:     true,
			roles:        []string{"staff"},
			wantStatus:   fiber.StatusFound,
			wantLocation: "/desktop",
		},
		{
			name:       "gestion page with gestion role passes",
			path:       "/desktop/gestion",
			signedIn:   true,
			roles:      []string{"gestion"},
			wantStatus: fiber.StatusOK,
		},
		{
			name:       "gestion page with direction role passes",
			path:       "/desktop/gestion",
			signedIn:   true,
			roles:      []string{"direction"},
			wantStatus: fiber.StatusOK,
		},
		{
			name:         "direction page rejects gestion role",
			path:         "/desktop/direction",
			signedIn:     true,
			roles:        []string{"gestion"},
			wantStatus:   fiber.StatusFound,
			wantLocation: "/desktop",
		},
		{
			name:       "direction page with direction role passes",
			path:       "/desktop/direction",
			signedIn:   true,
			roles:      []string{"Direction"},
			wantStatus: fiber.StatusOK,
		},
		{
			name:       "ungated path passes unauthenticated",
			path:       "/healthz",
			signedIn:   false,
			wantStatus: fiber.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newGatedApp(t)

			var sessionID string
			if tt.signedIn {
				sessionID = signIn(t, tt.roles)
			}

			resp := get(t, app, tt.path, sessionID)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			if tt.wantLocation != "" {
				assert.Equal(t, tt.wantLocation, resp.Header.Get("Location"))
			}
		})
	}
}

func TestRequireLevel(t *testing.T) {
	tests := []struct {
		name       string
		roles      []string
		signedIn   bool
		wantStatus int
	}{
		{
			name:       "no session is unauthorized",
			signedIn:   false,
			wantStatus: fiber.StatusUnauthorized,
		},
		{
			name:       "no role is forbidden",
			signedIn:   true,
			wantStatus: fiber.StatusForbidden,
		},
		{
			name:       "staff role passes",
			signedIn:   true,
			roles:      []string{"staff"},
			wantStatus: fiber.StatusOK,
		},
		{
			name:       "role match is case insensitive",
			signedIn:   true,
			roles:      []string{"sTaFf"},
			wantStatus: fiber.StatusOK,
		},
		{
			name:       "higher level passes lower gate",
			signedIn:   true,
			roles:      []string{"direction"},
			wantStatus: fiber.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newGatedApp(t)

			var sessionID string
			if tt.signedIn {
				sessionID = signIn(t, tt.roles)
			}

			resp := get(t, app, "/api/test/", sessionID)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestResolveGarbageCookie(t *testing.T) {
	session.Init(newMemStorage())

	app := fiber.New()
	app.Use(PageGate)
	app.Get("/desktop", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	resp := get(t, app, "/desktop", "not-a-real-session")
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}
