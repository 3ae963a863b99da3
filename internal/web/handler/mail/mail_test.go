package mail

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/exiledrp/exiled-panel/internal/config"
	"github.com/exiledrp/exiled-panel/internal/db/models"
	"github.com/exiledrp/exiled-panel/internal/web/session"
)

// memStorage is an in-memory session backend for handler tests.
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

type mailFixture struct {
	app   *fiber.App
	db    *gorm.DB
	alice models.User
	bob   models.User
	eve   models.User
}

func newMailFixture(t *testing.T) *mailFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Mail{}, &models.LogEntry{}))

	session.Init(newMemStorage())

	app := fiber.New()
	cfg := &config.Config{}
	require.NoError(t, Handler.Init(app, cfg, db))

	f := &mailFixture{app: app, db: db}

	for _, u := range []*models.User{&f.alice, &f.bob, &f.eve} {
		*u = models.User{Active: true}
	}
	f.alice.Username = "alice"
	f.bob.Username = "bob"
	f.eve.Username = "eve"

	require.NoError(t, db.Create(&f.alice).Error)
	require.NoError(t, db.Create(&f.bob).Error)
	require.NoError(t, db.Create(&f.eve).Error)

	return f
}

func (f *mailFixture) signIn(t *testing.T, user models.User) string {
	t.Helper()

	sessionID, err := session.GenerateSessionID()
	require.NoError(t, err)

	sessData := session.Data{User: user, Roles: nil}
	require.NoError(t, sessData.Write(sessionID, time.Hour))

	return sessionID
}

func (f *mailFixture) request(
	t *testing.T, method, path, sessionID string, body any,
) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: "session", Value: sessionID})
	}

	resp, err := f.app.Test(req)
	require.NoError(t, err)

	return resp
}

func TestInboxRequiresSession(t *testing.T) {
	f := newMailFixture(t)

	resp := f.request(t, http.MethodGet, "/api/mail/inbox", "", nil)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestSendAndRead(t *testing.T) {
	f := newMailFixture(t)

	aliceSession := f.signIn(t, f.alice)
	bobSession := f.signIn(t, f.bob)
	eveSession := f.signIn(t, f.eve)

	resp := f.request(t, http.MethodPost, "/api/mail/", aliceSession, fiber.Map{
		"receiver": "bob",
		"subject":  "patrol schedule",
		"content":  "meet at the garage at nine",
	})
	resp.Body.Close()
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var mail models.Mail
	require.NoError(t, f.db.First(&mail).Error)
	assert.Equal(t, f.alice.ID, mail.SenderID)
	assert.Equal(t, f.bob.ID, mail.ReceiverID)
	assert.False(t, mail.IsRead)

	// a third party may not read the mail
	resp = f.request(t, http.MethodGet, fmt.Sprintf("/api/mail/%d", mail.ID), eveSession, nil)
	resp.Body.Close()
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// the receiver may, and the read is recorded
	resp = f.request(t, http.MethodGet, fmt.Sprintf("/api/mail/%d", mail.ID), bobSession, nil)
	resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.NoError(t, f.db.First(&mail, mail.ID).Error)
	assert.True(t, mail.IsRead)

	// the sender may read without flipping the read flag meaning
	resp = f.request(t, http.MethodGet, fmt.Sprintf("/api/mail/%d", mail.ID), aliceSession, nil)
	resp.Body.Close()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestSendSanitizesContent(t *testing.T) {
	f := newMailFixture(t)

	aliceSession := f.signIn(t, f.alice)

	resp := f.request(t, http.MethodPost, "/api/mail/", aliceSession, fiber.Map{
		"receiver": "bob",
		"subject":  "hi",
		"content":  `hello <script>alert("x")</script>world`,
	})
	resp.Body.Close()
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var mail models.Mail
	require.NoError(t, f.db.First(&mail).Error)
	assert.NotContains(t, mail.Content, "<script")
	assert.Contains(t, mail.Content, "hello")
}

func TestSendUnknownReceiver(t *testing.T) {
	f := newMailFixture(t)

	aliceSession := f.signIn(t, f.alice)

	resp := f.request(t, http.MethodPost, "/api/mail/", aliceSession, fiber.Map{
		"receiver": "nobody",
		"subject":  "hi",
		"content":  "anyone there",
	})
	resp.Body.Close()
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestArchiveReceiverOnly(t *testing.T) {
	f := newMailFixture(t)

	mail := models.Mail{
		SenderID:   f.alice.ID,
		ReceiverID: f.bob.ID,
		Subject:    "s",
		Content:    "c",
	}
	require.NoError(t, f.db.Create(&mail).Error)

	aliceSession := f.signIn(t, f.alice)
	bobSession := f.signIn(t, f.bob)

	// the sender may not archive the receiver's inbox
	resp := f.request(t, http.MethodPost, fmt.Sprintf("/api/mail/%d/archive", mail.ID), aliceSession, nil)
	resp.Body.Close()
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = f.request(t, http.MethodPost, fmt.Sprintf("/api/mail/%d/archive", mail.ID), bobSession, nil)
	resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// archived mail leaves the inbox
	resp = f.request(t, http.MethodGet, "/api/mail/inbox", bobSession, nil)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var listing struct {
		Mails []models.Mail `json:"mails"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listing))
	assert.Empty(t, listing.Mails)
}

func TestDeleteBySender(t *testing.T) {
	f := newMailFixture(t)

	mail := models.Mail{
		SenderID:   f.alice.ID,
		ReceiverID: f.bob.ID,
		Subject:    "s",
		Content:    "c",
	}
	require.NoError(t, f.db.Create(&mail).Error)

	aliceSession := f.signIn(t, f.alice)

	resp := f.request(t, http.MethodPost, fmt.Sprintf("/api/mail/%d/archive", mail.ID), aliceSession, nil)
	resp.Body.Close()
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/mail/%d", mail.ID), nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: aliceSession})

	delResp, err := f.app.Test(req)
	require.NoError(t, err)
	delResp.Body.Close()
	require.Equal(t, fiber.StatusOK, delResp.StatusCode)

	require.NoError(t, f.db.First(&mail, mail.ID).Error)
	assert.True(t, mail.IsDeleted)
}
