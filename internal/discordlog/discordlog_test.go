package discordlog

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSend(t *testing.T) {
	var received payload

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &received))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	l := New(srv.URL)
	l.Send(context.Background(), SeveritySuccess, "Call taken",
		Field{Name: "Type", Value: "POLICE", Inline: true},
	)

	require.Len(t, received.Embeds, 1)
	assert.Equal(t, "Call taken", received.Embeds[0].Title)
	assert.Equal(t, colorSuccess, received.Embeds[0].Color)
	require.Len(t, received.Embeds[0].Fields, 1)
	assert.Equal(t, "POLICE", received.Embeds[0].Fields[0].Value)
}

func TestSendDisabled(t *testing.T) {
	l := New("")
	assert.False(t, l.Enabled())

	// must not panic or block
	l.Send(context.Background(), SeverityInfo, "ignored")
}

func TestSendAbsorbsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	l := New(srv.URL)

	// failures must never surface
	l.Send(context.Background(), SeverityError, "still fine")
}

func TestSeverityColors(t *testing.T) {
	assert.Equal(t, colorInfo, SeverityInfo.color())
	assert.Equal(t, colorWarn, SeverityWarn.color())
	assert.Equal(t, colorError, SeverityError.color())
	assert.Equal(t, colorSuccess, SeveritySuccess.color())
	assert.Equal(t, colorCritical, SeverityCritical.color())
}
