// Package discordlog posts domain events as embeds to a Discord webhook.
// Delivery is best effort: failures are logged and never surface to callers.
package discordlog

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	defaultTimeout = 5 * time.Second

	// embed colors per severity
	colorInfo     = 0x3498db
	colorWarn     = 0xf39c12
	colorError    = 0xe74c3c
	colorSuccess  = 0x2ecc71
	colorCritical = 0x992d22
)

// Severity is the visual severity of a webhook embed.
type Severity int

// Severities in increasing order of alarm.
const (
	SeverityInfo Severity = iota
	SeverityWarn
	SeverityError
	SeveritySuccess
	SeverityCritical
)

func (s Severity) color() int {
	switch s {
	case SeverityWarn:
		return colorWarn
	case SeverityError:
		return colorError
	case SeveritySuccess:
		return colorSuccess
	case SeverityCritical:
		return colorCritical
	default:
		return colorInfo
	}
}

// Field is a titled value inside an embed.
type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type embed struct {
	Title     string `json:"title"`
	Color     int    `json:"color"`
	Fields    []Field `json:"fields,omitempty"`
	Footer    footer  `json:"footer"`
	Timestamp string  `json:"timestamp"`
}

type footer struct {
	Text string `json:"text"`
}

type payload struct {
	Embeds []embed `json:"embeds"`
}

// Logger posts embeds to a single webhook URL.
type Logger struct {
	webhookURL string
	http       *http.Client
}

// New creates a webhook logger. An empty URL disables delivery.
func New(webhookURL string) *Logger {
	return &Logger{
		webhookURL: webhookURL,
		http:       &http.Client{Timeout: defaultTimeout},
	}
}

// Enabled reports whether a webhook URL is configured.
func (l *Logger) Enabled() bool {
	return l != nil && l.webhookURL != ""
}

// Send posts one embed. Failures are absorbed with a zerolog warning.
func (l *Logger) Send(ctx context.Context, severity Severity, title string, fields ...Field) {
	if !l.Enabled() {
		return
	}

	body, err := json.Marshal(payload{
		Embeds: []embed{{
			Title:     title,
			Color:     severity.color(),
			Fields:    fields,
			Footer:    footer{Text: "ExiledRP Panel"},
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}},
	})
	if err != nil {
		log.Warn().Err(err).Msg("failed to marshal webhook embed")
		return
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.webhookURL, bytes.NewReader(body))
	if err != nil {
		log.Warn().Err(err).Msg("failed to build webhook request")
		return
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := l.http.Do(req)
	if err != nil {
		log.Warn().Err(err).Msg("failed to post webhook embed")
		return
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		log.Warn().Int("status", resp.StatusCode).Str("title", title).
			Msg("discord webhook rejected the embed")
	}
}
