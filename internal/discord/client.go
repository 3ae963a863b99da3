// Package discord implements the Discord OAuth2 flow and the small slice of
// the Discord REST API the panel needs: the current user profile, the guild
// role catalog and the roles a member holds in the community guild.
package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const (
	defaultAPIBase = "https://discord.com/api/v10"
	defaultTimeout = 10 * time.Second

	maxBodySize = 1 << 20
)

// Endpoint is the Discord OAuth2 endpoint.
var Endpoint = oauth2.Endpoint{ //nolint:gochecknoglobals
	AuthURL:  "https://discord.com/oauth2/authorize",
	TokenURL: "https://discord.com/api/oauth2/token",
}

// Config holds the Discord application credentials and guild binding.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	GuildID      string
	BotToken     string
}

// User is the Discord user profile as returned by /users/@me.
type User struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	GlobalName string `json:"global_name"`
	Email      string `json:"email"`
	Avatar     string `json:"avatar"`
}

// DisplayName returns the user facing name, preferring the global name.
func (u *User) DisplayName() string {
	if u.GlobalName != "" {
		return u.GlobalName
	}

	return u.Username
}

// AvatarURL returns the CDN URL of the user's avatar, or empty if none is set.
func (u *User) AvatarURL() string {
	if u.Avatar == "" {
		return ""
	}

	return fmt.Sprintf("https://cdn.discordapp.com/avatars/%s/%s.png", u.ID, u.Avatar)
}

// GuildRole is a role defined in the community guild.
type GuildRole struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// guildMember is the subset of a guild member object the panel reads.
type guildMember struct {
	Roles []string `json:"roles"`
}

// Client talks to the Discord API.
type Client struct {
	cfg     Config
	oauth2  oauth2.Config
	http    *http.Client
	apiBase string
}

// New creates a Discord client from the given config.
func New(cfg Config) *Client {
	return &Client{
		cfg: cfg,
		oauth2: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     Endpoint,
			Scopes:       []string{"identify", "email", "guilds.members.read"},
		},
		http:    &http.Client{Timeout: defaultTimeout},
		apiBase: defaultAPIBase,
	}
}

// AuthURL returns the Discord authorization URL with the given state token.
func (c *Client) AuthURL(state string) string {
	return c.oauth2.AuthCodeURL(state)
}

// Exchange trades the authorization code for an OAuth2 token set.
func (c *Client) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := c.oauth2.Exchange(ctx, code)
	if err != nil {
		return nil, errors.Wrap(err, "failed to exchange authorization code")
	}

	return token, nil
}

// CurrentUser fetches the authenticated user's profile.
func (c *Client) CurrentUser(ctx context.Context, accessToken string) (*User, error) {
	var user User
	if err := c.get(ctx, "/users/@me", bearerAuth(accessToken), &user); err != nil {
		return nil, err
	}

	if user.ID == "" {
		return nil, ErrEmptyUserID
	}

	return &user, nil
}

// GuildRoles fetches the role catalog of the community guild. The bot token
// is preferred when configured, the user's own token otherwise.
func (c *Client) GuildRoles(ctx context.Context, accessToken string) ([]GuildRole, error) {
	var roles []GuildRole

	authorization := bearerAuth(accessToken)
	if c.cfg.BotToken != "" {
		authorization = botAuth(c.cfg.BotToken)
	}

	path := fmt.Sprintf("/guilds/%s/roles", c.cfg.GuildID)
	if err := c.get(ctx, path, authorization, &roles); err != nil {
		return nil, err
	}

	return roles, nil
}

// MemberRoles resolves the named guild roles the given user currently holds.
// It first asks with the user's own token, falling back to the bot token when
// the user token can not read the membership. A member that is not part of
// the guild is a normal outcome and yields an empty slice, not an error.
// Without a bot token there is no fallback credential, so an unreadable
// membership also degrades to an empty slice, with a warning.
func (c *Client) MemberRoles(ctx context.Context, accessToken, discordUserID string) ([]GuildRole, error) {
	member, err := c.memberRoleIDs(ctx, accessToken, discordUserID)
	if err != nil {
		return nil, err
	}

	if len(member) == 0 {
		return []GuildRole{}, nil
	}

	catalog, err := c.GuildRoles(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	held := make(map[string]struct{}, len(member))
	for _, id := range member {
		held[id] = struct{}{}
	}

	out := make([]GuildRole, 0, len(member))

	for _, role := range catalog {
		if _, ok := held[role.ID]; ok {
			out = append(out, role)
		}
	}

	return out, nil
}

// memberRoleIDs returns the raw role IDs of the guild member.
func (c *Client) memberRoleIDs(ctx context.Context, accessToken, discordUserID string) ([]string, error) {
	var member guildMember

	path := fmt.Sprintf("/users/@me/guilds/%s/member", c.cfg.GuildID)

	err := c.get(ctx, path, bearerAuth(accessToken), &member)
	if err == nil {
		return member.Roles, nil
	}

	// not a member of the guild, nothing to sync
	if isStatus(err, http.StatusForbidden) || isStatus(err, http.StatusNotFound) {
		return nil, nil
	}

	if c.cfg.BotToken == "" {
		log.Warn().Err(err).Str("guild_id", c.cfg.GuildID).
			Msg("discord bot token not configured, cannot fall back for member lookup")
		return nil, nil
	}

	// user token could not read the membership, retry with the bot
	path = fmt.Sprintf("/guilds/%s/members/%s", c.cfg.GuildID, discordUserID)

	err = c.get(ctx, path, botAuth(c.cfg.BotToken), &member)
	if err == nil {
		return member.Roles, nil
	}

	if isStatus(err, http.StatusNotFound) {
		return nil, nil
	}

	return nil, err
}

// get performs an authenticated GET request and decodes the JSON response.
func (c *Client) get(ctx context.Context, path, authorization string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBase+path, nil)
	if err != nil {
		return errors.Wrap(err, "failed to build request")
	}

	req.Header.Set("Authorization", authorization)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "discord api request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return &APIError{Status: resp.StatusCode, Path: path}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return errors.Wrap(err, "failed to read discord api response")
	}

	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrap(err, "failed to decode discord api response")
	}

	return nil
}

func bearerAuth(token string) string {
	return "Bearer " + token
}

func botAuth(token string) string {
	return "Bot " + token
}
