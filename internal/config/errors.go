package config

import (
	"errors"
)

var (
	// ErrEmptyURL error if config webserver.URL is empty.
	ErrEmptyURL = errors.New("toml config webserver.url can not be empty")

	// ErrWebServerPortCanNotBeZero error if config webserver listening port is 0.
	ErrWebServerPortCanNotBeZero = errors.New("toml config webserver.port listening port can not be 0")

	// ErrDiscordClientNotConfigured error if Discord sign-in is enabled without client credentials.
	ErrDiscordClientNotConfigured = errors.New("toml config discord.clientid/clientsecret required when discord.enabled")

	// ErrDiscordGuildNotConfigured error if Discord sign-in is enabled without a reference guild.
	ErrDiscordGuildNotConfigured = errors.New("toml config discord.guildid required when discord.enabled")
)
