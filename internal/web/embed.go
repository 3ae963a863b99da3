package web

import (
	"embed"
	"io/fs"

	"github.com/rs/zerolog/log"
)

var (
	//go:embed static/*
	staticFS embed.FS

	//go:embed templates/*
	templatesFS embed.FS
)

// templateRoot exposes the embedded template tree with the templates/ prefix
// stripped, which is the root the html engine expects.
func templateRoot() fs.FS {
	sub, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		log.Fatal().Err(err).Msg("embedded template tree is missing")
	}

	return sub
}
