// Package client serves the static quiz answering page.
package client

import (
	"context"
	"embed"
	"io/fs"
	"net/http"
	"os"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"

	"github.com/starquake/quizgen/internal/config"
	"github.com/starquake/quizgen/internal/logging"
	"github.com/starquake/quizgen/internal/must"
)

//go:embed static/*
var staticFS embed.FS

// Files returns the client files: cfg.ClientDir when set, the embedded files otherwise.
func Files(cfg *config.Config) fs.FS {
	if cfg.ClientDir != "" {
		return os.DirFS(cfg.ClientDir)
	}

	return must.Any(fs.Sub(staticFS, "static"))
}

func newMinifier() *minify.M {
	m := minify.New()
	m.AddFunc("text/html", html.Minify)
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("application/javascript", js.Minify)
	m.AddFunc("text/javascript", js.Minify)

	return m
}

// Handler returns an [http.Handler] that serves the client files under /client.
// Files are minified in production.
func Handler(cfg *config.Config, logger *logging.Logger) http.Handler {
	fileServer := http.FileServer(http.FS(Files(cfg)))

	source := "embedded"
	if cfg.ClientDir != "" {
		source = cfg.ClientDir
	}
	logger.Debug(
		context.Background(), "serving client files",
		logging.String("source", source),
		logging.Bool("minify", cfg.IsProduction()),
	)

	if cfg.IsProduction() {
		return http.StripPrefix("/client", newMinifier().Middleware(fileServer))
	}

	return http.StripPrefix("/client", fileServer)
}
