// Package logger builds the root zerolog instance for the service. Every
// component derives a child from it, tagging itself with a "service",
// "repo", "client", "handler", or "job" field so lines can be filtered per
// concern.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config controls the root logger.
type Config struct {
	Level  string // debug | info | warn | error
	Pretty bool   // human-readable console output for development
}

// New builds the root logger and sets the global level. An unknown level
// string falls back to info rather than silencing the service.
func New(cfg Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	var out io.Writer = os.Stdout
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
	}

	return zerolog.New(out).With().Timestamp().Caller().Logger()
}

// SetGlobalLogger routes zerolog's package-level log.Logger through the
// configured root, so stray log.Info() calls land in the same stream.
func SetGlobalLogger(l zerolog.Logger) {
	log.Logger = l
}
