package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"scormtrack/internal/platform/config"
)

// New builds the process logger from config. Console output goes to stderr so
// that command output on stdout stays machine readable.
func New(cfg config.Log) zerolog.Logger {
	return NewWithWriter(cfg, os.Stderr)
}

func NewWithWriter(cfg config.Log, w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	out := w
	if cfg.Format != "json" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// Component returns a child logger tagged for one engine part.
func Component(base zerolog.Logger, name, activityID string) zerolog.Logger {
	ctx := base.With().Str("component", name)
	if activityID != "" {
		ctx = ctx.Str("cmid", activityID)
	}
	return ctx.Logger()
}
