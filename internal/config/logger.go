package config

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger builds the root logger from LoggerConfig. The level is set on
// the logger itself rather than globally, so tests can run quiet loggers
// side by side. Unknown levels fall back to info.
func NewLogger(cfg LoggerConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	return zerolog.New(logWriter(cfg.Format)).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// logWriter selects the output encoding. Console output is for local
// development; everything else emits JSON lines on stdout.
func logWriter(format string) io.Writer {
	if format == "console" {
		return zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return os.Stdout
}
