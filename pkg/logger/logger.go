package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New creates the application logger. Format "pretty" writes human-readable
// console output for development; anything else writes JSON.
func New(level, format string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	var logLevel zerolog.Level
	switch level {
	case "debug":
		logLevel = zerolog.DebugLevel
	case "warn":
		logLevel = zerolog.WarnLevel
	case "error":
		logLevel = zerolog.ErrorLevel
	default:
		logLevel = zerolog.InfoLevel
	}

	out := zerolog.New(os.Stdout)
	if format == "pretty" {
		out = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	return out.
		Level(logLevel).
		With().
		Timestamp().
		Str("service", "commentflow-api").
		Logger()
}
