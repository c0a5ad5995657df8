package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// setupLogging configures the global zerolog logger.  Output goes to stderr,
// as text or JSON, and when cfg.File is set every event is also appended to
// that file as a JSON line.  The returned closer closes the event file and is
// never nil.
func setupLogging(cfg LogConfig) (io.Closer, error) {
	// ISO 8601 format with timezone
	zerolog.TimeFieldFormat = time.RFC3339

	var console io.Writer = os.Stderr
	if !cfg.JSON {
		console = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: "2006-01-02T15:04:05.000Z07:00",
			NoColor:    !cfg.Colors,
		}
	}

	var closer io.Closer = nopCloser{}
	out := console
	if cfg.File != "" {
		// Open file in append mode, create if not exists
		f, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return closer, fmt.Errorf("open event log: %w", err)
		}
		out = zerolog.MultiLevelWriter(console, f)
		closer = f
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()

	zerolog.SetGlobalLevel(parseLevel(cfg.Level))
	return closer, nil
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
