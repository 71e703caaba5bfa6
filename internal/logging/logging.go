// internal/logging/logging.go
package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/log"
)

// ErrInvalidLevel indicates an unknown log level name
var ErrInvalidLevel = errors.New("invalid log level")

// Levels lists the accepted level names, most verbose first.
var Levels = []string{"debug", "info", "warn", "error"}

// ParseLevel maps a level name onto the charm log level.
func ParseLevel(name string) (log.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return log.DebugLevel, nil
	case "", "info":
		return log.InfoLevel, nil
	case "warn", "warning":
		return log.WarnLevel, nil
	case "error":
		return log.ErrorLevel, nil
	default:
		return log.InfoLevel, fmt.Errorf("%w: %q (want one of %s)", ErrInvalidLevel, name, strings.Join(Levels, ", "))
	}
}

// Options controls the handler built by New.
type Options struct {
	// Level is one of Levels
	Level string
	// Prefix is printed before every message, usually the command name
	Prefix string
	// Timestamps adds the wall clock time to each line
	Timestamps bool
}

// New returns a slog.Logger that writes through a charm log handler.
func New(w io.Writer, opts Options) (*slog.Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	handler := log.NewWithOptions(w, log.Options{
		Level:           level,
		Prefix:          opts.Prefix,
		ReportTimestamp: opts.Timestamps,
		TimeFormat:      "15:04:05.000",
	})
	return slog.New(handler), nil
}

// Discard returns a logger that drops everything, for tests and quiet paths.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
