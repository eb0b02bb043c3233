package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Options describes logger construction parameters.
type Options struct {
	Level  string // debug, info, warn or error
	Format string // text or json
}

// New constructs a slog logger writing to w.
func New(opts Options, w io.Writer) (*slog.Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	handlerOpts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelDebug,
	}

	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, handlerOpts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, handlerOpts)), nil
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}
}

// ParseLevel converts a level name to a slog.Level. An empty name means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("log level: unsupported value %q", s)
	}
}
