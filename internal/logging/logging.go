package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"

	"telehealth/internal/config"
)

// New builds the process logger from config and installs it as the slog default,
// so the standard log package and gin's writer go through it too.
func New(cfg config.LogConfig) *slog.Logger {
	logger := slog.New(newHandler(os.Stderr, cfg))
	slog.SetDefault(logger)
	return logger
}

func newHandler(w io.Writer, cfg config.LogConfig) slog.Handler {
	level := ParseLevel(cfg.Level)
	if strings.EqualFold(cfg.Format, "json") {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	}
	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	})
}

// ParseLevel maps a config string to a slog level. Unknown values mean info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
