// ABOUTME: Structured logging configuration using log/slog.
// ABOUTME: CLI commands log to stderr, the TUI logs to a file so the screen stays clean.

package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// LogFileName is the TUI log file inside the config directory
const LogFileName = "debug.log"

// New builds a logger writing to w.
// LOG_LEVEL: debug, info, warn, error (default: warn)
// LOG_FORMAT: text, json (default: text)
func New(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(os.Getenv("LOG_LEVEL")),
	}

	var handler slog.Handler
	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// Init configures the default slog logger to write to stderr.
func Init() *slog.Logger {
	l := New(os.Stderr)
	slog.SetDefault(l)
	return l
}

// InitFile configures the default logger to append to debug.log in configDir.
// If configDir is empty, logging is discarded. The returned func closes the file.
func InitFile(configDir string) (*slog.Logger, func(), error) {
	if configDir == "" {
		l := slog.New(slog.NewTextHandler(io.Discard, nil))
		slog.SetDefault(l)
		return l, func() {}, nil
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, nil, err
	}

	f, err := os.OpenFile(filepath.Join(configDir, LogFileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, nil, err
	}

	l := New(f)
	slog.SetDefault(l)
	return l, func() { f.Close() }, nil
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
