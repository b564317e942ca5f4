package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New creates the engine logger.
// It writes to Stderr so normalized documents and JSON-RPC own Stdout.
func New(level slog.Level) *slog.Logger {
	return NewWriter(os.Stderr, level)
}

// NewWriter creates a text logger on w. The "error" key is renamed to "err".
func NewWriter(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == "error" {
				a.Key = "err"
			}
			return a
		},
	}))
}

// ParseLevel maps a config value ("debug", "WARN", "error+2") to a level.
// Empty or unknown values yield info and false.
func ParseLevel(s string) (slog.Level, bool) {
	var level slog.Level
	if strings.TrimSpace(s) == "" {
		return slog.LevelInfo, false
	}
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, false
	}
	return level, true
}

// NewNop returns a no-op logger.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
