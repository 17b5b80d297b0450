package log

import (
	"log/slog"
	"os"
)

// NewHandler is the text handler both binaries log through.
func NewHandler(opts *slog.HandlerOptions) slog.Handler {
	return slog.NewTextHandler(os.Stderr, opts)
}

// Setup installs the default logger at debug or info level.
func Setup(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(NewHandler(&slog.HandlerOptions{Level: level})))
}
