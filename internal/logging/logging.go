package logging

import (
	"cmp"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config describes where workflow logs go.
type Config struct {
	// Level is debug, info, warn or error. Anything else means info.
	Level string

	// FilePath is the JSON log file. Empty disables file logging.
	FilePath  string
	MaxSizeMB int
	MaxFiles  int

	// WriteToStderr copies every entry to stderr, which Alfred's debugger
	// shows. Stderr replaces os.Stderr when set.
	WriteToStderr bool
	Stderr        io.Writer
}

// DefaultConfig keeps one 1 MB backup of the log at path.
func DefaultConfig(path string) Config {
	return Config{
		Level:         "info",
		FilePath:      path,
		MaxSizeMB:     1,
		MaxFiles:      1,
		WriteToStderr: true,
	}
}

// Setup builds a JSON logger for cfg. The returned cleanup flushes and
// closes the log file.
func Setup(cfg Config) (*slog.Logger, func(), error) {
	sinks := make([]io.Writer, 0, 2)
	cleanup := func() {}

	if cfg.FilePath != "" {
		file, err := NewRotatingWriter(cfg.FilePath, cfg.MaxSizeMB, cfg.MaxFiles)
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, file)
		cleanup = func() {
			_ = file.Sync()
			_ = file.Close()
		}
	}
	if cfg.WriteToStderr {
		sinks = append(sinks, cmp.Or[io.Writer](cfg.Stderr, os.Stderr))
	}

	var out io.Writer = io.Discard
	if len(sinks) > 0 {
		out = io.MultiWriter(sinks...)
	}

	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{Level: LevelFromString(cfg.Level)})
	return slog.New(handler), cleanup, nil
}

// LevelFromString parses a level name, case-insensitively. "warning" is
// accepted for warn, and unknown names give info.
func LevelFromString(name string) slog.Level {
	if strings.EqualFold(name, "warning") {
		return slog.LevelWarn
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo
	}
	return level
}
