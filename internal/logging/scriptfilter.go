package logging

import (
	"log/slog"
)

// SetupScriptFilterMode installs cfg as the default logger for a workflow
// run. Alfred parses everything on stdout as feedback, so the logger only
// writes to the log file and stderr.
//
// When debug is set (Alfred's debugger is open or --debug was passed) the
// level is forced to debug.
func SetupScriptFilterMode(cfg Config, debug bool) (func(), error) {
	if debug {
		cfg.Level = "debug"
	}

	logger, cleanup, err := Setup(cfg)
	if err != nil {
		return nil, err
	}

	slog.SetDefault(logger)

	slog.Debug("logging initialized",
		slog.String("log_file", cfg.FilePath),
		slog.String("level", cfg.Level))

	return cleanup, nil
}
