package logging

import (
	"fmt"
	"os"
	"path/filepath"
)

// LogPath returns the workflow log file path, <cacheDir>/<bundleID>.log.
func LogPath(cacheDir, bundleID string) string {
	return filepath.Join(cacheDir, bundleID+".log")
}

// FindLogFile returns the log file to view.
// An explicit path wins over the workflow default; either must exist.
func FindLogFile(explicit, fallback string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit, nil
		}
		return "", fmt.Errorf("log file not found: %s", explicit)
	}

	if fallback != "" {
		if _, err := os.Stat(fallback); err == nil {
			return fallback, nil
		}
	}

	return "", fmt.Errorf("no log file found. Run the workflow at least once.\nExpected at: %s", fallback)
}
