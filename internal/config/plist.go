package config

import (
	"fmt"
	"os"
	"path/filepath"

	"howett.net/plist"

	wferrors "github.com/Aman-CERP/wfkit/internal/errors"
)

// InfoPlistName is the file Alfred stores workflow metadata in.
const InfoPlistName = "info.plist"

// InfoPlist holds the fields wfkit reads from a workflow's info.plist.
type InfoPlist struct {
	BundleID    string `plist:"bundleid"`
	Name        string `plist:"name"`
	Version     string `plist:"version"`
	WebAddress  string `plist:"webaddress"`
	CreatedBy   string `plist:"createdby"`
	Description string `plist:"description"`
	// Variables are the workflow's configured environment variables.
	Variables map[string]string `plist:"variables"`
}

// ReadInfoPlist parses info.plist in dir.
// A missing file is reported with an error satisfying os.IsNotExist.
func ReadInfoPlist(dir string) (*InfoPlist, error) {
	path := filepath.Join(dir, InfoPlistName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseInfoPlist(data)
}

// ParseInfoPlist decodes info.plist data in any plist format.
func ParseInfoPlist(data []byte) (*InfoPlist, error) {
	var info InfoPlist
	if _, err := plist.Unmarshal(data, &info); err != nil {
		return nil, wferrors.New(wferrors.ErrCodeInfoPlist, "failed to parse info.plist", err).
			WithSuggestion("Re-export the workflow from Alfred Preferences")
	}
	return &info, nil
}

// RequireBundleID returns an error when the workflow has no bundle id.
// Without one there is nowhere to keep cache and data files.
func (c *Config) RequireBundleID() error {
	if c.Workflow.BundleID != "" {
		return nil
	}
	return wferrors.New(wferrors.ErrCodeNoBundleID, "workflow has no bundle id", nil).
		WithSuggestion(fmt.Sprintf("Set a Bundle Id in Alfred Preferences, or workflow.bundle_id in %s", FileName))
}
