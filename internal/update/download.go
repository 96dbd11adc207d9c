package update

import (
	"encoding/json"
	"log/slog"
	"path"
	"regexp"
	"slices"
	"time"

	wferrors "github.com/Aman-CERP/wfkit/internal/errors"
)

// workflowFile matches .alfredworkflow and .alfredNworkflow file names.
var workflowFile = regexp.MustCompile(`\.alfred(\d+)?workflow$`)

// IsWorkflowFile reports whether filename is an installable workflow.
func IsWorkflowFile(filename string) bool {
	return workflowFile.MatchString(filename)
}

// Download is a workflow file attached to a GitHub release.
type Download struct {
	URL        string  `json:"url"`
	Filename   string  `json:"filename"`
	Version    Version `json:"version"`
	Prerelease bool    `json:"prerelease"`
}

// AlfredVersion returns the minimum Alfred version the file targets,
// taken from its extension. Plain .alfredworkflow files report 0.0.0.
func (d Download) AlfredVersion() Version {
	m := workflowFile.FindStringSubmatch(d.Filename)
	if m == nil || m[1] == "" {
		return Version{}
	}
	v, err := ParseVersion(m[1])
	if err != nil {
		return Version{}
	}
	return v
}

// compareDownloads orders by workflow version, then by Alfred version.
func compareDownloads(a, b Download) int {
	if c := a.Version.Compare(b.Version); c != 0 {
		return c
	}
	return a.AlfredVersion().Compare(b.AlfredVersion())
}

// sortNewestFirst sorts dls by descending version.
func sortNewestFirst(dls []Download) {
	slices.SortStableFunc(dls, func(a, b Download) int {
		return compareDownloads(b, a)
	})
}

type githubRelease struct {
	TagName    string `json:"tag_name"`
	Prerelease bool   `json:"prerelease"`
	Assets     []struct {
		BrowserDownloadURL string `json:"browser_download_url"`
	} `json:"assets"`
}

// DownloadsFromReleases extracts workflow files from the JSON returned by
// GitHub's releases endpoint, newest first. Releases whose tag is not a
// version are skipped. So are releases with more than one file of the same
// workflow extension, since the right one cannot be picked.
func DownloadsFromReleases(data []byte) ([]Download, error) {
	var releases []githubRelease
	if err := json.Unmarshal(data, &releases); err != nil {
		return nil, wferrors.New(wferrors.ErrCodeDownloadFailed, "cannot parse GitHub releases", err)
	}

	var downloads []Download
	for _, release := range releases {
		version, err := ParseVersion(release.TagName)
		if err != nil {
			slog.Debug("ignored release: bad version",
				slog.String("tag", release.TagName),
				slog.String("error", err.Error()))
			continue
		}

		var dls []Download
		seen := make(map[string]int)
		for _, asset := range release.Assets {
			filename := path.Base(asset.BrowserDownloadURL)
			m := workflowFile.FindString(filename)
			if m == "" {
				slog.Debug("unwanted file", slog.String("filename", filename))
				continue
			}
			seen[m]++
			dls = append(dls, Download{
				URL:        asset.BrowserDownloadURL,
				Filename:   filename,
				Version:    version,
				Prerelease: release.Prerelease,
			})
		}

		ambiguous := false
		for ext, n := range seen {
			if n > 1 {
				slog.Debug("ignored release: multiple assets with the same extension",
					slog.String("tag", release.TagName),
					slog.String("extension", ext))
				ambiguous = true
				break
			}
		}
		if !ambiguous {
			downloads = append(downloads, dls...)
		}
	}

	sortNewestFirst(downloads)
	return downloads, nil
}

// Latest returns the newest download compatible with alfredVersion.
// An empty alfredVersion accepts every file. Pre-releases are skipped
// unless prereleases is set.
func Latest(dls []Download, alfredVersion string, prereleases bool) (Download, bool) {
	var alfred *Version
	if alfredVersion != "" {
		v, err := ParseVersion(alfredVersion)
		if err != nil {
			slog.Warn("ignoring unparseable Alfred version", slog.String("version", alfredVersion))
		} else {
			alfred = &v
		}
	}

	sorted := slices.Clone(dls)
	sortNewestFirst(sorted)
	for _, dl := range sorted {
		if dl.Prerelease && !prereleases {
			slog.Debug("ignored prerelease", slog.String("version", dl.Version.String()))
			continue
		}
		if alfred != nil && alfred.LessThan(dl.AlfredVersion()) {
			slog.Debug("ignored incompatible download",
				slog.String("filename", dl.Filename),
				slog.String("requires", dl.AlfredVersion().String()),
				slog.String("alfred", alfred.String()))
			continue
		}
		slog.Debug("latest version", slog.String("version", dl.Version.String()), slog.String("filename", dl.Filename))
		return dl, true
	}
	return Download{}, false
}

// Status is the outcome of the last update check.
type Status struct {
	Available bool      `json:"available"`
	Version   string    `json:"version,omitempty"`
	Download  *Download `json:"download,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}
