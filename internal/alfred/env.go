// Package alfred reads the environment Alfred passes to workflow scripts
// and resolves the workflow's cache and data directories.
package alfred

import (
	"os"
	"strconv"
	"strings"
)

// Env holds Alfred's alfred_* environment variables, prefix removed.
// Numeric variables that fail to parse are left at zero.
type Env struct {
	Debug                int
	Preferences          string
	PreferencesLocalHash string
	Theme                string
	ThemeBackground      string
	ThemeSubtext         int
	Version              string
	VersionBuild         int
	WorkflowBundleID     string
	WorkflowCache        string
	WorkflowData         string
	WorkflowName         string
	WorkflowUID          string
	WorkflowVersion      string
}

// LoadEnv reads the Alfred environment through lookup.
// A nil lookup reads the process environment.
func LoadEnv(lookup func(string) string) Env {
	if lookup == nil {
		lookup = os.Getenv
	}
	get := func(key string) string {
		return strings.TrimSpace(lookup("alfred_" + key))
	}
	num := func(key string) int {
		n, _ := strconv.Atoi(get(key))
		return n
	}

	return Env{
		Debug:                num("debug"),
		Preferences:          get("preferences"),
		PreferencesLocalHash: get("preferences_localhash"),
		Theme:                get("theme"),
		ThemeBackground:      get("theme_background"),
		ThemeSubtext:         num("theme_subtext"),
		Version:              get("version"),
		VersionBuild:         num("version_build"),
		WorkflowBundleID:     get("workflow_bundleid"),
		WorkflowCache:        get("workflow_cache"),
		WorkflowData:         get("workflow_data"),
		WorkflowName:         get("workflow_name"),
		WorkflowUID:          get("workflow_uid"),
		WorkflowVersion:      get("workflow_version"),
	}
}

// Debugging reports whether Alfred's workflow debugger is open.
func (e Env) Debugging() bool {
	return e.Debug == 1
}

// InAlfred reports whether the process was started by Alfred.
func (e Env) InAlfred() bool {
	return e.WorkflowBundleID != "" || e.Version != ""
}

// Map returns the non-empty variables keyed by their unprefixed names.
func (e Env) Map() map[string]string {
	m := make(map[string]string)
	add := func(key, value string) {
		if value != "" {
			m[key] = value
		}
	}
	addNum := func(key string, value int) {
		if value != 0 {
			m[key] = strconv.Itoa(value)
		}
	}

	addNum("debug", e.Debug)
	add("preferences", e.Preferences)
	add("preferences_localhash", e.PreferencesLocalHash)
	add("theme", e.Theme)
	add("theme_background", e.ThemeBackground)
	addNum("theme_subtext", e.ThemeSubtext)
	add("version", e.Version)
	addNum("version_build", e.VersionBuild)
	add("workflow_bundleid", e.WorkflowBundleID)
	add("workflow_cache", e.WorkflowCache)
	add("workflow_data", e.WorkflowData)
	add("workflow_name", e.WorkflowName)
	add("workflow_uid", e.WorkflowUID)
	add("workflow_version", e.WorkflowVersion)
	return m
}
