package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/renameio"
	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/wfkit/pkg/filter"
)

// FileName is the workflow-level configuration file, kept next to info.plist.
const FileName = "wfkit.yaml"

// Config represents the complete wfkit configuration.
type Config struct {
	Version  int            `yaml:"version" json:"version"`
	Workflow WorkflowConfig `yaml:"workflow" json:"workflow"`
	Filter   FilterConfig   `yaml:"filter" json:"filter"`
	Update   UpdateConfig   `yaml:"update" json:"update"`
	Storage  StorageConfig  `yaml:"storage" json:"storage"`
	Logging  LoggingConfig  `yaml:"logging" json:"logging"`
}

// WorkflowConfig identifies the workflow. Blank fields are filled from
// info.plist and then from Alfred's environment.
type WorkflowConfig struct {
	BundleID string `yaml:"bundle_id" json:"bundle_id"`
	Name     string `yaml:"name" json:"name"`
	Version  string `yaml:"version" json:"version"`
	// HelpURL is opened by the "workflow:help" magic argument.
	HelpURL string `yaml:"help_url" json:"help_url"`
}

// FilterConfig holds the defaults applied to Script Filter queries.
type FilterConfig struct {
	// MatchOn is a rule list ("startswith,substring"), alias ("all") or
	// bit mask ("96"). See filter.ParseRules.
	MatchOn string `yaml:"match_on" json:"match_on"`

	// FoldDiacritics folds keys to ASCII for ASCII queries. Nil means true.
	// Users can override it at runtime with "workflow:foldingon/off".
	FoldDiacritics *bool `yaml:"fold_diacritics,omitempty" json:"fold_diacritics,omitempty"`

	// MinScore drops results scoring at or below it. 0 disables.
	MinScore float64 `yaml:"min_score" json:"min_score"`

	// MaxResults caps results. 0 means unlimited.
	MaxResults int `yaml:"max_results" json:"max_results"`

	// PatternCacheSize bounds the compiled pattern cache.
	PatternCacheSize int `yaml:"pattern_cache_size" json:"pattern_cache_size"`
}

// UpdateConfig configures self-update from GitHub releases.
type UpdateConfig struct {
	// GitHubSlug is "owner/repo". Empty disables update checks.
	GitHubSlug string `yaml:"github_slug" json:"github_slug"`
	// FrequencyDays is the number of days between automatic checks.
	FrequencyDays int `yaml:"frequency_days" json:"frequency_days"`
	// Prereleases includes pre-release versions.
	Prereleases bool `yaml:"prereleases" json:"prereleases"`
}

// StorageConfig selects the serializers for cached and stored data.
type StorageConfig struct {
	CacheSerializer string `yaml:"cache_serializer" json:"cache_serializer"`
	DataSerializer  string `yaml:"data_serializer" json:"data_serializer"`
}

// LoggingConfig configures the workflow log file.
type LoggingConfig struct {
	Level     string `yaml:"level" json:"level"`
	MaxSizeMB int    `yaml:"max_size_mb" json:"max_size_mb"`
	MaxFiles  int    `yaml:"max_files" json:"max_files"`
}

// NewConfig creates a new Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Filter: FilterConfig{
			MatchOn:          "all",
			PatternCacheSize: filter.DefaultPatternCacheSize,
		},
		Update: UpdateConfig{
			FrequencyDays: 1,
		},
		Storage: StorageConfig{
			CacheSerializer: "json",
			DataSerializer:  "json",
		},
		Logging: LoggingConfig{
			Level:     "info",
			MaxSizeMB: 1,
			MaxFiles:  1,
		},
	}
}

// FoldDiacriticsEnabled reports the configured folding default.
func (f FilterConfig) FoldDiacriticsEnabled() bool {
	return f.FoldDiacritics == nil || *f.FoldDiacritics
}

// Rules parses MatchOn.
func (f FilterConfig) Rules() (filter.Rule, error) {
	return filter.ParseRules(f.MatchOn)
}

// Options returns the filter options for this configuration.
// The fold default is passed separately because settings can override it.
func (f FilterConfig) Options(fold bool) ([]filter.Option, error) {
	rules, err := f.Rules()
	if err != nil {
		return nil, err
	}
	return []filter.Option{
		filter.WithRules(rules),
		filter.WithFoldDiacritics(fold),
		filter.WithMinScore(f.MinScore),
		filter.WithMaxResults(f.MaxResults),
	}, nil
}

// GetUserConfigPath returns the path to the user/global configuration file.
// It follows XDG Base Directory specification:
//   - $XDG_CONFIG_HOME/wfkit/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/wfkit/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "wfkit", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "wfkit", "config.yaml")
	}
	return filepath.Join(home, ".config", "wfkit", "config.yaml")
}

// GetUserConfigDir returns the directory containing the user configuration.
func GetUserConfigDir() string {
	return filepath.Dir(GetUserConfigPath())
}

// UserConfigExists returns true if the user configuration file exists.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

// LoadUserConfig loads the user configuration file.
// Returns nil config and nil error if the file doesn't exist.
func LoadUserConfig() (*Config, error) {
	configPath := GetUserConfigPath()
	if !fileExists(configPath) {
		return nil, nil
	}

	cfg := NewConfig()
	if err := cfg.loadYAML(configPath); err != nil {
		return nil, fmt.Errorf("failed to load user config from %s: %w", configPath, err)
	}
	return cfg, nil
}

// Load loads configuration for the workflow in dir.
// It applies configuration in order of increasing precedence:
//  1. Hardcoded defaults
//  2. User/global config (~/.config/wfkit/config.yaml)
//  3. Workflow config (wfkit.yaml next to info.plist)
//  4. info.plist, for workflow identity fields still blank
//  5. Environment variables (WFKIT_*)
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if userCfg, err := LoadUserConfig(); err != nil {
		return nil, err
	} else if userCfg != nil {
		cfg.mergeWith(userCfg)
	}

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	if dir != "" {
		info, err := ReadInfoPlist(dir)
		switch {
		case err == nil:
			cfg.applyInfoPlist(info)
		case !os.IsNotExist(err):
			return nil, err
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads wfkit.yaml, or wfkit.yml as a fallback, from dir.
func (c *Config) loadFromFile(dir string) error {
	if dir == "" {
		return nil
	}
	yamlPath := filepath.Join(dir, FileName)
	if fileExists(yamlPath) {
		return c.loadYAML(yamlPath)
	}
	ymlPath := filepath.Join(dir, strings.TrimSuffix(FileName, ".yaml")+".yml")
	if fileExists(ymlPath) {
		return c.loadYAML(ymlPath)
	}
	return nil
}

// loadYAML loads and merges configuration from a YAML file.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	// Parse into an empty struct so only keys present in the file are merged
	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	c.mergeWith(&parsed)
	return nil
}

// mergeWith merges non-zero values from other into c.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}

	// Workflow
	if other.Workflow.BundleID != "" {
		c.Workflow.BundleID = other.Workflow.BundleID
	}
	if other.Workflow.Name != "" {
		c.Workflow.Name = other.Workflow.Name
	}
	if other.Workflow.Version != "" {
		c.Workflow.Version = other.Workflow.Version
	}
	if other.Workflow.HelpURL != "" {
		c.Workflow.HelpURL = other.Workflow.HelpURL
	}

	// Filter
	if other.Filter.MatchOn != "" {
		c.Filter.MatchOn = other.Filter.MatchOn
	}
	if other.Filter.FoldDiacritics != nil {
		fold := *other.Filter.FoldDiacritics
		c.Filter.FoldDiacritics = &fold
	}
	if other.Filter.MinScore != 0 {
		c.Filter.MinScore = other.Filter.MinScore
	}
	if other.Filter.MaxResults != 0 {
		c.Filter.MaxResults = other.Filter.MaxResults
	}
	if other.Filter.PatternCacheSize != 0 {
		c.Filter.PatternCacheSize = other.Filter.PatternCacheSize
	}

	// Update. Prereleases can only be switched on by a file; use
	// "workflow:noprereleases" to switch it off for one user.
	if other.Update.GitHubSlug != "" {
		c.Update.GitHubSlug = other.Update.GitHubSlug
	}
	if other.Update.FrequencyDays != 0 {
		c.Update.FrequencyDays = other.Update.FrequencyDays
	}
	if other.Update.Prereleases {
		c.Update.Prereleases = true
	}

	// Storage
	if other.Storage.CacheSerializer != "" {
		c.Storage.CacheSerializer = other.Storage.CacheSerializer
	}
	if other.Storage.DataSerializer != "" {
		c.Storage.DataSerializer = other.Storage.DataSerializer
	}

	// Logging
	if other.Logging.Level != "" {
		c.Logging.Level = other.Logging.Level
	}
	if other.Logging.MaxSizeMB != 0 {
		c.Logging.MaxSizeMB = other.Logging.MaxSizeMB
	}
	if other.Logging.MaxFiles != 0 {
		c.Logging.MaxFiles = other.Logging.MaxFiles
	}
}

// applyInfoPlist fills blank workflow identity fields from info.plist.
func (c *Config) applyInfoPlist(info *InfoPlist) {
	if c.Workflow.BundleID == "" {
		c.Workflow.BundleID = info.BundleID
	}
	if c.Workflow.Name == "" {
		c.Workflow.Name = info.Name
	}
	if c.Workflow.Version == "" {
		c.Workflow.Version = info.Version
	}
	if c.Workflow.HelpURL == "" {
		c.Workflow.HelpURL = info.WebAddress
	}
}

// applyEnvOverrides applies WFKIT_* environment variable overrides.
// Workflow users set these as Workflow Environment Variables in Alfred.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("WFKIT_MATCH_ON"); v != "" {
		c.Filter.MatchOn = v
	}
	if v := os.Getenv("WFKIT_FOLD_DIACRITICS"); v != "" {
		fold := parseBool(v)
		c.Filter.FoldDiacritics = &fold
	}
	if v := os.Getenv("WFKIT_MIN_SCORE"); v != "" {
		if s, err := strconv.ParseFloat(v, 64); err == nil && s >= 0 {
			c.Filter.MinScore = s
		}
	}
	if v := os.Getenv("WFKIT_MAX_RESULTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.Filter.MaxResults = n
		}
	}
	if v := os.Getenv("WFKIT_GITHUB_SLUG"); v != "" {
		c.Update.GitHubSlug = v
	}
	if v := os.Getenv("WFKIT_UPDATE_FREQUENCY_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.Update.FrequencyDays = n
		}
	}
	if v := os.Getenv("WFKIT_PRERELEASES"); v != "" {
		c.Update.Prereleases = parseBool(v)
	}
	if v := os.Getenv("WFKIT_CACHE_SERIALIZER"); v != "" {
		c.Storage.CacheSerializer = v
	}
	if v := os.Getenv("WFKIT_DATA_SERIALIZER"); v != "" {
		c.Storage.DataSerializer = v
	}
	if v := os.Getenv("WFKIT_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

var githubSlugPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+/[A-Za-z0-9_.-]+$`)

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if _, err := c.Filter.Rules(); err != nil {
		return fmt.Errorf("filter.match_on: %w", err)
	}
	if c.Filter.MinScore < 0 {
		return fmt.Errorf("filter.min_score must be non-negative, got %g", c.Filter.MinScore)
	}
	if c.Filter.MaxResults < 0 {
		return fmt.Errorf("filter.max_results must be non-negative, got %d", c.Filter.MaxResults)
	}
	if c.Filter.PatternCacheSize < 0 {
		return fmt.Errorf("filter.pattern_cache_size must be non-negative, got %d", c.Filter.PatternCacheSize)
	}

	if c.Update.GitHubSlug != "" && !githubSlugPattern.MatchString(c.Update.GitHubSlug) {
		return fmt.Errorf("update.github_slug must look like 'owner/repo', got %q", c.Update.GitHubSlug)
	}
	if c.Update.FrequencyDays < 0 {
		return fmt.Errorf("update.frequency_days must be non-negative, got %d", c.Update.FrequencyDays)
	}

	if c.Storage.CacheSerializer == "" || c.Storage.DataSerializer == "" {
		return fmt.Errorf("storage serializers must not be empty")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("logging.level must be 'debug', 'info', 'warn', or 'error', got %s", c.Logging.Level)
	}
	if c.Logging.MaxSizeMB <= 0 {
		return fmt.Errorf("logging.max_size_mb must be positive, got %d", c.Logging.MaxSizeMB)
	}
	if c.Logging.MaxFiles < 0 {
		return fmt.Errorf("logging.max_files must be non-negative, got %d", c.Logging.MaxFiles)
	}

	return nil
}

// WriteYAML atomically writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
