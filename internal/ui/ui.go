// Package ui renders filter results and workflow status in a terminal.
//
// Output written to a pipe is always plain: Alfred and shell scripts read
// it. Styling is only used on an interactive terminal, and NO_COLOR turns
// colour off there too.
package ui

import (
	"io"
	"os"
	"strconv"

	"github.com/mattn/go-isatty"
)

// DefaultWidth is the table width when $COLUMNS is unset.
const DefaultWidth = 100

// Row is one ranked result as shown on screen.
type Row struct {
	Title    string  `json:"title"`
	Subtitle string  `json:"subtitle,omitempty"`
	Score    float64 `json:"score"`
	Rule     string  `json:"rule,omitempty"`
}

// Renderer displays ranked results. showScores adds score and rule columns.
type Renderer interface {
	Render(query string, rows []Row, showScores bool) error
}

// Config says where and how results are drawn.
type Config struct {
	Output     io.Writer
	ForcePlain bool
	NoColor    bool
	Width      int
}

type ConfigOption func(*Config)

func WithForcePlain(force bool) ConfigOption {
	return func(c *Config) { c.ForcePlain = force }
}

func WithNoColor(noColor bool) ConfigOption {
	return func(c *Config) { c.NoColor = noColor }
}

func WithWidth(width int) ConfigOption {
	return func(c *Config) { c.Width = width }
}

// NewConfig returns a Config for output, sized from $COLUMNS.
func NewConfig(output io.Writer, opts ...ConfigOption) Config {
	cfg := Config{Output: output, Width: widthFromEnv(os.LookupEnv)}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func widthFromEnv(lookup func(string) (string, bool)) int {
	if v, ok := lookup("COLUMNS"); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 20 {
			return n
		}
	}
	return DefaultWidth
}

// NewRenderer picks the table for an interactive terminal and plain text
// for pipes, CI and forced plain output.
func NewRenderer(cfg Config) Renderer {
	if cfg.ForcePlain || !IsTTY(cfg.Output) || DetectCI() {
		return NewPlainRenderer(cfg)
	}
	cfg.NoColor = cfg.NoColor || DetectNoColor()
	return NewTableRenderer(cfg)
}

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Colorless reports whether output to w must not be styled.
func Colorless(w io.Writer) bool {
	return !IsTTY(w) || DetectNoColor()
}

// DetectNoColor follows no-color.org: any value, even empty, disables colour.
func DetectNoColor() bool {
	_, set := os.LookupEnv("NO_COLOR")
	return set
}

var ciVars = []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "TRAVIS", "BUILDKITE"}

// DetectCI reports whether a CI system is running us.
func DetectCI() bool {
	return detectCI(os.LookupEnv)
}

func detectCI(lookup func(string) (string, bool)) bool {
	for _, v := range ciVars {
		if _, set := lookup(v); set {
			return true
		}
	}
	return false
}
