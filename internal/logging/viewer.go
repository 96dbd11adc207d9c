package logging

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// LogEntry is one line of a workflow log.
type LogEntry struct {
	Time  time.Time
	Level string
	Msg   string
	// Attrs holds every field other than time, level and msg.
	Attrs map[string]any
	// Raw is the line as read.
	Raw string
	// IsValid is false for lines that are not JSON, such as panics
	// written to stderr by a crashing workflow.
	IsValid bool
}

// ViewerConfig selects and styles the entries a Viewer shows.
type ViewerConfig struct {
	// Level hides entries below it. Empty shows everything.
	Level string
	// Pattern, if set, must match the raw line.
	Pattern *regexp.Regexp
	NoColor bool
}

// Viewer reads, filters and prints workflow logs.
type Viewer struct {
	config ViewerConfig
	out    io.Writer
}

// NewViewer creates a viewer printing to out.
func NewViewer(cfg ViewerConfig, out io.Writer) *Viewer {
	return &Viewer{config: cfg, out: out}
}

// maxLineSize bounds a single log line. Longer lines end Tail with an error.
const maxLineSize = 1 << 20

// Tail returns the entries among the last n lines of path that pass the
// filters. Only n lines are held in memory at a time.
func (v *Viewer) Tail(path string, n int) ([]LogEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = file.Close() }()

	if n <= 0 {
		return nil, nil
	}

	ring := make([]string, n)
	count := 0
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	for scanner.Scan() {
		ring[count%n] = scanner.Text()
		count++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read log file: %w", err)
	}

	first := max(0, count-n)
	var entries []LogEntry
	for i := first; i < count; i++ {
		entry := v.parseLine(ring[i%n])
		if v.matchesFilter(entry) {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

// followPollInterval is used when fsnotify is unavailable.
const followPollInterval = 250 * time.Millisecond


// Follow watches a log file for new entries and sends them to the channel.
// It reopens the file when the RotatingWriter rotates it away.
// Blocks until context is cancelled.
func (v *Viewer) Follow(ctx context.Context, path string, entries chan<- LogEntry) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Seek to end of file
	if _, err := file.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("failed to seek to end: %w", err)
	}
	reader := bufio.NewReader(file)

	// Watch the directory: rotation renames the file out from under us.
	// Fall back to polling when no watcher can be created.
	var events <-chan fsnotify.Event
	var watchErrs <-chan error
	if fsw, err := fsnotify.NewWatcher(); err == nil {
		defer func() { _ = fsw.Close() }()
		if err := fsw.Add(filepath.Dir(path)); err == nil {
			events, watchErrs = fsw.Events, fsw.Errors
		}
	}
	ticker := time.NewTicker(followPollInterval)
	defer ticker.Stop()

	for {
		reopen := false
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
			reopen = event.Op&fsnotify.Create != 0
		case _, ok := <-watchErrs:
			if !ok {
				watchErrs = nil
			}
			continue
		case <-ticker.C:
			reopen = rotated(file, path)
		}

		if !v.drain(ctx, reader, entries) {
			return nil
		}

		if reopen {
			next, err := os.Open(path)
			if err != nil {
				continue // Not recreated yet
			}
			_ = file.Close()
			file = next
			reader = bufio.NewReader(file)
			if !v.drain(ctx, reader, entries) {
				return nil
			}
		}
	}
}

// drain sends every complete line available in reader.
// Returns false when the context was cancelled.
func (v *Viewer) drain(ctx context.Context, reader *bufio.Reader, entries chan<- LogEntry) bool {
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return true // No more data available
		}

		line = strings.TrimSuffix(line, "\n")
		if line == "" {
			continue
		}

		entry := v.parseLine(line)
		if v.matchesFilter(entry) {
			select {
			case entries <- entry:
			case <-ctx.Done():
				return false
			}
		}
	}
}

// rotated reports whether path no longer names the open file.
func rotated(file *os.File, path string) bool {
	openInfo, err := file.Stat()
	if err != nil {
		return true
	}
	pathInfo, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !os.SameFile(openInfo, pathInfo)
}

// FormatEntry renders an entry as "15:04:05.000 LEVEL msg key=value ...".
// Lines that are not JSON are returned unchanged.
func (v *Viewer) FormatEntry(entry LogEntry) string {
	if !entry.IsValid {
		return entry.Raw
	}

	var sb strings.Builder
	sb.WriteString(entry.Time.Format("15:04:05.000"))
	sb.WriteByte(' ')
	sb.WriteString(v.formatLevel(entry.Level))
	sb.WriteByte(' ')
	sb.WriteString(entry.Msg)

	keys := make([]string, 0, len(entry.Attrs))
	for k := range entry.Attrs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, " %s=%v", k, entry.Attrs[k])
	}
	return sb.String()
}

// Print writes entries to the viewer's output, one per line.
func (v *Viewer) Print(entries []LogEntry) {
	for _, entry := range entries {
		_, _ = fmt.Fprintln(v.out, v.FormatEntry(entry))
	}
}

// parseLine decodes a line written by the slog JSON handler.
func (v *Viewer) parseLine(line string) LogEntry {
	entry := LogEntry{Raw: line}

	var fields map[string]any
	if err := json.Unmarshal([]byte(line), &fields); err != nil {
		return entry
	}
	entry.IsValid = true

	if s, ok := fields[slog.TimeKey].(string); ok {
		entry.Time, _ = time.Parse(time.RFC3339Nano, s)
	}
	entry.Level, _ = fields[slog.LevelKey].(string)
	entry.Msg, _ = fields[slog.MessageKey].(string)

	delete(fields, slog.TimeKey)
	delete(fields, slog.LevelKey)
	delete(fields, slog.MessageKey)
	entry.Attrs = fields
	return entry
}

func (v *Viewer) matchesFilter(entry LogEntry) bool {
	if v.config.Level != "" && LevelFromString(entry.Level) < LevelFromString(v.config.Level) {
		return false
	}
	return v.config.Pattern == nil || v.config.Pattern.MatchString(entry.Raw)
}

// levelColors are the ANSI colors of each level.
var levelColors = map[string]string{
	"debug":   "90", // gray
	"info":    "32", // green
	"warn":    "33", // yellow
	"warning": "33",
	"error":   "31", // red
}

// formatLevel pads the level to five characters and colors it.
func (v *Viewer) formatLevel(level string) string {
	name := strings.ToUpper(level)
	if len(name) > 5 {
		name = name[:5]
	}
	name = fmt.Sprintf("%-5s", name)

	color, ok := levelColors[strings.ToLower(level)]
	if v.config.NoColor || !ok {
		return name
	}
	return "\033[" + color + "m" + name + "\033[0m"
}
