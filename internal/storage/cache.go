package storage

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/renameio"

	wferrors "github.com/Aman-CERP/wfkit/internal/errors"
)

// SessionPrefix starts the name of every session-scoped cache file.
const SessionPrefix = "_wfsess-"

// Cache stores values in the cache directory under "<name>.<serializer>".
type Cache struct {
	dir        string
	serializer Serializer
	session    string
	now        func() time.Time
}

// NewCache returns a cache writing to dir with serializer.
func NewCache(dir string, serializer Serializer) *Cache {
	return &Cache{dir: dir, serializer: serializer, now: time.Now}
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

// WithSession returns a cache whose names are scoped to session id.
// Session files live until ClearSessions removes them.
func (c *Cache) WithSession(id string) *Cache {
	scoped := *c
	scoped.session = id
	return &scoped
}

// Path returns the file backing name.
func (c *Cache) Path(name string) string {
	if c.session != "" {
		name = SessionPrefix + c.session + "-" + name
	}
	return filepath.Join(c.dir, name+"."+c.serializer.Name())
}

// Save writes v under name. A nil v deletes the entry.
func (c *Cache) Save(name string, v any) error {
	path := c.Path(name)

	if v == nil {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return wferrors.IOError("cannot delete cache file", err)
		}
		slog.Debug("deleted cache file", slog.String("path", path))
		return nil
	}

	data, err := c.serializer.Marshal(v)
	if err != nil {
		return wferrors.New(wferrors.ErrCodeFormatMismatch, "cannot encode cache data", err).
			WithDetail("name", name)
	}
	if err := writeAtomic(path, data); err != nil {
		return err
	}
	slog.Debug("cached data", slog.String("path", path))
	return nil
}

// Load decodes name into v when it is younger than maxAge, or of any age
// when maxAge is 0. It reports whether v was filled.
func (c *Cache) Load(name string, v any, maxAge time.Duration) (bool, error) {
	if maxAge > 0 && !c.Fresh(name, maxAge) {
		return false, nil
	}

	path := c.Path(name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, wferrors.IOError("cannot read cache file", err)
	}

	if err := c.serializer.Unmarshal(data, v); err != nil {
		return false, wferrors.New(wferrors.ErrCodeFileCorrupt, "cannot decode cache file", err).
			WithDetail("path", path)
	}
	slog.Debug("loaded cached data", slog.String("path", path))
	return true, nil
}

// Age returns how long ago name was written, and false when it does not exist.
func (c *Cache) Age(name string) (time.Duration, bool) {
	info, err := os.Stat(c.Path(name))
	if err != nil {
		return 0, false
	}
	return c.now().Sub(info.ModTime()), true
}

// Fresh reports whether name exists and is younger than maxAge.
func (c *Cache) Fresh(name string, maxAge time.Duration) bool {
	age, ok := c.Age(name)
	return ok && age < maxAge
}

// Cached returns the cached value for name when fresh, otherwise calls
// fetch and caches its result. A maxAge of 0 accepts data of any age.
func Cached[T any](c *Cache, name string, maxAge time.Duration, fetch func() (T, error)) (T, error) {
	var v T
	ok, err := c.Load(name, &v, maxAge)
	if err == nil && ok {
		return v, nil
	}
	if err != nil {
		// A corrupt entry is replaced by fresh data
		slog.Warn("ignoring unreadable cache", slog.String("name", name), slog.String("error", err.Error()))
	}

	v, err = fetch()
	if err != nil {
		var zero T
		return zero, err
	}
	if err := c.Save(name, v); err != nil {
		return v, err
	}
	return v, nil
}

// ClearSessions deletes session-scoped files from the cache directory,
// except those of session keep when it is not empty.
func (c *Cache) ClearSessions(keep string) error {
	keepPrefix := ""
	if keep != "" {
		keepPrefix = SessionPrefix + keep + "-"
	}
	return ClearDir(c.dir, func(name string) bool {
		if !strings.HasPrefix(name, SessionPrefix) {
			return true
		}
		return keepPrefix != "" && strings.HasPrefix(name, keepPrefix)
	})
}

func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return wferrors.IOError("cannot create directory", err)
	}
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return wferrors.IOError("cannot write file", err).WithDetail("path", path)
	}
	return nil
}
