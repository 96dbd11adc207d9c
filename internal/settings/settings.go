// Package settings persists a workflow's user settings as a JSON object.
//
// The file is written on every change, atomically, under a cross-process
// lock, so concurrent Script Filter runs never see a torn file.
package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"sync"

	"github.com/google/renameio"

	wferrors "github.com/Aman-CERP/wfkit/internal/errors"
	"github.com/Aman-CERP/wfkit/internal/lockfile"
)

// FileName is the settings file inside the workflow's data directory.
const FileName = "settings.json"

// Reserved keys used by the workflow runtime.
const (
	KeyDiacriticFolding = "__workflow_diacritic_folding"
	KeyAutoUpdate       = "__workflow_autoupdate"
	KeyPrereleases      = "__workflow_prereleases"
	KeyLastVersion      = "__workflow_last_version"
)

// Settings is a string-keyed map that saves itself when changed.
// Values are anything encoding/json can represent; after a reload numbers
// come back as float64.
type Settings struct {
	mu     sync.RWMutex
	path   string
	values map[string]any
}

// Open loads the settings file at path. When the file does not exist the
// settings are initialised from defaults, which are saved immediately if
// there are any.
func Open(path string, defaults map[string]any) (*Settings, error) {
	s := &Settings{path: path, values: make(map[string]any)}

	if _, err := os.Stat(path); err == nil {
		if err := s.load(); err != nil {
			return nil, err
		}
		return s, nil
	} else if !os.IsNotExist(err) {
		return nil, wferrors.IOError("cannot stat settings file", err)
	}

	if len(defaults) == 0 {
		return s, nil
	}
	for k, v := range defaults {
		s.values[k] = v
	}
	if err := s.save(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the settings file path.
func (s *Settings) Path() string {
	return s.path
}

// Get returns the value stored under key.
func (s *Settings) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// GetString returns key as a string, or def when absent or not a string.
func (s *Settings) GetString(key, def string) string {
	if v, ok := s.Get(key); ok {
		if str, ok := v.(string); ok {
			return str
		}
	}
	return def
}

// GetBool returns key as a bool, or def when absent or not a bool.
func (s *Settings) GetBool(key string, def bool) bool {
	if v, ok := s.Get(key); ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Keys returns the stored keys, sorted.
func (s *Settings) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// All returns a copy of every stored value.
func (s *Settings) All() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Set stores value under key and saves. Setting a key to the value it
// already holds does not touch the file.
func (s *Settings) Set(key string, value any) error {
	return s.Update(map[string]any{key: value})
}

// Update stores every pair in values and saves once.
func (s *Settings) Update(values map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	for k, v := range values {
		if old, ok := s.values[k]; ok && reflect.DeepEqual(old, v) {
			continue
		}
		s.values[k] = v
		changed = true
	}
	if !changed {
		return nil
	}
	return s.save()
}

// SetDefault stores value under key unless the key already exists, and
// returns the value now held.
func (s *Settings) SetDefault(key string, value any) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.values[key]; ok {
		return v, nil
	}
	s.values[key] = value
	return value, s.save()
}

// Delete removes key and saves. Deleting a missing key is a no-op.
func (s *Settings) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.values[key]; !ok {
		return nil
	}
	delete(s.values, key)
	return s.save()
}

// Reload replaces the in-memory values with the file's contents.
func (s *Settings) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		s.values = make(map[string]any)
		return nil
	}
	return s.load()
}

// load reads the file. Callers hold mu or own s exclusively.
func (s *Settings) load() error {
	var data []byte
	err := lockfile.With(context.Background(), s.path, func() error {
		var err error
		data, err = os.ReadFile(s.path)
		return err
	})
	if err != nil {
		if wferrors.GetCode(err) == wferrors.ErrCodeLockTimeout {
			return err
		}
		return wferrors.IOError("cannot read settings file", err)
	}

	values := make(map[string]any)
	if err := json.Unmarshal(data, &values); err != nil {
		return wferrors.New(wferrors.ErrCodeSettingsCorrupt,
			fmt.Sprintf("settings file %s is not a JSON object", s.path), err).
			WithSuggestion("Run 'workflow:delsettings' in Alfred to reset settings")
	}
	s.values = values
	return nil
}

// save writes the file. Callers hold mu or own s exclusively.
// encoding/json sorts map keys.
func (s *Settings) save() error {
	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return wferrors.InternalError("cannot encode settings", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return wferrors.IOError("cannot create settings directory", err)
	}
	return lockfile.With(context.Background(), s.path, func() error {
		if err := renameio.WriteFile(s.path, data, 0o644); err != nil {
			return wferrors.IOError("cannot write settings file", err)
		}
		return nil
	})
}
