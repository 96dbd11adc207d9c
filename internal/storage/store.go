package storage

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	wferrors "github.com/Aman-CERP/wfkit/internal/errors"
)

// reservedFile is never overwritten by Store; the settings package owns it.
const reservedFile = "settings.json"

// Store keeps persistent data in the data directory. Each entry is written
// to "<name>.<serializer>" next to a ".<name>.alfred-workflow" file naming
// the serializer, so Load works whichever serializer wrote it.
type Store struct {
	dir        string
	registry   *Registry
	serializer string
}

// NewStore returns a store in dir using serializer by default.
func NewStore(dir string, registry *Registry, serializer string) (*Store, error) {
	if registry == nil {
		registry = NewRegistry()
	}
	if _, err := registry.Get(serializer); err != nil {
		return nil, err
	}
	return &Store{dir: dir, registry: registry, serializer: serializer}, nil
}

// Dir returns the data directory.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) metadataPath(name string) string {
	return filepath.Join(s.dir, "."+name+".alfred-workflow")
}

func (s *Store) dataPath(name, serializer string) string {
	return filepath.Join(s.dir, name+"."+serializer)
}

// Save writes v under name with the default serializer.
func (s *Store) Save(name string, v any) error {
	return s.SaveAs(name, v, "")
}

// SaveAs writes v under name with serializer, or the default when empty.
// A nil v deletes the entry.
func (s *Store) SaveAs(name string, v any, serializer string) error {
	if serializer == "" {
		serializer = s.serializer
	}
	ser, err := s.registry.Get(serializer)
	if err != nil {
		return err
	}

	dataPath := s.dataPath(name, serializer)
	if filepath.Base(dataPath) == reservedFile {
		return wferrors.ValidationError(
			fmt.Sprintf("cannot store %q as %s: it would overwrite the settings file", name, serializer), nil)
	}

	metaPath := s.metadataPath(name)
	if v == nil {
		for _, path := range []string{metaPath, dataPath} {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				return wferrors.IOError("cannot delete stored data", err)
			}
		}
		slog.Debug("deleted stored data", slog.String("name", name))
		return nil
	}

	data, err := ser.Marshal(v)
	if err != nil {
		return wferrors.New(wferrors.ErrCodeFormatMismatch, "cannot encode stored data", err).
			WithDetail("name", name)
	}
	if err := writeAtomic(metaPath, []byte(serializer)); err != nil {
		return err
	}
	if err := writeAtomic(dataPath, data); err != nil {
		return err
	}
	slog.Debug("saved data", slog.String("path", dataPath))
	return nil
}

// Load decodes the entry name into v and reports whether it existed.
func (s *Store) Load(name string, v any) (bool, error) {
	metaPath := s.metadataPath(name)
	meta, err := os.ReadFile(metaPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, wferrors.IOError("cannot read stored data metadata", err)
	}

	serializer := strings.TrimSpace(string(meta))
	ser, err := s.registry.Get(serializer)
	if err != nil {
		return false, err
	}

	dataPath := s.dataPath(name, serializer)
	data, err := os.ReadFile(dataPath)
	if err != nil {
		if os.IsNotExist(err) {
			// Orphaned metadata
			_ = os.Remove(metaPath)
			return false, nil
		}
		return false, wferrors.IOError("cannot read stored data", err)
	}

	if err := ser.Unmarshal(data, v); err != nil {
		return false, wferrors.New(wferrors.ErrCodeFileCorrupt, "cannot decode stored data", err).
			WithDetail("path", dataPath)
	}
	return true, nil
}

// Delete removes the entry name.
func (s *Store) Delete(name string) error {
	serializer := s.serializer
	if meta, err := os.ReadFile(s.metadataPath(name)); err == nil {
		serializer = strings.TrimSpace(string(meta))
	}
	if _, err := s.registry.Get(serializer); err != nil {
		// Unknown serializer, remove the files by name alone
		_ = os.Remove(s.dataPath(name, serializer))
		_ = os.Remove(s.metadataPath(name))
		return nil
	}
	return s.SaveAs(name, nil, serializer)
}
