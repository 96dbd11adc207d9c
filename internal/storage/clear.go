package storage

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	wferrors "github.com/Aman-CERP/wfkit/internal/errors"
)

// ClearDir deletes the entries of dir for which keep returns false.
// A nil keep deletes everything. A missing dir is not an error.
func ClearDir(dir string, keep func(name string) bool) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return wferrors.IOError("cannot list directory", err)
	}

	for _, entry := range entries {
		if keep != nil && keep(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			return wferrors.IOError("cannot delete "+path, err)
		}
		slog.Debug("deleted", slog.String("path", path))
	}
	return nil
}

// ClearDirs empties every dir concurrently.
func ClearDirs(ctx context.Context, dirs ...string) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, dir := range dirs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return ClearDir(dir, nil)
		})
	}
	return g.Wait()
}
