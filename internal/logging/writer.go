package logging

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/Aman-CERP/wfkit/internal/lockfile"
)

// RotatingWriter appends to a log file shared by every running copy of a
// workflow and rotates it once it outgrows a size limit.
//
// Alfred starts a Script Filter process per keystroke, so several writers
// usually share one file. Rotation is serialised across processes through
// "<path>.lock", and a writer whose file another process rotated away
// reopens the path before its next write.
type RotatingWriter struct {
	path    string
	limit   int64
	backups int
	lock    *lockfile.FileLock

	mu       sync.Mutex
	file     *os.File
	syncEach bool
}

// NewRotatingWriter opens path for appending, creating its directory.
// The file is rotated when a write would take it past maxSizeMB, keeping
// maxFiles backups named path.1 (newest) to path.<maxFiles>.
func NewRotatingWriter(path string, maxSizeMB, maxFiles int) (*RotatingWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	w := &RotatingWriter{
		path:     path,
		limit:    int64(maxSizeMB) << 20,
		backups:  maxFiles,
		lock:     lockfile.New(path),
		syncEach: true,
	}
	if err := w.open(); err != nil {
		return nil, err
	}
	return w, nil
}

// SetSyncEachWrite controls whether every write is flushed to disk, which
// "wfkit logs -f" relies on to show lines as they happen.
func (w *RotatingWriter) SetSyncEachWrite(enabled bool) {
	w.mu.Lock()
	w.syncEach = enabled
	w.mu.Unlock()
}

// Write implements io.Writer. A failed rotation is reported on stderr and
// the line still goes to the current file.
func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil || w.movedAway() {
		if err := w.reopen(); err != nil {
			return 0, err
		}
	}

	if size := w.size(); size > 0 && size+int64(len(p)) > w.limit {
		if err := w.rotate(); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "log rotation failed: %v\n", err)
		}
		if w.file == nil {
			return 0, fmt.Errorf("log file %s is not open", w.path)
		}
	}

	n, err := w.file.Write(p)
	if err == nil && w.syncEach {
		_ = w.file.Sync()
	}
	return n, err
}

// Sync flushes the file to disk.
func (w *RotatingWriter) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	return w.file.Sync()
}

// Close closes the file. Later writes reopen it.
func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

func (w *RotatingWriter) open() error {
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	w.file = f
	return nil
}

func (w *RotatingWriter) reopen() error {
	if w.file != nil {
		_ = w.file.Close()
		w.file = nil
	}
	return w.open()
}

// size is the current length of the open file, including lines appended
// by other processes.
func (w *RotatingWriter) size() int64 {
	info, err := w.file.Stat()
	if err != nil {
		return 0
	}
	return info.Size()
}

// movedAway reports whether path no longer names the open file.
func (w *RotatingWriter) movedAway() bool {
	open, err := w.file.Stat()
	if err != nil {
		return true
	}
	current, err := os.Stat(w.path)
	if err != nil {
		return true
	}
	return !os.SameFile(open, current)
}

// rotate shifts path to path.1, path.1 to path.2 and so on, dropping the
// oldest backup. With no backups the current log is discarded.
func (w *RotatingWriter) rotate() error {
	if err := w.lock.Lock(context.Background(), lockfile.DefaultTimeout); err != nil {
		return err
	}
	defer func() { _ = w.lock.Unlock() }()

	// Another process rotated while we waited for the lock
	if w.movedAway() {
		return w.reopen()
	}

	if err := w.file.Close(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	w.file = nil

	if w.backups <= 0 {
		if err := os.Remove(w.path); err != nil && !os.IsNotExist(err) {
			_ = w.open()
			return fmt.Errorf("failed to remove log file: %w", err)
		}
	} else {
		_ = os.Remove(w.backup(w.backups))
		for n := w.backups - 1; n >= 1; n-- {
			_ = os.Rename(w.backup(n), w.backup(n+1))
		}
		if err := os.Rename(w.path, w.backup(1)); err != nil && !os.IsNotExist(err) {
			_ = w.open()
			return fmt.Errorf("failed to rotate log file: %w", err)
		}
	}
	return w.open()
}

func (w *RotatingWriter) backup(n int) string {
	return w.path + "." + strconv.Itoa(n)
}
