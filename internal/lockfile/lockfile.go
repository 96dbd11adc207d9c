// Package lockfile provides cross-process locks guarding workflow files.
//
// Alfred may run several copies of a Script Filter at once (one per
// keystroke), so writes to shared files such as settings.json are
// serialised through a sibling "<file>.lock".
package lockfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	wferrors "github.com/Aman-CERP/wfkit/internal/errors"
)

// DefaultTimeout is how long With waits for a busy lock. Keystrokes
// arrive faster than that, so a longer wait only delays stale results.
const DefaultTimeout = 500 * time.Millisecond

const pollInterval = 10 * time.Millisecond

// FileLock is an advisory flock(2) lock on "<target>.lock".
// It is not safe for concurrent use; give each goroutine its own.
type FileLock struct {
	path   string
	flock  *flock.Flock
	locked bool
}

// New returns an unlocked lock guarding target.
func New(target string) *FileLock {
	path := target + ".lock"
	return &FileLock{path: path, flock: flock.New(path)}
}

// Lock waits up to timeout for the lock, creating the lock file and its
// directory as needed. A busy lock yields ErrCodeLockTimeout.
func (l *FileLock) Lock(ctx context.Context, timeout time.Duration) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return wferrors.IOError("cannot create lock directory", err).WithDetail("path", l.path)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ok, err := l.flock.TryLockContext(ctx, pollInterval)
	switch {
	case ok:
		l.locked = true
		return nil
	case err == nil || ctx.Err() != nil:
		return wferrors.New(wferrors.ErrCodeLockTimeout, fmt.Sprintf("timed out waiting for %s", l.path), err)
	default:
		return fmt.Errorf("lock %s: %w", l.path, err)
	}
}

// Unlock releases the lock. Unlocking an unlocked FileLock is a no-op.
func (l *FileLock) Unlock() error {
	if !l.locked {
		return nil
	}
	l.locked = false
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("unlock %s: %w", l.path, err)
	}
	return nil
}

// Path returns the lock file's path.
func (l *FileLock) Path() string { return l.path }

// Locked reports whether this FileLock holds the lock.
func (l *FileLock) Locked() bool { return l.locked }

// With runs fn while holding the lock for target, using DefaultTimeout.
func With(ctx context.Context, target string, fn func() error) error {
	l := New(target)
	if err := l.Lock(ctx, DefaultTimeout); err != nil {
		return err
	}
	defer func() { _ = l.Unlock() }()
	return fn()
}
