package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/Aman-CERP/wfkit/internal/settings"
	"github.com/Aman-CERP/wfkit/internal/storage"
	"github.com/Aman-CERP/wfkit/pkg/feedback"
)

// MagicFunc handles a magic argument and returns the message shown to
// the user. An empty message means the handler wrote its own feedback.
type MagicFunc func(ctx context.Context, w *Workflow) (string, error)

// RegisterMagic adds or replaces the magic argument prefix+name.
func (w *Workflow) RegisterMagic(name string, fn MagicFunc) {
	if w.magic == nil {
		w.magic = make(map[string]MagicFunc)
	}
	w.magic[name] = fn
}

// MagicNames returns the registered magic argument names, sorted.
func (w *Workflow) MagicNames() []string {
	names := make([]string, 0, len(w.magic))
	for name := range w.magic {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// magicArg returns the magic argument among args, if any.
func (w *Workflow) magicArg(args []string) (string, MagicFunc, bool) {
	if w.magicPrefix == "" {
		return "", nil, false
	}
	for _, arg := range args {
		name, ok := strings.CutPrefix(strings.TrimSpace(arg), w.magicPrefix)
		if !ok {
			continue
		}
		if fn, ok := w.magic[name]; ok {
			return name, fn, true
		}
	}
	return "", nil, false
}

// HandleMagic runs the magic argument found in the workflow's arguments.
// It reports whether one was found. The handler's message is shown in
// Alfred, or only logged when stdout is a terminal.
func (w *Workflow) HandleMagic(ctx context.Context) (bool, error) {
	name, fn, ok := w.magicArg(w.args)
	if !ok {
		return false, nil
	}

	slog.Debug("running magic argument", slog.String("name", name))
	msg, err := fn(ctx, w)
	if err != nil {
		return true, err
	}
	if msg == "" {
		return true, nil
	}

	slog.Info(msg)
	if w.tty {
		return true, nil
	}
	w.feedback = feedback.New()
	w.AddItem(msg).SetIcon(feedback.IconInfo, "")
	return true, w.SendFeedback()
}

// message wraps an action with a fixed success message.
func message(action func(ctx context.Context, w *Workflow) error, msg string) MagicFunc {
	return func(ctx context.Context, w *Workflow) (string, error) {
		if err := action(ctx, w); err != nil {
			return "", err
		}
		return msg, nil
	}
}

// setting stores value under key and returns msg.
func setting(key string, value any, msg string) MagicFunc {
	return func(_ context.Context, w *Workflow) (string, error) {
		s, err := w.Settings()
		if err != nil {
			return "", err
		}
		if value == nil {
			err = s.Delete(key)
		} else {
			err = s.Set(key, value)
		}
		if err != nil {
			return "", err
		}
		return msg, nil
	}
}

// open runs open(1) with args.
func open(args ...string) func(ctx context.Context, w *Workflow) error {
	return func(ctx context.Context, w *Workflow) error {
		return w.runCmd(ctx, "open", args...)
	}
}

func (w *Workflow) registerDefaultMagic() {
	w.RegisterMagic("delcache", message(func(_ context.Context, w *Workflow) error {
		return w.ClearCache(nil)
	}, "Deleted workflow cache"))
	w.RegisterMagic("deldata", message(func(_ context.Context, w *Workflow) error {
		return w.ClearData(nil)
	}, "Deleted workflow data"))
	w.RegisterMagic("delsettings", message(func(_ context.Context, w *Workflow) error {
		return w.ClearSettings()
	}, "Deleted workflow settings"))
	w.RegisterMagic("reset", message(func(ctx context.Context, w *Workflow) error {
		return w.Reset(ctx)
	}, "Reset workflow"))

	w.RegisterMagic("openlog", message(open(w.LogFile()), "Opening workflow log file"))
	w.RegisterMagic("opencache", message(open(w.cacheDir), "Opening workflow cache directory"))
	w.RegisterMagic("opendata", message(open(w.dataDir), "Opening workflow data directory"))
	w.RegisterMagic("openworkflow", message(open(w.dir), "Opening workflow directory"))
	w.RegisterMagic("openterm", message(open("-a", "Terminal", w.dir), "Opening workflow root directory in Terminal"))

	w.RegisterMagic("foldingon", setting(settings.KeyDiacriticFolding, true, "Diacritics will always be folded"))
	w.RegisterMagic("foldingoff", setting(settings.KeyDiacriticFolding, false, "Diacritics will never be folded"))
	w.RegisterMagic("foldingdefault", setting(settings.KeyDiacriticFolding, nil, "Diacritics folding reset"))

	w.RegisterMagic("autoupdate", setting(settings.KeyAutoUpdate, true, "Auto update turned on"))
	w.RegisterMagic("noautoupdate", setting(settings.KeyAutoUpdate, false, "Auto update turned off"))
	w.RegisterMagic("prereleases", setting(settings.KeyPrereleases, true, "Prerelease updates turned on"))
	w.RegisterMagic("noprereleases", setting(settings.KeyPrereleases, false, "Prerelease updates turned off"))
	w.RegisterMagic("update", func(ctx context.Context, w *Workflow) (string, error) {
		installed, err := w.StartUpdate(ctx)
		if err != nil {
			return "", err
		}
		if installed {
			return "Downloading and installing update ...", nil
		}
		return "No update available", nil
	})

	w.RegisterMagic("help", func(ctx context.Context, w *Workflow) (string, error) {
		if w.HelpURL() == "" {
			return "Workflow has no help URL", nil
		}
		if err := w.runCmd(ctx, "open", w.HelpURL()); err != nil {
			return "", err
		}
		return "Opening workflow help URL in browser", nil
	})
	w.RegisterMagic("version", func(_ context.Context, w *Workflow) (string, error) {
		if w.Version() == "" {
			return "This workflow has no version number", nil
		}
		return "Version: " + w.Version(), nil
	})
	w.RegisterMagic("magic", func(_ context.Context, w *Workflow) (string, error) {
		w.feedback = feedback.New()
		for _, name := range w.MagicNames() {
			if name == "magic" {
				continue
			}
			arg := w.magicPrefix + name
			slog.Debug(arg)
			w.AddItem(arg).SetAutocomplete(arg).SetIcon(feedback.IconInfo, "")
		}
		if w.tty {
			return "", nil
		}
		return "", w.SendFeedback()
	})
}

// ClearCache deletes cache files for which keep returns false.
// A nil keep deletes everything.
func (w *Workflow) ClearCache(keep func(name string) bool) error {
	return storage.ClearDir(w.cacheDir, keep)
}

// ClearData deletes data files for which keep returns false.
// A nil keep deletes everything, settings included.
func (w *Workflow) ClearData(keep func(name string) bool) error {
	if err := storage.ClearDir(w.dataDir, keep); err != nil {
		return err
	}
	if keep == nil || !keep(settings.FileName) {
		w.forgetSettings()
	}
	return nil
}

// ClearSettings deletes settings.json.
func (w *Workflow) ClearSettings() error {
	path := w.DataFile(settings.FileName)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete settings: %w", err)
	}
	w.forgetSettings()
	slog.Debug("deleted settings", slog.String("path", path))
	return nil
}

// Reset deletes the cache, data and settings.
func (w *Workflow) Reset(ctx context.Context) error {
	if err := storage.ClearDirs(ctx, w.cacheDir, w.dataDir); err != nil {
		return err
	}
	return w.ClearSettings()
}

func (w *Workflow) forgetSettings() {
	w.mu.Lock()
	w.settings = nil
	w.mu.Unlock()
}
