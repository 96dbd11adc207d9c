package workflow

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	wferrors "github.com/Aman-CERP/wfkit/internal/errors"
	"github.com/Aman-CERP/wfkit/pkg/feedback"
)

// Run handles magic arguments, then calls fn. When updates are
// configured, a due update check runs alongside fn.
//
// If fn fails, the error is logged and shown in Alfred as a single error
// item (or printed as text, see WithTextErrors) and Run returns 1. After a
// successful run the workflow version is recorded for FirstRun and Run
// returns 0. The result is meant for os.Exit.
func (w *Workflow) Run(fn func(*Workflow) error) int {
	return w.RunContext(context.Background(), func(_ context.Context, wf *Workflow) error {
		return fn(wf)
	})
}

// RunContext is Run with a context passed to fn.
func (w *Workflow) RunContext(ctx context.Context, fn func(context.Context, *Workflow) error) int {
	start := time.Now()
	if w.Version() != "" {
		slog.Debug(fmt.Sprintf("---------- %s (%s) ----------", w.Name(), w.Version()))
	} else {
		slog.Debug(fmt.Sprintf("---------- %s ----------", w.Name()))
	}
	defer func() {
		slog.Debug(fmt.Sprintf("---------- finished in %.3fs ----------", time.Since(start).Seconds()))
	}()

	if err := w.run(ctx, fn); err != nil {
		w.reportError(err)
		return 1
	}
	return 0
}

func (w *Workflow) run(ctx context.Context, fn func(context.Context, *Workflow) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = wferrors.InternalError(fmt.Sprintf("panic: %v", r), nil)
		}
	}()

	if handled, err := w.HandleMagic(ctx); handled {
		return err
	}

	var checks errgroup.Group
	if w.UpdatesEnabled() {
		checks.Go(func() error {
			// A failed or panicking check must not break the Script Filter
			defer func() {
				if r := recover(); r != nil {
					slog.Error("update check panicked", slog.Any("panic", r))
				}
			}()
			checkCtx, cancel := context.WithTimeout(ctx, UpdateCheckTimeout)
			defer cancel()
			if err := w.CheckUpdate(checkCtx, false); err != nil {
				slog.Warn("update check failed", slog.Any("error", wferrors.FormatForLog(err)))
			}
			return nil
		})
	}
	// Runs before the recover above, so a panicking fn still waits
	defer func() { _ = checks.Wait() }()

	// fn runs on this goroutine so its panics are recovered above
	fnErr := fn(ctx, w)
	_ = checks.Wait()
	if fnErr != nil {
		return fnErr
	}

	if w.Version() != "" {
		if err := w.SetLastVersion(""); err != nil {
			slog.Warn("cannot record last version", slog.String("error", err.Error()))
		}
	}
	return nil
}

func (w *Workflow) reportError(err error) {
	slog.Error("workflow failed", slog.Any("error", wferrors.FormatForLog(err)))
	if w.HelpURL() != "" {
		slog.Info("for assistance, see: " + w.HelpURL())
	}
	if w.tty {
		return
	}

	if w.textErrors {
		_, _ = io.WriteString(w.stdout, wferrors.FormatForUser(err, w.Debugging()))
		return
	}

	w.feedback = feedback.New()
	w.AddItem(fmt.Sprintf("Error in workflow '%s'", w.Name())).
		SetSubtitle(errorSubtitle(err)).
		SetIcon(errorIcon(err), "")
	if sendErr := w.SendFeedback(); sendErr != nil {
		slog.Error("cannot send error feedback", slog.String("error", sendErr.Error()))
	}
}

func errorIcon(err error) string {
	if we, ok := wferrors.As(err); ok && we.Severity == wferrors.SeverityInfo {
		return feedback.IconInfo
	}
	return feedback.IconError
}

func errorSubtitle(err error) string {
	if we, ok := wferrors.As(err); ok {
		return we.Message
	}
	return err.Error()
}
