package workflow

import (
	"strings"

	"github.com/google/uuid"

	"github.com/Aman-CERP/wfkit/pkg/feedback"
)

// Feedback returns the feedback being built.
func (w *Workflow) Feedback() *feedback.Feedback { return w.feedback }

// AddItem adds a result to the feedback.
func (w *Workflow) AddItem(title string) *feedback.Item {
	return w.feedback.AddItem(title)
}

// WarnEmpty adds a warning item if nothing else has been added.
func (w *Workflow) WarnEmpty(title, subtitle string) *feedback.Item {
	return w.feedback.WarnEmpty(title, subtitle)
}

// SetVar sets a workflow variable passed to downstream objects.
func (w *Workflow) SetVar(name, value string) {
	w.feedback.SetVar(name, value)
}

// GetVar returns the workflow variable name, or def when unset.
func (w *Workflow) GetVar(name, def string) string {
	return w.feedback.Var(name, def)
}

// Rerun asks Alfred to run the Script Filter again after seconds.
func (w *Workflow) Rerun(seconds float64) {
	w.feedback.SetRerun(seconds)
}

// SessionID returns an id that stays the same while the user keeps
// using the Script Filter. It is passed between runs as a variable.
func (w *Workflow) SessionID() string {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.sessionID == "" {
		w.sessionID = strings.ReplaceAll(uuid.NewString(), "-", "")
		w.feedback.SetVar(SessionVar, w.sessionID)
	}
	return w.sessionID
}

// ClearSessionCache deletes data cached by earlier sessions, and by this
// one too when current is set.
func (w *Workflow) ClearSessionCache(current bool) error {
	keep := w.SessionID()
	if current {
		keep = ""
	}
	return w.cache.ClearSessions(keep)
}

// SendFeedback writes the feedback to Alfred. Output is indented while
// Alfred's debugger is open.
func (w *Workflow) SendFeedback() error {
	return w.feedback.Write(w.stdout, w.Debugging())
}
