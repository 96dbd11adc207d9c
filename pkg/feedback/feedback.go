package feedback

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Feedback is the document a Script Filter prints.
type Feedback struct {
	Items     []*Item           `json:"items"`
	Variables map[string]string `json:"variables,omitempty"`
	// Rerun asks Alfred to run the Script Filter again after this many
	// seconds (0.1 to 5). Zero disables.
	Rerun float64 `json:"rerun,omitempty"`
}

// New returns empty feedback.
func New() *Feedback {
	return &Feedback{Items: []*Item{}}
}

// AddItem appends an item. It inherits the feedback variables set so far.
func (f *Feedback) AddItem(title string) *Item {
	it := NewItem(title)
	for k, v := range f.Variables {
		it.SetVar(k, v)
	}
	f.Items = append(f.Items, it)
	return it
}

// Len returns the number of items.
func (f *Feedback) Len() int {
	return len(f.Items)
}

// SetVar sets a variable passed to every item added afterwards, to
// downstream objects and, with Rerun, back to the Script Filter.
func (f *Feedback) SetVar(name, value string) *Feedback {
	if f.Variables == nil {
		f.Variables = make(map[string]string)
	}
	f.Variables[name] = value
	return f
}

// Var returns the variable name, or def when unset.
func (f *Feedback) Var(name, def string) string {
	if v, ok := f.Variables[name]; ok {
		return v
	}
	return def
}

// SetRerun sets the rerun interval in seconds, clamped to Alfred's range.
// Zero or less disables rerunning.
func (f *Feedback) SetRerun(seconds float64) *Feedback {
	switch {
	case seconds <= 0:
		seconds = 0
	case seconds < 0.1:
		seconds = 0.1
	case seconds > 5:
		seconds = 5
	}
	f.Rerun = seconds
	return f
}

// WarnEmpty adds a warning item when there are no items, so Alfred does
// not fall back to its default searches. It returns the new item, or nil.
func (f *Feedback) WarnEmpty(title, subtitle string) *Item {
	if len(f.Items) > 0 {
		return nil
	}
	return f.AddItem(title).SetSubtitle(subtitle).SetIcon(IconWarning, "")
}

// Write encodes the feedback to w. Pretty output is indented, for
// Alfred's debugger.
func (f *Feedback) Write(w io.Writer, pretty bool) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if f.Items == nil {
		f.Items = []*Item{}
	}
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("encode feedback: %w", err)
	}
	return nil
}

// Parse decodes a feedback document, or a bare JSON array of items.
func Parse(r io.Reader) (*Feedback, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read feedback: %w", err)
	}

	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var items []*Item
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("decode items: %w", err)
		}
		return &Feedback{Items: items}, nil
	}

	fb := New()
	if err := json.Unmarshal(data, fb); err != nil {
		return nil, fmt.Errorf("decode feedback: %w", err)
	}
	return fb, nil
}
