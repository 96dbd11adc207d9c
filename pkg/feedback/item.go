// Package feedback builds the JSON documents Alfred reads from Script
// Filters and Run Script actions.
//
// A Script Filter prints a Feedback envelope:
//
//	fb := feedback.New()
//	fb.AddItem("Google Chrome").SetArg("/Applications/Google Chrome.app").SetValid(true)
//	fb.Write(os.Stdout, false)
//
// A Run Script action prints Variables to pass values downstream.
package feedback

import (
	"encoding/json"
)

// Icon types understood by Alfred. An empty type means Path is an image file.
const (
	IconTypeFileIcon = "fileicon" // use the icon of the file at Path
	IconTypeFileType = "filetype" // Path is a UTI such as "public.folder"
)

// Item types understood by Alfred.
const (
	ItemTypeDefault       = "default"
	ItemTypeFile          = "file"
	ItemTypeFileSkipCheck = "file:skipcheck"
)

// Icon is an item or modifier icon.
type Icon struct {
	Path string `json:"path,omitempty"`
	Type string `json:"type,omitempty"`
}

// Text holds the Large Type and Copy overrides of an item.
type Text struct {
	LargeType string `json:"largetype,omitempty"`
	Copy      string `json:"copy,omitempty"`
}

// Arg is an item's output. One value is written as a JSON string, several
// as an array (Alfred 4.1+). Both forms are accepted when decoding.
type Arg []string

// MarshalJSON implements json.Marshaler.
func (a Arg) MarshalJSON() ([]byte, error) {
	if len(a) == 1 {
		return json.Marshal(a[0])
	}
	return json.Marshal([]string(a))
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *Arg) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*a = Arg{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*a = many
	return nil
}

// Item is one Script Filter result.
type Item struct {
	Title        string               `json:"title"`
	Subtitle     string               `json:"subtitle"`
	Arg          Arg                  `json:"arg,omitempty"`
	Autocomplete string               `json:"autocomplete,omitempty"`
	Match        string               `json:"match,omitempty"`
	Valid        bool                 `json:"valid"`
	UID          string               `json:"uid,omitempty"`
	Type         string               `json:"type,omitempty"`
	QuickLookURL string               `json:"quicklookurl,omitempty"`
	Icon         *Icon                `json:"icon,omitempty"`
	Text         *Text                `json:"text,omitempty"`
	Variables    map[string]string    `json:"variables,omitempty"`
	Config       map[string]any       `json:"config,omitempty"`
	Mods         map[string]*Modifier `json:"mods,omitempty"`
}

// NewItem returns an item with title.
func NewItem(title string) *Item {
	return &Item{Title: title}
}

// SetSubtitle sets the subtitle.
func (it *Item) SetSubtitle(s string) *Item { it.Subtitle = s; return it }

// SetArg sets the output value(s).
func (it *Item) SetArg(args ...string) *Item { it.Arg = args; return it }

// SetAutocomplete sets the text Alfred expands the query to on Tab.
func (it *Item) SetAutocomplete(s string) *Item { it.Autocomplete = s; return it }

// SetMatch sets the text Alfred filters on instead of the title.
func (it *Item) SetMatch(s string) *Item { it.Match = s; return it }

// SetValid sets whether the item can be actioned.
func (it *Item) SetValid(v bool) *Item { it.Valid = v; return it }

// SetUID sets the id Alfred uses to learn the user's preferences.
func (it *Item) SetUID(s string) *Item { it.UID = s; return it }

// SetType sets the item type.
func (it *Item) SetType(s string) *Item { it.Type = s; return it }

// SetQuickLookURL sets the URL shown by Quick Look.
func (it *Item) SetQuickLookURL(s string) *Item { it.QuickLookURL = s; return it }

// SetIcon sets the icon. An empty path removes it.
func (it *Item) SetIcon(path, iconType string) *Item {
	if path == "" {
		it.Icon = nil
		return it
	}
	it.Icon = &Icon{Path: path, Type: iconType}
	return it
}

// SetLargeType sets the text shown by Large Type (cmd+L).
func (it *Item) SetLargeType(s string) *Item {
	it.text().LargeType = s
	return it
}

// SetCopyText sets the text copied by cmd+C.
func (it *Item) SetCopyText(s string) *Item {
	it.text().Copy = s
	return it
}

func (it *Item) text() *Text {
	if it.Text == nil {
		it.Text = &Text{}
	}
	return it.Text
}

// SetVar sets a workflow variable passed downstream when the item is actioned.
func (it *Item) SetVar(name, value string) *Item {
	if it.Variables == nil {
		it.Variables = make(map[string]string)
	}
	it.Variables[name] = value
	return it
}

// Var returns the item variable name, or def when unset.
func (it *Item) Var(name, def string) string {
	if v, ok := it.Variables[name]; ok {
		return v
	}
	return def
}

// SetConfig sets configuration for the downstream workflow object.
func (it *Item) SetConfig(key string, value any) *Item {
	if it.Config == nil {
		it.Config = make(map[string]any)
	}
	it.Config[key] = value
	return it
}

// AddModifier adds alternative values shown while key ("cmd", "alt",
// "cmd+shift", ...) is held. The modifier starts valid and inherits the
// item's current variables.
func (it *Item) AddModifier(key string) *Modifier {
	m := &Modifier{Valid: true}
	for k, v := range it.Variables {
		m.SetVar(k, v)
	}
	if it.Mods == nil {
		it.Mods = make(map[string]*Modifier)
	}
	it.Mods[key] = m
	return m
}

// Modifier overrides an item while a modifier key is held.
type Modifier struct {
	Subtitle  string            `json:"subtitle,omitempty"`
	Arg       Arg               `json:"arg,omitempty"`
	Valid     bool              `json:"valid"`
	Icon      *Icon             `json:"icon,omitempty"`
	Variables map[string]string `json:"variables,omitempty"`
	Config    map[string]any    `json:"config,omitempty"`
}

// SetSubtitle sets the subtitle.
func (m *Modifier) SetSubtitle(s string) *Modifier { m.Subtitle = s; return m }

// SetArg sets the output value(s).
func (m *Modifier) SetArg(args ...string) *Modifier { m.Arg = args; return m }

// SetValid sets whether the item can be actioned with this modifier.
func (m *Modifier) SetValid(v bool) *Modifier { m.Valid = v; return m }

// SetIcon sets the icon.
func (m *Modifier) SetIcon(path, iconType string) *Modifier {
	m.Icon = &Icon{Path: path, Type: iconType}
	return m
}

// SetVar sets a workflow variable.
func (m *Modifier) SetVar(name, value string) *Modifier {
	if m.Variables == nil {
		m.Variables = make(map[string]string)
	}
	m.Variables[name] = value
	return m
}

// SetConfig sets configuration for the downstream workflow object.
func (m *Modifier) SetConfig(key string, value any) *Modifier {
	if m.Config == nil {
		m.Config = make(map[string]any)
	}
	m.Config[key] = value
	return m
}
