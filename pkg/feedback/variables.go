package feedback

import (
	"encoding/json"
	"io"
)

// Variables is the output of a Run Script action that sets workflow
// variables. It prints as an "alfredworkflow" JSON object, or as the bare
// arg when there is nothing else to pass.
type Variables struct {
	Arg    Arg
	Vars   map[string]string
	Config map[string]any
}

// NewVariables returns Variables with arg as output.
func NewVariables(arg ...string) *Variables {
	return &Variables{Arg: arg}
}

// Set sets a variable.
func (v *Variables) Set(name, value string) *Variables {
	if v.Vars == nil {
		v.Vars = make(map[string]string)
	}
	v.Vars[name] = value
	return v
}

// SetConfig sets configuration for the downstream workflow object.
func (v *Variables) SetConfig(key string, value any) *Variables {
	if v.Config == nil {
		v.Config = make(map[string]any)
	}
	v.Config[key] = value
	return v
}

type alfredWorkflow struct {
	Arg       Arg               `json:"arg,omitempty"`
	Config    map[string]any    `json:"config,omitempty"`
	Variables map[string]string `json:"variables,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (v *Variables) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]alfredWorkflow{
		"alfredworkflow": {Arg: v.Arg, Config: v.Config, Variables: v.Vars},
	})
}

// String returns what the Run Script action should print.
func (v *Variables) String() string {
	if len(v.Vars) == 0 && len(v.Config) == 0 {
		switch len(v.Arg) {
		case 0:
			return ""
		case 1:
			return v.Arg[0]
		}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}

// WriteTo writes String to w.
func (v *Variables) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, v.String())
	return int64(n), err
}
