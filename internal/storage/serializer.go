// Package storage keeps a workflow's cached and persistent data on disk.
//
// Cache files live in the workflow's cache directory and expire by age.
// Stored data lives in the data directory and records the serializer it
// was written with, so it can be read back after the default changes.
package storage

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	wferrors "github.com/Aman-CERP/wfkit/internal/errors"
)

// Serializer converts values to and from bytes. Name doubles as the file
// extension of data it writes.
type Serializer interface {
	Name() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

type jsonSerializer struct{}

func (jsonSerializer) Name() string { return "json" }

func (jsonSerializer) Marshal(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func (jsonSerializer) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

type yamlSerializer struct{}

func (yamlSerializer) Name() string                       { return "yaml" }
func (yamlSerializer) Marshal(v any) ([]byte, error)      { return yaml.Marshal(v) }
func (yamlSerializer) Unmarshal(data []byte, v any) error { return yaml.Unmarshal(data, v) }

// gobSerializer handles Go-specific types JSON cannot round-trip.
// Interface values must be registered with encoding/gob first.
type gobSerializer struct{}

func (gobSerializer) Name() string { return "gob" }

func (gobSerializer) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (gobSerializer) Unmarshal(data []byte, v any) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}

// Built-in serializers.
var (
	JSON Serializer = jsonSerializer{}
	YAML Serializer = yamlSerializer{}
	Gob  Serializer = gobSerializer{}
)

// Registry maps serializer names to implementations.
// It is safe for concurrent use.
type Registry struct {
	mu          sync.RWMutex
	serializers map[string]Serializer
}

// NewRegistry returns a registry holding the built-in serializers.
func NewRegistry() *Registry {
	r := &Registry{serializers: make(map[string]Serializer)}
	for _, s := range []Serializer{JSON, YAML, Gob} {
		r.serializers[s.Name()] = s
	}
	return r
}

// Register adds s, replacing any serializer with the same name.
func (r *Registry) Register(s Serializer) error {
	if s == nil || s.Name() == "" {
		return wferrors.ValidationError("serializer must have a name", nil)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.serializers[s.Name()] = s
	return nil
}

// Get returns the serializer registered as name.
func (r *Registry) Get(name string) (Serializer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.serializers[name]
	if !ok {
		return nil, unknownSerializer(name)
	}
	return s, nil
}

// Unregister removes the serializer registered as name.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.serializers[name]; !ok {
		return unknownSerializer(name)
	}
	delete(r.serializers, name)
	return nil
}

// Names returns the registered serializer names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.serializers))
	for name := range r.serializers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func unknownSerializer(name string) error {
	return wferrors.New(wferrors.ErrCodeUnknownFormat, fmt.Sprintf("unknown serializer %q", name), nil).
		WithSuggestion("Use json, yaml or gob, or register the serializer first")
}
