package adapter

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Threshold is the minimum confidence for automatic selection.
const Threshold = 0.5

// ErrNoAdapter is returned when no adapter reaches Threshold.
var ErrNoAdapter = errors.New("no plugin can handle this file")

// ErrUnknownAdapter is returned by Lookup for unregistered names.
var ErrUnknownAdapter = errors.New("unknown plugin")

// Candidate is an adapter's detection score.
type Candidate struct {
	Name       string
	Confidence float64
}

// ConflictError is returned when more than one adapter reaches Threshold.
type ConflictError struct {
	Path       string
	Candidates []Candidate
}

func (e *ConflictError) Error() string {
	parts := make([]string, len(e.Candidates))
	for i, c := range e.Candidates {
		parts[i] = fmt.Sprintf("%s (%.2f)", c.Name, c.Confidence)
	}
	return fmt.Sprintf("multiple plugins claim %s: %s; choose one with --plugin", e.Path, strings.Join(parts, ", "))
}

// Validator is implemented by adapters that can check their own rules.
type Validator interface {
	Validate() error
}

// Registry holds adapters by name. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// Register adds a, validating its rules and scheme first.
func (r *Registry) Register(a Adapter) error {
	name := a.Info().Name
	if name == "" {
		return fmt.Errorf("adapter name is required")
	}
	if v, ok := a.(Validator); ok {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.adapters[name]; dup {
		return fmt.Errorf("adapter %q already registered", name)
	}
	r.adapters[name] = a
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(a Adapter) {
	if err := r.Register(a); err != nil {
		panic(err)
	}
}

// Get returns the adapter registered under name.
func (r *Registry) Get(name string) (Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[name]
	return a, ok
}

// Lookup is Get with an error naming the registered adapters.
func (r *Registry) Lookup(name string) (Adapter, error) {
	if a, ok := r.Get(name); ok {
		return a, nil
	}
	return nil, fmt.Errorf("%w %q (available: %s)", ErrUnknownAdapter, name, strings.Join(r.Names(), ", "))
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.adapters))
	for n := range r.adapters {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// List returns adapter infos sorted by name.
func (r *Registry) List() []Info {
	var out []Info
	for _, n := range r.Names() {
		a, _ := r.Get(n)
		out = append(out, a.Info())
	}
	return out
}

// Scores returns every adapter's confidence for the file, highest first.
func (r *Registry) Scores(path string, head []string) []Candidate {
	var out []Candidate
	for _, n := range r.Names() {
		a, _ := r.Get(n)
		out = append(out, Candidate{Name: n, Confidence: a.CanHandle(path, head)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Confidence > out[j].Confidence })
	return out
}

// Detect selects the adapter for a file. Exactly one adapter must reach
// Threshold.
func (r *Registry) Detect(path string, head []string) (Adapter, error) {
	var above []Candidate
	for _, c := range r.Scores(path, head) {
		if c.Confidence >= Threshold {
			above = append(above, c)
		}
	}
	switch len(above) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrNoAdapter, path)
	case 1:
		a, _ := r.Get(above[0].Name)
		return a, nil
	}
	return nil, &ConflictError{Path: path, Candidates: above}
}
