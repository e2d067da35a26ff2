package model

import (
	"fmt"
	"regexp"
)

// FilterDefinition is a named regex filter, usually supplied by an adapter
// as a preset.
type FilterDefinition struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Pattern     string `json:"pattern" yaml:"pattern"`
	Enabled     bool   `json:"enabled" yaml:"enabled"`
	Source      string `json:"source,omitempty" yaml:"source,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	re *regexp.Regexp
}

// NewFilterDefinition compiles pattern and returns a definition holding the
// compiled form. An invalid pattern is an error.
func NewFilterDefinition(id, name, pattern string, enabled bool, source, description string) (FilterDefinition, error) {
	if id == "" {
		return FilterDefinition{}, fmt.Errorf("filter id is required")
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return FilterDefinition{}, fmt.Errorf("filter %q: invalid regex pattern: %w", id, err)
	}
	return FilterDefinition{
		ID:          id,
		Name:        name,
		Pattern:     pattern,
		Enabled:     enabled,
		Source:      source,
		Description: description,
		re:          re,
	}, nil
}

// MustFilterDefinition is like NewFilterDefinition but panics on error.
func MustFilterDefinition(id, name, pattern string, enabled bool, source, description string) FilterDefinition {
	f, err := NewFilterDefinition(id, name, pattern, enabled, source, description)
	if err != nil {
		panic(err)
	}
	return f
}

// Regexp returns the compiled pattern. Definitions built as struct literals
// are compiled on demand and may return an error.
func (f FilterDefinition) Regexp() (*regexp.Regexp, error) {
	if f.re != nil && f.re.String() == f.Pattern {
		return f.re, nil
	}
	return regexp.Compile(f.Pattern)
}

// WithEnabled returns a copy with Enabled set.
func (f FilterDefinition) WithEnabled(enabled bool) FilterDefinition {
	f.Enabled = enabled
	return f
}
