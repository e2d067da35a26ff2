package model

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// SeverityLevel is one entry in a tool's severity scheme.
// Level 0 is the least severe.
type SeverityLevel struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Level int    `json:"level" yaml:"level"`
	Style string `json:"style,omitempty" yaml:"style,omitempty"`
}

// Sort ranks for severities outside the scheme.
const (
	RankUnknown = 998
	RankUnset   = 999
)

// Scheme is a validated, read-only severity ranking. Levels are unique and
// contiguous from 0.
type Scheme struct {
	levels []SeverityLevel // most severe first
	index  map[string]int
}

// UnknownSeverityError reports a severity name not declared by a scheme.
type UnknownSeverityError struct {
	Name  string
	Valid []string
}

func (e *UnknownSeverityError) Error() string {
	return fmt.Sprintf("unknown severity %q (valid: %s)", e.Name, strings.Join(e.Valid, ", "))
}

// NewScheme validates levels and returns a scheme ordered most severe first.
func NewScheme(levels []SeverityLevel) (Scheme, error) {
	if len(levels) == 0 {
		return Scheme{}, fmt.Errorf("severity scheme has no levels")
	}
	sorted := make([]SeverityLevel, len(levels))
	copy(sorted, levels)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Level > sorted[j].Level })

	index := make(map[string]int, len(sorted))
	for i, lvl := range sorted {
		id := strings.ToLower(strings.TrimSpace(lvl.ID))
		if id == "" {
			return Scheme{}, fmt.Errorf("severity level %d has an empty id", lvl.Level)
		}
		if _, dup := index[id]; dup {
			return Scheme{}, fmt.Errorf("duplicate severity id %q", id)
		}
		want := len(sorted) - 1 - i
		if lvl.Level != want {
			return Scheme{}, fmt.Errorf("severity levels must be unique and contiguous from 0: %q has level %d, expected %d", id, lvl.Level, want)
		}
		sorted[i].ID = id
		index[id] = i
	}
	return Scheme{levels: sorted, index: index}, nil
}

// MustScheme is like NewScheme but panics on an invalid scheme. It is meant
// for package-level tables.
func MustScheme(levels []SeverityLevel) Scheme {
	s, err := NewScheme(levels)
	if err != nil {
		panic(err)
	}
	return s
}

var defaultScheme = MustScheme([]SeverityLevel{
	{ID: "critical", Name: "Critical", Level: 4, Style: "red bold"},
	{ID: "critical_warning", Name: "Critical Warning", Level: 3, Style: "red"},
	{ID: "error", Name: "Error", Level: 2, Style: "red"},
	{ID: "warning", Name: "Warning", Level: 1, Style: "yellow"},
	{ID: "info", Name: "Info", Level: 0, Style: "cyan"},
})

// DefaultScheme returns the fallback ranking used when an adapter declares
// no scheme: critical > critical_warning > error > warning > info.
func DefaultScheme() Scheme { return defaultScheme }

// IsZero reports whether s was never initialized.
func (s Scheme) IsZero() bool { return len(s.levels) == 0 }

// OrDefault returns s, or the default scheme when s is zero.
func (s Scheme) OrDefault() Scheme {
	if s.IsZero() {
		return defaultScheme
	}
	return s
}

// Levels returns a copy of the levels, most severe first.
func (s Scheme) Levels() []SeverityLevel {
	out := make([]SeverityLevel, len(s.levels))
	copy(out, s.levels)
	return out
}

// IDs returns the level ids, most severe first.
func (s Scheme) IDs() []string {
	out := make([]string, len(s.levels))
	for i, l := range s.levels {
		out[i] = l.ID
	}
	return out
}

// Lookup returns the level declared for id.
func (s Scheme) Lookup(id string) (SeverityLevel, bool) {
	i, ok := s.index[id]
	if !ok {
		return SeverityLevel{}, false
	}
	return s.levels[i], true
}

// LevelOf returns the numeric level of id, or -1 when id is unset or not
// declared.
func (s Scheme) LevelOf(id string) (int, bool) {
	l, ok := s.Lookup(id)
	if !ok {
		return -1, false
	}
	return l.Level, true
}

// Rank returns a sort key where lower sorts first: declared severities rank
// by descending level, unknown ones just above unset, unset last.
func (s Scheme) Rank(id string) int {
	if id == "" {
		return RankUnset
	}
	if l, ok := s.Lookup(id); ok {
		return -l.Level
	}
	return RankUnknown
}

// DefaultFailLevel is the second-lowest declared level, so the lowest
// (informational) level never fails a check. A single-level scheme fails on
// its only level.
func (s Scheme) DefaultFailLevel() int {
	if len(s.levels) < 2 {
		return 0
	}
	return 1
}

// ResolveLevel maps a severity id or display name to its numeric level.
// Matching ignores case, and spaces or hyphens are treated as underscores.
func (s Scheme) ResolveLevel(name string) (int, error) {
	key := normalizeID(name)
	if l, ok := s.Lookup(key); ok {
		return l.Level, nil
	}
	for _, l := range s.levels {
		if normalizeID(l.Name) == key {
			return l.Level, nil
		}
	}
	return 0, &UnknownSeverityError{Name: name, Valid: s.IDs()}
}

// DisplayName returns the declared name for id, or a title-cased form of id.
func (s Scheme) DisplayName(id string) string {
	if l, ok := s.Lookup(id); ok && l.Name != "" {
		return l.Name
	}
	if id == "" {
		return "Other"
	}
	return cases.Title(language.English).String(strings.ReplaceAll(id, "_", " "))
}

// Style returns the display style for id. Undeclared severities fall back
// to the default scheme's style, then to "".
func (s Scheme) Style(id string) string {
	if l, ok := s.Lookup(id); ok && l.Style != "" {
		return l.Style
	}
	if l, ok := defaultScheme.Lookup(id); ok {
		return l.Style
	}
	return ""
}

func normalizeID(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(s)
}
