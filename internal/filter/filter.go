package filter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dshills/sawmill/internal/model"
)

// Mode selects how multiple filters combine.
type Mode string

const (
	ModeAnd Mode = "and"
	ModeOr  Mode = "or"
)

// ParseMode parses "and" or "or", case-insensitively. Empty means AND.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "and":
		return ModeAnd, nil
	case "or":
		return ModeOr, nil
	}
	return "", fmt.Errorf("invalid filter mode %q (valid: and, or)", s)
}

// ApplyFilter returns the messages whose raw text matches pattern. An
// invalid pattern matches nothing.
func ApplyFilter(pattern string, msgs []model.Message, caseSensitive bool) []model.Message {
	if !caseSensitive {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return []model.Message{}
	}
	return keep(msgs, re.MatchString)
}

// ApplyFilters returns the messages selected by the enabled filters. With no
// enabled filters every message passes. Filters whose pattern does not
// compile are left out of the active set; if that empties it, AND mode
// passes every message and OR mode passes none.
func ApplyFilters(filters []model.FilterDefinition, msgs []model.Message, mode Mode) []model.Message {
	enabled := 0
	var active []*regexp.Regexp
	for _, f := range filters {
		if !f.Enabled {
			continue
		}
		enabled++
		if re, err := f.Regexp(); err == nil {
			active = append(active, re)
		}
	}
	if enabled == 0 {
		return clone(msgs)
	}
	if len(active) == 0 {
		if mode == ModeOr {
			return []model.Message{}
		}
		return clone(msgs)
	}
	if mode == ModeOr {
		return keep(msgs, func(s string) bool {
			for _, re := range active {
				if re.MatchString(s) {
					return true
				}
			}
			return false
		})
	}
	return keep(msgs, func(s string) bool {
		for _, re := range active {
			if !re.MatchString(s) {
				return false
			}
		}
		return true
	})
}

// ApplySuppressions drops every message whose raw text matches any valid
// pattern. Matching is case-sensitive unless a pattern sets (?i) itself.
func ApplySuppressions(patterns []string, msgs []model.Message) []model.Message {
	compiled := CompileAll(patterns)
	if len(compiled) == 0 {
		return clone(msgs)
	}
	return keep(msgs, func(s string) bool {
		for _, re := range compiled {
			if re.MatchString(s) {
				return false
			}
		}
		return true
	})
}

// SuppressIDs drops messages whose id is in ids (exact match).
func SuppressIDs(ids []string, msgs []model.Message) []model.Message {
	if len(ids) == 0 {
		return clone(msgs)
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	out := make([]model.Message, 0, len(msgs))
	for _, m := range msgs {
		if _, drop := set[m.MessageID]; drop && m.MessageID != "" {
			continue
		}
		out = append(out, m)
	}
	return out
}

// AtOrAbove keeps messages whose severity level in scheme is at least
// minLevel. Messages with unset or undeclared severity are dropped.
func AtOrAbove(scheme model.Scheme, minLevel int, msgs []model.Message) []model.Message {
	out := make([]model.Message, 0, len(msgs))
	for _, m := range msgs {
		if lvl, ok := scheme.LevelOf(m.Severity); ok && lvl >= minLevel {
			out = append(out, m)
		}
	}
	return out
}

// ByCategory keeps messages in category, compared case-insensitively.
func ByCategory(category string, msgs []model.Message) []model.Message {
	return byField(msgs, func(m *model.Message) bool {
		return m.Category != "" && strings.EqualFold(m.Category, category)
	})
}

// ByID keeps messages with the given id, compared case-insensitively.
func ByID(id string, msgs []model.Message) []model.Message {
	return byField(msgs, func(m *model.Message) bool {
		return m.MessageID != "" && strings.EqualFold(m.MessageID, id)
	})
}

// CompileAll compiles the valid patterns and skips the rest.
func CompileAll(patterns []string) []*regexp.Regexp {
	var out []*regexp.Regexp
	for _, p := range patterns {
		if re, err := regexp.Compile(p); err == nil {
			out = append(out, re)
		}
	}
	return out
}

func keep(msgs []model.Message, match func(string) bool) []model.Message {
	return byField(msgs, func(m *model.Message) bool { return match(m.RawText) })
}

func byField(msgs []model.Message, match func(*model.Message) bool) []model.Message {
	out := make([]model.Message, 0, len(msgs))
	for i := range msgs {
		if match(&msgs[i]) {
			out = append(out, msgs[i])
		}
	}
	return out
}

func clone(msgs []model.Message) []model.Message {
	out := make([]model.Message, len(msgs))
	copy(out, msgs)
	return out
}
