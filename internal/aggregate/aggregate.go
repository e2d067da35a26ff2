package aggregate

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dshills/sawmill/internal/model"
)

// ErrUnknownField is returned when grouping by a field that is neither
// builtin nor declared by the adapter.
var ErrUnknownField = errors.New("unknown grouping field")

// Sentinel keys for messages lacking a field value.
const (
	KeyOther      = "other"
	KeyNoID       = "(no id)"
	KeyNoFile     = "(no file)"
	KeyNoCategory = "(no category)"
)

// Group is the set of messages sharing one field value. Severity is that of
// the first member.
type Group struct {
	Key      string
	Severity string
	Count    int
	Messages []model.Message
	Files    map[string]struct{}
}

func (g *Group) add(m model.Message) {
	g.Count++
	g.Messages = append(g.Messages, m)
	if p := m.FilePath(); p != "" {
		g.Files[p] = struct{}{}
	}
}

// FileList returns the distinct file paths in sorted order.
func (g *Group) FileList() []string {
	out := make([]string, 0, len(g.Files))
	for f := range g.Files {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// SeverityStats counts the messages of one severity, with a breakdown by
// message id.
type SeverityStats struct {
	Severity string         `json:"severity" yaml:"severity"`
	Total    int            `json:"total" yaml:"total"`
	ByID     map[string]int `json:"by_id" yaml:"by_id"`
}

// Aggregator groups messages using a severity scheme and the grouping
// fields an adapter declares.
type Aggregator struct {
	scheme model.Scheme
	fields []model.GroupingField
}

// New returns an aggregator. A zero scheme falls back to the default scheme
// and nil fields to the default grouping fields.
func New(scheme model.Scheme, fields []model.GroupingField) *Aggregator {
	if len(fields) == 0 {
		fields = model.DefaultGroupingFields()
	}
	return &Aggregator{scheme: scheme.OrDefault(), fields: fields}
}

// Scheme returns the aggregator's severity scheme.
func (a *Aggregator) Scheme() model.Scheme { return a.scheme }

// AvailableGroupings returns the ids of the declared grouping fields.
func (a *Aggregator) AvailableGroupings() []string {
	out := make([]string, len(a.fields))
	for i, f := range a.fields {
		out[i] = f.ID
	}
	return out
}

// Field returns the declared grouping field with id.
func (a *Aggregator) Field(id string) (model.GroupingField, bool) {
	for _, f := range a.fields {
		if f.ID == id {
			return f, true
		}
	}
	return model.GroupingField{}, false
}

// GroupBy partitions msgs by field. Builtin fields use dedicated key rules;
// other declared fields resolve through Message.FieldValue with values
// lowercased and missing values under "(no <field>)".
func (a *Aggregator) GroupBy(msgs []model.Message, field string) (map[string]*Group, error) {
	var keyOf func(*model.Message) string
	switch field {
	case model.FieldSeverity:
		keyOf = func(m *model.Message) string { return orSentinel(strings.ToLower(m.Severity), KeyOther) }
	case model.FieldID:
		keyOf = func(m *model.Message) string { return orSentinel(m.MessageID, KeyNoID) }
	case model.FieldFile:
		keyOf = func(m *model.Message) string { return orSentinel(m.FilePath(), KeyNoFile) }
	case model.FieldCategory:
		keyOf = func(m *model.Message) string { return orSentinel(strings.ToLower(m.Category), KeyNoCategory) }
	default:
		if _, ok := a.Field(field); !ok {
			return nil, fmt.Errorf("%w: %s (available: %s)", ErrUnknownField, field, strings.Join(a.AvailableGroupings(), ", "))
		}
		missing := "(no " + field + ")"
		keyOf = func(m *model.Message) string {
			v, _ := m.FieldValue(field)
			return orSentinel(strings.ToLower(v), missing)
		}
	}

	groups := make(map[string]*Group)
	for i := range msgs {
		key := keyOf(&msgs[i])
		g, ok := groups[key]
		if !ok {
			g = &Group{Key: key, Severity: msgs[i].Severity, Files: make(map[string]struct{})}
			if field == model.FieldSeverity {
				g.Severity = key
			}
			groups[key] = g
		}
		g.add(msgs[i])
	}
	return groups, nil
}

// SortedGroups orders groups by descending count with the key as
// tiebreak, or by key alone when byCount is false.
func SortedGroups(groups map[string]*Group, byCount bool) []*Group {
	out := make([]*Group, 0, len(groups))
	for _, g := range groups {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool {
		if byCount && out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// Ordered sorts groups produced for field. When not sorting by count, a
// field with a fixed sort order lists those keys first in that order, and
// severity groups follow the scheme's ranking.
func (a *Aggregator) Ordered(field string, groups map[string]*Group, byCount bool) []*Group {
	out := SortedGroups(groups, byCount)
	if byCount {
		return out
	}
	var rank func(key string) int
	if f, ok := a.Field(field); ok && len(f.SortOrder) > 0 {
		pos := make(map[string]int, len(f.SortOrder))
		for i, k := range f.SortOrder {
			pos[strings.ToLower(k)] = i
		}
		rank = func(key string) int {
			if p, ok := pos[key]; ok {
				return p
			}
			return len(pos)
		}
	} else if field == model.FieldSeverity {
		rank = func(key string) int {
			if key == KeyOther {
				return model.RankUnset
			}
			return a.scheme.Rank(key)
		}
	}
	if rank != nil {
		sort.SliceStable(out, func(i, j int) bool { return rank(out[i].Key) < rank(out[j].Key) })
	}
	return out
}

// Summary buckets msgs by lowercased severity ("other" when unset) with
// per-id counts ("(no id)" when unset).
func (a *Aggregator) Summary(msgs []model.Message) map[string]*SeverityStats {
	out := make(map[string]*SeverityStats)
	for i := range msgs {
		sev := orSentinel(strings.ToLower(msgs[i].Severity), KeyOther)
		st, ok := out[sev]
		if !ok {
			st = &SeverityStats{Severity: sev, ByID: make(map[string]int)}
			out[sev] = st
		}
		st.Total++
		st.ByID[orSentinel(msgs[i].MessageID, KeyNoID)]++
	}
	return out
}

// SortedSummary returns the summary ordered by severity rank, most severe
// first, with unknown severities after declared ones and "other" last.
func (a *Aggregator) SortedSummary(msgs []model.Message) []*SeverityStats {
	summary := a.Summary(msgs)
	out := make([]*SeverityStats, 0, len(summary))
	for _, st := range summary {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool {
		ri, rj := a.severityRank(out[i].Severity), a.severityRank(out[j].Severity)
		if ri != rj {
			return ri < rj
		}
		return out[i].Severity < out[j].Severity
	})
	return out
}

func (a *Aggregator) severityRank(sev string) int {
	if sev == KeyOther {
		return model.RankUnset
	}
	return a.scheme.Rank(sev)
}

// Style returns the display style for a severity.
func (a *Aggregator) Style(severity string) string {
	return a.scheme.Style(strings.ToLower(severity))
}

// DisplayName returns the display name for a severity.
func (a *Aggregator) DisplayName(severity string) string {
	return a.scheme.DisplayName(strings.ToLower(severity))
}

func orSentinel(v, sentinel string) string {
	if v == "" {
		return sentinel
	}
	return v
}
