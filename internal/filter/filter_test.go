package filter

import (
	"testing"

	"github.com/dshills/sawmill/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func msgs(raw ...string) []model.Message {
	out := make([]model.Message, len(raw))
	for i, r := range raw {
		out[i] = model.Message{StartLine: i + 1, EndLine: i + 1, RawText: r}
	}
	return out
}

func raws(ms []model.Message) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.RawText
	}
	return out
}

func def(id, pattern string, enabled bool) model.FilterDefinition {
	return model.FilterDefinition{ID: id, Pattern: pattern, Enabled: enabled}
}

func TestApplyFilter(t *testing.T) {
	in := msgs("ERROR: a", "warning: b", "Error: c\n  detail")
	tests := []struct {
		name          string
		pattern       string
		caseSensitive bool
		want          []string
	}{
		{"case sensitive", "ERROR", true, []string{"ERROR: a"}},
		{"case insensitive", "error", false, []string{"ERROR: a", "Error: c\n  detail"}},
		{"matches continuation", "detail", true, []string{"Error: c\n  detail"}},
		{"invalid regex", "([", true, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, raws(ApplyFilter(tt.pattern, in, tt.caseSensitive)))
		})
	}
}

func TestApplyFilters(t *testing.T) {
	in := msgs("ERROR: timing slack", "ERROR: drc", "WARNING: timing", "INFO: ok")
	tests := []struct {
		name    string
		filters []model.FilterDefinition
		mode    Mode
		want    []string
	}{
		{"none enabled passes all", []model.FilterDefinition{def("e", "ERROR", false)}, ModeAnd, raws(in)},
		{"no filters passes all", nil, ModeOr, raws(in)},
		{"and", []model.FilterDefinition{def("e", "ERROR", true), def("t", "timing", true)}, ModeAnd, []string{"ERROR: timing slack"}},
		{"or", []model.FilterDefinition{def("e", "ERROR", true), def("t", "timing", true)}, ModeOr, []string{"ERROR: timing slack", "ERROR: drc", "WARNING: timing"}},
		{"disabled ignored", []model.FilterDefinition{def("e", "ERROR", true), def("i", "INFO", false)}, ModeOr, []string{"ERROR: timing slack", "ERROR: drc"}},
		{"invalid skipped in and", []model.FilterDefinition{def("e", "ERROR", true), def("bad", "([", true)}, ModeAnd, []string{"ERROR: timing slack", "ERROR: drc"}},
		{"invalid skipped in or", []model.FilterDefinition{def("i", "INFO", true), def("bad", "([", true)}, ModeOr, []string{"INFO: ok"}},
		{"all invalid and passes all", []model.FilterDefinition{def("bad", "([", true)}, ModeAnd, raws(in)},
		{"all invalid or passes none", []model.FilterDefinition{def("bad", "([", true)}, ModeOr, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, raws(ApplyFilters(tt.filters, in, tt.mode)))
		})
	}
}

func TestApplySuppressions(t *testing.T) {
	in := msgs("ERROR: noise here", "ERROR: real", "INFO: x\n  more noise", "WARNING: NOISE")
	once := ApplySuppressions([]string{"noise"}, in)
	assert.Equal(t, []string{"ERROR: real", "WARNING: NOISE"}, raws(once))

	twice := ApplySuppressions([]string{"noise"}, once)
	assert.Equal(t, raws(once), raws(twice))

	assert.Equal(t, []string{"ERROR: real"}, raws(ApplySuppressions([]string{"(?i)noise"}, in)))
	assert.Equal(t, raws(in), raws(ApplySuppressions([]string{"(["}, in)), "invalid patterns are skipped")
	assert.Equal(t, []string{"ERROR: real", "WARNING: NOISE"}, raws(ApplySuppressions([]string{"([", "noise"}, in)))
}

func TestSuppressIDs(t *testing.T) {
	in := []model.Message{{MessageID: "A 1-1"}, {MessageID: "B 2-2"}, {}}
	got := SuppressIDs([]string{"A 1-1", ""}, in)
	require.Len(t, got, 2)
	assert.Equal(t, "B 2-2", got[0].MessageID)
	assert.Equal(t, "", got[1].MessageID)
}

func TestAtOrAbove(t *testing.T) {
	in := []model.Message{{Severity: "info"}, {Severity: "warning"}, {Severity: "critical"}, {}, {Severity: "bogus"}}
	got := AtOrAbove(model.DefaultScheme(), 1, in)
	require.Len(t, got, 2)
	assert.Equal(t, "warning", got[0].Severity)
	assert.Equal(t, "critical", got[1].Severity)
}

func TestByCategoryAndID(t *testing.T) {
	in := []model.Message{
		{MessageID: "Synth 8-1", Category: "synth"},
		{MessageID: "DRC 1-1", Category: "drc"},
		{},
	}
	assert.Len(t, ByCategory("SYNTH", in), 1)
	assert.Len(t, ByID("drc 1-1", in), 1)
	assert.Empty(t, ByCategory("", in))
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"": ModeAnd, "AND": ModeAnd, "or": ModeOr} {
		got, err := ParseMode(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseMode("xor")
	assert.Error(t, err)
}

func TestComputeStats(t *testing.T) {
	in := msgs("ERROR: timing", "ERROR: drc", "WARNING: timing", "INFO: ok")
	st := ComputeStats([]model.FilterDefinition{
		def("e", "ERROR", true),
		def("t", "timing", true),
		def("bad", "([", true),
		def("off", "INFO", false),
	}, in)
	assert.Equal(t, 4, st.Total)
	assert.Equal(t, 1, st.Matched)
	assert.InDelta(t, 25.0, st.MatchPercentage, 0.001)
	assert.Equal(t, map[string]int{"e": 2, "t": 2, "bad": 0}, st.PerFilter)

	empty := ComputeStats(nil, nil)
	assert.Zero(t, empty.MatchPercentage)
}

func TestAndSubsetOfOr(t *testing.T) {
	words := []string{"ERROR", "WARNING", "timing", "drc", "x", "^INFO"}
	rapid.Check(t, func(t *rapid.T) {
		lines := rapid.SliceOf(rapid.SampledFrom([]string{
			"ERROR: timing", "ERROR: drc", "WARNING: timing x", "INFO: x", "noise",
		})).Draw(t, "messages")
		patterns := rapid.SliceOfN(rapid.SampledFrom(words), 1, 4).Draw(t, "patterns")
		var filters []model.FilterDefinition
		for i, p := range patterns {
			filters = append(filters, def(string(rune('a'+i)), p, rapid.Bool().Draw(t, "enabled")))
		}
		in := msgs(lines...)
		and := ApplyFilters(filters, in, ModeAnd)
		or := ApplyFilters(filters, in, ModeOr)

		inOr := make(map[int]bool, len(or))
		for _, m := range or {
			inOr[m.StartLine] = true
		}
		for _, m := range and {
			if !inOr[m.StartLine] {
				t.Fatalf("message %d passes AND but not OR", m.StartLine)
			}
		}
	})
}
