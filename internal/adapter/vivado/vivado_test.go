package vivado

import (
	"os"
	"testing"

	"github.com/dshills/sawmill/internal/adapter"
	"github.com/dshills/sawmill/internal/aggregate"
	"github.com/dshills/sawmill/internal/check"
	"github.com/dshills/sawmill/internal/filter"
	"github.com/dshills/sawmill/internal/segment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile("testdata/synth.log")
	require.NoError(t, err)
	return string(data)
}

func TestNewValidates(t *testing.T) {
	a := New()
	require.NoError(t, a.Validate())
	r := adapter.NewRegistry()
	require.NoError(t, r.Register(a))
}

func TestParseFixture(t *testing.T) {
	msgs := adapter.Parse(New(), loadFixture(t))
	require.Len(t, msgs, 10)

	cw := msgs[4]
	assert.Equal(t, "critical_warning", cw.Severity)
	assert.Equal(t, "Constraints 18-1055", cw.MessageID)
	assert.Equal(t, "constraints", cw.Category)
	assert.Equal(t, 11, cw.StartLine)
	assert.Equal(t, 13, cw.EndLine)
	assert.Contains(t, cw.RawText, "Previous: create_clock")

	spaced := msgs[3]
	require.NotNil(t, spaced.FileRef)
	assert.Equal(t, "/home/dev/proj/rtl/fifo ctrl.v", spaced.FileRef.Path)
	assert.Equal(t, 53, spaced.FileRef.Line)
	assert.Equal(t, "Unused sequential element tmp_reg was removed.", spaced.Content)

	mod, ok := msgs[2].Metadata.Get("module")
	assert.True(t, ok)
	assert.Equal(t, "fifo_ctrl", mod)

	errMsg := msgs[5]
	assert.Equal(t, "error", errMsg.Severity)
	assert.Equal(t, 14, errMsg.EndLine, "plain text line ends the span")

	drc := msgs[6]
	assert.Equal(t, "", drc.MessageID, "DRC NSTD-1 is not a numeric id")
	assert.Equal(t, 19, drc.StartLine)

	route := msgs[8]
	assert.Equal(t, "Route 35-328", route.MessageID)
	assert.Equal(t, 21, route.StartLine)
	assert.Equal(t, 24, route.EndLine, "table rows and separators continue")

	last := msgs[9]
	assert.Equal(t, 26, last.StartLine)
}

func TestCanHandle(t *testing.T) {
	a := New()
	tests := []struct {
		name string
		path string
		head []string
		want float64
	}{
		{"header", "x.log", []string{"#---", "# Vivado v2024.1 (64-bit)"}, 0.95},
		{"known ids", "x.log", []string{"[Synth 8-1]", "[DRC 1-2]", "[Common 17-3]"}, 0.85},
		{"severity lines", "x.log", []string{"ERROR: a", "ERROR: b", "WARNING: c", "INFO: d", "CRITICAL WARNING: e"}, 0.6},
		{"filename", "/logs/Vivado_run.log", []string{"nothing"}, 0.4},
		{"nothing", "build.log", []string{"gcc -c main.c"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, a.CanHandle(tt.path, tt.head), 1e-9)
		})
	}
}

func TestCanHandleReadsOnlyHead(t *testing.T) {
	head := make([]string, 60)
	head[55] = "# Vivado v2025.1"
	assert.Zero(t, New().CanHandle("x.log", head))
}

func TestPresets(t *testing.T) {
	fs := New().Filters()
	require.Len(t, fs, 10)
	enabled := 0
	for _, f := range fs {
		if f.Enabled {
			enabled++
		}
		_, err := f.Regexp()
		assert.NoError(t, err, f.ID)
	}
	assert.Equal(t, 3, enabled)
}

func TestEndToEndCheck(t *testing.T) {
	a := New()
	msgs := adapter.Parse(a, loadFixture(t))

	res := check.Decide(check.Input{Messages: msgs, Scheme: a.Scheme()})
	assert.Equal(t, check.Fail, res.Verdict)
	assert.Equal(t, 1, res.FailOnLevel)
	assert.Equal(t, 2, res.BySeverity["error"])
	assert.Equal(t, 4, res.BySeverity["info"])

	warnOnly := filter.ApplyFilters(a.Filters(), msgs, filter.ModeOr)
	assert.Len(t, warnOnly, 6)

	agg := aggregate.New(a.Scheme(), a.GroupingFields())
	groups, err := agg.GroupBy(msgs, "module")
	require.NoError(t, err)
	assert.Equal(t, 1, groups["fifo_ctrl"].Count)
	assert.Equal(t, 1, groups["missing_ip"].Count)
}

func TestSegmentIdempotentOnFixture(t *testing.T) {
	a := New()
	for _, m := range adapter.Parse(a, loadFixture(t)) {
		again := a.Segment(segment.SplitLines(m.RawText))
		require.Len(t, again, 1, m.RawText)
		assert.Equal(t, m.EndLine-m.StartLine+1, again[0].EndLine)
	}
}
