package check

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/dshills/sawmill/internal/filter"
	"github.com/dshills/sawmill/internal/model"
	"github.com/dshills/sawmill/internal/waiver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func msg(line int, sev, id, raw string) model.Message {
	return model.Message{StartLine: line, EndLine: line, Severity: sev, MessageID: id, RawText: raw, Content: raw}
}

func level(n int) *int { return &n }

func idWaiver(id, reason string) waiver.Waiver {
	return waiver.Waiver{Type: waiver.TypeID, Pattern: id, Reason: reason, Author: "a", Date: "2026-01-01"}
}

func TestDecideSingleError(t *testing.T) {
	msgs := []model.Message{msg(1, "error", "Test 1-1", "ERROR: [Test 1-1] broke")}
	errLevel, _ := model.DefaultScheme().ResolveLevel("error")

	res := Decide(Input{Messages: msgs, FailOn: &errLevel})
	assert.Equal(t, Fail, res.Verdict)
	assert.Len(t, res.Issues, 1)
	assert.Empty(t, res.Waived)

	res = Decide(Input{Messages: msgs, FailOn: &errLevel, Waivers: []waiver.Waiver{idWaiver("Test 1-1", "known")}})
	assert.Equal(t, Pass, res.Verdict)
	assert.Empty(t, res.Issues)
	require.Len(t, res.Waived, 1)
	assert.Equal(t, "known", res.Waived[0].Waiver.Reason)
	assert.Empty(t, res.UnusedWaivers)
}

func TestDecideEmptyPasses(t *testing.T) {
	res := Decide(Input{FailOn: level(0)})
	assert.Equal(t, Pass, res.Verdict)
	assert.Zero(t, res.Total)
	assert.Equal(t, 0, res.ExitCode())
}

func TestDecideDefaultFailOn(t *testing.T) {
	info := Decide(Input{Messages: []model.Message{msg(1, "info", "", "INFO: x")}})
	assert.Equal(t, Pass, info.Verdict, "info never fails by default")
	assert.Equal(t, 1, info.FailOnLevel)

	warn := Decide(Input{Messages: []model.Message{msg(1, "warning", "", "WARNING: x")}})
	assert.Equal(t, Fail, warn.Verdict)
	assert.Equal(t, 1, warn.ExitCode())
}

func TestDecideUnsetSeverityNeverFails(t *testing.T) {
	res := Decide(Input{Messages: []model.Message{msg(1, "", "", "mystery"), msg(2, "bogus", "", "bogus")}, FailOn: level(0)})
	assert.Equal(t, Pass, res.Verdict)
	assert.Equal(t, 1, res.BySeverity["other"])
	assert.Equal(t, 1, res.BySeverity["bogus"])
	assert.Len(t, res.Counted, 2)
}

func TestDecideFiltersAndSuppressions(t *testing.T) {
	msgs := []model.Message{
		msg(1, "error", "A 1-1", "ERROR: [A 1-1] noisy thing"),
		msg(2, "error", "B 1-1", "ERROR: [B 1-1] real"),
		msg(3, "error", "C 1-1", "ERROR: [C 1-1] suppressed by id"),
		msg(4, "warning", "D 1-1", "WARNING: [D 1-1] filtered out"),
	}
	res := Decide(Input{
		Messages:     msgs,
		Filters:      []model.FilterDefinition{{ID: "errors", Pattern: "^ERROR", Enabled: true}},
		FilterMode:   filter.ModeAnd,
		Suppressions: []string{"noisy"},
		SuppressIDs:  []string{"C 1-1"},
	})
	assert.Equal(t, 1, res.Total)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, "B 1-1", res.Issues[0].MessageID)
}

func TestDecideUnusedWaivers(t *testing.T) {
	msgs := []model.Message{msg(1, "error", "A 1-1", "ERROR: [A 1-1] x")}
	waivers := []waiver.Waiver{
		idWaiver("A 1-1", "primary"),
		{Type: waiver.TypePattern, Pattern: "x$", Reason: "shadowed", Author: "a", Date: "d"},
		idWaiver("Route 99-99", "stale"),
	}
	res := Decide(Input{Messages: msgs, Waivers: waivers})
	assert.Equal(t, Pass, res.Verdict)
	require.Len(t, res.UnusedWaivers, 1, "shadowed waivers still count as used")
	assert.Equal(t, "Route 99-99", res.UnusedWaivers[0].Pattern)
}

func TestDecideCustomScheme(t *testing.T) {
	scheme := model.MustScheme([]model.SeverityLevel{{ID: "note", Level: 0}, {ID: "bad", Level: 1}, {ID: "worse", Level: 2}})
	res := Decide(Input{Messages: []model.Message{msg(1, "bad", "", "bad")}, Scheme: scheme})
	assert.Equal(t, Fail, res.Verdict)
	assert.Equal(t, map[string]int{"note": 0, "bad": 1, "worse": 0}, res.BySeverity)

	res = Decide(Input{Messages: []model.Message{msg(1, "bad", "", "bad")}, Scheme: scheme, FailOn: level(2)})
	assert.Equal(t, Pass, res.Verdict)
}

func TestFailOnMonotonic(t *testing.T) {
	sevs := []string{"", "info", "warning", "error", "critical_warning", "critical", "bogus"}
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 8).Draw(t, "n")
		var msgs []model.Message
		for i := 0; i < n; i++ {
			sev := rapid.SampledFrom(sevs).Draw(t, "sev")
			id := rapid.SampledFrom([]string{"", "A 1-1", "B 2-2"}).Draw(t, "id")
			msgs = append(msgs, msg(i+1, sev, id, sev+" "+id))
		}
		var waivers []waiver.Waiver
		if rapid.Bool().Draw(t, "waive") {
			waivers = append(waivers, idWaiver("A 1-1", "r"))
		}
		lo := rapid.IntRange(0, 5).Draw(t, "lo")
		hi := rapid.IntRange(lo, 5).Draw(t, "hi")

		atLo := Decide(Input{Messages: msgs, Waivers: waivers, FailOn: level(lo)})
		atHi := Decide(Input{Messages: msgs, Waivers: waivers, FailOn: level(hi)})
		if atLo.Verdict == Pass && atHi.Verdict == Fail {
			t.Fatalf("raising fail-on from %d to %d turned Pass into Fail", lo, hi)
		}
	})
}

func TestBuildReport(t *testing.T) {
	msgs := []model.Message{
		msg(2, "error", "Synth 8-1", "ERROR: [Synth 8-1] e1"),
		msg(3, "warning", "Vivado 12-1", "WARNING: [Vivado 12-1] w1"),
		msg(4, "info", "Common 17-1", "INFO: [Common 17-1] i1"),
	}
	msgs[0].FileRef = &model.FileRef{Path: "/src/top.v", Line: 7}
	waivers := []waiver.Waiver{
		{Type: waiver.TypeID, Pattern: "Vivado 12-1", Reason: "Known issue", Author: "a", Date: "2025-01-01", Expires: "2025-06-01", Ticket: "HW-1"},
		idWaiver("Route 99-99", "stale"),
	}
	res := Decide(Input{Messages: msgs, Waivers: waivers})
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	rep := BuildReport(res, RunInfo{Source: "build.log", Tool: "vivado", RunID: "r1", Timestamp: ts})

	assert.Equal(t, 1, rep.ExitCode)
	assert.False(t, rep.Passed())
	assert.Equal(t, 3, rep.Summary.Total)
	assert.Equal(t, 1, rep.Summary.Waived)
	assert.Equal(t, 1, rep.Summary.BySeverity["error"])
	assert.Equal(t, 0, rep.Summary.BySeverity["warning"])
	assert.Equal(t, 1, rep.Summary.BySeverity["info"])
	assert.Equal(t, 0, rep.Summary.BySeverity["critical"])

	require.Len(t, rep.Issues, 1)
	assert.Equal(t, "Synth 8-1", rep.Issues[0].MessageID)
	assert.Equal(t, 2, rep.Issues[0].Line)
	assert.Equal(t, "/src/top.v", rep.Issues[0].File)

	require.Len(t, rep.Waived, 1)
	assert.Equal(t, "Known issue", rep.Waived[0].WaiverReason)
	require.Len(t, rep.UnusedWaivers, 1)
	assert.Equal(t, "Route 99-99", rep.UnusedWaivers[0].Pattern)
	require.Len(t, rep.ExpiredWaivers, 1)

	assert.Equal(t, "warning", rep.Metadata.FailOn)
	assert.Equal(t, "2026-01-02T03:04:05Z", rep.Metadata.Timestamp)

	data, err := json.Marshal(rep)
	require.NoError(t, err)
	var generic map[string]any
	require.NoError(t, json.Unmarshal(data, &generic))
	for _, key := range []string{"summary", "issues", "waived", "unused_waivers", "exit_code", "metadata"} {
		assert.Contains(t, generic, key)
	}
	waived := generic["waived"].([]any)[0].(map[string]any)
	assert.Equal(t, "Vivado 12-1", waived["message_id"])
	assert.Equal(t, "Known issue", waived["waiver_reason"])
	issue := generic["issues"].([]any)[0].(map[string]any)
	for _, key := range []string{"message_id", "severity", "content", "line"} {
		assert.Contains(t, issue, key)
	}
}

func TestBuildReportEmptyListsAreArrays(t *testing.T) {
	rep := BuildReport(Decide(Input{}), RunInfo{Timestamp: time.Unix(0, 0)})
	data, err := json.Marshal(rep)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"issues":[]`)
	assert.Contains(t, string(data), `"waived":[]`)
	assert.Contains(t, string(data), `"unused_waivers":[]`)
}

func TestIssuesExcludeBelowFailOn(t *testing.T) {
	msgs := []model.Message{
		msg(1, "info", "Common 17-1", "INFO: [Common 17-1] loading"),
		msg(2, "error", "Synth 8-439", "ERROR: [Synth 8-439] missing"),
	}
	res := Decide(Input{Messages: msgs})
	assert.Len(t, res.Counted, 2)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, "Synth 8-439", res.Issues[0].MessageID)

	r := BuildReport(res, RunInfo{Source: "x.log", Tool: "t", Timestamp: time.Unix(0, 0)})
	assert.Equal(t, 2, r.Summary.Total)
	assert.Equal(t, 1, r.Summary.BySeverity["info"])
	assert.Equal(t, 1, r.Summary.BySeverity["error"])
	require.Len(t, r.Issues, 1)
	assert.Equal(t, "error", r.Issues[0].Severity)
}
