package check

import (
	"github.com/dshills/sawmill/internal/filter"
	"github.com/dshills/sawmill/internal/model"
	"github.com/dshills/sawmill/internal/waiver"
)

// Verdict is the outcome of a check.
type Verdict string

const (
	Pass Verdict = "pass"
	Fail Verdict = "fail"
)

// Input is everything a check decision depends on. A zero Scheme means the
// default scheme; a nil FailOn means the scheme's default fail level.
type Input struct {
	Messages     []model.Message
	Filters      []model.FilterDefinition
	FilterMode   filter.Mode
	Suppressions []string
	SuppressIDs  []string
	Waivers      []waiver.Waiver
	Scheme       model.Scheme
	FailOn       *int
}

// WaivedMessage pairs a message with the waiver that exonerated it.
type WaivedMessage struct {
	Message model.Message
	Waiver  waiver.Waiver
}

// Result is a finished check decision.
//
// Counted holds the unwaived candidates. Issues is the subset at or above
// FailOnLevel. BySeverity counts Counted per severity, with a zero entry
// for every level in the scheme and "other" for unset severities.
type Result struct {
	Verdict       Verdict
	FailOnLevel   int
	Scheme        model.Scheme
	Total         int
	Counted       []model.Message
	Issues        []model.Message
	Waived        []WaivedMessage
	UnusedWaivers []waiver.Waiver
	BySeverity    map[string]int
}

// Passed reports whether the verdict is Pass.
func (r *Result) Passed() bool { return r.Verdict == Pass }

// ExitCode is 0 for Pass and 1 for Fail.
func (r *Result) ExitCode() int {
	if r.Verdict == Fail {
		return 1
	}
	return 0
}

// Decide evaluates in. Messages with unset or undeclared severity are
// counted but never fail the check. An empty message set passes.
func Decide(in Input) *Result {
	scheme := in.Scheme.OrDefault()
	failOn := scheme.DefaultFailLevel()
	if in.FailOn != nil {
		failOn = *in.FailOn
	}

	candidates := filter.ApplyFilters(in.Filters, in.Messages, in.FilterMode)
	candidates = filter.ApplySuppressions(in.Suppressions, candidates)
	candidates = filter.SuppressIDs(in.SuppressIDs, candidates)

	res := &Result{
		Verdict:     Pass,
		FailOnLevel: failOn,
		Scheme:      scheme,
		Total:       len(candidates),
		BySeverity:  make(map[string]int),
	}
	for _, id := range scheme.IDs() {
		res.BySeverity[id] = 0
	}

	matcher := waiver.NewMatcher(in.Waivers)
	used := make(map[*waiver.Waiver]bool)

	for i := range candidates {
		msg := &candidates[i]
		all := matcher.MatchAll(msg)
		for _, w := range all {
			used[w] = true
		}
		if len(all) > 0 {
			// MatchAll is in priority order, so its head is what Match returns.
			res.Waived = append(res.Waived, WaivedMessage{Message: *msg, Waiver: *all[0]})
			continue
		}

		res.Counted = append(res.Counted, *msg)
		lvl, declared := scheme.LevelOf(msg.Severity)
		if declared {
			res.BySeverity[msg.Severity]++
		} else {
			res.BySeverity[orOther(msg.Severity)]++
		}
		if declared && lvl >= failOn {
			res.Issues = append(res.Issues, *msg)
			res.Verdict = Fail
		}
	}

	all := matcher.Waivers()
	for i := range all {
		if !used[&all[i]] {
			res.UnusedWaivers = append(res.UnusedWaivers, all[i])
		}
	}
	return res
}

func orOther(sev string) string {
	if sev == "" {
		return "other"
	}
	return sev
}
