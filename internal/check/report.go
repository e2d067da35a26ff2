package check

import (
	"time"

	"github.com/dshills/sawmill/internal/model"
	"github.com/dshills/sawmill/internal/waiver"
)

// RunInfo is the run metadata attached to a report.
type RunInfo struct {
	Source    string
	Tool      string
	Version   string
	RunID     string
	Timestamp time.Time
	Repo      *RepoInfo
	Now       time.Time // for waiver expiry; zero means Timestamp
}

// RepoInfo identifies the repository a log was produced from.
type RepoInfo struct {
	Root   string `json:"root" yaml:"root"`
	Head   string `json:"head" yaml:"head"`
	Branch string `json:"branch" yaml:"branch"`
}

// Metadata describes the run that produced a report.
type Metadata struct {
	LogFile   string    `json:"log_file" yaml:"log_file"`
	Plugin    string    `json:"plugin" yaml:"plugin"`
	Version   string    `json:"version,omitempty" yaml:"version,omitempty"`
	RunID     string    `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Timestamp string    `json:"timestamp" yaml:"timestamp"`
	FailOn    string    `json:"fail_on" yaml:"fail_on"`
	Repo      *RepoInfo `json:"repo,omitempty" yaml:"repo,omitempty"`
}

// Summary holds the report's headline counts. Total counts every
// candidate, waived or not; BySeverity counts unwaived candidates only.
type Summary struct {
	Total      int            `json:"total" yaml:"total"`
	BySeverity map[string]int `json:"by_severity" yaml:"by_severity"`
	Waived     int            `json:"waived" yaml:"waived"`
}

// Issue is an unwaived message at or above the fail-on level.
type Issue struct {
	MessageID string `json:"message_id" yaml:"message_id"`
	Severity  string `json:"severity" yaml:"severity"`
	Content   string `json:"content" yaml:"content"`
	Line      int    `json:"line" yaml:"line"`
	EndLine   int    `json:"end_line" yaml:"end_line"`
	File      string `json:"file,omitempty" yaml:"file,omitempty"`
	FileLine  int    `json:"file_line,omitempty" yaml:"file_line,omitempty"`
}

// WaivedIssue is a message exonerated by a waiver.
type WaivedIssue struct {
	Issue         `yaml:",inline"`
	WaiverReason  string `json:"waiver_reason" yaml:"waiver_reason"`
	WaiverType    string `json:"waiver_type" yaml:"waiver_type"`
	WaiverPattern string `json:"waiver_pattern" yaml:"waiver_pattern"`
	WaiverTicket  string `json:"waiver_ticket,omitempty" yaml:"waiver_ticket,omitempty"`
}

// Report is the structured output of a check run. Field names are a stable
// contract for CI consumers.
type Report struct {
	Metadata       Metadata        `json:"metadata" yaml:"metadata"`
	Summary        Summary         `json:"summary" yaml:"summary"`
	Issues         []Issue         `json:"issues" yaml:"issues"`
	Waived         []WaivedIssue   `json:"waived" yaml:"waived"`
	UnusedWaivers  []waiver.Waiver `json:"unused_waivers" yaml:"unused_waivers"`
	ExpiredWaivers []waiver.Waiver `json:"expired_waivers,omitempty" yaml:"expired_waivers,omitempty"`
	ExitCode       int             `json:"exit_code" yaml:"exit_code"`
}

// Passed reports whether the check passed.
func (r *Report) Passed() bool { return r.ExitCode == 0 }

// BuildReport renders res as a Report.
func BuildReport(res *Result, info RunInfo) *Report {
	failOn := ""
	for _, l := range res.Scheme.Levels() {
		if l.Level == res.FailOnLevel {
			failOn = l.ID
		}
	}
	now := info.Now
	if now.IsZero() {
		now = info.Timestamp
	}

	r := &Report{
		Metadata: Metadata{
			LogFile:   info.Source,
			Plugin:    info.Tool,
			Version:   info.Version,
			RunID:     info.RunID,
			Timestamp: info.Timestamp.UTC().Format(time.RFC3339),
			FailOn:    failOn,
			Repo:      info.Repo,
		},
		Summary: Summary{
			Total:      res.Total,
			BySeverity: make(map[string]int, len(res.BySeverity)),
			Waived:     len(res.Waived),
		},
		Issues:        make([]Issue, 0, len(res.Issues)),
		Waived:        make([]WaivedIssue, 0, len(res.Waived)),
		UnusedWaivers: append([]waiver.Waiver{}, res.UnusedWaivers...),
		ExitCode:      res.ExitCode(),
	}
	for k, v := range res.BySeverity {
		r.Summary.BySeverity[k] = v
	}
	for i := range res.Issues {
		r.Issues = append(r.Issues, toIssue(&res.Issues[i]))
	}
	seenExpired := make(map[waiver.Waiver]bool)
	for i := range res.Waived {
		wm := &res.Waived[i]
		r.Waived = append(r.Waived, WaivedIssue{
			Issue:         toIssue(&wm.Message),
			WaiverReason:  wm.Waiver.Reason,
			WaiverType:    string(wm.Waiver.Type),
			WaiverPattern: wm.Waiver.Pattern,
			WaiverTicket:  wm.Waiver.Ticket,
		})
		if wm.Waiver.Expired(now) && !seenExpired[wm.Waiver] {
			seenExpired[wm.Waiver] = true
			r.ExpiredWaivers = append(r.ExpiredWaivers, wm.Waiver)
		}
	}
	return r
}

func toIssue(m *model.Message) Issue {
	is := Issue{
		MessageID: m.MessageID,
		Severity:  m.Severity,
		Content:   m.Content,
		Line:      m.StartLine,
		EndLine:   m.EndLine,
	}
	if m.FileRef != nil {
		is.File = m.FileRef.Path
		is.FileLine = m.FileRef.Line
	}
	return is
}
