package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/dshills/sawmill/internal/check"
)

// TextWriter outputs a human-readable check report.
type TextWriter struct {
	Options
}

func (t *TextWriter) Write(w io.Writer, report *check.Report) error {
	ew := &errWriter{w: w}
	p := painter{enabled: t.Color}
	scheme := t.scheme()

	ew.printf("Sawmill Check: %s (plugin: %s)\n", report.Metadata.LogFile, report.Metadata.Plugin)
	if repo := report.Metadata.Repo; repo != nil {
		ew.printf("Repository: %s (branch: %s)\n", repo.Root, repo.Branch)
	}
	ew.println(strings.Repeat("─", 60))
	ew.printf("Messages: %d total, %d waived\n", report.Summary.Total, report.Summary.Waived)
	for _, sev := range severityOrder(scheme, report.Summary.BySeverity) {
		n := report.Summary.BySeverity[sev]
		label := fmt.Sprintf("%-18s", scheme.DisplayName(sev))
		ew.printf("  %s %d\n", p.paint(scheme.Style(sev), label), n)
	}
	ew.println(strings.Repeat("─", 60))

	if len(report.Issues) == 0 {
		ew.printf("\nNo issues at or above %s.\n", scheme.DisplayName(report.Metadata.FailOn))
	} else {
		ew.printf("\nIssues (%d) at or above %s:\n", len(report.Issues), scheme.DisplayName(report.Metadata.FailOn))
		for _, is := range report.Issues {
			t.writeIssue(ew, p, is, report.Metadata.LogFile)
		}
	}

	if t.ShowWaived && len(report.Waived) > 0 {
		ew.printf("\nWaived (%d):\n", len(report.Waived))
		for _, wi := range report.Waived {
			t.writeIssue(ew, p, wi.Issue, report.Metadata.LogFile)
			reason := wi.WaiverReason
			if wi.WaiverTicket != "" {
				reason += " (" + wi.WaiverTicket + ")"
			}
			for _, line := range wrapText("waived: "+reason, 70) {
				ew.printf("      %s\n", p.paint("dim", line))
			}
		}
	}

	if t.ReportUnused && len(report.UnusedWaivers) > 0 {
		ew.printf("\nUnused waivers (%d):\n", len(report.UnusedWaivers))
		for _, wv := range report.UnusedWaivers {
			ew.printf("  %s %q  %s\n", wv.Type, wv.Pattern, wv.Reason)
		}
	}

	if len(report.ExpiredWaivers) > 0 {
		ew.printf("\nExpired waivers (%d):\n", len(report.ExpiredWaivers))
		for _, wv := range report.ExpiredWaivers {
			ew.printf("  %s %q expired %s\n", wv.Type, wv.Pattern, wv.Expires)
		}
	}

	ew.printf("\n%s\n", strings.Repeat("─", 60))
	if report.Passed() {
		ew.printf("Result: %s\n", p.paint("green bold", "PASS"))
	} else {
		ew.printf("Result: %s\n", p.paint("red bold", "FAIL"))
	}
	return ew.err
}

func (t *TextWriter) writeIssue(ew *errWriter, p painter, is check.Issue, logFile string) {
	scheme := t.scheme()
	tag := "[" + scheme.DisplayName(is.Severity) + "]"
	id := ""
	if is.MessageID != "" {
		id = " [" + is.MessageID + "]"
	}
	ew.printf("\n  %s%s %s\n", p.paint(scheme.Style(is.Severity), tag), id, location(is, logFile))
	for _, line := range wrapText(is.Content, 70) {
		ew.printf("    %s\n", line)
	}
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}

func wrapText(text string, width int) []string {
	if len(text) <= width {
		return []string{text}
	}
	var lines []string
	words := strings.Fields(text)
	var current strings.Builder
	for _, word := range words {
		if current.Len()+len(word)+1 > width && current.Len() > 0 {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}
