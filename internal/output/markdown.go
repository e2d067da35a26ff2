package output

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/dshills/sawmill/internal/check"
)

// MarkdownWriter outputs a PR-comment-friendly markdown report.
type MarkdownWriter struct {
	Options
}

func (m *MarkdownWriter) Write(w io.Writer, report *check.Report) error {
	ew := &errWriter{w: w}
	scheme := m.scheme()

	verdict := ":white_check_mark: PASS"
	if !report.Passed() {
		verdict = ":x: FAIL"
	}
	ew.printf("## Sawmill Check: %s\n\n", verdict)
	ew.printf("`%s` (plugin: %s, fail on: %s)\n\n",
		report.Metadata.LogFile, report.Metadata.Plugin, scheme.DisplayName(report.Metadata.FailOn))

	// Summary table
	ew.printf("| Severity | Count |\n")
	ew.printf("|----------|-------|\n")
	for _, sev := range severityOrder(scheme, report.Summary.BySeverity) {
		ew.printf("| %s | %d |\n", scheme.DisplayName(sev), report.Summary.BySeverity[sev])
	}
	ew.printf("| Waived | %d |\n", report.Summary.Waived)
	ew.printf("| **Total** | **%d** |\n\n", report.Summary.Total)

	if len(report.Issues) == 0 {
		ew.println("No issues found. :white_check_mark:")
	} else {
		grouped := make(map[string][]check.Issue)
		counts := make(map[string]int)
		for _, is := range report.Issues {
			grouped[is.Severity] = append(grouped[is.Severity], is)
			counts[is.Severity]++
		}
		for _, sev := range severityOrder(scheme, counts) {
			issues := grouped[sev]
			ew.printf("<details>\n<summary>%s %s (%d)</summary>\n\n",
				mdSeverityIcon(slices.Index(scheme.IDs(), sev)), scheme.DisplayName(sev), len(issues))
			for _, is := range issues {
				m.writeIssue(ew, is, report.Metadata.LogFile)
			}
			ew.printf("</details>\n\n")
		}
	}

	if len(report.Waived) > 0 {
		ew.printf("<details>\n<summary>Waived (%d)</summary>\n\n", len(report.Waived))
		for _, wi := range report.Waived {
			m.writeIssue(ew, wi.Issue, report.Metadata.LogFile)
			ew.printf("> Waived by %s `%s`: %s\n\n", wi.WaiverType, mdEscapeTicks(wi.WaiverPattern), wi.WaiverReason)
		}
		ew.printf("</details>\n\n")
	}

	if len(report.UnusedWaivers) > 0 {
		ew.printf("<details>\n<summary>Unused waivers (%d)</summary>\n\n", len(report.UnusedWaivers))
		for _, wv := range report.UnusedWaivers {
			ew.printf("- %s `%s`: %s\n", wv.Type, mdEscapeTicks(wv.Pattern), wv.Reason)
		}
		ew.printf("\n</details>\n\n")
	}

	if report.Metadata.RunID != "" {
		ew.printf("*Run %s at %s*\n", report.Metadata.RunID, report.Metadata.Timestamp)
	}
	return ew.err
}

func (m *MarkdownWriter) writeIssue(ew *errWriter, is check.Issue, logFile string) {
	title := is.MessageID
	if title == "" {
		title = "Line " + fmt.Sprint(is.Line)
	}
	ew.printf("### %s\n\n", title)
	ew.printf("**`%s`**\n\n", location(is, logFile))
	ew.printf("```\n%s\n```\n\n", is.Content)
	ew.printf("---\n\n")
}

// mdSeverityIcon picks an icon by position in the scheme, most severe first.
func mdSeverityIcon(pos int) string {
	switch pos {
	case 0:
		return ":red_circle:"
	case 1:
		return ":orange_circle:"
	case 2:
		return ":yellow_circle:"
	default:
		return ":white_circle:"
	}
}

func mdEscapeTicks(s string) string {
	return strings.ReplaceAll(s, "`", "'")
}
