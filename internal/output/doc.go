// Package output renders check reports and message listings.
//
// Check reports ([Writer]) come in five formats:
//   - text     human-readable terminal output (default)
//   - json     full structured report; field names are a stable CI contract
//   - yaml     the same document as YAML
//   - markdown PR-comment-friendly with collapsible sections per severity
//   - sarif    SARIF v2.1.0 for code-scanning upload; waived messages are
//     emitted as suppressed results
//
// Message listings ([ListWriter]) used by the show command support text,
// json and count. [WriteSummary] and [WriteGroups] draw lipgloss tables for
// severity summaries and grouped views.
package output
