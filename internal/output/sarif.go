package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dshills/sawmill/internal/check"
	"github.com/dshills/sawmill/internal/model"
)

// SARIFWriter outputs issues in SARIF v2.1.0 format. Waived messages are
// included as suppressed results so code-scanning UIs can show the audit
// trail.
type SARIFWriter struct {
	Options
}

func (s *SARIFWriter) Write(w io.Writer, report *check.Report) error {
	sarif := buildSARIF(report, s.scheme(), s.Version)
	data, err := json.MarshalIndent(sarif, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling SARIF: %w", err)
	}
	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("writing SARIF: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}

// writeSARIFRuns writes one SARIF log holding a run per report.
func writeSARIFRuns(w io.Writer, reports []*check.Report, opts Options) error {
	var merged sarifLog
	for i, r := range reports {
		l := buildSARIF(r, opts.scheme(), opts.Version)
		if i == 0 {
			merged = l
			continue
		}
		merged.Runs = append(merged.Runs, l.Runs...)
	}
	if len(reports) == 0 {
		merged = buildSARIF(&check.Report{}, opts.scheme(), opts.Version)
	}
	data, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling SARIF: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing SARIF: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}

// SARIF schema types (v2.1.0)

type sarifLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version,omitempty"`
	InformationURI string      `json:"informationUri"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string             `json:"id"`
	Name             string             `json:"name"`
	ShortDescription sarifMessage       `json:"shortDescription"`
	DefaultConfig    sarifDefaultConfig `json:"defaultConfiguration"`
}

type sarifDefaultConfig struct {
	Level string `json:"level"`
}

type sarifResult struct {
	RuleID       string             `json:"ruleId"`
	Level        string             `json:"level"`
	Message      sarifMessage       `json:"message"`
	Locations    []sarifLocation    `json:"locations,omitempty"`
	Suppressions []sarifSuppression `json:"suppressions,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           sarifRegion           `json:"region"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine int `json:"startLine"`
	EndLine   int `json:"endLine,omitempty"`
}

type sarifSuppression struct {
	Kind          string `json:"kind"`
	Justification string `json:"justification,omitempty"`
}

func buildSARIF(report *check.Report, scheme model.Scheme, version string) sarifLog {
	failOn, ok := scheme.LevelOf(report.Metadata.FailOn)
	if !ok {
		failOn = scheme.DefaultFailLevel()
	}

	var rules []sarifRule
	seen := make(map[string]bool)
	results := make([]sarifResult, 0, len(report.Issues)+len(report.Waived))

	add := func(is check.Issue, sup *sarifSuppression) {
		ruleID := ruleIDFor(is)
		level := severityToLevel(scheme, is.Severity, failOn)
		if !seen[ruleID] {
			seen[ruleID] = true
			rules = append(rules, sarifRule{
				ID:               ruleID,
				Name:             scheme.DisplayName(is.Severity),
				ShortDescription: sarifMessage{Text: firstLine(is.Content)},
				DefaultConfig:    sarifDefaultConfig{Level: level},
			})
		}
		res := sarifResult{
			RuleID:    ruleID,
			Level:     level,
			Message:   sarifMessage{Text: is.Content},
			Locations: []sarifLocation{sarifLocationFor(is, report.Metadata.LogFile)},
		}
		if sup != nil {
			res.Suppressions = []sarifSuppression{*sup}
		}
		results = append(results, res)
	}

	for _, is := range report.Issues {
		add(is, nil)
	}
	for _, wi := range report.Waived {
		add(wi.Issue, &sarifSuppression{Kind: "external", Justification: wi.WaiverReason})
	}

	return sarifLog{
		Version: "2.1.0",
		Schema:  "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/main/sarif-2.1/schema/sarif-schema-2.1.0.json",
		Runs: []sarifRun{
			{
				Tool: sarifTool{
					Driver: sarifDriver{
						Name:           "sawmill",
						Version:        version,
						InformationURI: "https://github.com/dshills/sawmill",
						Rules:          rules,
					},
				},
				Results: results,
			},
		},
	}
}

// severityToLevel maps a severity to a SARIF level relative to the fail-on
// threshold: failing severities are errors, other declared non-lowest
// levels warnings, everything else notes.
func severityToLevel(scheme model.Scheme, severity string, failOn int) string {
	lvl, ok := scheme.LevelOf(severity)
	switch {
	case !ok:
		return "note"
	case lvl >= failOn:
		return "error"
	case lvl > 0:
		return "warning"
	default:
		return "note"
	}
}

func ruleIDFor(is check.Issue) string {
	if is.MessageID != "" {
		return is.MessageID
	}
	if is.Severity != "" {
		return "sawmill/" + is.Severity
	}
	return "sawmill/other"
}

// sarifLocationFor prefers the referenced source file and falls back to the
// log's own line range.
func sarifLocationFor(is check.Issue, logFile string) sarifLocation {
	if is.File != "" && is.FileLine > 0 {
		return sarifLocation{PhysicalLocation: sarifPhysicalLocation{
			ArtifactLocation: sarifArtifactLocation{URI: is.File},
			Region:           sarifRegion{StartLine: is.FileLine},
		}}
	}
	return sarifLocation{PhysicalLocation: sarifPhysicalLocation{
		ArtifactLocation: sarifArtifactLocation{URI: logFile},
		Region:           sarifRegion{StartLine: is.Line, EndLine: is.EndLine},
	}}
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
