package output

import (
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/dshills/sawmill/internal/check"
	"github.com/dshills/sawmill/internal/model"
)

// Options carries rendering settings shared by all writers.
type Options struct {
	Scheme       model.Scheme
	Color        bool
	ShowWaived   bool
	ReportUnused bool
	Version      string
}

func (o Options) scheme() model.Scheme { return o.Scheme.OrDefault() }

// Writer writes a check report in a specific format.
type Writer interface {
	Write(w io.Writer, report *check.Report) error
}

// Formats lists the supported report formats.
func Formats() []string {
	return []string{"text", "json", "yaml", "markdown", "sarif"}
}

// GetWriter returns a writer for the specified format.
func GetWriter(format string, opts Options) (Writer, error) {
	switch format {
	case "text", "":
		return &TextWriter{Options: opts}, nil
	case "json":
		return &JSONWriter{}, nil
	case "yaml":
		return &YAMLWriter{}, nil
	case "markdown", "md":
		return &MarkdownWriter{Options: opts}, nil
	case "sarif":
		return &SARIFWriter{Options: opts}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// WriteReport writes the report to the specified output (file path or stdout).
func WriteReport(report *check.Report, format, outPath string, opts Options) error {
	writer, err := GetWriter(format, opts)
	if err != nil {
		return err
	}

	var w io.Writer
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		w = f
	} else {
		w = os.Stdout
	}

	return writer.Write(w, report)
}

// WriteAll writes several reports to w as one document: a JSON array, a
// YAML stream, a SARIF log with one run per report, or text and markdown
// reports one after another. A single report is written as by its Writer.
func WriteAll(w io.Writer, reports []*check.Report, format string, opts Options) error {
	writer, err := GetWriter(format, opts)
	if err != nil {
		return err
	}
	if len(reports) == 1 {
		return writer.Write(w, reports[0])
	}
	switch writer.(type) {
	case *JSONWriter:
		if reports == nil {
			reports = []*check.Report{}
		}
		return writeJSON(w, reports)
	case *YAMLWriter:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		for _, r := range reports {
			if err := enc.Encode(r); err != nil {
				return fmt.Errorf("marshaling YAML: %w", err)
			}
		}
		return enc.Close()
	case *SARIFWriter:
		return writeSARIFRuns(w, reports, opts)
	}
	for i, r := range reports {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if err := writer.Write(w, r); err != nil {
			return err
		}
	}
	return nil
}

// severityOrder returns the keys of counts in scheme order, followed by
// undeclared severities sorted by name.
func severityOrder(scheme model.Scheme, counts map[string]int) []string {
	var keys []string
	declared := make(map[string]bool)
	for _, id := range scheme.IDs() {
		declared[id] = true
		if _, ok := counts[id]; ok {
			keys = append(keys, id)
		}
	}
	var extra []string
	for k := range counts {
		if !declared[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return append(keys, extra...)
}

// location renders an issue's position: the referenced source file when
// known, else the log line range.
func location(is check.Issue, logFile string) string {
	if is.File != "" {
		if is.FileLine > 0 {
			return fmt.Sprintf("%s:%d", is.File, is.FileLine)
		}
		return is.File
	}
	if is.EndLine > is.Line {
		return fmt.Sprintf("%s:%d-%d", logFile, is.Line, is.EndLine)
	}
	return fmt.Sprintf("%s:%d", logFile, is.Line)
}
