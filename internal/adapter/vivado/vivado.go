// Package vivado is the adapter for Xilinx Vivado synthesis and
// implementation logs.
//
// Messages have the form
//
//	SEVERITY: [Category N-M] text [/path/file.v:53]
//
// and may continue over indented lines, table rows, and separator lines.
package vivado

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dshills/sawmill/internal/adapter"
	"github.com/dshills/sawmill/internal/classify"
	"github.com/dshills/sawmill/internal/model"
	"github.com/dshills/sawmill/internal/segment"
)

// Name is the adapter's registry name.
const Name = "vivado"

const (
	startPattern        = `^(CRITICAL WARNING|ERROR|WARNING|INFO):`
	continuationPattern = `^(\s+|\||-+$|=+$)`
	maxSpan             = 1000
)

var (
	headerRe    = regexp.MustCompile(`(?m)^#.*Vivado v\d+\.\d+`)
	messageIDRe = regexp.MustCompile(`\[([A-Za-z_]+ \d+-\d+)\]`)
)

var knownCategories = map[string]bool{
	"Synth": true, "Vivado": true, "IP_Flow": true, "Common": true, "DRC": true,
	"Timing": true, "Route": true, "Opt": true, "Physopt": true, "Power": true,
	"Device": true, "Project": true, "Constraints": true,
}

var patterns = classify.Patterns{
	Severity: []classify.Pattern{
		{ID: "critical_warning", Pattern: `^CRITICAL WARNING:\s*`},
		{ID: "error", Pattern: `^ERROR:\s*`},
		{ID: "warning", Pattern: `^WARNING:\s*`},
		{ID: "info", Pattern: `^INFO:\s*`},
	},
	ID:            messageIDRe.String(),
	FileRef:       `(?m)\[([^\]]+):(\d+)\]\s*$`,
	FileRefInline: `(/[^\s\[\]]+\.\w+):(\d+)`,
	Metadata: []classify.Pattern{
		{ID: "module", Pattern: `module '([^']+)'`},
	},
}

var levels = []model.SeverityLevel{
	{ID: "critical_warning", Name: "Critical Warning", Level: 3, Style: "red bold"},
	{ID: "error", Name: "Error", Level: 2, Style: "red"},
	{ID: "warning", Name: "Warning", Level: 1, Style: "yellow"},
	{ID: "info", Name: "Info", Level: 0, Style: "cyan"},
}

var fields = []model.GroupingField{
	{ID: model.FieldSeverity, Name: "Severity", Kind: model.KindBuiltin, Description: "Group by message severity (Error, Warning, Info)"},
	{ID: model.FieldID, Name: "Message ID", Kind: model.KindBuiltin, Description: "Group by Vivado message ID (e.g., Synth 8-6157)"},
	{ID: model.FieldCategory, Name: "Category", Kind: model.KindBuiltin, Description: "Group by message category (synth, timing, drc, etc.)"},
	{ID: model.FieldFile, Name: "Source File", Kind: model.KindFileRef, Description: "Group by source file path"},
	{ID: "module", Name: "Module", Kind: model.KindMetadata, Description: "Group by RTL module named in the message"},
}

func presets() []model.FilterDefinition {
	const src = "plugin:vivado"
	f := model.MustFilterDefinition
	return []model.FilterDefinition{
		f("errors", "Errors", `^ERROR:`, true, src, "All error messages"),
		f("critical-warnings", "Critical Warnings", `^CRITICAL WARNING:`, true, src, "Critical warning messages requiring attention"),
		f("warnings", "Warnings", `^WARNING:`, true, src, "All warning messages"),
		f("info", "Info", `^INFO:`, false, src, "Informational messages"),
		f("timing-issues", "Timing Issues", `(timing|slack|WNS|TNS|setup|hold)`, false, src, "Timing-related messages"),
		f("synthesis", "Synthesis", `\[Synth \d+-\d+\]`, false, src, "Synthesis messages"),
		f("drc", "DRC", `\[DRC \d+-\d+\]`, false, src, "Design Rule Check messages"),
		f("constraints", "Constraints", `\[Constraints \d+-\d+\]`, false, src, "Constraint-related messages"),
		f("ip-flow", "IP Flow", `\[IP_Flow \d+-\d+\]`, false, src, "IP core generation messages"),
		f("routing", "Routing", `\[Route \d+-\d+\]`, false, src, "Routing messages"),
	}
}

// New returns the Vivado adapter.
func New() *adapter.RuleAdapter {
	seg, err := segment.NewRules(startPattern, continuationPattern, maxSpan)
	if err != nil {
		panic(err)
	}
	cls, err := patterns.Compile()
	if err != nil {
		panic(err)
	}
	return &adapter.RuleAdapter{
		Meta: adapter.Info{
			Name:        Name,
			Version:     "1.0.0",
			Description: "Parser for Xilinx Vivado synthesis and implementation logs",
		},
		Segmentation:   seg,
		Classification: cls,
		Levels:         model.MustScheme(levels),
		Fields:         fields,
		Presets:        presets(),
		Detector:       detect(cls),
	}
}

// detect scores a file by its header, then by known message id categories,
// then by the number of severity lines, then by its name.
func detect(cls classify.Rules) func(string, []string) float64 {
	return func(path string, head []string) float64 {
		if len(head) > adapter.HeadLines {
			head = head[:adapter.HeadLines]
		}
		content := strings.Join(head, "\n")
		if headerRe.MatchString(content) {
			return 0.95
		}

		known := 0
		for _, m := range messageIDRe.FindAllStringSubmatch(content, -1) {
			if cat := strings.Fields(m[1]); len(cat) > 0 && knownCategories[cat[0]] {
				known++
			}
		}
		if known >= 3 {
			return 0.85
		}

		severityLines := 0
		for _, line := range head {
			if cls.SeverityOf(line) != "" {
				severityLines++
			}
		}
		if severityLines >= 5 {
			return 0.6
		}

		if strings.Contains(strings.ToLower(filepath.Base(path)), "vivado") {
			return 0.4
		}
		return 0
	}
}
