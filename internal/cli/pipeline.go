package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/sawmill/internal/adapter"
	"github.com/dshills/sawmill/internal/config"
	"github.com/dshills/sawmill/internal/filter"
	"github.com/dshills/sawmill/internal/model"
	"github.com/dshills/sawmill/internal/segment"
)

// logFile is a log read into memory and split into lines.
type logFile struct {
	path  string
	lines []string
}

// readLog loads path. Invalid UTF-8 is replaced rather than rejected since
// EDA tools echo arbitrary bytes from user sources.
func readLog(path string) (*logFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("log file not found: %s", path)
		}
		return nil, runtimeError(fmt.Errorf("reading log: %w", err))
	}
	text := strings.ToValidUTF8(string(data), "\uFFFD")
	return &logFile{path: path, lines: segment.SplitLines(text)}, nil
}

func (l *logFile) head() []string {
	return l.lines[:min(len(l.lines), adapter.HeadLines)]
}

// selectAdapter returns the named adapter, or detects one from the log.
func (a *app) selectAdapter(name string, lf *logFile) (adapter.Adapter, error) {
	if name != "" {
		return a.registry.Lookup(name)
	}
	head := lf.head()
	for _, c := range a.registry.Scores(lf.path, head) {
		a.log().Debug("detection score", "plugin", c.Name, "confidence", c.Confidence, "log", lf.path)
	}
	ad, err := a.registry.Detect(lf.path, head)
	if err != nil {
		if errors.Is(err, adapter.ErrNoAdapter) {
			return nil, fmt.Errorf("%w (use --plugin to choose one of: %s)", err, strings.Join(a.registry.Names(), ", "))
		}
		return nil, err
	}
	a.log().Info("plugin selected", "plugin", ad.Info().Name, "log", lf.path)
	return ad, nil
}

// selection holds the message selection flags shared by show and check.
type selection struct {
	plugin      string
	filters     []string
	filterMode  string
	presets     []string
	suppress    []string
	suppressIDs []string
	redact      bool
	redactPaths []string
}

func (s *selection) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&s.plugin, "plugin", "", "Adapter to use (bypasses auto-detection)")
	f.StringArrayVar(&s.filters, "filter", nil, "Regex selecting messages by raw text (repeatable, case-insensitive)")
	f.StringVar(&s.filterMode, "filter-mode", "", "Combine filters with \"and\" or \"or\"")
	f.StringArrayVar(&s.presets, "preset", nil, "Enable an adapter preset filter by id (repeatable)")
	f.StringArrayVar(&s.suppress, "suppress", nil, "Regex hiding matching messages (repeatable)")
	f.StringArrayVar(&s.suppressIDs, "suppress-id", nil, "Message id to hide (repeatable)")
	f.BoolVar(&s.redact, "redact", false, "Mask secrets in message text")
	f.StringArrayVar(&s.redactPaths, "redact-path", nil, "Glob of source paths to hide in file references (repeatable)")
}

func (s *selection) overrides() map[string]string {
	m := make(map[string]string)
	if s.plugin != "" {
		m["plugin"] = s.plugin
	}
	if s.filterMode != "" {
		m["filter_mode"] = s.filterMode
	}
	return m
}

// filterDefs turns --filter patterns and --preset ids into enabled filter
// definitions. Invalid patterns and unknown presets are usage errors.
func (s *selection) filterDefs(ad adapter.Adapter) ([]model.FilterDefinition, error) {
	var defs []model.FilterDefinition
	for i, p := range s.filters {
		def, err := model.NewFilterDefinition(fmt.Sprintf("cli-%d", i+1), p, "(?i)"+p, true, "cli", "")
		if err != nil {
			return nil, fmt.Errorf("--filter %q: %w", p, err)
		}
		defs = append(defs, def)
	}
	if len(s.presets) == 0 {
		return defs, nil
	}
	available := make(map[string]model.FilterDefinition)
	var ids []string
	for _, f := range ad.Filters() {
		available[f.ID] = f
		ids = append(ids, f.ID)
	}
	for _, id := range s.presets {
		f, ok := available[id]
		if !ok {
			return nil, fmt.Errorf("unknown preset %q for plugin %s (available: %s)", id, ad.Info().Name, strings.Join(ids, ", "))
		}
		defs = append(defs, f.WithEnabled(true))
	}
	return defs, nil
}

// suppressions merges config and flag suppressions and validates the
// patterns.
func (s *selection) suppressions(cfg config.Config) (patterns, ids []string, err error) {
	patterns = append(append([]string(nil), cfg.Suppress.Patterns...), s.suppress...)
	ids = append(append([]string(nil), cfg.Suppress.MessageIDs...), s.suppressIDs...)
	for _, p := range patterns {
		if _, err := regexp.Compile(p); err != nil {
			return nil, nil, fmt.Errorf("invalid suppression pattern %q: %w", p, err)
		}
	}
	return patterns, ids, nil
}

func filterMode(cfg config.Config) (filter.Mode, error) {
	return filter.ParseMode(cfg.Check.FilterMode)
}

// resolveLevel maps a severity name to its level in scheme. Empty means nil.
func resolveLevel(scheme model.Scheme, name string) (*int, error) {
	if name == "" {
		return nil, nil
	}
	lvl, err := scheme.ResolveLevel(name)
	if err != nil {
		return nil, err
	}
	return &lvl, nil
}
