package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/sawmill/internal/adapter"
	"github.com/dshills/sawmill/internal/aggregate"
	"github.com/dshills/sawmill/internal/filter"
	"github.com/dshills/sawmill/internal/output"
	"github.com/dshills/sawmill/internal/redact"
)

type showOptions struct {
	selection
	severity string
	category string
	id       string
	format   string
	summary  bool
	groupBy  string
	top      int
	byCount  bool
}

func newShowCmd(a *app) *cobra.Command {
	opts := &showOptions{}
	cmd := &cobra.Command{
		Use:   "show <log>",
		Short: "Parse a log and print the selected messages",
		Long: "Show parses a build log with the detected (or --plugin) adapter and prints " +
			"its messages after severity, filter and suppression selection. Use --summary " +
			"or --group-by for aggregated views.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runShow(cmd, opts, args[0])
		},
	}
	opts.bind(cmd)
	f := cmd.Flags()
	f.StringVar(&opts.severity, "severity", "", "Only show messages at or above this severity")
	f.StringVar(&opts.category, "category", "", "Only show messages in this category")
	f.StringVar(&opts.id, "id", "", "Only show messages with this id")
	f.StringVar(&opts.format, "format", "", "Listing format (text, json, count)")
	f.BoolVar(&opts.summary, "summary", false, "Print a per-severity summary table")
	f.StringVar(&opts.groupBy, "group-by", "", "Print a grouped table by field (severity, id, category, file, or an adapter field)")
	f.IntVar(&opts.top, "top", 0, "Limit rows in summary and grouped tables")
	f.BoolVar(&opts.byCount, "by-count", false, "Order groups by size instead of key")
	return cmd
}

func (a *app) runShow(cmd *cobra.Command, opts *showOptions, path string) error {
	cfg, err := a.loadConfig(opts.overrides())
	if err != nil {
		return err
	}
	lf, err := readLog(path)
	if err != nil {
		return err
	}
	ad, err := a.selectAdapter(cfg.General.DefaultPlugin, lf)
	if err != nil {
		return err
	}
	scheme := adapter.SchemeOf(ad)
	msgs := adapter.ParseLines(ad, lf.lines)
	a.log().Info("parsed log", "log", path, "messages", len(msgs))

	if lvl, err := resolveLevel(scheme, opts.severity); err != nil {
		return err
	} else if lvl != nil {
		msgs = filter.AtOrAbove(scheme, *lvl, msgs)
	}

	defs, err := opts.filterDefs(ad)
	if err != nil {
		return err
	}
	mode, err := filterMode(cfg)
	if err != nil {
		return err
	}
	msgs = filter.ApplyFilters(defs, msgs, mode)

	patterns, ids, err := opts.suppressions(cfg)
	if err != nil {
		return err
	}
	msgs = filter.ApplySuppressions(patterns, msgs)
	msgs = filter.SuppressIDs(ids, msgs)

	if opts.category != "" {
		msgs = filter.ByCategory(opts.category, msgs)
	}
	if opts.id != "" {
		msgs = filter.ByID(opts.id, msgs)
	}
	if opts.redact || len(opts.redactPaths) > 0 {
		msgs = redact.Messages(msgs, opts.redactPaths)
	}

	outOpts := output.Options{Scheme: scheme, Color: a.colorEnabled(cfg), Version: version}
	w := cmd.OutOrStdout()

	switch {
	case opts.summary:
		agg := aggregate.New(scheme, ad.GroupingFields())
		return runtimeError(output.WriteSummary(w, agg.SortedSummary(msgs), opts.top, outOpts))
	case opts.groupBy != "":
		agg := aggregate.New(scheme, ad.GroupingFields())
		groups, err := agg.GroupBy(msgs, opts.groupBy)
		if err != nil {
			return err
		}
		name := opts.groupBy
		if field, ok := agg.Field(opts.groupBy); ok && field.Name != "" {
			name = field.Name
		}
		ordered := agg.Ordered(opts.groupBy, groups, opts.byCount)
		return runtimeError(output.WriteGroups(w, name, ordered, opts.top, outOpts))
	}

	format := opts.format
	if format == "" {
		format = listFormat(cfg.Output.Format)
	}
	lw, err := output.GetListWriter(format, outOpts)
	if err != nil {
		return fmt.Errorf("%w (valid: text, json, count)", err)
	}
	return runtimeError(lw.WriteMessages(w, msgs))
}

// listFormat maps the configured report format onto a listing format.
func listFormat(format string) string {
	if format == "json" || format == "count" {
		return format
	}
	return "text"
}
