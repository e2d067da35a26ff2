package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/sawmill/internal/adapter"
	"github.com/dshills/sawmill/internal/check"
	"github.com/dshills/sawmill/internal/config"
	"github.com/dshills/sawmill/internal/gitctx"
	"github.com/dshills/sawmill/internal/output"
	"github.com/dshills/sawmill/internal/redact"
	"github.com/dshills/sawmill/internal/waiver"
)

type checkOptions struct {
	selection
	failOn       string
	waivers      string
	format       string
	report       string
	showWaived   bool
	reportUnused bool
	noRepo       bool
}

func newCheckCmd(a *app) *cobra.Command {
	opts := &checkOptions{}
	cmd := &cobra.Command{
		Use:   "check <log>...",
		Short: "Gate on log severity with waivers",
		Long: "Check parses each log, applies filters, suppressions and waivers, and " +
			"fails (exit 1) when any unwaived message is at or above the fail-on severity. " +
			"Several logs are checked concurrently, each with its own pipeline.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCheck(cmd, opts, args)
		},
	}
	opts.bind(cmd)
	f := cmd.Flags()
	f.StringVar(&opts.failOn, "fail-on", "", "Lowest severity that fails the check (default: the adapter's second-lowest level)")
	f.StringVar(&opts.waivers, "waivers", "", "Waiver file (TOML)")
	f.StringVar(&opts.format, "format", "", "Report format on stdout (text, json, yaml, markdown, sarif)")
	f.StringVar(&opts.report, "report", "", "Also write the report to this file; format follows the extension")
	f.BoolVar(&opts.showWaived, "show-waived", false, "List waived messages in text output")
	f.BoolVar(&opts.reportUnused, "report-unused", false, "List waivers that matched nothing in text output")
	f.BoolVar(&opts.noRepo, "no-repo", false, "Do not stamp reports with git repository metadata")
	return cmd
}

func (o *checkOptions) overrides() map[string]string {
	m := o.selection.overrides()
	if o.failOn != "" {
		m["fail_on"] = o.failOn
	}
	if o.waivers != "" {
		m["waivers"] = o.waivers
	}
	if o.format != "" {
		m["format"] = o.format
	}
	return m
}

// checkRun is the outcome of checking one log.
type checkRun struct {
	report *check.Report
	opts   output.Options
	err    error
}

func (a *app) runCheck(cmd *cobra.Command, opts *checkOptions, paths []string) error {
	cfg, err := a.loadConfig(opts.overrides())
	if err != nil {
		return err
	}
	if _, err := output.GetWriter(cfg.Output.Format, output.Options{}); err != nil {
		return fmt.Errorf("%w (valid: %s)", err, strings.Join(output.Formats(), ", "))
	}

	var waivers *waiver.File
	if cfg.Check.Waivers != "" {
		waivers, err = waiver.Load(cfg.Check.Waivers)
		if err != nil {
			return err
		}
		a.log().Info("waivers loaded", "path", cfg.Check.Waivers, "count", len(waivers.Waivers))
		for _, w := range waivers.Expired(time.Now()) {
			a.log().Warn("waiver expired", "type", w.Type, "pattern", w.Pattern, "expires", w.Expires)
		}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	runs := make([]checkRun, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				runs[i].err = err
				return nil
			}
			report, outOpts, err := a.checkOne(ctx, cfg, opts, waivers, path)
			runs[i] = checkRun{report: report, opts: outOpts, err: err}
			return nil
		})
	}
	_ = g.Wait()

	var reports []*check.Report
	var firstErr error
	outOpts := output.Options{}
	for i, r := range runs {
		if r.err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("%s: %w", paths[i], r.err)
			} else {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s: %v\n", paths[i], r.err)
			}
			continue
		}
		reports = append(reports, r.report)
		outOpts = r.opts
		if !r.report.Passed() {
			a.exitCode = ExitCheckFailed
		}
	}

	outOpts.Color = a.colorEnabled(cfg)
	outOpts.ShowWaived = opts.showWaived
	outOpts.ReportUnused = opts.reportUnused
	outOpts.Version = version
	if len(reports) > 0 {
		if err := output.WriteAll(cmd.OutOrStdout(), reports, cfg.Output.Format, outOpts); err != nil {
			return runtimeError(err)
		}
	}
	if opts.report != "" {
		fileOpts := outOpts
		fileOpts.Color = false
		if err := writeReportFiles(opts.report, paths, runs, fileOpts); err != nil {
			return runtimeError(err)
		}
	}
	return firstErr
}

// checkOne runs the full pipeline for one log.
func (a *app) checkOne(ctx context.Context, cfg config.Config, opts *checkOptions, waivers *waiver.File, path string) (*check.Report, output.Options, error) {
	lf, err := readLog(path)
	if err != nil {
		return nil, output.Options{}, err
	}
	ad, err := a.selectAdapter(cfg.General.DefaultPlugin, lf)
	if err != nil {
		return nil, output.Options{}, err
	}
	scheme := adapter.SchemeOf(ad)

	failOn, err := resolveLevel(scheme, cfg.Check.FailOn)
	if err != nil {
		return nil, output.Options{}, err
	}
	defs, err := opts.filterDefs(ad)
	if err != nil {
		return nil, output.Options{}, err
	}
	mode, err := filterMode(cfg)
	if err != nil {
		return nil, output.Options{}, err
	}
	patterns, ids, err := opts.suppressions(cfg)
	if err != nil {
		return nil, output.Options{}, err
	}

	in := check.Input{
		Messages:     adapter.ParseLines(ad, lf.lines),
		Filters:      defs,
		FilterMode:   mode,
		Suppressions: patterns,
		SuppressIDs:  ids,
		Scheme:       scheme,
		FailOn:       failOn,
	}
	if waivers != nil {
		in.Waivers = waivers.Waivers
	}

	res := check.Decide(in)
	info := check.RunInfo{
		Source:    path,
		Tool:      ad.Info().Name,
		Version:   version,
		RunID:     uuid.NewString(),
		Timestamp: time.Now(),
	}
	if !opts.noRepo {
		if meta, err := gitctx.GetRepoMeta(ctx, filepath.Dir(path)); err == nil {
			info.Repo = &check.RepoInfo{Root: meta.Root, Head: meta.Head, Branch: meta.Branch}
		} else {
			a.log().Debug("no repository metadata", "log", path, "err", err)
		}
	}
	report := check.BuildReport(res, info)
	if opts.redact || len(opts.redactPaths) > 0 {
		redact.Report(report, opts.redactPaths)
	}

	a.log().Info("check finished", "log", path, "verdict", res.Verdict,
		"issues", len(res.Issues), "waived", len(res.Waived), "unused_waivers", len(res.UnusedWaivers))
	return report, output.Options{Scheme: scheme}, nil
}

// writeReportFiles writes each successful run's report to the file named
// by reportPaths.
func writeReportFiles(target string, paths []string, runs []checkRun, opts output.Options) error {
	format := formatForPath(target)
	dests := reportPaths(target, paths)
	for i, r := range runs {
		if r.err != nil {
			continue
		}
		fileOpts := opts
		fileOpts.Scheme = r.opts.Scheme
		if err := output.WriteReport(r.report, format, dests[i], fileOpts); err != nil {
			return err
		}
	}
	return nil
}

// formatForPath picks a report format from a file extension, defaulting to
// JSON.
func formatForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".md", ".markdown":
		return "markdown"
	case ".sarif":
		return "sarif"
	case ".txt":
		return "text"
	default:
		return "json"
	}
}

// reportPaths names one report file per log. A single log writes target
// itself. Otherwise the log's base name is inserted before target's
// extension; base names shared by several logs are qualified with the
// parent directory and, if still shared, with the log's position.
func reportPaths(target string, logs []string) []string {
	if len(logs) == 1 {
		return []string{target}
	}
	ext := filepath.Ext(target)
	stem := strings.TrimSuffix(target, ext)

	names := make([]string, len(logs))
	for i, l := range logs {
		names[i] = strings.TrimSuffix(filepath.Base(l), filepath.Ext(l))
	}
	qualify(names, func(i int, name string) string {
		parent := filepath.Base(filepath.Dir(filepath.Clean(logs[i])))
		if parent == "." || parent == string(filepath.Separator) {
			return name
		}
		return parent + "-" + name
	})
	qualify(names, func(i int, name string) string {
		return fmt.Sprintf("%s-%d", name, i+1)
	})

	out := make([]string, len(logs))
	used := make(map[string]bool, len(logs))
	for i, name := range names {
		cand := name
		for n := 2; used[cand]; n++ {
			cand = fmt.Sprintf("%s-%d", name, n)
		}
		used[cand] = true
		out[i] = stem + "-" + cand + ext
	}
	return out
}

// qualify rewrites every name that occurs more than once.
func qualify(names []string, rename func(i int, name string) string) {
	count := make(map[string]int, len(names))
	for _, n := range names {
		count[n]++
	}
	for i, n := range names {
		if count[n] > 1 {
			names[i] = rename(i, n)
		}
	}
}
