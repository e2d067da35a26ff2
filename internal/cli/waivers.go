package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/sawmill/internal/adapter"
	"github.com/dshills/sawmill/internal/waiver"
)

func newWaiversCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "waivers",
		Short: "Generate and validate waiver files",
	}
	cmd.AddCommand(newWaiversGenerateCmd(a), newWaiversValidateCmd(a))
	return cmd
}

type generateOptions struct {
	plugin      string
	output      string
	author      string
	reason      string
	minSeverity string
}

func newWaiversGenerateCmd(a *app) *cobra.Command {
	opts := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate <log>",
		Short: "Write a waiver file covering the messages in a log",
		Long: "Generate emits one waiver per distinct message at or above --min-severity " +
			"(default: the adapter's fail level). Messages with an id get id waivers, " +
			"the rest hash waivers. Review the placeholders before committing the file.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runGenerate(cmd, opts, args[0])
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.plugin, "plugin", "", "Adapter to use (bypasses auto-detection)")
	f.StringVarP(&opts.output, "output", "o", "", "Write to file instead of stdout")
	f.StringVar(&opts.author, "author", "", "Author recorded in every waiver")
	f.StringVar(&opts.reason, "reason", "", "Reason recorded in every waiver")
	f.StringVar(&opts.minSeverity, "min-severity", "", "Lowest severity to include")
	return cmd
}

func (a *app) runGenerate(cmd *cobra.Command, opts *generateOptions, path string) error {
	overrides := map[string]string{}
	if opts.plugin != "" {
		overrides["plugin"] = opts.plugin
	}
	cfg, err := a.loadConfig(overrides)
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
	minLevel, err := resolveLevel(scheme, opts.minSeverity)
	if err != nil {
		return err
	}

	gen := waiver.Generator{Author: opts.author, Reason: opts.reason, MinLevel: minLevel}
	content := gen.Generate(adapter.ParseLines(ad, lf.lines), scheme, ad.Info().Name)

	if opts.output == "" {
		_, err := fmt.Fprint(cmd.OutOrStdout(), content)
		return err
	}
	if err := os.WriteFile(opts.output, []byte(content), 0o644); err != nil {
		return runtimeError(fmt.Errorf("writing waiver file: %w", err))
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Waivers written to %s\n", opts.output)
	return nil
}

func newWaiversValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a waiver file for errors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := waiver.Load(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %d waiver(s) OK\n", args[0], len(f.Waivers))
			if f.Tool != "" {
				fmt.Fprintf(out, "Tool: %s\n", f.Tool)
			}
			for _, w := range f.Expired(time.Now()) {
				fmt.Fprintf(out, "Warning: %s waiver %q expired on %s\n", w.Type, w.Pattern, w.Expires)
				a.log().Warn("waiver expired", "type", w.Type, "pattern", w.Pattern, "expires", w.Expires)
			}
			return nil
		},
	}
}
