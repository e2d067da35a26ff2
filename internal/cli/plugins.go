package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dshills/sawmill/internal/adapter"
	"github.com/dshills/sawmill/internal/output"
)

func newPluginsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "plugins",
		Aliases: []string{"plugin"},
		Short:   "Inspect the registered tool adapters",
	}
	cmd.AddCommand(newPluginsListCmd(a), newPluginsInfoCmd(a), newPluginsDetectCmd(a))
	return cmd
}

func (a *app) tableOptions() (output.Options, error) {
	cfg, err := a.loadConfig(nil)
	if err != nil {
		return output.Options{}, err
	}
	return output.Options{Color: a.colorEnabled(cfg)}, nil
}

func newPluginsListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered plugins",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := a.tableOptions()
			if err != nil {
				return err
			}
			var rows [][]string
			for _, info := range a.registry.List() {
				rows = append(rows, []string{info.Name, info.Version, info.Description})
			}
			return output.WriteTable(cmd.OutOrStdout(), []string{"Name", "Version", "Description"}, rows, nil, opts)
		},
	}
}

func newPluginsInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info <name>",
		Short: "Show a plugin's severities, grouping fields and presets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ad, err := a.registry.Lookup(args[0])
			if err != nil {
				return err
			}
			opts, err := a.tableOptions()
			if err != nil {
				return err
			}
			return writePluginInfo(cmd, ad, opts)
		},
	}
}

func writePluginInfo(cmd *cobra.Command, ad adapter.Adapter, opts output.Options) error {
	out := cmd.OutOrStdout()
	info := ad.Info()
	scheme := adapter.SchemeOf(ad)
	opts.Scheme = scheme

	fmt.Fprintf(out, "%s %s\n%s\n\n", info.Name, info.Version, info.Description)

	fmt.Fprintln(out, "Severity levels:")
	var rows [][]string
	var styles []string
	failLevel := scheme.DefaultFailLevel()
	for _, l := range scheme.Levels() {
		mark := ""
		if l.Level == failLevel {
			mark = "default fail-on"
		}
		rows = append(rows, []string{l.ID, l.Name, strconv.Itoa(l.Level), mark})
		styles = append(styles, l.Style)
	}
	if err := output.WriteTable(out, []string{"ID", "Name", "Level", ""}, rows, styles, opts); err != nil {
		return err
	}

	fmt.Fprintln(out, "\nGrouping fields:")
	rows = nil
	for _, g := range ad.GroupingFields() {
		rows = append(rows, []string{g.ID, g.Name, string(g.Kind), g.Description})
	}
	if err := output.WriteTable(out, []string{"ID", "Name", "Kind", "Description"}, rows, nil, opts); err != nil {
		return err
	}

	filters := ad.Filters()
	if len(filters) == 0 {
		return nil
	}
	fmt.Fprintln(out, "\nPresets:")
	rows = nil
	for _, f := range filters {
		rows = append(rows, []string{f.ID, f.Name, f.Description})
	}
	return output.WriteTable(out, []string{"ID", "Name", "Description"}, rows, nil, opts)
}

func newPluginsDetectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "detect <log>",
		Short: "Show every plugin's confidence for a log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lf, err := readLog(args[0])
			if err != nil {
				return err
			}
			opts, err := a.tableOptions()
			if err != nil {
				return err
			}
			var rows [][]string
			for _, c := range a.registry.Scores(lf.path, lf.head()) {
				verdict := ""
				if c.Confidence >= adapter.Threshold {
					verdict = "match"
				}
				rows = append(rows, []string{c.Name, strconv.FormatFloat(c.Confidence, 'f', 2, 64), verdict})
			}
			if err := output.WriteTable(cmd.OutOrStdout(), []string{"Plugin", "Confidence", ""}, rows, nil, opts); err != nil {
				return err
			}
			ad, err := a.registry.Detect(lf.path, lf.head())
			if err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "No plugin selected: %s\n", err)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Selected: %s\n", ad.Info().Name)
			return nil
		},
	}
}
