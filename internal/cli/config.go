package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/sawmill/internal/config"
	"github.com/dshills/sawmill/internal/gitctx"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage sawmill configuration",
	}
	cmd.AddCommand(newConfigInitCmd(a), newConfigSetCmd(a), newConfigShowCmd(a))
	return cmd
}

// configTarget is the file config init and set write to: --config, the
// user config file with --user, otherwise the repository's sawmill.toml.
func (a *app) configTarget(user bool) (string, error) {
	if a.flags.config != "" {
		return a.flags.config, nil
	}
	if !user {
		if root, err := gitctx.FindRoot(""); err == nil {
			return filepath.Join(root, config.FileName), nil
		}
	}
	path, err := config.ConfigPath()
	if err != nil {
		return "", runtimeError(err)
	}
	return path, nil
}

func newConfigInitCmd(a *app) *cobra.Command {
	var user bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a default configuration file",
		Long: "Init writes the default configuration to sawmill.toml at the repository root, " +
			"or to the user config directory with --user or outside a repository.",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := a.configTarget(user)
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Config file already exists at %s\n", path)
				return nil
			}
			if err := config.Save(path, config.Default()); err != nil {
				return runtimeError(fmt.Errorf("writing config: %w", err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Config file created at %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&user, "user", false, "Write the user config file instead of the repository one")
	return cmd
}

func newConfigSetCmd(a *app) *cobra.Command {
	var user bool
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long:  "Set updates one key in the config file. Keys:\n  " + strings.Join(config.Keys(), "\n  "),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := a.configTarget(user)
			if err != nil {
				return err
			}
			cfg, err := config.LoadFile(path)
			if err != nil {
				if !errors.Is(err, config.ErrNotFound) {
					return err
				}
				cfg = config.Default()
			}
			if err := config.SetField(&cfg, args[0], args[1]); err != nil {
				return err
			}
			if err := config.Save(path, cfg); err != nil {
				return runtimeError(fmt.Errorf("saving config: %w", err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s in %s\n", args[0], args[1], path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&user, "user", false, "Edit the user config file instead of the repository one")
	return cmd
}

func newConfigShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(nil)
			if err != nil {
				return err
			}
			data, err := config.Marshal(cfg)
			if err != nil {
				return runtimeError(err)
			}
			out := cmd.OutOrStdout()
			source := cfg.Path
			if source == "" {
				source = "defaults"
			}
			fmt.Fprintf(out, "# source: %s\n", source)
			_, err = out.Write(data)
			return err
		},
	}
}
