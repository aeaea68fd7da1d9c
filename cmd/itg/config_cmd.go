package main

import (
	"context"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/raphi011/itg/internal/config"
	"github.com/raphi011/itg/internal/log"
	"github.com/raphi011/itg/internal/output"
	"github.com/raphi011/itg/internal/ui/styles"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Short:   "Manage configuration",
		Aliases: []string{"cfg"},
		GroupID: GroupConfig,
		Long: `Manage itg configuration.

Global config: ~/.config/itg/config.toml (ITG_CONFIG overrides the path)
Local config:  .itg.toml (in the repository root, base_branch and labels only)`,
		Example: `  itg config init               # Create default global config
  itg config show               # Show effective config
  itg config warning disable    # Allow issues without the 'issue' prefix`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigPathCmd())
	cmd.AddCommand(newConfigWarningCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create default config file",
		Args:  cobra.NoArgs,
		Example: `  itg config init       # Create global config
  itg config init -f    # Overwrite existing config`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.Init(force)
			if err != nil {
				return err
			}
			log.FromContext(cmd.Context()).Println(styles.Done("Created config file: " + path))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing config")

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show effective config",
		Long: `Show the effective config: global file, .itg.toml and environment
overrides combined. The token is redacted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return showConfig(ctx, *configFrom(ctx))
		},
	}
}

func showConfig(ctx context.Context, cfg config.Config) error {
	if cfg.Token != "" {
		cfg.Token = "<redacted>"
	}
	return toml.NewEncoder(output.FromContext(ctx).Writer()).Encode(cfg)
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the global config file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.Path()
			if err != nil {
				return err
			}
			output.FromContext(cmd.Context()).Println(path)
			return nil
		},
	}
}

func newConfigWarningCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "warning enable|disable",
		Short:     "Require (enable) or drop (disable) the 'issue' prefix for new issues",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"enable", "disable"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return setWarning(cmd.Context(), args[0] == "disable")
		},
	}
}
