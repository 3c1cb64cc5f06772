package cli

import (
	"time"

	"github.com/rileyhilliard/georep/internal/config"
	"github.com/rileyhilliard/georep/internal/ui"
	"github.com/spf13/cobra"
)

// globalFlags are shared by the setup run and the config command.
type globalFlags struct {
	ConfigPath     string
	SecondaryUser  string
	NoColor        bool
	ConnectTimeout time.Duration
	CommandTimeout time.Duration
	Verbose        bool
}

// runFlags only make sense for the setup run itself.
type runFlags struct {
	Force  bool
	DryRun bool
}

func addGlobalFlags(cmd *cobra.Command, f *globalFlags) {
	fs := cmd.PersistentFlags()
	fs.StringVar(&f.ConfigPath, "config", "", "config file (default /etc/georep/config.yaml or ~/.config/georep/config.yaml)")
	fs.StringVar(&f.SecondaryUser, "secondary-user", config.DefaultSecondaryUser, "admin user on the secondary entry node")
	fs.BoolVar(&f.NoColor, "no-color", false, "disable colored status markers")
	fs.DurationVar(&f.ConnectTimeout, "connect-timeout", config.DefaultConnectTimeout, "timeout for the port probe and SSH login")
	fs.DurationVar(&f.CommandTimeout, "command-timeout", config.DefaultCommandTimeout, "timeout for each local or remote command")
	fs.BoolVarP(&f.Verbose, "verbose", "v", false, "print debug logs to stderr")
}

func addRunFlags(cmd *cobra.Command, f *runFlags) {
	cmd.Flags().BoolVar(&f.Force, "force", false, "continue past capacity and non-empty secondary checks")
	cmd.Flags().BoolVar(&f.DryRun, "dry-run", false, "run every check, then print the bootstrap and create commands instead of running them")
}

// resolveConfig loads the config file and applies the flags the user set.
// Defaults of unset flags never override file or environment values.
func resolveConfig(cmd *cobra.Command, f *globalFlags) (*config.Config, string, error) {
	cfg, path, err := config.LoadOrDefault(f.ConfigPath)
	if err != nil {
		return nil, "", err
	}

	flags := cmd.Flags()
	if flags.Changed("secondary-user") {
		cfg.SecondaryUser = f.SecondaryUser
	}
	if flags.Changed("connect-timeout") {
		cfg.ConnectTimeout = f.ConnectTimeout
	}
	if flags.Changed("command-timeout") {
		cfg.CommandTimeout = f.CommandTimeout
	}
	if f.NoColor {
		cfg.Color = string(ui.ColorNever)
	}

	if err := config.Validate(cfg); err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}
