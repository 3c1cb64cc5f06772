package cli

import (
	"fmt"

	"github.com/rileyhilliard/georep/internal/config"
	"github.com/rileyhilliard/georep/internal/errors"
	"github.com/spf13/cobra"
)

func newConfigCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the configuration a setup run would use, after merging the config
file, GEOREP_* environment variables and command-line flags.

Examples:
  georep-setup config
  georep-setup config --config ./georep.yaml --secondary-user geoadmin`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := resolveConfig(cmd, g)
			if err != nil {
				return err
			}

			data, err := config.Marshal(cfg)
			if err != nil {
				return errors.WrapWithCode(err, errors.ErrConfig, "Couldn't render config", "")
			}

			if path == "" {
				path = "defaults (no config file found)"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# source: %s\n", path)
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
