package commands

import (
	"github.com/spf13/cobra"

	"github.com/systmms/cloudsec/internal/config"
)

func NewConfigCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the validated configuration",
		Long: `Load and validate the configuration file, then print it as YAML.
Global --project and --region overrides are not applied.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Load(); err != nil {
				return err
			}

			data, err := cfg.Definition.Marshal()
			if err != nil {
				return err
			}

			cfg.Logger.Debug("Configuration file: %s", cfg.Path)
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	return cmd
}
