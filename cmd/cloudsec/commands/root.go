package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/systmms/cloudsec/internal/config"
	"github.com/systmms/cloudsec/internal/logging"
)

// NewRootCommand builds the cloudsec command tree around cfg. Global flags
// are copied into cfg before any subcommand runs.
func NewRootCommand(cfg *config.Config, version string) *cobra.Command {
	var (
		configFile string
		noColor    bool
		debug      bool
	)

	rootCmd := &cobra.Command{
		Use:   "cloudsec",
		Short: "Manage cloud secrets across multiple environments",
		Long: `cloudsec stores the secrets of each environment (dev, staging, prod...)
as one JSON object in a cloud secret manager and reads them back as values,
files, shell assignments or the environment of a command.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg.Path = configFile
			cfg.Logger = logging.NewWithWriter(cmd.ErrOrStderr(), debug, noColor)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", config.DefaultPath, "Config file path")
	flags.StringVarP(&cfg.EnvironmentName, "environment", "e", "", "Environment to use (dev, staging, prod)")
	flags.StringVarP(&cfg.ProjectOverride, "project", "p", "", "Cloud project ID (GCP project ID or AWS account ID)")
	flags.StringVarP(&cfg.RegionOverride, "region", "r", "", "Cloud region (GCP region or AWS region)")
	flags.BoolVar(&noColor, "no-color", false, "Disable colored output")
	flags.BoolVar(&debug, "debug", false, "Enable debug logging")
	flags.BoolVar(&cfg.NonInteractive, "non-interactive", false, "Never prompt; fail instead")
	flags.StringVar(&cfg.MetricsFile, "metrics-file", "", "Write provider API metrics (Prometheus text format) to this file")

	rootCmd.SetVersionTemplate(fmt.Sprintf("cloudsec %s\n", version))

	rootCmd.AddCommand(
		NewInitCommand(cfg),
		NewListCommand(cfg),
		NewGetCommand(cfg),
		NewSetCommand(cfg),
		NewDeleteCommand(cfg),
		NewImportCommand(cfg),
		NewDownloadCommand(cfg),
		NewEnvCommand(cfg),
		NewVersionsCommand(cfg),
		NewPurgeCommand(cfg),
		NewDoctorCommand(cfg),
		NewConfigCommand(cfg),
		NewExecCommand(cfg),
		NewCompletionCommand(cfg),
	)

	return rootCmd
}
