package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/systmms/cloudsec/internal/config"
)

func NewPurgeCommand(cfg *config.Config) *cobra.Command {
	var (
		allVersions bool
		force       bool
	)

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete an environment's secrets resource",
		Long: `Delete the resource that holds all secrets of the environment.

With --all-versions every version is destroyed before the resource is
deleted. This cannot be undone.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			name := store.BlobName()
			if !force {
				ok, err := getPrompter(cmd, cfg).Confirm(
					fmt.Sprintf("Delete %s and every secret of the %s environment?", name, store.Environment().Name), false)
				if err != nil {
					return err
				}
				if !ok {
					cfg.Logger.Warn("Operation cancelled")
					return nil
				}
			}

			if err := store.DeleteSecret(cmd.Context(), name, allVersions); err != nil {
				return err
			}

			cfg.Logger.Info("Deleted %s", name)
			return nil
		},
	}

	cmd.Flags().BoolVar(&allVersions, "all-versions", false, "Destroy every version before deleting")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")

	return cmd
}
