package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/systmms/cloudsec/internal/config"
)

func NewDeleteCommand(cfg *config.Config) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:     "delete <key>",
		Aliases: []string{"rm"},
		Short:   "Remove a secret",
		Long: `Remove one key from the environment's secrets object. Other keys are
kept unchanged. Asks for confirmation unless --force is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]

			store, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			blob, err := store.LoadBlob(cmd.Context())
			if err != nil {
				return err
			}

			if _, err := blob.Get(key); err != nil {
				return keyNotFound(key, store.Environment(), err)
			}

			if !force {
				ok, err := getPrompter(cmd, cfg).Confirm(fmt.Sprintf("Are you sure you want to delete \"%s\"?", key), false)
				if err != nil {
					return err
				}
				if !ok {
					cfg.Logger.Warn("Operation cancelled")
					return nil
				}
			}

			if err := blob.Delete(key); err != nil {
				return keyNotFound(key, store.Environment(), err)
			}
			if err := store.SaveBlob(cmd.Context(), blob, nil); err != nil {
				return err
			}

			cfg.Logger.Info("Deleted secret: %s", key)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")

	return cmd
}
