package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/systmms/cloudsec/internal/config"
)

func NewGetCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Print the value of one secret",
		Long: `Print the raw value of a secret followed by a newline.

Examples:
  cloudsec get DATABASE_URL
  export DB_URL=$(cloudsec get -e prod DATABASE_URL)`,
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

			value, err := blob.Get(key)
			if err != nil {
				return keyNotFound(key, store.Environment(), err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	}

	return cmd
}
