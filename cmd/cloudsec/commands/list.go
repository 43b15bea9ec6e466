package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/systmms/cloudsec/internal/config"
	"github.com/systmms/cloudsec/internal/execenv"
)

func NewListCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all secrets of an environment",
		Long: `List every key stored in the environment's secrets object.

Values are masked: up to eight characters are hidden completely, longer
values show their first and last four characters.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			env := store.Environment()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\nSecrets in %s environment:\n", env.Name)
			fmt.Fprintf(out, "Secret: %s\n\n", store.BlobName())

			blob, err := store.LoadBlob(cmd.Context())
			if err != nil {
				return err
			}

			if len(blob) == 0 {
				cfg.Logger.Warn("No secrets found")
				return nil
			}

			fmt.Fprintf(out, "%-40s%s\n", "Key", "Value")
			fmt.Fprintln(out, strings.Repeat("-", 80))
			for _, key := range blob.Keys() {
				fmt.Fprintf(out, "%-40s%s\n", key, execenv.MaskValue(blob[key]))
			}
			fmt.Fprintf(out, "\nTotal: %s\n", plural(len(blob), "secret"))
			return nil
		},
	}

	return cmd
}
