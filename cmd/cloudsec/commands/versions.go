package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/systmms/cloudsec/internal/config"
	dserrors "github.com/systmms/cloudsec/internal/errors"
	"github.com/systmms/cloudsec/pkg/provider"
)

func NewVersionsCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "versions",
		Short: "List the stored versions of an environment's secrets",
		Long: `Show every version of the environment's secrets resource, newest first,
as reported by the provider. Each set, delete or import adds one version.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			versions, err := store.SecretVersions(cmd.Context(), store.BlobName())
			if err != nil {
				if provider.IsNotFound(err) {
					return dserrors.UserError{
						Message:    fmt.Sprintf("Secret \"%s\" not found", store.BlobName()),
						Suggestion: "Run: cloudsec set <key> <value> to add secrets",
						Err:        err,
					}
				}
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintf(w, "VERSION\tSTATE\tCREATED\n")
			for _, v := range versions {
				created := "-"
				if !v.CreateTime.IsZero() {
					created = v.CreateTime.UTC().Format(time.RFC3339)
				}
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", v.Version, v.State, created)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "\nTotal: %s of %s\n", plural(len(versions), "version"), store.BlobName())
			return nil
		},
	}

	return cmd
}
