package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/systmms/cloudsec/internal/config"
	dserrors "github.com/systmms/cloudsec/internal/errors"
	"github.com/systmms/cloudsec/internal/validation"
)

func NewDownloadCommand(cfg *config.Config) *cobra.Command {
	var (
		output string
		format string
	)

	cmd := &cobra.Command{
		Use:     "download [output]",
		Aliases: []string{"pull"},
		Short:   "Write an environment's secrets to a local file",
		Long: `Write all secrets of the environment to a file readable only by you.

The default file name is <environment>-secrets.json, or
<environment>-secrets.env with --format env.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fileFormat, err := validation.ParseFormat(format)
			if err != nil {
				return err
			}

			store, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			env := store.Environment()
			blob, err := store.LoadBlob(cmd.Context())
			if err != nil {
				return err
			}

			if len(blob) == 0 {
				cfg.Logger.Warn("No secrets found to download")
				return nil
			}

			target := output
			if target == "" && len(args) == 1 {
				target = args[0]
			}
			if target == "" {
				target = env.Name + "-secrets" + fileFormat.Extension()
			}
			path, err := filepath.Abs(target)
			if err != nil {
				return err
			}

			data, err := validation.RenderSecretsFile(blob, fileFormat)
			if err != nil {
				return err
			}

			if err := os.WriteFile(path, data, 0o600); err != nil {
				return dserrors.UserError{
					Message:    fmt.Sprintf("Failed to write %s", path),
					Details:    err.Error(),
					Suggestion: "Check that the directory exists and is writable",
					Err:        err,
				}
			}

			cfg.Logger.Info("Successfully downloaded %s from %s environment to %s", plural(len(blob), "secret"), env.Name, path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path")
	cmd.Flags().StringVar(&format, "format", "json", "File format: json or env")

	return cmd
}
