package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/systmms/cloudsec/internal/config"
	dserrors "github.com/systmms/cloudsec/internal/errors"
	"github.com/systmms/cloudsec/internal/validation"
)

func NewImportCommand(cfg *config.Config) *cobra.Command {
	var (
		force  bool
		format string
	)

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import secrets from a JSON or dotenv file",
		Long: `Merge the secrets of a file into the environment.

JSON files must hold one flat object of string values. Keys already present
are overwritten, new keys are added, and keys missing from the file are kept.
When the environment already has secrets a summary is shown and confirmation
is requested unless --force is given.

Examples:
  cloudsec import secrets.json
  cloudsec import -e staging .env --format env --force`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fileFormat, err := validation.ParseFormat(format)
			if err != nil {
				return err
			}

			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				if os.IsNotExist(err) {
					return dserrors.UserError{
						Message: fmt.Sprintf("File not found: %s", path),
						Err:     err,
					}
				}
				return fmt.Errorf("failed to read %s: %w", path, err)
			}

			imported, err := validation.ParseSecretsFile(data, fileFormat)
			if err != nil {
				return err
			}
			if len(imported) == 0 {
				cfg.Logger.Warn("No secrets found in file")
				return nil
			}

			store, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			env := store.Environment()
			cfg.Logger.Info("Importing %s to %s environment...", plural(len(imported), "secret"), env.Name)

			blob, err := store.LoadBlob(cmd.Context())
			if err != nil {
				return err
			}

			if len(blob) > 0 && !force {
				added, updated := blob.Diff(imported)
				cfg.Logger.Warn("Found %s existing", plural(len(blob), "secret"))
				if len(updated) > 0 {
					cfg.Logger.Warn("%s will be updated: %s", plural(len(updated), "secret"), strings.Join(updated, ", "))
				}
				if len(added) > 0 {
					cfg.Logger.Info("%s will be added: %s", plural(len(added), "new secret"), strings.Join(added, ", "))
				}

				ok, err := getPrompter(cmd, cfg).Confirm("Continue with import?", true)
				if err != nil {
					return err
				}
				if !ok {
					cfg.Logger.Warn("Operation cancelled")
					return nil
				}
			}

			added, updated := blob.Merge(imported)
			if err := store.SaveBlob(cmd.Context(), blob, nil); err != nil {
				return err
			}

			for _, key := range updated {
				cfg.Logger.Info("Updated secret: %s", key)
			}
			for _, key := range added {
				cfg.Logger.Info("Added secret: %s", key)
			}
			cfg.Logger.Info("Successfully imported %s to %s environment", plural(len(imported), "secret"), env.Name)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompts")
	cmd.Flags().StringVar(&format, "format", "json", "File format: json or env")

	return cmd
}
