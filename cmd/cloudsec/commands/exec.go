package commands

import (
	"github.com/spf13/cobra"

	"github.com/systmms/cloudsec/internal/config"
	"github.com/systmms/cloudsec/internal/execenv"
)

func NewExecCommand(cfg *config.Config) *cobra.Command {
	var (
		printVars    bool
		keepExisting bool
		workingDir   string
		filter       string
		prefix       string
	)

	cmd := &cobra.Command{
		Use:   "exec -- <command> [args...]",
		Short: "Run a command with secrets as environment variables",
		Long: `Run a command with the environment's secrets added to its environment.
Secrets are never written to disk. The command's exit code is returned.

The command must be separated from cloudsec arguments with '--'.

Examples:
  cloudsec exec -- npm start
  cloudsec exec -e prod --print -- ./migrate.sh
  cloudsec exec --filter APP_ --prefix APP_ -- python app.py`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := execenv.ValidateCommand(args); err != nil {
				return err
			}

			store, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			blob, err := store.LoadBlob(cmd.Context())
			_ = store.Close()
			if err != nil {
				return err
			}
			if len(blob) == 0 {
				cfg.Logger.Warn("No secrets found in %s environment", store.Environment().Name)
			}

			executor := execenv.New(cfg.Logger)
			executor.Stdin = cmd.InOrStdin()
			executor.Stdout = cmd.OutOrStdout()
			executor.Stderr = cmd.ErrOrStderr()

			return executor.Exec(cmd.Context(), execenv.ExecOptions{
				Command: args,
				Environment: execenv.Variables(blob, execenv.FormatOptions{
					Filter:      filter,
					StripPrefix: prefix,
				}),
				KeepExisting: keepExisting,
				PrintVars:    printVars,
				WorkingDir:   workingDir,
			})
		},
	}

	cmd.Flags().BoolVar(&printVars, "print", false, "Print injected variable names with masked values")
	cmd.Flags().BoolVar(&keepExisting, "keep-existing", false, "Do not override variables already set in the environment")
	cmd.Flags().StringVar(&workingDir, "cwd", "", "Working directory for the command")
	cmd.Flags().StringVar(&filter, "filter", "", "Only inject keys containing this text")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Prefix to remove from key names")

	return cmd
}
