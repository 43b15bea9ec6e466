package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/systmms/cloudsec/internal/config"
	dserrors "github.com/systmms/cloudsec/internal/errors"
	"github.com/systmms/cloudsec/internal/execenv"
	"github.com/systmms/cloudsec/internal/logging"
	"github.com/systmms/cloudsec/pkg/provider"
)

func NewEnvCommand(cfg *config.Config) *cobra.Command {
	var (
		filter  string
		prefix  string
		shell   string
		export  bool
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "env",
		Short: "Print secrets as shell variable assignments",
		Long: `Print one assignment per secret, sorted by key, for eval or source.

Values are double-quoted with backslash, quote, newline, carriage return and
tab escaped. --filter keeps keys containing the given text; --prefix removes
that text from the start of key names.

Examples:
  eval "$(cloudsec env --export)"
  source <(cloudsec env -e staging --export --filter APP_ --prefix APP_)
  cloudsec env --shell fish --export | source`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			sh, err := execenv.ParseShell(shell)
			if err != nil {
				return err
			}

			// The GCP client prints a pagination warning on some listings;
			// keep it out of output meant for eval.
			out := logging.NewFilterWriter(cmd.OutOrStdout(), logging.AutopaginateWarning)
			errOut := logging.NewFilterWriter(cmd.ErrOrStderr(), logging.AutopaginateWarning)
			logging.RouteGRPCLogs(errOut)

			prevLog := cfg.Logger.Output()
			cfg.Logger.SetOutput(errOut)
			defer func() {
				cfg.Logger.SetOutput(prevLog)
				if ferr := out.Flush(); err == nil {
					err = ferr
				}
				_ = errOut.Flush()
			}()

			store, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			blob, err := store.RequireBlob(cmd.Context())
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

			lines := execenv.Format(blob, execenv.FormatOptions{
				Shell:       sh,
				Export:      export,
				Filter:      filter,
				StripPrefix: prefix,
			})
			if len(lines) == 0 {
				return nil
			}

			if verbose {
				cfg.Logger.Info("Found %s", plural(len(lines), "secret"))
			}

			if _, err := fmt.Fprintln(out, strings.Join(lines, "\n")); err != nil {
				return err
			}

			if verbose {
				cfg.Logger.Info("Generated %s", plural(len(lines), "environment variable"))
				fmt.Fprintln(errOut, "\nTo apply these variables:")
				if sh == execenv.ShellFish {
					fmt.Fprintln(errOut, "  cloudsec env --shell fish --export | source")
				} else {
					fmt.Fprintln(errOut, `  eval "$(cloudsec env --export)"`)
					fmt.Fprintln(errOut, "  # or")
					fmt.Fprintln(errOut, "  source <(cloudsec env --export)")
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "Only include keys containing this text")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Prefix to remove from key names")
	cmd.Flags().StringVar(&shell, "shell", string(execenv.ShellBash), "Shell syntax: bash, zsh or fish")
	cmd.Flags().BoolVar(&export, "export", false, "Export the variables to child processes")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Print progress to stderr")

	return cmd
}
