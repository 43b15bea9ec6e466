package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/systmms/cloudsec/internal/config"
	dserrors "github.com/systmms/cloudsec/internal/errors"
	"github.com/systmms/cloudsec/internal/logging"
	"github.com/systmms/cloudsec/internal/secure"
)

func NewSetCommand(cfg *config.Config) *cobra.Command {
	var (
		fromFile  string
		fromStdin bool
		labels    map[string]string
	)

	cmd := &cobra.Command{
		Use:   "set <key> [value]",
		Short: "Add or update a secret",
		Long: `Store a value under key in the environment's secrets object.

The value comes from the second argument, --from-file, --stdin, or a hidden
prompt when none of them is given. One trailing newline is removed from
file and stdin input.

Labels given with --label are applied only when the secret resource is
created; existing resources keep their labels.

Examples:
  cloudsec set API_KEY abc123
  cloudsec set -e prod TLS_CERT --from-file cert.pem
  vault read -field=token secret/ci | cloudsec set CI_TOKEN --stdin
  cloudsec set DB_PASSWORD            # prompts without echo`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if strings.TrimSpace(key) == "" {
				return dserrors.InvalidInput("secret key must not be empty", "Pass a key such as API_KEY")
			}

			sources := 0
			if len(args) == 2 {
				sources++
			}
			if fromFile != "" {
				sources++
			}
			if fromStdin {
				sources++
			}
			if sources > 1 {
				return dserrors.InvalidInput(
					"value given more than once",
					"Use only one of: the value argument, --from-file, --stdin",
				)
			}

			store, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			blob, err := store.LoadBlob(cmd.Context())
			if err != nil {
				return err
			}

			value, err := readSetValue(cmd, cfg, key, args, fromFile, fromStdin)
			if err != nil {
				return err
			}

			cfg.Logger.Debug("Writing %s=%s to %s", key, logging.Secret(value), store.BlobName())
			updated := blob.Set(key, value)
			if err := store.SaveBlob(cmd.Context(), blob, labels); err != nil {
				return err
			}

			if updated {
				cfg.Logger.Info("Updated secret: %s", key)
			} else {
				cfg.Logger.Info("Added secret: %s", key)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&fromFile, "from-file", "", "Read the value from a file")
	cmd.Flags().BoolVar(&fromStdin, "stdin", false, "Read the value from standard input")
	cmd.Flags().StringToStringVar(&labels, "label", nil, "Label to set when the resource is created (key=value, repeatable)")

	return cmd
}

func readSetValue(cmd *cobra.Command, cfg *config.Config, key string, args []string, fromFile string, fromStdin bool) (string, error) {
	switch {
	case len(args) == 2:
		return args[1], nil

	case fromFile != "":
		data, err := os.ReadFile(fromFile)
		if err != nil {
			return "", dserrors.UserError{
				Message:    fmt.Sprintf("Failed to read value file: %s", fromFile),
				Details:    err.Error(),
				Suggestion: "Check the path and file permissions",
				Err:        err,
			}
		}
		return trimNewline(string(data)), nil

	case fromStdin:
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read standard input: %w", err)
		}
		return trimNewline(string(data)), nil
	}

	p := getPrompter(cmd, cfg)
	for {
		typed, err := p.Password(fmt.Sprintf("Enter value for %s:", key))
		if err != nil {
			return "", err
		}

		v := secure.Protect(typed)
		if v.Empty() {
			v.Destroy()
			fmt.Fprintln(cmd.ErrOrStderr(), "  Value is required")
			continue
		}

		value, err := v.Reveal()
		v.Destroy()
		return value, err
	}
}

func trimNewline(s string) string {
	if strings.HasSuffix(s, "\r\n") {
		return s[:len(s)-2]
	}
	return strings.TrimSuffix(s, "\n")
}
