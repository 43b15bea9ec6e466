package commands

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/systmms/cloudsec/internal/config"
	"github.com/systmms/cloudsec/internal/secretstore"
	"github.com/systmms/cloudsec/pkg/provider"
)

// EnvironmentHealth is the doctor result for one environment
type EnvironmentHealth struct {
	Name      string
	Provider  provider.Kind
	ProjectID string
	Status    string // healthy, error
	Resources int    // prefixed resources in the project
	Blob      string // present, missing, unknown
	Error     string
}

func NewDoctorCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration and provider connectivity",
		Long: `Verify the configuration file and, for every environment (or only the
one selected with -e), that the provider is reachable, how many secret
resources carry the environment prefix, and whether the secrets resource
exists.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Logger.Info("Checking cloudsec configuration...")
			if err := cfg.Load(); err != nil {
				cfg.Logger.Error("Configuration error")
				return err
			}
			cfg.Logger.Info("Configuration loaded from %s", cfg.Path)

			names := cfg.Definition.EnvironmentNames()
			if cfg.EnvironmentName != "" {
				names = []string{cfg.EnvironmentName}
			}

			results := make([]EnvironmentHealth, 0, len(names))
			for _, name := range names {
				env, err := cfg.ResolveEnvironment(name)
				if err != nil {
					return err
				}
				results = append(results, checkEnvironment(cmd.Context(), cfg, env))
			}

			displayHealthResults(cmd.OutOrStdout(), results)

			healthy := 0
			for _, r := range results {
				if r.Status == "healthy" {
					healthy++
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nSummary: %d/%d environments healthy\n", healthy, len(results))
			if healthy < len(results) {
				return fmt.Errorf("some environments are not healthy")
			}

			cfg.Logger.Info("All systems operational!")
			return nil
		},
	}

	return cmd
}

func checkEnvironment(ctx context.Context, cfg *config.Config, env provider.Environment) EnvironmentHealth {
	health := EnvironmentHealth{
		Name:      env.Name,
		Provider:  env.Provider,
		ProjectID: env.ProjectID,
		Status:    "error",
		Blob:      "unknown",
	}

	store, err := secretstore.New(ctx, env, providerFactory(cfg))
	if err != nil {
		health.Error = err.Error()
		return health
	}
	defer func() { _ = store.Close() }()

	if !store.TestConnection(ctx) {
		health.Error = "connection failed"
		return health
	}

	list, err := store.ListSecrets(ctx)
	if err != nil {
		health.Error = err.Error()
		return health
	}
	health.Resources = len(list)

	exists, err := store.SecretExists(ctx, store.BlobName())
	if err != nil {
		health.Error = err.Error()
		return health
	}
	health.Blob = "missing"
	if exists {
		health.Blob = "present"
	}

	health.Status = "healthy"
	return health
}

// displayHealthResults shows environment health in a formatted table
func displayHealthResults(out io.Writer, results []EnvironmentHealth) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintf(w, "ENVIRONMENT\tPROVIDER\tPROJECT\tSTATUS\tRESOURCES\tSECRETS\tMESSAGE\n")
	_, _ = fmt.Fprintf(w, "-----------\t--------\t-------\t------\t---------\t-------\t-------\n")

	for _, r := range results {
		status := "✗ " + r.Status
		if r.Status == "healthy" {
			status = "✓ " + r.Status
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			r.Name, r.Provider, r.ProjectID, status, r.Resources, r.Blob, r.Error)
	}

	_ = w.Flush()
}
