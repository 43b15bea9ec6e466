package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/systmms/cloudsec/internal/config"
	dserrors "github.com/systmms/cloudsec/internal/errors"
	"github.com/systmms/cloudsec/internal/prompt"
	"github.com/systmms/cloudsec/internal/providers"
	"github.com/systmms/cloudsec/internal/secretstore"
	"github.com/systmms/cloudsec/pkg/provider"
)

// providerFactory returns the injected factory or the built-in registry.
func providerFactory(cfg *config.Config) provider.Factory {
	if cfg.ProviderFactory != nil {
		return cfg.ProviderFactory
	}
	return providers.NewRegistry(cfg.Logger).Factory()
}

// openStore loads the config, resolves the selected environment and returns
// a store whose connection has been verified. Callers must Close it.
func openStore(ctx context.Context, cfg *config.Config) (*secretstore.Store, error) {
	if err := cfg.Load(); err != nil {
		return nil, err
	}

	env, err := cfg.ResolveEnvironment(cfg.EnvironmentName)
	if err != nil {
		return nil, err
	}
	cfg.Logger.Debug("Using environment %s (provider %s, project %s, region %s, prefix %q)",
		env.Name, env.Provider, env.ProjectID, env.Region, env.Prefix)

	store, err := secretstore.New(ctx, env, providerFactory(cfg))
	if err != nil {
		return nil, err
	}

	if !store.TestConnection(ctx) {
		_ = store.Close()
		return nil, dserrors.UserError{
			Message:    fmt.Sprintf("Failed to connect to %s for environment '%s'", providerLabel(env.Provider), env.Name),
			Suggestion: connectionSuggestion(env),
		}
	}
	return store, nil
}

func providerLabel(kind provider.Kind) string {
	switch kind {
	case provider.KindGCP:
		return "GCP Secret Manager"
	case provider.KindAWS:
		return "AWS Secrets Manager"
	}
	return string(kind)
}

func connectionSuggestion(env provider.Environment) string {
	if env.Provider == provider.KindAWS {
		return "AWS is not supported yet. Set 'provider: gcp' for this environment"
	}
	return fmt.Sprintf("Run 'gcloud auth application-default login' and check access to project '%s'", env.ProjectID)
}

// getPrompter returns cfg's prompter bound to the command's streams.
func getPrompter(cmd *cobra.Command, cfg *config.Config) prompt.Prompter {
	return cfg.GetPrompter(cmd.InOrStdin(), cmd.ErrOrStderr())
}

// keyNotFound reports a key missing from an environment's blob.
func keyNotFound(key string, env provider.Environment, err error) error {
	return dserrors.UserError{
		Message:    fmt.Sprintf("Secret \"%s\" not found in %s environment", key, env.Name),
		Suggestion: "Run 'cloudsec list' to see the available keys",
		Err:        err,
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
