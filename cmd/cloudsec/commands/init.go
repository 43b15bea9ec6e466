package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/systmms/cloudsec/internal/config"
	dserrors "github.com/systmms/cloudsec/internal/errors"
	"github.com/systmms/cloudsec/internal/prompt"
	"github.com/systmms/cloudsec/pkg/provider"
)

var providerOptions = []prompt.Option{
	{Label: "Google Cloud Platform (GCP)", Value: string(provider.KindGCP)},
	{Label: "Amazon Web Services (AWS) - Not yet implemented", Value: string(provider.KindAWS), Disabled: true},
}

func NewInitCommand(cfg *config.Config) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a cloudsec configuration",
		Long: `Create the configuration file by asking for a default provider, project
and region, then for each environment.

With --non-interactive a template with dev, staging and prod environments
is written instead; replace the placeholder project IDs before use.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Exists() && !force {
				return dserrors.UserError{
					Message:    fmt.Sprintf("Configuration file already exists: %s", cfg.Path),
					Suggestion: "Use --force to overwrite it",
				}
			}

			var def *config.Definition
			if cfg.NonInteractive {
				def = config.DefaultDefinition()
			} else {
				cfg.Logger.Info("Initializing cloudsec configuration...")
				var (
					path string
					err  error
				)
				def, path, err = askDefinition(getPrompter(cmd, cfg), cfg.Path)
				if err != nil {
					return err
				}
				if path != cfg.Path {
					cfg.Path = path
					if cfg.Exists() && !force {
						return dserrors.UserError{
							Message:    fmt.Sprintf("Configuration file already exists: %s", cfg.Path),
							Suggestion: "Use --force to overwrite it",
						}
					}
				}
			}

			if err := def.Validate(); err != nil {
				return err
			}
			cfg.Definition = def
			if err := cfg.Save(); err != nil {
				return err
			}

			abs, err := filepath.Abs(cfg.Path)
			if err != nil {
				abs = cfg.Path
			}
			cfg.Logger.Info("Configuration created successfully!")
			cfg.Logger.Info("Configuration saved to: %s", abs)

			out := cmd.ErrOrStderr()
			fmt.Fprintln(out, "\nNext steps:")
			fmt.Fprintln(out, "1. Update the configuration file with your actual project IDs")
			fmt.Fprintln(out, "2. Ensure you have the necessary GCP permissions")
			fmt.Fprintln(out, "3. Run `cloudsec list` to test the connection")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing configuration")

	return cmd
}

// askDefinition runs the interactive questionnaire. It returns the
// definition and the path it should be written to.
func askDefinition(p prompt.Prompter, defaultPath string) (*config.Definition, string, error) {
	defaultProvider, err := p.Select("Default Cloud Provider:", providerOptions, string(provider.KindGCP))
	if err != nil {
		return nil, "", err
	}
	defaultProject, err := p.Input("Default GCP Project ID:", "", prompt.Required("Project ID"))
	if err != nil {
		return nil, "", err
	}
	defaultRegion, err := p.Input("Default GCP Region:", config.DefaultRegion, prompt.Required("Region"))
	if err != nil {
		return nil, "", err
	}
	path, err := p.Input("Configuration file path:", defaultPath, prompt.Required("Path"))
	if err != nil {
		return nil, "", err
	}

	def := &config.Definition{
		DefaultProject: defaultProject,
		DefaultRegion:  defaultRegion,
	}

	for {
		env, err := askEnvironment(p, provider.Kind(defaultProvider), defaultProject, defaultRegion)
		if err != nil {
			return nil, "", err
		}
		def.Environments = append(def.Environments, env)

		more, err := p.Confirm("Add another environment?", false)
		if err != nil {
			return nil, "", err
		}
		if !more {
			break
		}
	}

	def.DefaultEnvironment = def.Environments[0].Name
	return def, path, nil
}

func askEnvironment(p prompt.Prompter, defaultProvider provider.Kind, defaultProject, defaultRegion string) (provider.Environment, error) {
	name, err := p.Input("Environment name:", "", prompt.Required("Environment name"))
	if err != nil {
		return provider.Environment{}, err
	}
	kind, err := p.Select("Cloud Provider for this environment:", providerOptions, string(defaultProvider))
	if err != nil {
		return provider.Environment{}, err
	}
	projectID, err := p.Input("GCP Project ID for this environment:", defaultProject, prompt.Required("Project ID"))
	if err != nil {
		return provider.Environment{}, err
	}
	region, err := p.Input("GCP Region for this environment:", defaultRegion, prompt.Required("Region"))
	if err != nil {
		return provider.Environment{}, err
	}
	prefix, err := p.Input("Secret name prefix (optional):", name+"-", nil)
	if err != nil {
		return provider.Environment{}, err
	}

	return provider.Environment{
		Name:      name,
		Provider:  provider.Kind(kind),
		ProjectID: projectID,
		Region:    region,
		Prefix:    prefix,
		Labels: map[string]string{
			"environment": name,
			"managed_by":  "cloudsec",
		},
	}, nil
}
