package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	dserrors "github.com/systmms/cloudsec/internal/errors"
	"github.com/systmms/cloudsec/internal/logging"
	"github.com/systmms/cloudsec/internal/prompt"
	"github.com/systmms/cloudsec/pkg/provider"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up in the working directory.
const DefaultPath = ".cloudsec.yaml"

// DefaultRegion is offered when no region is configured.
const DefaultRegion = "us-central1"

// Config holds the runtime configuration
type Config struct {
	Path           string
	Logger         *logging.Logger
	NonInteractive bool
	Definition     *Definition

	// Prompter asks the user for input. Nil means a terminal prompter on
	// stdin/stderr is created on first use.
	Prompter prompt.Prompter

	// ProviderFactory overrides backend construction, mainly for tests.
	ProviderFactory provider.Factory

	// EnvironmentName selects an environment; empty means the default.
	EnvironmentName string

	// ProjectOverride and RegionOverride are applied to the selected
	// environment without touching the file.
	ProjectOverride string
	RegionOverride  string

	// MetricsFile receives provider API metrics after the command ends.
	MetricsFile string
}

// Definition represents the .cloudsec.yaml structure
type Definition struct {
	Environments       []provider.Environment `yaml:"environments"`
	DefaultEnvironment string                 `yaml:"defaultEnvironment,omitempty"`
	DefaultProject     string                 `yaml:"defaultProject,omitempty"`
	DefaultRegion      string                 `yaml:"defaultRegion,omitempty"`
}

// Load reads, parses and validates the config file
func (c *Config) Load() error {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return dserrors.ConfigNotFound(c.Path)
		}
		return dserrors.UserError{
			Message:    "Failed to read configuration file",
			Details:    err.Error(),
			Suggestion: "Check file permissions and path",
			Err:        err,
		}
	}

	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return dserrors.ConfigError{
			Message:    "invalid YAML syntax in configuration file",
			Suggestion: "Check for indentation errors, missing quotes, or invalid characters. Use a YAML validator",
			Err:        err,
		}
	}

	if err := def.Validate(); err != nil {
		return err
	}

	c.Definition = &def
	return nil
}

// Save writes the definition to Path with two-space indentation.
func (c *Config) Save() error {
	if c.Definition == nil {
		return dserrors.UserError{Message: "No configuration to save"}
	}

	data, err := c.Definition.Marshal()
	if err != nil {
		return err
	}

	if dir := filepath.Dir(c.Path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(c.Path, data, 0o644); err != nil {
		return dserrors.UserError{
			Message:    "Failed to write configuration file",
			Details:    err.Error(),
			Suggestion: "Check that the directory is writable",
			Err:        err,
		}
	}
	return nil
}

// Exists reports whether the config file is present.
func (c *Config) Exists() bool {
	_, err := os.Stat(c.Path)
	return err == nil
}

// Marshal renders the definition as YAML.
func (d *Definition) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return nil, fmt.Errorf("failed to encode configuration: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode configuration: %w", err)
	}
	return buf.Bytes(), nil
}

// Validate checks required fields, provider kinds, and name uniqueness
func (d *Definition) Validate() error {
	if len(d.Environments) == 0 {
		return dserrors.ConfigError{
			Field:      "environments",
			Message:    "at least one environment is required",
			Suggestion: "Run 'cloudsec init' to generate a configuration",
		}
	}

	seen := make(map[string]bool, len(d.Environments))
	for i, env := range d.Environments {
		field := fmt.Sprintf("environments[%d]", i)

		var missing []string
		if env.Name == "" {
			missing = append(missing, "name")
		}
		if env.Provider == "" {
			missing = append(missing, "provider")
		}
		if env.ProjectID == "" {
			missing = append(missing, "projectId")
		}
		if env.Region == "" {
			missing = append(missing, "region")
		}
		if len(missing) > 0 {
			return dserrors.ConfigError{
				Field:      field,
				Value:      env.Name,
				Message:    "missing required fields: " + strings.Join(missing, ", "),
				Suggestion: "Every environment needs name, provider, projectId and region",
			}
		}

		if !env.Provider.Valid() {
			return dserrors.ConfigError{
				Field:      field + ".provider",
				Value:      env.Provider,
				Message:    fmt.Sprintf("invalid provider for environment '%s'", env.Name),
				Suggestion: "Supported providers are: 'gcp', 'aws'",
			}
		}

		if seen[env.Name] {
			return dserrors.ConfigError{
				Field:      field + ".name",
				Value:      env.Name,
				Message:    "duplicate environment name",
				Suggestion: "Environment names must be unique",
			}
		}
		seen[env.Name] = true
	}

	if d.DefaultEnvironment != "" && !seen[d.DefaultEnvironment] {
		return dserrors.ConfigError{
			Field:      "defaultEnvironment",
			Value:      d.DefaultEnvironment,
			Message:    "default environment is not defined",
			Suggestion: "Available environments: " + strings.Join(d.EnvironmentNames(), ", "),
		}
	}

	return nil
}

// EnvironmentNames returns environment names in file order.
func (d *Definition) EnvironmentNames() []string {
	names := make([]string, 0, len(d.Environments))
	for _, env := range d.Environments {
		names = append(names, env.Name)
	}
	return names
}

// GetEnvironment returns the configuration for a specific environment
func (c *Config) GetEnvironment(name string) (provider.Environment, error) {
	if c.Definition == nil {
		return provider.Environment{}, dserrors.UserError{
			Message:    "Configuration not loaded",
			Suggestion: "This is an internal error. Please report it",
		}
	}

	for _, env := range c.Definition.Environments {
		if env.Name == name {
			return env, nil
		}
	}

	return provider.Environment{}, dserrors.EnvironmentNotFound(name, c.Definition.EnvironmentNames())
}

// DefaultEnvironment returns defaultEnvironment, or the first environment
// when none is set.
func (c *Config) DefaultEnvironment() (provider.Environment, error) {
	if c.Definition == nil {
		return provider.Environment{}, dserrors.UserError{
			Message:    "Configuration not loaded",
			Suggestion: "This is an internal error. Please report it",
		}
	}

	if c.Definition.DefaultEnvironment != "" {
		return c.GetEnvironment(c.Definition.DefaultEnvironment)
	}
	if len(c.Definition.Environments) == 0 {
		return provider.Environment{}, dserrors.EnvironmentNotFound("default", nil)
	}
	return c.Definition.Environments[0], nil
}

// ResolveEnvironment picks the named environment (or the default when name
// is empty) and applies the project and region overrides to a copy.
func (c *Config) ResolveEnvironment(name string) (provider.Environment, error) {
	var (
		env provider.Environment
		err error
	)
	if name != "" {
		env, err = c.GetEnvironment(name)
	} else {
		env, err = c.DefaultEnvironment()
	}
	if err != nil {
		return provider.Environment{}, err
	}
	return env.WithOverrides(c.ProjectOverride, c.RegionOverride), nil
}

// GetPrompter returns the configured prompter, creating a terminal one on
// in/out when none was injected.
func (c *Config) GetPrompter(in io.Reader, out io.Writer) prompt.Prompter {
	if c.Prompter == nil {
		c.Prompter = prompt.NewTerminal(in, out, c.NonInteractive)
	}
	return c.Prompter
}

// DefaultDefinition returns the three-environment template written by
// 'cloudsec init --non-interactive'.
func DefaultDefinition() *Definition {
	env := func(name, label string) provider.Environment {
		return provider.Environment{
			Name:      name,
			Provider:  provider.KindGCP,
			ProjectID: "your-" + name + "-project-id",
			Region:    DefaultRegion,
			Prefix:    name + "-",
			Labels: map[string]string{
				"environment": label,
				"managed_by":  "cloudsec",
			},
		}
	}

	return &Definition{
		Environments: []provider.Environment{
			env("dev", "development"),
			env("staging", "staging"),
			env("prod", "production"),
		},
		DefaultEnvironment: "dev",
		DefaultProject:     "your-default-project-id",
		DefaultRegion:      DefaultRegion,
	}
}
