package provider

import (
	"sort"
	"strings"
)

// Kind selects the backend implementation for an environment.
type Kind string

const (
	KindGCP Kind = "gcp"
	KindAWS Kind = "aws"
)

// Kinds lists every provider kind accepted in configuration files.
func Kinds() []Kind {
	return []Kind{KindGCP, KindAWS}
}

// Valid reports whether k is a known provider kind.
func (k Kind) Valid() bool {
	for _, known := range Kinds() {
		if k == known {
			return true
		}
	}
	return false
}

// Environment binds a name to a cloud project, region and optional prefix.
type Environment struct {
	Name      string            `yaml:"name" json:"name"`
	Provider  Kind              `yaml:"provider" json:"provider"`
	ProjectID string            `yaml:"projectId" json:"projectId"`
	Region    string            `yaml:"region" json:"region"`
	Prefix    string            `yaml:"prefix,omitempty" json:"prefix,omitempty"`
	Labels    map[string]string `yaml:"labels,omitempty" json:"labels,omitempty"`

	// CredentialsFile points at a service account key; empty means
	// application default credentials.
	CredentialsFile string `yaml:"credentialsFile,omitempty" json:"credentialsFile,omitempty"`

	// ImpersonateServiceAccount, when set, makes every call as that
	// service account.
	ImpersonateServiceAccount string `yaml:"impersonateServiceAccount,omitempty" json:"impersonateServiceAccount,omitempty"`
}

// ResolveName maps a caller-supplied secret name to the resource id.
//
// Names already starting with prefix are used unchanged; all others get the
// prefix prepended. The mapping is idempotent. A short name that happens to
// begin with the prefix is never prefixed twice.
func ResolveName(prefix, name string) string {
	if strings.HasPrefix(name, prefix) {
		return name
	}
	return prefix + name
}

// SecretID resolves name against the environment prefix.
func (e Environment) SecretID(name string) string {
	return ResolveName(e.Prefix, name)
}

// ProjectPath returns "projects/<projectId>".
func (e Environment) ProjectPath() string {
	return "projects/" + e.ProjectID
}

// SecretPath returns the full resource path for name.
func (e Environment) SecretPath(name string) string {
	return e.ProjectPath() + "/secrets/" + e.SecretID(name)
}

// MergedLabels overlays extra on top of the environment labels. The result is
// a fresh map; neither input is modified.
func (e Environment) MergedLabels(extra map[string]string) map[string]string {
	out := make(map[string]string, len(e.Labels)+len(extra))
	for k, v := range e.Labels {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// WithOverrides returns a copy of e with non-empty project and region applied.
func (e Environment) WithOverrides(projectID, region string) Environment {
	out := e
	out.Labels = e.MergedLabels(nil)
	if projectID != "" {
		out.ProjectID = projectID
	}
	if region != "" {
		out.Region = region
	}
	return out
}

// LabelKeys returns the environment's label keys in sorted order.
func (e Environment) LabelKeys() []string {
	keys := make([]string, 0, len(e.Labels))
	for k := range e.Labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
