package provider

import (
	"context"
	"time"
)

// Provider is the capability set every cloud secret backend exposes to cloudsec.
//
// A Provider is bound to exactly one Environment for its whole lifetime. Every
// per-name operation resolves its argument through ResolveName before talking
// to the backend, so callers may pass either the short name ("secrets") or the
// already prefixed resource id ("dev-secrets").
//
// Implementations must not retry failed calls and must not cache results:
// each call is one (or a small fixed number of) round trips to the backend.
type Provider interface {
	// Environment returns the environment this provider was built for.
	Environment() Environment

	// ListSecrets returns metadata for every secret resource in the
	// environment's project whose id starts with the environment prefix.
	//
	// VersionCount and LatestVersion are filled from the resource's version
	// list. UpdateTime falls back to CreateTime when the backend does not
	// report a separate modification time.
	ListSecrets(ctx context.Context) ([]SecretMetadata, error)

	// GetSecret returns the payload of the latest enabled version as text.
	//
	// Returns an error matching ErrNotFound when the resource does not exist
	// or has no accessible version. A version without payload yields "".
	GetSecret(ctx context.Context, name string) (string, error)

	// SetSecret appends value as a new version, creating the resource first
	// when it is absent.
	//
	// On creation the resource gets automatic replication and the environment
	// labels overlaid by labels. Existing resources keep their labels.
	SetSecret(ctx context.Context, name, value string, labels map[string]string) error

	// DeleteSecret removes the resource. With allVersions every version that
	// is not already destroyed is destroyed first.
	DeleteSecret(ctx context.Context, name string, allVersions bool) error

	// SecretExists reports whether the resource exists. Only a not-found
	// response maps to false; every other failure is returned.
	SecretExists(ctx context.Context, name string) (bool, error)

	// SecretVersions lists the resource's versions in backend order, which
	// is newest first for every supported backend.
	SecretVersions(ctx context.Context, name string) ([]SecretVersion, error)

	// TestConnection performs the cheapest authenticated call the backend
	// offers. It never returns an error: failures are logged and reported
	// as false.
	TestConnection(ctx context.Context) bool
}

// Factory builds a Provider for an environment.
type Factory func(ctx context.Context, env Environment) (Provider, error)

// SecretMetadata describes a secret resource without its payload.
type SecretMetadata struct {
	// Name is the resource-local id, e.g. "dev-secrets".
	Name string

	CreateTime time.Time
	UpdateTime time.Time

	Labels map[string]string

	// VersionCount is the number of versions in any state.
	VersionCount int

	// LatestVersion is the id of the newest enabled version, or "" when
	// the resource has none.
	LatestVersion string
}

// VersionState mirrors the backend's version lifecycle.
type VersionState string

const (
	VersionEnabled   VersionState = "ENABLED"
	VersionDisabled  VersionState = "DISABLED"
	VersionDestroyed VersionState = "DESTROYED"
	VersionUnknown   VersionState = "STATE_UNSPECIFIED"
)

// SecretVersion is one entry of a resource's version history.
type SecretVersion struct {
	// Name is the full backend path of the version.
	Name string

	CreateTime time.Time
	State      VersionState

	// Version is the last path segment of Name, e.g. "3".
	Version string
}
