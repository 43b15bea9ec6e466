package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		input  string
		want   string
	}{
		{"adds prefix", "dev-", "secrets", "dev-secrets"},
		{"keeps prefixed name", "dev-", "dev-secrets", "dev-secrets"},
		{"empty prefix", "", "secrets", "secrets"},
		{"name coincidentally starting with prefix", "app", "apple", "apple"},
		{"empty name", "dev-", "", "dev-"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ResolveName(tt.prefix, tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, ResolveName(tt.prefix, got), "resolution must be idempotent")
		})
	}
}

func TestEnvironmentPaths(t *testing.T) {
	t.Parallel()

	env := Environment{Name: "dev", Provider: KindGCP, ProjectID: "acme-dev", Prefix: "dev-"}

	assert.Equal(t, "projects/acme-dev", env.ProjectPath())
	assert.Equal(t, "dev-secrets", env.SecretID("secrets"))
	assert.Equal(t, "projects/acme-dev/secrets/dev-secrets", env.SecretPath("secrets"))
	assert.Equal(t, "projects/acme-dev/secrets/dev-secrets", env.SecretPath("dev-secrets"))
}

func TestMergedLabels(t *testing.T) {
	t.Parallel()

	env := Environment{Labels: map[string]string{"environment": "dev", "managed_by": "cloudsec"}}
	merged := env.MergedLabels(map[string]string{"managed_by": "ci", "team": "core"})

	assert.Equal(t, map[string]string{
		"environment": "dev",
		"managed_by":  "ci",
		"team":        "core",
	}, merged)
	assert.Equal(t, "cloudsec", env.Labels["managed_by"], "environment labels must not be mutated")
	assert.Equal(t, []string{"environment", "managed_by"}, env.LabelKeys())
}

func TestWithOverrides(t *testing.T) {
	t.Parallel()

	env := Environment{Name: "dev", ProjectID: "p1", Region: "us-central1", Labels: map[string]string{"a": "b"}}

	over := env.WithOverrides("p2", "")
	assert.Equal(t, "p2", over.ProjectID)
	assert.Equal(t, "us-central1", over.Region)

	over.Labels["a"] = "changed"
	assert.Equal(t, "b", env.Labels["a"], "overrides must copy labels")

	assert.Equal(t, "europe-west1", env.WithOverrides("", "europe-west1").Region)
	assert.Equal(t, "p1", env.ProjectID)
}

func TestKindValid(t *testing.T) {
	t.Parallel()

	assert.True(t, KindGCP.Valid())
	assert.True(t, KindAWS.Valid())
	assert.False(t, Kind("azure").Valid())
	assert.False(t, Kind("").Valid())
}
