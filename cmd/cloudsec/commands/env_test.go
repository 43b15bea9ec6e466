package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systmms/cloudsec/pkg/provider"
)

func TestEnvCommand(t *testing.T) {
	t.Run("missing blob", func(t *testing.T) {
		c := newCLI(t)

		r := c.run("", "env")
		require.Error(t, r.err)
		assert.True(t, provider.IsNotFound(r.err))
		assert.Contains(t, r.err.Error(), `Secret "dev-secrets" not found`)
		assert.Contains(t, r.err.Error(), "cloudsec set <key> <value>")
		assert.Empty(t, r.stdout)
	})

	t.Run("bash escaping", func(t *testing.T) {
		c := newCLI(t)
		c.fake.AddSecretString("acme-dev", "dev-secrets", `{"B":"multi\nline","A":"say \"hi\" $HOME"}`)

		r := c.mustRun("", "env")
		assert.Equal(t, "A=\"say \\\"hi\\\" $HOME\"\nB=\"multi\\nline\"\n", r.stdout)
		assert.Empty(t, r.stderr)
	})

	t.Run("filter and prefix", func(t *testing.T) {
		c := newCLI(t)
		c.fake.AddSecretString("acme-dev", "dev-secrets", `{"APP_HOST":"h","APP_PORT":"1","DB_URL":"u"}`)

		r := c.mustRun("", "env", "--export", "--filter", "APP_", "--prefix", "APP_")
		assert.Equal(t, "export HOST=\"h\"\nexport PORT=\"1\"\n", r.stdout)
	})

	t.Run("no match", func(t *testing.T) {
		c := newCLI(t)
		c.fake.AddSecretString("acme-dev", "dev-secrets", `{"A":"1"}`)

		r := c.mustRun("", "env", "--filter", "ZZZ")
		assert.Empty(t, r.stdout)
	})

	t.Run("fish", func(t *testing.T) {
		c := newCLI(t)
		c.fake.AddSecretString("acme-dev", "dev-secrets", `{"A":"1"}`)

		r := c.mustRun("", "env", "--shell", "fish", "--export")
		assert.Equal(t, "set -gx A \"1\"\n", r.stdout)

		r = c.mustRun("", "env", "--shell", "fish")
		assert.Equal(t, "set -g A \"1\"\n", r.stdout)
	})

	t.Run("invalid shell", func(t *testing.T) {
		c := newCLI(t)
		r := c.run("", "env", "--shell", "powershell")
		require.Error(t, r.err)
		assert.Equal(t, 0, c.fake.CallCount("ListSecrets"))
	})

	t.Run("verbose goes to stderr", func(t *testing.T) {
		c := newCLI(t)
		c.fake.AddSecretString("acme-dev", "dev-secrets", `{"A":"1","B":"2"}`)

		r := c.mustRun("", "env", "--export", "--verbose")
		assert.Equal(t, "export A=\"1\"\nexport B=\"2\"\n", r.stdout)
		assert.Contains(t, r.stderr, "Found 2 secrets")
		assert.Contains(t, r.stderr, "Generated 2 environment variables")
		assert.Contains(t, r.stderr, `eval "$(cloudsec env --export)"`)
	})
}
