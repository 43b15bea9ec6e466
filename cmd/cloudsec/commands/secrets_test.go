package commands

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dserrors "github.com/systmms/cloudsec/internal/errors"
	"github.com/systmms/cloudsec/pkg/provider"
)

func TestListCommand(t *testing.T) {
	c := newCLI(t)

	r := c.mustRun("", "ls")
	assert.Contains(t, r.stdout, "Secrets in dev environment:")
	assert.Contains(t, r.stdout, "Secret: dev-secrets")
	assert.Contains(t, r.stderr, "⚠ No secrets found")

	c.fake.AddSecretString("acme-dev", "dev-secrets", `{"ZED":"short","API_KEY":"abcdefghijkl"}`)

	r = c.mustRun("", "list")
	assert.Contains(t, r.stdout, "Key                                     Value\n")
	assert.Contains(t, r.stdout, "API_KEY                                 abcd****ijkl\n")
	assert.Contains(t, r.stdout, "ZED                                     *****\n")
	assert.Less(t, strings.Index(r.stdout, "API_KEY"), strings.Index(r.stdout, "ZED"))
	assert.Contains(t, r.stdout, "Total: 2 secrets")
	assert.NotContains(t, r.stdout, "abcdefghijkl")
}

func TestGetCommandMissingKey(t *testing.T) {
	c := newCLI(t)
	c.fake.AddSecretString("acme-dev", "dev-secrets", `{"A":"1"}`)

	r := c.run("", "get", "B")
	require.Error(t, r.err)
	assert.True(t, provider.IsNotFound(r.err))
	assert.Contains(t, r.err.Error(), `Secret "B" not found in dev environment`)
	assert.Empty(t, r.stdout)
}

func TestSetCommandAddedThenUpdated(t *testing.T) {
	c := newCLI(t)

	r := c.mustRun("", "set", "TOKEN", "one")
	assert.Contains(t, r.stderr, "Added secret: TOKEN")

	r = c.mustRun("", "set", "TOKEN", "two")
	assert.Contains(t, r.stderr, "Updated secret: TOKEN")
	assert.Equal(t, "{\n  \"TOKEN\": \"two\"\n}", c.blob())
	assert.Equal(t, 2, c.fake.CallCount("AddSecretVersion"))
	assert.Equal(t, 1, c.fake.CallCount("CreateSecret"))
}

func TestSetCommandLabelsOnCreate(t *testing.T) {
	c := newCLI(t)

	c.mustRun("", "set", "A", "1", "--label", "team=core", "--label", "tier=gold")

	secret := c.fake.Secrets["projects/acme-dev/secrets/dev-secrets"]
	require.NotNil(t, secret)
	assert.Equal(t, map[string]string{
		"environment": "development",
		"managed_by":  "cloudsec",
		"team":        "core",
		"tier":        "gold",
	}, secret.Labels)

	c.mustRun("", "set", "B", "2", "--label", "team=other")
	assert.Equal(t, "core", c.fake.Secrets["projects/acme-dev/secrets/dev-secrets"].Labels["team"],
		"labels of existing resources are not updated")
}

func TestSetCommandValueSources(t *testing.T) {
	t.Run("prompt", func(t *testing.T) {
		c := newCLI(t)
		r := c.mustRun("\nhunter2\n", "set", "PASSWORD")
		assert.Contains(t, r.stderr, "Enter value for PASSWORD:")
		assert.Contains(t, r.stderr, "Value is required")
		assert.Contains(t, c.blob(), `"PASSWORD": "hunter2"`)
	})

	t.Run("stdin", func(t *testing.T) {
		c := newCLI(t)
		c.mustRun("from-pipe\n", "set", "PIPED", "--stdin")
		assert.Contains(t, c.blob(), `"PIPED": "from-pipe"`)
	})

	t.Run("file", func(t *testing.T) {
		c := newCLI(t)
		path := filepath.Join(c.dir, "cert.pem")
		require.NoError(t, os.WriteFile(path, []byte("-----BEGIN-----\nabc\n-----END-----\n"), 0o600))

		c.mustRun("", "set", "CERT", "--from-file", path)
		r := c.mustRun("", "get", "CERT")
		assert.Equal(t, "-----BEGIN-----\nabc\n-----END-----\n", r.stdout)
	})

	t.Run("non-interactive without value", func(t *testing.T) {
		c := newCLI(t)
		r := c.run("", "--non-interactive", "set", "PASSWORD")
		require.Error(t, r.err)
		assert.ErrorIs(t, r.err, dserrors.ErrInvalidInput)
		assert.Equal(t, 0, c.fake.CallCount("AddSecretVersion"))
	})

	t.Run("two sources", func(t *testing.T) {
		c := newCLI(t)
		r := c.run("x\n", "set", "A", "1", "--stdin")
		assert.ErrorIs(t, r.err, dserrors.ErrInvalidInput)
	})
}

func TestDeleteCommand(t *testing.T) {
	t.Run("removes only the key", func(t *testing.T) {
		c := newCLI(t)
		c.fake.AddSecretString("acme-dev", "dev-secrets", `{"A":"1","B":"2"}`)

		r := c.mustRun("y\n", "rm", "A")
		assert.Contains(t, r.stderr, "Deleted secret: A")
		assert.Equal(t, "{\n  \"B\": \"2\"\n}", c.blob())
	})

	t.Run("missing key leaves blob unchanged", func(t *testing.T) {
		c := newCLI(t)
		c.fake.AddSecretString("acme-dev", "dev-secrets", `{"A":"1"}`)

		r := c.run("", "delete", "NOPE", "--force")
		require.Error(t, r.err)
		assert.True(t, provider.IsNotFound(r.err))
		assert.Equal(t, `{"A":"1"}`, c.blob())
		assert.Equal(t, 0, c.fake.CallCount("AddSecretVersion"))

		again := c.run("", "delete", "NOPE", "--force")
		assert.Equal(t, r.err.Error(), again.err.Error())
	})

	t.Run("declined", func(t *testing.T) {
		c := newCLI(t)
		c.fake.AddSecretString("acme-dev", "dev-secrets", `{"A":"1"}`)

		r := c.mustRun("n\n", "delete", "A")
		assert.Contains(t, r.stderr, "Operation cancelled")
		assert.Equal(t, `{"A":"1"}`, c.blob())
	})

	t.Run("non-interactive requires force", func(t *testing.T) {
		c := newCLI(t)
		c.fake.AddSecretString("acme-dev", "dev-secrets", `{"A":"1"}`)

		r := c.run("", "--non-interactive", "delete", "A")
		require.Error(t, r.err)
		assert.Equal(t, `{"A":"1"}`, c.blob())
	})
}
