package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dserrors "github.com/systmms/cloudsec/internal/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestImportCommand(t *testing.T) {
	t.Run("into empty environment", func(t *testing.T) {
		c := newCLI(t)
		path := writeFile(t, c.dir, "in.json", `{"B":"2","A":"1"}`)

		r := c.mustRun("", "import", path)
		assert.Contains(t, r.stderr, "Importing 2 secrets to dev environment...")
		assert.Contains(t, r.stderr, "Added secret: A")
		assert.Contains(t, r.stderr, "Successfully imported 2 secrets to dev environment")
		assert.Equal(t, "{\n  \"A\": \"1\",\n  \"B\": \"2\"\n}", c.blob())
	})

	t.Run("merges and asks before overwriting", func(t *testing.T) {
		c := newCLI(t)
		c.fake.AddSecretString("acme-dev", "dev-secrets", `{"A":"old","KEEP":"me"}`)
		path := writeFile(t, c.dir, "in.json", `{"A":"new","C":"3"}`)

		r := c.mustRun("y\n", "import", path)
		assert.Contains(t, r.stderr, "Found 2 secrets existing")
		assert.Contains(t, r.stderr, "1 secret will be updated: A")
		assert.Contains(t, r.stderr, "1 new secret will be added: C")
		assert.Contains(t, r.stderr, "Continue with import?")
		assert.Contains(t, r.stderr, "Updated secret: A")
		assert.Equal(t, "{\n  \"A\": \"new\",\n  \"C\": \"3\",\n  \"KEEP\": \"me\"\n}", c.blob())
	})

	t.Run("declined", func(t *testing.T) {
		c := newCLI(t)
		c.fake.AddSecretString("acme-dev", "dev-secrets", `{"A":"old"}`)
		path := writeFile(t, c.dir, "in.json", `{"A":"new"}`)

		r := c.mustRun("n\n", "import", path)
		assert.Contains(t, r.stderr, "Operation cancelled")
		assert.Equal(t, `{"A":"old"}`, c.blob())
		assert.Equal(t, 0, c.fake.CallCount("AddSecretVersion"))
	})

	t.Run("idempotent with force", func(t *testing.T) {
		c := newCLI(t)
		path := writeFile(t, c.dir, "in.json", `{"A":"1"}`)

		c.mustRun("", "import", path)
		first := c.blob()
		c.mustRun("", "import", path, "--force")
		assert.Equal(t, first, c.blob())
	})

	t.Run("dotenv", func(t *testing.T) {
		c := newCLI(t)
		path := writeFile(t, c.dir, "in.env", "# comment\nDB_URL=postgres://db\nQUOTED=\"a b\"\n")

		c.mustRun("", "import", path, "--format", "env")
		assert.Equal(t, "{\n  \"DB_URL\": \"postgres://db\",\n  \"QUOTED\": \"a b\"\n}", c.blob())
	})

	t.Run("empty file", func(t *testing.T) {
		c := newCLI(t)
		path := writeFile(t, c.dir, "in.json", "{}")

		r := c.mustRun("", "import", path)
		assert.Contains(t, r.stderr, "No secrets found in file")
		assert.Equal(t, 0, c.fake.CallCount("AddSecretVersion"))
	})

	t.Run("invalid file", func(t *testing.T) {
		c := newCLI(t)
		c.fake.AddSecretString("acme-dev", "dev-secrets", `{"A":"1"}`)

		for name, content := range map[string]string{
			"broken.json": `{"A":`,
			"nested.json": `{"A":{"b":"c"}}`,
			"number.json": `{"A":1}`,
			"array.json":  `["A"]`,
		} {
			path := writeFile(t, c.dir, name, content)
			r := c.run("", "import", path, "--force")
			require.Error(t, r.err, name)
			assert.ErrorIs(t, r.err, dserrors.ErrInvalidInput, name)
		}
		assert.Equal(t, `{"A":"1"}`, c.blob())
	})

	t.Run("missing file", func(t *testing.T) {
		c := newCLI(t)
		r := c.run("", "import", filepath.Join(c.dir, "nope.json"))
		require.Error(t, r.err)
		assert.Contains(t, r.err.Error(), "File not found")
	})
}

func TestDownloadCommand(t *testing.T) {
	t.Run("explicit output", func(t *testing.T) {
		c := newCLI(t)
		c.fake.AddSecretString("acme-dev", "dev-secrets", `{"B":"2","A":"1"}`)
		out := filepath.Join(c.dir, "out.json")

		r := c.mustRun("", "pull", "-o", out)
		assert.Contains(t, r.stderr, "Successfully downloaded 2 secrets from dev environment to "+out)

		data, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Equal(t, "{\n  \"A\": \"1\",\n  \"B\": \"2\"\n}\n", string(data))

		info, err := os.Stat(out)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	})

	t.Run("default name", func(t *testing.T) {
		c := newCLI(t)
		c.fake.AddSecretString("acme-dev", "dev-secrets", `{"A":"one"}`)
		t.Chdir(c.dir)

		c.mustRun("", "download")
		_, err := os.Stat(filepath.Join(c.dir, "dev-secrets.json"))
		assert.NoError(t, err)

		c.mustRun("", "download", "--format", "env")
		data, err := os.ReadFile(filepath.Join(c.dir, "dev-secrets.env"))
		require.NoError(t, err)
		assert.Equal(t, "A=\"one\"\n", string(data))
	})

	t.Run("import of download restores blob", func(t *testing.T) {
		c := newCLI(t)
		c.fake.AddSecretString("acme-dev", "dev-secrets", `{"A":"x\ny","B":"say \"hi\""}`)
		out := filepath.Join(c.dir, "backup.json")
		c.mustRun("", "download", "-o", out)

		c.mustRun("", "-e", "prod", "import", out)
		raw, ok := c.fake.Payload("acme-prod", "secrets")
		require.True(t, ok)
		assert.Equal(t, "{\n  \"A\": \"x\\ny\",\n  \"B\": \"say \\\"hi\\\"\"\n}", raw)
	})

	t.Run("dotenv round trip keeps numeric strings", func(t *testing.T) {
		c := newCLI(t)
		c.fake.AddSecretString("acme-dev", "dev-secrets", `{"PIN":"007","PLUS":"+5","ZIP":"02134"}`)
		out := filepath.Join(c.dir, "backup.env")
		c.mustRun("", "download", "-o", out, "--format", "env")

		data, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Equal(t, "PIN=\"007\"\nPLUS=\"+5\"\nZIP=\"02134\"\n", string(data))

		c.mustRun("", "-e", "prod", "import", out, "--format", "env")
		raw, ok := c.fake.Payload("acme-prod", "secrets")
		require.True(t, ok)
		assert.Equal(t, "{\n  \"PIN\": \"007\",\n  \"PLUS\": \"+5\",\n  \"ZIP\": \"02134\"\n}", raw)
	})

	t.Run("nothing to download", func(t *testing.T) {
		c := newCLI(t)
		out := filepath.Join(c.dir, "out.json")

		r := c.mustRun("", "download", "-o", out)
		assert.Contains(t, r.stderr, "No secrets found to download")
		_, err := os.Stat(out)
		assert.True(t, os.IsNotExist(err))
	})
}
