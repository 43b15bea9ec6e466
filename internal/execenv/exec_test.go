package execenv

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dserrors "github.com/systmms/cloudsec/internal/errors"
	"github.com/systmms/cloudsec/internal/logging"
)

func createTestExecutor(environ ...string) (*Executor, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	e := New(logging.NewWithWriter(nil, false, true))
	e.Stdin = strings.NewReader("")
	e.Stdout = &stdout
	e.Stderr = &stderr
	e.Environ = func() []string { return environ }
	return e, &stdout, &stderr
}

func TestExecutor_buildEnvironment(t *testing.T) {
	t.Parallel()

	e, _, _ := createTestExecutor("PATH=/usr/bin", "API_KEY=from-shell", "MALFORMED")

	t.Run("blob values win by default", func(t *testing.T) {
		t.Parallel()
		env := e.buildEnvironment(map[string]string{"API_KEY": "from-blob", "DB_URL": "postgres://x"}, false)
		assert.Equal(t, []string{"API_KEY=from-blob", "DB_URL=postgres://x", "PATH=/usr/bin"}, env)
	})

	t.Run("keep existing", func(t *testing.T) {
		t.Parallel()
		env := e.buildEnvironment(map[string]string{"API_KEY": "from-blob"}, true)
		assert.Contains(t, env, "API_KEY=from-shell")
	})

	t.Run("values with equals signs survive", func(t *testing.T) {
		t.Parallel()
		env := e.buildEnvironment(map[string]string{"DSN": "a=b=c"}, false)
		assert.Contains(t, env, "DSN=a=b=c")
	})
}

func TestExecutor_printEnvironment(t *testing.T) {
	t.Parallel()

	e, stdout, stderr := createTestExecutor()
	e.printEnvironment(map[string]string{"TOKEN": "abcdefghijkl", "PIN": "1234"})

	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "Injecting 2 environment variables")
	assert.Contains(t, stderr.String(), "PIN=****")
	assert.Contains(t, stderr.String(), "TOKEN=abcd****ijkl")
	assert.Less(t, strings.Index(stderr.String(), "PIN"), strings.Index(stderr.String(), "TOKEN"))

	e, _, stderr = createTestExecutor()
	e.printEnvironment(nil)
	assert.Contains(t, stderr.String(), "No secrets to inject")
}

func TestValidateCommand(t *testing.T) {
	t.Parallel()

	err := ValidateCommand(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, dserrors.ErrInvalidInput)

	err = ValidateCommand([]string{"definitely-not-a-real-command-xyz"})
	var cmdErr dserrors.CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Contains(t, cmdErr.Suggestion, "PATH")

	assert.NoError(t, ValidateCommand([]string{"sh"}))
}

func TestExecutor_Exec(t *testing.T) {
	t.Parallel()

	e, stdout, _ := createTestExecutor("PATH=/usr/bin:/bin")
	err := e.Exec(context.Background(), ExecOptions{
		Command:     []string{"sh", "-c", `printf '%s' "$GREETING"`},
		Environment: map[string]string{"GREETING": "hello \"world\""},
	})
	require.NoError(t, err)
	assert.Equal(t, `hello "world"`, stdout.String())
}

func TestExecutor_Exec_ExitCode(t *testing.T) {
	t.Parallel()

	e, _, _ := createTestExecutor("PATH=/usr/bin:/bin")
	err := e.Exec(context.Background(), ExecOptions{Command: []string{"sh", "-c", "exit 3"}})

	var cmdErr dserrors.CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, 3, cmdErr.ExitCode)
}

func TestExecutor_Exec_EmptyCommand(t *testing.T) {
	t.Parallel()

	e, _, _ := createTestExecutor()
	err := e.Exec(context.Background(), ExecOptions{})
	assert.ErrorIs(t, err, dserrors.ErrInvalidInput)
}

func TestExecutor_Exec_RedactsValuesInErrors(t *testing.T) {
	t.Parallel()

	e, _, _ := createTestExecutor("PATH=/usr/bin:/bin")
	err := e.Exec(context.Background(), ExecOptions{
		Command:     []string{"sh", "-c", "exit 1", "s3cr3t-token"},
		Environment: map[string]string{"TOKEN": "s3cr3t-token"},
	})

	var cmdErr dserrors.CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.NotContains(t, cmdErr.Command, "s3cr3t-token")
	assert.Contains(t, cmdErr.Command, "[REDACTED]")
}
