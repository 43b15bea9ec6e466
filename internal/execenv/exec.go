// Package execenv turns a secrets blob into process environment: shell
// assignment lines for eval, or the environment of a child command.
package execenv

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"

	dserrors "github.com/systmms/cloudsec/internal/errors"
	"github.com/systmms/cloudsec/internal/logging"
)

// Executor runs commands with secrets injected as environment variables
type Executor struct {
	logger *logging.Logger

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Environ returns the parent environment; os.Environ when nil.
	Environ func() []string
}

// New creates an executor wired to the process's standard streams
func New(logger *logging.Logger) *Executor {
	return &Executor{
		logger: logger,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// ExecOptions configures command execution
type ExecOptions struct {
	Command      []string          // Command and arguments to run
	Environment  map[string]string // Variables taken from the blob
	KeepExisting bool              // Existing variables win over blob values
	PrintVars    bool              // List injected names with masked values on stderr
	WorkingDir   string
}

// Exec runs the command and waits for it. A non-zero exit is returned as a
// CommandError carrying the child's exit code.
func (e *Executor) Exec(ctx context.Context, options ExecOptions) error {
	if err := ValidateCommand(options.Command); err != nil {
		return err
	}

	cmdName := options.Command[0]
	env := e.buildEnvironment(options.Environment, options.KeepExisting)

	if options.PrintVars {
		e.printEnvironment(options.Environment)
	}

	cmd := exec.CommandContext(ctx, cmdName, options.Command[1:]...)
	cmd.Env = env
	cmd.Stdin = e.Stdin
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr
	if options.WorkingDir != "" {
		cmd.Dir = options.WorkingDir
	}

	commandLine := logging.Redact(strings.Join(options.Command, " "), values(options.Environment))
	e.logger.Debug("Executing command: %s", commandLine)
	e.logger.Debug("Environment variables injected: %d", len(options.Environment))

	if err := cmd.Run(); err != nil {
		cmdErr := dserrors.CommandError{
			Command:    commandLine,
			Message:    err.Error(),
			Suggestion: "Check the command output above for details",
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			cmdErr.ExitCode = exitErr.ExitCode()
		}
		return cmdErr
	}
	return nil
}

func values(vars map[string]string) []string {
	out := make([]string, 0, len(vars))
	for _, v := range vars {
		out = append(out, v)
	}
	return out
}

func (e *Executor) environ() []string {
	if e.Environ != nil {
		return e.Environ()
	}
	return os.Environ()
}

// buildEnvironment merges vars into the parent environment, sorted by name
func (e *Executor) buildEnvironment(vars map[string]string, keepExisting bool) []string {
	envMap := make(map[string]string)
	for _, kv := range e.environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			envMap[k] = v
		}
	}

	for key, value := range vars {
		if _, exists := envMap[key]; exists && keepExisting {
			continue
		}
		envMap[key] = value
	}

	result := make([]string, 0, len(envMap))
	for key, value := range envMap {
		result = append(result, key+"="+value)
	}
	sort.Strings(result)
	return result
}

func (e *Executor) printEnvironment(vars map[string]string) {
	if len(vars) == 0 {
		fmt.Fprintln(e.Stderr, "No secrets to inject")
		return
	}

	fmt.Fprintf(e.Stderr, "Injecting %d environment variables:\n", len(vars))
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		fmt.Fprintf(e.Stderr, "  %s=%s\n", key, MaskValue(vars[key]))
	}
}

// ValidateCommand checks that a command was given and is on PATH
func ValidateCommand(command []string) error {
	if len(command) == 0 {
		return dserrors.UserError{
			Message:    "No command specified",
			Suggestion: "Provide a command after -- (e.g., cloudsec exec -e dev -- npm start)",
			Err:        dserrors.ErrInvalidInput,
		}
	}

	if _, err := exec.LookPath(command[0]); err != nil {
		return dserrors.WrapCommandNotFound(command[0], err)
	}
	return nil
}
