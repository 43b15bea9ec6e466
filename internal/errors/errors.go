package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the failure classes commands branch on.
var (
	ErrConfigNotFound      = errors.New("config file not found")
	ErrEnvironmentNotFound = errors.New("environment not found")
	ErrUnsupportedProvider = errors.New("unsupported provider")
	ErrCorruptBlob         = errors.New("secrets blob is not a JSON object of strings")
	ErrInvalidInput        = errors.New("invalid input")
)

// UserError represents an error that should be shown to the user with helpful context
type UserError struct {
	Message    string
	Suggestion string
	Details    string
	Err        error
}

func (e UserError) Error() string {
	var parts []string

	if e.Message != "" {
		parts = append(parts, e.Message)
	} else if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}

	if e.Details != "" {
		parts = append(parts, "\n  Details: "+e.Details)
	}

	if e.Suggestion != "" {
		parts = append(parts, "\n  💡 Try: "+e.Suggestion)
	}

	return strings.Join(parts, "")
}

func (e UserError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration error with helpful context
type ConfigError struct {
	Field      string
	Value      interface{}
	Message    string
	Suggestion string
	Err        error
}

func (e ConfigError) Error() string {
	msg := "Configuration error"
	if e.Field != "" {
		msg += fmt.Sprintf(" in field '%s'", e.Field)
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	msg += ": " + e.Message

	if e.Suggestion != "" {
		msg += "\n  💡 " + e.Suggestion
	}

	return msg
}

func (e ConfigError) Unwrap() error {
	return e.Err
}

// CommandError represents a failed child process started by exec
type CommandError struct {
	Command    string
	ExitCode   int
	Message    string
	Suggestion string
}

func (e CommandError) Error() string {
	msg := fmt.Sprintf("Command '%s' failed", e.Command)
	if e.ExitCode != 0 {
		msg += fmt.Sprintf(" (exit code: %d)", e.ExitCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}

	if e.Suggestion != "" {
		msg += "\n  💡 " + e.Suggestion
	}

	return msg
}

// ConfigNotFound reports a missing configuration file.
func ConfigNotFound(path string) error {
	return ConfigError{
		Field:      "path",
		Value:      path,
		Message:    "configuration file does not exist",
		Suggestion: "Run 'cloudsec init' to create one, or pass --config",
		Err:        ErrConfigNotFound,
	}
}

// EnvironmentNotFound reports an environment name absent from the config.
func EnvironmentNotFound(name string, known []string) error {
	suggestion := "Add the environment to your config file"
	if len(known) > 0 {
		suggestion = "Available environments: " + strings.Join(known, ", ")
	}
	return UserError{
		Message:    fmt.Sprintf("Environment '%s' not found in configuration", name),
		Suggestion: suggestion,
		Err:        ErrEnvironmentNotFound,
	}
}

// UnsupportedProvider reports a provider kind with no registered backend.
func UnsupportedProvider(kind string) error {
	return UserError{
		Message:    fmt.Sprintf("Unsupported provider: %s", kind),
		Suggestion: "Use 'gcp' as the provider",
		Err:        ErrUnsupportedProvider,
	}
}

// CorruptBlob reports a stored blob that cannot be decoded.
func CorruptBlob(name string, cause error) error {
	details := ""
	if cause != nil {
		details = cause.Error()
	}
	return UserError{
		Message:    fmt.Sprintf("Secret '%s' does not contain a valid secrets object", name),
		Details:    details,
		Suggestion: "Inspect the latest version in the cloud console or restore it with 'cloudsec import --force'",
		Err:        fmt.Errorf("%w: %v", ErrCorruptBlob, cause),
	}
}

// InvalidInput reports bad user-supplied values.
func InvalidInput(message, suggestion string) error {
	return UserError{
		Message:    message,
		Suggestion: suggestion,
		Err:        ErrInvalidInput,
	}
}

// WrapCommandNotFound wraps exec's "executable not found" errors
func WrapCommandNotFound(command string, err error) error {
	return CommandError{
		Command:    command,
		Message:    "command not found",
		Suggestion: fmt.Sprintf("Make sure '%s' is installed and in your PATH", command),
	}
}

// SimplifyError simplifies complex error messages for users
func SimplifyError(err error) error {
	if err == nil {
		return nil
	}

	// Already a user-friendly error
	var userErr UserError
	if errors.As(err, &userErr) {
		return err
	}
	var cfgErr ConfigError
	if errors.As(err, &cfgErr) {
		return err
	}
	var cmdErr CommandError
	if errors.As(err, &cmdErr) {
		return err
	}

	// Unwrap to get the root cause
	rootErr := err
	for {
		unwrapped := errors.Unwrap(rootErr)
		if unwrapped == nil {
			break
		}
		rootErr = unwrapped
	}

	errStr := rootErr.Error()

	if strings.Contains(errStr, "yaml:") {
		return ConfigError{
			Message:    "Invalid YAML format",
			Suggestion: "Check for indentation errors and missing quotes",
			Err:        err,
		}
	}

	if strings.Contains(errStr, "permission denied") {
		return UserError{
			Message:    "Permission denied",
			Suggestion: "Check file permissions or run with appropriate privileges",
			Err:        err,
		}
	}

	if strings.Contains(errStr, "no such file or directory") {
		return UserError{
			Message:    "File or directory not found",
			Suggestion: "Verify the path exists and is spelled correctly",
			Err:        err,
		}
	}

	return err
}
