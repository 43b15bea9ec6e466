package errors_test

import (
	stderrors "errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/systmms/cloudsec/internal/errors"
)

func TestUserErrorFormatting(t *testing.T) {
	t.Parallel()

	err := errors.UserError{
		Message:    "Operation failed",
		Details:    "Connection timeout",
		Suggestion: "Check network connectivity",
	}

	msg := err.Error()
	assert.Contains(t, msg, "Operation failed")
	assert.Contains(t, msg, "Details: Connection timeout")
	assert.Contains(t, msg, "Try: Check network connectivity")
}

func TestUserErrorFallsBackToWrapped(t *testing.T) {
	t.Parallel()

	inner := fmt.Errorf("boom")
	err := errors.UserError{Err: inner}
	assert.Equal(t, "boom", err.Error())
	assert.ErrorIs(t, err, inner)
}

func TestConfigErrorFormatting(t *testing.T) {
	t.Parallel()

	err := errors.ConfigError{
		Field:      "environments[0].provider",
		Value:      "azure",
		Message:    "unknown provider",
		Suggestion: "Use gcp or aws",
	}

	msg := err.Error()
	assert.Contains(t, msg, "environments[0].provider")
	assert.Contains(t, msg, "azure")
	assert.Contains(t, msg, "unknown provider")
	assert.Contains(t, msg, "Use gcp or aws")
}

func TestCommandErrorFormatting(t *testing.T) {
	t.Parallel()

	err := errors.CommandError{Command: "npm start", ExitCode: 2, Message: "exited"}
	assert.Contains(t, err.Error(), "npm start")
	assert.Contains(t, err.Error(), "exit code: 2")
}

func TestSentinelHelpers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		sentinel error
		contains string
	}{
		{"config not found", errors.ConfigNotFound(".cloudsec.yaml"), errors.ErrConfigNotFound, ".cloudsec.yaml"},
		{"environment not found", errors.EnvironmentNotFound("qa", []string{"dev", "prod"}), errors.ErrEnvironmentNotFound, "dev, prod"},
		{"unsupported provider", errors.UnsupportedProvider("azure"), errors.ErrUnsupportedProvider, "azure"},
		{"corrupt blob", errors.CorruptBlob("dev-secrets", fmt.Errorf("unexpected EOF")), errors.ErrCorruptBlob, "unexpected EOF"},
		{"invalid input", errors.InvalidInput("Value cannot be empty", ""), errors.ErrInvalidInput, "Value cannot be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.ErrorIs(t, tt.err, tt.sentinel)
			assert.Contains(t, tt.err.Error(), tt.contains)
		})
	}
}

func TestSimplifyError(t *testing.T) {
	t.Parallel()

	assert.Nil(t, errors.SimplifyError(nil))

	wrapped := fmt.Errorf("wrapped: %w", errors.InvalidInput("bad", ""))
	assert.Equal(t, wrapped, errors.SimplifyError(wrapped))

	_, statErr := os.Stat("/definitely/not/here")
	require.Error(t, statErr)
	simplified := errors.SimplifyError(statErr)
	var ue errors.UserError
	require.True(t, stderrors.As(simplified, &ue))
	assert.Equal(t, "File or directory not found", ue.Message)

	yamlErr := errors.SimplifyError(fmt.Errorf("yaml: line 3: mapping values are not allowed"))
	var ce errors.ConfigError
	require.True(t, stderrors.As(yamlErr, &ce))
	assert.Equal(t, "Invalid YAML format", ce.Message)

	plain := fmt.Errorf("something else")
	assert.Equal(t, plain, errors.SimplifyError(plain))
}
