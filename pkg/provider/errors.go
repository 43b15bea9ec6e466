package provider

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is matched by every "resource or version missing" error.
	ErrNotFound = errors.New("secret not found")

	// ErrNotImplemented is matched by errors from stub backends.
	ErrNotImplemented = errors.New("provider not implemented")
)

// NotFoundError indicates that a requested secret does not exist in the provider.
//
// Example:
//
//	if status.Code(err) == codes.NotFound {
//	    return "", NotFoundError{Provider: "gcp", Key: env.SecretID(name)}
//	}
type NotFoundError struct {
	// Provider is the kind of backend that reported the miss.
	Provider string

	// Key is the resolved secret id that could not be found.
	Key string
}

// Error implements the error interface.
func (e NotFoundError) Error() string {
	return "secret not found: " + e.Key + " in " + e.Provider
}

// Is makes errors.Is(err, ErrNotFound) succeed.
func (e NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// AuthError indicates that the backend rejected the caller's credentials or
// permissions.
type AuthError struct {
	Provider string
	Message  string
	Err      error
}

// Error implements the error interface.
func (e AuthError) Error() string {
	return "authentication failed for " + e.Provider + ": " + e.Message
}

func (e AuthError) Unwrap() error {
	return e.Err
}

// NotImplementedError is returned by every operation of a stub backend.
type NotImplementedError struct {
	Provider string
	Message  string
}

func (e NotImplementedError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Provider + " provider is not implemented"
}

// Is makes errors.Is(err, ErrNotImplemented) succeed.
func (e NotImplementedError) Is(target error) bool {
	return target == ErrNotImplemented
}

// Error wraps a backend failure with the operation and secret it concerned.
type Error struct {
	Provider   string
	Op         string
	Name       string
	Suggestion string
	Err        error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Provider, e.Op)
	if e.Name != "" {
		msg += " " + e.Name
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Suggestion != "" {
		msg += "\n  💡 " + e.Suggestion
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err matches ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
