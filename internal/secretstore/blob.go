package secretstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/systmms/cloudsec/pkg/provider"
)

// BlobResource is the resource-local name of the blob before prefixing.
const BlobResource = "secrets"

// ErrKeyNotFound is returned for keys absent from a blob. It matches
// provider.ErrNotFound.
var ErrKeyNotFound = fmt.Errorf("key %w", provider.ErrNotFound)

// BlobName returns "<prefix>secrets" for env.
func BlobName(env provider.Environment) string {
	return env.Prefix + BlobResource
}

// Blob maps secret keys to values for one environment.
type Blob map[string]string

// DecodeError describes a payload that is not a JSON object of strings.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return e.Reason + ": " + e.Err.Error()
	}
	return e.Reason
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// DecodeBlob parses a stored payload. Blank payloads decode to an empty blob.
func DecodeBlob(raw string) (Blob, error) {
	if strings.TrimSpace(raw) == "" {
		return Blob{}, nil
	}

	var doc interface{}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, &DecodeError{Reason: "malformed JSON", Err: err}
	}

	obj, ok := doc.(map[string]interface{})
	if !ok {
		return nil, &DecodeError{Reason: fmt.Sprintf("expected a JSON object, got %s", jsonKind(doc))}
	}

	b := make(Blob, len(obj))
	for k, v := range obj {
		s, ok := v.(string)
		if !ok {
			return nil, &DecodeError{Reason: fmt.Sprintf("value of %q is %s, not a string", k, jsonKind(v))}
		}
		b[k] = s
	}
	return b, nil
}

func jsonKind(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "a boolean"
	case float64:
		return "a number"
	case string:
		return "a string"
	case []interface{}:
		return "an array"
	case map[string]interface{}:
		return "an object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// EncodeBlob renders b with sorted keys and two-space indentation. HTML
// characters are written as-is.
func EncodeBlob(b Blob) (string, error) {
	if b == nil {
		b = Blob{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(map[string]string(b)); err != nil {
		return "", fmt.Errorf("failed to encode secrets: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// Keys returns the blob's keys in sorted order.
func (b Blob) Keys() []string {
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the value stored under key.
func (b Blob) Get(key string) (string, error) {
	v, ok := b[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	return v, nil
}

// Set stores value under key and reports whether the key already existed.
func (b Blob) Set(key, value string) (updated bool) {
	_, updated = b[key]
	b[key] = value
	return updated
}

// Delete removes key. An absent key leaves b unchanged and returns
// ErrKeyNotFound.
func (b Blob) Delete(key string) error {
	if _, ok := b[key]; !ok {
		return fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	delete(b, key)
	return nil
}

// Merge copies every entry of imported into b, overwriting existing keys.
// Keys absent from imported are untouched. Both returned lists are sorted.
func (b Blob) Merge(imported map[string]string) (added, updated []string) {
	keys := make([]string, 0, len(imported))
	for k := range imported {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if b.Set(k, imported[k]) {
			updated = append(updated, k)
		} else {
			added = append(added, k)
		}
	}
	return added, updated
}

// Diff reports which keys of imported already exist in b and which are new,
// without changing b.
func (b Blob) Diff(imported map[string]string) (added, updated []string) {
	clone := make(Blob, len(b))
	for k, v := range b {
		clone[k] = v
	}
	return clone.Merge(imported)
}
