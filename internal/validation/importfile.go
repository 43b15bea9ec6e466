// Package validation checks the shape of secrets files before they are
// merged into an environment's blob.
package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/xeipuuv/gojsonschema"

	dserrors "github.com/systmms/cloudsec/internal/errors"
)

// Format is a secrets file encoding.
type Format string

const (
	FormatJSON   Format = "json"
	FormatDotenv Format = "env"
)

// ParseFormat accepts json, env or dotenv. Empty means json.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "json":
		return FormatJSON, nil
	case "env", "dotenv":
		return FormatDotenv, nil
	}
	return "", dserrors.InvalidInput(
		fmt.Sprintf("unsupported file format %q", s),
		"Use --format json or --format env",
	)
}

// Extension returns the conventional file suffix.
func (f Format) Extension() string {
	if f == FormatDotenv {
		return ".env"
	}
	return ".json"
}

// secretsSchema accepts exactly a flat object of string values.
const secretsSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "propertyNames": { "minLength": 1 },
  "additionalProperties": { "type": "string" }
}`

var schemaLoader = gojsonschema.NewStringLoader(secretsSchema)

// ValidateJSON checks that data is a flat JSON object of strings. Every
// violation is listed in the returned error.
func ValidateJSON(data []byte) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return dserrors.UserError{
			Message:    "Import file is not valid JSON",
			Details:    err.Error(),
			Suggestion: "The file must contain a JSON object such as {\"API_KEY\": \"value\"}",
			Err:        dserrors.ErrInvalidInput,
		}
	}

	if !result.Valid() {
		var problems []string
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return dserrors.UserError{
			Message:    "Import file must be a flat object of string values",
			Details:    strings.Join(problems, "; "),
			Suggestion: "Nested objects, arrays, numbers and booleans are not converted. Quote every value",
			Err:        dserrors.ErrInvalidInput,
		}
	}
	return nil
}

// ParseSecretsFile decodes data in the given format. A blank file yields an
// empty map.
func ParseSecretsFile(data []byte, format Format) (map[string]string, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]string{}, nil
	}

	switch format {
	case FormatDotenv:
		secrets, err := godotenv.UnmarshalBytes(data)
		if err != nil {
			return nil, dserrors.UserError{
				Message:    "Import file is not a valid dotenv file",
				Details:    err.Error(),
				Suggestion: "Use KEY=value lines; quote values containing spaces or '#'",
				Err:        dserrors.ErrInvalidInput,
			}
		}
		return secrets, nil

	case FormatJSON, "":
		if err := ValidateJSON(data); err != nil {
			return nil, err
		}
		var secrets map[string]string
		if err := json.Unmarshal(data, &secrets); err != nil {
			return nil, fmt.Errorf("failed to decode import file: %w", err)
		}
		return secrets, nil
	}

	_, err := ParseFormat(string(format))
	return nil, err
}

// RenderSecretsFile encodes secrets for download.
func RenderSecretsFile(secrets map[string]string, format Format) ([]byte, error) {
	switch format {
	case FormatDotenv:
		return renderDotenv(secrets)
	default:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(secrets); err != nil {
			return nil, fmt.Errorf("failed to encode JSON: %w", err)
		}
		return buf.Bytes(), nil
	}
}

// dotenvEscaper escapes a value for a double-quoted dotenv line as
// godotenv.UnmarshalBytes reads it back.
var dotenvEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"$", `\$`,
	"`", "\\`",
)

// renderDotenv writes one KEY="value" line per secret, sorted by key. Every
// value is quoted so numeric-looking strings such as 007 are kept verbatim.
// godotenv cannot read back a quoted value ending in a quote or backslash, so
// those are refused.
func renderDotenv(secrets map[string]string) ([]byte, error) {
	keys := make([]string, 0, len(secrets))
	for k := range secrets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	for _, k := range keys {
		v := secrets[k]
		if strings.HasSuffix(v, `"`) || strings.HasSuffix(v, `\`) {
			return nil, dserrors.UserError{
				Message:    fmt.Sprintf("Secret %q cannot be written as a dotenv value", k),
				Details:    "values ending in a double quote or backslash do not survive dotenv parsing",
				Suggestion: "Use --format json for this environment",
				Err:        dserrors.ErrInvalidInput,
			}
		}
		fmt.Fprintf(&buf, "%s=\"%s\"\n", k, dotenvEscaper.Replace(v))
	}
	return buf.Bytes(), nil
}
