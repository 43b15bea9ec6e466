package execenv

import (
	"fmt"
	"sort"
	"strings"

	dserrors "github.com/systmms/cloudsec/internal/errors"
)

// Shell selects the assignment syntax.
type Shell string

const (
	ShellBash Shell = "bash"
	ShellZsh  Shell = "zsh"
	ShellFish Shell = "fish"
)

// ParseShell accepts bash, zsh or fish, case-insensitively. Empty means bash.
func ParseShell(s string) (Shell, error) {
	switch Shell(strings.ToLower(s)) {
	case "", ShellBash:
		return ShellBash, nil
	case ShellZsh:
		return ShellZsh, nil
	case ShellFish:
		return ShellFish, nil
	}
	return "", dserrors.InvalidInput(
		fmt.Sprintf("unsupported shell %q", s),
		"Use one of: bash, zsh, fish",
	)
}

// FormatOptions controls Format.
type FormatOptions struct {
	Shell Shell

	// Export marks variables for child processes.
	Export bool

	// Filter keeps only keys containing this substring. Matching happens
	// before StripPrefix is applied.
	Filter string

	// StripPrefix is removed from the start of keys that carry it.
	StripPrefix string
}

var escaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

// Escape prepares value for a double-quoted assignment.
func Escape(value string) string {
	return escaper.Replace(value)
}

// Unescape inverts Escape.
func Unescape(escaped string) string {
	var b strings.Builder
	b.Grow(len(escaped))

	for i := 0; i < len(escaped); i++ {
		c := escaped[i]
		if c != '\\' || i == len(escaped)-1 {
			b.WriteByte(c)
			continue
		}
		i++
		switch escaped[i] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case '\\', '"':
			b.WriteByte(escaped[i])
		default:
			b.WriteByte('\\')
			b.WriteByte(escaped[i])
		}
	}
	return b.String()
}

// Assignment renders one variable in the chosen syntax.
func Assignment(shell Shell, export bool, key, value string) string {
	quoted := `"` + Escape(value) + `"`
	switch {
	case shell == ShellFish && export:
		return "set -gx " + key + " " + quoted
	case shell == ShellFish:
		return "set -g " + key + " " + quoted
	case export:
		return "export " + key + "=" + quoted
	default:
		return key + "=" + quoted
	}
}

// Format renders secrets as assignment lines sorted by key.
func Format(secrets map[string]string, opts FormatOptions) []string {
	keys := selectKeys(secrets, opts.Filter)
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		name := k
		if opts.StripPrefix != "" {
			name = strings.TrimPrefix(k, opts.StripPrefix)
		}
		lines = append(lines, Assignment(opts.Shell, opts.Export, name, secrets[k]))
	}
	return lines
}

// Variables applies the filter and prefix rules of opts and returns the
// resulting name/value pairs. When stripping the prefix makes two keys
// collide, the later key in sort order wins, matching the line order of
// Format.
func Variables(secrets map[string]string, opts FormatOptions) map[string]string {
	keys := selectKeys(secrets, opts.Filter)
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		name := k
		if opts.StripPrefix != "" {
			name = strings.TrimPrefix(k, opts.StripPrefix)
		}
		out[name] = secrets[k]
	}
	return out
}

// selectKeys returns the keys containing filter, sorted.
func selectKeys(secrets map[string]string, filter string) []string {
	keys := make([]string, 0, len(secrets))
	for k := range secrets {
		if filter != "" && !strings.Contains(k, filter) {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
