package execenv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dserrors "github.com/systmms/cloudsec/internal/errors"
)

func TestParseShell(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]Shell{"": ShellBash, "bash": ShellBash, "ZSH": ShellZsh, "fish": ShellFish} {
		got, err := ParseShell(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, "input %q", in)
	}

	_, err := ParseShell("powershell")
	assert.ErrorIs(t, err, dserrors.ErrInvalidInput)
}

func TestEscape(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{`say "hi"`, `say \"hi\"`},
		{"a\nb", `a\nb`},
		{"a\r\nb", `a\r\nb`},
		{"a\tb", `a\tb`},
		{`C:\path`, `C:\\path`},
		{`\n literal`, `\\n literal`},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Escape(tt.in), "escape %q", tt.in)
	}
}

func TestEscapeUnescapeRoundTrip(t *testing.T) {
	t.Parallel()

	values := []string{
		"",
		"bar",
		`quote " and backslash \`,
		"multi\nline\r\nvalue",
		"\ttabbed\t",
		`\\n already escaped \"`,
		"unicode ✓ héllo",
		`trailing backslash \`,
	}

	for _, v := range values {
		assert.Equal(t, v, Unescape(Escape(v)), "value %q", v)
	}
}

func TestAssignment(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `FOO="bar"`, Assignment(ShellBash, false, "FOO", "bar"))
	assert.Equal(t, `export FOO="bar"`, Assignment(ShellBash, true, "FOO", "bar"))
	assert.Equal(t, `export FOO="bar"`, Assignment(ShellZsh, true, "FOO", "bar"))
	assert.Equal(t, `set -gx FOO "bar"`, Assignment(ShellFish, true, "FOO", "bar"))
	assert.Equal(t, `set -g FOO "bar"`, Assignment(ShellFish, false, "FOO", "bar"))
	assert.Equal(t, `export K="a=b"`, Assignment(ShellBash, true, "K", "a=b"))
}

func TestFormat(t *testing.T) {
	t.Parallel()

	secrets := map[string]string{
		"APP_DB_URL": "postgres://db",
		"APP_TOKEN":  "t\"k",
		"OTHER":      "x",
	}

	t.Run("sorted by key", func(t *testing.T) {
		t.Parallel()
		lines := Format(secrets, FormatOptions{Shell: ShellBash, Export: true})
		assert.Equal(t, []string{
			`export APP_DB_URL="postgres://db"`,
			`export APP_TOKEN="t\"k"`,
			`export OTHER="x"`,
		}, lines)
	})

	t.Run("filter then strip prefix", func(t *testing.T) {
		t.Parallel()
		lines := Format(secrets, FormatOptions{Shell: ShellBash, Filter: "APP_", StripPrefix: "APP_"})
		assert.Equal(t, []string{`DB_URL="postgres://db"`, `TOKEN="t\"k"`}, lines)
	})

	t.Run("prefix only stripped when present", func(t *testing.T) {
		t.Parallel()
		lines := Format(secrets, FormatOptions{Shell: ShellFish, Export: true, StripPrefix: "APP_"})
		assert.Equal(t, []string{
			`set -gx DB_URL "postgres://db"`,
			`set -gx TOKEN "t\"k"`,
			`set -gx OTHER "x"`,
		}, lines)
	})

	t.Run("no match", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, Format(secrets, FormatOptions{Filter: "NOPE"}))
	})
}

func TestVariables(t *testing.T) {
	t.Parallel()

	got := Variables(map[string]string{"APP_A": "1", "B": "2"}, FormatOptions{StripPrefix: "APP_"})
	assert.Equal(t, map[string]string{"A": "1", "B": "2"}, got)

	got = Variables(map[string]string{"APP_A": "1", "B": "2"}, FormatOptions{Filter: "APP"})
	assert.Equal(t, map[string]string{"APP_A": "1"}, got)
}

func TestVariablesPrefixCollisionMatchesFormat(t *testing.T) {
	t.Parallel()

	secrets := map[string]string{"APP_TOKEN": "from-app", "TOKEN": "plain"}
	opts := FormatOptions{StripPrefix: "APP_", Export: true}

	for i := 0; i < 50; i++ {
		assert.Equal(t, map[string]string{"TOKEN": "plain"}, Variables(secrets, opts))
	}

	lines := Format(secrets, opts)
	require.Len(t, lines, 2)
	assert.Equal(t, `export TOKEN="plain"`, lines[len(lines)-1], "last assignment wins in a shell")
}
