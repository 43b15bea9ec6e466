package secretstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systmms/cloudsec/pkg/provider"
)

func TestBlobName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "dev-secrets", BlobName(provider.Environment{Prefix: "dev-"}))
	assert.Equal(t, "secrets", BlobName(provider.Environment{}))
}

func TestDecodeBlob(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		want    Blob
		wantErr string
	}{
		{name: "empty payload", raw: "", want: Blob{}},
		{name: "whitespace payload", raw: " \n", want: Blob{}},
		{name: "empty object", raw: "{}", want: Blob{}},
		{name: "flat object", raw: `{"FOO":"bar","EMPTY":""}`, want: Blob{"FOO": "bar", "EMPTY": ""}},
		{name: "escaped characters", raw: `{"K":"a\"b\nc\td"}`, want: Blob{"K": "a\"b\nc\td"}},
		{name: "malformed", raw: `{"FOO":`, wantErr: "malformed JSON"},
		{name: "array", raw: `["a"]`, wantErr: "got an array"},
		{name: "null", raw: `null`, wantErr: "got null"},
		{name: "number value", raw: `{"PORT":8080}`, wantErr: `"PORT" is a number`},
		{name: "nested value", raw: `{"DB":{"host":"x"}}`, wantErr: `"DB" is an object`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := DecodeBlob(tt.raw)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeBlob(t *testing.T) {
	t.Parallel()

	raw, err := EncodeBlob(Blob{"ZED": "z", "ALPHA": "<a&b>"})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"ALPHA\": \"<a&b>\",\n  \"ZED\": \"z\"\n}", raw)

	raw, err = EncodeBlob(nil)
	require.NoError(t, err)
	assert.Equal(t, "{}", raw)
}

func TestEncodeDecodePreservesValues(t *testing.T) {
	t.Parallel()

	in := Blob{
		"QUOTES":  `say "hi"`,
		"NEWLINE": "line1\nline2",
		"TAB":     "a\tb",
		"UNICODE": "héllo ✓",
	}
	raw, err := EncodeBlob(in)
	require.NoError(t, err)

	out, err := DecodeBlob(raw)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestBlobSetAndGet(t *testing.T) {
	t.Parallel()

	b := Blob{}
	assert.False(t, b.Set("FOO", "bar"))
	assert.True(t, b.Set("FOO", "baz"))

	v, err := b.Get("FOO")
	require.NoError(t, err)
	assert.Equal(t, "baz", v)

	_, err = b.Get("MISSING")
	assert.ErrorIs(t, err, ErrKeyNotFound)
	assert.ErrorIs(t, err, provider.ErrNotFound)
}

func TestBlobDelete(t *testing.T) {
	t.Parallel()

	b := Blob{"A": "1", "B": "2"}

	err := b.Delete("C")
	assert.ErrorIs(t, err, provider.ErrNotFound)
	assert.Equal(t, Blob{"A": "1", "B": "2"}, b)

	require.NoError(t, b.Delete("A"))
	assert.Equal(t, Blob{"B": "2"}, b)
}

func TestBlobMerge(t *testing.T) {
	t.Parallel()

	b := Blob{"KEEP": "k", "SHARED": "old"}
	imported := map[string]string{"SHARED": "new", "NEW2": "n2", "NEW1": "n1"}

	added, updated := b.Merge(imported)
	assert.Equal(t, []string{"NEW1", "NEW2"}, added)
	assert.Equal(t, []string{"SHARED"}, updated)
	assert.Equal(t, Blob{"KEEP": "k", "SHARED": "new", "NEW1": "n1", "NEW2": "n2"}, b)

	// merging the same import again changes nothing
	once := Blob{}
	for k, v := range b {
		once[k] = v
	}
	added, updated = b.Merge(imported)
	assert.Empty(t, added)
	assert.Len(t, updated, 3)
	assert.Equal(t, once, b)
}

func TestBlobDiffDoesNotMutate(t *testing.T) {
	t.Parallel()

	b := Blob{"A": "1"}
	added, updated := b.Diff(map[string]string{"A": "2", "B": "3"})
	assert.Equal(t, []string{"B"}, added)
	assert.Equal(t, []string{"A"}, updated)
	assert.Equal(t, Blob{"A": "1"}, b)
}

func TestBlobKeys(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"A", "B", "C"}, Blob{"C": "", "A": "", "B": ""}.Keys())
	assert.Empty(t, Blob{}.Keys())
}
