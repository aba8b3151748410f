package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/skuquery/internal/attr"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFileJSONArray(t *testing.T) {
	path := writeFile(t, "snap.json", `[
		{"id": "1", "skuId": "SKU-001", "createdAt": 1700000000000, "updatedAt": 1700000000001,
		 "attributes": [{"key": "name", "value": "Gaming Mouse"}, {"key": "dpi", "value": 16000}]}
	]`)

	s, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, 1, s.Len())

	r := s.At(0)
	assert.Equal(t, "SKU-001", r.SKU)
	assert.Equal(t, int64(1700000000000), r.CreatedAt)
	v, ok := r.Lookup("dpi")
	require.True(t, ok)
	assert.Equal(t, attr.Number(16000), v)
}

func TestLoadFileYAMLRecordsKey(t *testing.T) {
	path := writeFile(t, "snap.yaml", `
records:
  - id: "1"
    skuId: SKU-003
    createdAt: 1700000000000
    updatedAt: 1700000000000
    attributes:
      - key: name
        value: Mechanical Keyboard
      - key: backlight
        value: true
      - key: colors
        value: [black, white]
      - key: weight
        value: null
`)

	s, err := LoadFile(path)
	require.NoError(t, err)
	r := s.At(0)
	require.Len(t, r.Attributes, 4)
	assert.Equal(t, "name", r.Attributes[0].Key)

	v, _ := r.Lookup("backlight")
	assert.Equal(t, attr.Bool(true), v)
	v, _ = r.Lookup("colors")
	assert.True(t, attr.Equal(attr.TextList("black", "white"), v))
	v, ok := r.Lookup("weight")
	assert.True(t, ok)
	assert.Equal(t, attr.Null{}, v)
}

func TestLoadFileAttributeMapSortedByKey(t *testing.T) {
	path := writeFile(t, "snap.yml", `
- id: a
  attributes:
    zeta: 1
    alpha: two
`)
	s, err := LoadFile(path)
	require.NoError(t, err)
	r := s.At(0)
	require.Len(t, r.Attributes, 2)
	assert.Equal(t, "alpha", r.Attributes[0].Key)
	assert.Equal(t, "zeta", r.Attributes[1].Key)
}

func TestLoadFileErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    string
	}{
		{"unknown extension", "snap.txt", "[]", "unsupported snapshot format"},
		{"bad json", "snap.json", "{", "parse snapshot"},
		{"scalar document", "snap.json", "42", "expected top-level array or object"},
		{"missing records key", "snap.json", `{"items": []}`, `"records" key`},
		{"bad attributes", "snap.json", `[{"id": "a", "attributes": 3}]`, "expected list or map"},
		{"bad timestamp", "snap.json", `[{"id": "a", "createdAt": "yesterday"}]`, "createdAt"},
		{"duplicate ids", "snap.json", `[{"id": "a"}, {"id": "a"}]`, "duplicate id"},
		{"duplicate keys", "snap.json", `[{"id": "a", "attributes": [{"key": "k", "value": 1}, {"key": "k", "value": 2}]}]`, "duplicate attribute key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFile(writeFile(t, tt.file, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read snapshot")
}

func TestDecodeEmptyDocuments(t *testing.T) {
	recs, err := DecodeYAML([]byte(""))
	require.NoError(t, err)
	assert.Empty(t, recs)

	recs, err = DecodeJSON([]byte(`{"records": null}`))
	require.NoError(t, err)
	assert.Empty(t, recs)
}
