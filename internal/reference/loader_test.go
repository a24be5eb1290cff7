package reference

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestLoadRegistry(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "types.yaml", `
kind: fieldTypes
items:
  - id: t1
    type: text
  - id: t2
    type: boolean
    description: switch
`)
	writeFile(t, dir, "defs.yml", `
kind: definitions
items:
  - id: d1
    name: colors
    values:
      - name: Red
        value: "#f00"
    defaultValue: "#f00"
`)
	writeFile(t, dir, "notes.txt", "ignored")

	reg, err := LoadRegistry(dir)
	require.NoError(t, err)

	assert.Len(t, reg.FieldTypes(), 2)
	ft, ok := reg.FieldType("t2")
	require.True(t, ok)
	assert.Equal(t, "boolean", ft.Type)
	assert.Equal(t, "switch", ft.Description)

	d, ok := reg.Definition("d1")
	require.True(t, ok)
	assert.Equal(t, "colors", d.Name)
	require.Len(t, d.Values, 1)
	assert.Equal(t, "#f00", d.Values[0].Value)
	assert.Equal(t, "#f00", d.DefaultValue)

	_, ok = reg.Definition("missing")
	assert.False(t, ok)
}

func TestLoadRegistry_DuplicateID(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", `
kind: fieldTypes
items:
  - id: t1
    type: text
  - id: t1
    type: html
`)
	_, err := LoadRegistry(dir)
	assert.ErrorContains(t, err, "duplicate field type id")
}

func TestLoadRegistry_UnknownKind(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", "kind: widgets\nitems: []\n")
	_, err := LoadRegistry(dir)
	assert.ErrorContains(t, err, "unknown catalog kind")
}

func TestLoadRegistry_MissingDir(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestLoadRegistry_SeedCatalogs(t *testing.T) {
	reg, err := LoadRegistry("../../reference")
	require.NoError(t, err)

	var hasText bool
	for _, ft := range reg.FieldTypes() {
		if ft.Type == "text" {
			hasText = true
		}
	}
	assert.True(t, hasText, "seed catalog must provide the text field type")
	assert.NotEmpty(t, reg.Definitions())
}

func TestRegistry_ReturnsCopies(t *testing.T) {
	reg := NewRegistry(nil, nil)
	assert.Empty(t, reg.FieldTypes())
	assert.Empty(t, reg.Definitions())
}
