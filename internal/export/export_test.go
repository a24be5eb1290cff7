package export

import (
	"bytes"
	"testing"

	"pagexpress/internal/pattern"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite_Indent(t *testing.T) {
	var buf bytes.Buffer
	data := pattern.ComponentPattern{
		Name:   "Hero",
		Label:  "<b>Hero</b>",
		Fields: []pattern.Field{},
	}
	require.NoError(t, Write(&buf, data))
	assert.Equal(t, "{\n    \"name\": \"Hero\",\n    \"label\": \"<b>Hero</b>\",\n    \"fields\": []\n}\n", buf.String())
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "Hero.json", FileName("Hero"))
	assert.Equal(t, "a_b_c.json", FileName("a/b\\c"))
	assert.Equal(t, "component-pattern.json", FileName("  "))
	assert.Equal(t, "component-pattern.json", FileName(".."))
}
