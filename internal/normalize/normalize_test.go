package normalize

import (
	"encoding/json"
	"testing"

	"pagexpress/internal/pattern"
	"pagexpress/internal/reference"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	red  = pattern.FieldOption{Name: "Red", Value: "#f00"}
	blue = pattern.FieldOption{Name: "Blue", Value: "#00f"}
)

func testRegistry() *reference.Registry {
	return reference.NewRegistry(
		[]pattern.FieldType{{ID: "ft_text", Type: "text"}, {ID: "ft_list", Type: "list"}},
		[]pattern.Definition{
			{ID: "colors", Name: "colors", Values: []pattern.FieldOption{red}, DefaultValue: "#f00"},
			{ID: "empty", Name: "empty"},
			{ID: "no-default", Name: "noDefault", Values: []pattern.FieldOption{red}, DefaultValue: ""},
		},
	)
}

func decodePattern(t *testing.T, raw string) pattern.ComponentPattern {
	t.Helper()
	var p pattern.ComponentPattern
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	return p
}

func TestFieldData_ColorExample(t *testing.T) {
	reg := testRegistry()
	doc := decodePattern(t, `{
		"name": "Swatch",
		"fields": [{
			"name": "color",
			"fieldTypeId": "ft_text",
			"definedOptionsId": "colors",
			"options": [{"name": "Blue", "value": "#00f"}],
			"defaultValue": "#00f"
		}]
	}`)

	out := ComponentPattern(doc, reg, reg)
	require.Len(t, out.Fields, 1)

	b, err := json.Marshal(out.Fields[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"name": "color",
		"label": "",
		"required": false,
		"type": "text",
		"options": [{"name": "Red", "value": "#f00"}],
		"defaultValue": "#f00"
	}`, string(b))
}

func TestFieldData_DefinitionWinsOverInline(t *testing.T) {
	reg := testRegistry()
	f := pattern.Field{Name: "c", FieldTypeID: "ft_list", Options: pattern.FromDefinition("colors")}

	out := FieldData(f, reg, reg)
	assert.Equal(t, []pattern.FieldOption{red}, out.Options)
	assert.Equal(t, "#f00", out.DefaultValue)
	assert.Equal(t, "list", out.Type)
}

func TestFieldData_InlineOptionsUnchanged(t *testing.T) {
	reg := testRegistry()
	inline := []pattern.FieldOption{blue, red}
	f := pattern.Field{Name: "c", FieldTypeID: "ft_list", Options: pattern.Inline(inline), DefaultValue: "#00f"}

	out := FieldData(f, reg, reg)
	assert.Equal(t, inline, out.Options)
	assert.Equal(t, "#00f", out.DefaultValue)
}

func TestFieldData_EmptyDefinitionFallsBack(t *testing.T) {
	reg := testRegistry()
	doc := decodePattern(t, `{"name": "X", "fields": [{
		"name": "c", "fieldTypeId": "ft_list", "definedOptionsId": "empty",
		"options": [{"name": "Blue", "value": "#00f"}], "defaultValue": "#00f"
	}]}`)

	out := ComponentPattern(doc, reg, reg)
	require.Len(t, out.Fields, 1)
	assert.Equal(t, []pattern.FieldOption{blue}, out.Fields[0].Options)
	assert.Equal(t, "#00f", out.Fields[0].DefaultValue)
}

func TestFieldData_FalsyDefinitionDefault(t *testing.T) {
	reg := testRegistry()
	f := pattern.Field{Name: "c", Options: pattern.FromDefinition("no-default"), DefaultValue: "own"}

	out := FieldData(f, reg, reg)
	assert.Equal(t, []pattern.FieldOption{red}, out.Options)
	assert.Equal(t, "own", out.DefaultValue)
}

func TestFieldData_MissingReferences(t *testing.T) {
	reg := testRegistry()
	f := pattern.Field{Name: "c", FieldTypeID: "nope", Options: pattern.FromDefinition("nope")}

	var out Field
	assert.NotPanics(t, func() { out = FieldData(f, reg, reg) })
	assert.Empty(t, out.Type)
	assert.Nil(t, out.Options)
	assert.Nil(t, out.DefaultValue)

	assert.NotPanics(t, func() { out = FieldData(f, nil, nil) })
}

func TestComponentPattern_NoKeysInvented(t *testing.T) {
	reg := testRegistry()
	out := ComponentPattern(pattern.ComponentPattern{ID: "1", Name: "Hero"}, reg, reg)

	b, err := json.Marshal(out)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.NotContains(t, m, "fields")
	assert.NotContains(t, m, "fieldset")
}

func TestComponentPattern_EmptyCollectionsKept(t *testing.T) {
	reg := testRegistry()
	doc := decodePattern(t, `{"id":"1","name":"Hero","label":"Hero","fields":[],"fieldset":[]}`)
	out := ComponentPattern(doc, reg, reg)

	b, err := json.Marshal(out)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"1","name":"Hero","label":"Hero","fields":[],"fieldset":[]}`, string(b))

	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, string(raw), string(b))
}

func TestComponentPattern_FieldsetAndNoRawKeys(t *testing.T) {
	reg := testRegistry()
	doc := decodePattern(t, `{
		"name": "Hero",
		"fields": [{"name": "title", "fieldTypeId": "ft_text"}],
		"fieldset": [{"name": "links", "fields": [
			{"name": "color", "fieldTypeId": "ft_list", "definedOptionsId": "colors"},
			{"name": "plain", "fieldTypeId": "ft_text", "options": [{"name": "Blue", "value": "#00f"}]}
		]}]
	}`)

	out := ComponentPattern(doc, reg, reg)
	require.Len(t, out.Fieldset, 1)
	require.Len(t, out.Fieldset[0].Fields, 2)
	assert.Equal(t, "list", out.Fieldset[0].Fields[0].Type)
	assert.Equal(t, []pattern.FieldOption{red}, out.Fieldset[0].Fields[0].Options)
	assert.Equal(t, []pattern.FieldOption{blue}, out.Fieldset[0].Fields[1].Options)

	b, err := json.Marshal(out)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "fieldTypeId")
	assert.NotContains(t, string(b), "definedOptionsId")
}

func TestTruthy(t *testing.T) {
	cases := []struct {
		in   any
		want bool
	}{
		{nil, false},
		{"", false},
		{"x", true},
		{0.0, false},
		{1.5, true},
		{false, false},
		{true, true},
		{[]any{}, false},
		{[]any{1}, true},
		{map[string]any{}, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, truthy(c.in), "%#v", c.in)
	}
}
