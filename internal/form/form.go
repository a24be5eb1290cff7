// Package form строит описания форм редактирования для component pattern,
// поля и fieldset'а из схем валидации и справочников.
package form

import (
	"errors"
	"fmt"

	"pagexpress/internal/pattern"
)

// Виды редактируемых документов.
const (
	KindComponentPattern = "componentPattern"
	KindField            = "field"
	KindFieldset         = "fieldset"
)

// ErrUnknownKind — для такого вида документа формы нет.
var ErrUnknownKind = errors.New("unknown form kind")

// Атрибуты схемы, которые попадают в форму.
var fieldAttributes = []string{"min", "max", "required", "default"}

// Attributes возвращает для каждого атрибута схемы name только min/max/required/default.
// Неизвестная схема — (nil, false): «не найдено», а не «атрибутов нет».
func (s Schemas) Attributes(name string) (map[string]Constraints, bool) {
	schema, ok := s[name]
	if !ok {
		return nil, false
	}
	out := make(map[string]Constraints, len(schema))
	for fieldName, constraints := range schema {
		filtered := Constraints{}
		for _, key := range fieldAttributes {
			if v, ok := constraints[key]; ok {
				filtered[key] = v
			}
		}
		out[fieldName] = filtered
	}
	return out, true
}

// Field — описание одного элемента формы.
type Field struct {
	Name               string                `json:"name"`
	Label              string                `json:"label,omitempty"`
	Type               string                `json:"type,omitempty"`
	TypeFrom           string                `json:"typeFrom,omitempty"`
	DefaultValue       any                   `json:"defaultValue,omitempty"`
	Hidden             bool                  `json:"hidden,omitempty"`
	Options            []pattern.FieldOption `json:"options,omitempty"`
	Attributes         Constraints           `json:"attributes,omitempty"`
	HideWhenFieldValue string                `json:"hideWhenFieldValue,omitempty"`
	Fields             []Field               `json:"fields,omitempty"`
}

// Form — элементы формы в порядке отображения.
type Form []Field

// Field ищет элемент по имени.
func (f Form) Field(name string) (Field, bool) {
	for _, it := range f {
		if it.Name == name {
			return it, true
		}
	}
	return Field{}, false
}

// Builder собирает формы. Справочники передаются явно и дальше только читаются;
// nil-справочник означает «ещё не загружен».
type Builder struct {
	schemas     Schemas
	fieldTypes  []pattern.FieldType
	definitions []pattern.Definition
}

func NewBuilder(schemas Schemas, fieldTypes []pattern.FieldType, definitions []pattern.Definition) *Builder {
	return &Builder{schemas: schemas, fieldTypes: fieldTypes, definitions: definitions}
}

func (b *Builder) attributes(schema string) map[string]Constraints {
	attrs, _ := b.schemas.Attributes(schema)
	return attrs
}

// Form возвращает форму для вида документа.
func (b *Builder) Form(kind string) (Form, error) {
	switch kind {
	case KindComponentPattern:
		return b.MainParameters(), nil
	case KindField:
		return b.FieldForm(), nil
	case KindFieldset:
		return b.FieldsetForm(), nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownKind, kind)
	}
}

// MainParameters — форма основных атрибутов паттерна.
func (b *Builder) MainParameters() Form {
	attrs := b.attributes(SchemaComponentPattern)
	return Form{
		{Name: "name", Type: "text", Label: "Name (Upper CamelCase)", Attributes: attrs["name"]},
		{Name: "label", Type: "text", Attributes: attrs["label"]},
		{Name: "description", Type: "text", Attributes: attrs["description"]},
	}
}

// FieldForm — форма одного поля.
func (b *Builder) FieldForm() Form {
	attrs := b.attributes(SchemaField)
	optionAttrs := b.attributes(SchemaFieldOption)
	fieldTypeOptions := b.FieldTypeOptions()
	definitionOptions := b.DefinitionOptions()

	var defaultType any
	if id := b.DefaultFieldType(); id != "" {
		defaultType = id
	}

	return Form{
		{Name: "required", Type: "boolean", Attributes: attrs["required"]},
		{
			Name:         "fieldTypeId",
			Label:        "Field type",
			Type:         "text",
			DefaultValue: defaultType,
			Hidden:       fieldTypeOptions == nil,
			Options:      fieldTypeOptions,
			Attributes:   attrs["fieldTypeId"],
		},
		{Name: "name", Label: "Name (camelCase)", Type: "text", Attributes: attrs["name"]},
		{Name: "label", Type: "text", Attributes: attrs["label"]},
		{Name: "description", Type: "text", Attributes: attrs["description"]},
		{Name: "defaultValue", Label: "Default value", TypeFrom: "fieldTypeId", Attributes: attrs["defaultValue"]},
		{
			Name:       "definedOptionsId",
			Label:      "Options from global definition",
			Type:       "text",
			Attributes: attrs["definedOptionsId"],
			Hidden:     definitionOptions == nil,
			Options:    definitionOptions,
		},
		{
			Name:               "options",
			Label:              "Custom options",
			Type:               "fieldsGroup",
			Attributes:         attrs["options"],
			HideWhenFieldValue: "definedOptionsId",
			Fields: []Field{
				{Name: "name", Type: "text", Attributes: optionAttrs["name"]},
				{Name: "value", Type: "text", Attributes: optionAttrs["value"]},
			},
		},
	}
}

// FieldsetForm — форма атрибутов fieldset'а.
func (b *Builder) FieldsetForm() Form {
	attrs := b.attributes(SchemaFieldset)
	return Form{
		{Name: "required", Type: "boolean", Attributes: attrs["required"]},
		{Name: "name", Type: "text", Label: "Name (camelCase)", Attributes: attrs["name"]},
		{Name: "label", Type: "text", Attributes: attrs["label"]},
		{Name: "description", Type: "text", Attributes: attrs["description"]},
	}
}

// FieldTypeOptions — field types как варианты выбора {name: type, value: id}.
func (b *Builder) FieldTypeOptions() []pattern.FieldOption {
	if b.fieldTypes == nil {
		return nil
	}
	out := make([]pattern.FieldOption, 0, len(b.fieldTypes))
	for _, ft := range b.fieldTypes {
		out = append(out, pattern.FieldOption{Name: ft.Type, Value: ft.ID})
	}
	return out
}

// DefinitionOptions — definitions как варианты выбора {name, value: id}.
func (b *Builder) DefinitionOptions() []pattern.FieldOption {
	if b.definitions == nil {
		return nil
	}
	out := make([]pattern.FieldOption, 0, len(b.definitions))
	for _, d := range b.definitions {
		out = append(out, pattern.FieldOption{Name: d.Name, Value: d.ID})
	}
	return out
}

// DefaultFieldType — id вида "text" или "", если справочник не загружен.
func (b *Builder) DefaultFieldType() string {
	for _, ft := range b.fieldTypes {
		if ft.Type == "text" {
			return ft.ID
		}
	}
	return ""
}

// NewField — новое поле: все статические defaultValue формы поля переносятся в атрибуты.
func (b *Builder) NewField() pattern.Field {
	var f pattern.Field
	for _, it := range b.FieldForm() {
		if !isSet(it.DefaultValue) {
			continue
		}
		if next, err := f.With(it.Name, it.DefaultValue); err == nil {
			f = next
		}
	}
	return f
}

func isSet(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	default:
		return true
	}
}
