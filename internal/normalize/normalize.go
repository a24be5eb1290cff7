// Package normalize превращает сохранённый component pattern в форму,
// готовую для UI: ссылки на field type и definition разрешаются в значения.
//
// Нормализация выполняется только на чтении; в хранилище остаются сырые ссылки.
package normalize

import (
	"encoding/json"
	"time"

	"pagexpress/internal/pattern"
)

// FieldTypeLookup ищет вид поля по id.
type FieldTypeLookup interface {
	FieldType(id string) (pattern.FieldType, bool)
}

// DefinitionLookup ищет definition по id.
type DefinitionLookup interface {
	Definition(id string) (pattern.Definition, bool)
}

// Field — поле после нормализации: вместо fieldTypeId плоский type,
// definedOptionsId разрешён в options/defaultValue.
type Field struct {
	ID           string                `json:"id,omitempty"`
	Name         string                `json:"name"`
	Label        string                `json:"label"`
	Description  string                `json:"description,omitempty"`
	Required     bool                  `json:"required"`
	Type         string                `json:"type"`
	DefaultValue any                   `json:"defaultValue,omitempty"`
	Options      []pattern.FieldOption `json:"options,omitempty"`
}

type Fieldset struct {
	ID          string  `json:"id,omitempty"`
	Name        string  `json:"name"`
	Label       string  `json:"label"`
	Description string  `json:"description,omitempty"`
	Required    bool    `json:"required"`
	Fields      []Field `json:"fields"`
}

// Pattern — нормализованный документ. nil в Fields/Fieldset — ключа нет,
// пустой срез — [].
type Pattern struct {
	ID          string     `json:"id,omitempty"`
	Name        string     `json:"name"`
	Label       string     `json:"label"`
	Description string     `json:"description,omitempty"`
	Fields      []Field    `json:"fields,omitempty"`
	Fieldset    []Fieldset `json:"fieldset,omitempty"`
	Version     int64      `json:"version,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

func (p Pattern) MarshalJSON() ([]byte, error) {
	type alias Pattern
	out := struct {
		alias
		Fields   *[]Field    `json:"fields,omitempty"`
		Fieldset *[]Fieldset `json:"fieldset,omitempty"`
	}{alias: alias(p)}
	if p.Fields != nil {
		out.Fields = &p.Fields
	}
	if p.Fieldset != nil {
		out.Fieldset = &p.Fieldset
	}
	return json.Marshal(out)
}

// ComponentPattern нормализует документ и каждый его fieldset.
// Не паникует: неразрешимая ссылка просто не даёт значений.
func ComponentPattern(doc pattern.ComponentPattern, types FieldTypeLookup, defs DefinitionLookup) Pattern {
	out := Pattern{
		ID:          doc.ID,
		Name:        doc.Name,
		Label:       doc.Label,
		Description: doc.Description,
		Version:     doc.Version,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}
	if doc.Fields != nil {
		out.Fields = fields(doc.Fields, types, defs)
	}
	if doc.Fieldset != nil {
		out.Fieldset = make([]Fieldset, 0, len(doc.Fieldset))
		for _, set := range doc.Fieldset {
			out.Fieldset = append(out.Fieldset, Fieldset{
				ID:          set.ID,
				Name:        set.Name,
				Label:       set.Label,
				Description: set.Description,
				Required:    set.Required,
				Fields:      fields(set.Fields, types, defs),
			})
		}
	}
	return out
}

func fields(in []pattern.Field, types FieldTypeLookup, defs DefinitionLookup) []Field {
	out := make([]Field, 0, len(in))
	for _, f := range in {
		out = append(out, FieldData(f, types, defs))
	}
	return out
}

// FieldData нормализует одно поле.
//
// options: values из definition, если ссылка есть и values непустые, иначе свои.
// defaultValue: default из definition, если он «истинный», иначе свой.
// Пустой definition считается отсутствующим (как и раньше, проверка по истинности).
func FieldData(f pattern.Field, types FieldTypeLookup, defs DefinitionLookup) Field {
	out := Field{
		ID:           f.ID,
		Name:         f.Name,
		Label:        f.Label,
		Description:  f.Description,
		Required:     f.Required,
		DefaultValue: f.DefaultValue,
		Options:      f.Options.InlineOptions(),
	}
	if types != nil {
		if ft, ok := types.FieldType(f.FieldTypeID); ok {
			out.Type = ft.Type
		}
	}

	defID, ok := f.Options.DefinitionID()
	if !ok || defs == nil {
		return out
	}
	def, found := defs.Definition(defID)
	if !found {
		return out
	}
	if len(def.Values) > 0 {
		out.Options = def.Values
	}
	if truthy(def.DefaultValue) {
		out.DefaultValue = def.DefaultValue
	}
	return out
}

// truthy — «непустое» значение: nil, false, "", 0 и пустые коллекции пустые.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	case float32:
		return t != 0
	case int:
		return t != 0
	case int64:
		return t != 0
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}
