package pattern

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownAttribute — у документа нет атрибута с таким именем.
var ErrUnknownAttribute = errors.New("unknown attribute")

// fieldWire — форма поля «как хранится»: сырые ссылки fieldTypeId/definedOptionsId.
type fieldWire struct {
	ID               string        `json:"id,omitempty"`
	Name             string        `json:"name"`
	Label            string        `json:"label"`
	Description      string        `json:"description,omitempty"`
	Required         bool          `json:"required"`
	FieldTypeID      string        `json:"fieldTypeId,omitempty"`
	DefaultValue     any           `json:"defaultValue,omitempty"`
	DefinedOptionsID string        `json:"definedOptionsId,omitempty"`
	Options          []FieldOption `json:"options,omitempty"`
}

func (f Field) MarshalJSON() ([]byte, error) {
	w := fieldWire{
		ID:           f.ID,
		Name:         f.Name,
		Label:        f.Label,
		Description:  f.Description,
		Required:     f.Required,
		FieldTypeID:  f.FieldTypeID,
		DefaultValue: f.DefaultValue,
	}
	if id, ok := f.Options.DefinitionID(); ok {
		w.DefinedOptionsID = id
	} else {
		w.Options = f.Options.InlineOptions()
	}
	return json.Marshal(w)
}

func (f *Field) UnmarshalJSON(b []byte) error {
	var w fieldWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*f = Field{
		ID:           w.ID,
		Name:         w.Name,
		Label:        w.Label,
		Description:  w.Description,
		Required:     w.Required,
		FieldTypeID:  w.FieldTypeID,
		DefaultValue: w.DefaultValue,
	}
	switch {
	case strings.TrimSpace(w.DefinedOptionsID) != "" && len(w.Options) > 0:
		f.Options = legacyDefinition(w.DefinedOptionsID, w.Options)
	case strings.TrimSpace(w.DefinedOptionsID) != "":
		f.Options = FromDefinition(w.DefinedOptionsID)
	default:
		f.Options = Inline(w.Options)
	}
	return nil
}

// MarshalJSON пишет fields/fieldset только если коллекция не nil:
// пустой срез уходит как [], nil — как отсутствие ключа.
func (p ComponentPattern) MarshalJSON() ([]byte, error) {
	type alias ComponentPattern
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

// With возвращает копию поля с заменённым атрибутом name.
// Выбор definedOptionsId переключает поле на Definition, options — обратно на свой список.
func (f Field) With(name string, value any) (Field, error) {
	switch name {
	case "name":
		s, err := asString(name, value)
		if err != nil {
			return f, err
		}
		f.Name = s
	case "label":
		s, err := asString(name, value)
		if err != nil {
			return f, err
		}
		f.Label = s
	case "description":
		s, err := asString(name, value)
		if err != nil {
			return f, err
		}
		f.Description = s
	case "required":
		v, ok := value.(bool)
		if !ok {
			return f, fmt.Errorf("field %q expected bool", name)
		}
		f.Required = v
	case "fieldTypeId":
		s, err := asString(name, value)
		if err != nil {
			return f, err
		}
		f.FieldTypeID = s
	case "defaultValue":
		f.DefaultValue = value
	case "definedOptionsId":
		s, err := asString(name, value)
		if err != nil {
			return f, err
		}
		if strings.TrimSpace(s) == "" {
			f.Options = Inline(nil)
		} else {
			f.Options = FromDefinition(s)
		}
	case "options":
		opts, err := asOptions(value)
		if err != nil {
			return f, err
		}
		f.Options = Inline(opts)
	default:
		return f, fmt.Errorf("field: %w %q", ErrUnknownAttribute, name)
	}
	return f, nil
}

// With возвращает копию основных атрибутов с заменённым name.
func (m Main) With(name string, value any) (Main, error) {
	s, err := asString(name, value)
	if err != nil {
		return m, err
	}
	switch name {
	case "name":
		m.Name = s
	case "label":
		m.Label = s
	case "description":
		m.Description = s
	default:
		return m, fmt.Errorf("component pattern: %w %q", ErrUnknownAttribute, name)
	}
	return m, nil
}

// With возвращает копию fieldset'а с заменённым атрибутом (кроме fields — для них
// есть отдельные операции редактора, но полный список тоже можно подменить).
func (s Fieldset) With(name string, value any) (Fieldset, error) {
	switch name {
	case "name", "label", "description":
		v, err := asString(name, value)
		if err != nil {
			return s, err
		}
		switch name {
		case "name":
			s.Name = v
		case "label":
			s.Label = v
		default:
			s.Description = v
		}
	case "required":
		v, ok := value.(bool)
		if !ok {
			return s, fmt.Errorf("field %q expected bool", name)
		}
		s.Required = v
	case "fields":
		v, ok := value.([]Field)
		if !ok {
			return s, fmt.Errorf("field %q expected []Field", name)
		}
		s.Fields = append([]Field(nil), v...)
	default:
		return s, fmt.Errorf("fieldset: %w %q", ErrUnknownAttribute, name)
	}
	return s, nil
}

func asString(name string, value any) (string, error) {
	switch t := value.(type) {
	case string:
		return t, nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("field %q expected string", name)
	}
}

// asOptions принимает как []FieldOption, так и сырой JSON-массив объектов.
func asOptions(value any) ([]FieldOption, error) {
	switch t := value.(type) {
	case nil:
		return nil, nil
	case []FieldOption:
		return append([]FieldOption(nil), t...), nil
	case []any:
		out := make([]FieldOption, 0, len(t))
		for _, it := range t {
			m, ok := it.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("field %q expected array of {name, value}", "options")
			}
			name, _ := m["name"].(string)
			out = append(out, FieldOption{Name: name, Value: m["value"]})
		}
		return out, nil
	default:
		return nil, fmt.Errorf("field %q expected array of {name, value}", "options")
	}
}
