package reference

import "pagexpress/internal/pattern"

// Registry — справочники field types и definitions. После загрузки только читается.
type Registry struct {
	fieldTypes  []pattern.FieldType
	definitions []pattern.Definition
	typeByID    map[string]pattern.FieldType
	defByID     map[string]pattern.Definition
}

// NewRegistry собирает реестр из готовых списков (тесты, seed из кода).
func NewRegistry(fieldTypes []pattern.FieldType, definitions []pattern.Definition) *Registry {
	r := &Registry{
		fieldTypes:  append([]pattern.FieldType(nil), fieldTypes...),
		definitions: append([]pattern.Definition(nil), definitions...),
		typeByID:    make(map[string]pattern.FieldType, len(fieldTypes)),
		defByID:     make(map[string]pattern.Definition, len(definitions)),
	}
	for _, ft := range r.fieldTypes {
		r.typeByID[ft.ID] = ft
	}
	for _, d := range r.definitions {
		r.defByID[d.ID] = d
	}
	return r
}

// FieldTypes — полный список видов полей (копия).
func (r *Registry) FieldTypes() []pattern.FieldType {
	return append([]pattern.FieldType(nil), r.fieldTypes...)
}

// Definitions — полный список definitions (копия).
func (r *Registry) Definitions() []pattern.Definition {
	return append([]pattern.Definition(nil), r.definitions...)
}

func (r *Registry) FieldType(id string) (pattern.FieldType, bool) {
	ft, ok := r.typeByID[id]
	return ft, ok
}

func (r *Registry) Definition(id string) (pattern.Definition, bool) {
	d, ok := r.defByID[id]
	return d, ok
}
