package form

// Имена схем валидации.
const (
	SchemaComponentPattern = "componentPattern"
	SchemaField            = "field"
	SchemaFieldOption      = "fieldOption"
	SchemaFieldset         = "fieldset"
)

// Constraints — ограничения одного атрибута документа (min, max, required, default
// и всё, что ещё кладёт схема: type, ref, ...).
type Constraints map[string]any

// ModelSchema — атрибут -> ограничения.
type ModelSchema map[string]Constraints

// Schemas — имя схемы -> схема.
type Schemas map[string]ModelSchema

// DefaultSchemas — схемы моделей хранилища. min/max для строк — длина,
// для массивов — количество элементов.
func DefaultSchemas() Schemas {
	return Schemas{
		SchemaComponentPattern: {
			"name":        {"type": "string", "required": true, "min": 3, "max": 30},
			"label":       {"type": "string", "required": true, "min": 3, "max": 30},
			"description": {"type": "string", "min": 5, "max": 100},
			"fields":      {"type": "array"},
			"fieldset":    {"type": "array"},
		},
		SchemaField: {
			"name":             {"type": "string", "required": true, "min": 3, "max": 30},
			"label":            {"type": "string", "required": true, "min": 3, "max": 30},
			"description":      {"type": "string", "min": 5, "max": 100},
			"required":         {"type": "boolean", "default": false},
			"defaultValue":     {"type": "mixed"},
			"fieldTypeId":      {"type": "objectId", "ref": "FieldType", "required": true},
			"definedOptionsId": {"type": "objectId", "ref": "Definition"},
			"options":          {"type": "array", "min": 1, "default": nil},
		},
		SchemaFieldOption: {
			"name":  {"type": "string", "required": true, "min": 1},
			"value": {"type": "mixed", "required": true},
		},
		SchemaFieldset: {
			"name":        {"type": "string", "required": true, "min": 3, "max": 30},
			"label":       {"type": "string", "required": true, "min": 3, "max": 30},
			"description": {"type": "string", "min": 5, "max": 100},
			"required":    {"type": "boolean", "default": false},
			"fields":      {"type": "array", "min": 1},
		},
	}
}
