// Package pattern описывает документ component pattern и справочные данные,
// на которые ссылаются его поля.
package pattern

import "time"

// FieldType — вид значения поля (text, boolean, date, ...). Неизменяемый справочник.
type FieldType struct {
	ID          string `json:"id" yaml:"id"`
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// FieldOption — один вариант выбора.
type FieldOption struct {
	Name  string `json:"name" yaml:"name"`
	Value any    `json:"value" yaml:"value"`
}

// Definition — именованный набор вариантов, общий для нескольких полей.
type Definition struct {
	ID           string        `json:"id" yaml:"id"`
	Name         string        `json:"name" yaml:"name"`
	Values       []FieldOption `json:"values" yaml:"values"`
	DefaultValue any           `json:"defaultValue,omitempty" yaml:"defaultValue,omitempty"`
}

// Field — типизированный слот данных внутри паттерна или fieldset'а.
// Кодирование в JSON — в field_json.go.
type Field struct {
	ID           string
	Name         string
	Label        string
	Description  string
	Required     bool
	FieldTypeID  string
	DefaultValue any
	Options      OptionSource
}

// Fieldset — именованная упорядоченная группа полей.
type Fieldset struct {
	ID          string  `json:"id,omitempty"`
	Name        string  `json:"name"`
	Label       string  `json:"label"`
	Description string  `json:"description,omitempty"`
	Required    bool    `json:"required"`
	Fields      []Field `json:"fields"`
}

// ComponentPattern — корневой документ. nil в Fields/Fieldset означает
// «ключа нет» (так хранилище представляет отсутствие полей).
type ComponentPattern struct {
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

// Main — основные атрибуты паттерна без идентичности и вложенных коллекций.
type Main struct {
	Name        string `json:"name"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
}

// MainOf вырезает основные атрибуты из документа.
func MainOf(p ComponentPattern) Main {
	return Main{Name: p.Name, Label: p.Label, Description: p.Description}
}

// Page — страница списка, как её отдаёт GET /component-patterns.
type Page struct {
	Data         []ComponentPattern `json:"data"`
	CurrentPage  int                `json:"currentPage"`
	TotalPages   int                `json:"totalPages"`
	ItemsPerPage int                `json:"itemsPerPage"`
}
