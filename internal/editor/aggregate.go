// Package editor — редактируемое представление одного component pattern.
//
// Aggregate — значение: каждая операция возвращает новый Aggregate, исходный
// не меняется. Флаг Dirty выставляют только мутирующие операции, снимают
// только ResetDirty и Reset.
package editor

import (
	"errors"
	"fmt"

	"pagexpress/internal/pattern"
)

// ErrIndexOutOfRange — по адресу нет элемента.
var ErrIndexOutOfRange = errors.New("index out of range")

// Aggregate — основные атрибуты, поля и fieldset'ы паттерна.
// nil в Fields/Fieldset — «пусто» (хранилище так представляет отсутствие).
type Aggregate struct {
	Main     pattern.Main
	Fields   []pattern.Field
	Fieldset []pattern.Fieldset
	Dirty    bool
}

// DropResult — перенос элемента с RemovedIndex на AddedIndex.
type DropResult struct {
	RemovedIndex int `json:"removedIndex"`
	AddedIndex   int `json:"addedIndex"`
}

// LoadSingle разбирает документ: main без идентичности, у вложенных полей и
// fieldset'ов id хранилища снимается. Dirty сбрасывается.
func LoadSingle(doc pattern.ComponentPattern) Aggregate {
	agg := Aggregate{Main: pattern.MainOf(doc)}
	if doc.Fields != nil {
		agg.Fields = stripFields(doc.Fields)
	}
	if doc.Fieldset != nil {
		agg.Fieldset = make([]pattern.Fieldset, 0, len(doc.Fieldset))
		for _, set := range doc.Fieldset {
			set.ID = ""
			set.Fields = stripFields(set.Fields)
			agg.Fieldset = append(agg.Fieldset, set)
		}
	}
	return agg
}

func stripFields(in []pattern.Field) []pattern.Field {
	if in == nil {
		return nil
	}
	out := make([]pattern.Field, len(in))
	for i, f := range in {
		f.ID = ""
		out[i] = f
	}
	return out
}

// ComponentData — тело запроса create/update: пустые коллекции уходят как [].
func (a Aggregate) ComponentData() pattern.ComponentPattern {
	fields := a.Fields
	if fields == nil {
		fields = []pattern.Field{}
	}
	fieldset := a.Fieldset
	if fieldset == nil {
		fieldset = []pattern.Fieldset{}
	}
	return pattern.ComponentPattern{
		Name:        a.Main.Name,
		Label:       a.Main.Label,
		Description: a.Main.Description,
		Fields:      fields,
		Fieldset:    fieldset,
	}
}

// ResetDirty — после успешного сохранения или ухода со страницы.
func (a Aggregate) ResetDirty() Aggregate {
	a.Dirty = false
	return a
}

// Reset — пустой агрегат.
func Reset() Aggregate { return Aggregate{} }

func (a Aggregate) UpdateMainAttribute(name string, value any) (Aggregate, error) {
	m, err := a.Main.With(name, value)
	if err != nil {
		return a, err
	}
	a.Main = m
	a.Dirty = true
	return a, nil
}

func (a Aggregate) UpdateField(index int, name string, value any) (Aggregate, error) {
	fields, err := replaceField(a.Fields, index, name, value)
	if err != nil {
		return a, err
	}
	a.Fields = fields
	a.Dirty = true
	return a, nil
}

// UpdateFieldsetField меняет атрибут самого fieldset'а.
func (a Aggregate) UpdateFieldsetField(setIndex int, name string, value any) (Aggregate, error) {
	if setIndex < 0 || setIndex >= len(a.Fieldset) {
		return a, fmt.Errorf("fieldset %d: %w", setIndex, ErrIndexOutOfRange)
	}
	set, err := a.Fieldset[setIndex].With(name, value)
	if err != nil {
		return a, err
	}
	a.Fieldset = replaceSet(a.Fieldset, setIndex, set)
	a.Dirty = true
	return a, nil
}

// UpdateFieldsetFieldValue меняет атрибут поля внутри fieldset'а.
func (a Aggregate) UpdateFieldsetFieldValue(setIndex, fieldIndex int, name string, value any) (Aggregate, error) {
	if setIndex < 0 || setIndex >= len(a.Fieldset) {
		return a, fmt.Errorf("fieldset %d: %w", setIndex, ErrIndexOutOfRange)
	}
	set := a.Fieldset[setIndex]
	fields, err := replaceField(set.Fields, fieldIndex, name, value)
	if err != nil {
		return a, err
	}
	set.Fields = fields
	a.Fieldset = replaceSet(a.Fieldset, setIndex, set)
	a.Dirty = true
	return a, nil
}

// AddField добавляет новое поле (обычно form.Builder.NewField()).
func (a Aggregate) AddField(f pattern.Field) Aggregate {
	fields := make([]pattern.Field, len(a.Fields), len(a.Fields)+1)
	copy(fields, a.Fields)
	a.Fields = append(fields, f)
	a.Dirty = true
	return a
}

// AddFieldset добавляет fieldset с одним новым полем.
func (a Aggregate) AddFieldset(f pattern.Field) Aggregate {
	sets := make([]pattern.Fieldset, len(a.Fieldset), len(a.Fieldset)+1)
	copy(sets, a.Fieldset)
	a.Fieldset = append(sets, pattern.Fieldset{Fields: []pattern.Field{f}})
	a.Dirty = true
	return a
}

func (a Aggregate) AddFieldsetField(setIndex int, f pattern.Field) (Aggregate, error) {
	if setIndex < 0 || setIndex >= len(a.Fieldset) {
		return a, fmt.Errorf("fieldset %d: %w", setIndex, ErrIndexOutOfRange)
	}
	set := a.Fieldset[setIndex]
	fields := make([]pattern.Field, len(set.Fields), len(set.Fields)+1)
	copy(fields, set.Fields)
	set.Fields = append(fields, f)
	a.Fieldset = replaceSet(a.Fieldset, setIndex, set)
	a.Dirty = true
	return a, nil
}

// RemoveField удаляет поле; опустевший список становится nil.
func (a Aggregate) RemoveField(index int) (Aggregate, error) {
	fields, err := removeAt(a.Fields, index)
	if err != nil {
		return a, fmt.Errorf("field %d: %w", index, err)
	}
	if len(fields) == 0 {
		fields = nil
	}
	a.Fields = fields
	a.Dirty = true
	return a, nil
}

func (a Aggregate) RemoveFieldsetField(setIndex, fieldIndex int) (Aggregate, error) {
	if setIndex < 0 || setIndex >= len(a.Fieldset) {
		return a, fmt.Errorf("fieldset %d: %w", setIndex, ErrIndexOutOfRange)
	}
	set := a.Fieldset[setIndex]
	fields, err := removeAt(set.Fields, fieldIndex)
	if err != nil {
		return a, fmt.Errorf("fieldset %d field %d: %w", setIndex, fieldIndex, err)
	}
	set.Fields = fields
	a.Fieldset = replaceSet(a.Fieldset, setIndex, set)
	a.Dirty = true
	return a, nil
}

// RemoveFieldset удаляет fieldset; опустевший список становится nil.
func (a Aggregate) RemoveFieldset(setIndex int) (Aggregate, error) {
	sets, err := removeAt(a.Fieldset, setIndex)
	if err != nil {
		return a, fmt.Errorf("fieldset %d: %w", setIndex, err)
	}
	if len(sets) == 0 {
		sets = nil
	}
	a.Fieldset = sets
	a.Dirty = true
	return a, nil
}

func (a Aggregate) ReorderFields(drop DropResult) (Aggregate, error) {
	fields, err := Reorder(a.Fields, drop)
	if err != nil {
		return a, fmt.Errorf("fields: %w", err)
	}
	a.Fields = fields
	a.Dirty = true
	return a, nil
}

func (a Aggregate) ReorderFieldsetFields(setIndex int, drop DropResult) (Aggregate, error) {
	if setIndex < 0 || setIndex >= len(a.Fieldset) {
		return a, fmt.Errorf("fieldset %d: %w", setIndex, ErrIndexOutOfRange)
	}
	set := a.Fieldset[setIndex]
	fields, err := Reorder(set.Fields, drop)
	if err != nil {
		return a, fmt.Errorf("fieldset %d: %w", setIndex, err)
	}
	set.Fields = fields
	a.Fieldset = replaceSet(a.Fieldset, setIndex, set)
	a.Dirty = true
	return a, nil
}

func replaceField(in []pattern.Field, index int, name string, value any) ([]pattern.Field, error) {
	if index < 0 || index >= len(in) {
		return nil, fmt.Errorf("field %d: %w", index, ErrIndexOutOfRange)
	}
	f, err := in[index].With(name, value)
	if err != nil {
		return nil, err
	}
	out := make([]pattern.Field, len(in))
	copy(out, in)
	out[index] = f
	return out, nil
}

func replaceSet(in []pattern.Fieldset, index int, set pattern.Fieldset) []pattern.Fieldset {
	out := make([]pattern.Fieldset, len(in))
	copy(out, in)
	out[index] = set
	return out
}
