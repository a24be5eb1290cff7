package api

import (
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"pagexpress/internal/form"
	"pagexpress/internal/pattern"
	"pagexpress/internal/reference"
	"pagexpress/internal/richtext"
)

type FieldError struct {
	Code    string `json:"code"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Коды ошибок
const (
	ErrRequired        = "required"
	ErrTooShort        = "too_short"
	ErrTooLong         = "too_long"
	ErrInvalid         = "invalid"
	ErrUniqueViolation = "unique_violation"
	ErrRefNotFound     = "ref_not_found"
	ErrNotFound        = "not_found"
	ErrVersionConflict = "version_conflict"
)

func ferr(code, field, msg string) FieldError {
	return FieldError{Code: code, Field: field, Message: msg}
}

func statusForErrors(errs []FieldError) int {
	// 409, если есть конфликтные ошибки (unique/ref/version)
	for _, e := range errs {
		switch e.Code {
		case ErrUniqueViolation, ErrRefNotFound, ErrVersionConflict:
			return http.StatusConflict
		case ErrNotFound:
			return http.StatusNotFound
		}
	}
	return http.StatusBadRequest
}

// ValidatePattern проверяет документ по схемам и ссылкам на справочники.
// Уникальность имени проверяет хранилище.
func ValidatePattern(doc pattern.ComponentPattern, schemas form.Schemas, reg *reference.Registry) []FieldError {
	var errs []FieldError
	main := schemas[form.SchemaComponentPattern]
	errs = checkString(errs, main, "name", "name", doc.Name)
	errs = checkString(errs, main, "label", "label", doc.Label)
	errs = checkString(errs, main, "description", "description", doc.Description)

	for i, f := range doc.Fields {
		errs = validateField(errs, schemas, reg, fmt.Sprintf("fields[%d]", i), f)
	}

	set := schemas[form.SchemaFieldset]
	for i, s := range doc.Fieldset {
		path := fmt.Sprintf("fieldset[%d]", i)
		errs = checkString(errs, set, "name", path+".name", s.Name)
		errs = checkString(errs, set, "label", path+".label", s.Label)
		errs = checkString(errs, set, "description", path+".description", s.Description)
		errs = checkCount(errs, set, "fields", path+".fields", len(s.Fields))
		for j, f := range s.Fields {
			errs = validateField(errs, schemas, reg, fmt.Sprintf("%s.fields[%d]", path, j), f)
		}
	}
	return errs
}

func validateField(errs []FieldError, schemas form.Schemas, reg *reference.Registry, path string, f pattern.Field) []FieldError {
	sch := schemas[form.SchemaField]
	errs = checkString(errs, sch, "name", path+".name", f.Name)
	errs = checkString(errs, sch, "label", path+".label", f.Label)
	errs = checkString(errs, sch, "description", path+".description", f.Description)

	// 1) ссылка на вид поля
	errs = checkString(errs, sch, "fieldTypeId", path+".fieldTypeId", f.FieldTypeID)
	if f.FieldTypeID != "" && reg != nil {
		if _, ok := reg.FieldType(f.FieldTypeID); !ok {
			errs = append(errs, ferr(ErrRefNotFound, path+".fieldTypeId",
				fmt.Sprintf("field type %q not found", f.FieldTypeID)))
		}
	}

	// 2) варианты: либо definition, либо свой список
	if id, ok := f.Options.DefinitionID(); ok {
		if reg != nil {
			if _, found := reg.Definition(id); !found {
				errs = append(errs, ferr(ErrRefNotFound, path+".definedOptionsId",
					fmt.Sprintf("definition %q not found", id)))
			}
		}
		return errs
	}
	// nil — вариантов нет; заданный, но пустой список меньше min
	opts := f.Options.InlineOptions()
	if opts == nil {
		return errs
	}
	errs = checkCount(errs, sch, "options", path+".options", len(opts))
	optSchema := schemas[form.SchemaFieldOption]
	for k, o := range opts {
		op := fmt.Sprintf("%s.options[%d]", path, k)
		errs = checkString(errs, optSchema, "name", op+".name", o.Name)
		if isRequired(optSchema["value"]) && o.Value == nil {
			errs = append(errs, ferr(ErrRequired, op+".value", "value is required"))
		}
	}
	return errs
}

// checkString: required, затем min/max по длине в символах; пустое необязательное не проверяется.
func checkString(errs []FieldError, sch form.ModelSchema, attr, path, value string) []FieldError {
	c, ok := sch[attr]
	if !ok {
		return errs
	}
	value = strings.TrimSpace(value)
	if value == "" {
		if isRequired(c) {
			errs = append(errs, ferr(ErrRequired, path, attr+" is required"))
		}
		return errs
	}
	n := utf8.RuneCountInString(value)
	if min, ok := intConstraint(c, "min"); ok && n < min {
		errs = append(errs, ferr(ErrTooShort, path, fmt.Sprintf("%s must be at least %d characters", attr, min)))
	}
	if max, ok := intConstraint(c, "max"); ok && n > max {
		errs = append(errs, ferr(ErrTooLong, path, fmt.Sprintf("%s must be at most %d characters", attr, max)))
	}
	return errs
}

// checkCount — min/max для количества элементов массива.
func checkCount(errs []FieldError, sch form.ModelSchema, attr, path string, n int) []FieldError {
	c, ok := sch[attr]
	if !ok {
		return errs
	}
	if min, ok := intConstraint(c, "min"); ok && n < min {
		errs = append(errs, ferr(ErrTooShort, path, fmt.Sprintf("%s must have at least %d items", attr, min)))
	}
	if max, ok := intConstraint(c, "max"); ok && n > max {
		errs = append(errs, ferr(ErrTooLong, path, fmt.Sprintf("%s must have at most %d items", attr, max)))
	}
	return errs
}

func isRequired(c form.Constraints) bool {
	v, _ := c["required"].(bool)
	return v
}

func intConstraint(c form.Constraints, key string) (int, bool) {
	switch t := c[key].(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		return int(t), true
	}
	return 0, false
}

// applyRichText переписывает ссылки в строковых defaultValue полей вида html.
func applyRichText(doc pattern.ComponentPattern, reg *reference.Registry) (pattern.ComponentPattern, error) {
	if reg == nil {
		return doc, nil
	}
	rewrite := func(in []pattern.Field) ([]pattern.Field, error) {
		if in == nil {
			return nil, nil
		}
		out := make([]pattern.Field, len(in))
		for i, f := range in {
			if s, ok := f.DefaultValue.(string); ok {
				if ft, found := reg.FieldType(f.FieldTypeID); found && ft.Type == form.InputHTML {
					html, err := richtext.RewriteLinks(s)
					if err != nil {
						return nil, fmt.Errorf("field %q: %w", f.Name, err)
					}
					f.DefaultValue = html
				}
			}
			out[i] = f
		}
		return out, nil
	}

	var err error
	if doc.Fields, err = rewrite(doc.Fields); err != nil {
		return doc, err
	}
	if doc.Fieldset != nil {
		sets := make([]pattern.Fieldset, len(doc.Fieldset))
		for i, s := range doc.Fieldset {
			if s.Fields, err = rewrite(s.Fields); err != nil {
				return doc, err
			}
			sets[i] = s
		}
		doc.Fieldset = sets
	}
	return doc, nil
}
