// Package store хранит сырые документы component pattern.
//
// Хранилище присваивает ulid самому паттерну и каждому вложенному полю и
// fieldset'у, ведёт version и метки времени. Нормализация сюда не относится.
package store

import (
	"context"
	"errors"
	"strings"

	"pagexpress/internal/pattern"
)

var (
	ErrNotFound        = errors.New("component pattern not found")
	ErrDuplicateName   = errors.New("component pattern name already exists")
	ErrVersionConflict = errors.New("version conflict")
	ErrInvalidSort     = errors.New("invalid sort field")
)

const (
	DefaultLimit = 25
	MaxLimit     = 100
	DefaultSort  = "-updatedAt"
)

// sortColumns: имя в API -> колонка SQL.
var sortColumns = map[string]string{
	"name":      "name",
	"label":     "label",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

// ListParams: параметры списка. Нулевые значения заменяются дефолтами.
type ListParams struct {
	Page   int
	Limit  int
	Search string
	Sort   string
}

// Repository: хранилище паттернов.
// expectedVersion в Update: 0 — без проверки.
type Repository interface {
	List(ctx context.Context, p ListParams) (pattern.Page, error)
	Get(ctx context.Context, id string) (pattern.ComponentPattern, error)
	Create(ctx context.Context, doc pattern.ComponentPattern) (pattern.ComponentPattern, error)
	Update(ctx context.Context, id string, doc pattern.ComponentPattern, expectedVersion int64) (pattern.ComponentPattern, error)
	Delete(ctx context.Context, id string) error
}

// Normalize подставляет дефолты и проверяет sort.
func (p ListParams) Normalize() (ListParams, error) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	p.Search = strings.TrimSpace(p.Search)
	if p.Sort == "" {
		p.Sort = DefaultSort
	}
	if _, _, err := ParseSort(p.Sort); err != nil {
		return p, err
	}
	return p, nil
}

// ParseSort разбирает "-field" / "field".
func ParseSort(s string) (field string, desc bool, err error) {
	field = s
	if strings.HasPrefix(field, "-") {
		desc = true
		field = field[1:]
	}
	if _, ok := sortColumns[field]; !ok {
		return "", false, ErrInvalidSort
	}
	return field, desc, nil
}

// SortFields: допустимые поля сортировки.
func SortFields() []string {
	return []string{"name", "label", "createdAt", "updatedAt"}
}

func totalPages(total, limit int) int {
	if total == 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

func matches(doc pattern.ComponentPattern, search string) bool {
	if search == "" {
		return true
	}
	q := strings.ToLower(search)
	return strings.Contains(strings.ToLower(doc.Name), q) ||
		strings.Contains(strings.ToLower(doc.Label), q)
}
