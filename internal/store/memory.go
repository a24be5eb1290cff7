package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"pagexpress/internal/pattern"
)

// Memory: хранилище в памяти (по умолчанию и в тестах).
type Memory struct {
	mu   sync.RWMutex
	docs map[string]*pattern.ComponentPattern
	ids  *idGen
	now  func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		docs: make(map[string]*pattern.ComponentPattern),
		ids:  newIDGen(),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (m *Memory) List(_ context.Context, p ListParams) (pattern.Page, error) {
	p, err := p.Normalize()
	if err != nil {
		return pattern.Page{}, err
	}

	m.mu.RLock()
	items := make([]pattern.ComponentPattern, 0, len(m.docs))
	for _, doc := range m.docs {
		if matches(*doc, p.Search) {
			items = append(items, clonePattern(*doc))
		}
	}
	m.mu.RUnlock()

	field, desc, _ := ParseSort(p.Sort)
	sort.SliceStable(items, func(i, j int) bool {
		c := compareBy(items[i], items[j], field)
		if c == 0 {
			c = strings.Compare(items[i].ID, items[j].ID)
		}
		if desc {
			return c > 0
		}
		return c < 0
	})

	total := len(items)
	from := (p.Page - 1) * p.Limit
	if from > total {
		from = total
	}
	to := from + p.Limit
	if to > total {
		to = total
	}
	return pattern.Page{
		Data:         items[from:to],
		CurrentPage:  p.Page,
		TotalPages:   totalPages(total, p.Limit),
		ItemsPerPage: p.Limit,
	}, nil
}

func compareBy(a, b pattern.ComponentPattern, field string) int {
	switch field {
	case "name":
		return strings.Compare(a.Name, b.Name)
	case "label":
		return strings.Compare(a.Label, b.Label)
	case "createdAt":
		return compareTime(a.CreatedAt, b.CreatedAt)
	default:
		return compareTime(a.UpdatedAt, b.UpdatedAt)
	}
}

func compareTime(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return a.Compare(*b)
}

func (m *Memory) Get(_ context.Context, id string) (pattern.ComponentPattern, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[id]
	if !ok {
		return pattern.ComponentPattern{}, ErrNotFound
	}
	return clonePattern(*doc), nil
}

func (m *Memory) Create(_ context.Context, doc pattern.ComponentPattern) (pattern.ComponentPattern, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.nameTakenLocked(doc.Name, "") {
		return pattern.ComponentPattern{}, ErrDuplicateName
	}
	now := m.now()
	doc = m.ids.assignNested(doc, now)
	doc.ID = m.ids.next(now)
	doc.Version = 1
	doc.CreatedAt = &now
	doc.UpdatedAt = &now

	stored := clonePattern(doc)
	m.docs[doc.ID] = &stored
	return clonePattern(doc), nil
}

func (m *Memory) Update(_ context.Context, id string, doc pattern.ComponentPattern, expectedVersion int64) (pattern.ComponentPattern, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.docs[id]
	if !ok {
		return pattern.ComponentPattern{}, ErrNotFound
	}
	if expectedVersion > 0 && cur.Version != expectedVersion {
		return pattern.ComponentPattern{}, ErrVersionConflict
	}
	if m.nameTakenLocked(doc.Name, id) {
		return pattern.ComponentPattern{}, ErrDuplicateName
	}
	now := m.now()
	doc = m.ids.assignNested(doc, now)
	doc.ID = id
	doc.Version = cur.Version + 1
	created := *cur.CreatedAt
	doc.CreatedAt = &created
	doc.UpdatedAt = &now

	stored := clonePattern(doc)
	m.docs[id] = &stored
	return clonePattern(doc), nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; !ok {
		return ErrNotFound
	}
	delete(m.docs, id)
	return nil
}

func (m *Memory) nameTakenLocked(name, exceptID string) bool {
	for id, doc := range m.docs {
		if id != exceptID && doc.Name == name {
			return true
		}
	}
	return false
}
