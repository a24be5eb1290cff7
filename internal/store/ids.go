package store

import (
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"pagexpress/internal/pattern"
)

// idGen: монотонные ulid; ulid.Monotonic не потокобезопасен, поэтому mutex.
type idGen struct {
	mu      sync.Mutex
	entropy io.Reader
}

func newIDGen() *idGen {
	src := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &idGen{entropy: ulid.Monotonic(src, 0)}
}

func (g *idGen) next(now time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(now), g.entropy).String()
}

// assignNested раздаёт id вложенным полям и fieldset'ам, у которых его нет.
// Входной документ не меняется.
func (g *idGen) assignNested(doc pattern.ComponentPattern, now time.Time) pattern.ComponentPattern {
	if doc.Fields != nil {
		fields := make([]pattern.Field, len(doc.Fields))
		for i, f := range doc.Fields {
			if f.ID == "" {
				f.ID = g.next(now)
			}
			fields[i] = f
		}
		doc.Fields = fields
	}
	if doc.Fieldset != nil {
		sets := make([]pattern.Fieldset, len(doc.Fieldset))
		for i, set := range doc.Fieldset {
			if set.ID == "" {
				set.ID = g.next(now)
			}
			fields := make([]pattern.Field, len(set.Fields))
			for j, f := range set.Fields {
				if f.ID == "" {
					f.ID = g.next(now)
				}
				fields[j] = f
			}
			set.Fields = fields
			sets[i] = set
		}
		doc.Fieldset = sets
	}
	return doc
}

// clonePattern копирует срезы, чтобы вызывающий не мог поменять хранимое.
func clonePattern(doc pattern.ComponentPattern) pattern.ComponentPattern {
	if doc.Fields != nil {
		doc.Fields = append([]pattern.Field{}, doc.Fields...)
	}
	if doc.Fieldset != nil {
		sets := make([]pattern.Fieldset, len(doc.Fieldset))
		for i, set := range doc.Fieldset {
			if set.Fields != nil {
				set.Fields = append([]pattern.Field{}, set.Fields...)
			}
			sets[i] = set
		}
		doc.Fieldset = sets
	}
	if doc.CreatedAt != nil {
		t := *doc.CreatedAt
		doc.CreatedAt = &t
	}
	if doc.UpdatedAt != nil {
		t := *doc.UpdatedAt
		doc.UpdatedAt = &t
	}
	return doc
}
