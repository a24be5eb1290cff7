package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"pagexpress/internal/pattern"
	"pagexpress/internal/pg"
	"pagexpress/internal/sqlite"
)

// Dialect: различия между postgres и sqlite, которые видит SQL.
type Dialect struct {
	Name              string
	Placeholder       func(n int) string
	IsUniqueViolation func(error) bool
}

var (
	Postgres = Dialect{Name: "postgres", Placeholder: pg.Placeholder, IsUniqueViolation: pg.IsUniqueViolation}
	SQLite   = Dialect{Name: "sqlite", Placeholder: sqlite.Placeholder, IsUniqueViolation: sqlite.IsUniqueViolation}
)

// SQL: хранилище поверх database/sql. Документ лежит в колонке doc как JSON,
// name/label/версия/время вынесены в колонки для уникальности, поиска и сортировки.
type SQL struct {
	db  *sql.DB
	d   Dialect
	ids *idGen
	now func() time.Time
}

func NewSQL(db *sql.DB, d Dialect) *SQL {
	return &SQL{
		db:  db,
		d:   d,
		ids: newIDGen(),
		now: func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

const selectColumns = `SELECT id, version, created_at, updated_at, doc FROM component_patterns`

func (s *SQL) List(ctx context.Context, p ListParams) (pattern.Page, error) {
	p, err := p.Normalize()
	if err != nil {
		return pattern.Page{}, err
	}
	ph := s.d.Placeholder

	var (
		where string
		args  []any
	)
	if p.Search != "" {
		like := "%" + escapeLike(strings.ToLower(p.Search)) + "%"
		where = fmt.Sprintf(` WHERE (lower(name) LIKE %s ESCAPE '\' OR lower(label) LIKE %s ESCAPE '\')`, ph(1), ph(2))
		args = append(args, like, like)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM component_patterns`+where, args...).Scan(&total); err != nil {
		return pattern.Page{}, fmt.Errorf("count component patterns: %w", err)
	}

	field, desc, _ := ParseSort(p.Sort)
	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	n := len(args)
	q := fmt.Sprintf(`%s%s ORDER BY %s %s, id %s LIMIT %s OFFSET %s`,
		selectColumns, where, sortColumns[field], dir, dir, ph(n+1), ph(n+2))
	args = append(args, p.Limit, (p.Page-1)*p.Limit)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return pattern.Page{}, fmt.Errorf("list component patterns: %w", err)
	}
	defer rows.Close()

	items := make([]pattern.ComponentPattern, 0, p.Limit)
	for rows.Next() {
		doc, err := scanPattern(rows)
		if err != nil {
			return pattern.Page{}, err
		}
		items = append(items, doc)
	}
	if err := rows.Err(); err != nil {
		return pattern.Page{}, err
	}
	return pattern.Page{
		Data:         items,
		CurrentPage:  p.Page,
		TotalPages:   totalPages(total, p.Limit),
		ItemsPerPage: p.Limit,
	}, nil
}

func (s *SQL) Get(ctx context.Context, id string) (pattern.ComponentPattern, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE id = `+s.d.Placeholder(1), id)
	doc, err := scanPattern(row)
	if errors.Is(err, sql.ErrNoRows) {
		return pattern.ComponentPattern{}, ErrNotFound
	}
	return doc, err
}

func (s *SQL) Create(ctx context.Context, doc pattern.ComponentPattern) (pattern.ComponentPattern, error) {
	now := s.now()
	doc = s.ids.assignNested(doc, now)
	doc.ID = s.ids.next(now)
	doc.Version = 1
	doc.CreatedAt = &now
	doc.UpdatedAt = &now

	body, err := encodeDoc(doc)
	if err != nil {
		return pattern.ComponentPattern{}, err
	}
	ph := s.d.Placeholder
	q := fmt.Sprintf(`INSERT INTO component_patterns (id, name, label, version, created_at, updated_at, doc) VALUES (%s, %s, %s, %s, %s, %s, %s)`,
		ph(1), ph(2), ph(3), ph(4), ph(5), ph(6), ph(7))
	if _, err := s.db.ExecContext(ctx, q, doc.ID, doc.Name, doc.Label, doc.Version, now, now, body); err != nil {
		if s.d.IsUniqueViolation(err) {
			return pattern.ComponentPattern{}, ErrDuplicateName
		}
		return pattern.ComponentPattern{}, fmt.Errorf("insert component pattern: %w", err)
	}
	return doc, nil
}

func (s *SQL) Update(ctx context.Context, id string, doc pattern.ComponentPattern, expectedVersion int64) (pattern.ComponentPattern, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return pattern.ComponentPattern{}, err
	}
	defer func() { _ = tx.Rollback() }()

	ph := s.d.Placeholder
	var (
		version int64
		created time.Time
	)
	err = tx.QueryRowContext(ctx, `SELECT version, created_at FROM component_patterns WHERE id = `+ph(1), id).Scan(&version, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return pattern.ComponentPattern{}, ErrNotFound
	}
	if err != nil {
		return pattern.ComponentPattern{}, fmt.Errorf("load component pattern: %w", err)
	}
	if expectedVersion > 0 && version != expectedVersion {
		return pattern.ComponentPattern{}, ErrVersionConflict
	}

	now := s.now()
	doc = s.ids.assignNested(doc, now)
	doc.ID = id
	doc.Version = version + 1
	created = created.UTC()
	doc.CreatedAt = &created
	doc.UpdatedAt = &now

	body, err := encodeDoc(doc)
	if err != nil {
		return pattern.ComponentPattern{}, err
	}
	// запись с прочитанной версией; параллельный PUT успел раньше, если строк 0
	q := fmt.Sprintf(`UPDATE component_patterns SET name = %s, label = %s, version = %s, updated_at = %s, doc = %s WHERE id = %s AND version = %s`,
		ph(1), ph(2), ph(3), ph(4), ph(5), ph(6), ph(7))
	res, err := tx.ExecContext(ctx, q, doc.Name, doc.Label, doc.Version, now, body, id, version)
	if err != nil {
		if s.d.IsUniqueViolation(err) {
			return pattern.ComponentPattern{}, ErrDuplicateName
		}
		return pattern.ComponentPattern{}, fmt.Errorf("update component pattern: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return pattern.ComponentPattern{}, err
	}
	if n == 0 {
		return pattern.ComponentPattern{}, ErrVersionConflict
	}
	if err := tx.Commit(); err != nil {
		return pattern.ComponentPattern{}, err
	}
	return doc, nil
}

func (s *SQL) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM component_patterns WHERE id = `+s.d.Placeholder(1), id)
	if err != nil {
		return fmt.Errorf("delete component pattern: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPattern(r rowScanner) (pattern.ComponentPattern, error) {
	var (
		id               string
		version          int64
		created, updated time.Time
		body             []byte
	)
	if err := r.Scan(&id, &version, &created, &updated, &body); err != nil {
		return pattern.ComponentPattern{}, err
	}
	var doc pattern.ComponentPattern
	if err := json.Unmarshal(body, &doc); err != nil {
		return pattern.ComponentPattern{}, fmt.Errorf("decode component pattern %s: %w", id, err)
	}
	created, updated = created.UTC(), updated.UTC()
	doc.ID = id
	doc.Version = version
	doc.CreatedAt = &created
	doc.UpdatedAt = &updated
	return doc, nil
}

// encodeDoc — тело без идентичности, она живёт в колонках.
func encodeDoc(doc pattern.ComponentPattern) (string, error) {
	doc.ID = ""
	doc.Version = 0
	doc.CreatedAt = nil
	doc.UpdatedAt = nil
	b, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode component pattern: %w", err)
	}
	return string(b), nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
