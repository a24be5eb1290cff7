package dashboard

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"pagexpress/internal/editor"
	"pagexpress/internal/form"
	"pagexpress/internal/pattern"
)

// ErrNoPattern — сохранять нечего, запись ещё не создана.
var ErrNoPattern = errors.New("no component pattern loaded")

// EditorAPI: то, что сессии нужно от API.
type EditorAPI interface {
	Get(ctx context.Context, id string) (pattern.ComponentPattern, error)
	Create(ctx context.Context, data pattern.ComponentPattern) (string, error)
	Update(ctx context.Context, id string, data pattern.ComponentPattern, version int64) (pattern.ComponentPattern, error)
	FieldTypes(ctx context.Context) ([]pattern.FieldType, error)
	Definitions(ctx context.Context) ([]pattern.Definition, error)
}

// Session: редактирование одного component pattern.
// Справочники грузятся один раз и живут, пока живёт сессия.
type Session struct {
	api     EditorAPI
	schemas form.Schemas

	ID      string
	Version int64
	Pattern editor.Aggregate

	fieldTypes  []pattern.FieldType
	definitions []pattern.Definition
	forms       *form.Builder
}

func NewSession(api EditorAPI) *Session {
	return &Session{api: api, schemas: form.DefaultSchemas()}
}

// LoadFieldsData параллельно читает виды полей и definitions.
// Повторный вызов после успеха запросов не делает.
func (s *Session) LoadFieldsData(ctx context.Context) error {
	if s.forms != nil {
		return nil
	}
	var (
		types []pattern.FieldType
		defs  []pattern.Definition
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		types, err = s.api.FieldTypes(gctx)
		if err != nil {
			return fmt.Errorf("load field types: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		defs, err = s.api.Definitions(gctx)
		if err != nil {
			return fmt.Errorf("load definitions: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}
	s.fieldTypes = types
	s.definitions = defs
	s.forms = form.NewBuilder(s.schemas, types, defs)
	return nil
}

// Forms: построитель форм; до LoadFieldsData справочники пустые.
func (s *Session) Forms() *form.Builder {
	if s.forms == nil {
		return form.NewBuilder(s.schemas, nil, nil)
	}
	return s.forms
}

func (s *Session) FieldTypes() []pattern.FieldType { return s.fieldTypes }

func (s *Session) Definitions() []pattern.Definition { return s.definitions }

func (s *Session) Dirty() bool { return s.Pattern.Dirty }

// FetchSingle читает документ как хранится и разбирает его в редактор.
func (s *Session) FetchSingle(ctx context.Context, id string) error {
	doc, err := s.api.Get(ctx, id)
	if err != nil {
		return err
	}
	s.Pattern = editor.LoadSingle(doc)
	s.ID = doc.ID
	if s.ID == "" {
		s.ID = id
	}
	s.Version = doc.Version
	return nil
}

// Create сохраняет новый документ и запоминает его id.
func (s *Session) Create(ctx context.Context) (string, error) {
	id, err := s.api.Create(ctx, s.Pattern.ComponentData())
	if err != nil {
		return "", err
	}
	s.ID = id
	s.Version = 1
	s.Pattern = s.Pattern.ResetDirty()
	return id, nil
}

// Save сохраняет документ id. Для загруженного документа версия уходит в If-Match.
func (s *Session) Save(ctx context.Context, id string) error {
	if id == "" {
		id = s.ID
	}
	if id == "" {
		return ErrNoPattern
	}
	var version int64
	if id == s.ID {
		version = s.Version
	}
	saved, err := s.api.Update(ctx, id, s.Pattern.ComponentData(), version)
	if err != nil {
		return err
	}
	s.ID = id
	s.Version = saved.Version
	s.Pattern = s.Pattern.ResetDirty()
	return nil
}

// Edit применяет переход к агрегату; при ошибке агрегат не меняется.
func (s *Session) Edit(fn func(editor.Aggregate) (editor.Aggregate, error)) error {
	next, err := fn(s.Pattern)
	if err != nil {
		return err
	}
	s.Pattern = next
	return nil
}

func (s *Session) AddField() {
	s.Pattern = s.Pattern.AddField(s.Forms().NewField())
}

func (s *Session) AddFieldset() {
	s.Pattern = s.Pattern.AddFieldset(s.Forms().NewField())
}

func (s *Session) AddFieldsetField(setIndex int) error {
	return s.Edit(func(a editor.Aggregate) (editor.Aggregate, error) {
		return a.AddFieldsetField(setIndex, s.Forms().NewField())
	})
}

// Discard: уход со страницы без сохранения.
func (s *Session) Discard() {
	s.Pattern = editor.Reset()
	s.ID = ""
	s.Version = 0
}
