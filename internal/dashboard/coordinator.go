// Package dashboard: состояние списка и сессии редактирования поверх API.
//
// Сетевые операции ждут ответа и только после успеха меняют состояние:
// неудачный запрос оставляет всё как было. Повторов нет.
package dashboard

import (
	"context"
	"strings"

	"pagexpress/internal/client"
	"pagexpress/internal/pattern"
)

const (
	DefaultItemsPerPage = 25
	DefaultSort         = "-updatedAt"
	RemoveConfirmText   = "Please, confirm removing component"
)

// PatternLister: то, что координатору нужно от API.
type PatternLister interface {
	List(ctx context.Context, p client.ListParams) (pattern.Page, error)
	Delete(ctx context.Context, id string) error
}

// Confirmer спрашивает пользователя; false — отказ.
type Confirmer interface {
	Confirm(message string) (bool, error)
}

// ConfirmFunc: Confirmer из функции.
type ConfirmFunc func(message string) (bool, error)

func (f ConfirmFunc) Confirm(message string) (bool, error) { return f(message) }

// Coordinator: страница, фильтр и порядок списка component patterns.
// TotalPages всегда берётся из ответа сервера.
type Coordinator struct {
	api PatternLister

	CurrentPage  int
	TotalPages   int
	ItemsPerPage int
	Search       *string
	Sort         string
	Items        []pattern.ComponentPattern
}

func NewCoordinator(api PatternLister) *Coordinator {
	return &Coordinator{
		api:          api,
		CurrentPage:  1,
		TotalPages:   1,
		ItemsPerPage: DefaultItemsPerPage,
		Sort:         DefaultSort,
	}
}

// Fetch перечитывает текущую страницу с текущими фильтром и порядком.
func (c *Coordinator) Fetch(ctx context.Context) error {
	return c.load(ctx, c.CurrentPage, c.Search, c.Sort)
}

// ChangePage: та же страница или вне [1, TotalPages] — ничего не делает.
func (c *Coordinator) ChangePage(ctx context.Context, target int) error {
	if target == c.CurrentPage || target < 1 || target > c.TotalPages {
		return nil
	}
	return c.load(ctx, target, c.Search, c.Sort)
}

// SearchFor задаёт фильтр и грузит первую страницу. Пустая строка снимает фильтр.
func (c *Coordinator) SearchFor(ctx context.Context, text string) error {
	var search *string
	if t := strings.TrimSpace(text); t != "" {
		search = &t
	}
	return c.load(ctx, 1, search, c.Sort)
}

// SortBy меняет порядок, страница сохраняется. Пустое поле: порядок по умолчанию.
func (c *Coordinator) SortBy(ctx context.Context, field string) error {
	if field == "" {
		field = DefaultSort
	}
	return c.load(ctx, c.CurrentPage, c.Search, field)
}

// Remove удаляет запись после подтверждения. Отказ: (false, nil) без запроса.
func (c *Coordinator) Remove(ctx context.Context, id string, confirm Confirmer) (bool, error) {
	ok, err := confirm.Confirm(RemoveConfirmText)
	if err != nil || !ok {
		return false, err
	}
	if err := c.api.Delete(ctx, id); err != nil {
		return false, err
	}
	items := make([]pattern.ComponentPattern, 0, len(c.Items))
	for _, it := range c.Items {
		if it.ID != id {
			items = append(items, it)
		}
	}
	c.Items = items
	return true, nil
}

// load: один запрос; состояние фиксируется только после успешного ответа.
func (c *Coordinator) load(ctx context.Context, page int, search *string, sort string) error {
	resp, err := c.api.List(ctx, client.ListParams{
		Page:   page,
		Limit:  c.ItemsPerPage,
		Search: search,
		Sort:   sort,
	})
	if err != nil {
		return err
	}
	c.Items = resp.Data
	c.CurrentPage = resp.CurrentPage
	c.TotalPages = resp.TotalPages
	if resp.ItemsPerPage > 0 {
		c.ItemsPerPage = resp.ItemsPerPage
	}
	c.Search = search
	c.Sort = sort
	return nil
}
