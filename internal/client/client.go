// Package client: HTTP-клиент API component patterns для дашборда и CLI.
//
// Повторов нет: ошибка запроса возвращается как есть, состояние у вызывающего
// не меняется.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"pagexpress/internal/normalize"
	"pagexpress/internal/pattern"
)

const DefaultTimeout = 30 * time.Second

type Config struct {
	// BaseURL: адрес сервера без /api, например http://localhost:8080.
	BaseURL string
	Timeout time.Duration
	// Transport подменяется в тестах; nil — http.DefaultTransport.
	Transport http.RoundTripper
}

type Client struct {
	base *url.URL
	http *http.Client
}

func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("client: base url is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("client: parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("client: unsupported scheme %q", base.Scheme)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		base: base,
		http: &http.Client{Timeout: cfg.Timeout, Transport: cfg.Transport},
	}, nil
}

// FieldError: элемент {"errors": [...]} ответа сервера.
type FieldError struct {
	Code    string `json:"code"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError: ответ сервера с кодом вне 2xx.
type APIError struct {
	Status  int
	Message string
	Errors  []FieldError
}

func (e *APIError) Error() string {
	if len(e.Errors) > 0 {
		parts := make([]string, 0, len(e.Errors))
		for _, fe := range e.Errors {
			parts = append(parts, fe.Field+": "+fe.Message)
		}
		return fmt.Sprintf("api: %d: %s", e.Status, strings.Join(parts, "; "))
	}
	if e.Message != "" {
		return fmt.Sprintf("api: %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api: %d %s", e.Status, http.StatusText(e.Status))
}

// HasCode: есть ли среди ошибок поля ошибка с данным кодом.
func (e *APIError) HasCode(code string) bool {
	for _, fe := range e.Errors {
		if fe.Code == code {
			return true
		}
	}
	return false
}

// StatusOf: HTTP-статус из *APIError в цепочке err, иначе 0.
func StatusOf(err error) int {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Status
	}
	return 0
}

func IsNotFound(err error) bool { return StatusOf(err) == http.StatusNotFound }

func IsConflict(err error) bool { return StatusOf(err) == http.StatusConflict }

// ListParams: запрос страницы. Пустые значения не передаются, границы
// выставляет сервер.
type ListParams struct {
	Page   int
	Limit  int
	Search *string
	Sort   string
}

func (p ListParams) query() url.Values {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Search != nil {
		q.Set("search", *p.Search)
	}
	if p.Sort != "" {
		q.Set("sort", p.Sort)
	}
	return q
}

func (c *Client) List(ctx context.Context, p ListParams) (pattern.Page, error) {
	var page pattern.Page
	err := c.doJSON(ctx, http.MethodGet, "/api/component-patterns", p.query(), nil, nil, &page)
	return page, err
}

// Get: документ как хранится (plainData=true), для редактора.
func (c *Client) Get(ctx context.Context, id string) (pattern.ComponentPattern, error) {
	var doc pattern.ComponentPattern
	q := url.Values{"plainData": {"true"}}
	err := c.doJSON(ctx, http.MethodGet, patternPath(id), q, nil, nil, &doc)
	return doc, err
}

// GetNormalized — документ для рендеринга, ссылки разрешены сервером.
func (c *Client) GetNormalized(ctx context.Context, id string) (normalize.Pattern, error) {
	var doc normalize.Pattern
	err := c.doJSON(ctx, http.MethodGet, patternPath(id), nil, nil, nil, &doc)
	return doc, err
}

// Create возвращает id новой записи.
func (c *Client) Create(ctx context.Context, data pattern.ComponentPattern) (string, error) {
	var id string
	err := c.doJSON(ctx, http.MethodPost, "/api/component-patterns", nil, data, nil, &id)
	return id, err
}

// Update сохраняет документ; version > 0 уходит в If-Match.
func (c *Client) Update(ctx context.Context, id string, data pattern.ComponentPattern, version int64) (pattern.ComponentPattern, error) {
	var hdr http.Header
	if version > 0 {
		hdr = http.Header{"If-Match": {strconv.Quote(strconv.FormatInt(version, 10))}}
	}
	var doc pattern.ComponentPattern
	err := c.doJSON(ctx, http.MethodPut, patternPath(id), nil, data, hdr, &doc)
	return doc, err
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, patternPath(id), nil, nil, nil, nil)
}

func (c *Client) FieldTypes(ctx context.Context) ([]pattern.FieldType, error) {
	var out []pattern.FieldType
	err := c.doJSON(ctx, http.MethodGet, "/api/field-types", nil, nil, nil, &out)
	return out, err
}

func (c *Client) Definitions(ctx context.Context) ([]pattern.Definition, error) {
	var out []pattern.Definition
	err := c.doJSON(ctx, http.MethodGet, "/api/definitions", nil, nil, nil, &out)
	return out, err
}

// Export пишет файл экспорта в w и возвращает имя файла из Content-Disposition.
func (c *Client) Export(ctx context.Context, id string, w io.Writer) (string, error) {
	resp, err := c.do(ctx, http.MethodGet, patternPath(id)+"/export", nil, nil, nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	name := ""
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		name = params["filename"]
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return "", fmt.Errorf("client: read export: %w", err)
	}
	return name, nil
}

func patternPath(id string) string {
	return "/api/component-patterns/" + url.PathEscape(id)
}

// doJSON: тело in кодируется в JSON, ответ 2xx декодируется в out (если не nil).
func (c *Client) doJSON(ctx context.Context, method, path string, q url.Values, in any, hdr http.Header, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("client: encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	resp, err := c.do(ctx, method, path, q, body, hdr)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("client: decode %s %s: %w", method, path, err)
	}
	return nil
}

// do выполняет запрос; ответ вне 2xx превращается в *APIError.
func (c *Client) do(ctx context.Context, method, path string, q url.Values, body io.Reader, hdr http.Header) (*http.Response, error) {
	u := *c.base
	u.Path = c.base.Path + path
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("client: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range hdr {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()
	return nil, decodeError(resp)
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	apiErr := &APIError{Status: resp.StatusCode}
	var payload struct {
		Error  string       `json:"error"`
		Errors []FieldError `json:"errors"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil {
		apiErr.Message = payload.Error
		apiErr.Errors = payload.Errors
	} else {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	return apiErr
}
