package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagexpress/internal/cache"
	"pagexpress/internal/pattern"
	"pagexpress/internal/reference"
	"pagexpress/internal/store"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func testRegistry() *reference.Registry {
	return reference.NewRegistry(
		[]pattern.FieldType{
			{ID: "ft_text", Type: "text"},
			{ID: "ft_html", Type: "html"},
			{ID: "ft_list", Type: "list"},
		},
		[]pattern.Definition{
			{ID: "df_colors", Name: "colors", Values: []pattern.FieldOption{{Name: "Red", Value: "#f00"}}, DefaultValue: "#f00"},
		},
	)
}

type testEnv struct {
	router *gin.Engine
	redis  *miniredis.Miniredis
	store  *store.Memory
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := store.NewMemory()
	s := NewServer(repo, testRegistry(), cache.NewRedisWithClient(client, cache.DefaultConfig()), time.Minute, nil)
	return &testEnv{router: NewRouter(s), redis: mr, store: repo}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr *bytes.Reader
	switch b := body.(type) {
	case nil:
		rdr = bytes.NewReader(nil)
	case string:
		rdr = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

const heroBody = `{
	"name": "Hero",
	"label": "Hero block",
	"fields": [
		{"name": "title", "label": "Title", "fieldTypeId": "ft_text", "required": true},
		{"name": "color", "label": "Color", "fieldTypeId": "ft_list", "definedOptionsId": "df_colors"},
		{"name": "body", "label": "Body", "fieldTypeId": "ft_html", "defaultValue": "<a href=\"https://x.io\">x</a>"}
	],
	"fieldset": [
		{"name": "links", "label": "Links", "fields": [
			{"name": "url", "label": "Url", "fieldTypeId": "ft_text"}
		]}
	]
}`

func (e *testEnv) createHero(t *testing.T) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/component-patterns", heroBody)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var id string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &id))
	require.NotEmpty(t, id)
	return id
}

type errorsBody struct {
	Errors []FieldError `json:"errors"`
}

func decodeErrors(t *testing.T, w *httptest.ResponseRecorder) []FieldError {
	t.Helper()
	var body errorsBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body.Errors
}

func hasError(errs []FieldError, code, field string) bool {
	for _, e := range errs {
		if e.Code == code && e.Field == field {
			return true
		}
	}
	return false
}

func TestCreateAndGetRaw(t *testing.T) {
	e := newTestEnv(t)
	id := e.createHero(t)

	w := e.do(t, http.MethodGet, "/api/component-patterns/"+id+"?plainData=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `"1"`, w.Header().Get("ETag"))

	var raw map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	assert.Equal(t, id, raw["id"])
	fields := raw["fields"].([]any)
	color := fields[1].(map[string]any)
	assert.Equal(t, "df_colors", color["definedOptionsId"])
	assert.NotContains(t, color, "options")
	assert.NotEmpty(t, color["id"], "nested ids are assigned")

	body := fields[2].(map[string]any)
	assert.Equal(t, `<a href="https://x.io" target="_blank" rel="noopener noreferrer">x</a>`, body["defaultValue"])
}

func TestGetNormalized_CachedWithETag(t *testing.T) {
	e := newTestEnv(t)
	id := e.createHero(t)

	w := e.do(t, http.MethodGet, "/api/component-patterns/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	etag := w.Header().Get("ETag")
	require.NotEmpty(t, etag)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	fields := doc["fields"].([]any)
	color := fields[1].(map[string]any)
	assert.Equal(t, "list", color["type"])
	assert.Equal(t, "#f00", color["defaultValue"])
	assert.Equal(t, []any{map[string]any{"name": "Red", "value": "#f00"}}, color["options"])
	assert.NotContains(t, color, "definedOptionsId")
	assert.NotContains(t, color, "fieldTypeId")

	assert.True(t, e.redis.Exists("pagex:"+cache.PatternKey(id, 1)))

	w = e.do(t, http.MethodGet, "/api/component-patterns/"+id, nil, "If-None-Match", etag)
	assert.Equal(t, http.StatusNotModified, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestCreateValidation(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(t, http.MethodPost, "/api/component-patterns", `{"label":"Hi"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	errs := decodeErrors(t, w)
	assert.True(t, hasError(errs, ErrRequired, "name"))
	assert.True(t, hasError(errs, ErrTooShort, "label"))

	w = e.do(t, http.MethodPost, "/api/component-patterns", `{"name":"Hero","label":"Hero","fields":[{"name":"title","label":"Title","fieldTypeId":"ft_nope"}]}`)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.True(t, hasError(decodeErrors(t, w), ErrRefNotFound, "fields[0].fieldTypeId"))

	w = e.do(t, http.MethodPost, "/api/component-patterns", `{"name":"Hero","label":"Hero","fieldset":[{"name":"links","label":"Links","fields":[]}]}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.True(t, hasError(decodeErrors(t, w), ErrTooShort, "fieldset[0].fields"))

	w = e.do(t, http.MethodPost, "/api/component-patterns", `{"name":"Hero","label":"Hero","fields":[{"name":"title","label":"Title","fieldTypeId":"ft_text","options":[{"name":"","value":null}]}]}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	errs = decodeErrors(t, w)
	assert.True(t, hasError(errs, ErrRequired, "fields[0].options[0].name"))
	assert.True(t, hasError(errs, ErrRequired, "fields[0].options[0].value"))

	w = e.do(t, http.MethodPost, "/api/component-patterns", `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateDuplicateName(t *testing.T) {
	e := newTestEnv(t)
	e.createHero(t)

	w := e.do(t, http.MethodPost, "/api/component-patterns", heroBody)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.True(t, hasError(decodeErrors(t, w), ErrUniqueViolation, "name"))
}

func TestUpdate_IfMatch(t *testing.T) {
	e := newTestEnv(t)
	id := e.createHero(t)
	upd := strings.Replace(heroBody, `"Hero block"`, `"Hero banner"`, 1)

	w := e.do(t, http.MethodPut, "/api/component-patterns/"+id, upd, "If-Match", `"7"`)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.True(t, hasError(decodeErrors(t, w), ErrVersionConflict, "version"))

	w = e.do(t, http.MethodPut, "/api/component-patterns/"+id, upd, "If-Match", `"1"`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, `"2"`, w.Header().Get("ETag"))

	var doc pattern.ComponentPattern
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "Hero banner", doc.Label)
	assert.Equal(t, int64(2), doc.Version)

	w = e.do(t, http.MethodPut, "/api/component-patterns/"+id, upd, "If-Match", `"abc"`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.True(t, hasError(decodeErrors(t, w), ErrInvalid, "version"))

	// без If-Match — без проверки версии
	w = e.do(t, http.MethodPut, "/api/component-patterns/"+id, upd)
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodPut, "/api/component-patterns/missing", upd)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.True(t, hasError(decodeErrors(t, w), ErrNotFound, "id"))
}

func TestList(t *testing.T) {
	e := newTestEnv(t)
	e.createHero(t)
	w := e.do(t, http.MethodPost, "/api/component-patterns", `{"name":"Banner","label":"Top banner"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = e.do(t, http.MethodGet, "/api/component-patterns?search=BANN&sort=name", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page pattern.Page
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 1, page.CurrentPage)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, store.DefaultLimit, page.ItemsPerPage)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Banner", page.Data[0].Name)

	w = e.do(t, http.MethodGet, "/api/component-patterns?limit=500&page=0", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, store.MaxLimit, page.ItemsPerPage)
	assert.Len(t, page.Data, 2)

	w = e.do(t, http.MethodGet, "/api/component-patterns?sort=version", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.True(t, hasError(decodeErrors(t, w), ErrInvalid, "sort"))
}

func TestDelete(t *testing.T) {
	e := newTestEnv(t)
	id := e.createHero(t)

	w := e.do(t, http.MethodDelete, "/api/component-patterns/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = e.do(t, http.MethodDelete, "/api/component-patterns/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = e.do(t, http.MethodGet, "/api/component-patterns/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExport(t *testing.T) {
	e := newTestEnv(t)
	id := e.createHero(t)

	w := e.do(t, http.MethodGet, "/api/component-patterns/"+id+"/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="Hero.json"`, w.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "{\n    \"name\": \"Hero\""), w.Body.String())
	assert.NotContains(t, w.Body.String(), `"id"`)
	assert.NotContains(t, w.Body.String(), `"version"`)
}

func TestRegistriesAndForms(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(t, http.MethodGet, "/api/field-types", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var types []pattern.FieldType
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &types))
	assert.Len(t, types, 3)

	w = e.do(t, http.MethodGet, "/api/definitions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "df_colors")

	w = e.do(t, http.MethodGet, "/api/forms/field", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"hideWhenFieldValue":"definedOptionsId"`)

	w = e.do(t, http.MethodGet, "/api/forms/page", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(t, http.MethodGet, "/api/forms/field/new", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"name":"","label":"","required":false,"fieldTypeId":"ft_text"}`, w.Body.String())

	w = e.do(t, http.MethodGet, "/api/forms/fieldset/new", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"name":"","label":"","required":false,"fields":[{"name":"","label":"","required":false,"fieldTypeId":"ft_text"}]}`, w.Body.String())

	w = e.do(t, http.MethodGet, "/api/schemas/field/attributes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var attrs map[string]map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &attrs))
	assert.Equal(t, map[string]any{"required": true, "min": float64(3), "max": float64(30)}, attrs["name"])

	w = e.do(t, http.MethodGet, "/api/schemas/page/attributes", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthAndRequestID(t *testing.T) {
	e := newTestEnv(t)
	w := e.do(t, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	w = e.do(t, http.MethodGet, "/healthz", nil, RequestIDHeader, "abc-123")
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestReadExpectedVersion(t *testing.T) {
	cases := []struct {
		header string
		body   int64
		want   int64
		ok     bool
	}{
		{`"3"`, 0, 3, true},
		{`W/"4"`, 0, 4, true},
		{"5", 9, 5, true},
		{"", 9, 9, true},
		{"", 0, 0, true},
		{"abc", 0, 0, false},
		{`"abc"`, 4, 0, false},
		{`"0"`, 0, 0, false},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPut, "/", nil)
		if tc.header != "" {
			c.Request.Header.Set("If-Match", tc.header)
		}
		got, ok := readExpectedVersion(c, tc.body)
		assert.Equal(t, tc.want, got, tc.header)
		assert.Equal(t, tc.ok, ok, tc.header)
	}
}
