package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pagexpress/internal/cache"
	"pagexpress/internal/editor"
	"pagexpress/internal/export"
	"pagexpress/internal/normalize"
	"pagexpress/internal/pattern"
	"pagexpress/internal/store"
)

// GET /api/component-patterns?page&limit&search&sort
func ListHandler(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q listQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": bindErrors(err)})
			return
		}
		page, err := s.Store.List(c.Request.Context(), q.params())
		if errors.Is(err, store.ErrInvalidSort) {
			c.JSON(http.StatusBadRequest, gin.H{"errors": []FieldError{ferr(ErrInvalid, "sort", err.Error())}})
			return
		}
		if err != nil {
			s.internalError(c, "list component patterns", err)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

// GET /api/component-patterns/:id[?plainData=true]
// Без plainData — нормализованный документ с ETag по телу.
func GetOneHandler(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		var q getQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": bindErrors(err)})
			return
		}

		doc, ok := s.load(c, id)
		if !ok {
			return
		}
		if q.PlainData {
			c.Header("ETag", fmt.Sprintf(`"%d"`, doc.Version))
			c.JSON(http.StatusOK, doc)
			return
		}

		body, err := s.normalized(c, doc)
		if err != nil {
			s.internalError(c, "normalize component pattern", err)
			return
		}
		etag := cache.ETag(body)
		c.Header("ETag", etag)
		if cache.MatchesIfNoneMatch(c.GetHeader("If-None-Match"), etag) {
			c.Status(http.StatusNotModified)
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", body)
	}
}

// normalized — тело нормализованного документа из кэша или свежее.
func (s *Server) normalized(c *gin.Context, doc pattern.ComponentPattern) ([]byte, error) {
	ctx := c.Request.Context()
	key := cache.PatternKey(doc.ID, doc.Version)

	body, err := s.Cache.Get(ctx, key)
	if err == nil {
		return body, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		s.Log.Warn("cache get failed", zap.String("key", key), zap.Error(err))
	}

	body, err = json.Marshal(normalize.ComponentPattern(doc, s.Registry, s.Registry))
	if err != nil {
		return nil, err
	}
	if err := s.Cache.Set(ctx, key, body, s.CacheTTL); err != nil {
		s.Log.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
	return body, nil
}

// POST /api/component-patterns → 201 и id новой записи
func CreateHandler(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, _, ok := s.bindPattern(c)
		if !ok {
			return
		}
		created, err := s.Store.Create(c.Request.Context(), doc)
		if err != nil {
			s.writeStoreError(c, "create component pattern", err)
			return
		}
		s.Log.Info("component pattern created",
			zap.String("request_id", GetRequestID(c)),
			zap.String("id", created.ID),
			zap.String("name", created.Name))
		c.JSON(http.StatusCreated, created.ID)
	}
}

// PUT /api/component-patterns/:id; If-Match — ожидаемая версия
func UpdateHandler(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		doc, bodyVersion, ok := s.bindPattern(c)
		if !ok {
			return
		}
		expVer, okExp := readExpectedVersion(c, bodyVersion)
		if !okExp {
			c.JSON(http.StatusBadRequest, gin.H{"errors": []FieldError{ferr(ErrInvalid, "version", "If-Match must be a quoted version number")}})
			return
		}

		updated, err := s.Store.Update(c.Request.Context(), id, doc, expVer)
		if err != nil {
			s.writeStoreError(c, "update component pattern", err)
			return
		}
		c.Header("ETag", fmt.Sprintf(`"%d"`, updated.Version))
		c.JSON(http.StatusOK, updated)
	}
}

// DELETE /api/component-patterns/:id
func DeleteHandler(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.Store.Delete(c.Request.Context(), c.Param("id")); err != nil {
			s.writeStoreError(c, "delete component pattern", err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// GET /api/component-patterns/:id/export — componentData файлом <name>.json
func ExportHandler(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, ok := s.load(c, c.Param("id"))
		if !ok {
			return
		}
		data := editor.LoadSingle(doc).ComponentData()
		c.Header("Content-Type", "application/json; charset=utf-8")
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.FileName(doc.Name)))
		c.Status(http.StatusOK)
		if err := export.Write(c.Writer, data); err != nil {
			s.Log.Error("export write failed", zap.String("id", doc.ID), zap.Error(err))
		}
	}
}

// bindPattern: JSON -> документ без идентичности, проверки, rich text.
// Версия из тела возвращается отдельно (запасной вариант для If-Match).
func (s *Server) bindPattern(c *gin.Context) (pattern.ComponentPattern, int64, bool) {
	var doc pattern.ComponentPattern
	if err := c.ShouldBindJSON(&doc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return doc, 0, false
	}
	bodyVersion := doc.Version
	// идентичность назначает хранилище
	doc.ID = ""
	doc.Version = 0
	doc.CreatedAt = nil
	doc.UpdatedAt = nil

	if errs := ValidatePattern(doc, s.Schemas, s.Registry); len(errs) > 0 {
		c.JSON(statusForErrors(errs), gin.H{"errors": errs})
		return doc, 0, false
	}
	doc, err := applyRichText(doc, s.Registry)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": []FieldError{ferr(ErrInvalid, "defaultValue", err.Error())}})
		return doc, 0, false
	}
	return doc, bodyVersion, true
}

func (s *Server) load(c *gin.Context, id string) (pattern.ComponentPattern, bool) {
	doc, err := s.Store.Get(c.Request.Context(), id)
	if err != nil {
		s.writeStoreError(c, "get component pattern", err)
		return doc, false
	}
	return doc, true
}

// writeStoreError — sentinel-ошибки хранилища в HTTP.
func (s *Server) writeStoreError(c *gin.Context, op string, err error) {
	var fe FieldError
	switch {
	case errors.Is(err, store.ErrNotFound):
		fe = ferr(ErrNotFound, "id", "Component pattern not found")
	case errors.Is(err, store.ErrDuplicateName):
		fe = ferr(ErrUniqueViolation, "name", "Component pattern with this name already exists")
	case errors.Is(err, store.ErrVersionConflict):
		fe = ferr(ErrVersionConflict, "version", "Component pattern was modified, reload and retry")
	default:
		s.internalError(c, op, err)
		return
	}
	errs := []FieldError{fe}
	c.JSON(statusForErrors(errs), gin.H{"errors": errs})
}

func (s *Server) internalError(c *gin.Context, op string, err error) {
	s.Log.Error(op, zap.String("request_id", GetRequestID(c)), zap.Error(err))
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
