package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pagexpress/internal/editor"
	"pagexpress/internal/form"
	"pagexpress/internal/pattern"
)

// GET /api/field-types
func FieldTypesHandler(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		out := s.Registry.FieldTypes()
		if out == nil {
			out = []pattern.FieldType{}
		}
		c.JSON(http.StatusOK, out)
	}
}

// GET /api/definitions
func DefinitionsHandler(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		out := s.Registry.Definitions()
		if out == nil {
			out = []pattern.Definition{}
		}
		c.JSON(http.StatusOK, out)
	}
}

// GET /api/forms/:kind — описание формы редактора
func FormHandler(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		f, err := s.Forms.Form(c.Param("kind"))
		if errors.Is(err, form.ErrUnknownKind) {
			c.JSON(http.StatusNotFound, gin.H{"errors": []FieldError{ferr(ErrNotFound, "kind", err.Error())}})
			return
		}
		c.JSON(http.StatusOK, f)
	}
}

// GET /api/forms/:kind/new — пустой элемент данного вида
func NewElementHandler(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch kind := c.Param("kind"); kind {
		case form.KindField:
			c.JSON(http.StatusOK, s.Forms.NewField())
		case form.KindFieldset:
			c.JSON(http.StatusOK, pattern.Fieldset{Fields: []pattern.Field{s.Forms.NewField()}})
		case form.KindComponentPattern:
			c.JSON(http.StatusOK, editor.Reset().ComponentData())
		default:
			c.JSON(http.StatusNotFound, gin.H{"errors": []FieldError{ferr(ErrNotFound, "kind", "unknown form kind "+kind)}})
		}
	}
}

// GET /api/schemas/:name/attributes — ограничения атрибутов схемы
func SchemaAttributesHandler(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		attrs, ok := s.Schemas.Attributes(c.Param("name"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"errors": []FieldError{ferr(ErrNotFound, "name", "schema not found")}})
			return
		}
		c.JSON(http.StatusOK, attrs)
	}
}

// GET /healthz
func HealthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
