package api

import (
	"time"

	"go.uber.org/zap"

	"pagexpress/internal/cache"
	"pagexpress/internal/form"
	"pagexpress/internal/reference"
	"pagexpress/internal/store"
)

// Server — зависимости обработчиков.
type Server struct {
	Store    store.Repository
	Registry *reference.Registry
	Schemas  form.Schemas
	Forms    *form.Builder
	Cache    cache.Cache
	CacheTTL time.Duration
	Log      *zap.Logger
}

// NewServer; c == nil — без кэша, log == nil — без логов.
func NewServer(repo store.Repository, reg *reference.Registry, c cache.Cache, ttl time.Duration, log *zap.Logger) *Server {
	if c == nil {
		c = cache.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	schemas := form.DefaultSchemas()
	return &Server{
		Store:    repo,
		Registry: reg,
		Schemas:  schemas,
		Forms:    form.NewBuilder(schemas, reg.FieldTypes(), reg.Definitions()),
		Cache:    c,
		CacheTTL: ttl,
		Log:      log,
	}
}
