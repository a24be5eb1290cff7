// api/router.go
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func NewRouter(s *Server) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), Logger(s.Log), Recovery(s.Log))

	r.GET("/healthz", HealthHandler())

	apiGroup := r.Group("/api")
	{
		// справочники и формы
		apiGroup.GET("/field-types", FieldTypesHandler(s))
		apiGroup.GET("/definitions", DefinitionsHandler(s))
		apiGroup.GET("/forms/:kind", FormHandler(s))
		apiGroup.GET("/forms/:kind/new", NewElementHandler(s))
		apiGroup.GET("/schemas/:name/attributes", SchemaAttributesHandler(s))

		// component patterns
		apiGroup.GET("/component-patterns", ListHandler(s))
		apiGroup.POST("/component-patterns", CreateHandler(s))
		apiGroup.GET("/component-patterns/:id", GetOneHandler(s))
		apiGroup.GET("/component-patterns/:id/export", ExportHandler(s))
		apiGroup.PUT("/component-patterns/:id", UpdateHandler(s))
		apiGroup.DELETE("/component-patterns/:id", DeleteHandler(s))
	}
	return r
}

// RunServer слушает addr до отмены ctx, затем даёт запросам 10s на завершение.
func RunServer(ctx context.Context, addr string, h http.Handler, log *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server started", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info("http server stopping")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
