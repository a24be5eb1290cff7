package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"pagexpress/internal/config"
)

func TestServe_ExitCodes(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")
	assert.Equal(t, 1, serve([]string{"--reference-dir", missing}))
	assert.Equal(t, 2, serve([]string{"--store", "bogus"}))
	assert.Equal(t, 2, serve([]string{"--no-such-flag"}))
}

func TestRun_ReturnsStartupError(t *testing.T) {
	cfg := config.Config{ReferenceDir: filepath.Join(t.TempDir(), "nope")}
	err := run(cfg, zap.NewNop())
	assert.ErrorContains(t, err, "load reference catalogs")
}
