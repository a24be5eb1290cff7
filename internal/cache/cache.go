// Package cache: кэш нормализованных документов (Redis или ничего).
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrMiss: ключа нет в кэше.
var ErrMiss = errors.New("cache miss")

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Config: общие настройки бэкендов.
type Config struct {
	DefaultTTL time.Duration
	Prefix     string
}

func DefaultConfig() Config {
	return Config{DefaultTTL: 5 * time.Minute, Prefix: "pagex:"}
}

// PatternKey — ключ нормализованного паттерна. Версия в ключе, поэтому после
// обновления старая запись просто перестаёт читаться и уходит по TTL.
func PatternKey(id string, version int64) string {
	return fmt.Sprintf("pattern:%s:v%d", id, version)
}

// Nop: кэш, который ничего не хранит (Redis не настроен).
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, error)              { return nil, ErrMiss }
func (Nop) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (Nop) Delete(context.Context, string) error                     { return nil }
