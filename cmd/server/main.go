package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"pagexpress/internal/api"
	"pagexpress/internal/cache"
	"pagexpress/internal/config"
	"pagexpress/internal/logging"
	"pagexpress/internal/pg"
	"pagexpress/internal/reference"
	"pagexpress/internal/sqlite"
	"pagexpress/internal/store"
)

func main() {
	os.Exit(serve(os.Args[1:]))
}

// serve возвращает код выхода: 2 — конфигурация, 1 — ошибка работы сервера.
func serve(args []string) int {
	flags := pflag.NewFlagSet("pagexpress", pflag.ContinueOnError)
	config.Flags(flags)
	if err := flags.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка конфигурации: %v\n", err)
		return 2
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка логгера: %v\n", err)
		return 2
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", zap.Error(err))
		return 1
	}
	return 0
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Справочники видов полей и definitions
	reg, err := reference.LoadRegistry(cfg.ReferenceDir)
	if err != nil {
		return fmt.Errorf("load reference catalogs: %w", err)
	}
	log.Info("reference catalogs loaded",
		zap.Int("field_types", len(reg.FieldTypes())),
		zap.Int("definitions", len(reg.Definitions())))

	// 2. Хранилище
	repo, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	// 3. Кэш нормализованных документов (необязательный)
	var c cache.Cache = cache.Nop{}
	if cfg.RedisAddr != "" {
		cc := cache.DefaultConfig()
		cc.DefaultTTL = cfg.CacheTTL
		rc, err := cache.NewRedis(ctx, cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Cache:    cc,
		})
		if err != nil {
			return err
		}
		defer func() { _ = rc.Close() }()
		c = rc
		log.Info("redis cache enabled", zap.String("addr", cfg.RedisAddr), zap.Duration("ttl", cfg.CacheTTL))
	}

	// 4. REST API
	srv := api.NewServer(repo, reg, c, cfg.CacheTTL, log)
	log.Info("starting pagexpress", zap.String("port", cfg.Port), zap.String("store", cfg.StoreDriver))
	return api.RunServer(ctx, ":"+cfg.Port, api.NewRouter(srv), log)
}

func openStore(ctx context.Context, cfg config.Config, log *zap.Logger) (store.Repository, func(), error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		db, err := pg.Open(ctx, cfg.DBURL)
		if err != nil {
			return nil, nil, err
		}
		if cfg.AutoMigrate {
			if err := pg.ApplyDDL(ctx, db, pg.Schema(), log); err != nil {
				_ = db.Close()
				return nil, nil, fmt.Errorf("apply ddl: %w", err)
			}
		}
		return store.NewSQL(db, store.Postgres), closer(db, log), nil

	case config.StoreSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		if err := sqlite.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("sqlite migrate: %w", err)
		}
		return store.NewSQL(db, store.SQLite), closer(db, log), nil

	default:
		log.Warn("using in-memory store, data is lost on restart")
		return store.NewMemory(), func() {}, nil
	}
}

func closer(db *sql.DB, log *zap.Logger) func() {
	return func() {
		if err := db.Close(); err != nil {
			log.Warn("close database", zap.Error(err))
		}
	}
}
