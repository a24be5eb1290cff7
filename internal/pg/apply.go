package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// ApplyDDL выполняет map[ключ]sql в порядке ключей. Ожидается idempotent DDL
// (create ... if not exists).
func ApplyDDL(ctx context.Context, db *sql.DB, ddl map[string]string, log *zap.Logger) error {
	keys := make([]string, 0, len(ddl))
	for k := range ddl {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		sqlText := strings.TrimSpace(ddl[k])
		if sqlText == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, sqlText); err != nil {
			// duplicate_object (42710): объект уже есть
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "42710" {
				log.Info("ddl skipped, already exists", zap.String("step", k), zap.String("message", pgErr.Message))
				continue
			}
			return fmt.Errorf("ddl %s: %w", k, err)
		}
		log.Debug("ddl applied", zap.String("step", k))
	}
	return nil
}

// Schema: DDL таблицы component_patterns.
func Schema() map[string]string {
	return map[string]string{
		"000_component_patterns": `create table if not exists component_patterns (
  "id" text primary key,
  "name" text not null,
  "label" text not null default '',
  "version" bigint not null,
  "created_at" timestamp with time zone not null,
  "updated_at" timestamp with time zone not null,
  "doc" jsonb not null
);`,
		"100_component_patterns_name_uq":     `create unique index if not exists component_patterns_name_uq on component_patterns("name");`,
		"110_component_patterns_updated_idx": `create index if not exists component_patterns_updated_idx on component_patterns("updated_at");`,
	}
}
