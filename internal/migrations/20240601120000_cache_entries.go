package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCacheEntries, downCacheEntries)
}

func upCacheEntries(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS cache_entries (
		namespace  VARCHAR NOT NULL,
		post_id    VARCHAR NOT NULL,
		payload    JSONB NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
		PRIMARY KEY (namespace, post_id)
	);
	`)
	return err
}

func downCacheEntries(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
	DROP TABLE IF EXISTS cache_entries;
	`)
	return err
}
