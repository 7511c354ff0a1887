package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/orgball2608/fb-repost-bot/pkg/logger"
)

const cacheTable = "cache_entries"

var sqBuilder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var ErrBadQuery = errors.New("bad query")

// PostgresStore keeps entries in the cache_entries table, keyed by
// (namespace, post_id).
type PostgresStore struct {
	pg     *pgxpool.Pool
	logger logger.Logger
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(pg *pgxpool.Pool, logger logger.Logger) *PostgresStore {
	return &PostgresStore{
		pg:     pg,
		logger: logger.WithComponent("PostgresCacheStore"),
	}
}

func existsQuery(namespace, key string) (string, []interface{}, error) {
	return sqBuilder.
		Select("1").
		From(cacheTable).
		Where(sq.Eq{"namespace": namespace, "post_id": key}).
		Limit(1).
		ToSql()
}

func getQuery(namespace, key string) (string, []interface{}, error) {
	return sqBuilder.
		Select("payload").
		From(cacheTable).
		Where(sq.Eq{"namespace": namespace, "post_id": key}).
		ToSql()
}

func putQuery(namespace, key string, value []byte, now time.Time) (string, []interface{}, error) {
	return sqBuilder.
		Insert(cacheTable).
		Columns("namespace", "post_id", "payload", "created_at").
		Values(namespace, key, value, now).
		Suffix("ON CONFLICT (namespace, post_id) DO UPDATE SET payload = EXCLUDED.payload").
		ToSql()
}

func (p *PostgresStore) Exists(ctx context.Context, namespace, key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	query, args, err := existsQuery(namespace, key)
	if err != nil {
		return false, ErrBadQuery
	}

	var one int
	err = p.pg.QueryRow(ctx, query, args...).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query cache entry %s/%s: %w", namespace, key, err)
	}
	return true, nil
}

func (p *PostgresStore) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	query, args, err := getQuery(namespace, key)
	if err != nil {
		return nil, ErrBadQuery
	}

	var payload []byte
	err = p.pg.QueryRow(ctx, query, args...).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query cache entry %s/%s: %w", namespace, key, err)
	}
	return payload, nil
}

func (p *PostgresStore) Put(ctx context.Context, namespace, key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}

	query, args, err := putQuery(namespace, key, value, time.Now())
	if err != nil {
		return ErrBadQuery
	}

	if _, err := p.pg.Exec(ctx, query, args...); err != nil {
		p.logger.Error("Failed to store cache entry", "namespace", namespace, "post_id", key, "error", err)
		return fmt.Errorf("store cache entry %s/%s: %w", namespace, key, err)
	}
	return nil
}
