package cache

import (
	"context"
	"path/filepath"

	"github.com/orgball2608/fb-repost-bot/internal/migrations"
	"github.com/orgball2608/fb-repost-bot/pkg/config"
	"github.com/orgball2608/fb-repost-bot/pkg/logger"
	"github.com/orgball2608/fb-repost-bot/pkg/paths"
	"github.com/orgball2608/fb-repost-bot/pkg/pgx"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In
	LC fx.Lifecycle

	Config *config.Config
	Paths  *paths.Paths
	Logger logger.Logger
}

// NewStore builds the backend selected by CACHE_BACKEND.
func NewStore(opts Opts) (Store, error) {
	log := opts.Logger.WithComponent("CacheStore")

	switch opts.Config.Cache.Backend {
	case config.CacheBackendBadger:
		dir := filepath.Join(opts.Paths.DataPath(), "badger")
		db, err := OpenBadger(dir)
		if err != nil {
			return nil, err
		}
		opts.LC.Append(fx.Hook{
			OnStop: func(context.Context) error {
				return db.Close()
			},
		})
		log.Info("Using badger cache store", "dir", dir)
		return NewBadgerStore(db), nil

	case config.CacheBackendPostgres:
		pool, err := pgx.New(pgx.Opts{LC: opts.LC, Logger: opts.Logger, Config: opts.Config})
		if err != nil {
			return nil, err
		}
		opts.LC.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				return migrations.Up(ctx, opts.Config.GetDSN())
			},
		})
		log.Info("Using postgres cache store")
		return NewPostgresStore(pool, opts.Logger), nil

	default:
		log.Info("Using file cache store", "dir", opts.Paths.DataPath())
		return NewFileStore(opts.Paths), nil
	}
}

var Module = fx.Module("cache",
	fx.Provide(NewStore),
)
