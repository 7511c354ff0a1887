package app

import (
	"context"
	"errors"

	"github.com/orgball2608/fb-repost-bot/internal/cache"
	"github.com/orgball2608/fb-repost-bot/internal/eventbus"
	"github.com/orgball2608/fb-repost-bot/internal/facebook"
	"github.com/orgball2608/fb-repost-bot/internal/facebook/facebookimpl"
	"github.com/orgball2608/fb-repost-bot/internal/page"
	"github.com/orgball2608/fb-repost-bot/internal/scheduler"
	"github.com/orgball2608/fb-repost-bot/internal/telegram"
	"github.com/orgball2608/fb-repost-bot/internal/telegram/telegramimpl"
	"github.com/orgball2608/fb-repost-bot/pkg/config"
	"github.com/orgball2608/fb-repost-bot/pkg/logger"
	"github.com/orgball2608/fb-repost-bot/pkg/paths"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(
		config.New,
		logger.FxOption,
		NewPaths,
		eventbus.New,
		page.NewRegistry,
		scheduler.New,
		NewBootstrap,
	),
	fx.Provide(
		fx.Annotate(
			facebookimpl.New,
			fx.As(new(facebook.Client)),
		),
	),
	cache.Module,
	fx.Invoke(registerNotifier),
	fx.Invoke(registerHTTPServer),
	fx.Invoke(run),
)

func NewPaths(cfg *config.Config) *paths.Paths {
	return paths.New(cfg.Paths.DataPath, cfg.Paths.PublicPath, cfg.Paths.PublicPathURL, cfg.Paths.RepostConf)
}

// registerNotifier subscribes the Telegram notifier when a bot token is set.
func registerNotifier(cfg *config.Config, bus *eventbus.Bus, log logger.Logger) error {
	tg, err := telegramimpl.New(telegramimpl.Opts{Config: cfg, Logger: log})
	if errors.Is(err, telegramimpl.ErrDisabled) {
		log.Info("Telegram notifications disabled")
		return nil
	}
	if err != nil {
		return err
	}

	telegram.NewNotifier(tg, cfg.Telegram.User, log).Subscribe(bus)
	return nil
}

func run(lc fx.Lifecycle, b *Bootstrap, s *scheduler.Scheduler) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := b.Run(ctx); err != nil {
				return err
			}
			s.Start()
			return nil
		},
	})
}
