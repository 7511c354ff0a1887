package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/orgball2608/fb-repost-bot/internal/cache"
	"github.com/orgball2608/fb-repost-bot/internal/eventbus"
	"github.com/orgball2608/fb-repost-bot/internal/facebook"
	"github.com/orgball2608/fb-repost-bot/internal/mapping"
	"github.com/orgball2608/fb-repost-bot/internal/page"
	"github.com/orgball2608/fb-repost-bot/internal/scheduler"
	"github.com/orgball2608/fb-repost-bot/pkg/config"
	apperrors "github.com/orgball2608/fb-repost-bot/pkg/errors"
	"github.com/orgball2608/fb-repost-bot/pkg/logger"
	"github.com/orgball2608/fb-repost-bot/pkg/paths"
	"github.com/orgball2608/fb-repost-bot/pkg/retry"
	"go.uber.org/fx"
)

// summaryDelay is how long after the first ticks the startup summary is logged.
const summaryDelay = 30 * time.Second

type BootstrapOpts struct {
	fx.In

	Config    *config.Config
	Paths     *paths.Paths
	Client    facebook.Client
	Store     cache.Store
	Bus       *eventbus.Bus
	Registry  *page.Registry
	Scheduler *scheduler.Scheduler
	Logger    logger.Logger
}

// Bootstrap turns the mapping file into running pages: it validates the
// credentials, builds every source and target page once and schedules the
// source pages.
type Bootstrap struct {
	cfg         *config.Config
	paths       *paths.Paths
	client      facebook.Client
	store       cache.Store
	bus         *eventbus.Bus
	registry    *page.Registry
	scheduler   *scheduler.Scheduler
	descriptors *page.DescriptorStore
	retry       retry.Config
	logger      logger.Logger
}

func NewBootstrap(opts BootstrapOpts) *Bootstrap {
	return &Bootstrap{
		cfg:         opts.Config,
		paths:       opts.Paths,
		client:      opts.Client,
		store:       opts.Store,
		bus:         opts.Bus,
		registry:    opts.Registry,
		scheduler:   opts.Scheduler,
		descriptors: page.NewDescriptorStore(opts.Paths, opts.Client, opts.Config.Parser.DefaultCheckInterval, opts.Logger),
		retry:       retry.DefaultConfig(),
		logger:      opts.Logger.WithComponent("Bootstrap"),
	}
}

// Run fails with a coded error (see pkg/errors) so the process can exit with
// the matching status.
func (b *Bootstrap) Run(ctx context.Context) error {
	b.logger.Info("Loading repost mappings", "file", b.paths.RepostConf())

	mappings, err := mapping.ParseFile(b.paths.RepostConf())
	if err != nil {
		return apperrors.WrapWithCode(err, apperrors.CodeConfig, "invalid repost mappings")
	}
	plan := mapping.Resolve(mappings)
	if len(plan.Mappings) == 0 {
		b.logger.Warn("No repost mappings configured, nothing to do")
	}

	token := facebook.Token(strings.TrimSpace(b.cfg.Facebook.AccessToken))
	if token == "" {
		return apperrors.NewWithCode(apperrors.CodeCredential, "FACEBOOK_ACCESS_TOKEN must be set")
	}
	if err := b.validateToken(ctx, token); err != nil {
		return apperrors.WrapWithCode(err, apperrors.CodeCredential, "invalid access token")
	}

	pageTokens, err := b.pageTokens(ctx, token, plan.TargetIDs)
	if err != nil {
		return apperrors.WrapWithCode(err, apperrors.CodePageTokens, "cannot fetch page access tokens")
	}

	for _, m := range plan.Mappings {
		if err := b.initSource(ctx, m.SourcePageID, token); err != nil {
			return apperrors.WrapWithCode(err, apperrors.CodeBootstrap, fmt.Sprintf("cannot load source page %d", m.SourcePageID))
		}
		if err := b.initTarget(ctx, m.TargetPageID, token, pageTokens[m.TargetPageID], plan.TargetSources[m.TargetPageID]); err != nil {
			return apperrors.WrapWithCode(err, apperrors.CodeBootstrap, fmt.Sprintf("cannot load target page %d", m.TargetPageID))
		}
	}

	for _, src := range b.registry.SourcePages() {
		if err := b.scheduler.Every(fmt.Sprintf("poll:%d", src.ID()), src.Interval(), pollTask(src)); err != nil {
			return apperrors.WrapWithCode(err, apperrors.CodeBootstrap, "cannot schedule polling")
		}
	}

	if err := b.scheduler.Delay("startup-summary", b.cfg.Parser.StartupDelay+summaryDelay, b.summary); err != nil {
		return apperrors.WrapWithCode(err, apperrors.CodeBootstrap, "cannot schedule startup summary")
	}

	b.logger.Info("Bootstrap finished",
		"sources", len(b.registry.SourcePages()),
		"targets", len(b.registry.TargetPages()))
	return nil
}

func pollTask(src *page.SourcePage) scheduler.Task {
	return func(ctx context.Context) error {
		_, err := src.Check(ctx)
		if errors.Is(err, page.ErrCheckInProgress) {
			return nil
		}
		return err
	}
}

// validateToken checks the main token. Expired or invalid tokens are fatal
// right away; transport failures are retried.
func (b *Bootstrap) validateToken(ctx context.Context, token facebook.Token) error {
	var info facebook.TokenInfo
	err := retry.Do(ctx, b.logger, "debug_token", func() error {
		var err error
		info, err = b.client.DebugToken(ctx, token)
		return permanentIfAnswered(err)
	}, b.retry)
	if err != nil {
		return err
	}

	if !info.Valid {
		return errors.New("token is not valid")
	}
	if !info.ExpiresAt.IsZero() && time.Now().After(info.ExpiresAt) {
		return fmt.Errorf("%w: expired at %s", facebook.ErrTokenExpired, info.ExpiresAt.Format(time.RFC3339))
	}

	expires := "never"
	if !info.ExpiresAt.IsZero() {
		expires = info.ExpiresAt.Format(time.RFC3339)
	}
	b.logger.Info("Access token validated",
		"type", string(info.Type),
		"app_id", info.AppID,
		"expires", expires,
		"scopes", strings.Join(info.Scopes, ","))
	return nil
}

func (b *Bootstrap) pageTokens(ctx context.Context, token facebook.Token, targetIDs []int64) (map[int64]facebook.Token, error) {
	if len(targetIDs) == 0 {
		return map[int64]facebook.Token{}, nil
	}

	var tokens map[int64]facebook.Token
	err := retry.Do(ctx, b.logger, "me/accounts", func() error {
		var err error
		tokens, err = b.client.ExchangeAccountTokens(ctx, token)
		return permanentIfAnswered(err)
	}, b.retry)
	if err != nil {
		return nil, err
	}

	for _, id := range targetIDs {
		if tokens[id] == "" {
			return nil, fmt.Errorf("no page access token granted for target page %d", id)
		}
	}

	b.logger.Info("Page access tokens fetched", "targets", len(targetIDs), "granted", len(tokens))
	return tokens, nil
}

// permanentIfAnswered stops retrying once the Graph API itself answered
// with an error.
func permanentIfAnswered(err error) error {
	var apiErr *facebook.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode < 500 {
		return retry.Permanent(err)
	}
	return err
}

func (b *Bootstrap) initSource(ctx context.Context, id int64, token facebook.Token) error {
	if b.registry.ContainsSource(id) {
		return nil
	}

	desc, err := b.descriptors.LoadOrCreate(ctx, id, token)
	if err != nil {
		return err
	}

	b.registry.AddSource(page.NewSourcePage(page.SourceOpts{
		Page:       desc,
		Client:     b.client,
		Token:      token,
		Store:      b.store,
		Paths:      b.paths,
		Bus:        b.bus,
		Logger:     b.logger,
		FetchLimit: b.cfg.Parser.FetchLimit,
	}))
	b.logger.Info("Source page loaded", "page_id", id, "page", desc.Username, "interval", desc.Interval())
	return nil
}

func (b *Bootstrap) initTarget(ctx context.Context, id int64, token, pageToken facebook.Token, sources []int64) error {
	if b.registry.ContainsTarget(id) {
		return nil
	}

	desc, err := b.descriptors.LoadOrCreate(ctx, id, token)
	if err != nil {
		return err
	}

	target := page.NewTargetPage(page.TargetOpts{
		Page:    desc,
		Sources: sources,
		Client:  b.client,
		Token:   pageToken,
		Store:   b.store,
		Paths:   b.paths,
		Bus:     b.bus,
		Logger:  b.logger,
	})
	b.registry.AddTarget(target)
	target.Subscribe(b.bus)

	b.logger.Info("Target page loaded", "page_id", id, "page", desc.Username, "sources", sources)
	return nil
}

func (b *Bootstrap) summary(context.Context) error {
	for _, t := range b.registry.TargetPages() {
		b.logger.Info("Relaying to target page", "page_id", t.ID(), "page", t.Name(), "sources", t.Sources())
	}
	b.logger.Info("Repost bot running",
		"sources", len(b.registry.SourcePages()),
		"targets", len(b.registry.TargetPages()),
		"subscribers", b.bus.Incoming.Len())
	return nil
}
