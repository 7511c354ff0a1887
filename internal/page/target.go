package page

import (
	"context"
	"errors"
	"sync"

	"github.com/orgball2608/fb-repost-bot/internal/cache"
	"github.com/orgball2608/fb-repost-bot/internal/domain"
	"github.com/orgball2608/fb-repost-bot/internal/eventbus"
	"github.com/orgball2608/fb-repost-bot/internal/facebook"
	"github.com/orgball2608/fb-repost-bot/internal/feed"
	"github.com/orgball2608/fb-repost-bot/internal/filter"
	"github.com/orgball2608/fb-repost-bot/internal/metrics"
	"github.com/orgball2608/fb-repost-bot/pkg/logger"
	"github.com/orgball2608/fb-repost-bot/pkg/paths"
)

type TargetOpts struct {
	Page    domain.Page
	Sources []int64
	Client  facebook.Client
	Token   facebook.Token
	Store   cache.Store
	Paths   *paths.Paths
	Bus     *eventbus.Bus
	Logger  logger.Logger
}

// TargetPage republishes relevant incoming posts to one page.
type TargetPage struct {
	page      domain.Page
	filter    *filter.Filter
	publisher *feed.Publisher
	cache     *cache.PageCache
	bus       *eventbus.Bus
	logger    logger.Logger

	// mu serialises the published check with the publish and the record.
	mu sync.Mutex
}

func NewTargetPage(opts TargetOpts) *TargetPage {
	log := opts.Logger.WithComponent("TargetPage").With("page_id", opts.Page.ID, "page", opts.Page.Username)

	return &TargetPage{
		page:      opts.Page,
		filter:    filter.New(opts.Sources),
		publisher: feed.NewPublisher(opts.Client, opts.Paths, opts.Page.ID, opts.Token, log),
		cache:     cache.NewPageCache(opts.Store, opts.Page.ID),
		bus:       opts.Bus,
		logger:    log,
	}
}

func (t *TargetPage) ID() int64 {
	return t.page.ID
}

func (t *TargetPage) Name() string {
	return t.page.Username
}

func (t *TargetPage) Sources() []int64 {
	return t.filter.Sources()
}

// Subscribe registers the page on the incoming topic.
func (t *TargetPage) Subscribe(bus *eventbus.Bus) {
	bus.Incoming.Subscribe("target:"+metrics.PageLabel(t.page.ID), t.HandleIncoming)
}

// HandleIncoming publishes rec when it comes from one of this page's
// sources and has not been published here before. Failures are logged and
// dropped; there is no retry.
func (t *TargetPage) HandleIncoming(ctx context.Context, rec domain.SourceRecord) {
	if !t.filter.IsRelevant(rec) {
		t.logger.Debug("Post not relevant for this page", "post_id", rec.PostID(), "source_page_id", rec.SourcePageID)
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	log := t.logger.With("post_id", rec.PostID(), "source_page_id", rec.SourcePageID)
	label := metrics.PageLabel(t.page.ID)

	done, err := t.alreadyPublished(ctx, rec.PostID())
	if errors.Is(err, cache.ErrCorrupt) {
		metrics.PostFailuresTotal.WithLabelValues(label, metrics.StageCache).Inc()
		log.Warn("Unreadable target cache entry, treating post as not published", "error", err)
		done, err = false, nil
	}
	if err != nil {
		log.Error("Failed to read target cache", "error", err)
		return
	}
	if done {
		log.Info("Post already published to this page, skipping")
		return
	}

	published, err := t.publisher.Publish(ctx, rec.Original())
	if err != nil {
		metrics.PublishFailuresTotal.WithLabelValues(label).Inc()
		log.Error("Failed to publish post", "error", err)
		return
	}
	if !published {
		return
	}
	metrics.PublishedTotal.WithLabelValues(label).Inc()

	out, err := t.cache.AddTarget(ctx, rec.Original(), true)
	if err != nil {
		log.Error("Post published but could not be recorded", "error", err)
		return
	}

	t.bus.Outgoing.Publish(ctx, out)
}

func (t *TargetPage) alreadyPublished(ctx context.Context, postID string) (bool, error) {
	cached, err := t.cache.Get(ctx, postID)
	if errors.Is(err, cache.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	rec, ok := cached.(domain.TargetRecord)
	return ok && rec.Published, nil
}
