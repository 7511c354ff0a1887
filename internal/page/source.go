package page

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/orgball2608/fb-repost-bot/internal/cache"
	"github.com/orgball2608/fb-repost-bot/internal/domain"
	"github.com/orgball2608/fb-repost-bot/internal/eventbus"
	"github.com/orgball2608/fb-repost-bot/internal/facebook"
	"github.com/orgball2608/fb-repost-bot/internal/feed"
	"github.com/orgball2608/fb-repost-bot/internal/metrics"
	"github.com/orgball2608/fb-repost-bot/pkg/logger"
	"github.com/orgball2608/fb-repost-bot/pkg/paths"
)

// ErrCheckInProgress is returned by Check when the previous cycle of the same
// page has not finished yet.
var ErrCheckInProgress = errors.New("check already in progress")

type SourceOpts struct {
	Page       domain.Page
	Client     facebook.Client
	Token      facebook.Token
	Store      cache.Store
	Paths      *paths.Paths
	Bus        *eventbus.Bus
	Logger     logger.Logger
	FetchLimit int
}

// SourcePage polls one page and announces every post it has not seen before.
type SourcePage struct {
	page        domain.Page
	fetcher     *feed.Fetcher
	attachments *feed.AttachmentStore
	cache       *cache.PageCache
	bus         *eventbus.Bus
	limit       int
	logger      logger.Logger

	mu sync.Mutex
}

func NewSourcePage(opts SourceOpts) *SourcePage {
	log := opts.Logger.WithComponent("SourcePage").With("page_id", opts.Page.ID, "page", opts.Page.Username)
	limit := opts.FetchLimit
	if limit <= 0 {
		limit = feed.DefaultLimit
	}

	return &SourcePage{
		page:        opts.Page,
		fetcher:     feed.NewFetcher(opts.Client, opts.Page.ID, opts.Token),
		attachments: feed.NewAttachmentStore(opts.Client, opts.Paths, opts.Token, log),
		cache:       cache.NewPageCache(opts.Store, opts.Page.ID),
		bus:         opts.Bus,
		limit:       limit,
		logger:      log,
	}
}

func (s *SourcePage) ID() int64 {
	return s.page.ID
}

func (s *SourcePage) Name() string {
	return s.page.Username
}

func (s *SourcePage) Interval() time.Duration {
	return s.page.Interval()
}

// CycleStats summarises one polling cycle.
type CycleStats struct {
	Fetched int
	Cached  int
	Skipped int
	Failed  int
}

// Check runs one polling cycle. Posts are handled in feed order; a failure
// on one post is logged and does not stop the others. Only a feed fetch
// failure or an overlapping cycle is returned as an error.
func (s *SourcePage) Check(ctx context.Context) (CycleStats, error) {
	label := metrics.PageLabel(s.page.ID)

	if !s.mu.TryLock() {
		metrics.PollsTotal.WithLabelValues(label, metrics.ResultSkipped).Inc()
		s.logger.Warn("Previous check still running, skipping this tick")
		return CycleStats{}, ErrCheckInProgress
	}
	defer s.mu.Unlock()

	start := time.Now()
	defer func() {
		metrics.PollDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
	}()

	log := s.logger.With("cycle_id", uuid.NewString())
	log.Info("Fetching recent posts", "limit", s.limit)

	posts, err := s.fetcher.Fetch(ctx, s.limit)
	if err != nil {
		metrics.PollsTotal.WithLabelValues(label, metrics.ResultFailed).Inc()
		log.Error("Failed to fetch feed", "error", err)
		return CycleStats{}, err
	}

	stats := CycleStats{Fetched: len(posts)}
	for _, post := range posts {
		if ctx.Err() != nil {
			log.Info("Context cancelled, stopping check")
			break
		}

		cached, err := s.offer(ctx, log, post)
		switch {
		case err != nil:
			stats.Failed++
		case cached:
			stats.Cached++
		default:
			stats.Skipped++
		}
	}

	metrics.PollsTotal.WithLabelValues(label, metrics.ResultOK).Inc()
	log.Info("Check finished",
		"fetched", stats.Fetched,
		"cached", stats.Cached,
		"skipped", stats.Skipped,
		"failed", stats.Failed)
	return stats, nil
}

// offer ingests one post unless it is already cached. The post is cached only
// after every enrichment step succeeded, so a failed post is retried on the
// next cycle.
func (s *SourcePage) offer(ctx context.Context, log logger.Logger, post domain.Post) (bool, error) {
	label := metrics.PageLabel(s.page.ID)
	log = log.With("post_id", post.ID)

	seen, err := s.cache.Contains(ctx, post.ID)
	if err != nil {
		metrics.PostFailuresTotal.WithLabelValues(label, metrics.StageCache).Inc()
		log.Error("Failed to check cache", "error", err)
		return false, err
	}
	if seen {
		return false, nil
	}

	post, err = s.fetcher.Enrich(ctx, post)
	if err != nil {
		metrics.PostFailuresTotal.WithLabelValues(label, metrics.StageDetails).Inc()
		log.Error("Failed to fetch post details", "error", err)
		return false, err
	}

	if post.HasAttachment() {
		if err := s.attachments.Save(ctx, post); err != nil {
			metrics.PostFailuresTotal.WithLabelValues(label, metrics.StageAttachment).Inc()
			log.Error("Failed to fetch attachment", "object_id", post.ObjectID, "error", err)
			return false, err
		}
	}

	rec, err := s.cache.AddSource(ctx, post)
	if err != nil {
		metrics.PostFailuresTotal.WithLabelValues(label, metrics.StageCache).Inc()
		log.Error("Failed to cache post", "error", err)
		return false, fmt.Errorf("cache post %s: %w", post.ID, err)
	}

	metrics.PostsCachedTotal.WithLabelValues(label).Inc()
	log.Info("Post cached", "type", post.Type.String())

	s.bus.Incoming.Publish(ctx, rec)
	return true, nil
}
