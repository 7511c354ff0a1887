package cache

import (
	"context"
	"fmt"

	"github.com/orgball2608/fb-repost-bot/internal/domain"
	"github.com/orgball2608/fb-repost-bot/pkg/paths"
)

// PageCache is the per-page set of processed posts. It is append-only: there
// is no eviction and no TTL.
type PageCache struct {
	store     Store
	pageID    int64
	namespace string
}

func NewPageCache(store Store, pageID int64) *PageCache {
	return &PageCache{
		store:     store,
		pageID:    pageID,
		namespace: paths.PageNamespace(pageID),
	}
}

func (c *PageCache) PageID() int64 {
	return c.pageID
}

// Contains reports whether a record for postID has been persisted.
func (c *PageCache) Contains(ctx context.Context, postID string) (bool, error) {
	return c.store.Exists(ctx, c.namespace, postID)
}

// Get returns the persisted record, ErrNotFound, or ErrCorrupt when the stored
// bytes do not decode.
func (c *PageCache) Get(ctx context.Context, postID string) (domain.CachedPost, error) {
	data, err := c.store.Get(ctx, c.namespace, postID)
	if err != nil {
		return nil, err
	}
	rec, err := domain.UnmarshalRecord(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s/%s: %w", ErrCorrupt, c.namespace, postID, err)
	}
	return rec, nil
}

// AddSource records a post ingested by this (source) page. On error the post
// must not be treated as cached.
func (c *PageCache) AddSource(ctx context.Context, post domain.Post) (domain.SourceRecord, error) {
	rec := domain.SourceRecord{Post: post, SourcePageID: c.pageID}
	if err := c.put(ctx, rec); err != nil {
		return domain.SourceRecord{}, err
	}
	return rec, nil
}

// AddTarget records a post relayed to this (target) page.
func (c *PageCache) AddTarget(ctx context.Context, post domain.Post, published bool) (domain.TargetRecord, error) {
	rec := domain.TargetRecord{Post: post, TargetPageID: c.pageID, Published: published}
	if err := c.put(ctx, rec); err != nil {
		return domain.TargetRecord{}, err
	}
	return rec, nil
}

func (c *PageCache) put(ctx context.Context, rec domain.CachedPost) error {
	data, err := domain.MarshalRecord(rec)
	if err != nil {
		return err
	}
	if err := c.store.Put(ctx, c.namespace, rec.PostID(), data); err != nil {
		return fmt.Errorf("cache post %s for page %d: %w", rec.PostID(), c.pageID, err)
	}
	return nil
}
