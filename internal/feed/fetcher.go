// Package feed reads posts from source pages and publishes them to target pages.
package feed

import (
	"context"
	"fmt"

	"github.com/orgball2608/fb-repost-bot/internal/domain"
	"github.com/orgball2608/fb-repost-bot/internal/facebook"
)

// DefaultLimit is how many recent posts one polling cycle asks for.
const DefaultLimit = 10

type Fetcher struct {
	client facebook.Client
	pageID int64
	token  facebook.Token
}

func NewFetcher(client facebook.Client, pageID int64, token facebook.Token) *Fetcher {
	return &Fetcher{client: client, pageID: pageID, token: token}
}

// Fetch returns up to limit bare posts (id only) in platform order. Errors are
// not retried here.
func (f *Fetcher) Fetch(ctx context.Context, limit int) ([]domain.Post, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	posts, err := f.client.FetchFeed(ctx, f.pageID, limit, f.token)
	if err != nil {
		return nil, fmt.Errorf("fetch feed of page %d: %w", f.pageID, err)
	}
	return posts, nil
}

// Enrich fills in type, message and attachment id. Posts whose details were
// already fetched are returned unchanged.
func (f *Fetcher) Enrich(ctx context.Context, post domain.Post) (domain.Post, error) {
	if post.DetailsFetched {
		return post, nil
	}

	details, err := f.client.FetchPostDetails(ctx, post.ID, f.token)
	if err != nil {
		return post, fmt.Errorf("fetch details of post %s: %w", post.ID, err)
	}

	post.Type = details.Type
	post.Message = details.Message
	post.ObjectID = details.ObjectID
	post.DetailsFetched = true
	return post, nil
}
