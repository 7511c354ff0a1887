package feed

import (
	"context"
	"fmt"

	"github.com/orgball2608/fb-repost-bot/internal/domain"
	"github.com/orgball2608/fb-repost-bot/internal/facebook"
	"github.com/orgball2608/fb-repost-bot/pkg/logger"
	"github.com/orgball2608/fb-repost-bot/pkg/paths"
)

type Publisher struct {
	client facebook.Client
	paths  *paths.Paths
	pageID int64
	token  facebook.Token
	logger logger.Logger
}

func NewPublisher(client facebook.Client, p *paths.Paths, pageID int64, token facebook.Token, log logger.Logger) *Publisher {
	return &Publisher{
		client: client,
		paths:  p,
		pageID: pageID,
		token:  token,
		logger: log,
	}
}

// Publish reposts post to the target page. It reports whether anything was
// published: unsupported types are skipped with a warning and no error.
func (p *Publisher) Publish(ctx context.Context, post domain.Post) (bool, error) {
	switch post.Type {
	case domain.PostTypePhoto:
		if err := p.publishPhoto(ctx, post); err != nil {
			return false, err
		}
		return true, nil
	default:
		p.logger.Warn("Post type is not supported for publishing, skipping",
			"post_id", post.ID,
			"type", post.Type.String(),
			"page_id", p.pageID)
		return false, nil
	}
}

func (p *Publisher) publishPhoto(ctx context.Context, post domain.Post) error {
	if !post.HasAttachment() {
		return fmt.Errorf("photo post %s has no attachment", post.ID)
	}

	publicURL := p.paths.PublicURL(paths.PhotoName(post.ObjectID))
	p.logger.Debug("Publishing photo", "post_id", post.ID, "url", publicURL, "page_id", p.pageID)

	id, err := p.client.PublishPhoto(ctx, p.pageID, publicURL, post.Message, p.token)
	if err != nil {
		return fmt.Errorf("publish photo %s to page %d: %w", post.ID, p.pageID, err)
	}

	p.logger.Info("Photo published", "post_id", post.ID, "new_post_id", id, "page_id", p.pageID)
	return nil
}
