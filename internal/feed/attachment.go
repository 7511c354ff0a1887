package feed

import (
	"context"
	"fmt"
	"io"

	"github.com/orgball2608/fb-repost-bot/internal/cache"
	"github.com/orgball2608/fb-repost-bot/internal/domain"
	"github.com/orgball2608/fb-repost-bot/internal/facebook"
	"github.com/orgball2608/fb-repost-bot/pkg/logger"
	"github.com/orgball2608/fb-repost-bot/pkg/paths"
)

// maxAttachmentSize caps a single downloaded attachment.
const maxAttachmentSize = 64 << 20

// AttachmentStore downloads post attachments into the public directory.
type AttachmentStore struct {
	client facebook.Client
	paths  *paths.Paths
	token  facebook.Token
	logger logger.Logger
}

func NewAttachmentStore(client facebook.Client, p *paths.Paths, token facebook.Token, log logger.Logger) *AttachmentStore {
	return &AttachmentStore{
		client: client,
		paths:  p,
		token:  token,
		logger: log,
	}
}

// Save downloads the attachment of post. Only photos are stored; other types
// are left alone. The file is replaced atomically, so repeating Save after a
// partial failure is safe.
func (s *AttachmentStore) Save(ctx context.Context, post domain.Post) error {
	if !post.HasAttachment() {
		return fmt.Errorf("post %s has no attachment", post.ID)
	}
	if post.Type != domain.PostTypePhoto {
		s.logger.Debug("Skipping attachment of non-photo post", "post_id", post.ID, "type", post.Type.String())
		return nil
	}

	source, err := s.client.FetchAttachmentSource(ctx, post.ObjectID, s.token)
	if err != nil {
		return fmt.Errorf("fetch attachment %d: %w", post.ObjectID, err)
	}

	body, err := s.client.Download(ctx, source)
	if err != nil {
		return fmt.Errorf("download attachment %d: %w", post.ObjectID, err)
	}
	defer func() {
		if err := body.Close(); err != nil {
			s.logger.Error("Error closing attachment body", "error", err)
		}
	}()

	data, err := io.ReadAll(io.LimitReader(body, maxAttachmentSize+1))
	if err != nil {
		return fmt.Errorf("read attachment %d: %w", post.ObjectID, err)
	}
	if len(data) == 0 {
		return fmt.Errorf("attachment %d is empty", post.ObjectID)
	}
	if len(data) > maxAttachmentSize {
		return fmt.Errorf("attachment %d exceeds %d bytes", post.ObjectID, maxAttachmentSize)
	}

	name := paths.PhotoName(post.ObjectID)
	if err := cache.WriteFileAtomic(s.paths.PublicFile(name), data); err != nil {
		return fmt.Errorf("write attachment %s: %w", name, err)
	}

	s.logger.Info("Attachment downloaded", "post_id", post.ID, "file", name, "bytes", len(data))
	return nil
}
