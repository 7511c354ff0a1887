package facebook

import (
	"context"
	"io"
	"time"

	"github.com/orgball2608/fb-repost-bot/internal/domain"
)

// Token is an opaque access token. It never prints its value.
type Token string

func (t Token) String() string {
	if t == "" {
		return "<empty>"
	}
	return "<redacted>"
}

type TokenType string

const (
	TokenTypeUser        TokenType = "USER"
	TokenTypePage        TokenType = "PAGE"
	TokenTypeApplication TokenType = "APP"
)

type TokenInfo struct {
	Type      TokenType
	AppID     int64
	UserID    int64
	ProfileID int64
	Valid     bool
	ExpiresAt time.Time
	Scopes    []string
}

type PostDetails struct {
	Type     domain.PostType
	Message  string
	ObjectID int64
}

// Client is the narrow set of Graph API capabilities the bot uses.
//
//go:generate go run go.uber.org/mock/mockgen -source=facebook.go -destination=mocks/mock.go
type Client interface {
	// FetchFeed returns bare posts (ID only) in the order the platform lists them.
	FetchFeed(ctx context.Context, pageID int64, limit int, token Token) ([]domain.Post, error)
	FetchPostDetails(ctx context.Context, postID string, token Token) (PostDetails, error)
	// FetchAttachmentSource returns the download URL of an attachment object.
	FetchAttachmentSource(ctx context.Context, objectID int64, token Token) (string, error)
	Download(ctx context.Context, url string) (io.ReadCloser, error)
	// PublishPhoto creates a photo post on a page and returns the new post id.
	PublishPhoto(ctx context.Context, pageID int64, publicURL, message string, token Token) (string, error)
	FetchPageName(ctx context.Context, pageID int64, token Token) (string, error)
	DebugToken(ctx context.Context, token Token) (TokenInfo, error)
	// ExchangeAccountTokens lists the page tokens a user token grants, by page id.
	ExchangeAccountTokens(ctx context.Context, userToken Token) (map[int64]Token, error)
}
