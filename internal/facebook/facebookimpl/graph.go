package facebookimpl

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/go-querystring/query"
	"github.com/orgball2608/fb-repost-bot/internal/domain"
	"github.com/orgball2608/fb-repost-bot/internal/facebook"
)

// maxAccountPages bounds pagination of me/accounts.
const maxAccountPages = 20

type feedResponse struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

// FetchFeed lists the most recent posts of a page.
func (f *FacebookImpl) FetchFeed(ctx context.Context, pageID int64, limit int, token facebook.Token) ([]domain.Post, error) {
	q := url.Values{}
	q.Set("fields", "admin_creator")
	q.Set("limit", strconv.Itoa(limit))

	var resp feedResponse
	if err := f.get(ctx, pageID, strconv.FormatInt(pageID, 10)+"/feed", q, token, &resp); err != nil {
		return nil, err
	}

	posts := make([]domain.Post, 0, len(resp.Data))
	for _, item := range resp.Data {
		posts = append(posts, domain.Post{ID: item.ID})
	}
	return posts, nil
}

type postDetailsResponse struct {
	Type     string  `json:"type"`
	Message  string  `json:"message"`
	ObjectID graphID `json:"object_id"`
}

func (f *FacebookImpl) FetchPostDetails(ctx context.Context, postID string, token facebook.Token) (facebook.PostDetails, error) {
	if postID == "" {
		return facebook.PostDetails{}, fmt.Errorf("%w: post id is required to fetch details", facebook.ErrPlatform)
	}

	q := url.Values{}
	q.Set("fields", "type,message,status_type,object_id")

	var resp postDetailsResponse
	if err := f.get(ctx, 0, url.PathEscape(postID), q, token, &resp); err != nil {
		return facebook.PostDetails{}, err
	}

	return facebook.PostDetails{
		Type:     domain.PostTypeFromGraph(resp.Type),
		Message:  resp.Message,
		ObjectID: int64(resp.ObjectID),
	}, nil
}

type attachmentResponse struct {
	Source string `json:"source"`
}

func (f *FacebookImpl) FetchAttachmentSource(ctx context.Context, objectID int64, token facebook.Token) (string, error) {
	if objectID == 0 {
		return "", fmt.Errorf("%w: post has no attachment", facebook.ErrPlatform)
	}

	q := url.Values{}
	q.Set("fields", "source")

	var resp attachmentResponse
	if err := f.get(ctx, 0, strconv.FormatInt(objectID, 10), q, token, &resp); err != nil {
		return "", err
	}
	if resp.Source == "" {
		return "", fmt.Errorf("%w: attachment %d has no source", facebook.ErrPlatform, objectID)
	}
	return resp.Source, nil
}

// Download streams an attachment. The caller closes the body.
func (f *FacebookImpl) Download(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build download request: %w", facebook.ErrPlatform, redactURL(err))
	}

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: download: %w", facebook.ErrPlatform, redactURL(err))
	}
	if resp.StatusCode != http.StatusOK {
		safeClose(resp.Body, f.logger)
		return nil, &facebook.Error{
			Type:       "DownloadError",
			Message:    fmt.Sprintf("unexpected status %d", resp.StatusCode),
			StatusCode: resp.StatusCode,
		}
	}
	return resp.Body, nil
}

type photoForm struct {
	URL     string `url:"url"`
	Message string `url:"message,omitempty"`
}

type publishResponse struct {
	ID     string `json:"id"`
	PostID string `json:"post_id"`
}

func (f *FacebookImpl) PublishPhoto(ctx context.Context, pageID int64, publicURL, message string, token facebook.Token) (string, error) {
	form, err := query.Values(photoForm{URL: publicURL, Message: message})
	if err != nil {
		return "", fmt.Errorf("%w: encode photo form: %w", facebook.ErrPlatform, err)
	}

	var resp publishResponse
	if err := f.post(ctx, pageID, strconv.FormatInt(pageID, 10)+"/photos", form, token, &resp); err != nil {
		return "", err
	}

	if resp.PostID != "" {
		return resp.PostID, nil
	}
	return resp.ID, nil
}

type pageResponse struct {
	Name string `json:"name"`
}

func (f *FacebookImpl) FetchPageName(ctx context.Context, pageID int64, token facebook.Token) (string, error) {
	q := url.Values{}
	q.Set("fields", "name")

	var resp pageResponse
	if err := f.get(ctx, pageID, strconv.FormatInt(pageID, 10), q, token, &resp); err != nil {
		return "", err
	}
	return resp.Name, nil
}

type debugTokenResponse struct {
	Data struct {
		AppID     graphID  `json:"app_id"`
		Type      string   `json:"type"`
		IsValid   bool     `json:"is_valid"`
		ExpiresAt int64    `json:"expires_at"`
		Scopes    []string `json:"scopes"`
		UserID    graphID  `json:"user_id"`
		ProfileID graphID  `json:"profile_id"`
	} `json:"data"`
}

// DebugToken inspects token using itself as the app credential.
func (f *FacebookImpl) DebugToken(ctx context.Context, token facebook.Token) (facebook.TokenInfo, error) {
	q := url.Values{}
	q.Set("input_token", string(token))

	var resp debugTokenResponse
	if err := f.get(ctx, 0, "debug_token", q, token, &resp); err != nil {
		return facebook.TokenInfo{}, err
	}

	d := resp.Data
	info := facebook.TokenInfo{
		AppID:     int64(d.AppID),
		UserID:    int64(d.UserID),
		ProfileID: int64(d.ProfileID),
		Valid:     d.IsValid,
		Scopes:    d.Scopes,
	}
	if d.ExpiresAt > 0 {
		info.ExpiresAt = time.Unix(d.ExpiresAt, 0)
	}

	switch {
	case d.ProfileID != 0:
		info.Type = facebook.TokenTypePage
	case d.UserID != 0:
		info.Type = facebook.TokenTypeUser
	default:
		info.Type = facebook.TokenTypeApplication
	}

	return info, nil
}

type accountsResponse struct {
	Data []struct {
		ID          graphID `json:"id"`
		AccessToken string  `json:"access_token"`
	} `json:"data"`
	Paging struct {
		Cursors struct {
			After string `json:"after"`
		} `json:"cursors"`
		Next string `json:"next"`
	} `json:"paging"`
}

func (f *FacebookImpl) ExchangeAccountTokens(ctx context.Context, userToken facebook.Token) (map[int64]facebook.Token, error) {
	tokens := make(map[int64]facebook.Token)

	q := url.Values{}
	q.Set("fields", "id,access_token")
	q.Set("limit", "100")

	for page := 0; page < maxAccountPages; page++ {
		var resp accountsResponse
		if err := f.get(ctx, 0, "me/accounts", q, userToken, &resp); err != nil {
			return nil, err
		}
		for _, acc := range resp.Data {
			if acc.ID != 0 && acc.AccessToken != "" {
				tokens[int64(acc.ID)] = facebook.Token(acc.AccessToken)
			}
		}
		if resp.Paging.Next == "" || resp.Paging.Cursors.After == "" {
			break
		}
		q.Set("after", resp.Paging.Cursors.After)
	}

	return tokens, nil
}
