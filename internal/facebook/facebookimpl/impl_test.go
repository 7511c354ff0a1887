package facebookimpl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/orgball2608/fb-repost-bot/internal/domain"
	"github.com/orgball2608/fb-repost-bot/internal/facebook"
	"github.com/orgball2608/fb-repost-bot/internal/ratelimit"
	"github.com/orgball2608/fb-repost-bot/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *FacebookImpl {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	f, err := NewWithClient(srv.URL, srv.Client(), ratelimit.NewPerSecond(0, 0), logger.NewNop())
	require.NoError(t, err)
	return f
}

func TestFetchFeed(t *testing.T) {
	f := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/111/feed", r.URL.Path)
		assert.Equal(t, "3", r.URL.Query().Get("limit"))
		assert.Equal(t, "admin_creator", r.URL.Query().Get("fields"))
		assert.Empty(t, r.URL.Query().Get("access_token"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"data":[{"id":"111_1"},{"id":"111_2"}]}`)
	})

	posts, err := f.FetchFeed(context.Background(), 111, 3, "tok")
	require.NoError(t, err)
	assert.Equal(t, []domain.Post{{ID: "111_1"}, {ID: "111_2"}}, posts)
}

func TestFetchPostDetails(t *testing.T) {
	f := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/111_1", r.URL.Path)
		fmt.Fprint(w, `{"type":"photo","message":"hello","status_type":"added_photos","object_id":"555"}`)
	})

	details, err := f.FetchPostDetails(context.Background(), "111_1", "tok")
	require.NoError(t, err)
	assert.Equal(t, facebook.PostDetails{Type: domain.PostTypePhoto, Message: "hello", ObjectID: 555}, details)
}

func TestFetchPostDetailsUnknownType(t *testing.T) {
	f := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"type":"event"}`)
	})

	details, err := f.FetchPostDetails(context.Background(), "111_9", "tok")
	require.NoError(t, err)
	assert.Equal(t, domain.PostTypeUnsupported, details.Type)
	assert.Zero(t, details.ObjectID)
}

func TestErrorEnvelopeOnSuccessStatus(t *testing.T) {
	f := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error":{"type":"GraphMethodException","message":"Unsupported get request.","code":100}}`)
	})

	_, err := f.FetchPageName(context.Background(), 111, "tok")
	require.Error(t, err)
	assert.True(t, errors.Is(err, facebook.ErrPlatform))
	assert.False(t, facebook.IsTokenExpired(err))

	var apiErr *facebook.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 100, apiErr.Code)
}

func TestExpiredToken(t *testing.T) {
	f := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"type":"OAuthException","message":"Error validating access token: Session has expired.","code":190}}`)
	})

	_, err := f.DebugToken(context.Background(), "tok")
	require.Error(t, err)
	assert.True(t, facebook.IsTokenExpired(err))
}

func TestPublishPhoto(t *testing.T) {
	f := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/222/photos", r.URL.Path)
		assert.Empty(t, r.URL.Query().Get("access_token"))
		assert.Equal(t, "Bearer page-tok", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "https://cdn.example.com/555.jpg", r.PostForm.Get("url"))
		assert.Equal(t, "hello", r.PostForm.Get("message"))
		fmt.Fprint(w, `{"id":"777","post_id":"222_777"}`)
	})

	id, err := f.PublishPhoto(context.Background(), 222, "https://cdn.example.com/555.jpg", "hello", "page-tok")
	require.NoError(t, err)
	assert.Equal(t, "222_777", id)
}

func TestFetchAttachmentAndDownload(t *testing.T) {
	var srvURL string
	f := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/555":
			assert.Equal(t, "source", r.URL.Query().Get("fields"))
			fmt.Fprintf(w, `{"source":"%s/files/555.jpg"}`, srvURL)
		case "/files/555.jpg":
			assert.Empty(t, r.Header.Get("Authorization"))
			fmt.Fprint(w, "jpeg-bytes")
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	srvURL = f.baseURL.String()
	srvURL = srvURL[:len(srvURL)-1]

	source, err := f.FetchAttachmentSource(context.Background(), 555, "tok")
	require.NoError(t, err)

	body, err := f.Download(context.Background(), source)
	require.NoError(t, err)
	defer body.Close()
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))

	_, err = f.Download(context.Background(), srvURL+"/missing")
	assert.Error(t, err)
}

func TestTransportErrorsHideTokens(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	f, err := NewWithClient(srv.URL, srv.Client(), ratelimit.NewPerSecond(0, 0), logger.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = f.FetchFeed(ctx, 111, 10, "SECRET-PAGE-TOKEN")
	require.Error(t, err)
	assert.True(t, errors.Is(err, facebook.ErrPlatform))
	assert.NotContains(t, err.Error(), "SECRET-PAGE-TOKEN")

	_, err = f.DebugToken(ctx, "SECRET-USER-TOKEN")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "SECRET-USER-TOKEN")

	_, err = f.PublishPhoto(ctx, 222, "https://cdn.example.com/555.jpg", "hi", "SECRET-PAGE-TOKEN")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "SECRET-PAGE-TOKEN")

	_, err = f.Download(ctx, srv.URL+"/files/555.jpg?oh=SIGNED-CDN-KEY")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "SIGNED-CDN-KEY")
}

func TestDebugToken(t *testing.T) {
	f := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/debug_token", r.URL.Path)
		assert.Equal(t, "tok", r.URL.Query().Get("input_token"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"data":{"app_id":"42","type":"USER","is_valid":true,"expires_at":0,"scopes":["pages_manage_posts"],"user_id":"1001"}}`)
	})

	info, err := f.DebugToken(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, facebook.TokenTypeUser, info.Type)
	assert.Equal(t, int64(42), info.AppID)
	assert.Equal(t, int64(1001), info.UserID)
	assert.True(t, info.Valid)
	assert.True(t, info.ExpiresAt.IsZero())
}

func TestExchangeAccountTokensFollowsPaging(t *testing.T) {
	f := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/me/accounts", r.URL.Path)
		if r.URL.Query().Get("after") == "" {
			fmt.Fprint(w, `{"data":[{"id":"111","access_token":"t111"}],"paging":{"cursors":{"after":"c1"},"next":"https://next"}}`)
			return
		}
		assert.Equal(t, "c1", r.URL.Query().Get("after"))
		fmt.Fprint(w, `{"data":[{"id":222,"access_token":"t222"}],"paging":{"cursors":{"after":"c2"}}}`)
	})

	tokens, err := f.ExchangeAccountTokens(context.Background(), "user-tok")
	require.NoError(t, err)
	assert.Equal(t, map[int64]facebook.Token{111: "t111", 222: "t222"}, tokens)
}

func TestBreakerIgnoresAPIErrors(t *testing.T) {
	var calls atomic.Int32
	f := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"type":"GraphMethodException","message":"nope","code":100}}`)
	})

	for i := 0; i < breakerFailureThreshold*2; i++ {
		_, err := f.FetchPageName(context.Background(), 111, "tok")
		require.Error(t, err)
	}
	assert.Equal(t, int32(breakerFailureThreshold*2), calls.Load())
}

func TestBreakerOpensOnServerErrors(t *testing.T) {
	var calls atomic.Int32
	f := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	for i := 0; i < breakerFailureThreshold*2; i++ {
		_, err := f.FetchPageName(context.Background(), 111, "tok")
		require.Error(t, err)
		assert.True(t, errors.Is(err, facebook.ErrPlatform))
	}
	assert.Equal(t, int32(breakerFailureThreshold), calls.Load())
}
