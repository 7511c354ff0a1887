package page

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/orgball2608/fb-repost-bot/internal/cache"
	"github.com/orgball2608/fb-repost-bot/internal/domain"
	"github.com/orgball2608/fb-repost-bot/internal/eventbus"
	"github.com/orgball2608/fb-repost-bot/internal/facebook"
	mock_facebook "github.com/orgball2608/fb-repost-bot/internal/facebook/mocks"
	"github.com/orgball2608/fb-repost-bot/internal/metrics"
	"github.com/orgball2608/fb-repost-bot/pkg/logger"
	"github.com/orgball2608/fb-repost-bot/pkg/paths"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	sourceID = int64(111)
	targetID = int64(222)
)

type fixture struct {
	client *mock_facebook.MockClient
	paths  *paths.Paths
	store  cache.Store
	bus    *eventbus.Bus
	source *SourcePage
	target *TargetPage

	mu       sync.Mutex
	outgoing []domain.TargetRecord
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	root := t.TempDir()
	p := paths.New(filepath.Join(root, "data"), filepath.Join(root, "public"), "https://cdn.example.com", "")
	f := &fixture{
		client: mock_facebook.NewMockClient(gomock.NewController(t)),
		paths:  p,
		store:  cache.NewFileStore(p),
		bus:    eventbus.New(logger.NewNop()),
	}

	f.source = NewSourcePage(SourceOpts{
		Page:   domain.Page{ID: sourceID, Username: "source", CheckInterval: 300},
		Client: f.client,
		Token:  "main",
		Store:  f.store,
		Paths:  p,
		Bus:    f.bus,
		Logger: logger.NewNop(),
	})
	f.target = NewTargetPage(TargetOpts{
		Page:    domain.Page{ID: targetID, Username: "target", CheckInterval: 300},
		Sources: []int64{sourceID},
		Client:  f.client,
		Token:   "page-222",
		Store:   f.store,
		Paths:   p,
		Bus:     f.bus,
		Logger:  logger.NewNop(),
	})
	f.target.Subscribe(f.bus)
	f.bus.Outgoing.Subscribe("test", func(_ context.Context, rec domain.TargetRecord) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.outgoing = append(f.outgoing, rec)
	})

	return f
}

func (f *fixture) expectPhotoDownload(objectID int64) {
	url := "https://scontent.example.com/photo.jpg"
	f.client.EXPECT().FetchAttachmentSource(gomock.Any(), objectID, facebook.Token("main")).Return(url, nil)
	f.client.EXPECT().Download(gomock.Any(), url).DoAndReturn(func(context.Context, string) (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader("jpeg")), nil
	})
}

func TestPollCycleRelaysPhotoOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.client.EXPECT().FetchFeed(gomock.Any(), sourceID, 10, facebook.Token("main")).
		Return([]domain.Post{{ID: "p1"}, {ID: "p2"}}, nil)
	f.client.EXPECT().FetchPostDetails(gomock.Any(), "p1", facebook.Token("main")).
		Return(facebook.PostDetails{Type: domain.PostTypePhoto, Message: "look", ObjectID: 555}, nil)
	f.client.EXPECT().FetchPostDetails(gomock.Any(), "p2", facebook.Token("main")).
		Return(facebook.PostDetails{Type: domain.PostTypeStatus, Message: "hi"}, nil)
	f.expectPhotoDownload(555)
	f.client.EXPECT().
		PublishPhoto(gomock.Any(), targetID, "https://cdn.example.com/555.jpg", "look", facebook.Token("page-222")).
		Return("222_1", nil).
		Times(1)

	stats, err := f.source.Check(ctx)
	require.NoError(t, err)
	assert.Equal(t, CycleStats{Fetched: 2, Cached: 2}, stats)

	sourceCache := cache.NewPageCache(f.store, sourceID)
	for _, id := range []string{"p1", "p2"} {
		rec, err := sourceCache.Get(ctx, id)
		require.NoError(t, err)
		src, ok := rec.(domain.SourceRecord)
		require.True(t, ok, id)
		assert.Equal(t, sourceID, src.SourcePageID)
	}

	targetCache := cache.NewPageCache(f.store, targetID)
	rec, err := targetCache.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, domain.TargetRecord{
		Post:         domain.Post{ID: "p1", Type: domain.PostTypePhoto, Message: "look", ObjectID: 555, DetailsFetched: true},
		TargetPageID: targetID,
		Published:    true,
	}, rec)

	ok, err := targetCache.Contains(ctx, "p2")
	require.NoError(t, err)
	assert.False(t, ok)

	data, err := os.ReadFile(f.paths.PublicFile("555.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(data))

	require.Len(t, f.outgoing, 1)
	assert.Equal(t, "p1", f.outgoing[0].PostID())
}

func TestSecondCycleSkipsCachedPosts(t *testing.T) {
	f := newFixture(t)

	f.client.EXPECT().FetchFeed(gomock.Any(), sourceID, gomock.Any(), gomock.Any()).
		Return([]domain.Post{{ID: "p2"}}, nil).
		Times(2)
	f.client.EXPECT().FetchPostDetails(gomock.Any(), "p2", gomock.Any()).
		Return(facebook.PostDetails{Type: domain.PostTypeStatus}, nil).
		Times(1)

	_, err := f.source.Check(context.Background())
	require.NoError(t, err)

	stats, err := f.source.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, CycleStats{Fetched: 1, Skipped: 1}, stats)
}

func TestFailedAttachmentIsRetriedNextCycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.client.EXPECT().FetchFeed(gomock.Any(), sourceID, gomock.Any(), gomock.Any()).
		Return([]domain.Post{{ID: "p1"}}, nil).
		Times(2)
	f.client.EXPECT().FetchPostDetails(gomock.Any(), "p1", gomock.Any()).
		Return(facebook.PostDetails{Type: domain.PostTypePhoto, ObjectID: 555}, nil).
		Times(2)

	gomock.InOrder(
		f.client.EXPECT().FetchAttachmentSource(gomock.Any(), int64(555), gomock.Any()).
			Return("", &facebook.Error{Type: "GraphMethodException", Message: "temporarily unavailable"}),
		f.client.EXPECT().FetchAttachmentSource(gomock.Any(), int64(555), gomock.Any()).
			Return("https://scontent.example.com/photo.jpg", nil),
	)
	f.client.EXPECT().Download(gomock.Any(), gomock.Any()).
		Return(io.NopCloser(strings.NewReader("jpeg")), nil)
	f.client.EXPECT().PublishPhoto(gomock.Any(), targetID, gomock.Any(), gomock.Any(), gomock.Any()).
		Return("222_1", nil)

	stats, err := f.source.Check(ctx)
	require.NoError(t, err)
	assert.Equal(t, CycleStats{Fetched: 1, Failed: 1}, stats)

	ok, err := cache.NewPageCache(f.store, sourceID).Contains(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, ok)

	stats, err = f.source.Check(ctx)
	require.NoError(t, err)
	assert.Equal(t, CycleStats{Fetched: 1, Cached: 1}, stats)
}

func TestPostFailureDoesNotStopBatch(t *testing.T) {
	f := newFixture(t)

	f.client.EXPECT().FetchFeed(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]domain.Post{{ID: "p1"}, {ID: "p2"}}, nil)
	f.client.EXPECT().FetchPostDetails(gomock.Any(), "p1", gomock.Any()).
		Return(facebook.PostDetails{}, &facebook.Error{Type: "OAuthException", Message: "nope"})
	f.client.EXPECT().FetchPostDetails(gomock.Any(), "p2", gomock.Any()).
		Return(facebook.PostDetails{Type: domain.PostTypeLink, Message: "url"}, nil)

	stats, err := f.source.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, CycleStats{Fetched: 2, Cached: 1, Failed: 1}, stats)
}

func TestFeedFailureIsReturned(t *testing.T) {
	f := newFixture(t)

	f.client.EXPECT().FetchFeed(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, &facebook.Error{Type: "OAuthException", Message: "Session has expired"})

	_, err := f.source.Check(context.Background())
	assert.True(t, facebook.IsTokenExpired(err))
}

func TestOverlappingCheckIsSkipped(t *testing.T) {
	f := newFixture(t)

	entered := make(chan struct{})
	release := make(chan struct{})
	f.client.EXPECT().FetchFeed(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, int64, int, facebook.Token) ([]domain.Post, error) {
			close(entered)
			<-release
			return nil, nil
		}).
		Times(1)

	done := make(chan error, 1)
	go func() {
		_, err := f.source.Check(context.Background())
		done <- err
	}()

	<-entered
	skipped := metrics.PollsTotal.WithLabelValues(metrics.PageLabel(sourceID), metrics.ResultSkipped)
	before := testutil.ToFloat64(skipped)
	_, err := f.source.Check(context.Background())
	assert.ErrorIs(t, err, ErrCheckInProgress)
	assert.Equal(t, before+1, testutil.ToFloat64(skipped))

	close(release)
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("first check did not finish")
	}
}

func TestTargetSkipsAlreadyPublished(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	post := domain.Post{ID: "p1", Type: domain.PostTypePhoto, ObjectID: 555, DetailsFetched: true}
	_, err := cache.NewPageCache(f.store, targetID).AddTarget(ctx, post, true)
	require.NoError(t, err)

	// No PublishPhoto expectation: any call fails the test.
	f.target.HandleIncoming(ctx, domain.SourceRecord{Post: post, SourcePageID: sourceID})
	assert.Empty(t, f.outgoing)
}

func TestTargetRepublishesOverUnreadableCacheEntry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.Put(ctx, paths.PageNamespace(targetID), "p1",
		[]byte(`{"id":"p1","type":"CAROUSEL","sourcePageId":111,"targetPageId":222,"published":true}`)))

	f.client.EXPECT().PublishPhoto(gomock.Any(), targetID, gomock.Any(), gomock.Any(), facebook.Token("page-222")).
		Return("222_1", nil)

	post := domain.Post{ID: "p1", Type: domain.PostTypePhoto, ObjectID: 555, DetailsFetched: true}
	f.target.HandleIncoming(ctx, domain.SourceRecord{Post: post, SourcePageID: sourceID})

	require.Len(t, f.outgoing, 1)
	got, err := cache.NewPageCache(f.store, targetID).Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, domain.TargetRecord{Post: post, TargetPageID: targetID, Published: true}, got)
}

func TestTargetPublishesOnceForRepeatedNotifications(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.client.EXPECT().PublishPhoto(gomock.Any(), targetID, gomock.Any(), gomock.Any(), gomock.Any()).
		Return("222_1", nil).
		Times(1)

	rec := domain.SourceRecord{
		Post:         domain.Post{ID: "p1", Type: domain.PostTypePhoto, ObjectID: 555, DetailsFetched: true},
		SourcePageID: sourceID,
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.target.HandleIncoming(ctx, rec)
		}()
	}
	wg.Wait()

	assert.Len(t, f.outgoing, 1)
}

func TestTargetIgnoresUnknownSource(t *testing.T) {
	f := newFixture(t)

	f.target.HandleIncoming(context.Background(), domain.SourceRecord{
		Post:         domain.Post{ID: "p9", Type: domain.PostTypePhoto, ObjectID: 1},
		SourcePageID: 999,
	})

	ok, err := cache.NewPageCache(f.store, targetID).Contains(context.Background(), "p9")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTargetDropsFailedPublish(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.client.EXPECT().PublishPhoto(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return("", errors.New("connection reset"))

	rec := domain.SourceRecord{Post: domain.Post{ID: "p1", Type: domain.PostTypePhoto, ObjectID: 555}, SourcePageID: sourceID}
	f.target.HandleIncoming(ctx, rec)

	ok, err := cache.NewPageCache(f.store, targetID).Contains(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, f.outgoing)
}

func TestRegistry(t *testing.T) {
	f := newFixture(t)
	r := NewRegistry()

	assert.True(t, r.AddSource(f.source))
	assert.False(t, r.AddSource(f.source))
	assert.True(t, r.AddTarget(f.target))
	assert.False(t, r.AddTarget(f.target))

	assert.True(t, r.ContainsSource(sourceID))
	assert.False(t, r.ContainsSource(targetID))
	assert.True(t, r.ContainsTarget(targetID))
	assert.False(t, r.ContainsTarget(sourceID))

	other := NewSourcePage(SourceOpts{
		Page:   domain.Page{ID: 333, Username: "other"},
		Client: f.client,
		Store:  f.store,
		Paths:  f.paths,
		Bus:    f.bus,
		Logger: logger.NewNop(),
	})
	r.AddSource(other)

	ids := []int64{}
	for _, p := range r.SourcePages() {
		ids = append(ids, p.ID())
	}
	assert.Equal(t, []int64{sourceID, 333}, ids)
	assert.Len(t, r.TargetPages(), 1)

	got, ok := r.Source(333)
	require.True(t, ok)
	assert.Same(t, other, got)
}

func TestDescriptorLoadOrCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	store := NewDescriptorStore(f.paths, f.client, 5*time.Minute, logger.NewNop())

	f.client.EXPECT().FetchPageName(gomock.Any(), int64(444), facebook.Token("main")).
		Return("News Page", nil).
		Times(1)

	created, err := store.LoadOrCreate(ctx, 444, "main")
	require.NoError(t, err)
	assert.Equal(t, domain.Page{ID: 444, Username: "News Page", CheckInterval: 300}, created)

	loaded, err := store.LoadOrCreate(ctx, 444, "main")
	require.NoError(t, err)
	assert.Equal(t, created, loaded)

	data, err := os.ReadFile(f.paths.PageFile(444))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"checkInterval": 300`)
}

func TestDescriptorRejectsMismatchedID(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, cache.WriteFileAtomic(f.paths.PageFile(555), []byte(`{"id":556,"username":"x","checkInterval":60}`)))

	store := NewDescriptorStore(f.paths, f.client, time.Minute, logger.NewNop())
	_, err := store.LoadOrCreate(context.Background(), 555, "main")
	assert.Error(t, err)
}
