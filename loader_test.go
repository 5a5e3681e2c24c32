package tcaws_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/tcaws"
)

type SpyFetcher struct {
	mock.Mock
}

func (s *SpyFetcher) Fetch(ctx context.Context, url string) (tcaws.Object, error) {
	args := s.Called(ctx, url)
	return args.Get(0).(tcaws.Object), args.Error(1)
}

func newTestLoader(t *testing.T, cfg tcaws.LoaderConfig, store tcaws.ObjectStore, fetcher tcaws.Fetcher) *tcaws.Loader {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	return tcaws.NewLoader(cfg, newTestAdapter(t, store), fetcher, logger)
}

func TestLoader_Locate(t *testing.T) {
	cfg := tcaws.LoaderConfig{
		AllowedBuckets:   []string{"photos"},
		DefaultBucket:    "fallback",
		RootPath:         "assets",
		EnableHTTPLoader: true,
	}
	loader := newTestLoader(t, cfg, new(SpyObjectStore), nil)

	loc, useHTTP := loader.Locate("/photos/a.jpg")
	assert.False(t, useHTTP)
	assert.Equal(t, tcaws.Location{Bucket: "photos", Key: "assets/a.jpg"}, loc)

	loc, useHTTP = loader.Locate("https://example.com/a.jpg")
	assert.True(t, useHTTP)
	assert.Equal(t, tcaws.Location{}, loc)
}

func TestLoader_Load(t *testing.T) {
	ctx := context.Background()
	cfg := tcaws.LoaderConfig{
		AllowedBuckets: []string{"photos"},
		DefaultBucket:  "fallback",
	}

	t.Run("allowed bucket", func(t *testing.T) {
		store := new(SpyObjectStore)
		obj := tcaws.Object{Bucket: "photos", Key: "a/b.jpg", Body: []byte("jpeg")}
		store.On("GetObject", ctx, "photos", "a/b.jpg").Return(obj, nil)

		loaded, err := newTestLoader(t, cfg, store, nil).Load(ctx, "/photos/a/b.jpg").Wait(ctx)
		require.NoError(t, err)
		assert.Equal(t, tcaws.SourceStore, loaded.Source)
		assert.Equal(t, tcaws.Location{Bucket: "photos", Key: "a/b.jpg"}, loaded.Location)
		assert.Equal(t, obj, loaded.Object)
		assert.Empty(t, loaded.URL)
	})

	t.Run("fallback bucket keeps the segment", func(t *testing.T) {
		store := new(SpyObjectStore)
		store.On("GetObject", ctx, "fallback", "other/a/b.jpg").Return(tcaws.Object{}, nil)

		loaded, err := newTestLoader(t, cfg, store, nil).Load(ctx, "/other/a/b.jpg").Wait(ctx)
		require.NoError(t, err)
		assert.Equal(t, "fallback", loaded.Location.Bucket)
		store.AssertExpectations(t)
	})

	t.Run("missing key", func(t *testing.T) {
		store := new(SpyObjectStore)
		store.On("GetObject", ctx, "photos", "missing.jpg").Return(tcaws.Object{}, tcaws.ErrNotFound)

		_, err := newTestLoader(t, cfg, store, nil).Load(ctx, "/photos/missing.jpg").Wait(ctx)
		assert.ErrorIs(t, err, tcaws.ErrNotFound)
		assert.Contains(t, err.Error(), "/photos/missing.jpg")
	})

	t.Run("http loader", func(t *testing.T) {
		httpCfg := cfg
		httpCfg.EnableHTTPLoader = true

		store := new(SpyObjectStore)
		fetcher := new(SpyFetcher)
		obj := tcaws.Object{Key: "https://example.com/a.png", Body: []byte("png")}
		fetcher.On("Fetch", ctx, "https://example.com/a.png").Return(obj, nil)

		loaded, err := newTestLoader(t, httpCfg, store, fetcher).Load(ctx, "https://example.com/a.png").Wait(ctx)
		require.NoError(t, err)
		assert.Equal(t, tcaws.SourceHTTP, loaded.Source)
		assert.Equal(t, "https://example.com/a.png", loaded.URL)
		assert.Equal(t, obj, loaded.Object)
		store.AssertNotCalled(t, "GetObject", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("http loader error", func(t *testing.T) {
		httpCfg := cfg
		httpCfg.EnableHTTPLoader = true

		fetcher := new(SpyFetcher)
		fetcher.On("Fetch", ctx, "http://example.com/x").Return(tcaws.Object{}, tcaws.ErrNetwork)

		_, err := newTestLoader(t, httpCfg, new(SpyObjectStore), fetcher).Load(ctx, "http://example.com/x").Wait(ctx)
		assert.ErrorIs(t, err, tcaws.ErrNetwork)
	})

	t.Run("http loader without fetcher", func(t *testing.T) {
		httpCfg := cfg
		httpCfg.EnableHTTPLoader = true

		_, err := newTestLoader(t, httpCfg, new(SpyObjectStore), nil).Load(ctx, "http://example.com/x").Wait(ctx)
		assert.ErrorIs(t, err, tcaws.ErrUnsupported)
	})

	t.Run("http urls go to the store when disabled", func(t *testing.T) {
		store := new(SpyObjectStore)
		store.On("GetObject", ctx, "fallback", "http:/example.com/x").Return(tcaws.Object{}, tcaws.ErrNotFound)

		_, err := newTestLoader(t, cfg, store, new(SpyFetcher)).Load(ctx, "http://example.com/x").Wait(ctx)
		assert.ErrorIs(t, err, tcaws.ErrNotFound)
		store.AssertExpectations(t)
	})
}
