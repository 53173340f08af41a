package engine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AEBus/ffxiv-venues-dalamud/internal/model"
)

// stubHandle counts Close calls so ownership rules can be asserted.
type stubHandle struct {
	label  string
	closed int32
}

func (h *stubHandle) Close() error {
	atomic.AddInt32(&h.closed, 1)
	return nil
}

func stubDecode(data []byte, label string) (ImageHandle, error) {
	return &stubHandle{label: label}, nil
}

func waitForUpdate(t *testing.T, updates <-chan struct{}) {
	t.Helper()
	select {
	case <-updates:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a cache update")
	}
}

func TestBannerKey(t *testing.T) {
	withURI := model.Venue{ID: "v1", BannerURI: "https://cdn.example.com/banner.png"}
	assert.Equal(t, "https://cdn.example.com/banner.png", BannerKey(withURI))

	withoutURI := model.Venue{ID: "v1"}
	assert.Equal(t, "venue/v1/media", BannerKey(withoutURI))
}

func TestBannerCachePlaceholder(t *testing.T) {
	t.Run("Built-in fallback always decodes", func(t *testing.T) {
		cache := NewBannerCache(nil, stubDecode, BannerCacheOptions{})
		defer func() { _ = cache.Close() }()

		require.NotNil(t, cache.Placeholder())
	})

	t.Run("Embedded bytes take priority over the fallback", func(t *testing.T) {
		cache := NewBannerCache(nil, stubDecode, BannerCacheOptions{
			EmbeddedPlaceholder: []byte("png-bytes"),
		})
		defer func() { _ = cache.Close() }()

		handle, ok := cache.Placeholder().(*stubHandle)
		require.True(t, ok)
		assert.Equal(t, "placeholder:embedded", handle.label)
	})

	t.Run("Construction survives a decoder that always fails", func(t *testing.T) {
		failing := func([]byte, string) (ImageHandle, error) {
			return nil, errors.New("bad image data")
		}
		cache := NewBannerCache(nil, failing, BannerCacheOptions{})
		defer func() { _ = cache.Close() }()

		assert.Nil(t, cache.Placeholder())
	})
}

func TestGetOrFetchDeduplicates(t *testing.T) {
	var fetchCount int32
	gate := make(chan struct{})
	updates := make(chan struct{}, 1)

	fetch := func(ctx context.Context, key string) ([]byte, error) {
		atomic.AddInt32(&fetchCount, 1)
		<-gate
		return []byte("image-bytes"), nil
	}

	cache := NewBannerCache(fetch, stubDecode, BannerCacheOptions{
		OnUpdate: func() { updates <- struct{}{} },
	})
	defer func() { _ = cache.Close() }()

	// Hammer the same key (in varying casing) while the fetch is blocked.
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		key := "venue/v1/media"
		if i%2 == 0 {
			key = "Venue/V1/Media"
		}
		go func(k string) {
			defer wg.Done()
			handle := cache.GetOrFetch(context.Background(), k)
			assert.Equal(t, cache.Placeholder(), handle,
				"callers see the placeholder while the fetch is in flight")
		}(key)
	}
	wg.Wait()

	close(gate)
	waitForUpdate(t, updates)

	resolved := cache.GetOrFetch(context.Background(), "venue/v1/media")
	require.IsType(t, &stubHandle{}, resolved)
	assert.True(t, strings.HasPrefix(resolved.(*stubHandle).label, "banner:"))
	assert.NotEqual(t, cache.Placeholder(), resolved)

	assert.EqualValues(t, 1, atomic.LoadInt32(&fetchCount),
		"exactly one fetch per key regardless of concurrency and casing")
}

func TestGetOrFetchFailureIsTerminal(t *testing.T) {
	var fetchCount int32
	updates := make(chan struct{}, 1)

	fetch := func(ctx context.Context, key string) ([]byte, error) {
		atomic.AddInt32(&fetchCount, 1)
		return nil, errors.New("503 service unavailable")
	}

	cache := NewBannerCache(fetch, stubDecode, BannerCacheOptions{
		OnUpdate: func() { updates <- struct{}{} },
	})
	defer func() { _ = cache.Close() }()

	_ = cache.GetOrFetch(context.Background(), "venue/v1/media")
	waitForUpdate(t, updates)

	for i := 0; i < 5; i++ {
		assert.Nil(t, cache.GetOrFetch(context.Background(), "venue/v1/media"),
			"a failed key permanently resolves to no image")
	}
	assert.EqualValues(t, 1, atomic.LoadInt32(&fetchCount), "failures are never retried")
}

func TestGetOrFetchDecodeFailureIsTerminal(t *testing.T) {
	updates := make(chan struct{}, 1)
	decoded := int32(0)

	fetch := func(ctx context.Context, key string) ([]byte, error) {
		return []byte("not-an-image"), nil
	}
	decode := func(data []byte, label string) (ImageHandle, error) {
		if strings.HasPrefix(label, "banner:") {
			atomic.AddInt32(&decoded, 1)
			return nil, errors.New("unsupported format")
		}
		return stubDecode(data, label)
	}

	cache := NewBannerCache(fetch, decode, BannerCacheOptions{
		OnUpdate: func() { updates <- struct{}{} },
	})
	defer func() { _ = cache.Close() }()

	_ = cache.GetOrFetch(context.Background(), "venue/v1/media")
	waitForUpdate(t, updates)

	assert.Nil(t, cache.GetOrFetch(context.Background(), "venue/v1/media"))
	assert.EqualValues(t, 1, atomic.LoadInt32(&decoded))
}

func TestBannerCacheClose(t *testing.T) {
	updates := make(chan struct{}, 1)
	fetch := func(ctx context.Context, key string) ([]byte, error) {
		return []byte("image-bytes"), nil
	}

	cache := NewBannerCache(fetch, stubDecode, BannerCacheOptions{
		OnUpdate: func() { updates <- struct{}{} },
	})

	_ = cache.GetOrFetch(context.Background(), "venue/v1/media")
	waitForUpdate(t, updates)

	resolved := cache.GetOrFetch(context.Background(), "venue/v1/media").(*stubHandle)
	placeholder := cache.Placeholder().(*stubHandle)

	require.NoError(t, cache.Close())
	require.NoError(t, cache.Close(), "closing twice must be safe")

	assert.EqualValues(t, 1, atomic.LoadInt32(&resolved.closed), "resolved handles close exactly once")
	assert.EqualValues(t, 1, atomic.LoadInt32(&placeholder.closed), "the placeholder closes exactly once")
	assert.Nil(t, cache.GetOrFetch(context.Background(), "venue/v2/media"),
		"a closed cache serves nothing and starts no fetches")
}

func TestGetOrFetchDuringClose(t *testing.T) {
	fetch := func(ctx context.Context, key string) ([]byte, error) {
		return []byte("image-bytes"), nil
	}
	cache := NewBannerCache(fetch, stubDecode, BannerCacheOptions{})

	// Hammer reads while Close tears the cache down. The race detector
	// flags any placeholder access outside the lock.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = cache.GetOrFetch(context.Background(), "venue/v1/media")
				_ = cache.Placeholder()
			}
		}()
	}
	require.NoError(t, cache.Close())
	wg.Wait()

	assert.Nil(t, cache.Placeholder(), "after close the placeholder is gone")
}

func TestBannerCacheClear(t *testing.T) {
	updates := make(chan struct{}, 2)
	var fetchCount int32
	fetch := func(ctx context.Context, key string) ([]byte, error) {
		atomic.AddInt32(&fetchCount, 1)
		return []byte("image-bytes"), nil
	}

	cache := NewBannerCache(fetch, stubDecode, BannerCacheOptions{
		OnUpdate: func() { updates <- struct{}{} },
	})
	defer func() { _ = cache.Close() }()

	_ = cache.GetOrFetch(context.Background(), "venue/v1/media")
	waitForUpdate(t, updates)
	first := cache.GetOrFetch(context.Background(), "venue/v1/media").(*stubHandle)

	cache.Clear()
	assert.EqualValues(t, 1, atomic.LoadInt32(&first.closed), "clearing releases cached handles")

	_ = cache.GetOrFetch(context.Background(), "venue/v1/media")
	waitForUpdate(t, updates)
	assert.EqualValues(t, 2, atomic.LoadInt32(&fetchCount), "cleared keys fetch again")
}
