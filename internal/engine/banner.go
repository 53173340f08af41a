package engine

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/AEBus/ffxiv-venues-dalamud/internal/config"
	"github.com/AEBus/ffxiv-venues-dalamud/internal/model"
)

// fallbackLoadingImage is a 1x1 transparent PNG used when neither a
// placeholder file nor embedded placeholder bytes are available, so the
// cache can always be constructed.
var fallbackLoadingImage, _ = base64.StdEncoding.DecodeString(
	"iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mP8/w8AAgMBAp+N7WAAAAAASUVORK5CYII=")

// ImageHandle is a displayable, disposable image resource produced by the
// injected decode capability. The cache is its single owner and releases it
// exactly once.
type ImageHandle interface {
	io.Closer
}

// FetchFunc retrieves raw image bytes for a banner key.
type FetchFunc func(ctx context.Context, key string) ([]byte, error)

// DecodeFunc turns raw bytes into a displayable handle. The label is for
// debugging only.
type DecodeFunc func(data []byte, label string) (ImageHandle, error)

// BannerCache is a deduplicating asynchronous image cache. Repeated
// GetOrFetch calls for the same key trigger at most one underlying fetch;
// while that fetch is in flight callers receive a shared placeholder. A
// failed fetch or decode is terminal: the key permanently resolves to no
// image and is never retried.
type BannerCache struct {
	fetch  FetchFunc
	decode DecodeFunc

	// onUpdate, when set, is invoked after a background fetch settles so an
	// event-driven caller can redraw. Called without the lock held.
	onUpdate func()

	mu sync.Mutex
	// entries holds terminal results only; a nil handle marks a permanent
	// failure. inflight marks keys with an active background fetch.
	entries  map[string]ImageHandle
	inflight map[string]struct{}

	placeholder ImageHandle
	closed      bool
}

// BannerCacheOptions configures construction.
type BannerCacheOptions struct {
	// PlaceholderDirs lists directories probed for a loading.png placeholder,
	// in priority order. Typically the deployed asset directory.
	PlaceholderDirs []string

	// EmbeddedPlaceholder holds placeholder bytes bundled with the artifact,
	// used when no placeholder file exists on disk.
	EmbeddedPlaceholder []byte

	// OnUpdate is invoked after every background fetch completion.
	OnUpdate func()
}

// NewBannerCache constructs the cache and resolves the shared placeholder.
// Construction never fails for lack of a placeholder image: when no file,
// embedded resource, or even the built-in fallback decodes, the cache runs
// with no placeholder and GetOrFetch returns nil while fetches are pending.
func NewBannerCache(fetch FetchFunc, decode DecodeFunc, opts BannerCacheOptions) *BannerCache {
	c := &BannerCache{
		fetch:    fetch,
		decode:   decode,
		onUpdate: opts.OnUpdate,
		entries:  make(map[string]ImageHandle),
		inflight: make(map[string]struct{}),
	}
	c.placeholder = c.loadPlaceholder(opts)
	return c
}

// BannerKey derives the fetch key for a venue: the explicit banner URI when
// present, else the per-venue media path.
func BannerKey(v model.Venue) string {
	if strings.TrimSpace(v.BannerURI) != "" {
		return v.BannerURI
	}
	return fmt.Sprintf(config.BannerKeyFormat, v.ID)
}

// GetOrFetch returns the banner for a key: the resolved handle once a fetch
// succeeded, nil once a fetch permanently failed, and the shared placeholder
// while no terminal result exists yet. The first call for an unseen key
// starts exactly one background fetch; the call itself never blocks.
func (c *BannerCache) GetOrFetch(ctx context.Context, key string) ImageHandle {
	normalized := strings.ToLower(strings.TrimSpace(key))

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}

	if handle, ok := c.entries[normalized]; ok {
		c.mu.Unlock()
		return handle
	}

	if _, running := c.inflight[normalized]; !running {
		// Mark in-flight before releasing the lock so a concurrent caller
		// cannot start a second fetch for the same key.
		c.inflight[normalized] = struct{}{}
		go c.fetchBanner(ctx, key, normalized)
	}
	// Capture under the lock; Close nils the field concurrently.
	placeholder := c.placeholder
	c.mu.Unlock()

	return placeholder
}

// fetchBanner runs one background fetch to completion. There is no
// cancellation: once started it settles the key even if the caller has
// navigated away.
func (c *BannerCache) fetchBanner(ctx context.Context, key, normalized string) {
	log := slog.With(
		config.LogKeyComponent, config.CompBanner,
		config.LogKeyKey, key,
	)
	log.Debug(config.MsgBannerStart)

	var handle ImageHandle
	data, err := c.fetch(ctx, key)
	if err == nil {
		handle, err = c.decode(data, "banner:"+key)
		if err != nil {
			err = fmt.Errorf("%s: %w", config.ErrImageDecode, err)
		}
	} else {
		err = fmt.Errorf("%s: %w", config.ErrBannerFetch, err)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		if handle != nil {
			_ = handle.Close()
		}
		return
	}

	if err != nil {
		// Terminal failure entry; never retried.
		c.entries[normalized] = nil
	} else {
		if prior, ok := c.entries[normalized]; ok && prior != nil && prior != handle {
			_ = prior.Close()
		}
		c.entries[normalized] = handle
	}
	// Clearing the marker last guarantees no new fetch starts for a key
	// that already holds a terminal result.
	delete(c.inflight, normalized)
	c.mu.Unlock()

	if err != nil {
		log.Warn(config.MsgBannerFailed, config.LogKeyError, err)
	} else {
		log.Debug(config.MsgBannerDone, config.LogKeySizeBytes, len(data))
	}

	if c.onUpdate != nil {
		c.onUpdate()
	}
}

// Placeholder exposes the shared loading image, which may be nil when no
// placeholder source decoded.
func (c *BannerCache) Placeholder() ImageHandle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.placeholder
}

// Clear drops every cached entry, releasing resolved handles. In-flight
// fetches settle into the emptied map. Not wired to any UI control; it
// exists for tests and explicit recovery paths only.
func (c *BannerCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, handle := range c.entries {
		if handle != nil {
			_ = handle.Close()
		}
	}
	c.entries = make(map[string]ImageHandle)
}

// Close releases every owned handle including the placeholder, exactly
// once, and forbids further use.
func (c *BannerCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true

	for _, handle := range c.entries {
		if handle != nil {
			_ = handle.Close()
		}
	}
	c.entries = make(map[string]ImageHandle)
	c.inflight = make(map[string]struct{})

	if c.placeholder != nil {
		_ = c.placeholder.Close()
		c.placeholder = nil
	}

	slog.Debug(config.MsgCacheClosed, config.LogKeyComponent, config.CompBanner)
	return nil
}

// loadPlaceholder resolves the shared loading image from, in priority
// order: a loading.png in one of the configured directories, the embedded
// bytes, or the built-in fallback bitmap.
func (c *BannerCache) loadPlaceholder(opts BannerCacheOptions) ImageHandle {
	for _, dir := range opts.PlaceholderDirs {
		path := filepath.Join(dir, "loading.png")
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if handle, err := c.decode(data, "placeholder:"+path); err == nil {
			slog.Debug(config.MsgPlaceholder,
				config.LogKeyComponent, config.CompBanner,
				config.LogKeySource, path)
			return handle
		}
	}

	if len(opts.EmbeddedPlaceholder) > 0 {
		if handle, err := c.decode(opts.EmbeddedPlaceholder, "placeholder:embedded"); err == nil {
			slog.Debug(config.MsgPlaceholder,
				config.LogKeyComponent, config.CompBanner,
				config.LogKeySource, "embedded")
			return handle
		}
	}

	handle, err := c.decode(fallbackLoadingImage, "placeholder:fallback")
	if err != nil {
		slog.Warn(config.ErrImageDecode,
			config.LogKeyComponent, config.CompBanner,
			config.LogKeyError, err)
		return nil
	}
	return handle
}
