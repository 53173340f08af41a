package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/AEBus/ffxiv-venues-dalamud/internal/config"
	"github.com/AEBus/ffxiv-venues-dalamud/internal/model"
)

// VenueFetcher defines the contract for retrieving catalogue data.
// This interface allows for mocking in tests and decoupling from the
// network layer.
type VenueFetcher interface {
	// FetchVenues downloads and decodes the approved venue list.
	FetchVenues(ctx context.Context) ([]model.Venue, error)

	// FetchBytes retrieves raw banner bytes for a key: either an absolute
	// URI or a path relative to the catalogue base URL.
	FetchBytes(ctx context.Context, key string) ([]byte, error)
}

// HTTPFetcher implements VenueFetcher using the standard net/http library.
type HTTPFetcher struct {
	Client  *http.Client
	BaseURL string

	// Token, when non-empty, is sent as a bearer token on every request.
	Token string
}

// NewHTTPFetcher creates a new instance of HTTPFetcher with configured
// timeouts against the given catalogue base URL.
func NewHTTPFetcher(baseURL string) *HTTPFetcher {
	return &HTTPFetcher{
		Client: &http.Client{
			Timeout: config.HTTPTimeout,
		},
		BaseURL: baseURL,
	}
}

// Configure swaps the base URL and bearer token at runtime, after a
// settings change.
func (f *HTTPFetcher) Configure(baseURL, token string) {
	f.BaseURL = baseURL
	f.Token = token
}

// FetchVenues downloads the approved venue list from the catalogue.
func (f *HTTPFetcher) FetchVenues(ctx context.Context) ([]model.Venue, error) {
	data, err := f.get(ctx, config.VenueListPath, config.MimeJSON)
	if err != nil {
		return nil, err
	}

	venues, err := model.DecodeVenues(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrVenueDecode, err)
	}
	return venues, nil
}

// FetchBytes retrieves raw image bytes for a banner key.
func (f *HTTPFetcher) FetchBytes(ctx context.Context, key string) ([]byte, error) {
	return f.get(ctx, key, "")
}

// get resolves a key against the base URL, validates the scheme, and
// returns the response body capped at MaxHTTPResponseSize.
func (f *HTTPFetcher) get(ctx context.Context, key, accept string) ([]byte, error) {
	target, err := f.resolveURL(key)
	if err != nil {
		return nil, err
	}

	// Strip query parameters from the logged URL; they may carry tokens.
	safeURL := target.Scheme + "://" + target.Host + target.Path
	log := slog.With(
		slog.String(config.LogKeyComponent, config.CompFetcher),
		slog.String(config.LogKeyURL, safeURL),
	)

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set(config.HeaderUserAgent, config.UserAgent)
	if accept != "" {
		req.Header.Set(config.HeaderAccept, accept)
	}
	if f.Token != "" {
		req.Header.Set(config.HeaderAuthorization, config.BearerPrefix+f.Token)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("network error during fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		log.Warn(config.ErrFetchStatus,
			slog.Int(config.LogKeyStatus, resp.StatusCode),
		)
		return nil, fmt.Errorf("%s: %d %s", config.ErrFetchStatus, resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, config.MaxHTTPResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	log.Debug(config.MsgFetchingVenues,
		slog.Int(config.LogKeySizeBytes, len(body)),
		slog.Int64(config.LogKeyDuration, time.Since(start).Milliseconds()),
	)
	return body, nil
}

// resolveURL joins relative keys to the base URL; absolute URIs pass
// through untouched. Only HTTP and HTTPS are accepted.
func (f *HTTPFetcher) resolveURL(key string) (*url.URL, error) {
	trimmed := strings.TrimSpace(key)

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrInvalidURL, err)
	}

	if !parsed.IsAbs() {
		if strings.TrimSpace(f.BaseURL) == "" {
			return nil, fmt.Errorf("%s", config.ErrBaseURLEmpty)
		}
		base, err := url.Parse(f.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", config.ErrInvalidURL, err)
		}
		parsed = base.ResolveReference(parsed)
	}

	if parsed.Scheme != config.SchemeHTTP && parsed.Scheme != config.SchemeHTTPS {
		return nil, fmt.Errorf("%s: %s", config.ErrProtocol, parsed.Scheme)
	}
	return parsed, nil
}
