package engine

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AEBus/ffxiv-venues-dalamud/internal/config"
)

const venueListJSON = `[
	{
		"id": "v-rose",
		"name": "The Velvet Rose",
		"tags": ["Dance"],
		"sfw": true,
		"location": {"dataCenter": "Aether", "world": "Gilgamesh", "district": "Mist", "ward": 4, "plot": 2},
		"resolution": {"start": "2026-03-06T20:00:00Z", "end": "2026-03-06T23:00:00Z", "isNow": true, "isWithinWeek": true}
	}
]`

func TestFetchVenues(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		var gotPath, gotAccept, gotAuth string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path + "?" + r.URL.RawQuery
			gotAccept = r.Header.Get(config.HeaderAccept)
			gotAuth = r.Header.Get(config.HeaderAuthorization)
			w.Header().Set("Content-Type", config.MimeJSON)
			_, _ = w.Write([]byte(venueListJSON))
		}))
		defer server.Close()

		fetcher := NewHTTPFetcher(server.URL + "/v1/")
		fetcher.Token = "secret-token"

		venues, err := fetcher.FetchVenues(context.Background())

		require.NoError(t, err)
		require.Len(t, venues, 1)
		assert.Equal(t, "The Velvet Rose", venues[0].Name)
		assert.Equal(t, "/v1/venue?approved=true", gotPath)
		assert.Equal(t, config.MimeJSON, gotAccept)
		assert.Equal(t, "Bearer secret-token", gotAuth)

		require.NotNil(t, venues[0].Resolution)
		assert.True(t, venues[0].Resolution.IsNow)
		require.NotNil(t, venues[0].Resolution.IsWithinWeek)
		assert.True(t, *venues[0].Resolution.IsWithinWeek)
	})

	t.Run("No token means no authorization header", func(t *testing.T) {
		var sawAuth bool
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, sawAuth = r.Header[config.HeaderAuthorization]
			_, _ = w.Write([]byte("[]"))
		}))
		defer server.Close()

		fetcher := NewHTTPFetcher(server.URL + "/v1/")
		_, err := fetcher.FetchVenues(context.Background())

		require.NoError(t, err)
		assert.False(t, sawAuth)
	})

	t.Run("Server error status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "upstream exploded", http.StatusBadGateway)
		}))
		defer server.Close()

		fetcher := NewHTTPFetcher(server.URL + "/v1/")
		_, err := fetcher.FetchVenues(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "502")
	})

	t.Run("Malformed payload", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>definitely not json</html>"))
		}))
		defer server.Close()

		fetcher := NewHTTPFetcher(server.URL + "/v1/")
		_, err := fetcher.FetchVenues(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), config.ErrVenueDecode)
	})
}

func TestFetchBytes(t *testing.T) {
	t.Run("Relative key resolves against the base URL", func(t *testing.T) {
		var gotPath string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			_, _ = w.Write([]byte("binary-image-data"))
		}))
		defer server.Close()

		fetcher := NewHTTPFetcher(server.URL + "/v1/")
		data, err := fetcher.FetchBytes(context.Background(), "venue/v-rose/media")

		require.NoError(t, err)
		assert.Equal(t, []byte("binary-image-data"), data)
		assert.Equal(t, "/v1/venue/v-rose/media", gotPath)
	})

	t.Run("Absolute URI bypasses the base URL", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("cdn-image"))
		}))
		defer server.Close()

		fetcher := NewHTTPFetcher("https://unreachable.invalid/v1/")
		data, err := fetcher.FetchBytes(context.Background(), server.URL+"/banner.png")

		require.NoError(t, err)
		assert.Equal(t, []byte("cdn-image"), data)
	})
}

func TestResolveURL(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		key     string
		wantErr string
		wantURL string
	}{
		{
			name:    "Relative joins base",
			baseURL: "https://api.example.com/v1/",
			key:     "venue?approved=true",
			wantURL: "https://api.example.com/v1/venue?approved=true",
		},
		{
			name:    "Absolute passes through",
			baseURL: "https://api.example.com/v1/",
			key:     "https://cdn.example.com/banner.png",
			wantURL: "https://cdn.example.com/banner.png",
		},
		{
			name:    "Relative without base fails",
			baseURL: "",
			key:     "venue",
			wantErr: config.ErrBaseURLEmpty,
		},
		{
			name:    "Non-HTTP scheme is rejected",
			baseURL: "https://api.example.com/v1/",
			key:     "ftp://files.example.com/banner.png",
			wantErr: config.ErrProtocol,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := &HTTPFetcher{BaseURL: tt.baseURL}
			resolved, err := fetcher.resolveURL(tt.key)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantURL, resolved.String())
		})
	}
}
