package scrape

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadscout/internal/resilience"
	"github.com/sells-group/leadscout/pkg/firecrawl"
)

func newFirecrawlScraper(t *testing.T, handler http.HandlerFunc) *FirecrawlScraper {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	s := NewFirecrawl(firecrawl.NewClient("fc-test-key", firecrawl.WithBaseURL(srv.URL)), 3)
	s.retry.InitialBackoff = time.Millisecond
	s.retry.MaxBackoff = 5 * time.Millisecond
	return s
}

func TestFirecrawlScrape(t *testing.T) {
	s := newFirecrawlScraper(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/scrape", r.URL.Path)

		var req firecrawl.ScrapeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.OnlyMainContent)

		json.NewEncoder(w).Encode(firecrawl.ScrapeResponse{
			Success: true,
			Data: firecrawl.PageData{
				Markdown: "# Acme\nWidgets for everyone.",
				Metadata: firecrawl.Metadata{Title: "Acme"},
			},
		})
	})

	res, err := s.Scrape(context.Background(), "https://acme.example")
	require.NoError(t, err)
	assert.Equal(t, "https://acme.example", res.URL)
	assert.Equal(t, "Acme", res.Title)
	assert.Contains(t, res.Markdown, "Widgets")
}

func TestFirecrawlScrapeRetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	s := newFirecrawlScraper(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"rate limited"}`))
			return
		}
		json.NewEncoder(w).Encode(firecrawl.ScrapeResponse{
			Success: true,
			Data:    firecrawl.PageData{Markdown: "# Recovered"},
		})
	})

	res, err := s.Scrape(context.Background(), "https://acme.example")
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.Contains(t, res.Markdown, "Recovered")
}

func TestFirecrawlScrapeDoesNotRetryAuthError(t *testing.T) {
	var calls atomic.Int32
	s := newFirecrawlScraper(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"Unauthorized"}`))
	})

	_, err := s.Scrape(context.Background(), "https://acme.example")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load(), "permanent failures are not retried")
	assert.False(t, resilience.IsTransient(err))
}

func TestFirecrawlScrapeFailureYieldsNoContent(t *testing.T) {
	tests := []struct {
		name string
		resp firecrawl.ScrapeResponse
	}{
		{"unsuccessful", firecrawl.ScrapeResponse{Success: false, Error: "blocked"}},
		{"empty content", firecrawl.ScrapeResponse{Success: true, Data: firecrawl.PageData{Markdown: "  \n"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newFirecrawlScraper(t, func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(tt.resp)
			})

			res, err := s.Scrape(context.Background(), "https://acme.example")
			require.Error(t, err)
			assert.Nil(t, res, "no fabricated content on failure")
		})
	}
}

func TestOfflineScrapeDeterministic(t *testing.T) {
	s := NewOffline()
	ctx := context.Background()

	first, err := s.Scrape(ctx, "https://acme.example")
	require.NoError(t, err)
	second, err := s.Scrape(ctx, "https://acme.example")
	require.NoError(t, err)
	assert.Equal(t, first, second, "same URL yields identical content")

	other, err := s.Scrape(ctx, "https://other.example")
	require.NoError(t, err)
	assert.NotEqual(t, first.Markdown, other.Markdown)
}

func TestOfflineScrapeShape(t *testing.T) {
	s := NewOffline()

	res, err := s.Scrape(context.Background(), "https://acme.example")
	require.NoError(t, err)
	assert.Contains(t, res.Markdown, "# "+MockCompanyName("https://acme.example"))
	assert.Contains(t, res.Markdown, "## About Us")
	assert.Contains(t, res.Markdown, "https://acme.example")
	assert.NotEmpty(t, res.Title)
}

func TestURLHashStable(t *testing.T) {
	assert.Equal(t, URLHash("https://acme.example"), URLHash("https://acme.example"))
	assert.NotEqual(t, URLHash("https://a.example"), URLHash("https://b.example"))
}
