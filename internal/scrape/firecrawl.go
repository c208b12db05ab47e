package scrape

import (
	"context"
	"errors"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadscout/internal/resilience"
	"github.com/sells-group/leadscout/pkg/firecrawl"
)

// FirecrawlScraper adapts the Firecrawl client, retrying transient
// failures.
type FirecrawlScraper struct {
	client firecrawl.Client
	retry  resilience.RetryConfig
}

// NewFirecrawl returns a scraper backed by the given Firecrawl client.
func NewFirecrawl(client firecrawl.Client, maxRetries int) *FirecrawlScraper {
	cfg := resilience.DefaultRetryConfig()
	if maxRetries > 0 {
		cfg.MaxAttempts = maxRetries
	}
	cfg.OnRetry = resilience.RetryLogger("firecrawl", "scrape")
	return &FirecrawlScraper{client: client, retry: cfg}
}

func (s *FirecrawlScraper) Name() string {
	return "firecrawl"
}

// Scrape fetches the page's main content as markdown. An unsuccessful
// response or empty content is an error; callers never receive content
// that was not actually fetched.
func (s *FirecrawlScraper) Scrape(ctx context.Context, url string) (*Result, error) {
	resp, err := resilience.DoVal(ctx, s.retry, func(ctx context.Context) (*firecrawl.ScrapeResponse, error) {
		resp, err := s.client.Scrape(ctx, firecrawl.ScrapeRequest{
			URL:             url,
			Formats:         []string{"markdown"},
			OnlyMainContent: true,
		})
		if err != nil {
			return nil, classifyFirecrawlError(err)
		}
		return resp, nil
	})
	if err != nil {
		return nil, eris.Wrapf(err, "scrape: fetch %s", url)
	}

	if !resp.Success {
		msg := resp.Error
		if msg == "" {
			msg = "provider reported failure"
		}
		return nil, eris.Errorf("scrape: %s: %s", url, msg)
	}
	markdown := strings.TrimSpace(resp.Data.Markdown)
	if markdown == "" {
		return nil, eris.Errorf("scrape: %s returned no content", url)
	}

	return &Result{
		URL:      url,
		Markdown: markdown,
		Title:    resp.Data.Metadata.Title,
	}, nil
}

func classifyFirecrawlError(err error) error {
	var apiErr *firecrawl.APIError
	if errors.As(err, &apiErr) && resilience.IsTransientHTTPStatus(apiErr.StatusCode) {
		return resilience.NewTransientError(err, apiErr.StatusCode)
	}
	if resilience.IsTimeout(err) {
		return resilience.NewTransientError(err, 0)
	}
	return err
}
