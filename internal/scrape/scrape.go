// Package scrape fetches website content for analysis, via the Firecrawl
// API or a deterministic offline substitute.
package scrape

import "context"

// Result is the scraped page content handed to the completion step.
type Result struct {
	URL      string
	Markdown string
	Title    string
}

// Scraper fetches a page as markdown. Implementations return an error
// rather than partial or fabricated content when the fetch fails.
type Scraper interface {
	Scrape(ctx context.Context, url string) (*Result, error)
	Name() string
}
