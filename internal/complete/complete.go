// Package complete generates lead qualifications from scraped content,
// via Anthropic or OpenAI chat completions, or a deterministic offline
// substitute.
package complete

import "context"

// Request carries the prompt for one completion. URL identifies the lead
// being analyzed; the offline completer derives its deterministic output
// from it.
type Request struct {
	System string
	Prompt string
	URL    string
}

// Completer returns the raw model output for a request. The output is
// expected to be JSON but is parsed by the caller, which owns repair and
// retry policy.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
	Name() string
}
