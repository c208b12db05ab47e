// Package analyzer orchestrates the lead qualification pipeline:
// scrape, retrieve knowledge-base context, complete, parse, persist.
package analyzer

import (
	"context"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/leadscout/internal/complete"
	"github.com/sells-group/leadscout/internal/leadstore"
	"github.com/sells-group/leadscout/internal/model"
	"github.com/sells-group/leadscout/internal/scrape"
	"github.com/sells-group/leadscout/internal/validate"
)

// ContextProvider supplies knowledge-base context for a query. A nil
// provider disables retrieval.
type ContextProvider interface {
	ContextForPrompt(ctx context.Context, query string) (string, error)
}

// Options tunes the pipeline.
type Options struct {
	ScrapeTimeout   time.Duration
	CompleteTimeout time.Duration
	MaxContentLen   int
	BulkDelay       time.Duration
	BulkMaxURLs     int
}

// DefaultOptions returns the standard pipeline settings.
func DefaultOptions() Options {
	return Options{
		ScrapeTimeout:   60 * time.Second,
		CompleteTimeout: 60 * time.Second,
		MaxContentLen:   8000,
		BulkDelay:       time.Second,
		BulkMaxURLs:     50,
	}
}

// Failure is an orchestration error carrying its classification.
type Failure struct {
	Kind model.FailureKind
	Err  error
}

func (f *Failure) Error() string {
	return f.Err.Error()
}

func (f *Failure) Unwrap() error {
	return f.Err
}

func failf(kind model.FailureKind, err error) *Failure {
	return &Failure{Kind: kind, Err: err}
}

// Analyzer runs the qualification pipeline and records every outcome.
type Analyzer struct {
	scraper   scrape.Scraper
	completer complete.Completer
	kb        ContextProvider
	leads     *leadstore.Store
	profile   model.Profile
	offline   bool
	opts      Options
}

// New assembles an analyzer. kb may be nil to disable retrieval.
func New(scraper scrape.Scraper, completer complete.Completer, kb ContextProvider,
	leads *leadstore.Store, profile model.Profile, offline bool, opts Options) *Analyzer {
	if opts.ScrapeTimeout <= 0 {
		opts = DefaultOptions()
	}
	return &Analyzer{
		scraper:   scraper,
		completer: completer,
		kb:        kb,
		leads:     leads,
		profile:   profile,
		offline:   offline,
		opts:      opts,
	}
}

// scrapedPreviewLen bounds how much page content is stored per lead.
const scrapedPreviewLen = 500

// Analyze runs the full pipeline for one URL. Scrape and completion
// failures are recorded on the returned lead rather than returned as
// errors; the error return is reserved for failures that leave nothing
// to record (bad input, unwritable store).
func (a *Analyzer) Analyze(ctx context.Context, rawURL string, newEntry bool) (*model.Lead, error) {
	url, err := validate.URL(rawURL)
	if err != nil {
		return nil, failf(model.FailureInvalidInput, err)
	}

	lead := &model.Lead{
		ID:          model.LeadID(url),
		URL:         url,
		Provider:    a.completer.Name(),
		OfflineMode: a.offline,
	}
	log := zap.L().With(zap.String("url", url), zap.String("provider", a.completer.Name()))

	scrapeCtx, cancel := context.WithTimeout(ctx, a.opts.ScrapeTimeout)
	page, err := a.scraper.Scrape(scrapeCtx, url)
	cancel()
	if err != nil {
		log.Warn("analyze: scrape failed", zap.Error(err))
		lead.Status = model.LeadStatusScrapeFailed
		lead.FailureKind = model.FailureProviderUnavailable
		lead.Error = err.Error()
		return lead, a.persist(lead, newEntry)
	}
	lead.ScrapedContent = preview(page.Markdown)
	lead.PageTitle = page.Title

	kbContext := a.retrieveContext(ctx, page.Markdown, log)
	lead.UsedContext = kbContext != ""

	q, err := a.qualify(ctx, url, page.Markdown, kbContext)
	if err != nil {
		log.Warn("analyze: completion failed", zap.Error(err))
		lead.Status = model.LeadStatusCompletionFailed
		lead.FailureKind = failureKind(err)
		lead.Error = err.Error()
		return lead, a.persist(lead, newEntry)
	}

	lead.ApplyQualification(*q)
	log.Info("analyze: qualified lead",
		zap.Int("score", q.LeadScore),
		zap.String("company", q.CompanyName),
		zap.String("action", q.RecommendedAction),
		zap.Bool("used_context", lead.UsedContext))
	return lead, a.persist(lead, newEntry)
}

// retrieveContext queries the knowledge base with the head of the
// scraped content. Retrieval failures degrade to no context.
func (a *Analyzer) retrieveContext(ctx context.Context, content string, log *zap.Logger) string {
	if a.kb == nil {
		return ""
	}

	query := content
	if runes := []rune(query); len(runes) > 1000 {
		query = string(runes[:1000])
	}
	kbContext, err := a.kb.ContextForPrompt(ctx, query)
	if err != nil {
		log.Warn("analyze: context retrieval failed, continuing without", zap.Error(err))
		return ""
	}
	return kbContext
}

// qualify runs the completion and parses the result, re-prompting once
// with a stricter instruction when the first response does not parse.
func (a *Analyzer) qualify(ctx context.Context, url, content, kbContext string) (*model.Qualification, error) {
	prompt := buildPrompt(url, content, kbContext, a.profile, a.opts.MaxContentLen)

	raw, err := a.completeWithTimeout(ctx, complete.Request{
		System: systemPrompt,
		Prompt: prompt,
		URL:    url,
	})
	if err != nil {
		return nil, failf(model.FailureProviderUnavailable, err)
	}

	q, parseErr := parseQualification(raw)
	if parseErr == nil {
		return q, nil
	}

	zap.L().Warn("analyze: unparseable response, re-prompting once",
		zap.String("url", url), zap.Error(parseErr))
	raw, err = a.completeWithTimeout(ctx, complete.Request{
		System: systemPrompt,
		Prompt: prompt + strictReminder,
		URL:    url,
	})
	if err != nil {
		return nil, failf(model.FailureProviderUnavailable, err)
	}
	q, parseErr = parseQualification(raw)
	if parseErr != nil {
		return nil, failf(model.FailureParse, parseErr)
	}
	return q, nil
}

func (a *Analyzer) completeWithTimeout(ctx context.Context, req complete.Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.opts.CompleteTimeout)
	defer cancel()
	return a.completer.Complete(ctx, req)
}

func (a *Analyzer) persist(lead *model.Lead, newEntry bool) error {
	if err := a.leads.Save(lead, newEntry); err != nil {
		return failf(model.FailurePersistence, err)
	}
	return nil
}

// BulkResult summarizes a bulk run.
type BulkResult struct {
	Leads     []*model.Lead
	Succeeded int
	Failed    int
}

// AnalyzeBulk processes URLs sequentially with rate limiting. One URL's
// failure never stops the run; each outcome lands in the store as it
// completes. Bulk entries are always appended as new records.
func (a *Analyzer) AnalyzeBulk(ctx context.Context, urls []string) (*BulkResult, error) {
	if len(urls) == 0 {
		return nil, failf(model.FailureInvalidInput, eris.New("analyzer: no URLs given"))
	}
	if a.opts.BulkMaxURLs > 0 && len(urls) > a.opts.BulkMaxURLs {
		return nil, failf(model.FailureInvalidInput,
			eris.Errorf("analyzer: %d URLs exceeds the limit of %d", len(urls), a.opts.BulkMaxURLs))
	}

	limiter := rate.NewLimiter(rate.Every(a.opts.BulkDelay), 1)
	result := &BulkResult{}

	for i, url := range urls {
		if err := limiter.Wait(ctx); err != nil {
			return result, eris.Wrap(err, "analyzer: bulk canceled")
		}

		lead, err := a.Analyze(ctx, url, true)
		if err != nil {
			zap.L().Warn("bulk: URL failed",
				zap.Int("index", i), zap.String("url", url), zap.Error(err))
			// Every URL gets an entry in the result, even when nothing
			// reached the store.
			if lead == nil {
				lead = &model.Lead{
					URL:         url,
					Status:      model.LeadStatusFailed,
					FailureKind: failureKind(err),
					Error:       err.Error(),
					OfflineMode: a.offline,
				}
			}
			result.Leads = append(result.Leads, lead)
			result.Failed++
			continue
		}
		result.Leads = append(result.Leads, lead)
		if lead.Status == model.LeadStatusAnalyzed {
			result.Succeeded++
		} else {
			result.Failed++
		}
	}

	zap.L().Info("bulk: run complete",
		zap.Int("total", len(urls)),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", result.Failed))
	return result, nil
}

func failureKind(err error) model.FailureKind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return model.FailureProviderUnavailable
}

func preview(content string) string {
	runes := []rune(content)
	if len(runes) <= scrapedPreviewLen {
		return content
	}
	return string(runes[:scrapedPreviewLen]) + "..."
}
