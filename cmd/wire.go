package main

import (
	"os"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/analyzer"
	"github.com/sells-group/leadscout/internal/complete"
	"github.com/sells-group/leadscout/internal/credstore"
	"github.com/sells-group/leadscout/internal/embed"
	"github.com/sells-group/leadscout/internal/kb"
	"github.com/sells-group/leadscout/internal/leadstore"
	"github.com/sells-group/leadscout/internal/model"
	"github.com/sells-group/leadscout/internal/scrape"
	"github.com/sells-group/leadscout/pkg/anthropic"
	"github.com/sells-group/leadscout/pkg/firecrawl"
)

// env bundles the wired services for a command invocation.
type env struct {
	analyzer *analyzer.Analyzer
	leads    *leadstore.Store
	kb       *kb.Engine
	creds    *credstore.Store
	offline  bool

	kbDB *kb.DB
}

func (e *env) Close() {
	if e.kbDB != nil {
		e.kbDB.Close()
	}
}

// newCredStore returns the credential store at the configured paths.
func newCredStore() *credstore.Store {
	return credstore.New(cfg.Data.CredsFile, cfg.Data.KeyFile)
}

// initEnv wires the full pipeline. With no usable credentials it falls
// back to the deterministic offline providers so every command still
// works without API keys.
func initEnv() (*env, error) {
	creds := newCredStore()
	secrets, err := creds.Load()
	if err != nil {
		return nil, eris.Wrap(err, "load credentials")
	}
	if secrets == nil {
		secrets = &credstore.Secrets{}
	}

	provider := secrets.Provider
	if provider == "" {
		provider = "anthropic"
	}

	configured, err := creds.IsConfigured(provider)
	if err != nil {
		return nil, err
	}
	offline := !configured

	var scraper scrape.Scraper
	var completer complete.Completer
	var embedder embed.Embedder

	if offline {
		zap.L().Info("no usable API keys configured, running in offline mode",
			zap.String("reason", string(model.FailureConfigurationMissing)))
		scraper = scrape.NewOffline()
		completer = complete.NewOffline()
		embedder = embed.NewOffline(cfg.Embed.Dimensions)
	} else {
		fcClient := firecrawl.NewClient(secrets.FirecrawlKey, firecrawl.WithBaseURL(cfg.Scrape.BaseURL))
		scraper = scrape.NewFirecrawl(fcClient, cfg.Scrape.MaxRetries)

		switch provider {
		case "openai":
			completer = complete.NewOpenAI(secrets.OpenAIKey, cfg.Complete.OpenAIModel, cfg.Complete.MaxTokens)
		default:
			completer = complete.NewAnthropic(anthropic.NewClient(secrets.AnthropicKey), cfg.Complete.AnthropicModel, cfg.Complete.MaxTokens)
		}

		if secrets.OpenAIKey != "" {
			embedder = embed.NewOpenAI(secrets.OpenAIKey, cfg.Embed.Model, cfg.Embed.Dimensions)
		} else {
			embedder = embed.NewOffline(cfg.Embed.Dimensions)
		}
	}

	if err := os.MkdirAll(cfg.Data.Dir, 0o755); err != nil {
		return nil, eris.Wrap(err, "create data dir")
	}
	kbDB, err := kb.OpenDB(cfg.Data.KBPath)
	if err != nil {
		return nil, eris.Wrap(err, "open knowledge base")
	}
	engine := kb.NewEngine(kbDB, embedder, cfg.Data.DocsDir, kb.Options{
		ChunkSize:    cfg.KB.ChunkSize,
		ChunkOverlap: cfg.KB.ChunkOverlap,
		TopK:         cfg.KB.TopK,
	})

	leads := leadstore.New(cfg.Data.LeadsFile)

	opts := analyzer.Options{
		ScrapeTimeout:   time.Duration(cfg.Scrape.TimeoutSecs) * time.Second,
		CompleteTimeout: time.Duration(cfg.Complete.TimeoutSecs) * time.Second,
		MaxContentLen:   cfg.Complete.MaxContentLen,
		BulkDelay:       time.Duration(cfg.Bulk.DelaySecs * float64(time.Second)),
		BulkMaxURLs:     cfg.Bulk.MaxURLs,
	}

	var kbProvider analyzer.ContextProvider = engine
	a := analyzer.New(scraper, completer, kbProvider, leads, profileOf(secrets), offline, opts)

	return &env{
		analyzer: a,
		leads:    leads,
		kb:       engine,
		creds:    creds,
		offline:  offline,
		kbDB:     kbDB,
	}, nil
}

func profileOf(secrets *credstore.Secrets) model.Profile {
	return secrets.Profile
}
