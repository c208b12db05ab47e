package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/sells-group/leadscout/internal/config"
	"github.com/sells-group/leadscout/internal/model"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Data: config.DataConfig{
			Dir:       dir,
			LeadsFile: filepath.Join(dir, "leads.json"),
			KBPath:    filepath.Join(dir, "kb.db"),
			DocsDir:   filepath.Join(dir, "documents"),
			CredsFile: filepath.Join(dir, "config.encrypted"),
			KeyFile:   filepath.Join(dir, "secret.key"),
		},
		Scrape:   config.ScrapeConfig{TimeoutSecs: 5, MaxRetries: 1},
		Complete: config.CompleteConfig{TimeoutSecs: 5, MaxTokens: 256, MaxContentLen: 8000},
		Embed:    config.EmbedConfig{Dimensions: 64},
		KB:       config.KBConfig{ChunkSize: 1000, ChunkOverlap: 200, TopK: 3},
		Bulk:     config.BulkConfig{DelaySecs: 0.01, MaxURLs: 50},
	}
}

func TestInitEnvFallsBackToOffline(t *testing.T) {
	cfg = testConfig(t)

	core, logs := observer.New(zap.InfoLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	defer restore()

	e, err := initEnv()
	require.NoError(t, err)
	defer e.Close()

	assert.True(t, e.offline, "no credentials means offline mode")

	entries := logs.FilterMessage("no usable API keys configured, running in offline mode").All()
	require.Len(t, entries, 1)
	assert.Equal(t, string(model.FailureConfigurationMissing), entries[0].ContextMap()["reason"])
}
