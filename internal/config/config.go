package config

import (
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Data     DataConfig     `yaml:"data" mapstructure:"data"`
	Scrape   ScrapeConfig   `yaml:"scrape" mapstructure:"scrape"`
	Complete CompleteConfig `yaml:"complete" mapstructure:"complete"`
	Embed    EmbedConfig    `yaml:"embed" mapstructure:"embed"`
	KB       KBConfig       `yaml:"kb" mapstructure:"kb"`
	Bulk     BulkConfig     `yaml:"bulk" mapstructure:"bulk"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// DataConfig locates every persisted file. Paths left empty are derived
// from Dir.
type DataConfig struct {
	Dir       string `yaml:"dir" mapstructure:"dir"`
	LeadsFile string `yaml:"leads_file" mapstructure:"leads_file"`
	KBPath    string `yaml:"kb_path" mapstructure:"kb_path"`
	DocsDir   string `yaml:"docs_dir" mapstructure:"docs_dir"`
	CredsFile string `yaml:"creds_file" mapstructure:"creds_file"`
	KeyFile   string `yaml:"key_file" mapstructure:"key_file"`
}

// ScrapeConfig configures the scrape provider adapter.
type ScrapeConfig struct {
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries" mapstructure:"max_retries"`
}

// CompleteConfig configures the completion provider adapters.
type CompleteConfig struct {
	TimeoutSecs    int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	AnthropicModel string `yaml:"anthropic_model" mapstructure:"anthropic_model"`
	OpenAIModel    string `yaml:"openai_model" mapstructure:"openai_model"`
	MaxTokens      int    `yaml:"max_tokens" mapstructure:"max_tokens"`
	MaxContentLen  int    `yaml:"max_content_len" mapstructure:"max_content_len"`
}

// EmbedConfig configures the embedding provider.
type EmbedConfig struct {
	Model      string `yaml:"model" mapstructure:"model"`
	Dimensions int    `yaml:"dimensions" mapstructure:"dimensions"`
}

// KBConfig configures document chunking and retrieval.
type KBConfig struct {
	ChunkSize    int `yaml:"chunk_size" mapstructure:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap" mapstructure:"chunk_overlap"`
	TopK         int `yaml:"top_k" mapstructure:"top_k"`
}

// BulkConfig configures sequential bulk analysis pacing.
type BulkConfig struct {
	DelaySecs float64 `yaml:"delay_secs" mapstructure:"delay_secs"`
	MaxURLs   int     `yaml:"max_urls" mapstructure:"max_urls"`
}

// ServerConfig configures the dashboard API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LEADSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data.dir", "./data")
	v.SetDefault("scrape.base_url", "https://api.firecrawl.dev/v1")
	v.SetDefault("scrape.timeout_secs", 60)
	v.SetDefault("scrape.max_retries", 3)
	v.SetDefault("complete.timeout_secs", 60)
	v.SetDefault("complete.anthropic_model", "claude-3-5-sonnet-20241022")
	v.SetDefault("complete.openai_model", "gpt-4o-mini")
	v.SetDefault("complete.max_tokens", 2048)
	v.SetDefault("complete.max_content_len", 8000)
	v.SetDefault("embed.model", "text-embedding-3-small")
	v.SetDefault("embed.dimensions", 256)
	v.SetDefault("kb.chunk_size", 1000)
	v.SetDefault("kb.chunk_overlap", 200)
	v.SetDefault("kb.top_k", 3)
	v.SetDefault("bulk.delay_secs", 1.0)
	v.SetDefault("bulk.max_urls", 50)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	cfg.applyDataDefaults()

	return &cfg, nil
}

// applyDataDefaults derives unset file paths from the data directory.
func (c *Config) applyDataDefaults() {
	if c.Data.Dir == "" {
		c.Data.Dir = "./data"
	}
	if c.Data.LeadsFile == "" {
		c.Data.LeadsFile = filepath.Join(c.Data.Dir, "leads.json")
	}
	if c.Data.KBPath == "" {
		c.Data.KBPath = filepath.Join(c.Data.Dir, "kb.db")
	}
	if c.Data.DocsDir == "" {
		c.Data.DocsDir = filepath.Join(c.Data.Dir, "documents")
	}
	if c.Data.CredsFile == "" {
		c.Data.CredsFile = filepath.Join(c.Data.Dir, "config.encrypted")
	}
	if c.Data.KeyFile == "" {
		c.Data.KeyFile = filepath.Join(c.Data.Dir, "secret.key")
	}
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
