package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Render    RenderConfig    `yaml:"render" mapstructure:"render"`
	Pipeline  PipelineConfig  `yaml:"pipeline" mapstructure:"pipeline"`
	Synonyms  SynonymsConfig  `yaml:"synonyms" mapstructure:"synonyms"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Intake    IntakeConfig    `yaml:"intake" mapstructure:"intake"`
	Review    ReviewConfig    `yaml:"review" mapstructure:"review"`
	Pricing   PricingConfig   `yaml:"pricing" mapstructure:"pricing"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key           string  `yaml:"key" mapstructure:"key"`
	ClassifyModel string  `yaml:"classify_model" mapstructure:"classify_model"`
	ExtractModel  string  `yaml:"extract_model" mapstructure:"extract_model"`
	MaxTokens     int64   `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature   float64 `yaml:"temperature" mapstructure:"temperature"`
}

// RenderConfig configures the page source.
type RenderConfig struct {
	Provider      string `yaml:"provider" mapstructure:"provider"`
	PdfToTextPath string `yaml:"pdftotext_path" mapstructure:"pdftotext_path"`
	MistralKey    string `yaml:"mistral_api_key" mapstructure:"mistral_api_key"`
	MistralModel  string `yaml:"mistral_ocr_model" mapstructure:"mistral_ocr_model"`
	CacheTTLHours int    `yaml:"cache_ttl_hours" mapstructure:"cache_ttl_hours"`
}

// PipelineConfig configures per-document processing behavior.
type PipelineConfig struct {
	MaxPages         int      `yaml:"max_pages" mapstructure:"max_pages"`
	BuildingSqft     float64  `yaml:"building_sqft" mapstructure:"building_sqft"`
	SkipIndicators   []string `yaml:"skip_indicators" mapstructure:"skip_indicators"`
	AttachPageImages bool     `yaml:"attach_page_images" mapstructure:"attach_page_images"`
}

// SynonymsConfig locates the synonym dictionary file.
type SynonymsConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// StoreConfig configures the run persistence backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// IntakeConfig configures document intake sources.
type IntakeConfig struct {
	FTPTimeoutSecs int     `yaml:"ftp_timeout_secs" mapstructure:"ftp_timeout_secs"`
	RatePerSec     float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	SpoolDir       string  `yaml:"spool_dir" mapstructure:"spool_dir"`
}

// ReviewConfig configures review handoff sinks.
type ReviewConfig struct {
	WebhookURL     string `yaml:"webhook_url" mapstructure:"webhook_url"`
	NotionToken    string `yaml:"notion_token" mapstructure:"notion_token"`
	NotionDatabase string `yaml:"notion_database" mapstructure:"notion_database"`
}

// PricingConfig holds per-model token pricing for cost logging.
type PricingConfig struct {
	Anthropic map[string]ModelPricing `yaml:"anthropic" mapstructure:"anthropic"`
}

// ModelPricing holds per-model token pricing (USD per million tokens).
type ModelPricing struct {
	Input  float64 `yaml:"input" mapstructure:"input"`
	Output float64 `yaml:"output" mapstructure:"output"`
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	MaxConcurrentDocuments int     `yaml:"max_concurrent_documents" mapstructure:"max_concurrent_documents"`
	StartsPerSec           float64 `yaml:"starts_per_sec" mapstructure:"starts_per_sec"`
}

// ServerConfig configures the review API server.
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
	v.SetEnvPrefix("LEASEABS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("anthropic.classify_model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.extract_model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 4096)
	v.SetDefault("anthropic.temperature", 0.0)
	v.SetDefault("render.provider", "local")
	v.SetDefault("render.pdftotext_path", "pdftotext")
	v.SetDefault("render.mistral_ocr_model", "pixtral-large-latest")
	v.SetDefault("render.cache_ttl_hours", 168)
	v.SetDefault("pipeline.max_pages", 25)
	v.SetDefault("pipeline.building_sqft", 50000.0)
	v.SetDefault("pipeline.skip_indicators", []string{"amendment", "addendum", "modification", "extension"})
	v.SetDefault("pipeline.attach_page_images", false)
	v.SetDefault("synonyms.path", "synonyms.yaml")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "leaseabs.db")
	v.SetDefault("intake.ftp_timeout_secs", 30)
	v.SetDefault("intake.rate_per_sec", 2.0)
	v.SetDefault("intake.spool_dir", "/tmp/leaseabs")
	v.SetDefault("batch.max_concurrent_documents", 4)
	v.SetDefault("batch.starts_per_sec", 2.0)
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

	return &cfg, nil
}

// Validate checks that the fields required by the given command mode are
// present. Collected problems are reported together.
func (c *Config) Validate(mode string) error {
	var problems []string

	requireKey := func() {
		if c.Anthropic.Key == "" {
			problems = append(problems, "anthropic.key is required")
		}
	}
	requireStore := func() {
		switch c.Store.Driver {
		case "sqlite", "":
			if c.Store.Path == "" {
				problems = append(problems, "store.path is required for the sqlite driver")
			}
		case "postgres":
			if c.Store.DatabaseURL == "" {
				problems = append(problems, "store.database_url is required for the postgres driver")
			}
		default:
			problems = append(problems, "store.driver must be sqlite or postgres")
		}
	}

	switch mode {
	case "extract", "batch":
		requireKey()
		if c.Pipeline.MaxPages <= 0 {
			problems = append(problems, "pipeline.max_pages must be > 0")
		}
		if c.Pipeline.BuildingSqft <= 0 {
			problems = append(problems, "pipeline.building_sqft must be > 0")
		}
		if mode == "batch" && (c.Batch.MaxConcurrentDocuments < 1 || c.Batch.MaxConcurrentDocuments > 32) {
			problems = append(problems, "batch.max_concurrent_documents must be between 1 and 32")
		}
	case "serve":
		requireKey()
		requireStore()
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
	case "runs", "export":
		requireStore()
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
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
