// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Crawl      CrawlConfig      `mapstructure:"crawl"`
	Store      StoreConfig      `mapstructure:"store"`
	Embedding  EmbeddingConfig  `mapstructure:"embedding"`
	Completion CompletionConfig `mapstructure:"completion"`
	Prompt     PromptConfig     `mapstructure:"prompt"`
	Retrieval  RetrievalConfig  `mapstructure:"retrieval"`
	Messaging  MessagingConfig  `mapstructure:"messaging"`
	Worker     WorkerConfig     `mapstructure:"worker"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// CrawlConfig governs the breadth-first crawl.
type CrawlConfig struct {
	Seeds             []string `mapstructure:"seeds"`
	Scope             string   `mapstructure:"scope"`
	ContentSelector   string   `mapstructure:"content_selector"`
	ContentTimeoutSec int      `mapstructure:"content_timeout_seconds"`
	NavTimeoutSec     int      `mapstructure:"nav_timeout_seconds"`
	UserAgent         string   `mapstructure:"user_agent"`
	MaxPages          int      `mapstructure:"max_pages"`
	SnapshotPath      string   `mapstructure:"snapshot_path"`
}

// StoreConfig points at the external vector store service.
type StoreConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	Collection  string `mapstructure:"collection"`
	MaxEmbedLen int    `mapstructure:"max_embed_len"`
}

// EmbeddingConfig selects the text embedding service.
type EmbeddingConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

// CompletionConfig selects the completion service and its retry policy.
type CompletionConfig struct {
	APIKey       string `mapstructure:"api_key"`
	BaseURL      string `mapstructure:"base_url"`
	Model        string `mapstructure:"model"`
	MaxTokens    int    `mapstructure:"max_tokens"`
	StopMarker   string `mapstructure:"stop_marker"`
	MaxAttempts  int    `mapstructure:"max_attempts"`
	RetryDelayMs int    `mapstructure:"retry_delay_ms"`
	RetryJitter  bool   `mapstructure:"retry_jitter"`
}

// PromptConfig bounds prompt assembly.
type PromptConfig struct {
	Budget      int    `mapstructure:"budget"`
	Instruction string `mapstructure:"instruction"`
}

// RetrievalConfig controls similarity retrieval.
type RetrievalConfig struct {
	TopK int `mapstructure:"top_k"`
}

// MessagingConfig configures the outbound SMS channel and inbound webhook.
type MessagingConfig struct {
	AccountSID         string `mapstructure:"account_sid"`
	AuthToken          string `mapstructure:"auth_token"`
	FromNumber         string `mapstructure:"from_number"`
	SegmentLimit       int    `mapstructure:"segment_limit"`
	Keyword            string `mapstructure:"keyword"`
	ValidateSignatures bool   `mapstructure:"validate_signatures"`
	WebhookBaseURL     string `mapstructure:"webhook_base_url"`
}

// WorkerConfig sizes the async answer dispatch pool.
type WorkerConfig struct {
	Count      int `mapstructure:"count"`
	QueueDepth int `mapstructure:"queue_depth"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CAMPUSQA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("crawl.content_selector", ".main-content")
	v.SetDefault("crawl.content_timeout_seconds", 15)
	v.SetDefault("crawl.nav_timeout_seconds", 45)
	v.SetDefault("crawl.user_agent", "campusqa-bot/0.1")
	v.SetDefault("crawl.max_pages", 0)
	v.SetDefault("crawl.snapshot_path", "data/snapshot.json")
	v.SetDefault("store.base_url", "http://localhost:8000")
	v.SetDefault("store.collection", "campus-docs")
	v.SetDefault("store.max_embed_len", 30000)
	v.SetDefault("embedding.model", "text-embedding-ada-002")
	v.SetDefault("completion.model", "gpt-4o-mini")
	v.SetDefault("completion.max_tokens", 5000)
	v.SetDefault("completion.max_attempts", 20)
	v.SetDefault("completion.retry_delay_ms", 2000)
	v.SetDefault("completion.retry_jitter", false)
	v.SetDefault("prompt.budget", 50000)
	v.SetDefault("prompt.instruction",
		"Use the following information about our programs to help answer the question below.")
	v.SetDefault("retrieval.top_k", 20)
	v.SetDefault("messaging.segment_limit", 1500)
	v.SetDefault("messaging.keyword", "askbot")
	v.SetDefault("messaging.validate_signatures", true)
	v.SetDefault("worker.count", 4)
	v.SetDefault("worker.queue_depth", 64)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Crawl.ContentSelector == "" {
		return fmt.Errorf("crawl.content_selector must be set")
	}
	if c.Crawl.ContentTimeoutSec <= 0 {
		return fmt.Errorf("crawl.content_timeout_seconds must be > 0")
	}
	if c.Store.MaxEmbedLen <= 0 {
		return fmt.Errorf("store.max_embed_len must be > 0")
	}
	if c.Completion.MaxAttempts <= 0 {
		return fmt.Errorf("completion.max_attempts must be > 0")
	}
	if c.Prompt.Budget <= 0 {
		return fmt.Errorf("prompt.budget must be > 0")
	}
	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("retrieval.top_k must be > 0")
	}
	if c.Messaging.SegmentLimit <= 0 {
		return fmt.Errorf("messaging.segment_limit must be > 0")
	}
	if c.Worker.Count <= 0 {
		return fmt.Errorf("worker.count must be > 0")
	}
	if c.Worker.QueueDepth <= 0 {
		return fmt.Errorf("worker.queue_depth must be > 0")
	}
	return nil
}

// ContentTimeout returns the content readiness wait as a duration.
func (c CrawlConfig) ContentTimeout() time.Duration {
	return time.Duration(c.ContentTimeoutSec) * time.Second
}

// NavTimeout returns the navigation budget as a duration.
func (c CrawlConfig) NavTimeout() time.Duration {
	return time.Duration(c.NavTimeoutSec) * time.Second
}

// RetryDelay returns the inter-attempt completion delay as a duration.
func (c CompletionConfig) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelayMs) * time.Millisecond
}
