// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "newspulse/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// FetchConfig holds settings for the fetch stage.
type FetchConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// APIKey authenticates against the news search service. Required.
	APIKey string `json:"-" yaml:"-" mapstructure:"api_key"`

	// BaseURL overrides the news search endpoint.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`
}

// ClassifierBackend identifies the sentiment classification backend.
type ClassifierBackend string

const (
	BackendInference ClassifierBackend = "inference"
	BackendLLM       ClassifierBackend = "llm"
)

// ClassifierConfig holds settings for the classify stage.
type ClassifierConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Backend selects the classifier: inference or llm.
	Backend ClassifierBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// Model is the model identifier for the selected backend
	// (e.g. "ProsusAI/finbert" or "claude-haiku-4-5").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey authenticates against the selected backend. When empty every
	// article degrades to the neutral fallback.
	APIKey string `json:"-" yaml:"-" mapstructure:"api_key"`

	// BaseURL overrides the inference endpoint.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`

	// ColdStartDelay is the wait before the single retry after a
	// model-loading response (default 20s).
	ColdStartDelay time.Duration `json:"cold_start_delay" yaml:"cold_start_delay" mapstructure:"cold_start_delay"`

	// Concurrency is the number of articles classified in parallel
	// (default 1, strictly sequential).
	Concurrency int `json:"concurrency" yaml:"concurrency" mapstructure:"concurrency"`

	// RequestsPerSecond limits upstream calls. Zero disables limiting.
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// SummaryConfig holds settings for the optional model-written digest.
type SummaryConfig struct {
	// Enabled turns the digest on. It also requires an API key.
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	Model  string `json:"model" yaml:"model" mapstructure:"model"`
	APIKey string `json:"-" yaml:"-" mapstructure:"api_key"`
}

// CacheConfig holds settings for the Redis report cache.
type CacheConfig struct {
	// Addr is the Redis address (host:port). Empty disables caching.
	Addr     string        `json:"addr" yaml:"addr" mapstructure:"addr"`
	Password string        `json:"-" yaml:"-" mapstructure:"password"`
	DB       int           `json:"db" yaml:"db" mapstructure:"db"`
	TTL      time.Duration `json:"ttl" yaml:"ttl" mapstructure:"ttl"`
}

// ArchiveConfig holds settings for the SQLite run archive.
type ArchiveConfig struct {
	// Enabled turns archiving of pipeline runs on.
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// DataDir is the directory containing newspulse.db and exports.
	DataDir string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`

	// MaxResults is the default number of rows returned by listings (default 20).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`
}

// ServerConfig holds settings for the HTTP service.
type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// AllowOrigin is sent as Access-Control-Allow-Origin (default "*").
	AllowOrigin string `json:"allow_origin" yaml:"allow_origin" mapstructure:"allow_origin"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	// DefaultQuery is used when a request carries no query.
	DefaultQuery string `json:"default_query" yaml:"default_query" mapstructure:"default_query"`

	// MaxArticles is the single limit on articles per run: it is the page
	// size requested from the news service and therefore bounds every
	// later stage (default 20).
	MaxArticles int `json:"max_articles" yaml:"max_articles" mapstructure:"max_articles"`

	Fetch      FetchConfig      `json:"fetch" yaml:"fetch" mapstructure:"fetch"`
	Classifier ClassifierConfig `json:"classifier" yaml:"classifier" mapstructure:"classifier"`
	Summary    SummaryConfig    `json:"summary" yaml:"summary" mapstructure:"summary"`
	Cache      CacheConfig      `json:"cache" yaml:"cache" mapstructure:"cache"`
	Archive    ArchiveConfig    `json:"archive" yaml:"archive" mapstructure:"archive"`
	Server     ServerConfig     `json:"server" yaml:"server" mapstructure:"server"`
}
