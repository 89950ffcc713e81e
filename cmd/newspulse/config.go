// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/newspulse/internal/cache"
	"github.com/pdiddy/newspulse/internal/pipeline"
	"github.com/pdiddy/newspulse/internal/secrets"
	"github.com/pdiddy/newspulse/internal/sentiment"
	"github.com/pdiddy/newspulse/pkg/types"
)

const defaultUserAgent = "newspulse/0.1"

// setDefaults registers every configuration key so that NEWSPULSE_*
// environment variables can override keys absent from the config file.
func setDefaults(v *viper.Viper) {
	v.SetDefault("default_query", pipeline.DefaultQuery)
	v.SetDefault("max_articles", pipeline.DefaultMaxArticles)

	v.SetDefault("fetch.timeout", 30*time.Second)
	v.SetDefault("fetch.user_agent", defaultUserAgent)
	v.SetDefault("fetch.base_url", "")

	v.SetDefault("classifier.backend", string(types.BackendInference))
	v.SetDefault("classifier.model", "")
	v.SetDefault("classifier.timeout", 30*time.Second)
	v.SetDefault("classifier.user_agent", defaultUserAgent)
	v.SetDefault("classifier.base_url", "")
	v.SetDefault("classifier.cold_start_delay", sentiment.DefaultColdStartDelay)
	v.SetDefault("classifier.concurrency", 1)
	v.SetDefault("classifier.requests_per_second", 0.0)

	v.SetDefault("summary.enabled", false)
	v.SetDefault("summary.model", "")

	v.SetDefault("cache.addr", "")
	v.SetDefault("cache.password", "")
	v.SetDefault("cache.db", 0)
	v.SetDefault("cache.ttl", cache.DefaultTTL)

	v.SetDefault("archive.enabled", true)
	v.SetDefault("archive.data_dir", "data")
	v.SetDefault("archive.max_results", 20)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.allow_origin", "*")
}

// loadConfig decodes v into a PipelineConfig and fills in credentials.
// API keys never come from the config file: they are read from the
// environment or from .secrets/ at call time.
func loadConfig(v *viper.Viper, loaded map[string]string) (types.PipelineConfig, error) {
	var cfg types.PipelineConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding configuration: %w", err)
	}

	cfg.Fetch.APIKey = secrets.Resolve(loaded, envNewsAPIKey, secrets.NewsAPIKey)
	anthropicKey := secrets.Resolve(loaded, envAnthropicKey, secrets.AnthropicKey)
	switch cfg.Classifier.Backend {
	case types.BackendLLM:
		cfg.Classifier.APIKey = anthropicKey
	default:
		cfg.Classifier.APIKey = secrets.Resolve(loaded, envHuggingFaceKey, secrets.HuggingFaceKey)
	}
	cfg.Summary.APIKey = anthropicKey
	return cfg, nil
}

// currentConfig loads the configuration for the running command.
func currentConfig() (types.PipelineConfig, error) {
	return loadConfig(viper.GetViper(), loadedSecrets)
}
