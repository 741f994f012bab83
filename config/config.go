//
// Tencent is pleased to support the open source community by making
// trpc-coinsight-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-coinsight-go is licensed under the Apache License Version 2.0.
//
//

// Package config loads application settings from an optional YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultOpenAIModel    = "gpt-4"
	DefaultEmbeddingModel = "text-embedding-3-small"
	DefaultCacheTTL       = 5 * time.Minute
	DefaultRequestTimeout = 10 * time.Second

	DefaultSemanticCacheThreshold = 0.85
	DefaultSemanticCacheMaxSize   = 1000
	DefaultSemanticCacheTTL       = time.Hour
	DefaultSemanticCacheFile      = "semantic_cache.json"
)

// SemanticCache configures the semantic response cache.
type SemanticCache struct {
	Enabled             bool    `yaml:"enabled"`
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	MaxCacheSize        int     `yaml:"max_cache_size"`
	TTLSeconds          int     `yaml:"ttl_seconds"`
	FilePath            string  `yaml:"file_path"`
	EmbeddingModel      string  `yaml:"embedding_model"`
}

// TTL returns the configured entry lifetime.
func (s SemanticCache) TTL() time.Duration {
	return time.Duration(s.TTLSeconds) * time.Second
}

// Settings is the application configuration.
type Settings struct {
	OpenAIAPIKey string `yaml:"openai_api_key"`
	OpenAIModel  string `yaml:"openai_model"`
	NewsAPIKey   string `yaml:"newsapi_key"`

	CacheTTLSeconds       int  `yaml:"cache_ttl_seconds"`
	RequestTimeoutSeconds int  `yaml:"request_timeout_seconds"`
	Verbose               bool `yaml:"verbose"`

	HistoryDBPath string `yaml:"history_db_path"`

	SemanticCache SemanticCache `yaml:"semantic_cache"`
}

// CacheTTL returns the TTL for volatile market data.
func (s *Settings) CacheTTL() time.Duration {
	return time.Duration(s.CacheTTLSeconds) * time.Second
}

// RequestTimeout returns the per-attempt HTTP timeout.
func (s *Settings) RequestTimeout() time.Duration {
	return time.Duration(s.RequestTimeoutSeconds) * time.Second
}

func defaults() *Settings {
	return &Settings{
		OpenAIModel:           DefaultOpenAIModel,
		CacheTTLSeconds:       int(DefaultCacheTTL / time.Second),
		RequestTimeoutSeconds: int(DefaultRequestTimeout / time.Second),
		Verbose:               true,
		SemanticCache: SemanticCache{
			Enabled:             true,
			SimilarityThreshold: DefaultSemanticCacheThreshold,
			MaxCacheSize:        DefaultSemanticCacheMaxSize,
			TTLSeconds:          int(DefaultSemanticCacheTTL / time.Second),
			FilePath:            DefaultSemanticCacheFile,
			EmbeddingModel:      DefaultEmbeddingModel,
		},
	}
}

// Load builds settings from defaults, an optional YAML file, and environment
// overrides, in that order. An empty path skips the file step.
func Load(path string) (*Settings, error) {
	s := defaults()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, s); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	s.applyEnv()

	if s.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required")
	}
	return s, nil
}

func (s *Settings) applyEnv() {
	setString(&s.OpenAIAPIKey, "OPENAI_API_KEY")
	setString(&s.OpenAIModel, "OPENAI_MODEL")
	setString(&s.NewsAPIKey, "NEWSAPI_KEY")
	setInt(&s.CacheTTLSeconds, "CACHE_TTL")
	setInt(&s.RequestTimeoutSeconds, "REQUEST_TIMEOUT")
	setBool(&s.Verbose, "VERBOSE")

	setString(&s.HistoryDBPath, "HISTORY_DB_PATH")

	setBool(&s.SemanticCache.Enabled, "SEMANTIC_CACHE_ENABLED")
	setFloat(&s.SemanticCache.SimilarityThreshold, "SEMANTIC_CACHE_THRESHOLD")
	setInt(&s.SemanticCache.MaxCacheSize, "SEMANTIC_CACHE_MAX_SIZE")
	setInt(&s.SemanticCache.TTLSeconds, "SEMANTIC_CACHE_TTL")
	setString(&s.SemanticCache.FilePath, "SEMANTIC_CACHE_FILE")
	setString(&s.SemanticCache.EmbeddingModel, "EMBEDDING_MODEL")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat(dst *float64, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
