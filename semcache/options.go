//
// Tencent is pleased to support the open source community by making
// trpc-coinsight-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-coinsight-go is licensed under the Apache License Version 2.0.
//
//

package semcache

import (
	"time"

	"trpc.group/trpc-go/trpc-coinsight-go/embedder"
)

const (
	defaultThreshold  = 0.85
	defaultMaxEntries = 1000
	defaultTTL        = time.Hour
	defaultFilePath   = "semantic_cache.json"
	defaultModelName  = "text-embedding-3-small"
)

type config struct {
	embedder   embedder.Embedder
	threshold  float64
	maxEntries int
	ttl        time.Duration
	filePath   string
	modelName  string
	now        func() time.Time
}

func defaultConfig() config {
	return config{
		threshold:  defaultThreshold,
		maxEntries: defaultMaxEntries,
		ttl:        defaultTTL,
		filePath:   defaultFilePath,
		modelName:  defaultModelName,
		now:        time.Now,
	}
}

// Option configures the semantic cache.
type Option func(*config)

// WithEmbedder sets the embedding provider. Required for a useful cache; a
// cache without one misses every lookup.
func WithEmbedder(e embedder.Embedder) Option {
	return func(c *config) { c.embedder = e }
}

// WithSimilarityThreshold sets the minimum cosine similarity for a hit.
func WithSimilarityThreshold(threshold float64) Option {
	return func(c *config) {
		if threshold > 0 && threshold <= 1 {
			c.threshold = threshold
		}
	}
}

// WithMaxEntries bounds the number of cached answers.
func WithMaxEntries(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxEntries = n
		}
	}
}

// WithTTL sets the lifetime of a cached answer. Fixed at insertion.
func WithTTL(ttl time.Duration) Option {
	return func(c *config) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithFilePath sets the JSON persistence location.
func WithFilePath(path string) Option {
	return func(c *config) {
		if path != "" {
			c.filePath = path
		}
	}
}

// WithModelName records the embedding model name in the persisted metadata.
func WithModelName(name string) Option {
	return func(c *config) {
		if name != "" {
			c.modelName = name
		}
	}
}

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.now = now
		}
	}
}
