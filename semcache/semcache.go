//
// Tencent is pleased to support the open source community by making
// trpc-coinsight-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-coinsight-go is licensed under the Apache License Version 2.0.
//
//

// Package semcache caches agent answers keyed by embedding similarity, so a
// rephrased question can reuse the answer to an earlier one. All internal
// failures (embedding service, disk, malformed files) degrade to cache
// misses; nothing in this package returns an error to the caller.
package semcache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"math"
	"strings"
	"sync"
	"time"

	"trpc.group/trpc-go/trpc-coinsight-go/embedder"
	"trpc.group/trpc-go/trpc-coinsight-go/log"
)

// rejectPhrases marks answers that must never be cached. Matching is
// case-insensitive substring.
var rejectPhrases = []string{
	"i encountered an error",
	"rate limit exceeded",
	"could not find cryptocurrency",
	"please try again",
}

const minCacheableLen = 20

var errNoEmbedder = errors.New("no embedder configured")

type entry struct {
	query     string
	response  string
	embedding []float64
	storedAt  time.Time
	expiresAt time.Time
	hitCount  int
}

// Cache is an embedding-similarity response cache with JSON persistence.
// Expiry is fixed at insertion; hits never extend an entry's life, and
// eviction is by oldest insertion regardless of hit count.
type Cache struct {
	mu       sync.Mutex
	entries  map[string]*entry
	embedder embedder.Embedder

	threshold  float64
	maxEntries int
	ttl        time.Duration
	filePath   string
	modelName  string
	now        func() time.Time
}

// New creates a semantic cache and loads any persisted entries from the
// configured file. A missing or unreadable file yields an empty cache.
func New(opts ...Option) *Cache {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	c := &Cache{
		entries:    make(map[string]*entry),
		embedder:   cfg.embedder,
		threshold:  cfg.threshold,
		maxEntries: cfg.maxEntries,
		ttl:        cfg.ttl,
		filePath:   cfg.filePath,
		modelName:  cfg.modelName,
		now:        cfg.now,
	}
	c.loadFromFile()
	return c
}

// Get returns the cached answer for the most similar known query, if its
// similarity reaches the threshold. Embedding failures are treated as a miss.
func (c *Cache) Get(ctx context.Context, query string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.purgeExpired()
	if len(c.entries) == 0 {
		return "", false
	}

	vec, err := c.embed(ctx, query)
	if err != nil {
		log.Debugf("semantic cache lookup skipped: %v", err)
		return "", false
	}

	var (
		best    *entry
		bestSim float64
	)
	for _, e := range c.entries {
		if sim := cosineSimilarity(vec, e.embedding); sim > bestSim {
			bestSim = sim
			best = e
		}
	}
	if best == nil || bestSim < c.threshold {
		return "", false
	}
	best.hitCount++
	return best.response, true
}

// Set caches a query/answer pair and persists the cache. Answers that look
// like errors or are too short are silently dropped.
func (c *Cache) Set(ctx context.Context, query, answer string) {
	if !cacheable(answer) {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Embed before evicting so a failed embedding costs no cached answer.
	vec, err := c.embed(ctx, query)
	if err != nil {
		log.Debugf("semantic cache insert skipped: %v", err)
		return
	}

	c.purgeExpired()
	c.evictOldest()

	now := c.now()
	key := queryKey(query)
	c.entries[key] = &entry{
		query:     query,
		response:  answer,
		embedding: vec,
		storedAt:  now,
		expiresAt: now.Add(c.ttl),
	}
	c.saveToFile()
}

// Clear drops every entry and removes the persistence file.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
	c.removeFile()
}

// Stats describes the cache's current occupancy and configuration.
type Stats struct {
	Size                int
	MaxSize             int
	TotalHits           int
	AverageHitsPerEntry float64
	SimilarityThreshold float64
	TTL                 time.Duration
}

// Stats returns a snapshot of the cache state after purging expired entries.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.purgeExpired()
	total := 0
	for _, e := range c.entries {
		total += e.hitCount
	}
	avg := 0.0
	if len(c.entries) > 0 {
		avg = float64(total) / float64(len(c.entries))
	}
	return Stats{
		Size:                len(c.entries),
		MaxSize:             c.maxEntries,
		TotalHits:           total,
		AverageHitsPerEntry: avg,
		SimilarityThreshold: c.threshold,
		TTL:                 c.ttl,
	}
}

func (c *Cache) embed(ctx context.Context, text string) ([]float64, error) {
	if c.embedder == nil {
		return nil, errNoEmbedder
	}
	return c.embedder.GetEmbedding(ctx, text)
}

func (c *Cache) purgeExpired() {
	now := c.now()
	for key, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}

// evictOldest makes room for one insertion when the cache is full. Oldest
// means earliest storedAt, independent of hit counts.
func (c *Cache) evictOldest() {
	if len(c.entries) < c.maxEntries {
		return
	}
	var (
		oldestKey string
		oldestAt  time.Time
	)
	for key, e := range c.entries {
		if oldestKey == "" || e.storedAt.Before(oldestAt) {
			oldestKey = key
			oldestAt = e.storedAt
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

func queryKey(query string) string {
	sum := md5.Sum([]byte(query))
	return hex.EncodeToString(sum[:])
}

func cacheable(answer string) bool {
	trimmed := strings.TrimSpace(answer)
	if len(trimmed) < minCacheableLen {
		return false
	}
	lower := strings.ToLower(trimmed)
	for _, phrase := range rejectPhrases {
		if strings.Contains(lower, phrase) {
			return false
		}
	}
	return true
}

// cosineSimilarity returns dot(a,b)/(|a||b|), or 0 when either vector has
// zero norm or the lengths differ.
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
