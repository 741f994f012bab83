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
	"encoding/json"
	"os"
	"time"

	"trpc.group/trpc-go/trpc-coinsight-go/log"
)

const documentVersion = "1.0"

type persistedEntry struct {
	Key       string    `json:"key"`
	Query     string    `json:"query"`
	Response  string    `json:"response"`
	Embedding []float64 `json:"embedding"`
	Timestamp int64     `json:"timestamp"`
	ExpiresAt int64     `json:"expires_at"`
	HitCount  int       `json:"hit_count"`
}

type documentMetadata struct {
	SimilarityThreshold float64 `json:"similarity_threshold"`
	MaxCacheSize        int     `json:"max_cache_size"`
	TTL                 int64   `json:"ttl"`
	EmbeddingModel      string  `json:"embedding_model"`
}

type cacheDocument struct {
	Version  string           `json:"version"`
	Entries  []persistedEntry `json:"entries"`
	Metadata documentMetadata `json:"metadata"`
}

// loadFromFile rebuilds the in-memory index from the persistence file.
// Missing, unreadable, or malformed files leave the cache empty; entries
// already expired at load time are skipped.
func (c *Cache) loadFromFile() {
	raw, err := os.ReadFile(c.filePath)
	if err != nil {
		return
	}
	var doc cacheDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		log.Warnf("semantic cache file %s unreadable, starting empty: %v",
			c.filePath, err)
		return
	}

	now := c.now()
	for _, pe := range doc.Entries {
		if pe.Key == "" {
			continue
		}
		expiresAt := time.Unix(pe.ExpiresAt, 0)
		if !now.Before(expiresAt) {
			continue
		}
		c.entries[pe.Key] = &entry{
			query:     pe.Query,
			response:  pe.Response,
			embedding: pe.Embedding,
			storedAt:  time.Unix(pe.Timestamp, 0),
			expiresAt: expiresAt,
			hitCount:  pe.HitCount,
		}
	}
}

// saveToFile writes the whole cache atomically: the document goes to a temp
// file first and replaces the target via rename. Write failures are logged
// and swallowed.
func (c *Cache) saveToFile() {
	doc := cacheDocument{
		Version: documentVersion,
		Entries: make([]persistedEntry, 0, len(c.entries)),
		Metadata: documentMetadata{
			SimilarityThreshold: c.threshold,
			MaxCacheSize:        c.maxEntries,
			TTL:                 int64(c.ttl / time.Second),
			EmbeddingModel:      c.modelName,
		},
	}
	for key, e := range c.entries {
		doc.Entries = append(doc.Entries, persistedEntry{
			Key:       key,
			Query:     e.query,
			Response:  e.response,
			Embedding: e.embedding,
			Timestamp: e.storedAt.Unix(),
			ExpiresAt: e.expiresAt.Unix(),
			HitCount:  e.hitCount,
		})
	}

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		log.Warnf("semantic cache not persisted: %v", err)
		return
	}
	tmpPath := c.filePath + ".tmp"
	if err := os.WriteFile(tmpPath, raw, 0o644); err != nil {
		log.Warnf("semantic cache not persisted: %v", err)
		return
	}
	if err := os.Rename(tmpPath, c.filePath); err != nil {
		log.Warnf("semantic cache not persisted: %v", err)
		os.Remove(tmpPath)
	}
}

func (c *Cache) removeFile() {
	if err := os.Remove(c.filePath); err != nil && !os.IsNotExist(err) {
		log.Warnf("semantic cache file not removed: %v", err)
	}
}
