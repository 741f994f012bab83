//
// Tencent is pleased to support the open source community by making
// trpc-coinsight-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-coinsight-go is licensed under the Apache License Version 2.0.
//
//

// Package cache provides an in-memory key/value cache with TTL expiry and
// explicit stale reads for degraded-mode fallbacks.
package cache

import (
	"sync"
	"time"
)

// DefaultTTL is applied when Set/GetOrFetch is called without an explicit TTL.
const DefaultTTL = 5 * time.Minute

type entry struct {
	value    any
	storedAt time.Time
	ttl      time.Duration
}

// Cache is a TTL-bounded in-memory store. Expired entries are purged lazily
// on read; there is no background sweeper.
type Cache struct {
	mu         sync.RWMutex
	entries    map[string]entry
	defaultTTL time.Duration
	now        func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithDefaultTTL overrides the default entry lifetime.
func WithDefaultTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.defaultTTL = ttl
		}
	}
}

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates an empty cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries:    make(map[string]entry),
		defaultTTL: DefaultTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the fresh value for key. An entry whose age reached its TTL is
// removed and reported as a miss.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.storedAt) >= e.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

// GetStale returns the value for key regardless of expiry, without purging.
// It is the degraded-mode read used when upstream data cannot be refreshed.
func (c *Cache) GetStale(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return e.value, true
}

// Set stores value under key with the default TTL, resetting its age.
func (c *Cache) Set(key string, value any) {
	c.SetTTL(key, value, c.defaultTTL)
}

// SetTTL stores value under key with an explicit TTL, resetting its age.
func (c *Cache) SetTTL(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, storedAt: c.now(), ttl: ttl}
}

// GetOrFetch returns the fresh cached value, or calls producer exactly once,
// stores its result under the default TTL and returns it. A producer error is
// returned as-is and nothing is cached.
func (c *Cache) GetOrFetch(key string, producer func() (any, error)) (any, error) {
	return c.GetOrFetchTTL(key, producer, c.defaultTTL)
}

// GetOrFetchTTL is GetOrFetch with an explicit TTL for the stored value.
// The freshness check does not purge an expired entry, so when the producer
// fails the previous value is still available through GetStale.
func (c *Cache) GetOrFetchTTL(
	key string,
	producer func() (any, error),
	ttl time.Duration,
) (any, error) {
	if v, ok := c.getFresh(key); ok {
		return v, nil
	}
	v, err := producer()
	if err != nil {
		return nil, err
	}
	c.SetTTL(key, v, ttl)
	return v, nil
}

// getFresh reads a fresh value without removing an expired entry.
func (c *Cache) getFresh(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || c.now().Sub(e.storedAt) >= e.ttl {
		return nil, false
	}
	return e.value, true
}

// Invalidate removes key from the cache.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// Len reports the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
