//
// Tencent is pleased to support the open source community by making
// trpc-coinsight-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-coinsight-go is licensed under the Apache License Version 2.0.
//
//

package history

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

type memoryKey struct {
	coinID string
	kind   Kind
}

// MemoryStore keeps records in process memory. Used when no database path
// is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[memoryKey]Record
	now     func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[memoryKey]Record),
		now:     time.Now,
	}
}

// Save inserts or replaces the record for (CoinID, Kind).
func (s *MemoryStore) Save(ctx context.Context, rec Record) error {
	coinID := strings.ToLower(strings.TrimSpace(rec.CoinID))
	if coinID == "" {
		return fmt.Errorf("save analysis: empty coin id")
	}
	rec.CoinID = coinID
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[memoryKey{coinID: coinID, kind: rec.Kind}] = rec
	return nil
}

// Get returns the stored record for a coin and kind.
func (s *MemoryStore) Get(
	ctx context.Context,
	coinID string,
	kind Kind,
) (Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[memoryKey{
		coinID: strings.ToLower(strings.TrimSpace(coinID)),
		kind:   kind,
	}]
	return rec, ok, nil
}

// List returns every stored record for a coin, most recent first.
func (s *MemoryStore) List(
	ctx context.Context,
	coinID string,
) ([]Record, error) {
	id := strings.ToLower(strings.TrimSpace(coinID))
	s.mu.RLock()
	defer s.mu.RUnlock()

	var records []Record
	for key, rec := range s.records {
		if key.coinID == id {
			records = append(records, rec)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.After(records[j].CreatedAt)
		}
		return records[i].Kind < records[j].Kind
	})
	return records, nil
}

// Clear removes every stored record.
func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[memoryKey]Record)
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }
