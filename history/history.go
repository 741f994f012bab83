//
// Tencent is pleased to support the open source community by making
// trpc-coinsight-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-coinsight-go is licensed under the Apache License Version 2.0.
//
//

// Package history stores past analysis reports so the agent can answer
// "what did you tell me about X" without refetching market data.
package history

import (
	"context"
	"time"
)

// Kind names one analysis discipline.
type Kind string

// Analysis kinds persisted alongside reports.
const (
	KindFundamental Kind = "fundamental"
	KindPrice       Kind = "price"
	KindSentiment   Kind = "sentiment"
	KindTechnical   Kind = "technical"
)

// Record is one stored analysis report. A coin keeps at most one record per
// kind; saving again overwrites the previous report.
type Record struct {
	CoinID    string
	CoinName  string
	Kind      Kind
	Report    string
	CreatedAt time.Time
}

// Store persists analysis records.
type Store interface {
	// Save inserts or replaces the record for (CoinID, Kind).
	Save(ctx context.Context, rec Record) error

	// Get returns the stored record for a coin and kind, with ok=false
	// when none exists.
	Get(ctx context.Context, coinID string, kind Kind) (Record, bool, error)

	// List returns every stored record for a coin, most recent first.
	List(ctx context.Context, coinID string) ([]Record, error)

	// Clear removes every stored record.
	Clear(ctx context.Context) error

	// Close releases the backing resources.
	Close() error
}
