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
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func openTempSQLiteStore(t *testing.T, opts ...SQLiteOpt) *SQLiteStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := OpenSQLite(path, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })
	return s
}

// storesUnderTest runs the same suite against both implementations.
func storesUnderTest(t *testing.T) map[string]Store {
	t.Helper()
	return map[string]Store{
		"sqlite": openTempSQLiteStore(t),
		"memory": NewMemoryStore(),
	}
}

func TestStore_SaveAndGet(t *testing.T) {
	for name, s := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			rec := Record{
				CoinID:   "bitcoin",
				CoinName: "Bitcoin",
				Kind:     KindPrice,
				Report:   "price report",
			}
			require.NoError(t, s.Save(ctx, rec))

			got, ok, err := s.Get(ctx, "bitcoin", KindPrice)
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, "price report", got.Report)
			require.Equal(t, "Bitcoin", got.CoinName)
			require.False(t, got.CreatedAt.IsZero())

			_, ok, err = s.Get(ctx, "bitcoin", KindTechnical)
			require.NoError(t, err)
			require.False(t, ok)
		})
	}
}

func TestStore_SaveOverwritesSameKind(t *testing.T) {
	for name, s := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			first := Record{
				CoinID: "bitcoin", CoinName: "Bitcoin",
				Kind: KindPrice, Report: "old",
				CreatedAt: time.Unix(1_700_000_000, 0),
			}
			require.NoError(t, s.Save(ctx, first))

			second := first
			second.Report = "new"
			second.CreatedAt = time.Unix(1_700_000_100, 0)
			require.NoError(t, s.Save(ctx, second))

			got, ok, err := s.Get(ctx, "bitcoin", KindPrice)
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, "new", got.Report)

			list, err := s.List(ctx, "bitcoin")
			require.NoError(t, err)
			require.Len(t, list, 1)
		})
	}
}

func TestStore_CoinIDNormalized(t *testing.T) {
	for name, s := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Save(ctx, Record{
				CoinID: "  Bitcoin ", CoinName: "Bitcoin",
				Kind: KindSentiment, Report: "r",
			}))

			_, ok, err := s.Get(ctx, "bitcoin", KindSentiment)
			require.NoError(t, err)
			require.True(t, ok)
		})
	}
}

func TestStore_ListOrdersByRecency(t *testing.T) {
	for name, s := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			base := time.Unix(1_700_000_000, 0)
			for i, kind := range []Kind{KindFundamental, KindPrice, KindTechnical} {
				require.NoError(t, s.Save(ctx, Record{
					CoinID: "bitcoin", CoinName: "Bitcoin",
					Kind: kind, Report: string(kind),
					CreatedAt: base.Add(time.Duration(i) * time.Minute),
				}))
			}
			require.NoError(t, s.Save(ctx, Record{
				CoinID: "ethereum", CoinName: "Ethereum",
				Kind: KindPrice, Report: "other coin",
				CreatedAt: base,
			}))

			list, err := s.List(ctx, "bitcoin")
			require.NoError(t, err)
			require.Len(t, list, 3)
			require.Equal(t, KindTechnical, list[0].Kind)
			require.Equal(t, KindPrice, list[1].Kind)
			require.Equal(t, KindFundamental, list[2].Kind)
		})
	}
}

func TestStore_ClearRemovesEverything(t *testing.T) {
	for name, s := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Save(ctx, Record{
				CoinID: "bitcoin", CoinName: "Bitcoin",
				Kind: KindPrice, Report: "r1",
			}))
			require.NoError(t, s.Save(ctx, Record{
				CoinID: "ethereum", CoinName: "Ethereum",
				Kind: KindTechnical, Report: "r2",
			}))

			require.NoError(t, s.Clear(ctx))

			_, ok, err := s.Get(ctx, "bitcoin", KindPrice)
			require.NoError(t, err)
			require.False(t, ok)
			records, err := s.List(ctx, "ethereum")
			require.NoError(t, err)
			require.Empty(t, records)
		})
	}
}

func TestStore_RejectsEmptyCoinID(t *testing.T) {
	for name, s := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			err := s.Save(context.Background(), Record{
				Kind: KindPrice, Report: "r",
			})
			require.Error(t, err)
		})
	}
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	s, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, Record{
		CoinID: "bitcoin", CoinName: "Bitcoin",
		Kind: KindPrice, Report: "persisted",
	}))
	require.NoError(t, s.Close())

	reopened, err := OpenSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, ok, err := reopened.Get(ctx, "bitcoin", KindPrice)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "persisted", got.Report)
}
