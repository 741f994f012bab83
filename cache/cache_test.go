//
// Tencent is pleased to support the open source community by making
// trpc-coinsight-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-coinsight-go is licensed under the Apache License Version 2.0.
//
//

package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	t time.Time
}

func (f *fakeClock) Now() time.Time          { return f.t }
func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestCache(ttl time.Duration) (*Cache, *fakeClock) {
	clk := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	return New(WithDefaultTTL(ttl), WithClock(clk.Now)), clk
}

func TestGet_FreshAndExpired(t *testing.T) {
	c, clk := newTestCache(time.Minute)

	c.Set("k", "v")

	v, ok := c.Get("k")
	require.True(t, ok)
	require.Equal(t, "v", v)

	clk.Advance(59 * time.Second)
	_, ok = c.Get("k")
	require.True(t, ok)

	clk.Advance(time.Second) // age == ttl
	_, ok = c.Get("k")
	require.False(t, ok)

	// Expired entry is purged on read.
	require.Equal(t, 0, c.Len())
}

func TestGet_Absent(t *testing.T) {
	c, _ := newTestCache(time.Minute)
	_, ok := c.Get("missing")
	require.False(t, ok)
}

func TestGetStale_ReturnsExpired(t *testing.T) {
	c, clk := newTestCache(time.Minute)

	c.Set("k", 42)
	clk.Advance(time.Hour)

	_, ok := c.Get("k")
	require.False(t, ok)

	// Get purged the entry; re-set and expire again without a normal read.
	c.Set("k", 42)
	clk.Advance(time.Hour)

	v, ok := c.GetStale("k")
	require.True(t, ok)
	require.Equal(t, 42, v)

	// Stale read does not purge.
	require.Equal(t, 1, c.Len())
}

func TestGetStale_Absent(t *testing.T) {
	c, _ := newTestCache(time.Minute)
	_, ok := c.GetStale("missing")
	require.False(t, ok)
}

func TestSet_ResetsAge(t *testing.T) {
	c, clk := newTestCache(time.Minute)

	c.Set("k", "old")
	clk.Advance(50 * time.Second)
	c.Set("k", "new")
	clk.Advance(50 * time.Second)

	v, ok := c.Get("k")
	require.True(t, ok)
	require.Equal(t, "new", v)
}

func TestSetTTL_PerEntry(t *testing.T) {
	c, clk := newTestCache(time.Minute)

	c.SetTTL("long", "v", time.Hour)
	c.Set("short", "v")

	clk.Advance(30 * time.Minute)

	_, ok := c.Get("short")
	require.False(t, ok)
	_, ok = c.Get("long")
	require.True(t, ok)
}

func TestGetOrFetch_ProducerCalledOnce(t *testing.T) {
	c, _ := newTestCache(time.Minute)

	calls := 0
	producer := func() (any, error) {
		calls++
		return "fetched", nil
	}

	for i := 0; i < 5; i++ {
		v, err := c.GetOrFetch("k", producer)
		require.NoError(t, err)
		require.Equal(t, "fetched", v)
	}
	require.Equal(t, 1, calls)
}

func TestGetOrFetch_ProducerErrorNotCached(t *testing.T) {
	c, _ := newTestCache(time.Minute)

	wantErr := errors.New("boom")
	calls := 0
	producer := func() (any, error) {
		calls++
		return nil, wantErr
	}

	_, err := c.GetOrFetch("k", producer)
	require.ErrorIs(t, err, wantErr)
	_, err = c.GetOrFetch("k", producer)
	require.ErrorIs(t, err, wantErr)
	require.Equal(t, 2, calls)
	require.Equal(t, 0, c.Len())
}

func TestGetOrFetch_RefetchAfterExpiry(t *testing.T) {
	c, clk := newTestCache(time.Minute)

	calls := 0
	producer := func() (any, error) {
		calls++
		return calls, nil
	}

	v, err := c.GetOrFetch("k", producer)
	require.NoError(t, err)
	require.Equal(t, 1, v)

	clk.Advance(2 * time.Minute)

	v, err = c.GetOrFetch("k", producer)
	require.NoError(t, err)
	require.Equal(t, 2, v)
}

func TestGetOrFetch_ExpiredEntrySurvivesFailedRefresh(t *testing.T) {
	c, clk := newTestCache(time.Minute)

	c.Set("k", "cached")
	clk.Advance(2 * time.Minute)

	_, err := c.GetOrFetch("k", func() (any, error) {
		return nil, errors.New("upstream down")
	})
	require.Error(t, err)

	// The expired entry must still be there for a stale read.
	v, ok := c.GetStale("k")
	require.True(t, ok)
	require.Equal(t, "cached", v)
}

func TestInvalidateAndClear(t *testing.T) {
	c, _ := newTestCache(time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)

	c.Invalidate("a")
	_, ok := c.Get("a")
	require.False(t, ok)
	_, ok = c.Get("b")
	require.True(t, ok)

	c.Clear()
	require.Equal(t, 0, c.Len())
}
