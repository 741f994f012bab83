//
// Tencent is pleased to support the open source community by making
// trpc-coinsight-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-coinsight-go is licensed under the Apache License Version 2.0.
//
//

package coin

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"trpc.group/trpc-go/trpc-coinsight-go/cache"
	"trpc.group/trpc-go/trpc-coinsight-go/httpclient"
	"trpc.group/trpc-go/trpc-coinsight-go/log"
)

const (
	// defaultVolatileTTL bounds fast-moving data: prices, market caps.
	defaultVolatileTTL = 5 * time.Minute
	// defaultSlowTTL bounds slow-moving data: coin identity, news, the
	// macro index.
	defaultSlowTTL = time.Hour
)

var htmlTagPattern = regexp.MustCompile(`<[^<]+?>`)

// Repository serves coin data through the TTL cache, falling back to stale
// cache entries when the upstream rate limit is hit.
type Repository struct {
	gecko       *GeckoClient
	fearGreed   *FearGreedClient
	news        *NewsClient
	cache       *cache.Cache
	volatileTTL time.Duration
	slowTTL     time.Duration
}

// RepositoryOption configures the repository.
type RepositoryOption func(*Repository)

// WithGeckoClient sets the market data client.
func WithGeckoClient(c *GeckoClient) RepositoryOption {
	return func(r *Repository) { r.gecko = c }
}

// WithFearGreedClient sets the macro index client.
func WithFearGreedClient(c *FearGreedClient) RepositoryOption {
	return func(r *Repository) { r.fearGreed = c }
}

// WithNewsClient sets the news client.
func WithNewsClient(c *NewsClient) RepositoryOption {
	return func(r *Repository) { r.news = c }
}

// WithCache sets the backing TTL cache.
func WithCache(c *cache.Cache) RepositoryOption {
	return func(r *Repository) { r.cache = c }
}

// WithVolatileTTL overrides the TTL for fast-moving data.
func WithVolatileTTL(ttl time.Duration) RepositoryOption {
	return func(r *Repository) {
		if ttl > 0 {
			r.volatileTTL = ttl
		}
	}
}

// WithSlowTTL overrides the TTL for slow-moving data.
func WithSlowTTL(ttl time.Duration) RepositoryOption {
	return func(r *Repository) {
		if ttl > 0 {
			r.slowTTL = ttl
		}
	}
}

// NewRepository creates a repository with default clients unless overridden.
func NewRepository(opts ...RepositoryOption) *Repository {
	r := &Repository{
		volatileTTL: defaultVolatileTTL,
		slowTTL:     defaultSlowTTL,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.gecko == nil {
		r.gecko = NewGeckoClient()
	}
	if r.fearGreed == nil {
		r.fearGreed = NewFearGreedClient()
	}
	if r.news == nil {
		r.news = NewNewsClient("")
	}
	if r.cache == nil {
		r.cache = cache.New(cache.WithDefaultTTL(r.volatileTTL))
	}
	return r
}

// NewsConfigured reports whether the news provider has an API key.
func (r *Repository) NewsConfigured() bool { return r.news.Configured() }

// fetchCached runs fetch through the cache. On a rate-limit failure the last
// known value for the key is served stale when available.
func (r *Repository) fetchCached(
	key string,
	ttl time.Duration,
	fetch func() (any, error),
) (any, error) {
	v, err := r.cache.GetOrFetchTTL(key, fetch, ttl)
	if err == nil {
		return v, nil
	}
	if httpclient.IsRateLimited(err) {
		if stale, ok := r.cache.GetStale(key); ok {
			log.Warnf("rate limited, serving stale data for %s", key)
			return stale, nil
		}
	}
	return nil, err
}

// ResolveID resolves a coin name or symbol to its canonical provider ID.
// The static synonym table is consulted before the remote listing.
func (r *Repository) ResolveID(ctx context.Context, query string) (string, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return "", &NotFoundError{Query: query}
	}
	if id, ok := symbolSynonyms[q]; ok {
		return id, nil
	}

	key := "coin_id_" + q
	v, err := r.fetchCached(key, r.slowTTL, func() (any, error) {
		listings, err := r.gecko.ListCoins(ctx)
		if err != nil {
			return nil, err
		}
		for _, c := range listings {
			if c.ID == q ||
				strings.ToLower(c.Symbol) == q ||
				strings.ToLower(c.Name) == q {
				return c.ID, nil
			}
		}
		return nil, &NotFoundError{Query: query}
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Data returns the detailed coin payload.
func (r *Repository) Data(ctx context.Context, coinID string) (*CoinData, error) {
	key := "coin_data_" + strings.ToLower(coinID)
	v, err := r.fetchCached(key, r.volatileTTL, func() (any, error) {
		return r.gecko.CoinData(ctx, coinID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*CoinData), nil
}

// Market returns the USD market metrics for a coin.
func (r *Repository) Market(ctx context.Context, coinID string) (*MarketData, error) {
	data, err := r.Data(ctx, coinID)
	if err != nil {
		return nil, err
	}
	md := data.MarketData
	return &MarketData{
		CurrentPrice:      md.CurrentPrice["usd"],
		MarketCap:         md.MarketCap["usd"],
		MarketCapRank:     md.MarketCapRank,
		TotalVolume:       md.TotalVolume["usd"],
		High24h:           md.High24h["usd"],
		Low24h:            md.Low24h["usd"],
		PriceChange24h:    md.PriceChange24h,
		PriceChangePct24h: md.PriceChangePct24h,
		PriceChangePct7d:  md.PriceChangePct7d,
		PriceChangePct30d: md.PriceChangePct30d,
		CirculatingSupply: md.CirculatingSupply,
		TotalSupply:       md.TotalSupply,
		MaxSupply:         md.MaxSupply,
		ATH:               md.ATH["usd"],
		ATL:               md.ATL["usd"],
		ATHDate:           md.ATHDate["usd"],
		ATLDate:           md.ATLDate["usd"],
	}, nil
}

// Community returns social metrics for a coin.
func (r *Repository) Community(
	ctx context.Context,
	coinID string,
) (*CommunityData, error) {
	data, err := r.Data(ctx, coinID)
	if err != nil {
		return nil, err
	}
	cd := data.CommunityData
	return &CommunityData{
		TwitterFollowers:     cd.TwitterFollowers,
		RedditSubscribers:    cd.RedditSubscribers,
		RedditAvgPosts48h:    cd.RedditAvgPosts48h,
		RedditAvgComments48h: cd.RedditAvgComments48h,
		TelegramUsers:        cd.TelegramUsers,
	}, nil
}

// Description returns the English coin description with HTML stripped.
func (r *Repository) Description(ctx context.Context, coinID string) (string, error) {
	data, err := r.Data(ctx, coinID)
	if err != nil {
		return "", err
	}
	return htmlTagPattern.ReplaceAllString(data.Description["en"], ""), nil
}

// Historical returns the price series for a coin over the given day window.
func (r *Repository) Historical(
	ctx context.Context,
	coinID string,
	days int,
) ([]PricePoint, error) {
	key := fmt.Sprintf("historical_%s_%d", strings.ToLower(coinID), days)
	v, err := r.fetchCached(key, r.volatileTTL, func() (any, error) {
		chart, err := r.gecko.MarketChart(ctx, coinID, days)
		if err != nil {
			return nil, err
		}
		points := make([]PricePoint, 0, len(chart.Prices))
		for _, sample := range chart.Prices {
			points = append(points, PricePoint{
				Timestamp: time.UnixMilli(int64(sample[0])),
				Price:     sample[1],
			})
		}
		return points, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]PricePoint), nil
}

// News returns recent articles about a coin.
func (r *Repository) News(
	ctx context.Context,
	coinName string,
	coinSymbol string,
	pageSize int,
) ([]NewsArticle, error) {
	if !r.news.Configured() {
		return nil, nil
	}
	key := fmt.Sprintf(
		"news_%s_%s",
		strings.ToLower(coinName),
		strings.ToLower(coinSymbol),
	)
	v, err := r.fetchCached(key, r.slowTTL, func() (any, error) {
		return r.news.CoinNews(ctx, coinName, coinSymbol, pageSize)
	})
	if err != nil {
		return nil, err
	}
	return v.([]NewsArticle), nil
}

// FearGreedIndex returns the macro sentiment reading.
func (r *Repository) FearGreedIndex(ctx context.Context) (FearGreed, error) {
	v, err := r.fetchCached("fear_greed_index", r.slowTTL, func() (any, error) {
		fg, err := r.fearGreed.Index(ctx)
		if err != nil {
			return nil, err
		}
		return fg, nil
	})
	if err != nil {
		// The macro index is advisory; degrade instead of failing.
		return neutralFearGreed, nil
	}
	return v.(FearGreed), nil
}

// Info resolves a query and returns the coin's identity.
func (r *Repository) Info(ctx context.Context, query string) (*Info, error) {
	id, err := r.ResolveID(ctx, query)
	if err != nil {
		return nil, err
	}
	data, err := r.Data(ctx, id)
	if err != nil {
		return nil, err
	}
	name := data.Name
	if name == "" {
		name = query
	}
	return &Info{
		ID:     id,
		Name:   name,
		Symbol: strings.ToUpper(data.Symbol),
	}, nil
}
