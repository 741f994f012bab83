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
	"net/url"
	"strconv"

	"trpc.group/trpc-go/trpc-coinsight-go/httpclient"
)

const defaultGeckoBaseURL = "https://api.coingecko.com/api/v3"

// Listing is one row of the remote coin listing.
type Listing struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// CoinData is the detailed per-coin payload from the market data provider.
type CoinData struct {
	ID            string            `json:"id"`
	Symbol        string            `json:"symbol"`
	Name          string            `json:"name"`
	Description   map[string]string `json:"description"`
	MarketData    RawMarketData     `json:"market_data"`
	CommunityData RawCommunityData  `json:"community_data"`
}

// RawMarketData carries per-currency maps as returned by the provider.
type RawMarketData struct {
	CurrentPrice      map[string]float64 `json:"current_price"`
	MarketCap         map[string]float64 `json:"market_cap"`
	MarketCapRank     int                `json:"market_cap_rank"`
	TotalVolume       map[string]float64 `json:"total_volume"`
	High24h           map[string]float64 `json:"high_24h"`
	Low24h            map[string]float64 `json:"low_24h"`
	PriceChange24h    float64            `json:"price_change_24h"`
	PriceChangePct24h float64            `json:"price_change_percentage_24h"`
	PriceChangePct7d  float64            `json:"price_change_percentage_7d"`
	PriceChangePct30d float64            `json:"price_change_percentage_30d"`
	CirculatingSupply float64            `json:"circulating_supply"`
	TotalSupply       float64            `json:"total_supply"`
	MaxSupply         float64            `json:"max_supply"`
	ATH               map[string]float64 `json:"ath"`
	ATL               map[string]float64 `json:"atl"`
	ATHDate           map[string]string  `json:"ath_date"`
	ATLDate           map[string]string  `json:"atl_date"`
}

// RawCommunityData carries the provider's community block.
type RawCommunityData struct {
	TwitterFollowers     int64   `json:"twitter_followers"`
	RedditSubscribers    int64   `json:"reddit_subscribers"`
	RedditAvgPosts48h    float64 `json:"reddit_average_posts_48h"`
	RedditAvgComments48h float64 `json:"reddit_average_comments_48h"`
	TelegramUsers        int64   `json:"telegram_channel_user_count"`
}

// MarketChart is a historical price series, provider-shaped:
// each sample is [unix_millis, value].
type MarketChart struct {
	Prices [][2]float64 `json:"prices"`
}

// GeckoClient talks to the CoinGecko HTTP API.
type GeckoClient struct {
	http *httpclient.Client
}

// GeckoOption configures the CoinGecko client.
type GeckoOption func(*geckoConfig)

type geckoConfig struct {
	baseURL  string
	httpOpts []httpclient.Option
}

// WithGeckoBaseURL overrides the provider base URL. Intended for tests.
func WithGeckoBaseURL(baseURL string) GeckoOption {
	return func(c *geckoConfig) { c.baseURL = baseURL }
}

// WithGeckoHTTPOptions forwards options to the underlying HTTP client.
func WithGeckoHTTPOptions(opts ...httpclient.Option) GeckoOption {
	return func(c *geckoConfig) { c.httpOpts = append(c.httpOpts, opts...) }
}

// NewGeckoClient creates a CoinGecko client.
func NewGeckoClient(opts ...GeckoOption) *GeckoClient {
	cfg := geckoConfig{baseURL: defaultGeckoBaseURL}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &GeckoClient{http: httpclient.New(cfg.baseURL, cfg.httpOpts...)}
}

// ListCoins fetches the full coin listing.
func (c *GeckoClient) ListCoins(ctx context.Context) ([]Listing, error) {
	var out []Listing
	if err := c.http.Get(ctx, "coins/list", nil, &out); err != nil {
		return nil, fmt.Errorf("list coins: %w", err)
	}
	return out, nil
}

// CoinData fetches detailed data for one coin.
func (c *GeckoClient) CoinData(ctx context.Context, id string) (*CoinData, error) {
	params := url.Values{
		"localization":   []string{"false"},
		"tickers":        []string{"false"},
		"community_data": []string{"true"},
		"developer_data": []string{"false"},
		"sparkline":      []string{"false"},
	}
	var out CoinData
	if err := c.http.Get(ctx, "coins/"+id, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MarketChart fetches the historical price series for a coin.
func (c *GeckoClient) MarketChart(
	ctx context.Context,
	id string,
	days int,
) (*MarketChart, error) {
	interval := "daily"
	if days <= 1 {
		interval = "hourly"
	}
	params := url.Values{
		"vs_currency": []string{"usd"},
		"days":        []string{strconv.Itoa(days)},
		"interval":    []string{interval},
	}
	var out MarketChart
	err := c.http.Get(ctx, "coins/"+id+"/market_chart", params, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
