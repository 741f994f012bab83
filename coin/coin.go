//
// Tencent is pleased to support the open source community by making
// trpc-coinsight-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-coinsight-go is licensed under the Apache License Version 2.0.
//
//

// Package coin provides cached access to cryptocurrency market, community,
// news and macro sentiment data.
package coin

import (
	"fmt"
	"strings"
	"time"
)

// Info identifies a resolved cryptocurrency.
type Info struct {
	ID     string
	Name   string
	Symbol string
}

// MarketData is the USD view of a coin's market metrics.
type MarketData struct {
	CurrentPrice      float64
	MarketCap         float64
	MarketCapRank     int
	TotalVolume       float64
	High24h           float64
	Low24h            float64
	PriceChange24h    float64
	PriceChangePct24h float64
	PriceChangePct7d  float64
	PriceChangePct30d float64
	CirculatingSupply float64
	TotalSupply       float64
	MaxSupply         float64
	ATH               float64
	ATL               float64
	ATHDate           string
	ATLDate           string
}

// CommunityData aggregates social metrics for a coin.
type CommunityData struct {
	TwitterFollowers     int64
	RedditSubscribers    int64
	RedditAvgPosts48h    float64
	RedditAvgComments48h float64
	TelegramUsers        int64
}

// PricePoint is one sample of a historical price series.
type PricePoint struct {
	Timestamp time.Time
	Price     float64
}

// FearGreed is the macro market sentiment index.
type FearGreed struct {
	Value          int
	Classification string
	Timestamp      string
}

// NewsArticle is a single news item about a coin.
type NewsArticle struct {
	Title       string
	Description string
	URL         string
	Source      string
	PublishedAt string
}

// NotFoundError reports that a coin name or symbol could not be resolved.
// Suggestions may be filled in by callers from previously resolved coins.
type NotFoundError struct {
	Query       string
	Suggestions []string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("could not find cryptocurrency: %s", e.Query)
	}
	return fmt.Sprintf(
		"could not find cryptocurrency: %s (known coins: %s)",
		e.Query, strings.Join(e.Suggestions, ", "),
	)
}

// symbolSynonyms maps common symbols to canonical CoinGecko IDs, avoiding a
// full remote listing search for the usual suspects.
var symbolSynonyms = map[string]string{
	"btc":   "bitcoin",
	"eth":   "ethereum",
	"usdt":  "tether",
	"bnb":   "binancecoin",
	"sol":   "solana",
	"xrp":   "ripple",
	"usdc":  "usd-coin",
	"ada":   "cardano",
	"doge":  "dogecoin",
	"avax":  "avalanche-2",
	"dot":   "polkadot",
	"matic": "matic-network",
	"link":  "chainlink",
	"uni":   "uniswap",
	"atom":  "cosmos",
}
