//
// Tencent is pleased to support the open source community by making
// trpc-coinsight-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-coinsight-go is licensed under the Apache License Version 2.0.
//
//

package analyzer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-coinsight-go/coin"
)

// stubSource serves canned repository data to the analyzers.
type stubSource struct {
	data       *coin.CoinData
	market     *coin.MarketData
	community  *coin.CommunityData
	desc       string
	historical map[int][]coin.PricePoint
	news       []coin.NewsArticle
	newsErr    error
	fearGreed  coin.FearGreed
	hasNewsKey bool
}

func (s *stubSource) Data(ctx context.Context, coinID string) (*coin.CoinData, error) {
	if s.data == nil {
		return nil, errors.New("no data")
	}
	return s.data, nil
}

func (s *stubSource) Market(ctx context.Context, coinID string) (*coin.MarketData, error) {
	if s.market == nil {
		return nil, errors.New("no market data")
	}
	return s.market, nil
}

func (s *stubSource) Community(ctx context.Context, coinID string) (*coin.CommunityData, error) {
	if s.community == nil {
		return nil, errors.New("no community data")
	}
	return s.community, nil
}

func (s *stubSource) Description(ctx context.Context, coinID string) (string, error) {
	return s.desc, nil
}

func (s *stubSource) Historical(
	ctx context.Context,
	coinID string,
	days int,
) ([]coin.PricePoint, error) {
	return s.historical[days], nil
}

func (s *stubSource) News(
	ctx context.Context,
	coinName, coinSymbol string,
	pageSize int,
) ([]coin.NewsArticle, error) {
	return s.news, s.newsErr
}

func (s *stubSource) FearGreedIndex(ctx context.Context) (coin.FearGreed, error) {
	return s.fearGreed, nil
}

func (s *stubSource) NewsConfigured() bool { return s.hasNewsKey }

func points(prices ...float64) []coin.PricePoint {
	out := make([]coin.PricePoint, len(prices))
	base := time.Unix(1_700_000_000, 0)
	for i, p := range prices {
		out[i] = coin.PricePoint{
			Timestamp: base.Add(time.Duration(i) * 24 * time.Hour),
			Price:     p,
		}
	}
	return out
}

func flatSeries(n int, price float64) []coin.PricePoint {
	prices := make([]float64, n)
	for i := range prices {
		prices[i] = price
	}
	return points(prices...)
}

func TestSMA(t *testing.T) {
	prices := []float64{1, 2, 3, 4, 5}

	avg, ok := sma(prices, 3)
	require.True(t, ok)
	require.Equal(t, 4.0, avg)

	avg, ok = sma(prices, 5)
	require.True(t, ok)
	require.Equal(t, 3.0, avg)

	_, ok = sma(prices, 6)
	require.False(t, ok)
}

func TestRSI(t *testing.T) {
	up := make([]float64, 20)
	for i := range up {
		up[i] = float64(100 + i)
	}
	v, ok := rsi(up, 14)
	require.True(t, ok)
	require.Equal(t, 100.0, v)

	down := make([]float64, 20)
	for i := range down {
		down[i] = float64(200 - i)
	}
	v, ok = rsi(down, 14)
	require.True(t, ok)
	require.Equal(t, 0.0, v)

	// Alternating +1/-1 gains balance out to RSI 50.
	alternating := make([]float64, 21)
	for i := range alternating {
		alternating[i] = 100 + float64(i%2)
	}
	v, ok = rsi(alternating, 14)
	require.True(t, ok)
	require.InDelta(t, 50.0, v, 1e-9)

	_, ok = rsi([]float64{1, 2, 3}, 14)
	require.False(t, ok)
}

func TestMeanStdev(t *testing.T) {
	mean, stdev := meanStdev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	require.Equal(t, 5.0, mean)
	require.InDelta(t, 2.138, stdev, 0.001)

	mean, stdev = meanStdev([]float64{3})
	require.Equal(t, 3.0, mean)
	require.Equal(t, 0.0, stdev)
}

func TestGrouped(t *testing.T) {
	require.Equal(t, "1,234,567", grouped(1234567, 0))
	require.Equal(t, "1,234.57", grouped(1234.567, 2))
	require.Equal(t, "999", grouped(999, 0))
	require.Equal(t, "-12,000", grouped(-12000, 0))
	require.Equal(t, "0.50", grouped(0.5, 2))
}

func TestSentimentScore(t *testing.T) {
	tests := []struct {
		name     string
		change7d float64
		posts    float64
		comments float64
		news     int
		want     int
	}{
		{"strong rally full engagement", 12, 25, 300, 10, 80},
		{"moderate rally", 7, 0, 0, 0, 60},
		{"slight gain", 2, 0, 0, 0, 55},
		{"slight loss", -2, 0, 0, 0, 45},
		{"moderate loss", -7, 0, 0, 0, 40},
		{"crash", -20, 0, 0, 0, 35},
		{"news only", 2, 0, 0, 5, 58},
		{"few articles", 2, 0, 0, 3, 57},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sentimentScore(tt.change7d, tt.posts, tt.comments, tt.news)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestSentimentClass(t *testing.T) {
	require.Equal(t, "Very Positive", sentimentClass(70))
	require.Equal(t, "Positive", sentimentClass(65))
	require.Equal(t, "Neutral", sentimentClass(50))
	require.Equal(t, "Negative", sentimentClass(35))
	require.Equal(t, "Very Negative", sentimentClass(20))
}

func TestFundamental_LiquidityBands(t *testing.T) {
	source := &stubSource{
		market: &coin.MarketData{
			CurrentPrice:      50000,
			MarketCap:         1_000_000_000,
			MarketCapRank:     1,
			TotalVolume:       120_000_000,
			CirculatingSupply: 19_000_000,
			TotalSupply:       21_000_000,
			MaxSupply:         21_000_000,
		},
		desc: "Digital gold.",
	}

	report, err := NewFundamental(source).Analyze(
		context.Background(), "bitcoin", "Bitcoin")
	require.NoError(t, err)
	require.Contains(t, report, "**Fundamental Analysis for Bitcoin:**")
	require.Contains(t, report, "Market Cap: $1,000,000,000 (Rank #1)")
	require.Contains(t, report, "Volume/Market Cap Ratio: 12.00% (healthy liquidity)")
	require.Contains(t, report, "Excellent liquidity")
	require.Contains(t, report, "Supply Inflation: 10.53%")
	require.Contains(t, report, "Fully Diluted Valuation: $1,050,000,000,000")
	require.Contains(t, report, "Digital gold.")

	// Thin volume flips the assessment.
	source.market.TotalVolume = 10_000_000
	report, err = NewFundamental(source).Analyze(
		context.Background(), "bitcoin", "Bitcoin")
	require.NoError(t, err)
	require.Contains(t, report, "(low liquidity)")
	require.Contains(t, report, "Low liquidity. Large trades")
}

func TestFundamental_UnlimitedSupply(t *testing.T) {
	source := &stubSource{
		market: &coin.MarketData{
			CurrentPrice:      2000,
			MarketCap:         200_000_000_000,
			TotalVolume:       10_000_000_000,
			CirculatingSupply: 120_000_000,
		},
	}

	report, err := NewFundamental(source).Analyze(
		context.Background(), "ethereum", "Ethereum")
	require.NoError(t, err)
	require.Contains(t, report, "Max Supply: Unlimited (no max cap)")
	require.NotContains(t, report, "Fully Diluted Valuation")
}

func TestPrice_SupportResistanceFromQuartiles(t *testing.T) {
	// 0..39: sorted, so the 25th percentile is index 10, 75th is index 30.
	prices := make([]float64, 40)
	for i := range prices {
		prices[i] = float64(100 + i)
	}
	source := &stubSource{
		market: &coin.MarketData{
			CurrentPrice: 120, High24h: 140, Low24h: 100,
			ATH: 200, ATL: 10,
		},
		historical: map[int][]coin.PricePoint{
			7:  points(prices[:7]...),
			30: points(prices...),
		},
	}

	report, err := NewPrice(source).Analyze(
		context.Background(), "bitcoin", "Bitcoin")
	require.NoError(t, err)
	require.Contains(t, report, "Support Level: $110.00")
	require.Contains(t, report, "Resistance Level: $130.00")
}

func TestPrice_FallsBackTo24hRange(t *testing.T) {
	source := &stubSource{
		market: &coin.MarketData{
			CurrentPrice: 120, High24h: 140, Low24h: 100,
			ATH: 200, ATL: 10,
		},
		historical: map[int][]coin.PricePoint{
			7:  points(100, 110, 120),
			30: points(100, 110, 120),
		},
	}

	report, err := NewPrice(source).Analyze(
		context.Background(), "bitcoin", "Bitcoin")
	require.NoError(t, err)
	require.Contains(t, report, "Support Level: $100.00")
	require.Contains(t, report, "Resistance Level: $140.00")
}

func TestPrice_VolatilityClassification(t *testing.T) {
	source := &stubSource{
		market: &coin.MarketData{
			CurrentPrice: 100, High24h: 101, Low24h: 99,
			ATH: 200, ATL: 10,
		},
		historical: map[int][]coin.PricePoint{
			7:  flatSeries(7, 100),
			30: flatSeries(7, 100),
		},
	}

	report, err := NewPrice(source).Analyze(
		context.Background(), "bitcoin", "Bitcoin")
	require.NoError(t, err)
	require.Contains(t, report, "7-Day Volatility: 0.00%")
	require.Contains(t, report, "Low volatility")
}

func TestTechnical_BullishSummary(t *testing.T) {
	// Rising series keeps the price above every SMA and RSI pinned high.
	prices := make([]float64, 90)
	for i := range prices {
		prices[i] = float64(100 + i)
	}
	source := &stubSource{
		market: &coin.MarketData{CurrentPrice: 200},
		historical: map[int][]coin.PricePoint{
			30: points(prices[60:]...),
			90: points(prices...),
		},
	}

	report, err := NewTechnical(source).Analyze(
		context.Background(), "bitcoin", "Bitcoin")
	require.NoError(t, err)
	require.Contains(t, report, "Golden Cross pattern detected")
	require.Contains(t, report, "RSI (14): 100.0 - **Overbought**")
	require.Contains(t, report, "**Bullish** (above zero line)")
	require.Contains(t, report, "predominantly bullish (4 bullish vs 0 bearish signals)")
}

func TestTechnical_BearishSummary(t *testing.T) {
	prices := make([]float64, 90)
	for i := range prices {
		prices[i] = float64(300 - i)
	}
	source := &stubSource{
		market: &coin.MarketData{CurrentPrice: 180},
		historical: map[int][]coin.PricePoint{
			30: points(prices[60:]...),
			90: points(prices...),
		},
	}

	report, err := NewTechnical(source).Analyze(
		context.Background(), "bitcoin", "Bitcoin")
	require.NoError(t, err)
	require.Contains(t, report, "Death Cross pattern detected")
	require.Contains(t, report, "**Oversold**")
	require.Contains(t, report, "predominantly bearish")
}

func TestTechnical_InsufficientData(t *testing.T) {
	source := &stubSource{
		market:     &coin.MarketData{CurrentPrice: 100},
		historical: map[int][]coin.PricePoint{},
	}

	report, err := NewTechnical(source).Analyze(
		context.Background(), "newcoin", "NewCoin")
	require.NoError(t, err)
	require.Equal(t, "Insufficient historical data for technical analysis.",
		report)
}

func TestSentiment_FullReport(t *testing.T) {
	source := &stubSource{
		data: &coin.CoinData{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin"},
		market: &coin.MarketData{
			CurrentPrice:     50000,
			PriceChangePct7d: 12,
		},
		community: &coin.CommunityData{
			TwitterFollowers:     5_000_000,
			RedditSubscribers:    4_000_000,
			RedditAvgPosts48h:    25,
			RedditAvgComments48h: 300,
		},
		fearGreed:  coin.FearGreed{Value: 72, Classification: "Greed"},
		hasNewsKey: true,
		news: []coin.NewsArticle{
			{Title: "A", Source: "wire", URL: "https://a", PublishedAt: "2025-06-14T00:00:00Z"},
			{Title: "B", Source: "wire", URL: "https://b", PublishedAt: "2025-06-13T00:00:00Z"},
			{Title: "C", Source: "wire", URL: "https://c"},
			{Title: "D", Source: "wire", URL: "https://d"},
			{Title: "E", Source: "wire", URL: "https://e"},
			{Title: "F", Source: "wire", URL: "https://f"},
			{Title: "G", Source: "wire", URL: "https://g"},
			{Title: "H", Source: "wire", URL: "https://h"},
		},
	}

	report, err := NewSentiment(source).Analyze(
		context.Background(), "bitcoin", "Bitcoin")
	require.NoError(t, err)
	require.Contains(t, report, "**Overall Sentiment Score: 80/100 - Very Positive**")
	require.Contains(t, report, "Twitter Followers: 5,000,000")
	require.Contains(t, report, "Crypto Fear & Greed Index: 72/100 (Greed)")
	require.Contains(t, report, "Reddit engagement ratio is 12.0 comments per post")
	require.Contains(t, report, "**Latest News Coverage (8 articles found):**")
	require.Contains(t, report, "Date: 2025-06-14")
	require.Contains(t, report, "*... and 3 more articles*")
	require.Contains(t, report, "High news coverage")
}

func TestSentiment_NewsFailureDegrades(t *testing.T) {
	source := &stubSource{
		data:       &coin.CoinData{ID: "bitcoin", Symbol: "btc"},
		market:     &coin.MarketData{PriceChangePct7d: 2},
		community:  &coin.CommunityData{},
		fearGreed:  coin.FearGreed{Value: 50, Classification: "Neutral"},
		newsErr:    errors.New("news provider down"),
		hasNewsKey: true,
	}

	report, err := NewSentiment(source).Analyze(
		context.Background(), "bitcoin", "Bitcoin")
	require.NoError(t, err)
	require.Contains(t, report, "**Overall Sentiment Score: 55/100 - Neutral**")
	require.Contains(t, report, "No recent news articles found")
	require.Contains(t, report, "Limited community data available")
}

func TestSentiment_NoNewsSectionWithoutKey(t *testing.T) {
	source := &stubSource{
		data:      &coin.CoinData{ID: "bitcoin", Symbol: "btc"},
		market:    &coin.MarketData{PriceChangePct7d: 2},
		community: &coin.CommunityData{},
		fearGreed: coin.FearGreed{Value: 50, Classification: "Neutral"},
	}

	report, err := NewSentiment(source).Analyze(
		context.Background(), "bitcoin", "Bitcoin")
	require.NoError(t, err)
	require.NotContains(t, report, "News Coverage")
}
