//
// Tencent is pleased to support the open source community by making
// trpc-coinsight-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-coinsight-go is licensed under the Apache License Version 2.0.
//
//

// Package analyzer builds textual analysis reports (fundamental, price,
// sentiment, technical) from coin market data.
package analyzer

import (
	"context"
	"fmt"
	"math"
	"strings"

	"trpc.group/trpc-go/trpc-coinsight-go/coin"
)

// Analyzer produces a human-readable report for one coin.
type Analyzer interface {
	Analyze(ctx context.Context, coinID, coinName string) (string, error)
}

// DataSource is the subset of the coin repository the analyzers read from.
type DataSource interface {
	Data(ctx context.Context, coinID string) (*coin.CoinData, error)
	Market(ctx context.Context, coinID string) (*coin.MarketData, error)
	Community(ctx context.Context, coinID string) (*coin.CommunityData, error)
	Description(ctx context.Context, coinID string) (string, error)
	Historical(ctx context.Context, coinID string, days int) ([]coin.PricePoint, error)
	News(ctx context.Context, coinName, coinSymbol string, pageSize int) ([]coin.NewsArticle, error)
	FearGreedIndex(ctx context.Context) (coin.FearGreed, error)
	NewsConfigured() bool
}

// sma returns the simple moving average over the trailing period, or false
// when there are not enough samples.
func sma(prices []float64, period int) (float64, bool) {
	if period <= 0 || len(prices) < period {
		return 0, false
	}
	sum := 0.0
	for _, p := range prices[len(prices)-period:] {
		sum += p
	}
	return sum / float64(period), true
}

// rsi returns the relative strength index over the trailing period, or false
// when there are not enough samples. An all-gain window saturates at 100.
func rsi(prices []float64, period int) (float64, bool) {
	if period <= 0 || len(prices) < period+1 {
		return 0, false
	}
	gains := make([]float64, 0, len(prices)-1)
	losses := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			gains = append(gains, change)
			losses = append(losses, 0)
		} else {
			gains = append(gains, 0)
			losses = append(losses, -change)
		}
	}
	var avgGain, avgLoss float64
	for _, g := range gains[len(gains)-period:] {
		avgGain += g
	}
	for _, l := range losses[len(losses)-period:] {
		avgLoss += l
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	if avgLoss == 0 {
		return 100, true
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), true
}

// meanStdev returns the mean and sample standard deviation of values.
func meanStdev(values []float64) (mean, stdev float64) {
	if len(values) == 0 {
		return 0, 0
	}
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	if len(values) < 2 {
		return mean, 0
	}
	var sumSq float64
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return mean, math.Sqrt(sumSq / float64(len(values)-1))
}

func priceValues(points []coin.PricePoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Price
	}
	return out
}

// usd formats a dollar amount with thousands separators, e.g. $1,234.56.
func usd(v float64, decimals int) string {
	return "$" + grouped(v, decimals)
}

// grouped formats a number with comma-grouped integer digits.
func grouped(v float64, decimals int) string {
	neg := v < 0
	s := fmt.Sprintf("%.*f", decimals, math.Abs(v))
	intPart, fracPart, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
		if len(intPart) > lead {
			b.WriteByte(',')
		}
	}
	for i := lead; i < len(intPart); i += 3 {
		b.WriteString(intPart[i : i+3])
		if i+3 < len(intPart) {
			b.WriteByte(',')
		}
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(fracPart)
	}
	return b.String()
}

func groupedInt(v int64) string {
	return grouped(float64(v), 0)
}
