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
	"fmt"
	"sort"
	"strings"
)

// Price reports on price action, volatility, and support/resistance.
type Price struct {
	source DataSource
}

// NewPrice creates a price analyzer.
func NewPrice(source DataSource) *Price {
	return &Price{source: source}
}

var _ Analyzer = (*Price)(nil)

// Analyze builds the price analysis report for a coin.
func (a *Price) Analyze(
	ctx context.Context,
	coinID string,
	coinName string,
) (string, error) {
	md, err := a.source.Market(ctx, coinID)
	if err != nil {
		return "", fmt.Errorf("price analysis: %w", err)
	}
	week, err := a.source.Historical(ctx, coinID, 7)
	if err != nil {
		return "", fmt.Errorf("price analysis: %w", err)
	}
	month, err := a.source.Historical(ctx, coinID, 30)
	if err != nil {
		return "", fmt.Errorf("price analysis: %w", err)
	}

	volatility7d := 0.0
	if len(week) > 1 {
		mean, stdev := meanStdev(priceValues(week))
		if mean != 0 {
			volatility7d = stdev / mean * 100
		}
	}

	// Support and resistance from the 30-day quartiles; with a thin series
	// fall back to the 24h range.
	support, resistance := md.Low24h, md.High24h
	if len(month) >= 30 {
		sorted := append([]float64(nil), priceValues(month)...)
		sort.Float64s(sorted)
		support = sorted[len(sorted)/4]
		resistance = sorted[3*len(sorted)/4]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**Price Analysis for %s:**\n\n", coinName)
	b.WriteString("**Current Price Action:**\n")
	fmt.Fprintf(&b, "- Current Price: %s\n", usd(md.CurrentPrice, 2))
	fmt.Fprintf(&b, "- 24h Change: %+.2f%%\n", md.PriceChangePct24h)
	fmt.Fprintf(&b, "- 7d Change: %+.2f%%\n", md.PriceChangePct7d)
	fmt.Fprintf(&b, "- 30d Change: %+.2f%%\n", md.PriceChangePct30d)

	b.WriteString("\n**24h Price Range:**\n")
	fmt.Fprintf(&b, "- High: %s\n", usd(md.High24h, 2))
	fmt.Fprintf(&b, "- Low: %s\n", usd(md.Low24h, 2))
	rangePct := 0.0
	if md.Low24h != 0 {
		rangePct = (md.High24h - md.Low24h) / md.Low24h * 100
	}
	fmt.Fprintf(&b, "- Range: %s (%.2f%%)\n",
		usd(md.High24h-md.Low24h, 2), rangePct)

	b.WriteString("\n**Historical Context:**\n")
	if md.ATH != 0 {
		fmt.Fprintf(&b, "- All-Time High: %s (%.2f%% from ATH)\n",
			usd(md.ATH, 2), (md.CurrentPrice-md.ATH)/md.ATH*100)
	}
	if md.ATL != 0 {
		fmt.Fprintf(&b, "- All-Time Low: %s (%.2f%% from ATL)\n",
			usd(md.ATL, 2), (md.CurrentPrice-md.ATL)/md.ATL*100)
	}

	b.WriteString("\n**Volatility Assessment:**\n")
	fmt.Fprintf(&b, "- 7-Day Volatility: %.2f%%\n", volatility7d)
	b.WriteString("- Classification: ")
	switch {
	case volatility7d < 5:
		b.WriteString("Low volatility - relatively stable price movement")
	case volatility7d < 10:
		b.WriteString("Moderate volatility - normal market fluctuations")
	case volatility7d < 20:
		b.WriteString("High volatility - significant price swings")
	default:
		b.WriteString("Extreme volatility - very large price movements")
	}

	b.WriteString("\n\n**Support and Resistance Levels:**\n")
	fmt.Fprintf(&b, "- Support Level: %s (potential buying opportunity)\n",
		usd(support, 2))
	fmt.Fprintf(&b, "- Current Price: %s\n", usd(md.CurrentPrice, 2))
	fmt.Fprintf(&b, "- Resistance Level: %s (potential selling pressure)\n",
		usd(resistance, 2))

	b.WriteString("\n**Price Trend Analysis:**\n")
	switch {
	case md.PriceChangePct7d > 5:
		fmt.Fprintf(&b,
			"%s is in a strong uptrend over the past week (+%.2f%%). ",
			coinName, md.PriceChangePct7d)
		b.WriteString("Bullish momentum is evident with buyers in control. ")
	case md.PriceChangePct7d > 0:
		fmt.Fprintf(&b,
			"%s shows slight upward momentum (+%.2f%%) over the past week. ",
			coinName, md.PriceChangePct7d)
		b.WriteString("The trend is mildly bullish with cautious buying. ")
	case md.PriceChangePct7d > -5:
		fmt.Fprintf(&b,
			"%s shows slight downward pressure (%.2f%%) over the past week. ",
			coinName, md.PriceChangePct7d)
		b.WriteString("The trend is mildly bearish with some selling activity. ")
	default:
		fmt.Fprintf(&b,
			"%s is experiencing a significant downtrend (%.2f%%) over the past week. ",
			coinName, md.PriceChangePct7d)
		b.WriteString("Bearish momentum is strong with sellers in control. ")
	}

	if md.CurrentPrice != 0 {
		toResistance := (resistance - md.CurrentPrice) / md.CurrentPrice * 100
		toSupport := (md.CurrentPrice - support) / md.CurrentPrice * 100
		switch {
		case toResistance < 5:
			fmt.Fprintf(&b,
				"Price is near resistance (%s), which may act as a ceiling. ",
				usd(resistance, 2))
		case toSupport < 5:
			fmt.Fprintf(&b,
				"Price is near support (%s), which may provide a floor. ",
				usd(support, 2))
		default:
			b.WriteString("Price is trading in the middle range between " +
				"support and resistance levels. ")
		}
	}

	return b.String(), nil
}
