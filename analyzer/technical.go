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
	"strings"
)

// Technical reports on moving averages, RSI, and MACD.
type Technical struct {
	source DataSource
}

// NewTechnical creates a technical analyzer.
func NewTechnical(source DataSource) *Technical {
	return &Technical{source: source}
}

var _ Analyzer = (*Technical)(nil)

// Analyze builds the technical analysis report for a coin.
func (a *Technical) Analyze(
	ctx context.Context,
	coinID string,
	coinName string,
) (string, error) {
	month, err := a.source.Historical(ctx, coinID, 30)
	if err != nil {
		return "", fmt.Errorf("technical analysis: %w", err)
	}
	quarter, err := a.source.Historical(ctx, coinID, 90)
	if err != nil {
		return "", fmt.Errorf("technical analysis: %w", err)
	}
	md, err := a.source.Market(ctx, coinID)
	if err != nil {
		return "", fmt.Errorf("technical analysis: %w", err)
	}
	if len(month) == 0 || len(quarter) == 0 {
		return "Insufficient historical data for technical analysis.", nil
	}

	current := md.CurrentPrice
	prices30 := priceValues(month)
	prices90 := priceValues(quarter)

	sma7, okSMA7 := sma(prices30, 7)
	sma20, okSMA20 := sma(prices30, 20)
	sma50, okSMA50 := sma(prices90, 50)

	rsi14, okRSI := rsi(prices30, 14)

	// MACD approximated with simple averages over the standard windows.
	ema12, okEMA12 := sma(prices30, 12)
	ema26, okEMA26 := sma(prices30, 26)
	macd := 0.0
	okMACD := okEMA12 && okEMA26
	if okMACD {
		macd = ema12 - ema26
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**Technical Analysis for %s:**\n\n", coinName)
	b.WriteString("**Moving Averages:**\n")
	fmt.Fprintf(&b, "- Current Price: %s", usd(current, 2))

	writeSMA := func(label string, value float64) {
		fmt.Fprintf(&b, "\n- %s: %s", label, usd(value, 2))
		if current > value {
			b.WriteString(" (Price above - bullish)")
		} else {
			b.WriteString(" (Price below - bearish)")
		}
	}
	if okSMA7 {
		writeSMA("7-Day SMA", sma7)
	}
	if okSMA20 {
		writeSMA("20-Day SMA", sma20)
	}
	if okSMA50 {
		writeSMA("50-Day SMA", sma50)
	}

	b.WriteString("\n\n**Moving Average Analysis:**\n")
	if okSMA7 && okSMA20 {
		if sma7 > sma20 {
			b.WriteString("Golden Cross pattern detected (7-day SMA above " +
				"20-day SMA) - Bullish signal. Short-term momentum is " +
				"stronger than medium-term, suggesting upward trend.")
		} else {
			b.WriteString("Death Cross pattern detected (7-day SMA below " +
				"20-day SMA) - Bearish signal. Short-term momentum is " +
				"weaker than medium-term, suggesting downward trend.")
		}
	}

	if okRSI {
		b.WriteString("\n\n**Momentum Indicators:**\n")
		fmt.Fprintf(&b, "- RSI (14): %.1f", rsi14)
		switch {
		case rsi14 >= 70:
			b.WriteString(" - **Overbought**\n  The token is in overbought " +
				"territory, which may indicate a potential price correction " +
				"or consolidation ahead.")
		case rsi14 >= 60:
			b.WriteString(" - **Bullish**\n  Positive momentum with room " +
				"for continued growth before reaching overbought levels.")
		case rsi14 >= 40:
			b.WriteString(" - **Neutral**\n  Balanced momentum with no " +
				"clear directional bias. Waiting for stronger signals.")
		case rsi14 >= 30:
			b.WriteString(" - **Bearish**\n  Negative momentum with " +
				"potential for further decline, but approaching oversold levels.")
		default:
			b.WriteString(" - **Oversold**\n  The token is in oversold " +
				"territory, which may indicate a potential buying " +
				"opportunity or bounce.")
		}
	}

	if okMACD {
		b.WriteString("\n\n**MACD Indicator:**\n")
		fmt.Fprintf(&b, "- MACD Line: %+.4f", macd)
		if macd > 0 {
			b.WriteString(" - **Bullish** (above zero line)\n  Short-term " +
				"trend is stronger than long-term, indicating bullish momentum.")
		} else {
			b.WriteString(" - **Bearish** (below zero line)\n  Long-term " +
				"trend is stronger than short-term, indicating bearish momentum.")
		}
	}

	b.WriteString("\n\n**Technical Summary:**\n")
	var bullish, bearish int
	if okSMA7 {
		if current > sma7 {
			bullish++
		} else {
			bearish++
		}
	}
	if okSMA20 {
		if current > sma20 {
			bullish++
		} else {
			bearish++
		}
	}
	if okRSI {
		switch {
		case rsi14 > 60:
			bullish++
		case rsi14 < 40:
			bearish++
		}
	}
	if okMACD {
		if macd > 0 {
			bullish++
		} else {
			bearish++
		}
	}

	switch {
	case bullish > bearish:
		fmt.Fprintf(&b, "Technical indicators are predominantly bullish "+
			"(%d bullish vs %d bearish signals). ", bullish, bearish)
		fmt.Fprintf(&b, "%s shows positive technical momentum with multiple "+
			"indicators supporting upward price movement. ", coinName)
		b.WriteString("Traders may consider long positions, but should wait " +
			"for confirmation and use appropriate risk management.")
	case bearish > bullish:
		fmt.Fprintf(&b, "Technical indicators are predominantly bearish "+
			"(%d bearish vs %d bullish signals). ", bearish, bullish)
		fmt.Fprintf(&b, "%s shows negative technical momentum with multiple "+
			"indicators suggesting downward pressure. ", coinName)
		b.WriteString("Caution is advised for long positions. Short-term " +
			"traders may look for shorting opportunities or wait for " +
			"reversal signals.")
	default:
		fmt.Fprintf(&b, "Technical indicators are mixed "+
			"(%d bullish vs %d bearish signals). ", bullish, bearish)
		fmt.Fprintf(&b, "%s is in a consolidation phase with conflicting "+
			"signals. ", coinName)
		b.WriteString("The market is indecisive. Traders should wait for " +
			"clearer technical signals before taking significant positions.")
	}

	return b.String(), nil
}
