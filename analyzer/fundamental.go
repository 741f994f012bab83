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

const maxDescriptionLen = 500

// Fundamental reports on market cap, supply, and liquidity.
type Fundamental struct {
	source DataSource
}

// NewFundamental creates a fundamental analyzer.
func NewFundamental(source DataSource) *Fundamental {
	return &Fundamental{source: source}
}

var _ Analyzer = (*Fundamental)(nil)

// Analyze builds the fundamental analysis report for a coin.
func (a *Fundamental) Analyze(
	ctx context.Context,
	coinID string,
	coinName string,
) (string, error) {
	md, err := a.source.Market(ctx, coinID)
	if err != nil {
		return "", fmt.Errorf("fundamental analysis: %w", err)
	}
	description, err := a.source.Description(ctx, coinID)
	if err != nil {
		return "", fmt.Errorf("fundamental analysis: %w", err)
	}

	volumeMcapRatio := 0.0
	if md.MarketCap != 0 {
		volumeMcapRatio = md.TotalVolume / md.MarketCap * 100
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**Fundamental Analysis for %s:**\n\n", coinName)
	b.WriteString("**Market Metrics:**\n")
	fmt.Fprintf(&b, "- Market Cap: %s (Rank #%d)\n",
		usd(md.MarketCap, 0), md.MarketCapRank)
	fmt.Fprintf(&b, "- Current Price: %s\n", usd(md.CurrentPrice, 2))
	fmt.Fprintf(&b, "- 24h Trading Volume: %s\n", usd(md.TotalVolume, 0))
	liquidity := "(low liquidity)"
	if volumeMcapRatio > 5 {
		liquidity = "(healthy liquidity)"
	}
	fmt.Fprintf(&b, "- Volume/Market Cap Ratio: %.2f%% %s\n",
		volumeMcapRatio, liquidity)

	b.WriteString("\n**Supply Metrics:**\n")
	fmt.Fprintf(&b, "- Circulating Supply: %s %s\n",
		grouped(md.CirculatingSupply, 0), coinName)
	if md.TotalSupply > 0 {
		fmt.Fprintf(&b, "- Total Supply: %s %s\n",
			grouped(md.TotalSupply, 0), coinName)
	} else {
		b.WriteString("- Total Supply: N/A\n")
	}
	if md.MaxSupply > 0 {
		fmt.Fprintf(&b, "- Max Supply: %s %s",
			grouped(md.MaxSupply, 0), coinName)
	} else {
		b.WriteString("- Max Supply: Unlimited (no max cap)")
	}

	if md.CirculatingSupply > 0 && md.TotalSupply > 0 {
		inflation := (md.TotalSupply - md.CirculatingSupply) /
			md.CirculatingSupply * 100
		if inflation > 0 {
			fmt.Fprintf(&b,
				"\n- Supply Inflation: %.2f%% (tokens yet to be released)",
				inflation)
		}
	}

	switch {
	case md.MaxSupply > 0 && md.CurrentPrice > 0:
		fmt.Fprintf(&b, "\n- Fully Diluted Valuation: %s",
			usd(md.MaxSupply*md.CurrentPrice, 0))
	case md.TotalSupply > 0 && md.CurrentPrice > 0:
		fmt.Fprintf(&b,
			"\n- Fully Diluted Valuation: %s (based on total supply)",
			usd(md.TotalSupply*md.CurrentPrice, 0))
	}

	if description != "" {
		short := description
		if len(short) > maxDescriptionLen {
			short = short[:maxDescriptionLen] + "..."
		}
		fmt.Fprintf(&b, "\n\n**Project Overview:**\n%s", short)
	}

	b.WriteString("\n\n**Liquidity Assessment:**\n")
	switch {
	case volumeMcapRatio > 10:
		b.WriteString("Excellent liquidity with high trading activity. " +
			"The token can be easily bought or sold without significant " +
			"price impact.")
	case volumeMcapRatio > 5:
		b.WriteString("Good liquidity with healthy trading volume. " +
			"Moderate ease of entry and exit.")
	case volumeMcapRatio > 2:
		b.WriteString("Fair liquidity. Some slippage may occur on larger " +
			"trades.")
	default:
		b.WriteString("Low liquidity. Large trades may experience " +
			"significant price impact and slippage.")
	}

	return b.String(), nil
}
