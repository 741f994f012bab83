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
	"time"

	"trpc.group/trpc-go/trpc-coinsight-go/coin"
	"trpc.group/trpc-go/trpc-coinsight-go/log"
)

const newsPageSize = 10

// Sentiment reports on community engagement, market mood, and news coverage.
type Sentiment struct {
	source DataSource
}

// NewSentiment creates a sentiment analyzer.
func NewSentiment(source DataSource) *Sentiment {
	return &Sentiment{source: source}
}

var _ Analyzer = (*Sentiment)(nil)

// sentimentScore blends price action, social engagement, and news coverage
// into a 0-100 score anchored at a neutral 50.
func sentimentScore(
	priceChange7d float64,
	redditPosts float64,
	redditComments float64,
	newsCount int,
) int {
	score := 50

	switch {
	case priceChange7d > 10:
		score += 15
	case priceChange7d > 5:
		score += 10
	case priceChange7d > 0:
		score += 5
	case priceChange7d > -5:
		score -= 5
	case priceChange7d > -10:
		score -= 10
	default:
		score -= 15
	}

	if redditPosts > 20 {
		score += 5
	}
	if redditComments > 100 {
		score += 5
	}

	switch {
	case newsCount >= 8:
		score += 5
	case newsCount >= 5:
		score += 3
	case newsCount >= 3:
		score += 2
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

func sentimentClass(score int) string {
	switch {
	case score >= 70:
		return "Very Positive"
	case score >= 60:
		return "Positive"
	case score >= 40:
		return "Neutral"
	case score >= 30:
		return "Negative"
	default:
		return "Very Negative"
	}
}

// Analyze builds the sentiment analysis report for a coin.
func (a *Sentiment) Analyze(
	ctx context.Context,
	coinID string,
	coinName string,
) (string, error) {
	cd, err := a.source.Community(ctx, coinID)
	if err != nil {
		return "", fmt.Errorf("sentiment analysis: %w", err)
	}
	md, err := a.source.Market(ctx, coinID)
	if err != nil {
		return "", fmt.Errorf("sentiment analysis: %w", err)
	}
	fng, err := a.source.FearGreedIndex(ctx)
	if err != nil {
		return "", fmt.Errorf("sentiment analysis: %w", err)
	}
	data, err := a.source.Data(ctx, coinID)
	if err != nil {
		return "", fmt.Errorf("sentiment analysis: %w", err)
	}
	symbol := strings.ToUpper(data.Symbol)

	articles, err := a.source.News(ctx, coinName, symbol, newsPageSize)
	if err != nil {
		// News is an enrichment; score without it.
		log.Warnf("news unavailable for %s: %v", coinName, err)
		articles = nil
	}
	newsCount := len(articles)

	score := sentimentScore(md.PriceChangePct7d,
		cd.RedditAvgPosts48h, cd.RedditAvgComments48h, newsCount)

	var b strings.Builder
	fmt.Fprintf(&b, "**Sentiment Analysis for %s:**\n\n", coinName)
	fmt.Fprintf(&b, "**Overall Sentiment Score: %d/100 - %s**\n\n",
		score, sentimentClass(score))

	b.WriteString("**Community Engagement:**")
	if cd.TwitterFollowers > 0 {
		fmt.Fprintf(&b, "\n- Twitter Followers: %s",
			groupedInt(cd.TwitterFollowers))
	}
	if cd.RedditSubscribers > 0 {
		fmt.Fprintf(&b, "\n- Reddit Subscribers: %s",
			groupedInt(cd.RedditSubscribers))
	}
	if cd.RedditAvgPosts48h > 0 {
		fmt.Fprintf(&b, "\n- Reddit Posts (48h): %.0f", cd.RedditAvgPosts48h)
	}
	if cd.RedditAvgComments48h > 0 {
		fmt.Fprintf(&b, "\n- Reddit Comments (48h): %.0f",
			cd.RedditAvgComments48h)
	}
	if cd.TelegramUsers > 0 {
		fmt.Fprintf(&b, "\n- Telegram Members: %s",
			groupedInt(cd.TelegramUsers))
	}
	if cd.TwitterFollowers == 0 && cd.RedditSubscribers == 0 &&
		cd.TelegramUsers == 0 {
		b.WriteString("\n- Limited community data available for this token")
	}

	b.WriteString("\n\n**Market Sentiment Indicators:**\n")
	fmt.Fprintf(&b, "- Crypto Fear & Greed Index: %d/100 (%s)\n",
		fng.Value, fng.Classification)
	fmt.Fprintf(&b, "- Recent Price Action: %+.2f%% over 7 days",
		md.PriceChangePct7d)
	switch {
	case md.PriceChangePct7d > 5:
		b.WriteString(" - indicating positive market sentiment")
	case md.PriceChangePct7d < -5:
		b.WriteString(" - indicating negative market sentiment")
	default:
		b.WriteString(" - indicating neutral market sentiment")
	}

	b.WriteString("\n\n**Sentiment Analysis:**\n")
	switch {
	case score >= 70:
		fmt.Fprintf(&b, "%s is experiencing very positive sentiment across "+
			"multiple indicators. ", coinName)
		b.WriteString("The community is highly engaged, and price action " +
			"reflects strong bullish sentiment. This could indicate FOMO " +
			"(Fear of Missing Out) among investors. Exercise caution as " +
			"extreme positive sentiment can sometimes precede corrections.")
	case score >= 60:
		fmt.Fprintf(&b, "%s shows positive sentiment overall. ", coinName)
		b.WriteString("Community engagement is healthy, and market " +
			"participants are generally optimistic. This suggests " +
			"confidence in the project's direction and potential for " +
			"continued growth.")
	case score >= 40:
		fmt.Fprintf(&b, "%s exhibits neutral sentiment. ", coinName)
		b.WriteString("The market is neither particularly bullish nor " +
			"bearish on this asset. This could indicate a period of " +
			"consolidation or uncertainty about future direction. Traders " +
			"are likely waiting for clearer signals before taking strong " +
			"positions.")
	case score >= 30:
		fmt.Fprintf(&b, "%s is facing negative sentiment. ", coinName)
		b.WriteString("Community engagement may be declining, and price " +
			"action reflects bearish sentiment. Market participants are " +
			"cautious or pessimistic about near-term prospects. This could " +
			"present a buying opportunity for contrarians, but risk " +
			"remains elevated.")
	default:
		fmt.Fprintf(&b, "%s is experiencing very negative sentiment. ",
			coinName)
		b.WriteString("The community may be discouraged, and price action " +
			"reflects strong selling pressure. This represents high risk " +
			"but could also be a capitulation point for long-term " +
			"investors. Fundamental analysis is critical before " +
			"considering entry at these levels.")
	}

	if cd.RedditAvgPosts48h > 0 && cd.RedditAvgComments48h > 0 {
		ratio := cd.RedditAvgComments48h / cd.RedditAvgPosts48h
		b.WriteString("\n\n**Social Media Activity:**\n")
		fmt.Fprintf(&b, "Reddit engagement ratio is %.1f comments per post",
			ratio)
		switch {
		case ratio > 10:
			b.WriteString(", indicating high community interest and active " +
				"discussions.")
		case ratio > 5:
			b.WriteString(", suggesting moderate community engagement.")
		default:
			b.WriteString(", showing relatively low discussion activity.")
		}
	}

	if newsCount > 0 {
		a.writeNewsSection(&b, articles)
	} else if a.source.NewsConfigured() {
		b.WriteString("\n\n**News Coverage:**\n")
		b.WriteString("No recent news articles found for this " +
			"cryptocurrency in the past 7 days. This could indicate low " +
			"media attention or a quiet period for the project.")
	}

	return b.String(), nil
}

func (a *Sentiment) writeNewsSection(
	b *strings.Builder,
	articles []coin.NewsArticle,
) {
	fmt.Fprintf(b, "\n\n**Latest News Coverage (%d articles found):**\n",
		len(articles))
	shown := articles
	if len(shown) > 5 {
		shown = shown[:5]
	}
	for i, article := range shown {
		title := article.Title
		if title == "" {
			title = "No title"
		}
		source := article.Source
		if source == "" {
			source = "Unknown source"
		}
		fmt.Fprintf(b, "%d. **%s**\n", i+1, title)
		fmt.Fprintf(b, "   Source: %s | Date: %s\n",
			source, publishedDate(article.PublishedAt))
		if article.URL != "" {
			fmt.Fprintf(b, "   Link: %s\n", article.URL)
		}
		b.WriteString("\n")
	}
	if len(articles) > 5 {
		fmt.Fprintf(b, "*... and %d more articles*\n", len(articles)-5)
	}

	b.WriteString("\n**News Impact:**\n")
	switch {
	case len(articles) >= 8:
		b.WriteString("High news coverage indicates significant market " +
			"attention and potential volatility. Monitor news developments " +
			"closely as they can drive price movements.")
	case len(articles) >= 5:
		b.WriteString("Moderate news coverage suggests ongoing interest. " +
			"Recent developments may influence market sentiment.")
	default:
		b.WriteString("Limited recent news coverage. The token may be in a " +
			"consolidation phase or awaiting major developments.")
	}
}

func publishedDate(published string) string {
	if published == "" {
		return "Unknown date"
	}
	if t, err := time.Parse(time.RFC3339, published); err == nil {
		return t.Format("2006-01-02")
	}
	if len(published) >= 10 {
		return published[:10]
	}
	return published
}
