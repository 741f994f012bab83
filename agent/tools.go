//
// Tencent is pleased to support the open source community by making
// trpc-coinsight-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-coinsight-go is licensed under the Apache License Version 2.0.
//
//

package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"trpc.group/trpc-go/trpc-coinsight-go/coin"
	"trpc.group/trpc-go/trpc-coinsight-go/history"
	"trpc.group/trpc-go/trpc-coinsight-go/log"
	"trpc.group/trpc-go/trpc-coinsight-go/model"
)

// ToolKind names one agent capability. The set is closed: dispatch is a
// switch over these constants, not a string-keyed registry.
type ToolKind string

// The agent's tools.
const (
	ToolCoinInfo            ToolKind = "get_coin_info"
	ToolFundamentalAnalysis ToolKind = "fundamental_analysis"
	ToolPriceAnalysis       ToolKind = "price_analysis"
	ToolSentimentAnalysis   ToolKind = "sentiment_analysis"
	ToolTechnicalAnalysis   ToolKind = "technical_analysis"
	ToolPreviousAnalysis    ToolKind = "get_previous_analysis"
)

const previousAnalysisSeparator = "============================================================"

// toolArgs carries the decoded arguments of any tool call.
type toolArgs struct {
	CoinQuery    string `json:"coin_query"`
	AnalysisType string `json:"analysis_type"`
}

func coinQuerySchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"coin_query": map[string]any{
				"type":        "string",
				"description": "The cryptocurrency name or symbol, e.g. 'bitcoin' or 'BTC'.",
			},
		},
		"required": []string{"coin_query"},
	}
}

// toolDeclarations describes every tool to the model.
func toolDeclarations() []model.ToolDeclaration {
	previousSchema := coinQuerySchema()
	previousSchema["properties"].(map[string]any)["analysis_type"] = map[string]any{
		"type":        "string",
		"description": "Type of analysis to retrieve.",
		"enum": []string{
			"fundamental", "price", "sentiment", "technical", "all",
		},
	}
	return []model.ToolDeclaration{
		{
			Name:        string(ToolCoinInfo),
			Description: "Get basic information about a cryptocurrency. Use this first when encountering a new token.",
			Parameters:  coinQuerySchema(),
		},
		{
			Name:        string(ToolFundamentalAnalysis),
			Description: "Perform fundamental analysis including market cap, volume, supply, liquidity, and tokenomics.",
			Parameters:  coinQuerySchema(),
		},
		{
			Name:        string(ToolPriceAnalysis),
			Description: "Perform price analysis including trends, volatility, support/resistance, and historical performance.",
			Parameters:  coinQuerySchema(),
		},
		{
			Name:        string(ToolSentimentAnalysis),
			Description: "Perform sentiment analysis including social media metrics, community engagement, and market sentiment.",
			Parameters:  coinQuerySchema(),
		},
		{
			Name:        string(ToolTechnicalAnalysis),
			Description: "Perform technical analysis including moving averages, RSI, MACD, and technical indicators.",
			Parameters:  coinQuerySchema(),
		},
		{
			Name:        string(ToolPreviousAnalysis),
			Description: "Retrieve previous analysis results. Use when user references earlier analyses or asks for comparisons.",
			Parameters:  previousSchema,
		},
	}
}

// analysisKind maps analysis tools to their stored record kind.
func analysisKind(kind ToolKind) (history.Kind, bool) {
	switch kind {
	case ToolFundamentalAnalysis:
		return history.KindFundamental, true
	case ToolPriceAnalysis:
		return history.KindPrice, true
	case ToolSentimentAnalysis:
		return history.KindSentiment, true
	case ToolTechnicalAnalysis:
		return history.KindTechnical, true
	default:
		return "", false
	}
}

func analysisLabel(kind history.Kind) string {
	return string(kind) + " analysis"
}

// dispatchTool executes one tool call. Tool failures are reported to the
// model as result text, never as Go errors: the model decides how to react.
func (a *Agent) dispatchTool(ctx context.Context, call model.ToolCall) string {
	var args toolArgs
	if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
		return fmt.Sprintf("Invalid tool arguments: %v", err)
	}
	if strings.TrimSpace(args.CoinQuery) == "" {
		return "Missing required argument 'coin_query'."
	}

	switch kind := ToolKind(call.Name); kind {
	case ToolCoinInfo:
		return a.coinInfo(ctx, args.CoinQuery)
	case ToolFundamentalAnalysis, ToolPriceAnalysis,
		ToolSentimentAnalysis, ToolTechnicalAnalysis:
		recordKind, _ := analysisKind(kind)
		return a.runAnalysis(ctx, recordKind, args.CoinQuery)
	case ToolPreviousAnalysis:
		return a.previousAnalysis(ctx, args.CoinQuery, args.AnalysisType)
	default:
		return fmt.Sprintf("Unknown tool %q.", call.Name)
	}
}

func (a *Agent) coinInfo(ctx context.Context, query string) string {
	info, err := a.coins.Info(ctx, query)
	if err != nil {
		var nf *coin.NotFoundError
		if errors.As(err, &nf) {
			return fmt.Sprintf("Could not find cryptocurrency '%s'. "+
				"Please check the name or symbol and try again.", query)
		}
		return fmt.Sprintf("Error fetching coin info: %v", err)
	}
	return fmt.Sprintf("Found: %s (%s). CoinGecko ID: %s",
		info.Name, info.Symbol, info.ID)
}

func (a *Agent) runAnalysis(
	ctx context.Context,
	kind history.Kind,
	query string,
) string {
	info, err := a.coins.Info(ctx, query)
	if err != nil {
		var nf *coin.NotFoundError
		if errors.As(err, &nf) {
			return fmt.Sprintf("Could not find cryptocurrency '%s'.", query)
		}
		return fmt.Sprintf("Error in %s: %v", analysisLabel(kind), err)
	}

	an, ok := a.analyzers[kind]
	if !ok {
		return fmt.Sprintf("No %s available.", analysisLabel(kind))
	}
	report, err := an.Analyze(ctx, info.ID, info.Name)
	if err != nil {
		return fmt.Sprintf("Error in %s: %v", analysisLabel(kind), err)
	}

	if err := a.store.Save(ctx, history.Record{
		CoinID:   info.ID,
		CoinName: info.Name,
		Kind:     kind,
		Report:   report,
	}); err != nil {
		log.Warnf("analysis history not saved for %s: %v", info.ID, err)
	}
	return report
}

func (a *Agent) previousAnalysis(
	ctx context.Context,
	query string,
	analysisType string,
) string {
	info, err := a.coins.Info(ctx, query)
	if err != nil {
		var nf *coin.NotFoundError
		if errors.As(err, &nf) {
			return fmt.Sprintf("Could not find cryptocurrency '%s'.", query)
		}
		return fmt.Sprintf("Error retrieving previous analysis: %v", err)
	}

	if analysisType == "" || analysisType == "all" {
		records, err := a.store.List(ctx, info.ID)
		if err != nil {
			return fmt.Sprintf("Error retrieving previous analysis: %v", err)
		}
		if len(records) == 0 {
			return fmt.Sprintf("No previous analysis found for %s. "+
				"Please run an analysis first.", query)
		}
		var b strings.Builder
		fmt.Fprintf(&b, "Previous analyses for %s:\n\n", info.Name)
		for _, rec := range records {
			fmt.Fprintf(&b, "\n%s\n%s\n", previousAnalysisSeparator, rec.Report)
		}
		return b.String()
	}

	rec, ok, err := a.store.Get(ctx, info.ID, history.Kind(analysisType))
	if err != nil {
		return fmt.Sprintf("Error retrieving previous analysis: %v", err)
	}
	if !ok {
		return fmt.Sprintf("No %s analysis found for %s.",
			analysisType, info.Name)
	}
	return rec.Report
}
