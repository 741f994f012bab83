//
// Tencent is pleased to support the open source community by making
// trpc-coinsight-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-coinsight-go is licensed under the Apache License Version 2.0.
//
//

// Package app wires the coinsight agent: configuration, clients, caches,
// analyzers, and the interactive chat loop.
package app

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap/zapcore"

	"trpc.group/trpc-go/trpc-coinsight-go/agent"
	"trpc.group/trpc-go/trpc-coinsight-go/analyzer"
	"trpc.group/trpc-go/trpc-coinsight-go/cache"
	"trpc.group/trpc-go/trpc-coinsight-go/coin"
	"trpc.group/trpc-go/trpc-coinsight-go/config"
	embopenai "trpc.group/trpc-go/trpc-coinsight-go/embedder/openai"
	"trpc.group/trpc-go/trpc-coinsight-go/history"
	"trpc.group/trpc-go/trpc-coinsight-go/httpclient"
	"trpc.group/trpc-go/trpc-coinsight-go/log"
	modelopenai "trpc.group/trpc-go/trpc-coinsight-go/model/openai"
	"trpc.group/trpc-go/trpc-coinsight-go/semcache"
)

const appName = "coinsight"

const welcomeText = `Crypto Token Analysis Chat Agent

Welcome! I'm your AI-powered cryptocurrency analyst. I can help you analyze
tokens across multiple dimensions:

Available Analysis Types:
- Fundamental Analysis: market cap, volume, supply, tokenomics, liquidity
- Price Analysis: trends, volatility, support/resistance levels
- Sentiment Analysis: social media metrics, community engagement
- Technical Analysis: moving averages, RSI, MACD, indicators

Example Questions:
- "Tell me about Bitcoin"
- "What's the price trend of Ethereum?"
- "Compare Bitcoin's sentiment to Ethereum"

Commands:
- Type your question naturally
- 'exit' or 'quit' to end the session
- 'clear' to reset the conversation
- 'cache' or 'stats' to view cache statistics
- 'help' for this message

Note: this is educational information, not financial advice. Cryptocurrency
investments are risky. Always DYOR (Do Your Own Research).`

const helpText = `How to use this agent:

Simply type your question about any cryptocurrency, for example:
- "Tell me about Bitcoin"
- "Analyze Ethereum"
- "What's the market cap of Solana?"

The agent chooses which analyses to run based on your question, remembers
conversation context, and can reference earlier analyses for comparisons.

Commands:
- 'exit' or 'quit' ends the session
- 'clear' resets conversation memory
- 'cache' or 'stats' shows semantic cache statistics
- 'help' shows this message`

// Main runs the coinsight CLI and returns the process exit code.
func Main(args []string) int {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	if err := run(ctx, args, os.Stdin, os.Stdout); err != nil {
		log.Errorf("%v", err)
		return 1
	}
	return 0
}

func run(ctx context.Context, args []string, in io.Reader, out io.Writer) error {
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	configPath := fs.String("config", "", "path to YAML config file")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	settings, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if settings.Verbose {
		log.Default = log.New(zapcore.DebugLevel)
	} else {
		log.Default = log.New(zapcore.WarnLevel)
	}

	a, cleanup, err := buildAgent(settings)
	if err != nil {
		return fmt.Errorf("initialize agent: %w", err)
	}
	defer cleanup()

	fmt.Fprintln(out, welcomeText)
	return chatLoop(ctx, a, in, out)
}

// buildAgent assembles the agent from settings. The returned cleanup closes
// the history store.
func buildAgent(settings *config.Settings) (*agent.Agent, func(), error) {
	httpOpts := []httpclient.Option{
		httpclient.WithTimeout(settings.RequestTimeout()),
	}
	repo := coin.NewRepository(
		coin.WithGeckoClient(coin.NewGeckoClient(
			coin.WithGeckoHTTPOptions(httpOpts...))),
		coin.WithFearGreedClient(coin.NewFearGreedClient(
			coin.WithFearGreedHTTPOptions(httpOpts...))),
		coin.WithNewsClient(coin.NewNewsClient(settings.NewsAPIKey,
			coin.WithNewsHTTPOptions(httpOpts...))),
		coin.WithCache(cache.New(
			cache.WithDefaultTTL(settings.CacheTTL()))),
		coin.WithVolatileTTL(settings.CacheTTL()),
	)

	store, cleanup, err := buildHistoryStore(settings)
	if err != nil {
		return nil, nil, err
	}

	chatModel := modelopenai.New(settings.OpenAIAPIKey,
		modelopenai.WithModel(settings.OpenAIModel))

	opts := []agent.Option{
		agent.WithCoinSource(repo),
		agent.WithAnalyzer(history.KindFundamental, analyzer.NewFundamental(repo)),
		agent.WithAnalyzer(history.KindPrice, analyzer.NewPrice(repo)),
		agent.WithAnalyzer(history.KindSentiment, analyzer.NewSentiment(repo)),
		agent.WithAnalyzer(history.KindTechnical, analyzer.NewTechnical(repo)),
		agent.WithHistoryStore(store),
	}
	if settings.SemanticCache.Enabled {
		emb := embopenai.New(settings.OpenAIAPIKey,
			embopenai.WithModel(settings.SemanticCache.EmbeddingModel))
		opts = append(opts, agent.WithSemanticCache(semcache.New(
			semcache.WithEmbedder(emb),
			semcache.WithSimilarityThreshold(
				settings.SemanticCache.SimilarityThreshold),
			semcache.WithMaxEntries(settings.SemanticCache.MaxCacheSize),
			semcache.WithTTL(settings.SemanticCache.TTL()),
			semcache.WithFilePath(settings.SemanticCache.FilePath),
			semcache.WithModelName(settings.SemanticCache.EmbeddingModel),
		)))
	}

	a := agent.New(chatModel, opts...)
	log.Infof("%s agent ready, session %s", appName, a.SessionID())
	return a, cleanup, nil
}

func buildHistoryStore(
	settings *config.Settings,
) (history.Store, func(), error) {
	if settings.HistoryDBPath == "" {
		return history.NewMemoryStore(), func() {}, nil
	}
	store, err := history.OpenSQLite(settings.HistoryDBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open history db: %w", err)
	}
	cleanup := func() {
		if err := store.Close(); err != nil {
			log.Warnf("close history db: %v", err)
		}
	}
	return store, cleanup, nil
}

// chatLoop reads user turns until exit, EOF, or context cancellation.
func chatLoop(
	ctx context.Context,
	a *agent.Agent,
	in io.Reader,
	out io.Writer,
) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 64*1024)

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(out, "\nGoodbye!")
			return nil
		default:
		}

		fmt.Fprint(out, "\nYou: ")
		if !scanner.Scan() {
			fmt.Fprintln(out, "\nGoodbye!")
			return scanner.Err()
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		handled, done := handleCommand(ctx, a, out, strings.ToLower(input))
		if done {
			return nil
		}
		if handled {
			continue
		}

		fmt.Fprintln(out, "\nAgent is thinking...")
		answer := a.Chat(ctx, input)
		fmt.Fprintf(out, "\nAgent: %s\n", answer)
	}
}

// handleCommand processes a REPL command. handled reports whether the input
// was a command; done reports whether the session should end.
func handleCommand(
	ctx context.Context,
	a *agent.Agent,
	out io.Writer,
	input string,
) (handled, done bool) {
	switch input {
	case "exit", "quit", "q":
		fmt.Fprintln(out,
			"\nThanks for using Crypto Analysis Agent! Goodbye!")
		return true, true
	case "clear", "reset":
		a.Reset(ctx)
		fmt.Fprintln(out, "\nConversation memory cleared!")
		return true, false
	case "help", "h", "?":
		fmt.Fprintln(out, "\n"+helpText)
		return true, false
	case "cache", "stats":
		printCacheStats(a, out)
		return true, false
	}
	return false, false
}

func printCacheStats(a *agent.Agent, out io.Writer) {
	stats, ok := a.CacheStats()
	if !ok {
		fmt.Fprintln(out, "\nSemantic cache is not enabled.")
		return
	}
	fmt.Fprintf(out, `
Semantic Cache Statistics:
- Size: %d / %d entries
- Total Hits: %d
- Average Hits per Entry: %.2f
- Similarity Threshold: %.2f
- TTL: %.0f seconds
`, stats.Size, stats.MaxSize, stats.TotalHits,
		stats.AverageHitsPerEntry, stats.SimilarityThreshold,
		stats.TTL.Seconds())
}
