//
// Tencent is pleased to support the open source community by making
// trpc-coinsight-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-coinsight-go is licensed under the Apache License Version 2.0.
//
//

// Package agent orchestrates the conversational crypto analyst: a tool-using
// chat loop over the coin repository and analyzers, fronted by the semantic
// response cache.
package agent

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"trpc.group/trpc-go/trpc-coinsight-go/analyzer"
	"trpc.group/trpc-go/trpc-coinsight-go/coin"
	"trpc.group/trpc-go/trpc-coinsight-go/history"
	"trpc.group/trpc-go/trpc-coinsight-go/log"
	"trpc.group/trpc-go/trpc-coinsight-go/model"
	"trpc.group/trpc-go/trpc-coinsight-go/semcache"
)

// defaultMaxIterations bounds the tool-use loop per user message.
const defaultMaxIterations = 6

const iterationLimitAnswer = "Agent stopped due to iteration limit."

// CoinSource resolves free-form queries to coin identities.
type CoinSource interface {
	Info(ctx context.Context, query string) (*coin.Info, error)
}

// Agent is a conversational crypto analysis agent. It is not safe for
// concurrent use; each conversation owns one Agent.
type Agent struct {
	model     model.Model
	coins     CoinSource
	analyzers map[history.Kind]analyzer.Analyzer
	store     history.Store
	cache     *semcache.Cache

	sessionID     string
	maxIterations int
	history       []model.Message
}

// Option configures the agent.
type Option func(*Agent)

// WithCoinSource sets the coin identity resolver.
func WithCoinSource(coins CoinSource) Option {
	return func(a *Agent) { a.coins = coins }
}

// WithAnalyzer registers the analyzer behind one analysis kind.
func WithAnalyzer(kind history.Kind, an analyzer.Analyzer) Option {
	return func(a *Agent) { a.analyzers[kind] = an }
}

// WithHistoryStore sets the analysis history store.
func WithHistoryStore(store history.Store) Option {
	return func(a *Agent) { a.store = store }
}

// WithSemanticCache sets the semantic response cache. Without one, every
// query goes to the model.
func WithSemanticCache(cache *semcache.Cache) Option {
	return func(a *Agent) { a.cache = cache }
}

// WithMaxIterations bounds the tool-use loop per user message.
func WithMaxIterations(n int) Option {
	return func(a *Agent) {
		if n > 0 {
			a.maxIterations = n
		}
	}
}

// New creates an agent around a chat model. A repository-backed coin source
// and analyzers are expected via options; the history store defaults to an
// in-memory one.
func New(m model.Model, opts ...Option) *Agent {
	a := &Agent{
		model:         m,
		analyzers:     make(map[history.Kind]analyzer.Analyzer),
		sessionID:     uuid.NewString(),
		maxIterations: defaultMaxIterations,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.store == nil {
		a.store = history.NewMemoryStore()
	}
	return a
}

// SessionID identifies this conversation.
func (a *Agent) SessionID() string { return a.sessionID }

// Chat answers one user message. Errors never escape: failures come back as
// a user-facing apology string, matching the rest of the conversation flow.
//
// The semantic cache is consulted only for standalone queries (no prior
// turns); follow-ups depend on conversation context a cached answer cannot
// carry. On a hit, both the query and the cached answer join the transcript
// as if freshly produced.
func (a *Agent) Chat(ctx context.Context, userInput string) string {
	standalone := len(a.history) == 0

	if standalone && a.cache != nil {
		if answer, ok := a.cache.Get(ctx, userInput); ok {
			log.Infof("semantic cache hit for session %s", a.sessionID)
			a.history = append(a.history,
				model.UserMessage(userInput),
				model.AssistantMessage(answer))
			return answer
		}
	}

	answer, err := a.run(ctx, userInput)
	if err != nil {
		return fmt.Sprintf("I encountered an error: %v\n\n"+
			"Please try rephrasing your question or ask something else.", err)
	}

	a.history = append(a.history,
		model.UserMessage(userInput),
		model.AssistantMessage(answer))

	if standalone && a.cache != nil {
		a.cache.Set(ctx, userInput, answer)
	}
	return answer
}

// run drives the model/tool loop until the model produces a plain answer or
// the iteration budget runs out.
func (a *Agent) run(ctx context.Context, userInput string) (string, error) {
	messages := make([]model.Message, 0, len(a.history)+2)
	messages = append(messages, model.SystemMessage(systemPrompt))
	messages = append(messages, a.history...)
	messages = append(messages, model.UserMessage(userInput))

	tools := toolDeclarations()
	for i := 0; i < a.maxIterations; i++ {
		resp, err := a.model.Generate(ctx, messages, tools)
		if err != nil {
			return "", err
		}
		if len(resp.ToolCalls) == 0 {
			return resp.Content, nil
		}

		messages = append(messages, model.Message{
			Role:      model.RoleAssistant,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})
		for _, call := range resp.ToolCalls {
			log.Debugf("session %s calling tool %s", a.sessionID, call.Name)
			result := a.dispatchTool(ctx, call)
			messages = append(messages,
				model.ToolResultMessage(call.ID, result))
		}
	}
	return iterationLimitAnswer, nil
}

// Reset clears the conversation transcript and stored analysis reports,
// then starts a new session.
func (a *Agent) Reset(ctx context.Context) {
	a.history = nil
	a.sessionID = uuid.NewString()
	if err := a.store.Clear(ctx); err != nil {
		log.Warnf("clear analysis history: %v", err)
	}
}

// CacheStats reports semantic cache statistics, with ok=false when no cache
// is configured.
func (a *Agent) CacheStats() (semcache.Stats, bool) {
	if a.cache == nil {
		return semcache.Stats{}, false
	}
	return a.cache.Stats(), true
}

// ClearCache drops every cached answer.
func (a *Agent) ClearCache() {
	if a.cache != nil {
		a.cache.Clear()
	}
}
