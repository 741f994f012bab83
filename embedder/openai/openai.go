//
// Tencent is pleased to support the open source community by making
// trpc-coinsight-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-coinsight-go is licensed under the Apache License Version 2.0.
//
//

// Package openai provides an OpenAI-backed embedder.
package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"trpc.group/trpc-go/trpc-coinsight-go/embedder"
)

const (
	defaultModel      = openai.EmbeddingModelTextEmbedding3Small
	defaultDimensions = 1536
)

// Embedder generates embeddings through the OpenAI embeddings API.
type Embedder struct {
	client     openai.Client
	model      openai.EmbeddingModel
	dimensions int
}

// Option configures the embedder.
type Option func(*config)

type config struct {
	model      openai.EmbeddingModel
	dimensions int
	reqOpts    []option.RequestOption
}

// WithModel overrides the embedding model.
func WithModel(model string) Option {
	return func(c *config) {
		if model != "" {
			c.model = openai.EmbeddingModel(model)
		}
	}
}

// WithDimensions overrides the reported vector dimensionality.
func WithDimensions(dims int) Option {
	return func(c *config) {
		if dims > 0 {
			c.dimensions = dims
		}
	}
}

// WithRequestOptions forwards options to the OpenAI client, e.g. a custom
// base URL for tests.
func WithRequestOptions(opts ...option.RequestOption) Option {
	return func(c *config) { c.reqOpts = append(c.reqOpts, opts...) }
}

// New creates an OpenAI embedder authenticated with apiKey.
func New(apiKey string, opts ...Option) *Embedder {
	cfg := config{model: defaultModel, dimensions: defaultDimensions}
	for _, opt := range opts {
		opt(&cfg)
	}
	reqOpts := append([]option.RequestOption{option.WithAPIKey(apiKey)},
		cfg.reqOpts...)
	return &Embedder{
		client:     openai.NewClient(reqOpts...),
		model:      cfg.model,
		dimensions: cfg.dimensions,
	}
}

var _ embedder.Embedder = (*Embedder)(nil)

// GetEmbedding returns the embedding vector for text.
func (e *Embedder) GetEmbedding(
	ctx context.Context,
	text string,
) ([]float64, error) {
	resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: e.model,
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: []string{text},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("create embedding: empty response")
	}
	return resp.Data[0].Embedding, nil
}

// GetDimensions returns the embedding vector dimensionality.
func (e *Embedder) GetDimensions() int { return e.dimensions }
