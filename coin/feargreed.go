//
// Tencent is pleased to support the open source community by making
// trpc-coinsight-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-coinsight-go is licensed under the Apache License Version 2.0.
//
//

package coin

import (
	"context"
	"strconv"

	"trpc.group/trpc-go/trpc-coinsight-go/httpclient"
	"trpc.group/trpc-go/trpc-coinsight-go/log"
)

const defaultFearGreedBaseURL = "https://api.alternative.me"

// neutralFearGreed is returned when the index cannot be fetched; a missing
// macro reading should never fail an analysis.
var neutralFearGreed = FearGreed{Value: 50, Classification: "Neutral"}

type fearGreedResponse struct {
	Data []struct {
		Value               string `json:"value"`
		ValueClassification string `json:"value_classification"`
		Timestamp           string `json:"timestamp"`
	} `json:"data"`
}

// FearGreedClient talks to the alternative.me Fear & Greed index API.
type FearGreedClient struct {
	http *httpclient.Client
}

// FearGreedOption configures the Fear & Greed client.
type FearGreedOption func(*fearGreedConfig)

type fearGreedConfig struct {
	baseURL  string
	httpOpts []httpclient.Option
}

// WithFearGreedBaseURL overrides the provider base URL. Intended for tests.
func WithFearGreedBaseURL(baseURL string) FearGreedOption {
	return func(c *fearGreedConfig) { c.baseURL = baseURL }
}

// WithFearGreedHTTPOptions forwards options to the underlying HTTP client.
func WithFearGreedHTTPOptions(opts ...httpclient.Option) FearGreedOption {
	return func(c *fearGreedConfig) { c.httpOpts = append(c.httpOpts, opts...) }
}

// NewFearGreedClient creates a Fear & Greed index client.
func NewFearGreedClient(opts ...FearGreedOption) *FearGreedClient {
	cfg := fearGreedConfig{baseURL: defaultFearGreedBaseURL}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &FearGreedClient{http: httpclient.New(cfg.baseURL, cfg.httpOpts...)}
}

// Index returns the current Fear & Greed reading, degrading to a neutral
// default when the provider is unreachable or returns an empty payload.
func (c *FearGreedClient) Index(ctx context.Context) (FearGreed, error) {
	var out fearGreedResponse
	if err := c.http.Get(ctx, "fng/", nil, &out); err != nil {
		if httpclient.IsRateLimited(err) {
			return neutralFearGreed, err
		}
		log.Warnf("fear/greed index unavailable: %v", err)
		return neutralFearGreed, nil
	}
	if len(out.Data) == 0 {
		return neutralFearGreed, nil
	}

	first := out.Data[0]
	value, err := strconv.Atoi(first.Value)
	if err != nil {
		value = neutralFearGreed.Value
	}
	return FearGreed{
		Value:          value,
		Classification: first.ValueClassification,
		Timestamp:      first.Timestamp,
	}, nil
}
