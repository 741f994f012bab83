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
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"

	"trpc.group/trpc-go/trpc-coinsight-go/httpclient"
	"trpc.group/trpc-go/trpc-coinsight-go/log"
)

const (
	defaultNewsBaseURL  = "https://newsapi.org/v2"
	defaultNewsPageSize = 10
	defaultNewsDaysBack = 7

	newsAPIKeyHeader = "X-Api-Key"

	// removedTitle marks articles redacted by the provider.
	removedTitle = "[Removed]"
)

type newsResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Articles []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

// NewsClient talks to the NewsAPI "everything" endpoint. A client without an
// API key is valid and returns no articles.
type NewsClient struct {
	http   *httpclient.Client
	apiKey string
	now    func() time.Time
}

// NewsOption configures the news client.
type NewsOption func(*newsConfig)

type newsConfig struct {
	baseURL  string
	httpOpts []httpclient.Option
	now      func() time.Time
}

// WithNewsBaseURL overrides the provider base URL. Intended for tests.
func WithNewsBaseURL(baseURL string) NewsOption {
	return func(c *newsConfig) { c.baseURL = baseURL }
}

// WithNewsHTTPOptions forwards options to the underlying HTTP client.
func WithNewsHTTPOptions(opts ...httpclient.Option) NewsOption {
	return func(c *newsConfig) { c.httpOpts = append(c.httpOpts, opts...) }
}

// WithNewsClock overrides the time source used for date windows.
func WithNewsClock(now func() time.Time) NewsOption {
	return func(c *newsConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// NewNewsClient creates a news client. An empty apiKey disables fetching.
func NewNewsClient(apiKey string, opts ...NewsOption) *NewsClient {
	cfg := newsConfig{baseURL: defaultNewsBaseURL, now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	httpOpts := cfg.httpOpts
	if apiKey != "" {
		httpOpts = append(httpOpts,
			httpclient.WithHeader(newsAPIKeyHeader, apiKey))
	}
	return &NewsClient{
		http:   httpclient.New(cfg.baseURL, httpOpts...),
		apiKey: apiKey,
		now:    cfg.now,
	}
}

// Configured reports whether an API key is present.
func (c *NewsClient) Configured() bool { return c.apiKey != "" }

// Search returns up to pageSize recent articles matching query.
func (c *NewsClient) Search(
	ctx context.Context,
	query string,
	pageSize int,
	daysBack int,
) ([]NewsArticle, error) {
	if c.apiKey == "" {
		return nil, nil
	}
	if pageSize <= 0 {
		pageSize = defaultNewsPageSize
	}
	if pageSize > 100 {
		pageSize = 100
	}
	if daysBack <= 0 {
		daysBack = defaultNewsDaysBack
	}

	to := c.now()
	from := to.AddDate(0, 0, -daysBack)
	params := url.Values{
		"q":        []string{query},
		"language": []string{"en"},
		"sortBy":   []string{"publishedAt"},
		"pageSize": []string{strconv.Itoa(pageSize)},
		"from":     []string{from.Format("2006-01-02")},
		"to":       []string{to.Format("2006-01-02")},
	}

	var out newsResponse
	if err := c.http.Get(ctx, "everything", params, &out); err != nil {
		return nil, err
	}
	if out.Status != "ok" {
		return nil, fmt.Errorf("news provider error: %s", out.Message)
	}

	articles := make([]NewsArticle, 0, len(out.Articles))
	for _, a := range out.Articles {
		if a.Title == "" || a.Title == removedTitle {
			continue
		}
		articles = append(articles, NewsArticle{
			Title:       a.Title,
			Description: a.Description,
			URL:         a.URL,
			Source:      a.Source.Name,
			PublishedAt: a.PublishedAt,
		})
		if len(articles) >= pageSize {
			break
		}
	}
	return articles, nil
}

// CoinNews searches for articles about a coin under several queries (name,
// symbol, both) and merges the results, deduplicating by URL. Per-query
// failures are aggregated; an error is returned only when every query failed
// and nothing was collected.
func (c *NewsClient) CoinNews(
	ctx context.Context,
	coinName string,
	coinSymbol string,
	pageSize int,
) ([]NewsArticle, error) {
	if c.apiKey == "" {
		return nil, nil
	}
	if pageSize <= 0 {
		pageSize = defaultNewsPageSize
	}

	queries := []string{coinName}
	if coinSymbol != "" {
		queries = append(queries, coinSymbol, coinName+" "+coinSymbol)
	}

	var (
		merged   []NewsArticle
		seenURLs = make(map[string]struct{})
		errs     *multierror.Error
	)
	for _, q := range queries {
		if strings.TrimSpace(q) == "" {
			continue
		}
		articles, err := c.Search(ctx, q, pageSize, defaultNewsDaysBack)
		if err != nil {
			if httpclient.IsRateLimited(err) {
				// Further queries will hit the same limit.
				errs = multierror.Append(errs, err)
				break
			}
			log.Warnf("news query %q failed: %v", q, err)
			errs = multierror.Append(errs, err)
			continue
		}
		for _, a := range articles {
			if a.URL != "" {
				if _, seen := seenURLs[a.URL]; seen {
					continue
				}
				seenURLs[a.URL] = struct{}{}
			}
			merged = append(merged, a)
			if len(merged) >= pageSize {
				return merged, nil
			}
		}
	}

	if len(merged) == 0 && errs != nil {
		return nil, fmt.Errorf("coin news: %w", errs.ErrorOrNil())
	}
	return merged, nil
}
