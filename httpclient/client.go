//
// Tencent is pleased to support the open source community by making
// trpc-coinsight-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-coinsight-go is licensed under the Apache License Version 2.0.
//
//

// Package httpclient provides a JSON GET client with bounded, rate-limit
// aware retries for the upstream data providers.
package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultMaxRetries = 2
	defaultTimeout    = 10 * time.Second

	// maxBackoff bounds every computed delay, including server-provided
	// Retry-After values.
	maxBackoff = 10 * time.Second

	// netBackoff is the single-retry delay for transport-level failures.
	netBackoff = time.Second
)

// APIError reports an unrecoverable provider failure.
type APIError struct {
	StatusCode int
	Endpoint   string
	Message    string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf(
			"api error: status %d from %s: %s",
			e.StatusCode, e.Endpoint, e.Message,
		)
	}
	return fmt.Sprintf("api error: %s: %s", e.Endpoint, e.Message)
}

// IsRateLimited reports whether err is an APIError with HTTP 429.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) &&
		apiErr.StatusCode == http.StatusTooManyRequests
}

// outcome tags the result of a single request attempt. The retry driver
// inspects tags instead of re-deriving retryability from error values.
type outcome int

const (
	outcomeOK outcome = iota
	outcomeRateLimited
	outcomeTimeout
	outcomeNetwork
	outcomeFatal
)

type attemptResult struct {
	outcome    outcome
	retryAfter time.Duration // from Retry-After, 0 when absent
	err        error
}

// Client performs GET requests against a single provider base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
	headers    map[string]string
	maxRetries int
	sleep      func(ctx context.Context, d time.Duration) bool
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-attempt request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithMaxRetries bounds how many times a retryable attempt is repeated.
// The total attempt count is maxRetries+1.
func WithMaxRetries(maxRetries int) Option {
	return func(c *Client) {
		if maxRetries >= 0 {
			c.maxRetries = maxRetries
		}
	}
}

// WithHeader adds a header to every request, e.g. a provider API key.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers[key] = value
	}
}

// WithSleep overrides the inter-attempt sleep. Intended for tests.
func WithSleep(sleep func(ctx context.Context, d time.Duration) bool) Option {
	return func(c *Client) {
		if sleep != nil {
			c.sleep = sleep
		}
	}
}

// New creates a client for the given provider base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		headers:    make(map[string]string),
		maxRetries: defaultMaxRetries,
		sleep:      sleepCtx,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get issues a GET against endpoint with query params and decodes the JSON
// response body into out. Rate-limited and timed-out attempts are retried
// with bounded backoff; other HTTP errors surface immediately as *APIError.
func (c *Client) Get(
	ctx context.Context,
	endpoint string,
	params url.Values,
	out any,
) error {
	netRetried := false
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		res := c.doOnce(ctx, endpoint, params, out)
		switch res.outcome {
		case outcomeOK:
			return nil

		case outcomeRateLimited:
			if attempt >= c.maxRetries {
				return &APIError{
					StatusCode: http.StatusTooManyRequests,
					Endpoint:   endpoint,
					Message: "rate limit exceeded, please wait a " +
						"moment before retrying",
				}
			}
			if !c.sleep(ctx, rateLimitBackoff(attempt, res.retryAfter)) {
				return ctx.Err()
			}

		case outcomeTimeout:
			if attempt >= c.maxRetries {
				return res.err
			}
			if !c.sleep(ctx, timeoutBackoff(attempt)) {
				return ctx.Err()
			}

		case outcomeNetwork:
			if netRetried {
				return res.err
			}
			netRetried = true
			if !c.sleep(ctx, netBackoff) {
				return ctx.Err()
			}

		default:
			return res.err
		}
	}
}

func (c *Client) doOnce(
	ctx context.Context,
	endpoint string,
	params url.Values,
	out any,
) attemptResult {
	u := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return attemptResult{
			outcome: outcomeFatal,
			err: &APIError{
				Endpoint: endpoint,
				Message:  fmt.Sprintf("new request: %v", err),
			},
		}
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransportError(endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		io.Copy(io.Discard, resp.Body)
		return attemptResult{
			outcome:    outcomeRateLimited,
			retryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return attemptResult{
			outcome: outcomeFatal,
			err: &APIError{
				StatusCode: resp.StatusCode,
				Endpoint:   endpoint,
				Message:    strings.TrimSpace(string(body)),
			},
		}
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return attemptResult{outcome: outcomeOK}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return attemptResult{
			outcome: outcomeFatal,
			err: &APIError{
				StatusCode: resp.StatusCode,
				Endpoint:   endpoint,
				Message:    fmt.Sprintf("decode response: %v", err),
			},
		}
	}
	return attemptResult{outcome: outcomeOK}
}

func classifyTransportError(endpoint string, err error) attemptResult {
	apiErr := &APIError{
		Endpoint: endpoint,
		Message:  fmt.Sprintf("request failed: %v", err),
	}

	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return attemptResult{outcome: outcomeTimeout, err: apiErr}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return attemptResult{outcome: outcomeTimeout, err: apiErr}
	}
	if errors.Is(err, context.Canceled) {
		return attemptResult{outcome: outcomeFatal, err: err}
	}
	// DNS failures, refused connections and the like get one retry.
	return attemptResult{outcome: outcomeNetwork, err: apiErr}
}

// rateLimitBackoff prefers the server's Retry-After over the exponential
// fallback. Either way the delay never exceeds maxBackoff.
func rateLimitBackoff(attempt int, retryAfter time.Duration) time.Duration {
	if retryAfter > 0 {
		if retryAfter > maxBackoff {
			return maxBackoff
		}
		return retryAfter
	}
	delay := time.Second
	for i := 0; i < attempt; i++ {
		delay *= 2
		if delay >= maxBackoff {
			return maxBackoff
		}
	}
	return delay
}

// timeoutBackoff grows linearly and saturates at two seconds.
func timeoutBackoff(attempt int) time.Duration {
	delay := time.Duration(attempt+1) * time.Second
	if delay > 2*time.Second {
		return 2 * time.Second
	}
	return delay
}

func parseRetryAfter(value string) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
