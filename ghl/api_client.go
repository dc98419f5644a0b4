// ABOUTME: HTTP client for the OAuth-backed GHL v2 API
// ABOUTME: Attaches the bearer token, refreshes once on 401, and backs off on 429
package ghl

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultRetries    = 3
	DefaultRetryDelay = time.Second
)

// AccessTokenSource is the part of TokenManager the client depends on.
type AccessTokenSource interface {
	GetAccessToken(ctx context.Context) (string, error)
	RefreshRejected(ctx context.Context, accessToken string) (string, error)
}

type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte

	// SkipAuth sends the request without a bearer token and disables the 401 refresh.
	SkipAuth bool
}

type APIClient struct {
	tokens     AccessTokenSource
	http       *http.Client
	retryDelay time.Duration
	now        func() time.Time
	sleep      func(ctx context.Context, d time.Duration) error
	log        zerolog.Logger
}

type APIClientOption func(*APIClient)

func WithHTTPClient(c *http.Client) APIClientOption {
	return func(a *APIClient) { a.http = c }
}

// WithRetryDelay sets the base of the 429 fallback delay when Retry-After is absent.
func WithRetryDelay(d time.Duration) APIClientOption {
	return func(a *APIClient) { a.retryDelay = d }
}

// WithSleeper replaces the wait between 429 retries.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) APIClientOption {
	return func(a *APIClient) { a.sleep = sleep }
}

func WithAPIClock(now func() time.Time) APIClientOption {
	return func(a *APIClient) { a.now = now }
}

func WithAPILogger(log zerolog.Logger) APIClientOption {
	return func(a *APIClient) { a.log = log }
}

func NewAPIClient(tokens AccessTokenSource, opts ...APIClientOption) *APIClient {
	c := &APIClient{
		tokens:     tokens,
		http:       &http.Client{Timeout: 30 * time.Second},
		retryDelay: DefaultRetryDelay,
		now:        time.Now,
		sleep:      sleepContext,
		log:        zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Fetch is FetchWithRetries with DefaultRetries.
func (c *APIClient) Fetch(ctx context.Context, req Request) (*http.Response, error) {
	return c.FetchWithRetries(ctx, req, DefaultRetries)
}

// FetchWithRetries sends req. A 401 triggers one token refresh and one resend.
// A 429 waits for Retry-After, or retryDelay times the attempt number, and is
// retried up to retries times; after that the 429 response is returned as is.
// Non-2xx responses are returned, not converted to errors.
func (c *APIClient) FetchWithRetries(ctx context.Context, req Request, retries int) (*http.Response, error) {
	var token string
	if !req.SkipAuth {
		var err error
		if token, err = c.tokens.GetAccessToken(ctx); err != nil {
			return nil, err
		}
	}

	refreshed := false
	throttled := 0
	for {
		resp, err := c.send(ctx, req, token)
		if err != nil {
			return nil, err
		}

		switch {
		case resp.StatusCode == http.StatusUnauthorized && !req.SkipAuth && !refreshed:
			discard(resp)
			refreshed = true
			c.log.Debug().Str("url", req.URL).Msg("GHL rejected access token, refreshing")
			if token, err = c.tokens.RefreshRejected(ctx, token); err != nil {
				return nil, err
			}

		case resp.StatusCode == http.StatusTooManyRequests && retries > 0:
			throttled++
			delay := c.backoff(resp, throttled)
			discard(resp)
			retries--
			c.log.Debug().Str("url", req.URL).Dur("delay", delay).Int("retries_left", retries).Msg("GHL rate limited")
			if err := c.sleep(ctx, delay); err != nil {
				return nil, err
			}

		default:
			return resp, nil
		}
	}
}

func (c *APIClient) send(ctx context.Context, req Request, token string) (*http.Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("GHL %s %s: %w", method, req.URL, err)
	}
	return resp, nil
}

// backoff honours Retry-After in seconds or as an HTTP date.
func (c *APIClient) backoff(resp *http.Response, attempt int) time.Duration {
	if v := strings.TrimSpace(resp.Header.Get("Retry-After")); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second
		}
		if at, err := http.ParseTime(v); err == nil {
			if d := at.Sub(c.now()); d > 0 {
				return d
			}
			return 0
		}
	}
	return c.retryDelay * time.Duration(attempt)
}

func discard(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	_ = resp.Body.Close()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
