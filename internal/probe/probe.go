// Package probe performs the timed HTTP requests for httpstat.
//
// This package is internal to httpstat and handles one concern: issue a
// HEAD and a GET against the target URL, each bounded by a per-attempt
// timeout, and report the status code and elapsed wall-clock time for
// both, or a single error for the whole attempt.
//
// The main components are:
//
//   - [Client]: HTTP client wrapper with a keepalive toggle
//   - [Result]: Timings and status code of one successful probe
package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// UserAgent identifies monitor traffic so server-side analysis tools can
// distinguish it from real users.
const UserAgent = "httpstat monitor"

// connection pooling limits for keepalive mode, shared across ticks
const (
	defaultMaxIdleConns        = 10
	defaultIdleConnTimeout     = 60 * time.Second
	defaultMaxIdleConnsPerHost = 2
)

// Result holds the measurements of one successful probe.
//
// A probe succeeds only if both the HEAD and the GET request complete;
// there is no partial result.
type Result struct {
	// StatusCode is the HTTP status code of the GET response.
	StatusCode int

	// HeadElapsed is the wall-clock duration of the HEAD request,
	// a proxy for network connection time.
	HeadElapsed time.Duration

	// GetElapsed is the wall-clock duration of the GET request,
	// the full document fetch time.
	GetElapsed time.Duration
}

// Client is an HTTP client wrapper for repeated latency probes.
//
// With keepalive disabled (the default), the transport closes the
// connection after every request, so the GET timing is not flattered by
// a connection the preceding HEAD already warmed up, and successive
// ticks measure comparable cold-connection behavior. With keepalive
// enabled, connections are pooled and reused across requests and ticks.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a probe [Client].
//
// Timeouts are applied per request via context in [Client.Probe], not as
// a global client timeout.
func NewClient(keepalive bool) *Client {
	return &Client{
		httpClient: &http.Client{
			Transport: &http.Transport{
				DisableKeepAlives:   !keepalive,
				MaxIdleConns:        defaultMaxIdleConns,
				MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
				IdleConnTimeout:     defaultIdleConnTimeout,
			},
		},
	}
}

// Probe issues one HEAD request and then one GET request against url,
// each bounded by timeout, and returns both elapsed durations and the
// GET status code.
//
// The two requests are sequential, never concurrent. If either request
// fails at the transport level (timeout, DNS, refused connection, TLS),
// Probe returns an error and no partial measurements.
func (c *Client) Probe(ctx context.Context, url string, timeout time.Duration) (Result, error) {
	_, headElapsed, err := c.fetch(ctx, http.MethodHead, url, timeout)
	if err != nil {
		return Result{}, fmt.Errorf("HEAD %s: %w", url, err)
	}

	status, getElapsed, err := c.fetch(ctx, http.MethodGet, url, timeout)
	if err != nil {
		return Result{}, fmt.Errorf("GET %s: %w", url, err)
	}

	return Result{
		StatusCode:  status,
		HeadElapsed: headElapsed,
		GetElapsed:  getElapsed,
	}, nil
}

// fetch performs a single timed request. The elapsed time covers request
// creation through draining the response body, so GET timings reflect
// the full document transfer.
//
// Only GET and HEAD are valid; any other method is a programming error
// and panics rather than returning through the transport-error path.
func (c *Client) fetch(ctx context.Context, method, url string, timeout time.Duration) (int, time.Duration, error) {
	if method != http.MethodGet && method != http.MethodHead {
		panic(fmt.Sprintf("probe: unsupported method %q", method))
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	// drain and discard: body content is out of scope, but the transfer
	// time belongs in the measurement
	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		return 0, 0, fmt.Errorf("failed to read response body: %w", err)
	}

	return resp.StatusCode, time.Since(start), nil
}

// Close closes all idle connections in the client's connection pool.
//
// Only meaningful in keepalive mode; safe to call multiple times and
// the client remains usable afterwards.
func (c *Client) Close() {
	if c == nil || c.httpClient == nil {
		return
	}
	if transport, ok := c.httpClient.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
}
