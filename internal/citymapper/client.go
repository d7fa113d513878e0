// Package citymapper is a minimal client-side binding to the Citymapper
// transit API: coordinate normalization, URL construction and a
// rate-limited, call-capped dispatcher. Responses are returned as decoded
// JSON without schema validation.
package citymapper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/transitlabs/citymapper/internal/metrics"
)

// BaseURL is the Citymapper API host every request is issued against.
const BaseURL = "https://developer.citymapper.com/"

// Endpoint selects the API path segment identifying a remote service
// operation.
type Endpoint string

// EndpointTravelTime is the transit travel-time lookup service. The
// coverage endpoints are not part of the public API surface this library
// binds.
const EndpointTravelTime Endpoint = "api/1/traveltime/?"

// Construction defaults matching the provider's usage policy.
const (
	DefaultCallLimit = 1000 // lifetime calls per client instance
	DefaultRate      = 10   // calls per minute
)

// ErrCallLimitExceeded is returned once a client has spent its lifetime call
// allowance. The counter never resets; the client instance is done.
var ErrCallLimitExceeded = errors.New("citymapper lifetime API call limit reached")

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a binding to the Citymapper transit API. It tracks a lifetime
// call count and the time of its last dispatch, and throttles outbound
// calls to its configured rate.
//
// A Client is NOT safe for concurrent use. It assumes a single synchronous
// caller; wrap it in external locking if you must share it.
type Client struct {
	client  HTTPClient       // HTTP client for making requests
	baseURL string           // API host, fixed to BaseURL
	apiKey  string           // API credential, immutable for the client's lifetime
	log     *slog.Logger     // Logger for request tracing
	limiter *rate.Limiter    // Outbound rate limiter
	metrics *metrics.Metrics // Optional instrumentation, may be nil

	callLimit int       // Lifetime call ceiling
	calls     int       // Dispatches attempted so far
	lastCall  time.Time // When the last call was dispatched
}

// Option configures a Client at construction time.
type Option func(*Client)

// WithHTTPClient injects a custom HTTP client, e.g. a mock in tests.
func WithHTTPClient(httpClient HTTPClient) Option {
	return func(c *Client) { c.client = httpClient }
}

// WithCallLimit overrides the lifetime call ceiling.
func WithCallLimit(limit int) Option {
	return func(c *Client) { c.callLimit = limit }
}

// WithRate overrides the outbound rate in calls per minute.
func WithRate(callsPerMinute int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(callsPerMinute)), 1)
	}
}

// WithLimiter injects a prebuilt limiter, e.g. rate.NewLimiter(rate.Inf, 0)
// to disable throttling in tests.
func WithLimiter(limiter *rate.Limiter) Option {
	return func(c *Client) { c.limiter = limiter }
}

// WithMetrics attaches prometheus instrumentation to the client.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient creates a Citymapper API client for the given credential.
// Defaults: 10-second HTTP timeout, 10 calls/minute, 1000 lifetime calls.
func NewClient(apiKey string, log *slog.Logger, opts ...Option) *Client {
	const timeout = 10

	c := &Client{
		client: &http.Client{
			Timeout: timeout * time.Second,
		},
		baseURL:   BaseURL,
		apiKey:    apiKey,
		log:       log,
		limiter:   rate.NewLimiter(rate.Every(time.Minute/DefaultRate), 1),
		callLimit: DefaultCallLimit,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Calls reports how many dispatches this client has performed.
func (c *Client) Calls() int { return c.calls }

// LastCallAt reports when the last dispatch went out; zero before the first.
func (c *Client) LastCallAt() time.Time { return c.lastCall }

// TravelTime retrieves the transit travel time from origin to destination.
//
// The decoded JSON body is returned as-is, provider error payloads
// included (e.g. {"error_message": "Invalid API key"}); interpreting it is
// the caller's job. A successful lookup carries {"travel_time": <minutes>}.
func (c *Client) TravelTime(ctx context.Context, req TravelTimeRequest) (map[string]any, error) {
	params, err := req.params()
	if err != nil {
		return nil, err
	}
	query := c.makeURL(EndpointTravelTime, params)

	c.log.DebugContext(ctx, "Citymapper request URL", "url", query)

	start := time.Now()
	resp, err := c.dispatch(ctx, query)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if c.metrics != nil {
		c.metrics.RequestSeconds.WithLabelValues(string(EndpointTravelTime)).
			Observe(time.Since(start).Seconds())
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	c.log.DebugContext(ctx, "Citymapper raw response", "status", resp.StatusCode, "body", string(body))

	var decoded map[string]any
	if err = json.Unmarshal(body, &decoded); err != nil {
		if c.metrics != nil {
			c.metrics.APIErrors.Inc()
		}
		return nil, fmt.Errorf("failed to decode citymapper response: %w", err)
	}

	c.log.InfoContext(ctx, "Travel time lookup completed", "status", resp.StatusCode)

	return decoded, nil
}

// makeURL assembles the request URL: base, endpoint path, then the query
// parameters in insertion order with the API key appended last.
func (c *Client) makeURL(endpoint Endpoint, params []queryParam) string {
	params = append(params, queryParam{"key", c.apiKey})

	pairs := make([]string, 0, len(params))
	for _, p := range params {
		pairs = append(pairs, p.key+"="+url.QueryEscape(p.value))
	}

	return c.baseURL + string(endpoint) + strings.Join(pairs, "&")
}

// dispatch performs the bookkeeping around a single GET: the lifetime call
// ceiling, the rate-limiter wait, and the last-call timestamp.
func (c *Client) dispatch(ctx context.Context, query string) (*http.Response, error) {
	if c.calls >= c.callLimit {
		if c.metrics != nil {
			c.metrics.Dispatches.WithLabelValues("refused").Inc()
		}
		return nil, fmt.Errorf("%w (%d calls)", ErrCallLimitExceeded, c.calls)
	}
	c.calls++

	waitStart := time.Now()
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	if c.metrics != nil {
		c.metrics.ThrottleWaitSeconds.Observe(time.Since(waitStart).Seconds())
	}

	c.lastCall = time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, query, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if c.metrics != nil {
			c.metrics.Dispatches.WithLabelValues("error").Inc()
			c.metrics.APIErrors.Inc()
		}
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}

	if c.metrics != nil {
		c.metrics.Dispatches.WithLabelValues("ok").Inc()
	}

	return resp, nil
}
