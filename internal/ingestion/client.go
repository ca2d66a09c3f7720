package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// Default configuration values.
const (
	DefaultTimeout          = 10 * time.Second
	DefaultUserAgent        = "solana-pair-radar/1.0"
	DefaultRequestsPerSec   = 5.0
	DefaultBurst            = 5
	DefaultBreakerFailures  = 5
	DefaultBreakerOpenDelay = 60 * time.Second
	maxBodyBytes            = 16 << 20
	maxErrorBodyBytes       = 512
)

var (
	// ErrRateLimited is returned when the endpoint answers HTTP 429.
	ErrRateLimited = errors.New("rate limited (429)")

	// ErrUnexpectedStatus is returned for any other non-2xx status.
	ErrUnexpectedStatus = errors.New("unexpected status")

	// ErrCircuitOpen is returned while the breaker for a host is open.
	ErrCircuitOpen = errors.New("circuit breaker open")
)

// jsonAPI decodes numbers as json.Number so integer fields keep full precision.
var jsonAPI = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	UseNumber:              true,
}.Froze()

// Client performs throttled GET requests that decode JSON bodies.
// Each host gets its own token bucket and circuit breaker.
type Client struct {
	client    *http.Client
	userAgent string
	rps       float64
	burst     int

	breakerFailures  uint32
	breakerOpenDelay time.Duration

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	breakers map[string]*gobreaker.CircuitBreaker
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithRateLimit sets the per-host requests per second and burst.
// A non-positive rps disables throttling.
func WithRateLimit(rps float64, burst int) ClientOption {
	return func(c *Client) {
		c.rps = rps
		c.burst = burst
	}
}

// WithBreaker sets the consecutive failures that open a host breaker and
// how long it stays open.
func WithBreaker(failures uint32, openDelay time.Duration) ClientOption {
	return func(c *Client) {
		c.breakerFailures = failures
		c.breakerOpenDelay = openDelay
	}
}

// NewClient creates a new feed HTTP client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		client:           &http.Client{Timeout: DefaultTimeout},
		userAgent:        DefaultUserAgent,
		rps:              DefaultRequestsPerSec,
		burst:            DefaultBurst,
		breakerFailures:  DefaultBreakerFailures,
		breakerOpenDelay: DefaultBreakerOpenDelay,
		limiters:         make(map[string]*rate.Limiter),
		breakers:         make(map[string]*gobreaker.CircuitBreaker),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.burst < 1 {
		c.burst = 1
	}
	return c
}

// GetJSON fetches rawURL and decodes the JSON body.
// Rate limiting is reported as ErrRateLimited and never trips the breaker.
func (c *Client) GetJSON(ctx context.Context, rawURL string, headers map[string]string) (any, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	host := u.Host

	if limiter := c.limiter(host); limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("wait for rate limiter: %w", err)
		}
	}

	body, err := c.breaker(host).Execute(func() (interface{}, error) {
		return c.do(ctx, rawURL, headers)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w for %s: %v", ErrCircuitOpen, host, err)
		}
		return nil, err
	}
	return body, nil
}

// do performs one request without throttling or breaker accounting.
func (c *Client) do(ctx context.Context, rawURL string, headers map[string]string) (any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, ErrRateLimited
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, fmt.Errorf("%w %d: %s", ErrUnexpectedStatus, resp.StatusCode, string(snippet))
	}

	var body any
	if err := jsonAPI.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return body, nil
}

func (c *Client) limiter(host string) *rate.Limiter {
	if c.rps <= 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	l, exists := c.limiters[host]
	if !exists {
		l = rate.NewLimiter(rate.Limit(c.rps), c.burst)
		c.limiters[host] = l
	}
	return l
}

func (c *Client) breaker(host string) *gobreaker.CircuitBreaker {
	c.mu.Lock()
	defer c.mu.Unlock()

	cb, exists := c.breakers[host]
	if !exists {
		failures := c.breakerFailures
		cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        host,
			MaxRequests: 1,
			Timeout:     c.breakerOpenDelay,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return failures > 0 && counts.ConsecutiveFailures >= failures
			},
			IsSuccessful: func(err error) bool {
				// 429 means the host is alive; backoff handles it.
				return err == nil || errors.Is(err, ErrRateLimited) || errors.Is(err, context.Canceled)
			},
		})
		c.breakers[host] = cb
	}
	return cb
}

// BreakerState returns the breaker state for host ("closed" if never used).
func (c *Client) BreakerState(host string) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cb, exists := c.breakers[host]; exists {
		return cb.State().String()
	}
	return gobreaker.StateClosed.String()
}
