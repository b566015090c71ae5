// Package httpx is the JSON-over-HTTP transport shared by the metadata
// service clients.
//
// Requests are retried with exponential backoff when the service throttles
// (429) or fails (5xx) and when the connection itself fails. Other non-200
// statuses are permanent. Failures are tagged with the services error markers
// so callers can tell "not found" from "service down" from "bad payload".
package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"filmbridge/internal/logging"
	"filmbridge/internal/services"
)

const (
	defaultTimeout         = 15 * time.Second
	defaultMaxElapsed      = time.Minute
	defaultInitialInterval = 2 * time.Second
	defaultMaxInterval     = 30 * time.Second
	maxErrorBodyBytes      = 512
)

// Client issues JSON requests with retry.
type Client struct {
	component       string
	httpClient      *http.Client
	userAgent       string
	maxElapsed      time.Duration
	initialInterval time.Duration
	logger          *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the per-attempt timeout on the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(agent string) Option {
	return func(c *Client) {
		c.userAgent = agent
	}
}

// WithRetryBudget bounds the total time spent retrying one request.
func WithRetryBudget(maxElapsed time.Duration) Option {
	return func(c *Client) {
		if maxElapsed > 0 {
			c.maxElapsed = maxElapsed
		}
	}
}

// WithInitialInterval sets the first backoff delay.
func WithInitialInterval(interval time.Duration) Option {
	return func(c *Client) {
		if interval > 0 {
			c.initialInterval = interval
		}
	}
}

// WithLogger attaches a logger for retry warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New constructs a Client. component names the service in errors and logs.
func New(component string, opts ...Option) *Client {
	c := &Client{
		component:       component,
		httpClient:      &http.Client{Timeout: defaultTimeout},
		maxElapsed:      defaultMaxElapsed,
		initialInterval: defaultInitialInterval,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	c.logger = logging.NewComponentLogger(c.logger, component+"-http")
	return c
}

// GetJSON performs a GET request and decodes the response into out.
func (c *Client) GetJSON(ctx context.Context, operation, url string, out any) error {
	body, err := c.do(ctx, operation, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	return c.decode(operation, body, out)
}

// PostJSON encodes payload as the request body, performs a POST request, and
// decodes the response into out.
func (c *Client) PostJSON(ctx context.Context, operation, url string, payload, out any) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return services.Wrap(services.ErrValidation, c.component, operation, "encode request", err)
	}
	body, err := c.do(ctx, operation, http.MethodPost, url, encoded)
	if err != nil {
		return err
	}
	return c.decode(operation, body, out)
}

func (c *Client) decode(operation string, body []byte, out any) error {
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return services.Wrap(services.ErrMalformed, c.component, operation, "decode response", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, operation, method, url string, payload []byte) ([]byte, error) {
	var respBody []byte
	attempt := 0

	op := func() error {
		attempt++
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return services.Wrap(services.ErrValidation, c.component, operation, "build request", err)
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.userAgent != "" {
			req.Header.Set("User-Agent", c.userAgent)
		}

		requestStart := time.Now()
		resp, err := c.httpClient.Do(req)
		latency := time.Since(requestStart)
		if err != nil {
			if ctx.Err() != nil {
				return services.Wrap(services.ErrTimeout, c.component, operation, "request canceled", ctx.Err())
			}
			return services.Wrap(services.ErrTransient, c.component, operation, fmt.Sprintf("execute request (latency=%v)", latency), err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
			logging.WarnWithContext(c.logger, "service request throttled or failed, retrying", "http_retry",
				logging.String("operation", operation),
				logging.Int("status", resp.StatusCode),
				logging.Int("attempt", attempt),
				logging.Duration("latency", latency),
				logging.String(logging.FieldErrorHint, "reduce requests_per_second if this persists"),
				logging.String(logging.FieldImpact, "request delayed by backoff"),
			)
			return services.Wrap(services.ErrTransient, c.component, operation, fmt.Sprintf("returned %d (latency=%v)", resp.StatusCode, latency), nil)
		case resp.StatusCode == http.StatusNotFound:
			return services.Wrap(services.ErrNotFound, c.component, operation, "returned 404", nil)
		default:
			snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
			return services.Wrap(services.ErrExternal, c.component, operation, fmt.Sprintf("returned %d: %s", resp.StatusCode, bytes.TrimSpace(snippet)), nil)
		}

		respBody, err = io.ReadAll(resp.Body)
		if err != nil {
			return services.Wrap(services.ErrTransient, c.component, operation, "read response body", err)
		}
		return nil
	}

	// Only transient failures are retried, and never once the caller gave up.
	attemptOnce := func() error {
		err := op()
		if err == nil || (services.Retryable(err) && ctx.Err() == nil) {
			return err
		}
		return backoff.Permanent(err)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialInterval
	b.MaxInterval = defaultMaxInterval
	b.MaxElapsedTime = c.maxElapsed
	b.Multiplier = 2.0
	b.RandomizationFactor = 0.5

	if err := backoff.Retry(attemptOnce, backoff.WithContext(b, ctx)); err != nil {
		if services.Marker(err) != nil {
			return nil, err
		}
		return nil, services.Wrap(services.ErrTimeout, c.component, operation, "request abandoned", err)
	}
	return respBody, nil
}
