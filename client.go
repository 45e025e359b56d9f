package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
)

// DefaultBaseURL is used when no backend URL is configured.
const DefaultBaseURL = "http://localhost:8000"

const documentsAPIPath = "/api/documents"

// Client is an archive service API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     hclog.Logger
	retries    int
	retryDelay time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(client *Client) {
		client.httpClient.Timeout = d
	}
}

// WithLogger sets the logger used for request logging.
func WithLogger(l hclog.Logger) Option {
	return func(client *Client) {
		client.logger = l
	}
}

// WithRetries retries failed GET requests up to n times with exponential
// backoff starting at initial. Only transport errors and 5xx responses are
// retried.
func WithRetries(n int, initial time.Duration) Option {
	return func(client *Client) {
		client.retries = n
		client.retryDelay = initial
	}
}

// NewClient creates a new archive API client.
// baseURL is the service URL (e.g., "http://localhost:8000"); an empty
// baseURL selects DefaultBaseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:     hclog.NewNullLogger(),
		retryDelay: 500 * time.Millisecond,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// BaseURL returns the configured service URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// requestBody is a replayable request payload.
type requestBody struct {
	contentType string
	data        []byte
}

func jsonBody(v interface{}) (*requestBody, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return &requestBody{contentType: "application/json", data: data}, nil
}

// buildURL joins path onto the base URL and attaches the search filter.
// The filter is percent-encoded once, with spaces as %20.
func (c *Client) buildURL(path, query string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid base URL: %q", c.baseURL)
	}
	// path is already escaped; JoinPath keeps escaped ids such as %2F intact.
	u = u.JoinPath(path)

	if query != "" {
		u.RawQuery = "q=" + strings.ReplaceAll(url.QueryEscape(query), "+", "%20")
	}

	return u.String(), nil
}

// documentPath returns the path for a single document with an optional suffix.
func documentPath(id DocumentID, suffix string) string {
	return documentsAPIPath + "/" + url.PathEscape(string(id)) + suffix
}

// doRequest performs an HTTP request and decodes the JSON response.
func (c *Client) doRequest(ctx context.Context, method, path string, body *requestBody, result interface{}) error {
	fullURL, err := c.buildURL(path, "")
	if err != nil {
		return err
	}

	return c.doRequestWithURL(ctx, method, fullURL, body, result)
}

// doRequestWithURL performs an HTTP request using a full URL and decodes the
// JSON response. GET requests are retried when retries are enabled.
func (c *Client) doRequestWithURL(ctx context.Context, method, fullURL string, body *requestBody, result interface{}) error {
	if method != http.MethodGet || c.retries <= 0 {
		return c.send(ctx, method, fullURL, body, result)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryDelay
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.retries)), ctx)

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		err := c.send(ctx, method, fullURL, body, result)
		if err == nil {
			return nil
		}
		if !isRetryable(ctx, err) {
			return backoff.Permanent(err)
		}
		c.logger.Warn("request failed, retrying", "method", method, "url", fullURL, "attempt", attempt, "error", err)
		return err
	}, policy)
}

// send executes a single request attempt.
func (c *Client) send(ctx context.Context, method, fullURL string, body *requestBody, result interface{}) error {
	resp, err := c.open(ctx, method, fullURL, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Error{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(data)),
		}
	}

	if result != nil {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}

	return nil
}

// open sends the request and returns the response with an unread body.
// Non-2xx handling is left to the caller.
func (c *Client) open(ctx context.Context, method, fullURL string, body *requestBody) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body.data)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", body.contentType)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "method", method, "url", fullURL, "request_id", requestID, "error", err)
		return nil, fmt.Errorf("do request: %w", err)
	}

	c.logger.Debug("request complete",
		"method", method,
		"url", fullURL,
		"request_id", requestID,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	return resp, nil
}

// isRetryable reports whether a failed attempt may succeed when repeated.
func isRetryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
