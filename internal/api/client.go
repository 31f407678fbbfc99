// Package api is the client of the kairos backend REST API.
package api

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

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/julianstephens/kairos/internal/constants"
	"github.com/julianstephens/kairos/internal/logger"
	"github.com/julianstephens/kairos/internal/metrics"
)

// TokenSource supplies the ID token sent as bearer credentials
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Cache stores raw GET response bodies
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Purge(ctx context.Context, prefix string) error
}

// Error is a failed backend call
type Error struct {
	Op      string
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("%s: %s (HTTP %d)", e.Op, e.Message, e.Status)
}

// IsNotFound reports whether err is a 404 from the backend
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// envelope is the wrapped response shape some endpoints use
type envelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type Client struct {
	baseURL *url.URL
	http    *http.Client
	tokens  TokenSource
	cache   Cache
	metrics *metrics.Recorder
	log     *log.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the timeout of the default HTTP client
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithTokenSource authenticates every request
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithCache enables the read-through GET cache
func WithCache(cache Cache) Option {
	return func(c *Client) { c.cache = cache }
}

// WithMetrics records request metrics
func WithMetrics(r *metrics.Recorder) Option {
	return func(c *Client) { c.metrics = r }
}

// New returns a client for the backend at baseURL
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid backend URL %q", baseURL)
	}
	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: constants.DefaultHTTPTimeout},
		log:     logger.With("api"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the backend root
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Ping checks that the backend answers HTTP. Any status below 500 counts,
// since the root path is not an API route.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL.String()+"/", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Op: "ping", Message: err.Error()}
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusInternalServerError {
		return &Error{Op: "ping", Status: resp.StatusCode, Message: resp.Status}
	}
	return nil
}

func (c *Client) get(ctx context.Context, op, path string, out any) error {
	return c.do(ctx, op, http.MethodGet, path, nil, out)
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	if method == http.MethodGet && c.cache != nil {
		if data, ok := c.cached(ctx, path); ok {
			if err := decode(op, http.StatusOK, data, out); err == nil {
				return nil
			}
		}
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: failed to encode request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reader)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.RecordRequest(op, 0, time.Since(start))
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &Error{Op: op, Message: err.Error()}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	c.metrics.RecordRequest(op, resp.StatusCode, time.Since(start))
	if err != nil {
		return &Error{Op: op, Status: resp.StatusCode, Message: fmt.Sprintf("failed to read response: %v", err)}
	}
	c.log.Debug("request", "op", op, "method", method, "path", path, "status", resp.StatusCode, "duration", time.Since(start))

	if err := decode(op, resp.StatusCode, data, out); err != nil {
		return err
	}

	if c.cache != nil {
		if method == http.MethodGet {
			if err := c.cache.Set(ctx, path, data); err != nil {
				c.log.Warn("Failed to cache response", "path", path, "error", err)
			}
		} else if err := c.cache.Purge(ctx, ""); err != nil {
			c.log.Warn("Failed to purge response cache", "error", err)
		}
	}
	return nil
}

func (c *Client) cached(ctx context.Context, path string) ([]byte, bool) {
	data, ok, err := c.cache.Get(ctx, path)
	switch {
	case err != nil:
		c.metrics.RecordCacheLookup("error")
		c.log.Warn("Cache lookup failed", "path", path, "error", err)
		return nil, false
	case !ok:
		c.metrics.RecordCacheLookup("miss")
		return nil, false
	}
	c.metrics.RecordCacheLookup("hit")
	return data, true
}

// decode interprets a response body. Bodies may be the bare record or an
// envelope; success:false and non-2xx statuses become *Error.
func decode(op string, status int, data []byte, out any) error {
	ok := status >= 200 && status < 300
	trimmed := bytes.TrimSpace(data)

	var env envelope
	isEnvelope := len(trimmed) > 0 && trimmed[0] == '{' &&
		json.Unmarshal(trimmed, &env) == nil && env.Success != nil

	if !ok {
		msg := http.StatusText(status)
		if isEnvelope && env.Message != "" {
			msg = env.Message
		} else if m := errorMessage(trimmed); m != "" {
			msg = m
		}
		return &Error{Op: op, Status: status, Message: msg}
	}

	payload := trimmed
	if isEnvelope {
		if !*env.Success {
			msg := env.Message
			if msg == "" {
				msg = "request failed"
			}
			return &Error{Op: op, Status: status, Message: msg}
		}
		payload = bytes.TrimSpace(env.Data)
	}

	if out == nil || len(payload) == 0 || bytes.Equal(payload, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return &Error{Op: op, Status: status, Message: fmt.Sprintf("malformed response: %v", err)}
	}
	return nil
}

// errorMessage extracts {"message": ...} or {"error": ...} from an error body
func errorMessage(body []byte) string {
	var v struct {
		Message string          `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if json.Unmarshal(body, &v) != nil {
		return ""
	}
	if v.Message != "" {
		return v.Message
	}
	var s string
	if json.Unmarshal(v.Error, &s) == nil {
		return s
	}
	return ""
}

func escape(segment string) string {
	return url.PathEscape(segment)
}
