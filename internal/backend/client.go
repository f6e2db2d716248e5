// Package backend talks to the pharmacy REST API on behalf of the signed-in
// console user.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hawi-pms/console/internal/shared"
)

const (
	// UnreachableMessage is shown when the API cannot be contacted.
	UnreachableMessage = "Cannot reach API server. Verify backend is running."
	// FallbackMessage is used for failed responses without a detail.
	FallbackMessage = "Request failed"

	headerUserID   = "X-User-Id"
	headerUserRole = "X-User-Role"
)

// Error reports a failed API call.
type Error struct {
	Status      int
	Detail      string
	Unreachable bool
	Err         error
}

func (e *Error) Error() string {
	if e.Unreachable {
		return UnreachableMessage
	}
	if e.Detail != "" {
		return e.Detail
	}
	return FallbackMessage
}

func (e *Error) Unwrap() error { return e.Err }

// Message returns the user-facing text of err. Anything that is not an API
// error, or an API error without a detail, yields fallback.
func Message(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		if apiErr.Unreachable {
			return UnreachableMessage
		}
		if apiErr.Detail != "" {
			return apiErr.Detail
		}
	}
	return fallback
}

// IsUnreachable reports whether err is a transport failure.
func IsUnreachable(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Unreachable
}

// IsStatus reports whether err is an API error with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// Observer receives one call per completed API request. Status is 0 when the
// backend could not be reached.
type Observer interface {
	ObserveBackend(method, route string, status int, elapsed time.Duration)
}

// Client performs API calls. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	observer   Observer
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds each request. Zero leaves only transport timeouts.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			clone := *c.httpClient
			clone.Timeout = d
			c.httpClient = &clone
		}
	}
}

// WithObserver reports request outcomes to o.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// New constructs a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type errorPayload struct {
	Detail json.RawMessage `json:"detail"`
}

// do sends one request. route is the path template used for metrics.
func (c *Client) do(ctx context.Context, method, route, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("backend: encode %s %s: %w", method, route, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("backend: build %s %s: %w", method, route, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if user := shared.UserFromContext(ctx); user != nil {
		req.Header.Set(headerUserID, strconv.FormatInt(user.ID, 10))
		req.Header.Set(headerUserRole, user.Role)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(method, route, 0, start)
		return &Error{Unreachable: true, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	c.observe(method, route, resp.StatusCode, start)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Status: resp.StatusCode, Detail: readDetail(resp.Body)}
	}
	if resp.StatusCode == http.StatusNoContent || out == nil {
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Unreachable: true, Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("backend: decode %s %s: %w", method, route, err)
	}
	return nil
}

func (c *Client) observe(method, route string, status int, start time.Time) {
	if c.observer != nil {
		c.observer.ObserveBackend(method, route, status, time.Since(start))
	}
}

// readDetail extracts the "detail" field of an error body. Validation
// errors carry a list of objects; their first "msg" is used.
func readDetail(body io.Reader) string {
	var payload errorPayload
	if err := json.NewDecoder(io.LimitReader(body, 1<<20)).Decode(&payload); err != nil {
		return ""
	}
	var text string
	if err := json.Unmarshal(payload.Detail, &text); err == nil {
		return text
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(payload.Detail, &items); err == nil && len(items) > 0 {
		return items[0].Msg
	}
	return ""
}
