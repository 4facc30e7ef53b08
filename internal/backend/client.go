// Package backend is the typed client for the EventX API.  Every business
// operation (authentication, events, tickets, notifications, analytics) is
// owned by that API; this package only moves JSON back and forth and
// classifies failures.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iliyamo/eventx-studio/internal/logger"
)

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 4 << 20

// Config holds configuration for creating a Client.
type Config struct {
	// BaseURL is the root URL of the API, e.g. "https://api.eventx.io/api".
	BaseURL string

	// Timeout applies to each call when HTTPClient is nil.
	Timeout time.Duration

	// HTTPClient is used for all requests.  Defaults to a client with
	// Timeout.
	HTTPClient *http.Client

	// Logger receives one debug line per call.  Defaults to a no-op logger.
	Logger logger.Logger
}

// Client is an EventX API client.  A Client without a token makes
// anonymous calls; WithToken derives a client that attaches
// "Authorization: Bearer <token>" to every request.  Clients are immutable
// and safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
	logger     logger.Logger
}

// New creates a Client.  Returns an error if BaseURL is not an absolute
// http(s) URL.
func New(config Config) (*Client, error) {
	base := strings.TrimRight(config.BaseURL, "/")
	u, err := url.Parse(base)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("backend: invalid base URL %q", config.BaseURL)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Timeout}
	}
	log := config.Logger
	if log == nil {
		log = logger.NewNop()
	}
	return &Client{baseURL: base, httpClient: httpClient, logger: log}, nil
}

// WithToken returns a copy of c that authenticates as token.  An empty
// token yields an anonymous client.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// Authorized reports whether the client carries a bearer token.
func (c *Client) Authorized() bool {
	return c.token != ""
}

// do executes one request.  requestBody is JSON-encoded when non-nil and
// the response is decoded into result when result is non-nil and the body
// is not empty.  Non-2xx responses become *APIError, transport failures
// *NetworkError.
//
// The caller's context is detached from cancellation: a call that has been
// issued runs to completion even if the browser navigates away.  The
// http.Client timeout still bounds it.
func (c *Client) do(ctx context.Context, method, path string, requestBody, result any) error {
	ctx = context.WithoutCancel(ctx)

	var bodyReader io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return fmt.Errorf("backend: encoding request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("backend: creating request: %w", err)
	}
	request.Header.Set("Accept", "application/json")
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		request.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	response, err := c.httpClient.Do(request)
	if err != nil {
		c.logger.Debug("backend call failed", "method", method, "path", path, "error", err)
		return &NetworkError{Method: method, Path: path, Err: err}
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return &NetworkError{Method: method, Path: path, Err: err}
	}
	c.logger.Debug("backend call",
		"method", method,
		"path", path,
		"status", response.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return parseAPIError(response.StatusCode, body)
	}
	if result == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("backend: decoding %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, result any) error {
	return c.do(ctx, http.MethodGet, path, nil, result)
}

func (c *Client) post(ctx context.Context, path string, requestBody, result any) error {
	return c.do(ctx, http.MethodPost, path, requestBody, result)
}

func (c *Client) put(ctx context.Context, path string, requestBody, result any) error {
	return c.do(ctx, http.MethodPut, path, requestBody, result)
}

func (c *Client) patch(ctx context.Context, path string, requestBody, result any) error {
	return c.do(ctx, http.MethodPatch, path, requestBody, result)
}

func (c *Client) delete(ctx context.Context, path string, result any) error {
	return c.do(ctx, http.MethodDelete, path, nil, result)
}

// segment escapes a single path parameter.
func segment(id string) string {
	return url.PathEscape(id)
}
